package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/FOURIER-Inc/mocopi-parser/internal/config"
	"github.com/FOURIER-Inc/mocopi-parser/internal/metrics"
	"github.com/FOURIER-Inc/mocopi-parser/internal/mocap"
	"github.com/FOURIER-Inc/mocopi-parser/internal/osc"
	"github.com/FOURIER-Inc/mocopi-parser/internal/session"
)

// UDPServer receives mocopi datagrams and feeds them to the decoder. A
// datagram that fails to decode is logged and dropped; the server keeps
// listening.
type UDPServer struct {
	conn     *net.UDPConn
	config   *config.ServerConfig
	decoder  *mocap.Decoder
	logger   *slog.Logger
	sessions *session.Manager
	metrics  *metrics.Metrics

	// Concurrency management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Datagram processing
	packetChan chan *incomingDatagram

	// Counters mirrored into Prometheus, kept here for /stats
	packetsReceived uint64
	packetsDecoded  uint64
	decodeErrors    uint64
	mu              sync.RWMutex
}

// incomingDatagram is one received UDP datagram with metadata
type incomingDatagram struct {
	data       []byte
	remoteAddr *net.UDPAddr
	timestamp  time.Time
}

// NewUDPServer creates a new UDP server instance
func NewUDPServer(cfg *config.ServerConfig, decoder *mocap.Decoder, logger *slog.Logger,
	sessions *session.Manager, m *metrics.Metrics) *UDPServer {

	ctx, cancel := context.WithCancel(context.Background())

	return &UDPServer{
		config:     cfg,
		decoder:    decoder,
		logger:     logger,
		sessions:   sessions,
		metrics:    m,
		ctx:        ctx,
		cancel:     cancel,
		packetChan: make(chan *incomingDatagram, cfg.QueueSize),
	}
}

// Start begins listening for UDP datagrams
func (s *UDPServer) Start() error {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", s.config.BindAddress, s.config.UDPPort))
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address: %w", err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on UDP: %w", err)
	}

	s.conn = conn

	if err := s.conn.SetReadBuffer(s.config.BufferSize); err != nil {
		s.logger.Warn("Failed to set UDP read buffer size",
			slog.Int("buffer_size", s.config.BufferSize),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("UDP server started",
		slog.String("address", addr.String()),
		slog.Int("buffer_size", s.config.BufferSize),
		slog.Int("workers", s.config.Workers),
	)

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.datagramProcessor(i)
	}

	s.wg.Add(1)
	go s.receiveLoop()

	return nil
}

// Stop gracefully stops the UDP server
func (s *UDPServer) Stop() error {
	s.logger.Info("Stopping UDP server...")

	s.cancel()

	// Close the connection to unblock the receive loop
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.logger.Warn("Error closing UDP connection", slog.String("error", err.Error()))
		}
	}

	close(s.packetChan)
	s.wg.Wait()

	s.mu.RLock()
	packetsReceived := s.packetsReceived
	packetsDecoded := s.packetsDecoded
	decodeErrors := s.decodeErrors
	s.mu.RUnlock()

	s.logger.Info("UDP server stopped",
		slog.Uint64("packets_received", packetsReceived),
		slog.Uint64("packets_decoded", packetsDecoded),
		slog.Uint64("decode_errors", decodeErrors),
	)

	return nil
}

// receiveLoop is the main datagram receiving loop
func (s *UDPServer) receiveLoop() {
	defer s.wg.Done()

	buffer := make([]byte, s.config.BufferSize)

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("Receive loop stopping due to context cancellation")
			return
		default:
		}

		// Read deadline so context cancellation is noticed periodically
		if err := s.conn.SetReadDeadline(time.Now().Add(1 * time.Second)); err != nil {
			s.logger.Error("Failed to set read deadline", slog.String("error", err.Error()))
			continue
		}

		n, remoteAddr, err := s.conn.ReadFromUDP(buffer)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}

			select {
			case <-s.ctx.Done():
				return
			default:
				s.logger.Error("Failed to read UDP datagram", slog.String("error", err.Error()))
				continue
			}
		}

		s.mu.Lock()
		s.packetsReceived++
		s.mu.Unlock()
		s.metrics.RecordPacketReceived()

		// The read buffer is reused, the decoder needs its own copy
		data := make([]byte, n)
		copy(data, buffer[:n])

		dg := &incomingDatagram{
			data:       data,
			remoteAddr: remoteAddr,
			timestamp:  time.Now(),
		}

		select {
		case s.packetChan <- dg:
			s.metrics.SetQueueSize(len(s.packetChan))
		default:
			s.metrics.RecordDroppedDatagram()
			s.logger.Warn("Datagram queue full, dropping datagram",
				slog.String("remote_addr", remoteAddr.String()),
				slog.Int("size", n),
			)
		}
	}
}

// datagramProcessor decodes datagrams from the channel
func (s *UDPServer) datagramProcessor(workerID int) {
	defer s.wg.Done()

	s.logger.Debug("Datagram processor started", slog.Int("worker_id", workerID))

	for dg := range s.packetChan {
		s.handleDatagram(dg, workerID)
		s.metrics.SetQueueSize(len(s.packetChan))
	}

	s.logger.Debug("Datagram processor stopped", slog.Int("worker_id", workerID))
}

// handleDatagram decodes one datagram and routes its packets
func (s *UDPServer) handleDatagram(dg *incomingDatagram, workerID int) {
	start := time.Now()
	packets, err := s.decoder.Parse(dg.data)
	if err != nil {
		s.mu.Lock()
		s.decodeErrors++
		s.mu.Unlock()
		s.metrics.RecordDecodeError(errorKind(err))

		s.logger.Error("Failed to decode datagram",
			slog.String("remote_addr", dg.remoteAddr.String()),
			slog.Int("size", len(dg.data)),
			slog.String("error", err.Error()),
			slog.Int("worker_id", workerID),
		)
		return
	}

	s.mu.Lock()
	s.packetsDecoded++
	s.mu.Unlock()
	s.metrics.RecordPacketDecoded(time.Since(start).Seconds())

	source := dg.remoteAddr.String()
	for _, pkt := range packets {
		switch p := pkt.(type) {
		case *mocap.SkeletonPacket:
			s.metrics.RecordSkeleton()
			s.logger.Debug("Skeleton definition decoded",
				slog.String("remote_addr", source),
				slog.Int("bones", len(p.Skeleton.Bones)),
				slog.Int("worker_id", workerID),
			)
		case *mocap.FramePacket:
			s.metrics.RecordFrame(len(p.Frame.Bones))
			s.logger.Debug("Frame decoded",
				slog.String("remote_addr", source),
				slog.Float64("timestamp", p.Frame.Timestamp),
				slog.Int("bones", len(p.Frame.Bones)),
				slog.Int("worker_id", workerID),
			)
		case *mocap.UnknownPacket:
			s.metrics.RecordUnknownMessage(p.Address)
		}
		s.sessions.Observe(source, pkt)
	}
}

// errorKind names the decode error's kind for metrics labels
func errorKind(err error) string {
	var de *osc.DecodeError
	if errors.As(err, &de) {
		return de.Kind.Error()
	}
	return "unknown"
}

// GetStatistics returns current server statistics
func (s *UDPServer) GetStatistics() ServerStatistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ServerStatistics{
		PacketsReceived: s.packetsReceived,
		PacketsDecoded:  s.packetsDecoded,
		DecodeErrors:    s.decodeErrors,
		ActiveSessions:  uint64(s.sessions.GetActiveSessionCount()),
		QueueSize:       uint64(len(s.packetChan)),
		QueueCapacity:   uint64(cap(s.packetChan)),
	}
}

// ServerStatistics represents server performance metrics
type ServerStatistics struct {
	PacketsReceived uint64 `json:"packets_received"`
	PacketsDecoded  uint64 `json:"packets_decoded"`
	DecodeErrors    uint64 `json:"decode_errors"`
	ActiveSessions  uint64 `json:"active_sessions"`
	QueueSize       uint64 `json:"queue_size"`
	QueueCapacity   uint64 `json:"queue_capacity"`
}
