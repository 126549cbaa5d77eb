package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FOURIER-Inc/mocopi-parser/internal/metrics"
	"github.com/FOURIER-Inc/mocopi-parser/internal/mocap"
)

// Session holds the decoding state for one device source
type Session struct {
	ID        string
	Source    string
	StartTime time.Time

	lastActivity time.Time

	// Last seen topology and recent frames
	skeleton *mocap.Skeleton
	history  *History

	// Counters
	skeletonsSeen  uint64
	framesSeen     uint64
	unknownSeen    uint64
	unmatchedBones uint64 // frame bone ids absent from the last skeleton

	mu sync.RWMutex
}

// SessionInfo is the JSON-friendly snapshot of a session for the HTTP API
type SessionInfo struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	StartTime      time.Time `json:"start_time"`
	LastActivity   time.Time `json:"last_activity"`
	HasSkeleton    bool      `json:"has_skeleton"`
	BoneCount      int       `json:"bone_count"`
	SkeletonsSeen  uint64    `json:"skeletons_seen"`
	FramesSeen     uint64    `json:"frames_seen"`
	UnknownSeen    uint64    `json:"unknown_seen"`
	UnmatchedBones uint64    `json:"unmatched_bones"`
	FramesRetained int       `json:"frames_retained"`
}

// Manager manages all active device sessions
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex

	logger      *slog.Logger
	timeout     time.Duration
	historySize int
	metrics     *metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a session manager and starts its idle-source cleanup
// loop.
func NewManager(logger *slog.Logger, timeout time.Duration, historySize int, m *metrics.Metrics) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	mgr := &Manager{
		sessions:    make(map[string]*Session),
		logger:      logger,
		timeout:     timeout,
		historySize: historySize,
		metrics:     m,
		ctx:         ctx,
		cancel:      cancel,
	}

	mgr.wg.Add(1)
	go mgr.cleanupLoop()

	return mgr
}

// Stop terminates the cleanup loop and drops all sessions.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	for source, s := range m.sessions {
		m.destroyLocked(source, s)
	}
}

// Observe routes one decoded packet into the session for its source,
// creating the session on first contact.
func (m *Manager) Observe(source string, pkt mocap.Packet) {
	s := m.getOrCreate(source)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActivity = time.Now()
	switch p := pkt.(type) {
	case *mocap.SkeletonPacket:
		skeleton := p.Skeleton
		s.skeleton = &skeleton
		s.skeletonsSeen++
		m.logger.Info("Skeleton definition updated",
			slog.String("source", source),
			slog.String("session_id", s.ID),
			slog.Int("bones", len(skeleton.Bones)),
		)
	case *mocap.FramePacket:
		s.framesSeen++
		s.history.Push(p.Frame)
		if s.skeleton != nil {
			for _, bt := range p.Frame.Bones {
				if _, ok := s.skeleton.Bone(bt.ID); !ok {
					s.unmatchedBones++
				}
			}
		}
	case *mocap.UnknownPacket:
		s.unknownSeen++
		m.logger.Debug("Unrecognized message address",
			slog.String("source", source),
			slog.String("address", p.Address),
			slog.Int("arguments", len(p.Arguments)),
		)
	}
}

// GetSession returns the session for a source, if one exists.
func (m *Manager) GetSession(source string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[source]
	return s, ok
}

// GetAllSessions returns all active sessions.
func (m *Manager) GetAllSessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// GetActiveSessionCount returns the number of tracked sources.
func (m *Manager) GetActiveSessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) getOrCreate(source string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[source]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[source]; ok {
		return s
	}

	now := time.Now()
	s = &Session{
		ID:           uuid.NewString(),
		Source:       source,
		StartTime:    now,
		lastActivity: now,
		history:      NewHistory(m.historySize),
	}
	m.sessions[source] = s

	if m.metrics != nil {
		m.metrics.RecordSessionCreated()
		m.metrics.SetActiveSessions(len(m.sessions))
	}
	m.logger.Info("Session created",
		slog.String("source", source),
		slog.String("session_id", s.ID),
	)
	return s
}

// cleanupLoop periodically drops sources that went silent.
func (m *Manager) cleanupLoop() {
	defer m.wg.Done()

	interval := m.timeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.cleanupIdle()
		}
	}
}

func (m *Manager) cleanupIdle() {
	cutoff := time.Now().Add(-m.timeout)

	m.mu.Lock()
	defer m.mu.Unlock()
	for source, s := range m.sessions {
		s.mu.RLock()
		idle := s.lastActivity.Before(cutoff)
		s.mu.RUnlock()
		if idle {
			m.destroyLocked(source, s)
		}
	}
}

// destroyLocked removes one session; the caller holds m.mu.
func (m *Manager) destroyLocked(source string, s *Session) {
	delete(m.sessions, source)

	if m.metrics != nil {
		m.metrics.RecordSessionDestroyed(time.Since(s.StartTime).Seconds())
		m.metrics.SetActiveSessions(len(m.sessions))
	}
	m.logger.Info("Session destroyed",
		slog.String("source", source),
		slog.String("session_id", s.ID),
		slog.Uint64("frames_seen", s.framesSeen),
	)
}

// Skeleton returns the last seen skeleton definition.
func (s *Session) Skeleton() (mocap.Skeleton, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.skeleton == nil {
		return mocap.Skeleton{}, false
	}
	return *s.skeleton, true
}

// LatestFrame returns the most recently observed frame.
func (s *Session) LatestFrame() (mocap.Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Latest()
}

// GetSessionInfo returns a snapshot for monitoring.
func (s *Session) GetSessionInfo() SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := SessionInfo{
		ID:             s.ID,
		Source:         s.Source,
		StartTime:      s.StartTime,
		LastActivity:   s.lastActivity,
		HasSkeleton:    s.skeleton != nil,
		SkeletonsSeen:  s.skeletonsSeen,
		FramesSeen:     s.framesSeen,
		UnknownSeen:    s.unknownSeen,
		UnmatchedBones: s.unmatchedBones,
		FramesRetained: s.history.Len(),
	}
	if s.skeleton != nil {
		info.BoneCount = len(s.skeleton.Bones)
	}
	return info
}
