package session

import (
	"sync"

	"github.com/FOURIER-Inc/mocopi-parser/internal/mocap"
)

// History is a fixed-capacity ring of recently decoded frames for one
// source. Once full, each new frame evicts the oldest.
type History struct {
	frames []mocap.Frame
	next   int
	count  int
	mu     sync.RWMutex
}

// NewHistory creates a history retaining up to capacity frames.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{frames: make([]mocap.Frame, capacity)}
}

// Push appends a frame, evicting the oldest when the ring is full.
func (h *History) Push(f mocap.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.frames[h.next] = f
	h.next = (h.next + 1) % len(h.frames)
	if h.count < len(h.frames) {
		h.count++
	}
}

// Latest returns the most recently pushed frame.
func (h *History) Latest() (mocap.Frame, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.count == 0 {
		return mocap.Frame{}, false
	}
	idx := (h.next - 1 + len(h.frames)) % len(h.frames)
	return h.frames[idx], true
}

// Len returns the number of retained frames.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Cap returns the ring capacity.
func (h *History) Cap() int {
	return len(h.frames)
}

// Frames returns the retained frames oldest first. The returned slice is a
// copy.
func (h *History) Frames() []mocap.Frame {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]mocap.Frame, 0, h.count)
	start := h.next - h.count
	for i := 0; i < h.count; i++ {
		idx := (start + i + len(h.frames)) % len(h.frames)
		out = append(out, h.frames[idx])
	}
	return out
}
