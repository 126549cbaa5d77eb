package session

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/FOURIER-Inc/mocopi-parser/internal/mocap"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(testLogger(), time.Minute, 8, nil)
	t.Cleanup(m.Stop)
	return m
}

func TestHistoryRing(t *testing.T) {
	h := NewHistory(3)

	if _, ok := h.Latest(); ok {
		t.Error("Latest() on empty history reported a frame")
	}

	for i := 1; i <= 5; i++ {
		h.Push(mocap.Frame{Timestamp: float64(i)})
	}

	if h.Len() != 3 {
		t.Errorf("Len() = %d, want 3", h.Len())
	}
	latest, ok := h.Latest()
	if !ok || latest.Timestamp != 5 {
		t.Errorf("Latest() = %v, %v; want frame 5", latest, ok)
	}

	frames := h.Frames()
	want := []float64{3, 4, 5}
	if len(frames) != len(want) {
		t.Fatalf("Frames() length = %d, want %d", len(frames), len(want))
	}
	for i, ts := range want {
		if frames[i].Timestamp != ts {
			t.Errorf("Frames()[%d].Timestamp = %g, want %g", i, frames[i].Timestamp, ts)
		}
	}
}

func TestObserveCreatesSessionPerSource(t *testing.T) {
	m := testManager(t)

	m.Observe("10.0.0.1:5000", &mocap.FramePacket{Frame: mocap.Frame{Timestamp: 1}})
	m.Observe("10.0.0.2:5000", &mocap.FramePacket{Frame: mocap.Frame{Timestamp: 2}})
	m.Observe("10.0.0.1:5000", &mocap.FramePacket{Frame: mocap.Frame{Timestamp: 3}})

	if got := m.GetActiveSessionCount(); got != 2 {
		t.Fatalf("GetActiveSessionCount() = %d, want 2", got)
	}

	s, ok := m.GetSession("10.0.0.1:5000")
	if !ok {
		t.Fatal("GetSession() missing first source")
	}
	frame, ok := s.LatestFrame()
	if !ok || frame.Timestamp != 3 {
		t.Errorf("LatestFrame() = %v, %v; want frame 3", frame, ok)
	}
	if info := s.GetSessionInfo(); info.FramesSeen != 2 {
		t.Errorf("FramesSeen = %d, want 2", info.FramesSeen)
	}

	other, _ := m.GetSession("10.0.0.2:5000")
	if other.ID == s.ID {
		t.Error("distinct sources share a session id")
	}
}

func TestObserveSkeletonCorrelation(t *testing.T) {
	m := testManager(t)
	source := "10.0.0.1:5000"

	skeleton := mocap.Skeleton{Bones: []mocap.Bone{
		{ID: 0, Name: "root", Parent: mocap.RootParent},
		{ID: 1, Name: "torso", Parent: 0},
	}}
	m.Observe(source, &mocap.SkeletonPacket{Skeleton: skeleton})

	// One bone the skeleton knows, one it does not.
	m.Observe(source, &mocap.FramePacket{Frame: mocap.Frame{
		Timestamp: 1,
		Bones: []mocap.BoneTransform{
			{ID: 1},
			{ID: 99},
		},
	}})
	m.Observe(source, &mocap.UnknownPacket{Address: "/mocopi/vers"})

	s, _ := m.GetSession(source)
	got, ok := s.Skeleton()
	if !ok || len(got.Bones) != 2 {
		t.Fatalf("Skeleton() = %v, %v; want 2 bones", got, ok)
	}

	info := s.GetSessionInfo()
	if !info.HasSkeleton || info.BoneCount != 2 {
		t.Errorf("info = %+v; want skeleton with 2 bones", info)
	}
	if info.SkeletonsSeen != 1 || info.FramesSeen != 1 || info.UnknownSeen != 1 {
		t.Errorf("counters = %d/%d/%d, want 1/1/1",
			info.SkeletonsSeen, info.FramesSeen, info.UnknownSeen)
	}
	if info.UnmatchedBones != 1 {
		t.Errorf("UnmatchedBones = %d, want 1", info.UnmatchedBones)
	}
}

func TestCleanupIdleSessions(t *testing.T) {
	m := testManager(t)

	m.Observe("10.0.0.1:5000", &mocap.FramePacket{})
	m.Observe("10.0.0.2:5000", &mocap.FramePacket{})

	// Age the first source past the timeout.
	s, _ := m.GetSession("10.0.0.1:5000")
	s.mu.Lock()
	s.lastActivity = time.Now().Add(-2 * m.timeout)
	s.mu.Unlock()

	m.cleanupIdle()

	if _, ok := m.GetSession("10.0.0.1:5000"); ok {
		t.Error("idle session survived cleanup")
	}
	if _, ok := m.GetSession("10.0.0.2:5000"); !ok {
		t.Error("active session was cleaned up")
	}
}
