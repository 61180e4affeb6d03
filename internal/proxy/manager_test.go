package proxy

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSessionManagerLookup(t *testing.T) {
	sm := NewSessionManager()
	now := time.Now()
	a := &Session{ID: "abc-111", Started: now}
	b := &Session{ID: "abd-222", Started: now.Add(time.Second)}

	for _, s := range []*Session{b, a} {
		if err := sm.Add(s); err != nil {
			t.Fatalf("Add(%s): %v", s.ID, err)
		}
	}
	if err := sm.Add(&Session{ID: "abc-111"}); !errors.Is(err, ErrSessionExists) {
		t.Errorf("duplicate Add error = %v", err)
	}

	tests := []struct {
		id      string
		want    *Session
		wantErr error
	}{
		{"abc-111", a, nil},
		{"abd", b, nil},
		{"ab", nil, ErrSessionAmbiguous},
		{"zzz", nil, ErrSessionNotFound},
		{"", nil, ErrSessionNotFound},
	}
	for _, tt := range tests {
		got, err := sm.Get(tt.id)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("Get(%q) error = %v, want %v", tt.id, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("Get(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}

	list := sm.List()
	if len(list) != 2 || list[0] != a || list[1] != b {
		t.Errorf("List not ordered by start time: %v", list)
	}
	if sm.ActiveCount() != 2 || sm.TotalStarted() != 2 {
		t.Errorf("counts = %d/%d", sm.ActiveCount(), sm.TotalStarted())
	}

	if !sm.Remove("abc-111") {
		t.Error("Remove reported missing session")
	}
	if sm.Remove("abc-111") {
		t.Error("second Remove reported success")
	}
	if sm.ActiveCount() != 1 || sm.TotalStarted() != 2 {
		t.Errorf("counts after remove = %d/%d", sm.ActiveCount(), sm.TotalStarted())
	}
}

func TestSessionManagerShutdownRefusesNewSessions(t *testing.T) {
	sm := NewSessionManager()
	if err := sm.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := sm.Add(&Session{ID: "late"}); !errors.Is(err, ErrShuttingDown) {
		t.Errorf("Add after shutdown = %v", err)
	}
	if err := sm.Stop("late"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Stop unknown = %v", err)
	}
}
