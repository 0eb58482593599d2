package job

import (
	"errors"
	"testing"
	"time"

	"repotutor/internal/tutorial"
)

func TestManager_CreateAndGet(t *testing.T) {
	m := NewManager()
	j := m.Create("acme", "widgets")
	if j.ID == "" || j.Status != StatusQueued {
		t.Fatalf("bad job %+v", j)
	}
	got, err := m.Get(j.ID)
	if err != nil || got.Owner != "acme" || got.Repo != "widgets" {
		t.Fatalf("get: %+v err=%v", got, err)
	}
	if _, err := m.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestManager_LifecycleAndSubscribe(t *testing.T) {
	m := NewManager()
	j := m.Create("acme", "widgets")

	ch, err := m.Subscribe(j.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	m.SetStatus(j.ID, StatusFetching)
	m.SetResult(j.ID, &tutorial.Tutorial{Repo: "acme/widgets"})

	var seen []Status
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				if len(seen) < 2 || seen[len(seen)-1] != StatusDone {
					t.Fatalf("statuses %v", seen)
				}
				return
			}
			seen = append(seen, snap.Status)
		case <-deadline:
			t.Fatalf("timed out, statuses %v", seen)
		}
	}
}

func TestManager_SubscribeTerminal(t *testing.T) {
	m := NewManager()
	j := m.Create("acme", "widgets")
	m.SetError(j.ID, errors.New("generation blew up"))

	ch, err := m.Subscribe(j.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	snap, ok := <-ch
	if !ok || snap.Status != StatusFailed || snap.Error == "" {
		t.Fatalf("snap %+v ok=%v", snap, ok)
	}
	if _, ok := <-ch; ok {
		t.Fatal("channel must be closed after terminal snapshot")
	}
}

func TestManager_UpdateUnknownIDIsNoop(t *testing.T) {
	m := NewManager()
	m.SetStatus("missing", StatusDone) // must not panic
	m.SetError("missing", errors.New("x"))
}
