package session

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestPutLookupRemove(t *testing.T) {
	d := NewDirectory()
	connID := uuid.New()

	if _, ok := d.Lookup(connID); ok {
		t.Fatal("Lookup() on empty directory returned ok")
	}

	d.Put(connID, "abc123", "Alice")

	s, ok := d.Lookup(connID)
	if !ok {
		t.Fatal("Lookup() after Put returned !ok")
	}
	if s.RoomID != "abc123" || s.ParticipantName != "Alice" {
		t.Errorf("session = %+v, want {abc123 Alice}", s)
	}

	s, ok = d.Remove(connID)
	if !ok {
		t.Fatal("Remove() returned !ok for existing session")
	}
	if s.RoomID != "abc123" {
		t.Errorf("removed session = %+v, want room abc123", s)
	}

	// Повторный Remove — безопасный no-op
	if _, ok := d.Remove(connID); ok {
		t.Error("second Remove() returned ok")
	}
	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}
}

func TestPutOverwrites(t *testing.T) {
	d := NewDirectory()
	connID := uuid.New()

	d.Put(connID, "room1", "Alice")
	d.Put(connID, "room2", "Alice")

	s, _ := d.Lookup(connID)
	if s.RoomID != "room2" {
		t.Errorf("RoomID = %q, want room2", s.RoomID)
	}
	if d.Len() != 1 {
		t.Errorf("Len() = %d, want 1", d.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	d := NewDirectory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := uuid.New()
			d.Put(id, "abc123", "guest")
			d.Lookup(id)
			d.Remove(id)
		}()
	}
	wg.Wait()

	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}
}
