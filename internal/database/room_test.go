package database

import (
	"errors"
	"os"
	"testing"
)

// Тесты гоняются против настоящего Postgres: нужен DATABASE_URL,
// иначе пропускаются.
func setupTestDB(t *testing.T) *Database {
	t.Helper()

	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set")
	}

	d := &Database{}
	if err := d.Connect(); err != nil {
		t.Skipf("Postgres not available: %v", err)
	}

	cleanup := func() {
		d.DeleteRoom("test-abc123")
	}
	cleanup()
	t.Cleanup(cleanup)
	return d
}

func TestCreateAndGetRoom(t *testing.T) {
	d := setupTestDB(t)

	room, err := d.CreateRoom("test-abc123", "Movie Night", "Alice")
	if err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	if list := room.ParticipantList(); len(list) != 1 || list[0] != "Alice" {
		t.Errorf("participants = %v, want [Alice]", list)
	}

	got, err := d.GetRoom("test-abc123")
	if err != nil {
		t.Fatalf("GetRoom() error = %v", err)
	}
	if got.RoomName != "Movie Night" || got.AdminName != "Alice" {
		t.Errorf("room = %+v", got)
	}
}

func TestCreateRoomConflict(t *testing.T) {
	d := setupTestDB(t)

	if _, err := d.CreateRoom("test-abc123", "Movie Night", "Alice"); err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	_, err := d.CreateRoom("test-abc123", "Other", "Bob")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate CreateRoom() error = %v, want ErrConflict", err)
	}
}

func TestGetRoomNotFound(t *testing.T) {
	d := setupTestDB(t)

	_, err := d.GetRoom("test-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetRoom() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateParticipants(t *testing.T) {
	d := setupTestDB(t)

	if _, err := d.CreateRoom("test-abc123", "Movie Night", "Alice"); err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}

	if err := d.UpdateParticipants("test-abc123", []string{"Alice", "Bob"}); err != nil {
		t.Fatalf("UpdateParticipants() error = %v", err)
	}
	room, _ := d.GetRoom("test-abc123")
	if list := room.ParticipantList(); len(list) != 2 || list[1] != "Bob" {
		t.Errorf("participants = %v, want [Alice Bob]", list)
	}

	// Идемпотентность: тот же состав ещё раз
	if err := d.UpdateParticipants("test-abc123", []string{"Alice", "Bob"}); err != nil {
		t.Fatalf("repeat UpdateParticipants() error = %v", err)
	}

	if err := d.UpdateParticipants("test-missing", []string{"X"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateParticipants(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteRoom(t *testing.T) {
	d := setupTestDB(t)

	if _, err := d.CreateRoom("test-abc123", "Movie Night", "Alice"); err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	if err := d.DeleteRoom("test-abc123"); err != nil {
		t.Fatalf("DeleteRoom() error = %v", err)
	}
	if _, err := d.GetRoom("test-abc123"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRoom() after delete error = %v, want ErrNotFound", err)
	}

	// Удаление отсутствующей комнаты — не ошибка
	if err := d.DeleteRoom("test-abc123"); err != nil {
		t.Errorf("repeat DeleteRoom() error = %v", err)
	}
}
