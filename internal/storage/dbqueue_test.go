package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func TestDBQueueExecuteAfterClose(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	queue := NewDBQueue(db)
	queue.Close()
	queue.Close()

	err = queue.Execute(func(*sql.DB) error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Expected ErrQueueClosed, got %v", err)
	}
}

func TestDBQueueExecuteTxRollsBackOnError(t *testing.T) {
	db, queue := setupTestDB(t)
	users := NewUserRepository(queue)
	createTestUser(t, users, 1, "")

	boom := errors.New("boom")
	err := queue.ExecuteTx(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(`UPDATE users SET referral_count = 5 WHERE user_id = 1`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT referral_count FROM users WHERE user_id = 1`).Scan(&count); err != nil {
		t.Fatalf("Failed to read count: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected rollback to keep count 0, got %d", count)
	}
}

func TestIsBusyError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("database is locked"), true},
		{errors.New("SQLITE_BUSY: retry"), true},
		{errors.New("no such table"), false},
	}

	for _, tc := range cases {
		if got := isBusyError(tc.err); got != tc.want {
			t.Errorf("isBusyError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
