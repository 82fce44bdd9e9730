package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ad/langbot-referrals/internal/domain"

	_ "modernc.org/sqlite"
)

// setupTestDB opens an in-memory database with schema and migrations applied.
// A single connection keeps every statement on the same in-memory database.
func setupTestDB(t *testing.T) (*sql.DB, *DBQueue) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)

	queue := NewDBQueue(db)
	t.Cleanup(func() {
		queue.Close()
		_ = db.Close()
	})

	if err := InitSchema(queue); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}
	if err := RunMigrations(queue); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db, queue
}

func createTestUser(t *testing.T, repo *UserRepository, id int64, firstName string) *domain.User {
	t.Helper()

	now := time.Now().Truncate(time.Second)
	user := &domain.User{
		ID:           id,
		FirstName:    firstName,
		CreatedAt:    now,
		LastActiveAt: now,
	}

	created, err := repo.CreateUser(context.Background(), user)
	if err != nil {
		t.Fatalf("Failed to create user %d: %v", id, err)
	}
	if !created {
		t.Fatalf("User %d already existed", id)
	}

	return user
}
