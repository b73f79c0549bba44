package notes

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func mustNoteID(t *testing.T, value int64) NoteID {
	t.Helper()
	id, err := NewNoteID(value)
	if err != nil {
		t.Fatalf("unexpected note id error: %v", err)
	}
	return id
}

func mustTitle(t *testing.T, value string) NoteTitle {
	t.Helper()
	title, err := NewNoteTitle(value)
	if err != nil {
		t.Fatalf("unexpected title error: %v", err)
	}
	return title
}

func mustContent(t *testing.T, value string) NoteContent {
	t.Helper()
	content, err := NewNoteContent(value)
	if err != nil {
		t.Fatalf("unexpected content error: %v", err)
	}
	return content
}

// testClock hands out a controllable instant so tests can advance time
// between operations without sleeping.
type testClock struct {
	current time.Time
}

func newTestClock(unixSeconds int64) *testClock {
	return &testClock{current: time.Unix(unixSeconds, 0).UTC()}
}

func (c *testClock) Now() time.Time {
	return c.current
}

func (c *testClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newTestService(t *testing.T, clock *testClock) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:notes_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Note{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	service, err := NewService(ServiceConfig{
		Database: db,
		Clock:    clock.Now,
	})
	if err != nil {
		t.Fatalf("failed to construct notes service: %v", err)
	}

	return service, db
}
