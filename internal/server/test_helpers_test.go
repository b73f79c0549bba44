package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/paperlane/notes-backend/internal/notes"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

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

func newTestRouter(t *testing.T, clock *testClock) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:server_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&notes.Note{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	service, err := notes.NewService(notes.ServiceConfig{
		Database: db,
		Clock:    clock.Now,
	})
	if err != nil {
		t.Fatalf("failed to construct notes service: %v", err)
	}

	handler, err := NewHTTPHandler(Dependencies{
		NotesService: service,
		Logger:       zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to construct handler: %v", err)
	}

	return handler
}

func performRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, path, http.NoBody)
	} else {
		request = httptest.NewRequest(method, path, strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func newRequestWithHeader(t *testing.T, method, path, headerName, headerValue string) *http.Request {
	t.Helper()
	request := httptest.NewRequest(method, path, http.NoBody)
	request.Header.Set(headerName, headerValue)
	return request
}

func recordRequest(handler http.Handler, request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}
