package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sashankbanda/Focusly/internal/model"
	"github.com/sashankbanda/Focusly/internal/task"
)

// newTestServer mounts the real task handler over an in-memory repo, so the
// client is exercised against the actual wire format.
func newTestServer(t *testing.T) (*httptest.Server, *task.MemoryRepo) {
	t.Helper()
	repo := task.NewMemoryRepo()
	h := task.NewHandler(repo)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", h.TasksRoot)
	mux.HandleFunc("/api/tasks/", h.TasksSub)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, repo
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(srv.URL, StaticToken("test-token"))
	require.NoError(t, err)
	return c
}

func TestClient_CreateListUpdateDelete(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	due := "2026-06-01T10:00:00Z"
	created, err := c.Create(ctx, task.CreateDoc{
		Title:    "buy milk",
		Priority: model.PriorityMedium,
		DueDate:  &due,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "buy milk", created.Text)
	require.NotNil(t, created.DueDate)

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	done := true
	updated, err := c.Update(ctx, created.ID, task.Patch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.NotNil(t, updated.CompletionDate)

	require.NoError(t, c.Delete(ctx, created.ID))
	list, err = c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestClient_UpdateClearsDueDate(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	due := "2026-06-01T10:00:00Z"
	created, err := c.Create(ctx, task.CreateDoc{Title: "movable", DueDate: &due})
	require.NoError(t, err)
	require.NotNil(t, created.DueDate)

	updated, err := c.Update(ctx, created.ID, task.Patch{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
}

func TestClient_ClearHistory(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	created, err := c.Create(ctx, task.CreateDoc{Title: "old"})
	require.NoError(t, err)
	done := true
	_, err = c.Update(ctx, created.ID, task.Patch{Completed: &done})
	require.NoError(t, err)

	removed, err := c.ClearHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestClient_ErrorMapping(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	_, err := c.Update(ctx, "task_nope", task.Patch{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Create(ctx, task.CreateDoc{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestClient_AuthStatusMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tasks":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, StaticToken("expired"))
	require.NoError(t, err)

	_, err = c.List(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = c.Delete(context.Background(), "task_x")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestClient_SendsBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, StaticToken("abc123"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", got)
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", StaticToken("x"))
	assert.Error(t, err)

	_, err = New("http://localhost:8080", nil)
	assert.Error(t, err)
}
