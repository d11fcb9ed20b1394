package tracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestTodoist(t *testing.T, handler http.HandlerFunc) *Todoist {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewTodoist(TodoistConfig{Token: "tok", ProjectID: "p1", BaseURL: srv.URL}, zap.NewNop())
}

func TestTodoist_ListAll(t *testing.T) {
	client := newTestTodoist(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/tasks":
			assert.Equal(t, "p1", r.URL.Query().Get("project_id"))
			_ = json.NewEncoder(w).Encode([]apiTask{
				{ID: "t1", Content: "buy nails", IsCompleted: false},
				{ID: "t2", Content: "sign contract", IsCompleted: true},
			})
		case "/comments":
			switch r.URL.Query().Get("task_id") {
			case "t1":
				_ = json.NewEncoder(w).Encode([]apiComment{{ID: "c1", Content: "urgent"}})
			default:
				// Comment fetch failure degrades gracefully.
				http.Error(w, "boom", http.StatusInternalServerError)
			}
		default:
			http.NotFound(w, r)
		}
	})

	entries, err := client.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "t1", entries[0].ID)
	assert.False(t, entries[0].IsComplete)
	require.Len(t, entries[0].Comments, 1)
	assert.Equal(t, "urgent", entries[0].Comments[0].Text)

	assert.True(t, entries[1].IsComplete)
	assert.Empty(t, entries[1].Comments)
}

func TestTodoist_Create(t *testing.T) {
	client := newTestTodoist(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/tasks", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "fix the gate", body["content"])
		assert.Equal(t, "created by A", body["description"])
		assert.Equal(t, "p1", body["project_id"])
		assert.NotEmpty(t, body["due_date"])

		_ = json.NewEncoder(w).Encode(apiTask{ID: "t99"})
	})

	id, err := client.Create(context.Background(), "fix the gate", "created by A")
	require.NoError(t, err)
	assert.Equal(t, "t99", id)
}

func TestTodoist_MarkCompleteAndDelete(t *testing.T) {
	var gotClose, gotDelete bool
	client := newTestTodoist(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/tasks/t1/close":
			gotClose = true
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodDelete && r.URL.Path == "/tasks/t2":
			gotDelete = true
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	})

	require.NoError(t, client.MarkComplete(context.Background(), "t1"))
	require.NoError(t, client.Delete(context.Background(), "t2"))
	assert.True(t, gotClose)
	assert.True(t, gotDelete)
}

func TestTodoist_AddComment(t *testing.T) {
	client := newTestTodoist(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/comments", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "t1", body["task_id"])
		_ = json.NewEncoder(w).Encode(apiComment{ID: "c42"})
	})

	id, err := client.AddComment(context.Background(), "t1", "Ivan took the task")
	require.NoError(t, err)
	assert.Equal(t, "c42", id)
}

func TestTodoist_ErrorStatus(t *testing.T) {
	client := newTestTodoist(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	_, err := client.ListAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
