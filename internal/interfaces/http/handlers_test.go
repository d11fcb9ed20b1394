package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tasklinehq/taskline/internal/domain/task"
	"github.com/tasklinehq/taskline/internal/service"
	intsync "github.com/tasklinehq/taskline/internal/sync"
)

type stubCreator struct {
	gotInput service.CreateInput
	err      error
}

func (s *stubCreator) Create(ctx context.Context, in service.CreateInput) (*task.Task, error) {
	s.gotInput = in
	if s.err != nil {
		return nil, s.err
	}
	return &task.Task{
		ID:         1700000000000,
		Text:       in.Text,
		Status:     task.StatusNew,
		Department: in.Department,
		AuthorName: "Anna",
		CreatedAt:  time.Now(),
	}, nil
}

type stubSubmitter struct {
	result service.ActionResult
	err    error

	gotID     int64
	gotAction task.Action
	gotActor  string
}

func (s *stubSubmitter) Apply(ctx context.Context, taskID int64, action task.Action, actorID string) (service.ActionResult, error) {
	s.gotID, s.gotAction, s.gotActor = taskID, action, actorID
	return s.result, s.err
}

type stubRunner struct {
	stats intsync.Stats
	err   error
}

func (s *stubRunner) RunCycle(ctx context.Context) (intsync.Stats, error) { return s.stats, s.err }

type stubReporter struct{}

func (stubReporter) WriteXLSX(ctx context.Context, w io.Writer) error {
	_, err := w.Write([]byte("PK"))
	return err
}

func newTestServer(creator TaskCreator, submitter ActionSubmitter, runner CycleRunner) *Server {
	h := NewHandlers(creator, submitter, runner, stubReporter{}, zap.NewNop())
	return NewServer(DefaultServerConfig(), h, zap.NewNop())
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandlers_CreateTask(t *testing.T) {
	creator := &stubCreator{}
	srv := newTestServer(creator, &stubSubmitter{}, &stubRunner{})

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/tasks", jsonBody{
		"text":       "fix the gate",
		"department": "maintenance",
		"author_id":  "ou_author",
		"attachments": []map[string]string{
			{"kind": "photo", "file_ref": "img_1"},
		},
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "fix the gate", creator.gotInput.Text)
	require.Len(t, creator.gotInput.Attachments, 1)
	assert.Equal(t, task.AttachmentPhoto, creator.gotInput.Attachments[0].Kind)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestHandlers_CreateTaskMissingFields(t *testing.T) {
	srv := newTestServer(&stubCreator{}, &stubSubmitter{}, &stubRunner{})

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/tasks", jsonBody{"text": "no author"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlers_SubmitCallback(t *testing.T) {
	submitter := &stubSubmitter{result: service.ActionResult{Status: task.StatusInProgress}}
	srv := newTestServer(&stubCreator{}, submitter, &stubRunner{})

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/callbacks", jsonBody{
		"value":    "take_1700000000000",
		"actor_id": "ou_member",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1700000000000), submitter.gotID)
	assert.Equal(t, task.ActionTake, submitter.gotAction)
	assert.Equal(t, "ou_member", submitter.gotActor)
}

func TestHandlers_SubmitCallbackErrors(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		serviceErr error
		wantCode   int
	}{
		{"malformed payload", "garbage", nil, http.StatusBadRequest},
		{"permission denied", "cancel_1", service.ErrPermissionDenied, http.StatusForbidden},
		{"unknown task", "finish_404", service.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&stubCreator{}, &stubSubmitter{err: tt.serviceErr}, &stubRunner{})

			rec := doJSON(t, srv, http.MethodPost, "/api/v1/callbacks", jsonBody{
				"value":    tt.payload,
				"actor_id": "ou_x",
			})

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHandlers_SubmitCallbackAlreadyTerminal(t *testing.T) {
	submitter := &stubSubmitter{result: service.ActionResult{Status: task.StatusDone, AlreadyTerminal: true}}
	srv := newTestServer(&stubCreator{}, submitter, &stubRunner{})

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/callbacks", jsonBody{
		"value":    "finish_1",
		"actor_id": "ou_member",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data ActionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.AlreadyTerminal)
	assert.Equal(t, "done", resp.Data.Status)
}

func TestHandlers_Reconcile(t *testing.T) {
	srv := newTestServer(&stubCreator{}, &stubSubmitter{}, &stubRunner{stats: intsync.Stats{Pulled: 3, Created: 1}})

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/reconcile", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pulled":3`)
}

func TestHandlers_ExportReport(t *testing.T) {
	srv := newTestServer(&stubCreator{}, &stubSubmitter{}, &stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/tasks.xlsx", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
}

func TestHandlers_Health(t *testing.T) {
	srv := newTestServer(&stubCreator{}, &stubSubmitter{}, &stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

type jsonBody = map[string]any
