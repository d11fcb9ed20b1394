package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.todoist.com/rest/v2"

// requestTimeout bounds every call to the tracker; the system tolerates
// indefinite tracker unavailability, it just logs and moves on.
const requestTimeout = 10 * time.Second

// TodoistConfig holds Todoist client configuration
type TodoistConfig struct {
	Token     string
	ProjectID string
	BaseURL   string // defaults to the public REST v2 endpoint
}

// Todoist implements Client over the Todoist REST v2 API
type Todoist struct {
	cfg        TodoistConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTodoist creates a new Todoist client
func NewTodoist(cfg TodoistConfig, logger *zap.Logger) *Todoist {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Todoist{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

var _ Client = (*Todoist)(nil)

type apiTask struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	IsCompleted bool   `json:"is_completed"`
}

type apiComment struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// ListAll pulls every task in the configured project, with comments. A
// failed comment fetch degrades that entry to an empty comment list
// rather than failing the whole pull.
func (t *Todoist) ListAll(ctx context.Context) ([]Entry, error) {
	endpoint := t.cfg.BaseURL + "/tasks"
	if t.cfg.ProjectID != "" {
		endpoint += "?project_id=" + url.QueryEscape(t.cfg.ProjectID)
	}

	var tasks []apiTask
	if err := t.do(ctx, http.MethodGet, endpoint, nil, &tasks); err != nil {
		return nil, fmt.Errorf("failed to list tracker tasks: %w", err)
	}

	entries := make([]Entry, 0, len(tasks))
	for _, at := range tasks {
		entry := Entry{ID: at.ID, Text: at.Content, IsComplete: at.IsCompleted}

		var comments []apiComment
		commentsURL := t.cfg.BaseURL + "/comments?task_id=" + url.QueryEscape(at.ID)
		if err := t.do(ctx, http.MethodGet, commentsURL, nil, &comments); err != nil {
			t.logger.Warn("Failed to fetch tracker comments",
				zap.String("external_id", at.ID),
				zap.Error(err))
		} else {
			for _, c := range comments {
				entry.Comments = append(entry.Comments, Comment{ID: c.ID, Text: c.Content})
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Create mirrors a task outward, due today, and returns the external id
func (t *Todoist) Create(ctx context.Context, text, note string) (string, error) {
	body := map[string]string{
		"content":  text,
		"due_date": time.Now().Format("2006-01-02"),
	}
	if note != "" {
		body["description"] = note
	}
	if t.cfg.ProjectID != "" {
		body["project_id"] = t.cfg.ProjectID
	}

	var created apiTask
	if err := t.do(ctx, http.MethodPost, t.cfg.BaseURL+"/tasks", body, &created); err != nil {
		return "", fmt.Errorf("failed to create tracker task: %w", err)
	}
	return created.ID, nil
}

// MarkComplete closes the external entry
func (t *Todoist) MarkComplete(ctx context.Context, id string) error {
	endpoint := t.cfg.BaseURL + "/tasks/" + url.PathEscape(id) + "/close"
	if err := t.do(ctx, http.MethodPost, endpoint, nil, nil); err != nil {
		return fmt.Errorf("failed to complete tracker task %s: %w", id, err)
	}
	return nil
}

// Delete removes the external entry
func (t *Todoist) Delete(ctx context.Context, id string) error {
	endpoint := t.cfg.BaseURL + "/tasks/" + url.PathEscape(id)
	if err := t.do(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return fmt.Errorf("failed to delete tracker task %s: %w", id, err)
	}
	return nil
}

// AddComment attaches a note to the external entry
func (t *Todoist) AddComment(ctx context.Context, id, text string) (string, error) {
	body := map[string]string{"task_id": id, "content": text}

	var created apiComment
	if err := t.do(ctx, http.MethodPost, t.cfg.BaseURL+"/comments", body, &created); err != nil {
		return "", fmt.Errorf("failed to add tracker comment: %w", err)
	}
	return created.ID, nil
}

func (t *Todoist) do(ctx context.Context, method, endpoint string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+t.cfg.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tracker API %s %s: status %d: %s", method, endpoint, resp.StatusCode, raw)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode tracker response: %w", err)
	}
	return nil
}
