package task

import "time"

// AttachmentKind classifies a media attachment
type AttachmentKind string

const (
	AttachmentPhoto    AttachmentKind = "photo"
	AttachmentDocument AttachmentKind = "document"
	AttachmentVideo    AttachmentKind = "video"
	AttachmentAudio    AttachmentKind = "audio"
	AttachmentVoice    AttachmentKind = "voice"
)

// Attachment references a media object held by the messaging platform.
// FileRef is opaque to this system.
type Attachment struct {
	Kind    AttachmentKind `json:"kind"`
	FileRef string         `json:"file_ref"`
}

// SurfaceKind classifies where a task rendering lives
type SurfaceKind string

const (
	SurfaceDepartmentGroup SurfaceKind = "department_group"
	SurfaceRelayGroup      SurfaceKind = "relay_group"
	SurfacePrivateChat     SurfaceKind = "private_chat"
)

// SurfaceRef is one addressable rendering of a task: the (chat, message)
// pair recorded at fan-out time. For grouped media this is the lead
// message; follower items are never edited.
type SurfaceRef struct {
	Kind      SurfaceKind `json:"kind"`
	ChatID    string      `json:"chat_id"`
	MessageID string      `json:"message_id"`
}

// HistoryEntry is one append-only log record of a lifecycle event.
// Action holds lifecycle action verbs plus system verbs recorded by the
// reconciler ("cancel_by_tracker", "imported_from_tracker").
type HistoryEntry struct {
	Action  string    `json:"action"`
	ActorID string    `json:"actor_id"`
	At      time.Time `json:"at"`
}

// Comment is a note mirrored from the external tracker
type Comment struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Task is the authoritative record of a unit of work. Status is the
// durable fact; surfaces and the external mirror are eventually-consistent
// followers.
type Task struct {
	ID               int64          `json:"id"`
	Text             string         `json:"text"`
	Attachments      []Attachment   `json:"attachments,omitempty"`
	Status           Status         `json:"status"`
	Department       string         `json:"department,omitempty"`
	AuthorID         string         `json:"author_id"`
	AuthorName       string         `json:"author_name"`
	AssigneeID       string         `json:"assignee_id,omitempty"`
	AssigneeName     string         `json:"assignee_name,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	History          []HistoryEntry `json:"history,omitempty"`
	Surfaces         []SurfaceRef   `json:"surfaces,omitempty"`
	ExternalRef      string         `json:"external_ref,omitempty"`
	ExternalComments []Comment      `json:"external_comments,omitempty"`
}

// New creates a task in the new status. The id is derived from creation
// time at millisecond resolution, matching the ids embedded in callback
// payloads.
func New(text string, attachments []Attachment, department, authorID, authorName string) *Task {
	now := time.Now()
	return &Task{
		ID:          now.UnixMilli(),
		Text:        text,
		Attachments: attachments,
		Status:      StatusNew,
		Department:  department,
		AuthorID:    authorID,
		AuthorName:  authorName,
		CreatedAt:   now,
	}
}

// Clone returns a deep copy. Store reads hand out clones so callers can
// never mutate the persisted record in place.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.Attachments = append([]Attachment(nil), t.Attachments...)
	c.History = append([]HistoryEntry(nil), t.History...)
	c.Surfaces = append([]SurfaceRef(nil), t.Surfaces...)
	c.ExternalComments = append([]Comment(nil), t.ExternalComments...)
	return &c
}

// AppendHistory records a lifecycle event
func (t *Task) AppendHistory(action, actorID string, at time.Time) {
	t.History = append(t.History, HistoryEntry{Action: action, ActorID: actorID, At: at})
}

// RecordSurface registers a rendering handle produced at fan-out
func (t *Task) RecordSurface(ref SurfaceRef) {
	t.Surfaces = append(t.Surfaces, ref)
}

// MergeExternalComments appends comments not yet present, keyed by comment
// id, and returns how many were added
func (t *Task) MergeExternalComments(comments []Comment) int {
	seen := make(map[string]bool, len(t.ExternalComments))
	for _, c := range t.ExternalComments {
		seen[c.ID] = true
	}
	added := 0
	for _, c := range comments {
		if seen[c.ID] {
			continue
		}
		t.ExternalComments = append(t.ExternalComments, c)
		seen[c.ID] = true
		added++
	}
	return added
}
