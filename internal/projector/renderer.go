package projector

import (
	"fmt"
	"strings"

	"github.com/tasklinehq/taskline/internal/domain/task"
)

// NameResolver maps department keys to display names for rendering
type NameResolver interface {
	DepartmentName(key string) string
}

// Renderer turns a task into the payload pushed to every surface. The
// affordance set is always computed with no bound viewer; authorization
// happens at click time, never at render time.
type Renderer struct {
	names NameResolver
}

// NewRenderer creates a renderer backed by the given name resolver
func NewRenderer(names NameResolver) *Renderer {
	return &Renderer{names: names}
}

var statusBanners = map[task.Status]string{
	task.StatusNew:        "🚩 NEW TASK",
	task.StatusInProgress: "🛠 IN PROGRESS",
	task.StatusDone:       "✅ DONE",
	task.StatusCancelled:  "❌ CANCELLED",
}

// Render builds the payload for a task. Terminal renderings carry no
// action affordances at all. This is the one policy decision enforced
// here rather than in the permission evaluator.
func (r *Renderer) Render(t *task.Task) Payload {
	var actions []task.Action
	if !t.Status.IsTerminal() {
		actions = task.DisplayActions(t)
	}
	return Payload{
		TaskID:      t.ID,
		Text:        r.renderText(t),
		Attachments: t.Attachments,
		Actions:     actions,
	}
}

func (r *Renderer) renderText(t *task.Task) string {
	assignee := t.AssigneeName
	if assignee == "" {
		assignee = "unassigned"
	}
	department := "—"
	if t.Department != "" {
		department = r.names.DepartmentName(t.Department)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📝 Task: %s\n", t.Text)
	fmt.Fprintf(&b, "Department: %s\n", department)
	fmt.Fprintf(&b, "Assignee: %s\n", assignee)
	fmt.Fprintf(&b, "Author: %s\n", t.AuthorName)
	fmt.Fprintf(&b, "Created: %s\n", t.CreatedAt.Format("02.01.2006 15:04"))
	b.WriteString("\n")
	b.WriteString(statusBanners[t.Status])
	return b.String()
}
