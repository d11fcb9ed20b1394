package lark

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tasklinehq/taskline/internal/domain/task"
)

// Button clicks arrive as string payloads of the form "<action>_<taskID>"
// ("take_1700000000000"). They are decoded exactly once, here at the
// transport boundary; everything past this point works with typed values.

// ActionRequest is the typed form of a decoded callback payload
type ActionRequest struct {
	Action task.Action
	TaskID int64
}

// FormatCallback encodes a button payload for a task action
func FormatCallback(a task.Action, taskID int64) string {
	return fmt.Sprintf("%s_%d", a, taskID)
}

// ParseCallback decodes a button payload into a typed action request
func ParseCallback(payload string) (ActionRequest, error) {
	idx := strings.LastIndex(payload, "_")
	if idx <= 0 || idx == len(payload)-1 {
		return ActionRequest{}, fmt.Errorf("malformed callback payload %q", payload)
	}

	action := task.Action(payload[:idx])
	if !action.IsValid() {
		return ActionRequest{}, fmt.Errorf("unknown action in callback payload %q", payload)
	}

	taskID, err := strconv.ParseInt(payload[idx+1:], 10, 64)
	if err != nil {
		return ActionRequest{}, fmt.Errorf("invalid task id in callback payload %q: %w", payload, err)
	}

	return ActionRequest{Action: action, TaskID: taskID}, nil
}
