package task

// Viewer carries everything permission evaluation needs to know about the
// acting user. Departments holds the keys of every department the viewer
// belongs to; Privileged marks the single designated operator with blanket
// authority.
type Viewer struct {
	ID          string
	Departments map[string]bool
	Privileged  bool
}

// InDepartment reports membership in the given department key
func (v Viewer) InDepartment(key string) bool {
	return v.Departments[key]
}

// LegalActions is the authorization decision: the exact set of actions the
// viewer may perform against the task's current state. It is pure and
// depends only on status, membership, authorship and the privileged
// flag, never on which surface the viewer clicked.
//
//   - take: task is new and the viewer is privileged or a member of the
//     task's department.
//   - finish: task is new or in progress; open to any viewer so completion
//     is never blocked by an absent assignee.
//   - cancel: task is new or in progress and the viewer is privileged or
//     the author.
//
// Terminal tasks permit nothing.
func LegalActions(t *Task, v Viewer) []Action {
	if t == nil || t.Status.IsTerminal() {
		return nil
	}
	var actions []Action
	if t.Status == StatusNew && (v.Privileged || v.InDepartment(t.Department)) {
		actions = append(actions, ActionTake)
	}
	if t.Status == StatusNew || t.Status == StatusInProgress {
		actions = append(actions, ActionFinish)
		if v.Privileged || v.ID == t.AuthorID {
			actions = append(actions, ActionCancel)
		}
	}
	return actions
}

// DisplayActions is the render-time affordance set for surfaces with no
// bound viewer (group chats): the union of actions plausibly legal for
// someone. Display never grants authority; every click re-evaluates
// through LegalActions against the actual clicking viewer.
func DisplayActions(t *Task) []Action {
	if t == nil || t.Status.IsTerminal() {
		return nil
	}
	var actions []Action
	if t.Status == StatusNew {
		actions = append(actions, ActionTake)
	}
	if t.Status == StatusNew || t.Status == StatusInProgress {
		actions = append(actions, ActionFinish, ActionCancel)
	}
	return actions
}
