package service

import "errors"

var (
	// ErrNotFound is returned for an unknown task id
	ErrNotFound = errors.New("task not found")

	// ErrPermissionDenied is returned when the actor lacks authority for
	// the action given the task's current state. The task is unchanged.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidAction is returned for an unrecognized action kind
	ErrInvalidAction = errors.New("invalid action")
)
