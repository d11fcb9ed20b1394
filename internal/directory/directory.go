package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/tasklinehq/taskline/internal/domain/task"
	"go.uber.org/zap"
)

// Department is one staffed unit with its group chat and member roster.
// Members maps user id to display name.
type Department struct {
	Name    string            `json:"name"`
	ChatID  string            `json:"chat_id"`
	Members map[string]string `json:"members"`
}

// Service answers membership and privilege questions from a JSON roster
// file. The roster is owned by an out-of-scope sync job; this service only
// reads it.
type Service struct {
	path       string
	operatorID string
	logger     *zap.Logger

	mu          sync.RWMutex
	departments map[string]Department
}

// NewService loads the roster file. operatorID identifies the single
// privileged operator.
func NewService(path, operatorID string, logger *zap.Logger) (*Service, error) {
	s := &Service{
		path:        path,
		operatorID:  operatorID,
		logger:      logger,
		departments: map[string]Department{},
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the roster file, replacing the in-memory set
func (s *Service) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read departments file: %w", err)
	}
	var departments map[string]Department
	if err := json.Unmarshal(data, &departments); err != nil {
		return fmt.Errorf("failed to parse departments file: %w", err)
	}

	s.mu.Lock()
	s.departments = departments
	s.mu.Unlock()

	s.logger.Info("Departments loaded",
		zap.String("path", s.path),
		zap.Int("count", len(departments)))
	return nil
}

// MembersOf returns the member roster of a department, keyed by user id
func (s *Service) MembersOf(key string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make(map[string]string, len(s.departments[key].Members))
	for id, name := range s.departments[key].Members {
		members[id] = name
	}
	return members
}

// IsPrivileged reports whether the user is the designated operator
func (s *Service) IsPrivileged(userID string) bool {
	return userID != "" && userID == s.operatorID
}

// OperatorID returns the privileged operator's user id
func (s *Service) OperatorID() string {
	return s.operatorID
}

// ChatID returns the department's group chat id, or empty if it has none
func (s *Service) ChatID(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.departments[key].ChatID
}

// DepartmentName returns the department's display name, falling back to
// the key for unknown departments
func (s *Service) DepartmentName(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.departments[key]; ok && d.Name != "" {
		return d.Name
	}
	return key
}

// DisplayName resolves a user id to a roster name, falling back to the id
func (s *Service) DisplayName(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.departments {
		if name, ok := d.Members[userID]; ok {
			return name
		}
	}
	return userID
}

// ViewerFor assembles the permission evaluator's input for a user: the
// full membership set plus the privileged flag
func (s *Service) ViewerFor(userID string) task.Viewer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	memberships := map[string]bool{}
	for key, d := range s.departments {
		if _, ok := d.Members[userID]; ok {
			memberships[key] = true
		}
	}
	return task.Viewer{
		ID:          userID,
		Departments: memberships,
		Privileged:  s.IsPrivileged(userID),
	}
}
