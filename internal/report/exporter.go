package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tasklinehq/taskline/internal/domain/task"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Store is the slice of the task repository the exporter reads from
type Store interface {
	GetAll(ctx context.Context) ([]*task.Task, error)
}

// Exporter renders the current task ledger as an xlsx workbook
type Exporter struct {
	store  Store
	logger *zap.Logger
}

// NewExporter creates an exporter
func NewExporter(store Store, logger *zap.Logger) *Exporter {
	return &Exporter{store: store, logger: logger}
}

var columns = []string{"ID", "Created", "Department", "Status", "Task", "Author", "Assignee", "History"}

// WriteXLSX writes the full task list, newest first, to w
func (e *Exporter) WriteXLSX(ctx context.Context, w io.Writer) error {
	tasks, err := e.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tasks for report: %w", err)
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID > tasks[j].ID })

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	for col, title := range columns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		e.setCell(f, sheet, cell, title)
	}

	for row, t := range tasks {
		values := []any{
			t.ID,
			t.CreatedAt.Format("2006-01-02 15:04"),
			t.Department,
			t.Status.String(),
			t.Text,
			t.AuthorName,
			t.AssigneeName,
			historySummary(t),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			e.setCell(f, sheet, cell, v)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	e.logger.Info("Task report exported", zap.Int("tasks", len(tasks)))
	return nil
}

func (e *Exporter) setCell(f *excelize.File, sheet, cell string, value any) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

func historySummary(t *task.Task) string {
	parts := make([]string, 0, len(t.History))
	for _, h := range t.History {
		parts = append(parts, fmt.Sprintf("%s %s by %s", h.At.Format("01-02 15:04"), h.Action, h.ActorID))
	}
	return strings.Join(parts, "; ")
}
