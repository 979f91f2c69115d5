// internal/infra/google/tasks.go
package google

import (
	"context"
	"fmt"
	"time"

	"personal_assistant_bot/internal/domain/credential"
	"personal_assistant_bot/internal/domain/task"

	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"
)

// TaskList inserts tasks into a Google Tasks list.
type TaskList struct {
	base
	listID string
}

func NewTaskList(listID string, rps float64, opts ...option.ClientOption) *TaskList {
	if listID == "" {
		listID = "@default"
	}
	return &TaskList{base: newBase(rps, opts), listID: listID}
}

func (l *TaskList) Insert(ctx context.Context, cred *credential.Credential, t *task.Task) error {
	if !cred.Authorized() {
		return credential.ErrNotAuthorized
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("tasks rate limiter: %w", err)
	}

	opts := append([]option.ClientOption{option.WithTokenSource(cred.TokenSource(ctx))}, l.opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create tasks client: %w", err)
	}

	item := &tasks.Task{Title: t.Title}
	if due, ok := t.Due.Get(); ok {
		item.Due = dueDate(due)
	}
	created, err := svc.Tasks.Insert(l.listID, item).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	t.ID = created.Id
	return nil
}

// dueDate keeps the civil date of due. The Tasks API drops the time portion,
// so the date is sent as UTC midnight to avoid shifting it by a day.
func dueDate(due time.Time) string {
	y, m, d := due.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
}
