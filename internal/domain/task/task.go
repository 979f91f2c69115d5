package task

import (
	"context"
	"time"

	"personal_assistant_bot/internal/domain/credential"

	"github.com/samber/mo"
)

// Task is an item created from an "agregar tarea:" command.
type Task struct {
	ID    string
	Title string
	Due   mo.Option[time.Time] // only the date part is kept by the task list
}

// List defines the operations on the remote task list.
type List interface {
	Insert(ctx context.Context, cred *credential.Credential, t *Task) error
}
