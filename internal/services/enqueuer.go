package services

import (
	"context"

	"github.com/AndreiCalugar/FertiHub/internal/email"
)

// ITaskEnqueuer hands rendered emails to the background queue. Defined here,
// implemented by the tasks package, so services need not import it.
type ITaskEnqueuer interface {
	EnqueueEmail(ctx context.Context, msg *email.Message) error
}
