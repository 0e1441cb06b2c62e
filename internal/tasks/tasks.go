package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/AndreiCalugar/FertiHub/internal/config"
	"github.com/AndreiCalugar/FertiHub/internal/email"
	"github.com/AndreiCalugar/FertiHub/internal/services"
)

// Task types routed through the asynq queues.
const (
	TypeEmailDelivery = "email:deliver"
	TypeFollowUpScan  = "followup:scan"
	TypeDeadlineCheck = "inquiry:deadline:check"
)

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// Enqueuer implements services.ITaskEnqueuer on top of an asynq client.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueEmail queues a rendered message for background delivery.
func (e *Enqueuer) EnqueueEmail(ctx context.Context, msg *email.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}
	task := asynq.NewTask(TypeEmailDelivery, payload)
	if _, err := e.client.EnqueueContext(ctx, task, asynq.Queue("default"), asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("failed to enqueue email task: %w", err)
	}
	return nil
}

// EnqueueScan queues a dispatcher pass (followup:scan or
// inquiry:deadline:check). Used by the bg-mode scheduler; the cron HTTP
// endpoints run their passes inline instead.
func (e *Enqueuer) EnqueueScan(ctx context.Context, taskType string) error {
	task := asynq.NewTask(taskType, nil)
	if _, err := e.client.EnqueueContext(ctx, task, asynq.Queue("low"), asynq.MaxRetry(0)); err != nil {
		return fmt.Errorf("failed to enqueue %s task: %w", taskType, err)
	}
	return nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor holds the dependencies the task handlers need.
type TaskProcessor struct {
	cfg               *config.Config
	emailSender       email.Sender
	engagementService services.IEngagementService
}

func NewTaskProcessor(cfg *config.Config, emailSender email.Sender,
	engagementService services.IEngagementService) *TaskProcessor {
	return &TaskProcessor{
		cfg:               cfg,
		emailSender:       emailSender,
		engagementService: engagementService,
	}
}

// SetupServer configures an Asynq server with all task handlers registered.
// The caller runs it with srv.Run(mux) and stops it with srv.Shutdown().
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmailDelivery, processor.HandleEmailDeliveryTask)
	mux.HandleFunc(TypeFollowUpScan, processor.HandleFollowUpScanTask)
	mux.HandleFunc(TypeDeadlineCheck, processor.HandleDeadlineCheckTask)
	log.Println("Registered background task handlers.")

	return srv, mux
}

// --- Task Handlers ---

// HandleEmailDeliveryTask delivers one already-rendered email. Transport
// errors are returned so asynq retries; a corrupt payload is not retryable.
func (p *TaskProcessor) HandleEmailDeliveryTask(ctx context.Context, t *asynq.Task) error {
	var msg email.Message
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return fmt.Errorf("failed to unmarshal email task payload: %v: %w", err, asynq.SkipRetry)
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("email task has no recipients: %w", asynq.SkipRetry)
	}

	if err := p.emailSender.Send(ctx, &msg); err != nil {
		log.Printf("Email delivery failed (kind=%s, to=%v): %v", msg.Kind, msg.To, err)
		return err
	}
	log.Printf("Email task processed: kind=%s, to=%v", msg.Kind, msg.To)
	return nil
}

// HandleFollowUpScanTask runs a full auto-follow-up dispatcher pass.
func (p *TaskProcessor) HandleFollowUpScanTask(ctx context.Context, t *asynq.Task) error {
	result, err := p.engagementService.RunFollowUpPass(ctx)
	if err != nil {
		return fmt.Errorf("follow-up scan failed: %w", err)
	}
	log.Printf("Follow-up scan done: %d sent, %d contacts considered", result.FollowedUp, len(result.Details))
	return nil
}

// HandleDeadlineCheckTask runs a deadline-reminder pass.
func (p *TaskProcessor) HandleDeadlineCheckTask(ctx context.Context, t *asynq.Task) error {
	result, err := p.engagementService.RunDeadlineReminderPass(ctx)
	if err != nil {
		return fmt.Errorf("deadline check failed: %w", err)
	}
	log.Printf("Deadline check done: %d reminders", result.RemindersCount)
	return nil
}
