package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// Requeuer republishes a task for a later retry. Satisfied by the
// RabbitMQ client's Publish.
type Requeuer interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

// Worker processes notification tasks from RabbitMQ
type Worker struct {
	queue   string
	driver  Driver
	redis   *redis.Client
	history *Repository
	requeue Requeuer
}

// NewWorker creates a new notification worker. history and requeue may be
// nil; delivery then runs without persistence or delayed retries.
func NewWorker(queue string, driver Driver, redisClient *redis.Client, history *Repository, requeue Requeuer) *Worker {
	return &Worker{
		queue:   queue,
		driver:  driver,
		redis:   redisClient,
		history: history,
		requeue: requeue,
	}
}

// ProcessTask processes a notification task with idempotency and retry logic
func (w *Worker) ProcessTask(ctx context.Context, body []byte) error {
	var task Task
	if err := json.Unmarshal(body, &task); err != nil {
		return fmt.Errorf("failed to unmarshal task: %w", err)
	}

	// Idempotency check
	if w.redis != nil {
		idempotencyKey := fmt.Sprintf("notif:sent:%s", task.ID)
		exists, err := w.redis.Exists(ctx, idempotencyKey).Result()
		if err != nil {
			log.Printf("Redis error checking idempotency: %v", err)
		} else if exists > 0 {
			log.Printf("Task %s already processed (idempotent skip)", task.ID)
			return nil
		}
	}

	content, err := RenderTemplate(task.TemplateID, task.Data)
	if err != nil {
		log.Printf("Failed to render template: %v", err)
		content = "Tenés una novedad en VoluntApp"
	}

	title := task.Title
	if title == "" {
		title = "VoluntApp"
	}

	if err := w.driver.Send(ctx, task.Recipient, title, content, task.Data); err != nil {
		log.Printf("Failed to send notification: %v", err)
		w.record(ctx, &task, title, content, StatusFailed)
		return w.handleRetry(ctx, &task, err)
	}

	// Mark as sent (idempotency)
	if w.redis != nil {
		w.redis.Set(ctx, fmt.Sprintf("notif:sent:%s", task.ID), "1", 24*time.Hour)
	}
	w.record(ctx, &task, title, content, StatusSent)

	log.Printf("Successfully processed task %s via %s", task.ID, task.Channel)
	return nil
}

func (w *Worker) handleRetry(ctx context.Context, task *Task, originalErr error) error {
	task.RetryCount++
	if task.RetryCount >= task.MaxRetries {
		log.Printf("Task %s exceeded max retries, sending to DLQ", task.ID)
		return fmt.Errorf("max retries exceeded: %w", originalErr)
	}

	delay := time.Duration(math.Pow(2, float64(task.RetryCount))) * time.Second
	log.Printf("Task %s will retry in %v (attempt %d/%d)", task.ID, delay, task.RetryCount, task.MaxRetries)

	if w.requeue != nil {
		body, err := json.Marshal(task)
		if err != nil {
			return fmt.Errorf("marshal for retry: %w", err)
		}
		time.AfterFunc(delay, func() {
			if err := w.requeue.Publish(context.Background(), w.queue, body); err != nil {
				log.Printf("Failed to requeue task %s: %v", task.ID, err)
			}
		})
		return nil
	}
	return originalErr
}

func (w *Worker) record(ctx context.Context, task *Task, title, content string, status Status) {
	if w.history == nil {
		return
	}
	n := &Notification{
		UserID:    task.UserID,
		Recipient: task.Recipient,
		Channel:   task.Channel,
		Title:     title,
		Body:      content,
		Data:      task.Data,
		Status:    status,
	}
	if err := w.history.Create(ctx, n); err != nil {
		log.Printf("Failed to record notification history: %v", err)
	}
}
