package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type mockDriver struct {
	sent []string
	err  error
}

func (d *mockDriver) Channel() Channel { return Push }

func (d *mockDriver) Send(ctx context.Context, recipient, title, body string, data map[string]string) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, recipient)
	return nil
}

func marshalTask(t *testing.T, task Task) []byte {
	t.Helper()
	body, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal task: %v", err)
	}
	return body
}

func TestWorkerProcessTask(t *testing.T) {
	driver := &mockDriver{}
	worker := NewWorker(QueuePush, driver, nil, nil, nil)

	body := marshalTask(t, Task{
		ID:         "task_1",
		Channel:    Push,
		UserID:     "user_1",
		Recipient:  "user_1",
		TemplateID: "reminder",
		Title:      "Recordatorio",
		Data:       map[string]string{"UserName": "Ana", "Body": "Mañana empieza tu voluntariado"},
		MaxRetries: 3,
	})

	if err := worker.ProcessTask(context.Background(), body); err != nil {
		t.Fatalf("ProcessTask failed: %v", err)
	}
	if len(driver.sent) != 1 || driver.sent[0] != "user_1" {
		t.Errorf("expected one send to user_1, got %v", driver.sent)
	}
}

func TestWorkerFailsAfterMaxRetries(t *testing.T) {
	driver := &mockDriver{err: errors.New("gateway down")}
	worker := NewWorker(QueuePush, driver, nil, nil, nil)

	body := marshalTask(t, Task{
		ID:         "task_1",
		Channel:    Push,
		Recipient:  "user_1",
		RetryCount: 2,
		MaxRetries: 3,
	})

	if err := worker.ProcessTask(context.Background(), body); err == nil {
		t.Fatal("expected error once retries are exhausted")
	}
}

func TestWorkerRejectsMalformedTask(t *testing.T) {
	worker := NewWorker(QueuePush, &mockDriver{}, nil, nil, nil)

	if err := worker.ProcessTask(context.Background(), []byte("not json")); err == nil {
		t.Fatal("expected error for malformed task body")
	}
}
