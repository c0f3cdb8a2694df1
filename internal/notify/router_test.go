package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/voluntapp/voluntapp/internal/postulation"
)

type capturedPublish struct {
	queue string
	task  Task
}

type mockPublisher struct {
	published []capturedPublish
}

func (m *mockPublisher) Publish(ctx context.Context, queue string, body []byte) error {
	var task Task
	if err := json.Unmarshal(body, &task); err != nil {
		return err
	}
	m.published = append(m.published, capturedPublish{queue: queue, task: task})
	return nil
}

type mockDirectory struct {
	profiles map[string]*Profile
}

func (m *mockDirectory) ProfileByID(ctx context.Context, userID string) (*Profile, error) {
	return m.profiles[userID], nil
}

func TestRouterStatusChangeGoesToBothChannels(t *testing.T) {
	pub := &mockPublisher{}
	dir := &mockDirectory{profiles: map[string]*Profile{
		"user_1": {Email: "ana@uni.edu", Name: "Ana"},
	}}
	router := NewRouter(pub, dir, nil)

	router.PostulationStatusChanged(context.Background(), postulation.Postulation{
		ID:            "post_1",
		UserID:        "user_1",
		OpportunityID: "opp_1",
		Status:        postulation.StatusAccepted,
	})

	if len(pub.published) != 2 {
		t.Fatalf("expected 2 tasks (push + email), got %d", len(pub.published))
	}

	byQueue := map[string]Task{}
	for _, p := range pub.published {
		byQueue[p.queue] = p.task
	}

	push, ok := byQueue[QueuePush]
	if !ok {
		t.Fatal("expected a task on the push queue")
	}
	if push.Recipient != "user_1" {
		t.Errorf("push recipient should be the user id, got %s", push.Recipient)
	}
	if push.Data["type"] != TypePostulacionStatus {
		t.Errorf("expected payload type %s, got %s", TypePostulacionStatus, push.Data["type"])
	}
	if push.Data["postulacionId"] != "post_1" || push.Data["status"] != "accepted" {
		t.Errorf("unexpected push payload: %+v", push.Data)
	}
	if push.Title != "¡Postulación aceptada!" {
		t.Errorf("unexpected push title: %s", push.Title)
	}

	email, ok := byQueue[QueueEmail]
	if !ok {
		t.Fatal("expected a task on the email queue")
	}
	if email.Recipient != "ana@uni.edu" {
		t.Errorf("email recipient should be the address, got %s", email.Recipient)
	}
	if email.TemplateID != "postulation_accepted" {
		t.Errorf("unexpected template: %s", email.TemplateID)
	}
}

func TestRouterSkipsEmailWithoutAddress(t *testing.T) {
	pub := &mockPublisher{}
	router := NewRouter(pub, &mockDirectory{profiles: map[string]*Profile{}}, nil)

	router.PostulationStatusChanged(context.Background(), postulation.Postulation{
		ID:            "post_1",
		UserID:        "user_unknown",
		OpportunityID: "opp_1",
		Status:        postulation.StatusRejected,
	})

	if len(pub.published) != 1 {
		t.Fatalf("expected only the push task, got %d", len(pub.published))
	}
	if pub.published[0].queue != QueuePush {
		t.Errorf("expected push queue, got %s", pub.published[0].queue)
	}
}

func TestRouterReminderIsPushOnly(t *testing.T) {
	pub := &mockPublisher{}
	dir := &mockDirectory{profiles: map[string]*Profile{
		"user_1": {Email: "ana@uni.edu", Name: "Ana"},
	}}
	router := NewRouter(pub, dir, nil)

	event, err := NewEvent(EventReminderDue, ReminderDueData{
		UserID:        "user_1",
		OpportunityID: "opp_1",
		Title:         "Recordatorio",
		Body:          "Mañana vence la inscripción",
	})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	if err := router.Route(context.Background(), event); err != nil {
		t.Fatalf("Route failed: %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected 1 task, got %d", len(pub.published))
	}
	task := pub.published[0].task
	if task.Data["type"] != TypeRecordatorio {
		t.Errorf("expected payload type %s, got %s", TypeRecordatorio, task.Data["type"])
	}
	if task.Title != "Recordatorio" {
		t.Errorf("unexpected title: %s", task.Title)
	}
}
