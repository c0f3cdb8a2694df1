package notify

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"github.com/voluntapp/voluntapp/internal/opportunity"
	"github.com/voluntapp/voluntapp/internal/postulation"
)

// Queue names consumed by the delivery workers.
const (
	QueuePush  = "push.notifications"
	QueueEmail = "email.notifications"
)

// RoutingConfig defines which channels to notify for each event type
type RoutingConfig struct {
	EventType EventType
	Push      bool
	Email     bool
}

// DefaultRoutingRules defines the default routing for each event type.
// Status decisions go to both channels; the rest stay push-only so inboxes
// are not flooded.
var DefaultRoutingRules = map[EventType]RoutingConfig{
	EventPostulationStatusChanged: {
		EventType: EventPostulationStatusChanged,
		Push:      true,
		Email:     true,
	},
	EventOpportunityPublished: {
		EventType: EventOpportunityPublished,
		Push:      true,
		Email:     false,
	},
	EventReminderDue: {
		EventType: EventReminderDue,
		Push:      true,
		Email:     false,
	},
}

// RabbitPublisher interface for RabbitMQ publishing
type RabbitPublisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

// Profile is the slice of a user record the router needs for addressing.
type Profile struct {
	Email string
	Name  string
}

// UserDirectory resolves addressing data for a user id.
type UserDirectory interface {
	ProfileByID(ctx context.Context, userID string) (*Profile, error)
}

// Router routes events to the delivery queues.
type Router struct {
	rabbitClient RabbitPublisher
	users        UserDirectory
	opps         postulation.OpportunityGetter
	rules        map[EventType]RoutingConfig
}

// NewRouter creates a new event router. opps may be nil; opportunity titles
// then fall back to the id.
func NewRouter(rabbitClient RabbitPublisher, users UserDirectory, opps postulation.OpportunityGetter) *Router {
	return &Router{
		rabbitClient: rabbitClient,
		users:        users,
		opps:         opps,
		rules:        DefaultRoutingRules,
	}
}

// PostulationStatusChanged builds and routes the event for a reviewed
// decision. Failures are logged, never surfaced to the caller.
func (r *Router) PostulationStatusChanged(ctx context.Context, p postulation.Postulation) {
	event, err := NewEvent(EventPostulationStatusChanged, StatusChangeData{
		PostulationID:    p.ID,
		UserID:           p.UserID,
		OpportunityID:    p.OpportunityID,
		OpportunityTitle: r.opportunityTitle(ctx, p.OpportunityID),
		Status:           string(p.Status),
	})
	if err != nil {
		log.Printf("Failed to build status change event: %v", err)
		return
	}
	if err := r.Route(ctx, event); err != nil {
		log.Printf("Failed to route status change event: %v", err)
	}
}

// OpportunityPublished routes a broadcast for a newly opened opportunity to
// the given recipients. Used by reviewer-initiated announcements.
func (r *Router) OpportunityPublished(ctx context.Context, o opportunity.Opportunity, recipientIDs []string) {
	for _, userID := range recipientIDs {
		event, err := NewEvent(EventOpportunityPublished, OpportunityPublishedData{
			OpportunityID: o.ID,
			Title:         o.Title,
			Category:      o.Category,
		})
		if err != nil {
			log.Printf("Failed to build opportunity event: %v", err)
			return
		}
		if err := r.routeForUser(ctx, event, userID); err != nil {
			log.Printf("Failed to route opportunity event for user %s: %v", userID, err)
		}
	}
}

// Route processes an event and routes it to appropriate queues
func (r *Router) Route(ctx context.Context, event *Event) error {
	userID, err := r.extractUserID(event)
	if err != nil {
		return err
	}
	return r.routeForUser(ctx, event, userID)
}

func (r *Router) routeForUser(ctx context.Context, event *Event, userID string) error {
	config, ok := r.rules[event.Type]
	if !ok {
		log.Printf("No routing rules for event type: %s", event.Type)
		return nil
	}

	profile := r.lookupProfile(ctx, userID)
	templateData, title := r.buildTemplateData(event, profile)

	if config.Push {
		task := r.newTask(event, Push, userID, userID, title, templateData)
		if err := r.publishTask(ctx, QueuePush, task); err != nil {
			log.Printf("Failed to route to push queue: %v", err)
		}
	}

	if config.Email && profile != nil && profile.Email != "" {
		task := r.newTask(event, Email, userID, profile.Email, title, templateData)
		if err := r.publishTask(ctx, QueueEmail, task); err != nil {
			log.Printf("Failed to route to email queue: %v", err)
		}
	}

	return nil
}

func (r *Router) newTask(event *Event, channel Channel, userID, recipient, title string, data map[string]string) *Task {
	return &Task{
		ID:         "task_" + uuid.NewString(),
		Channel:    channel,
		UserID:     userID,
		Recipient:  recipient,
		TemplateID: r.templateID(event, data),
		Title:      title,
		Data:       data,
		EventID:    event.ID,
		EventType:  event.Type,
		RetryCount: 0,
		MaxRetries: 3,
	}
}

func (r *Router) publishTask(ctx context.Context, queue string, task *Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return r.rabbitClient.Publish(ctx, queue, data)
}

func (r *Router) extractUserID(event *Event) (string, error) {
	switch event.Type {
	case EventPostulationStatusChanged:
		data, err := event.ParseStatusChangeData()
		if err != nil {
			return "", err
		}
		return data.UserID, nil
	case EventReminderDue:
		data, err := event.ParseReminderDueData()
		if err != nil {
			return "", err
		}
		return data.UserID, nil
	default:
		return "", nil
	}
}

// buildTemplateData flattens the event payload into template data and the
// push title. The "type" key is the payload discriminant the mobile client
// switches on.
func (r *Router) buildTemplateData(event *Event, profile *Profile) (map[string]string, string) {
	data := make(map[string]string)
	if profile != nil {
		data["UserName"] = profile.Name
	}
	title := "VoluntApp"

	switch event.Type {
	case EventPostulationStatusChanged:
		if sc, err := event.ParseStatusChangeData(); err == nil {
			data["type"] = TypePostulacionStatus
			data["postulacionId"] = sc.PostulationID
			data["opportunityId"] = sc.OpportunityID
			data["status"] = sc.Status
			data["OpportunityTitle"] = sc.OpportunityTitle
			data["Status"] = sc.Status
			switch sc.Status {
			case "accepted":
				title = "¡Postulación aceptada!"
			case "rejected":
				title = "Resultado de tu postulación"
			default:
				title = "Tu postulación cambió de estado"
			}
		}
	case EventOpportunityPublished:
		if op, err := event.ParseOpportunityPublishedData(); err == nil {
			data["type"] = TypeNuevaOportunidad
			data["opportunityId"] = op.OpportunityID
			data["OpportunityTitle"] = op.Title
			title = "Nueva oportunidad de voluntariado"
		}
	case EventReminderDue:
		if rd, err := event.ParseReminderDueData(); err == nil {
			data["type"] = TypeRecordatorio
			data["opportunityId"] = rd.OpportunityID
			data["Body"] = rd.Body
			title = rd.Title
		}
	}

	return data, title
}

func (r *Router) templateID(event *Event, data map[string]string) string {
	switch event.Type {
	case EventPostulationStatusChanged:
		switch data["status"] {
		case "accepted":
			return "postulation_accepted"
		case "rejected":
			return "postulation_rejected"
		default:
			return "postulation_status"
		}
	case EventOpportunityPublished:
		return "opportunity_published"
	case EventReminderDue:
		return "reminder"
	default:
		return "generic"
	}
}

func (r *Router) lookupProfile(ctx context.Context, userID string) *Profile {
	if r.users == nil || userID == "" {
		return nil
	}
	profile, err := r.users.ProfileByID(ctx, userID)
	if err != nil {
		log.Printf("Failed to resolve profile for user %s: %v", userID, err)
		return nil
	}
	return profile
}

func (r *Router) opportunityTitle(ctx context.Context, opportunityID string) string {
	if r.opps == nil {
		return opportunityID
	}
	o, err := r.opps.GetByID(ctx, opportunityID)
	if err != nil || o == nil {
		return opportunityID
	}
	return o.Title
}
