package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/voluntapp/voluntapp/internal/notify"
	"github.com/voluntapp/voluntapp/internal/opportunity"
	"github.com/voluntapp/voluntapp/internal/postulation"
)

// Reminder fire times, local to the engine's timezone.
const (
	deadlineReminderHour = 9 // one day before the enrollment deadline
	startReminderHour    = 8 // on the activity start date
)

// statusCopy is the fixed status-to-copy mapping for immediate status
// notifications. Statuses not present here are silently ignored.
var statusCopy = map[postulation.Status]struct{ title, body string }{
	postulation.StatusAccepted: {
		title: "¡Postulación aceptada!",
		body:  "¡Felicitaciones! Tu postulación fue aceptada. Revisá los próximos pasos en la app.",
	},
	postulation.StatusRejected: {
		title: "Resultado de tu postulación",
		body:  "Tu postulación no fue seleccionada en esta ocasión. Hay muchas otras oportunidades esperándote.",
	},
	postulation.StatusCancelled: {
		title: "Postulación cancelada",
		body:  "Tu postulación fue cancelada.",
	},
	postulation.StatusCompleted: {
		title: "¡Voluntariado completado!",
		body:  "Gracias por participar. Tu voluntariado fue marcado como completado.",
	},
}

// Engine owns the per-user notification logic: status transition detection,
// new-opportunity announcements, and the deadline/start reminder set. All
// dedup state lives in the StateStore so it survives restarts.
type Engine struct {
	userID     string
	store      StateStore
	dispatcher Dispatcher
	posts      PostulationSource
	opps       OpportunitySource
	feed       Feed
	loc        *time.Location
	now        func() time.Time

	mu          sync.Mutex
	subs        []Subscription
	initialized bool
}

func NewEngine(userID string, store StateStore, dispatcher Dispatcher, posts PostulationSource, opps OpportunitySource, feed Feed) *Engine {
	return &Engine{
		userID:     userID,
		store:      store,
		dispatcher: dispatcher,
		posts:      posts,
		opps:       opps,
		feed:       feed,
		loc:        time.Local,
		now:        time.Now,
	}
}

func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

func (e *Engine) WithLocation(loc *time.Location) *Engine {
	e.loc = loc
	return e
}

// Initialize opens the live subscriptions and runs one full reminder
// recomputation. Calling it twice without Cleanup is a no-op.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	if e.initialized {
		e.mu.Unlock()
		return nil
	}
	e.initialized = true
	if e.feed != nil {
		e.subs = append(e.subs,
			e.feed.SubscribePostulations(e.userID, e.handlePostulationChange),
			e.feed.SubscribeOpportunities(e.handleOpportunityAdded),
		)
	}
	e.mu.Unlock()

	return e.RefreshReminders(ctx)
}

// Cleanup closes the live subscriptions. Safe to call repeatedly. Already
// scheduled future reminders stay pending until the next recomputation pass.
func (e *Engine) Cleanup() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, sub := range e.subs {
		sub.Unsubscribe()
	}
	e.subs = nil
	e.initialized = false
}

// RefreshReminders re-runs the full recomputation pass without touching the
// seen-status or notified-set dedup state. Invoked on foreground return.
func (e *Engine) RefreshReminders(ctx context.Context) error {
	return e.scheduleAll(ctx)
}

// handlePostulationChange compares a modified postulation's status against
// the persisted last-seen status and fires an immediate notification on a
// transition. The new status is always persisted, whether or not copy exists
// for it.
func (e *Engine) handlePostulationChange(ev postulation.ChangeEvent) {
	if ev.Type != postulation.ChangeModified {
		return
	}
	ctx := context.Background()

	state := newSeenState()
	if err := e.loadState(ctx, seenKey(e.userID), state); err != nil {
		log.Printf("Failed to load seen state for user %s: %v", e.userID, err)
		return
	}

	newStatus := string(ev.Record.Status)
	prev, known := state.observe(ev.Record.ID, newStatus, e.now())

	if known && prev != newStatus {
		if c, ok := statusCopy[ev.Record.Status]; ok {
			data := map[string]string{
				"type":          notify.TypePostulacionStatus,
				"postulacionId": ev.Record.ID,
				"opportunityId": ev.Record.OpportunityID,
				"status":        newStatus,
			}
			if _, err := e.dispatcher.Schedule(ctx, e.userID, c.title, c.body, data, time.Time{}); err != nil {
				log.Printf("Failed to dispatch status notification for %s: %v", ev.Record.ID, err)
				dispatchFailuresTotal.Inc()
			} else {
				statusNotificationsTotal.WithLabelValues(newStatus).Inc()
			}
		}
	}

	if err := e.saveState(ctx, seenKey(e.userID), state); err != nil {
		log.Printf("Failed to persist seen state for user %s: %v", e.userID, err)
	}
}

// handleOpportunityAdded announces a newly published opportunity at most
// once per device. On dispatch failure the id is not marked notified, so a
// later replay can retry.
func (e *Engine) handleOpportunityAdded(ev opportunity.ChangeEvent) {
	if ev.Type != opportunity.ChangeAdded || ev.Record.Status != opportunity.StatusOpen {
		return
	}
	ctx := context.Background()

	state := &notifiedState{}
	if err := e.loadState(ctx, notifiedKey(e.userID), state); err != nil {
		log.Printf("Failed to load notified state for user %s: %v", e.userID, err)
		return
	}
	if state.contains(ev.Record.ID) {
		return
	}

	body := fmt.Sprintf("%s (%s) ya está disponible. ¡Postulate!", ev.Record.Title, ev.Record.Category)
	data := map[string]string{
		"type":          notify.TypeNuevaOportunidad,
		"opportunityId": ev.Record.ID,
	}
	if _, err := e.dispatcher.Schedule(ctx, e.userID, "Nueva oportunidad de voluntariado", body, data, time.Time{}); err != nil {
		log.Printf("Failed to dispatch new opportunity notification for %s: %v", ev.Record.ID, err)
		dispatchFailuresTotal.Inc()
		return
	}
	newOpportunityNotificationsTotal.Inc()

	state.add(ev.Record.ID)
	if err := e.saveState(ctx, notifiedKey(e.userID), state); err != nil {
		log.Printf("Failed to persist notified state for user %s: %v", e.userID, err)
	}
}

// scheduleAll cancels the previously scheduled reminders and rebuilds the
// full set from the user's active postulations. Cancellation is best-effort;
// the generation sweep catches anything a failed cancel left behind.
func (e *Engine) scheduleAll(ctx context.Context) error {
	state := &scheduleState{}
	if err := e.loadState(ctx, scheduledKey(e.userID), state); err != nil {
		return fmt.Errorf("reminder: load schedule state: %w", err)
	}

	for _, id := range state.IDs {
		e.dispatcher.Cancel(ctx, id)
	}
	generation := state.Generation + 1
	e.dispatcher.SweepBefore(ctx, e.userID, generation)

	posts, err := e.posts.ListActiveByUser(ctx, e.userID)
	if err != nil {
		return fmt.Errorf("reminder: list active postulations: %w", err)
	}

	var oppIDs []string
	for _, p := range posts {
		oppIDs = append(oppIDs, p.OpportunityID)
	}

	oppsByID := make(map[string]opportunity.Opportunity)
	if len(oppIDs) > 0 {
		opps, err := e.opps.GetByIDs(ctx, oppIDs)
		if err != nil {
			return fmt.Errorf("reminder: load opportunities: %w", err)
		}
		for _, o := range opps {
			oppsByID[o.ID] = o
		}
	}

	now := e.now()
	var ids []string
	// One reminder pair per postulation occurrence, even if two postulations
	// reference the same opportunity.
	for _, p := range posts {
		o, ok := oppsByID[p.OpportunityID]
		if !ok {
			continue
		}

		if o.EnrollDeadline != nil {
			fireAt := e.dayBeforeAt(*o.EnrollDeadline, deadlineReminderHour)
			if fireAt.After(now) {
				title := "Recordatorio de inscripción"
				body := fmt.Sprintf("Mañana vence la inscripción para %q.", o.Title)
				if id := e.scheduleReminder(ctx, o.ID, generation, title, body, fireAt); id != "" {
					ids = append(ids, id)
				}
			}
		}

		if o.StartsAt != nil {
			fireAt := e.sameDayAt(*o.StartsAt, startReminderHour)
			if fireAt.After(now) {
				title := "Tu voluntariado empieza hoy"
				body := fmt.Sprintf("Hoy empieza %q. ¡Te esperamos!", o.Title)
				if id := e.scheduleReminder(ctx, o.ID, generation, title, body, fireAt); id != "" {
					ids = append(ids, id)
				}
			}
		}
	}

	state.Generation = generation
	state.IDs = ids
	if err := e.saveState(ctx, scheduledKey(e.userID), state); err != nil {
		return fmt.Errorf("reminder: persist schedule state: %w", err)
	}
	return nil
}

func (e *Engine) scheduleReminder(ctx context.Context, opportunityID string, generation int64, title, body string, fireAt time.Time) string {
	data := map[string]string{
		"type":          notify.TypeRecordatorio,
		"opportunityId": opportunityID,
		"generation":    strconv.FormatInt(generation, 10),
	}
	id, err := e.dispatcher.Schedule(ctx, e.userID, title, body, data, fireAt)
	if err != nil {
		log.Printf("Failed to schedule reminder for opportunity %s: %v", opportunityID, err)
		dispatchFailuresTotal.Inc()
		return ""
	}
	remindersScheduledTotal.Inc()
	return id
}

// dayBeforeAt returns the given hour on the calendar day before t, in the
// engine's timezone.
func (e *Engine) dayBeforeAt(t time.Time, hour int) time.Time {
	local := t.In(e.loc)
	return time.Date(local.Year(), local.Month(), local.Day()-1, hour, 0, 0, 0, e.loc)
}

// sameDayAt returns the given hour on t's calendar day, in the engine's
// timezone.
func (e *Engine) sameDayAt(t time.Time, hour int) time.Time {
	local := t.In(e.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, e.loc)
}

func (e *Engine) loadState(ctx context.Context, key string, dest any) error {
	raw, err := e.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

func (e *Engine) saveState(ctx context.Context, key string, src any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return e.store.Set(ctx, key, raw)
}
