package reminder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	statusNotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reminder_status_notifications_total",
		Help: "Immediate notifications dispatched for postulation status transitions",
	}, []string{"status"})

	newOpportunityNotificationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminder_new_opportunity_notifications_total",
		Help: "Immediate notifications dispatched for newly published opportunities",
	})

	remindersScheduledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminder_scheduled_total",
		Help: "Future-dated reminders scheduled by recomputation passes",
	})

	dispatchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminder_dispatch_failures_total",
		Help: "Dispatcher calls that failed and were dropped",
	})
)
