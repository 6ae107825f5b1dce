package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Reminder sweep metrics
	RemindersSent     *prometheus.CounterVec
	RemindersFailed   *prometheus.CounterVec
	SweepDuration     prometheus.Histogram
	SweepBookings     prometheus.Gauge
	SweepErrors       prometheus.Counter
	NotificationsSent *prometheus.CounterVec

	// Booking metrics
	BookingsCreated   *prometheus.CounterVec
	BookingsCancelled prometheus.Counter
	SlotConflicts     prometheus.Counter
}

// New registers all application metrics on the default registry.
func New(namespace string) *Metrics {
	return NewWith(namespace, prometheus.DefaultRegisterer)
}

// NewWith registers on an explicit registry. Tests pass a fresh one so
// repeated construction does not collide.
func NewWith(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RemindersSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Total number of reminders delivered, by lead time",
		}, []string{"lead"}),
		RemindersFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_failed_total",
			Help:      "Total number of reminder delivery failures, by lead time",
		}, []string{"lead"}),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Time spent evaluating one reminder sweep",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		SweepBookings: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sweep_bookings",
			Help:      "Number of bookings examined in the last sweep",
		}),
		SweepErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_errors_total",
			Help:      "Total number of per-booking errors during sweeps",
		}),
		NotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Total number of outbound notifications, by kind and status",
		}, []string{"kind", "status"}),
		BookingsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Total number of bookings created, by origin",
		}, []string{"origin"}),
		BookingsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_cancelled_total",
			Help:      "Total number of cancelled bookings",
		}),
		SlotConflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_conflicts_total",
			Help:      "Total number of rejected concurrent slot booking attempts",
		}),
	}
}
