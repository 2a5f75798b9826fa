package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking and queue flows.
type BookingMetrics struct {
	bookingsTotal      *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	queueSyncTotal     *prometheus.CounterVec
	statusChecksTotal  *prometheus.CounterVec
	bookingDuration    prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Name:      "bookings_total",
			Help:      "Total appointments booked",
		}, []string{"department"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Name:      "notifications_total",
			Help:      "Total patient notifications by message kind and delivery outcome",
		}, []string{"kind", "outcome"}),
		queueSyncTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Name:      "queue_sync_total",
			Help:      "Total queue board forwards by result",
		}, []string{"result"}),
		statusChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Name:      "status_checks_total",
			Help:      "Total public status lookups by result kind",
		}, []string{"result"}),
		bookingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "frontdesk",
			Name:      "booking_duration_seconds",
			Help:      "End-to-end duration of the booking flow",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.notificationsTotal, m.queueSyncTotal, m.statusChecksTotal, m.bookingDuration)
	return m
}

func (m *BookingMetrics) ObserveBooking(department string, seconds float64) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(department).Inc()
	m.bookingDuration.Observe(seconds)
}

func (m *BookingMetrics) ObserveNotification(kind, outcome string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *BookingMetrics) ObserveQueueSync(result string) {
	if m == nil {
		return
	}
	m.queueSyncTotal.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObserveStatusCheck(result string) {
	if m == nil {
		return
	}
	m.statusChecksTotal.WithLabelValues(result).Inc()
}
