package notify

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kisumuhealth/frontdesk/pkg/logging"
)

var tracer = otel.Tracer("frontdesk.internal.notify")

// Dispatcher sends patient-facing messages and converts every failure into
// an Outcome. It never returns an error and never panics, so callers can
// fire it mid-flow without guarding the ledger mutation they just made.
type Dispatcher struct {
	sender Sender
	from   string
	logger *logging.Logger
}

// NewDispatcher wires a dispatcher. A nil sender puts it in simulated mode:
// messages are logged in full instead of sent, which is how development and
// unprovisioned deployments run.
func NewDispatcher(sender Sender, from string, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{sender: sender, from: from, logger: logger}
}

// Simulating reports whether the dispatcher has no provider configured.
func (d *Dispatcher) Simulating() bool { return d.sender == nil }

// Send delivers one message to a patient phone number.
func (d *Dispatcher) Send(ctx context.Context, phone, body string) Outcome {
	ctx, span := tracer.Start(ctx, "notify.dispatch")
	defer span.End()

	if d.sender == nil {
		d.logger.Info("notification simulated", "to", phone, "body", body)
		span.SetAttributes(attribute.String("frontdesk.outcome", StatusSimulated))
		return Simulated()
	}

	if strings.TrimSpace(phone) == "" {
		span.SetAttributes(attribute.String("frontdesk.outcome", StatusFailed))
		return Failed("no phone on record")
	}

	to := Address(d.from, phone)
	if err := d.sender.Send(ctx, to, body); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("frontdesk.outcome", StatusFailed))
		d.logger.Warn("notification failed", "to", to, "error", err)
		return Failed(err.Error())
	}

	span.SetAttributes(attribute.String("frontdesk.outcome", StatusSent))
	return Sent()
}

// Address formats the recipient for the configured sender identity. A
// sender carrying the whatsapp prefix reaches patients over WhatsApp;
// anything else goes out as plain SMS.
func Address(sender, phone string) string {
	digits := strings.TrimPrefix(strings.TrimSpace(phone), "+")
	if strings.Contains(strings.ToLower(sender), "whatsapp") {
		return "whatsapp:+" + digits
	}
	return "+" + digits
}
