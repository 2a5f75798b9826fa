package notify

// Delivery outcome statuses.
const (
	StatusSent      = "sent"
	StatusSimulated = "simulated"
	StatusFailed    = "failed"
)

// Outcome reports what happened to one notification attempt. Booking and
// staff flows log it and carry on; a failed delivery never unwinds the
// ledger mutation that triggered it.
type Outcome struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Sent marks a provider-confirmed delivery.
func Sent() Outcome { return Outcome{Status: StatusSent} }

// Simulated marks a message that was only logged because no provider is
// configured.
func Simulated() Outcome { return Outcome{Status: StatusSimulated} }

// Failed marks a delivery the provider rejected or could not complete.
func Failed(reason string) Outcome { return Outcome{Status: StatusFailed, Detail: reason} }

// Delivered reports whether the patient plausibly received the message
// (including simulated mode, where the deployment has no provider at all).
func (o Outcome) Delivered() bool { return o.Status != StatusFailed }
