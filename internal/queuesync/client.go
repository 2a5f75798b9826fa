package queuesync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kisumuhealth/frontdesk/pkg/logging"
)

var tracer = otel.Tracer("frontdesk.internal.queuesync")

// Ticket is the payload forwarded to the hospital-wide queue display.
type Ticket struct {
	AppointmentID int64
	PatientName   string
	Ticket        string
	Department    string
	BookingRef    string
}

// Result reports one forward attempt. RecordStatus is set when a sync
// record was written for later reconciliation.
type Result struct {
	Synced       bool   `json:"synced"`
	RecordStatus string `json:"record_status,omitempty"`
	Detail       string `json:"detail,omitempty"`
}

// Client forwards new tickets to the external queue display, best effort.
// It never returns an error to the booking flow and never retries inline;
// undelivered tickets are durably recorded instead.
type Client struct {
	endpoint   string
	httpClient *http.Client
	store      RecordStore
	logger     *logging.Logger
}

// NewClient wires a forwarder. A zero timeout gets the stock 5s client.
func NewClient(endpoint string, timeout time.Duration, store RecordStore, logger *logging.Logger) *Client {
	if store == nil {
		panic("queuesync: record store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		store:      store,
		logger:     logger,
	}
}

type forwardPayload struct {
	Name       string `json:"name"`
	Ticket     string `json:"ticket"`
	Department string `json:"department"`
	BookingRef string `json:"booking_ref"`
}

// Forward pushes one ticket to the queue display service. Success is an
// HTTP 200 from the remote; anything else leaves a sync record behind:
// status failed for a remote rejection, status pending for a transport
// error the reconciliation job may simply retry.
func (c *Client) Forward(ctx context.Context, t Ticket) Result {
	ctx, span := tracer.Start(ctx, "queuesync.forward")
	defer span.End()
	span.SetAttributes(
		attribute.String("frontdesk.ticket", t.Ticket),
		attribute.String("frontdesk.department", t.Department),
	)

	body, err := json.Marshal(forwardPayload{
		Name:       t.PatientName,
		Ticket:     t.Ticket,
		Department: t.Department,
		BookingRef: t.BookingRef,
	})
	if err != nil {
		span.RecordError(err)
		return c.record(ctx, t, StatusPending, fmt.Sprintf("encode payload: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		return c.record(ctx, t, StatusPending, fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		c.logger.Warn("queue sync transport error", "ticket", t.Ticket, "error", err)
		return c.record(ctx, t, StatusPending, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail := fmt.Sprintf("remote status %d", resp.StatusCode)
		c.logger.Warn("queue sync rejected", "ticket", t.Ticket, "status", resp.StatusCode)
		return c.record(ctx, t, StatusFailed, detail)
	}

	c.logger.Info("queue sync forwarded", "ticket", t.Ticket, "department", t.Department)
	return Result{Synced: true}
}

// record durably notes an undelivered ticket. A store failure at this point
// can only be logged; the booking flow must proceed regardless.
func (c *Client) record(ctx context.Context, t Ticket, status, detail string) Result {
	rec := &Record{
		AppointmentID: t.AppointmentID,
		PatientName:   t.PatientName,
		Ticket:        t.Ticket,
		Department:    t.Department,
		BookingRef:    t.BookingRef,
		Status:        status,
	}
	if err := c.store.Insert(ctx, rec); err != nil {
		c.logger.Error("queue sync record not stored", "ticket", t.Ticket, "error", err)
		detail = detail + "; record not stored: " + err.Error()
	}
	return Result{Synced: false, RecordStatus: status, Detail: detail}
}
