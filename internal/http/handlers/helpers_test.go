package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kisumuhealth/frontdesk/internal/booking"
	"github.com/kisumuhealth/frontdesk/internal/ledger"
	"github.com/kisumuhealth/frontdesk/internal/notify"
	"github.com/kisumuhealth/frontdesk/internal/queuesync"
)

type passthroughForwarder struct{}

func (passthroughForwarder) Forward(ctx context.Context, t queuesync.Ticket) queuesync.Result {
	return queuesync.Result{Synced: true}
}

type handlerEnv struct {
	booking  *booking.Service
	repo     ledger.Repository
	messages *[]string
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	var messages []string
	sender := notify.SenderFunc(func(ctx context.Context, to, body string) error {
		messages = append(messages, body)
		return nil
	})
	repo := ledger.NewInMemoryRepository("")
	svc := booking.NewService(booking.Deps{
		Ledger:    repo,
		Notifier:  notify.NewDispatcher(sender, "+15550100", nil),
		QueueSync: passthroughForwarder{},
		ClinicID:  1,
	})
	return &handlerEnv{booking: svc, repo: repo, messages: &messages}
}

func (e *handlerEnv) book(t *testing.T, name, phone, department string) *ledger.Appointment {
	t.Helper()
	result, err := e.booking.Book(context.Background(), booking.BookRequest{
		PatientName: name,
		Phone:       phone,
		Department:  department,
		Date:        "2026-09-28",
		Time:        "09:30",
	})
	if err != nil {
		t.Fatalf("book %s: %v", name, err)
	}
	return result.Appointment
}

func jsonBody(t *testing.T, payload any) io.Reader {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

// idRequest builds a request carrying the {id} route parameter the way chi
// would after matching.
func idRequest(method, target, id string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response: %v body=%s", err, rec.Body.String())
	}
}
