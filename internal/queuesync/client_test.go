package queuesync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testTicket() Ticket {
	return Ticket{
		AppointmentID: 7,
		PatientName:   "Achieng Otieno",
		Ticket:        "TKT-20260928-0007",
		Department:    "OPD",
		BookingRef:    "APPT-20260928-007",
	}
}

func TestForwardSuccessLeavesNoRecord(t *testing.T) {
	var got forwardPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := NewInMemoryStore()
	client := NewClient(srv.URL, time.Second, store, nil)

	res := client.Forward(context.Background(), testTicket())
	if !res.Synced {
		t.Fatalf("expected synced, got %+v", res)
	}
	if got.Name != "Achieng Otieno" || got.Ticket != "TKT-20260928-0007" ||
		got.Department != "OPD" || got.BookingRef != "APPT-20260928-007" {
		t.Errorf("payload = %+v", got)
	}
	if n := len(store.All()); n != 0 {
		t.Errorf("successful forward must not record, found %d records", n)
	}
}

func TestForwardRejectionRecordsFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := NewInMemoryStore()
	client := NewClient(srv.URL, time.Second, store, nil)

	res := client.Forward(context.Background(), testTicket())
	if res.Synced {
		t.Fatal("expected not synced")
	}
	if res.RecordStatus != StatusFailed {
		t.Errorf("record status = %q, want failed", res.RecordStatus)
	}
	records := store.All()
	if len(records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(records))
	}
	if records[0].Status != StatusFailed || records[0].Ticket != "TKT-20260928-0007" {
		t.Errorf("record = %+v", records[0])
	}
}

func TestForwardTransportErrorRecordsPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	store := NewInMemoryStore()
	client := NewClient(srv.URL, time.Second, store, nil)

	res := client.Forward(context.Background(), testTicket())
	if res.Synced {
		t.Fatal("expected not synced")
	}
	if res.RecordStatus != StatusPending {
		t.Errorf("record status = %q, want pending", res.RecordStatus)
	}
	records := store.All()
	if len(records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(records))
	}
	if records[0].Status != StatusPending {
		t.Errorf("record status = %q", records[0].Status)
	}
}

func TestForwardTimeoutRecordsPending(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		srv.Close()
	}()

	store := NewInMemoryStore()
	client := NewClient(srv.URL, 50*time.Millisecond, store, nil)

	start := time.Now()
	res := client.Forward(context.Background(), testTicket())
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("forward blocked for %s, timeout not applied", elapsed)
	}
	if res.Synced || res.RecordStatus != StatusPending {
		t.Fatalf("expected pending record after timeout, got %+v", res)
	}
}

func TestListPendingSkipsFailed(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	if err := store.Insert(ctx, &Record{Ticket: "TKT-1", Status: StatusPending}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Insert(ctx, &Record{Ticket: "TKT-2", Status: StatusFailed}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Insert(ctx, &Record{Ticket: "TKT-3"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	pending, err := store.ListPending(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if pending[0].Ticket != "TKT-1" || pending[1].Ticket != "TKT-3" {
		t.Errorf("pending order = %s, %s", pending[0].Ticket, pending[1].Ticket)
	}
}
