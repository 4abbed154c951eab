package events

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/config"
)

func TestBus_DeliversAfterClose(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	sink := SinkFunc(func(_ context.Context, env Envelope) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, env.Type)
		return nil
	})

	bus := NewBus(8, sink)
	bus.Publish(context.Background(),
		LedgerUpdated{UserID: "u1", Points: 150},
		QuestCompleted{UserID: "u1", QuestID: "q1", RewardType: "XP", RewardAmount: 150, BaseAmount: 100},
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := bus.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != NameLedgerUpdated || seen[1] != NameQuestCompleted {
		t.Errorf("delivered = %v", seen)
	}
}

func TestBus_PublishAfterCloseDrops(t *testing.T) {
	var delivered atomic.Int32
	bus := NewBus(4, SinkFunc(func(context.Context, Envelope) error {
		delivered.Add(1)
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := bus.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	bus.Publish(context.Background(), LedgerUpdated{UserID: "u1", Points: 10})

	if err := bus.Close(ctx); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if got := delivered.Load(); got != 0 {
		t.Errorf("delivered after close = %d, want 0", got)
	}
}

func TestRecorder_Count(t *testing.T) {
	r := &Recorder{}
	r.Publish(context.Background(), QuestCompleted{UserID: "u1"}, QuestCompleted{UserID: "u2"}, LedgerUpdated{UserID: "u1"})

	if got := r.Count(NameQuestCompleted); got != 2 {
		t.Errorf("Count(quest) = %d, want 2", got)
	}
	if got := len(r.Events()); got != 3 {
		t.Errorf("Events() = %d, want 3", got)
	}
}

func TestWebhookSink_SignsAndRetries(t *testing.T) {
	var (
		calls   atomic.Int32
		mu      sync.Mutex
		gotSig  string
		gotType string
		gotBody []byte
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		gotSig = r.Header.Get(config.WebhookSignatureHdr)
		gotType = r.Header.Get("X-Loyalty-Event")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewWebhookSink(WebhookConfig{
		URL:        srv.URL,
		Secret:     "s3cret",
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})

	env := NewEnvelope(LedgerUpdated{UserID: "u1", Points: 10, Tokens: 2}, time.Unix(0, 0).UTC())
	if err := sink.Deliver(context.Background(), env); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}

	mu.Lock()
	defer mu.Unlock()
	if gotType != NameLedgerUpdated {
		t.Errorf("event header = %q", gotType)
	}
	if gotSig != Sign(gotBody, "s3cret") {
		t.Errorf("signature %q does not match body", gotSig)
	}

	var decoded struct {
		Type string `json:"type"`
		Data struct {
			Points int64 `json:"points"`
		} `json:"data"`
	}
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if decoded.Type != NameLedgerUpdated || decoded.Data.Points != 10 {
		t.Errorf("body = %s", gotBody)
	}
}

func TestWebhookSink_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	sink := NewWebhookSink(WebhookConfig{URL: srv.URL, MaxRetries: 3, RetryDelay: time.Millisecond})
	if err := sink.Deliver(context.Background(), NewEnvelope(LedgerUpdated{UserID: "u1"}, time.Now())); err == nil {
		t.Fatal("Deliver() error = nil, want rejection")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}
