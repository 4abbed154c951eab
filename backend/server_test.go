package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/disgoorg/loyalty-engine/backend/handlers"
	"github.com/disgoorg/loyalty-engine/loyalty"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/clock"
	"github.com/gofiber/fiber/v2"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return newTestAppWith(t, func(*loyalty.Config) {})
}

func newTestAppWith(t *testing.T, configure func(cfg *loyalty.Config)) *fiber.App {
	t.Helper()
	ctx := context.Background()

	cfg := loyalty.DefaultConfig()
	cfg.Engine.SweepEnabled = false
	cfg.HTTP.RateLimit = 0
	configure(&cfg)

	engine := loyalty.New(cfg, "test", "none")
	engine.Clock = clock.NewFake(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))
	if err := engine.SetupStore(ctx, true); err != nil {
		t.Fatalf("SetupStore() error = %v", err)
	}
	if err := engine.SeedCatalog(ctx); err != nil {
		t.Fatalf("SeedCatalog() error = %v", err)
	}
	if err := engine.Setup(ctx); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	t.Cleanup(func() { engine.Close(context.Background()) })

	return NewApp(&handlers.WebApp{Engine: engine, Version: "test"}, cfg.HTTP)
}

func do(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func createUser(t *testing.T, app *fiber.App, id string) {
	t.Helper()
	status, env := do(t, app, http.MethodPost, "/v1/users", map[string]string{"userId": id})
	if status != http.StatusCreated {
		t.Fatalf("create user status = %d, body = %+v", status, env)
	}
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)

	status, env := do(t, app, http.MethodGet, "/healthz", nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("status = %d, env = %+v", status, env)
	}

	var health struct {
		Status string `json:"status"`
	}
	decodeData(t, env, &health)
	if health.Status != "healthy" {
		t.Errorf("health = %q", health.Status)
	}
}

func TestOrderFlow(t *testing.T) {
	app := newTestApp(t)
	createUser(t, app, "u1")

	order := map[string]interface{}{
		"userId":     "u1",
		"orderId":    "o-1",
		"orderTotal": "25.00",
		"items":      []map[string]interface{}{{"name": "Ramen", "price": 25}},
		"timestamp":  "2024-05-10T09:00:00Z",
	}

	status, env := do(t, app, http.MethodPost, "/v1/events/orders", order)
	if status != http.StatusOK {
		t.Fatalf("status = %d, env = %+v", status, env)
	}
	var result struct {
		Completions []struct {
			QuestID      string `json:"quest_id"`
			RewardAmount int64  `json:"reward_amount"`
		} `json:"completions"`
		Duplicate bool `json:"duplicate"`
	}
	decodeData(t, env, &result)
	if result.Duplicate || len(result.Completions) == 0 || result.Completions[0].QuestID != "q-act0-1" {
		t.Fatalf("result = %+v", result)
	}

	status, env = do(t, app, http.MethodPost, "/v1/events/orders", order)
	if status != http.StatusOK {
		t.Fatalf("replay status = %d", status)
	}
	decodeData(t, env, &result)
	if !result.Duplicate || len(result.Completions) != 0 {
		t.Errorf("replay result = %+v", result)
	}

	status, env = do(t, app, http.MethodGet, "/v1/users/u1/ledger", nil)
	if status != http.StatusOK {
		t.Fatalf("ledger status = %d", status)
	}
	var ledger struct {
		Points int64 `json:"points"`
		Tier   struct {
			Name string `json:"name"`
		} `json:"tier"`
		ToNext int64 `json:"to_next"`
	}
	decodeData(t, env, &ledger)
	if ledger.Points != 100 || ledger.Tier.Name != "Bronze" || ledger.ToNext != 900 {
		t.Errorf("ledger = %+v", ledger)
	}

	status, env = do(t, app, http.MethodGet, "/v1/users/u1/inventory?type=Titles", nil)
	if status != http.StatusOK {
		t.Fatalf("inventory status = %d", status)
	}
	var inv struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
	}
	decodeData(t, env, &inv)
	if len(inv.Items) != 1 {
		t.Errorf("inventory = %+v", inv)
	}

	status, env = do(t, app, http.MethodGet, "/v1/users/u1/quests", nil)
	if status != http.StatusOK {
		t.Fatalf("quests status = %d", status)
	}
	var list []struct {
		QuestID  string `json:"quest_id"`
		Progress *struct {
			CompletedAt *time.Time `json:"completed_at"`
		} `json:"progress"`
	}
	decodeData(t, env, &list)
	completed := 0
	for _, q := range list {
		if q.Progress != nil && q.Progress.CompletedAt != nil {
			completed++
		}
	}
	if completed != 1 {
		t.Errorf("completed quests = %d, want 1", completed)
	}
}

func TestErrorMapping(t *testing.T) {
	app := newTestApp(t)
	createUser(t, app, "u1")

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
		code   string
	}{
		{"unknown user ledger", http.MethodGet, "/v1/users/ghost/ledger", nil, http.StatusNotFound, "NOT_FOUND"},
		{"order for unknown user", http.MethodPost, "/v1/events/orders", map[string]string{"userId": "ghost", "orderTotal": "1"}, http.StatusNotFound, "NOT_FOUND"},
		{"invalid order", http.MethodPost, "/v1/events/orders", map[string]string{"orderTotal": "1"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"self referral", http.MethodPost, "/v1/events/referrals", map[string]string{"userId": "u1", "referredUserId": "u1"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"duplicate user", http.MethodPost, "/v1/users", map[string]string{"userId": "u1"}, http.StatusConflict, "CONFLICT"},
		{"locked style", http.MethodPut, "/v1/users/u1/style", map[string]string{"tier": "Gold"}, http.StatusForbidden, "FORBIDDEN"},
		{"unknown style", http.MethodPut, "/v1/users/u1/style", map[string]string{"tier": "Mithril"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"missing progression", http.MethodPut, "/v1/users/u1/progression", map[string]int{"act": 1}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"bad inventory type", http.MethodGet, "/v1/users/u1/inventory?type=Hats", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown shop item", http.MethodPost, "/v1/purchases", map[string]string{"userId": "u1", "catalogItemId": "nope"}, http.StatusNotFound, "NOT_FOUND"},
		{"unknown route", http.MethodGet, "/v2/anything", nil, http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, app, tt.method, tt.path, tt.body)
			if status != tt.want {
				t.Fatalf("status = %d, want %d (env %+v)", status, tt.want, env)
			}
			if env.Success || env.Error == nil || env.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %s", env.Error, tt.code)
			}
		})
	}
}

func TestPurchaseGate(t *testing.T) {
	app := newTestApp(t)
	createUser(t, app, "u1")

	status, env := do(t, app, http.MethodPost, "/v1/purchases", map[string]string{"userId": "u1", "catalogItemId": "frame-gold"})
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var receipt struct {
		Allowed bool   `json:"allowed"`
		Reason  string `json:"reason"`
	}
	decodeData(t, env, &receipt)
	if receipt.Allowed || receipt.Reason != "act_locked" {
		t.Errorf("locked receipt = %+v", receipt)
	}

	status, _ = do(t, app, http.MethodPut, "/v1/users/u1/progression", map[string]int{"act": 2, "level": 3})
	if status != http.StatusOK {
		t.Fatalf("progression status = %d", status)
	}

	// No tokens yet.
	_, env = do(t, app, http.MethodPost, "/v1/purchases", map[string]string{"userId": "u1", "catalogItemId": "frame-gold"})
	decodeData(t, env, &receipt)
	if receipt.Allowed || receipt.Reason != "insufficient_tokens" {
		t.Errorf("unlocked receipt = %+v", receipt)
	}
}

func TestShopSearch(t *testing.T) {
	app := newTestApp(t)

	status, env := do(t, app, http.MethodGet, "/v1/shop?q=aura", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var shop struct {
		Items []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"items"`
	}
	decodeData(t, env, &shop)
	if len(shop.Items) < 2 {
		t.Fatalf("items = %+v", shop.Items)
	}
	for _, item := range shop.Items[:2] {
		if item.Type != "Auras" {
			t.Errorf("top match %s has type %s", item.ID, item.Type)
		}
	}

	_, env = do(t, app, http.MethodGet, "/v1/shop", nil)
	decodeData(t, env, &shop)
	if len(shop.Items) != 7 {
		t.Errorf("full catalog = %d items, want 7", len(shop.Items))
	}
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	app := newTestAppWith(t, func(cfg *loyalty.Config) {
		cfg.HTTP.RateLimit = 2
	})

	forwarded := []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"}
	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i, xff := range forwarded {
		req := httptest.NewRequest(http.MethodGet, "/v1/tiers", nil)
		req.Header.Set("X-Forwarded-For", xff)

		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != want[i] {
			t.Errorf("request %d status = %d, want %d", i, resp.StatusCode, want[i])
		}
	}
}
