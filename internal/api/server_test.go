package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nerrad567/soilsense-core/internal/engine"
	"github.com/nerrad567/soilsense-core/internal/infrastructure/config"
	"github.com/nerrad567/soilsense-core/internal/infrastructure/logging"
	"github.com/nerrad567/soilsense-core/internal/infrastructure/mqtt"
)

// ============================================================
// Test doubles
// ============================================================

type stubLink struct {
	mu        sync.Mutex
	published []string
	fail      error
	subs      map[string]mqtt.MessageHandler
}

func newStubLink() *stubLink {
	return &stubLink{subs: make(map[string]mqtt.MessageHandler)}
}

func (l *stubLink) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs[topic] = handler
	return nil
}

func (l *stubLink) PublishCommand(token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail != nil {
		return l.fail
	}
	l.published = append(l.published, token)
	return nil
}

func (l *stubLink) IsConnected() bool { return l.fail == nil }

func (l *stubLink) Topics() mqtt.Topics { return mqtt.NewTopics("soilsense") }

// deliver injects a payload as if it arrived on the given topic.
func (l *stubLink) deliver(t *testing.T, topic string, payload string) {
	t.Helper()
	l.mu.Lock()
	handler, ok := l.subs[topic]
	l.mu.Unlock()
	if !ok {
		t.Fatalf("no subscription for %q", topic)
	}
	if err := handler(topic, []byte(payload)); err != nil {
		t.Fatalf("handler(%q) error = %v", topic, err)
	}
}

// ============================================================
// Helpers
// ============================================================

func newTestServer(t *testing.T, link *stubLink) (*Server, http.Handler) {
	t.Helper()

	engCfg := config.EngineConfig{
		RetentionHours:         12,
		MaxSamples:             1440,
		CompactIntervalMinutes: 10,
		Detection: config.DetectionConfig{
			DeltaThreshold:        10.0,
			ReconcileGraceMinutes: 5,
		},
		AutoWatering: config.AutoWateringConfig{
			MoistureThreshold: 30.0,
			CooldownMinutes:   30,
		},
	}
	eng := engine.New(engCfg, link)

	logger := logging.Default()
	wsCfg := config.WebSocketConfig{
		Path:           "/ws",
		MaxMessageSize: 8192,
		PingInterval:   30,
		PongTimeout:    10,
	}

	srv, err := New(Deps{
		Config:  config.APIConfig{Host: "127.0.0.1", Port: 0},
		WS:      wsCfg,
		Logger:  logger,
		Engine:  eng,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	srv.hub = NewHub(wsCfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	eng.Start(ctx)

	return srv, srv.buildRouter()
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const testReading = `{"type":"reading","voltage":1.8,"moisture":42.5,"timestamp":1756600000,"valve_state":false}`

// ============================================================
// Lifecycle
// ============================================================

func TestNew_RequiresDependencies(t *testing.T) {
	if _, err := New(Deps{Logger: logging.Default()}); err == nil {
		t.Error("New() without engine should fail")
	}
	if _, err := New(Deps{Engine: &engine.Engine{}}); err == nil {
		t.Error("New() without logger should fail")
	}
}

// ============================================================
// Endpoints
// ============================================================

func TestHandleHealth(t *testing.T) {
	_, router := newTestServer(t, newStubLink())

	rec := doRequest(router, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("body = %v, want status ok, version test", body)
	}
}

func TestHandleLatestReading(t *testing.T) {
	link := newStubLink()
	_, router := newTestServer(t, link)

	link.deliver(t, "soilsense/data", testReading)

	rec := doRequest(router, http.MethodGet, "/api/v1/soil/latest", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body["moisture"] != 42.5 {
		t.Errorf("moisture = %v, want 42.5", body["moisture"])
	}
}

func TestHandleLatestReading_NoReading(t *testing.T) {
	link := newStubLink()
	link.fail = mqtt.ErrNotConnected
	_, router := newTestServer(t, link)

	rec := doRequest(router, http.MethodGet, "/api/v1/soil/latest", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleHistory(t *testing.T) {
	link := newStubLink()
	_, router := newTestServer(t, link)

	// No timestamp field, so the codec stamps the reading with receipt
	// time and it falls inside any query window.
	link.deliver(t, "soilsense/data", `{"type":"reading","voltage":1.8,"moisture":40.0,"valve_state":false}`)

	rec := doRequest(router, http.MethodGet, "/api/v1/soil/history?hours=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body.Count != 1 {
		t.Errorf("count = %d, want 1", body.Count)
	}
}

func TestHandleHistory_InvalidHours(t *testing.T) {
	_, router := newTestServer(t, newStubLink())

	for _, q := range []string{"hours=abc", "hours=-1", "hours=0"} {
		rec := doRequest(router, http.MethodGet, "/api/v1/soil/history?"+q, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestHandleAutoWatering(t *testing.T) {
	_, router := newTestServer(t, newStubLink())

	rec := doRequest(router, http.MethodGet, "/api/v1/watering/auto", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", rec.Code)
	}
	var settings autoWateringResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if settings.Enabled {
		t.Error("auto-watering should default to disabled")
	}
	if settings.MoistureThreshold != 30.0 || settings.CooldownMinutes != 30 {
		t.Errorf("settings = %+v, want threshold 30, cooldown 30", settings)
	}

	rec = doRequest(router, http.MethodPut, "/api/v1/watering/auto", `{"enabled":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, want 200", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if !settings.Enabled {
		t.Error("PUT did not enable auto-watering")
	}
}

func TestHandleSetAutoWatering_InvalidBody(t *testing.T) {
	_, router := newTestServer(t, newStubLink())

	for _, body := range []string{"", "{}", `{"enabled":"yes"}`} {
		rec := doRequest(router, http.MethodPut, "/api/v1/watering/auto", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestHandleManualWater(t *testing.T) {
	link := newStubLink()
	_, router := newTestServer(t, link)

	rec := doRequest(router, http.MethodPost, "/api/v1/watering/manual", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var result commandResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if !result.Success {
		t.Errorf("result = %+v, want success", result)
	}

	link.mu.Lock()
	cmds := append([]string(nil), link.published...)
	link.mu.Unlock()
	if len(cmds) != 2 || cmds[0] != "GPIO_ON" || cmds[1] != "GPIO_OFF" {
		t.Errorf("commands = %v, want [GPIO_ON GPIO_OFF]", cmds)
	}
}

func TestHandleManualWater_BrokerDown(t *testing.T) {
	link := newStubLink()
	link.fail = mqtt.ErrNotConnected
	_, router := newTestServer(t, link)

	rec := doRequest(router, http.MethodPost, "/api/v1/watering/manual", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (failure carried in body)", rec.Code)
	}
	var result commandResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if result.Success {
		t.Error("command should report failure with broker down")
	}
	if result.Message == "" {
		t.Error("failure message should not be empty")
	}
}

func TestHandleSetValve(t *testing.T) {
	link := newStubLink()
	_, router := newTestServer(t, link)

	rec := doRequest(router, http.MethodPost, "/api/v1/valve", `{"open":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = doRequest(router, http.MethodPost, "/api/v1/valve", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing open field: status = %d, want 400", rec.Code)
	}

	link.mu.Lock()
	cmds := append([]string(nil), link.published...)
	link.mu.Unlock()
	if len(cmds) != 1 || cmds[0] != "GPIO_ON" {
		t.Errorf("commands = %v, want [GPIO_ON]", cmds)
	}
}

func TestHandleMetrics(t *testing.T) {
	link := newStubLink()
	_, router := newTestServer(t, link)

	link.deliver(t, "soilsense/data", testReading)

	rec := doRequest(router, http.MethodGet, "/api/v1/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var metrics SystemMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &metrics); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if metrics.Version != "test" {
		t.Errorf("version = %q, want test", metrics.Version)
	}
	if metrics.Engine.ReadingsProcessed != 1 {
		t.Errorf("readings processed = %d, want 1", metrics.Engine.ReadingsProcessed)
	}
	if metrics.Runtime.Goroutines <= 0 {
		t.Error("goroutine count missing from runtime metrics")
	}
}
