package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/soilsense-core/internal/history"
	"github.com/nerrad567/soilsense-core/internal/infrastructure/config"
	"github.com/nerrad567/soilsense-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/soilsense-core/internal/telemetry"
	"github.com/nerrad567/soilsense-core/internal/watering"
)

// refreshWait is how long a latest-reading request waits for the sensor
// to answer a GET_READING before giving up.
const refreshWait = time.Second

// Logger defines the logging interface used by the Engine.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Link is the sensor transport the engine talks through. The MQTT
// client satisfies it; tests substitute a mock.
type Link interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	PublishCommand(token string) error
	IsConnected() bool
	Topics() mqtt.Topics
}

// Notifier receives push events as the engine processes inbound
// messages. The websocket hub adapter satisfies it.
type Notifier interface {
	ReadingProcessed(telemetry.Snapshot)
	StatusReceived(telemetry.Status)
	CommandResponse(payload string)
}

// Archive receives every accepted reading and every watering event for
// long-term storage. The InfluxDB client satisfies it; writes are
// fire-and-forget.
type Archive interface {
	WriteReading(voltage, moisture float64, valveOpen bool, observedAt time.Time)
	WriteWateringEvent(kind string, moistureBefore float64)
}

// Stats is a point-in-time snapshot of engine counters for the
// metrics endpoint.
type Stats struct {
	ReadingsProcessed uint64 `json:"readings_processed"`
	DecodeErrors      uint64 `json:"decode_errors"`
	StatusMessages    uint64 `json:"status_messages"`
	CommandResponses  uint64 `json:"command_responses"`
	BufferedReadings  int    `json:"buffered_readings"`
	WateringRecords   int    `json:"watering_records"`
	AutomaticCycles   uint64 `json:"automatic_cycles"`
	ManualCycles      uint64 `json:"manual_cycles"`
	DetectedWaterings uint64 `json:"detected_waterings"`
}

// Engine is the sensor state and irrigation control core.
//
// It owns the latest reading, the retention buffer, the watering log,
// and the auto-watering policy, all guarded by a single mutex. Inbound
// MQTT messages mutate state; queries read it; watering cycles publish
// commands outside the lock so a slow broker never stalls ingestion.
type Engine struct {
	cfg      config.EngineConfig
	link     Link
	logger   Logger
	notifier Notifier
	archive  Archive
	clock    func() time.Time

	// ctx is set by Start and bounds the compaction loop and any
	// in-flight watering settle delay.
	ctx context.Context

	mu               sync.Mutex
	latest           *telemetry.Reading
	history          *history.Buffer
	wateringLog      *watering.Log
	policy           watering.Policy
	detector         watering.Detector
	wateringInFlight bool

	readingsProcessed uint64
	decodeErrors      uint64
	statusMessages    uint64
	commandResponses  uint64
	automaticCycles   uint64
	manualCycles      uint64
	detectedWaterings uint64
}

// New creates an engine with the given configuration and sensor link.
// Notifier and Archive default to nil (no fan-out, no archival); set
// them before Start.
func New(cfg config.EngineConfig, link Link) *Engine {
	return &Engine{
		cfg:         cfg,
		link:        link,
		logger:      noopLogger{},
		clock:       time.Now,
		history:     history.New(cfg.RetentionPeriod(), cfg.MaxSamples),
		wateringLog: &watering.Log{},
		policy: watering.Policy{
			Enabled:           cfg.AutoWatering.Enabled,
			MoistureThreshold: cfg.AutoWatering.MoistureThreshold,
			Cooldown:          cfg.Cooldown(),
		},
		detector: watering.Detector{
			DeltaThreshold: cfg.Detection.DeltaThreshold,
			ReconcileGrace: cfg.ReconcileGrace(),
		},
	}
}

// SetLogger sets the logger for the engine.
func (e *Engine) SetLogger(logger Logger) {
	e.logger = logger
}

// SetNotifier sets the push event receiver.
func (e *Engine) SetNotifier(n Notifier) {
	e.notifier = n
}

// SetArchive sets the long-term reading store.
func (e *Engine) SetArchive(a Archive) {
	e.archive = a
}

// setClock overrides the time source. Tests only.
func (e *Engine) setClock(clock func() time.Time) {
	e.clock = clock
}

// Start subscribes to the sensor topics and launches the periodic
// compaction loop. Subscription failures are logged and tolerated:
// tracked subscriptions are restored when the broker comes back.
func (e *Engine) Start(ctx context.Context) {
	e.ctx = ctx
	topics := e.link.Topics()

	subs := []struct {
		topic   string
		handler mqtt.MessageHandler
	}{
		{topics.Data(), e.handleData},
		{topics.Status(), e.handleStatus},
		{topics.Response(), e.handleResponse},
	}
	for _, s := range subs {
		if err := e.link.Subscribe(s.topic, 1, s.handler); err != nil {
			e.logger.Warn("subscription deferred until reconnect", "topic", s.topic, "error", err)
		}
	}

	go e.compactLoop(ctx)
}

// compactLoop sweeps expired readings out of the buffer on a fixed
// interval, independent of message traffic.
func (e *Engine) compactLoop(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.CompactInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.mu.Lock()
			removed := e.history.Compact(e.clock())
			remaining := e.history.Len()
			e.mu.Unlock()
			if removed > 0 {
				e.logger.Debug("history compacted", "removed", removed, "remaining", remaining)
			}
		}
	}
}

// handleData processes one reading payload: decode, ingest, run the
// watering detector, and evaluate the auto-watering policy. Malformed
// payloads are logged and dropped without touching state.
func (e *Engine) handleData(topic string, payload []byte) error {
	now := e.clock()
	reading, err := telemetry.DecodeReading(payload, now)
	if err != nil {
		e.mu.Lock()
		e.decodeErrors++
		e.mu.Unlock()
		e.logger.Warn("dropping malformed reading", "topic", topic, "error", err)
		return nil
	}

	var startCycle bool
	var before float64
	var detected bool
	var detectedBefore float64

	e.mu.Lock()
	previous := e.latest
	e.latest = &reading
	e.history.Append(reading)
	e.readingsProcessed++

	if previous != nil {
		outcome := e.detector.Inspect(e.wateringLog, previous.Moisture, reading.Moisture, now)
		if outcome == watering.OutcomeDetected {
			e.detectedWaterings++
			detected = true
			detectedBefore = previous.Moisture
			e.logger.Info("watering detected from moisture rise",
				"before", previous.Moisture, "after", reading.Moisture)
		}
	}

	if !e.wateringInFlight && e.policy.ShouldTrigger(reading.Moisture, now) {
		e.wateringInFlight = true
		startCycle = true
		before = reading.Moisture
	}
	e.mu.Unlock()

	if e.notifier != nil {
		e.notifier.ReadingProcessed(reading.Snapshot())
	}
	if e.archive != nil {
		e.archive.WriteReading(reading.Voltage, reading.Moisture, reading.ValveOpen, reading.ObservedAt)
		if detected {
			e.archive.WriteWateringEvent(string(watering.KindDetected), detectedBefore)
		}
	}

	if startCycle {
		e.logger.Info("auto-watering triggered", "moisture", before,
			"threshold", e.policy.MoistureThreshold)
		go func() {
			if err := e.runCycle(watering.KindAutomatic, before); err != nil {
				e.logger.Error("auto-watering cycle failed", "error", err)
			}
		}()
	}
	return nil
}

// handleStatus forwards a decoded status snapshot to the notifier.
// Status messages never mutate engine state.
func (e *Engine) handleStatus(topic string, payload []byte) error {
	status, err := telemetry.DecodeStatus(payload)
	if err != nil {
		e.mu.Lock()
		e.decodeErrors++
		e.mu.Unlock()
		e.logger.Warn("dropping malformed status", "topic", topic, "error", err)
		return nil
	}

	e.mu.Lock()
	e.statusMessages++
	e.mu.Unlock()

	if e.notifier != nil {
		e.notifier.StatusReceived(status)
	}
	return nil
}

// handleResponse forwards a raw command acknowledgement to the notifier.
func (e *Engine) handleResponse(topic string, payload []byte) error {
	e.mu.Lock()
	e.commandResponses++
	e.mu.Unlock()

	if e.notifier != nil {
		e.notifier.CommandResponse(string(payload))
	}
	return nil
}

// runCycle performs one open-settle-close watering cycle and records it.
//
// A failed publish aborts the cycle without recording anything: the
// cooldown is only consumed by a cycle that actually ran, so the
// controller stays armed for the next reading.
func (e *Engine) runCycle(kind watering.Kind, before float64) error {
	clearInFlight := func() {
		e.mu.Lock()
		e.wateringInFlight = false
		e.mu.Unlock()
	}

	if err := e.link.PublishCommand(telemetry.CommandValveOn.String()); err != nil {
		clearInFlight()
		return fmt.Errorf("opening valve: %w", err)
	}

	e.sleep(e.cfg.ValveSettle())

	if err := e.link.PublishCommand(telemetry.CommandValveOff.String()); err != nil {
		clearInFlight()
		return fmt.Errorf("closing valve: %w", err)
	}

	now := e.clock()

	e.mu.Lock()
	e.wateringLog.Append(watering.Record{
		At:             now,
		Kind:           kind,
		MoistureBefore: before,
	})
	switch kind {
	case watering.KindAutomatic:
		e.policy.LastTriggeredAt = now
		e.automaticCycles++
	case watering.KindManual:
		e.manualCycles++
	}
	e.wateringInFlight = false
	e.mu.Unlock()

	if e.archive != nil {
		e.archive.WriteWateringEvent(string(kind), before)
	}

	e.logger.Info("watering cycle complete", "kind", string(kind), "moisture_before", before)
	return nil
}

// sleep waits for the valve settle period, cutting short on shutdown.
func (e *Engine) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if e.ctx == nil {
		time.Sleep(d)
		return
	}
	select {
	case <-e.ctx.Done():
	case <-time.After(d):
	}
}
