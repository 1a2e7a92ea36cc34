package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/soilsense-core/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang with SoilSense-specific functionality.
//
// It owns the connection lifecycle to the broker: clean-session connect
// with a stable client ID, re-subscription of tracked topics after a
// successful reconnect, and the outbound device command path.
//
// Reconnection is deliberately simple. When the connection is lost, a
// single reconnect attempt is scheduled after a fixed delay. A failed
// attempt counts as a fresh disconnect event and arms the next attempt,
// so the client keeps retrying at a fixed cadence until the broker comes
// back or Close() is called. There is no exponential backoff.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig
	topics Topics

	// subscriptions tracks active subscriptions for re-subscription on reconnect.
	subscriptions map[string]subscription
	subMu         sync.RWMutex

	// connected tracks current connection state.
	connected bool
	connMu    sync.RWMutex

	// reconnectPending guards against stacking reconnect attempts when
	// multiple disconnect events fire in quick succession.
	reconnectPending bool
	reconnectMu      sync.Mutex

	// ctx is cancelled by Close(); it abandons any pending reconnect timer.
	ctx    context.Context
	cancel context.CancelFunc

	// Callbacks for connection events (optional, set via SetOnConnect/SetOnDisconnect).
	onConnect    func()
	onDisconnect func(err error)
	callbackMu   sync.RWMutex

	// logger for error/panic logging (optional, set via SetLogger).
	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// subscription holds subscription details for re-subscription on reconnect.
type subscription struct {
	topic   string
	qos     byte
	handler MessageHandler
}

// MessageHandler is the callback signature for received messages.
//
// Handlers should not block for extended periods; long-running work
// (such as a watering cycle) belongs in its own goroutine.
//
// Parameters:
//   - topic: The topic the message was received on
//   - payload: The raw message payload
//
// Returns:
//   - error: Logged but does not affect message acknowledgment
type MessageHandler func(topic string, payload []byte) error

// Connect establishes a connection to the MQTT broker.
//
// It connects with a clean session (no persisted subscriptions across
// reconnects) and the configured stable client ID. Subscriptions are
// registered afterwards via Subscribe and restored automatically when
// the client reconnects.
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If the initial connection fails within the timeout
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := newClient(cfg)

	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		c.cancel()
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		c.cancel()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// Set connected state immediately after successful connection.
	// The OnConnectHandler callback runs asynchronously and may not have
	// executed yet, so we set it here to ensure IsConnected() returns true.
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	return c, nil
}

// newClient builds an unconnected client with handlers wired up.
func newClient(cfg config.MQTTConfig) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		cfg:           cfg,
		topics:        NewTopics(cfg.Namespace),
		subscriptions: make(map[string]subscription),
		ctx:           ctx,
		cancel:        cancel,
	}

	opts := buildClientOptions(cfg)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})

	c.client = pahomqtt.NewClient(opts)
	return c
}

// Topics returns the topic builder for the configured namespace.
func (c *Client) Topics() Topics {
	return c.topics
}

// handleConnect is called when the connection is established.
func (c *Client) handleConnect() {
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	// Clean session means the broker forgot everything; re-subscribe.
	c.restoreSubscriptions()

	c.callbackMu.RLock()
	callback := c.onConnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback()
	}
}

// handleDisconnect is called when the connection is lost unexpectedly.
// Each disconnect event arms exactly one delayed reconnect attempt.
func (c *Client) handleDisconnect(err error) {
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	c.callbackMu.RLock()
	callback := c.onDisconnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}

	c.scheduleReconnect()
}

// scheduleReconnect arms a single reconnect attempt after the configured
// delay. At most one attempt is pending at a time. A failed attempt is
// logged and immediately arms the next one, so the client keeps retrying
// at a fixed cadence for as long as the broker stays down.
//
// The pending timer is abandoned when Close() cancels the client context,
// so shutdown never waits on a reconnect.
func (c *Client) scheduleReconnect() {
	c.reconnectMu.Lock()
	if c.reconnectPending {
		c.reconnectMu.Unlock()
		return
	}
	c.reconnectPending = true
	c.reconnectMu.Unlock()

	delay := c.cfg.ReconnectDelay()

	go func() {
		attemptFailed := false
		defer func() {
			// Clear the pending flag before re-arming or the guard
			// above would swallow the follow-up attempt.
			c.reconnectMu.Lock()
			c.reconnectPending = false
			c.reconnectMu.Unlock()
			if attemptFailed {
				c.scheduleReconnect()
			}
		}()

		select {
		case <-c.ctx.Done():
			return
		case <-time.After(delay):
		}

		if c.IsConnected() {
			return
		}

		token := c.client.Connect()
		if !token.WaitTimeout(defaultConnectTimeout) {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("broker reconnect timed out", "delay", delay.String())
			}
			attemptFailed = true
			return
		}
		if err := token.Error(); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("broker reconnect failed", "error", err)
			}
			attemptFailed = true
		}
	}()
}

// restoreSubscriptions re-subscribes to all tracked topics after reconnect.
func (c *Client) restoreSubscriptions() {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	for _, sub := range c.subscriptions {
		// Re-subscribe (ignore errors during reconnection)
		c.client.Subscribe(sub.topic, sub.qos, c.wrapHandler(sub.handler))
	}
}

// Close gracefully disconnects from the MQTT broker.
//
// Any pending reconnect attempt is abandoned and the transport is closed
// best-effort with a short quiesce period for in-flight operations.
//
// Returns:
//   - error: Always nil; kept for interface symmetry with other infrastructure.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	// Abandon any pending reconnect timer.
	c.cancel()

	c.client.Disconnect(defaultDisconnectQuiesce)

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	return nil
}

// HealthCheck verifies the MQTT connection is alive.
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	return nil
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client.IsConnected()
}

// SetOnConnect sets a callback to be invoked when connection is established.
// This is called on initial connect and on every successful reconnect.
func (c *Client) SetOnConnect(callback func()) {
	c.callbackMu.Lock()
	c.onConnect = callback
	c.callbackMu.Unlock()
}

// SetOnDisconnect sets a callback to be invoked when connection is lost.
// The error parameter describes why the connection was lost.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.callbackMu.Lock()
	c.onDisconnect = callback
	c.callbackMu.Unlock()
}

// SetLogger sets a logger for error and panic logging.
// If not set, errors in handlers are silently ignored.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// wrapHandler wraps a MessageHandler with panic recovery and optional logging.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("MQTT handler panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT handler returned error",
					"topic", msg.Topic(),
					"error", err,
				)
			}
		}
	}
}
