package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/room-control/internal/config"
	"github.com/oshokin/room-control/internal/logger"
)

// disconnectQuiesce is how long Close waits for in-flight work, in milliseconds.
const disconnectQuiesce = 250

var (
	// errBrokerURLRequired is returned when no broker address is configured.
	errBrokerURLRequired = errors.New("broker url must be provided")
	// errTimeout is returned when the broker does not acknowledge in time.
	errTimeout = errors.New("broker did not respond in time")

	//nolint:gochecknoglobals // paho exposes its loggers as package variables.
	pahoLoggersOnce sync.Once
)

// Options configures Connect.
type Options struct {
	// URL is the broker address.
	URL string
	// ClientPrefix is prepended to the random client id.
	ClientPrefix string
	// Username is optional.
	Username string
	// Password is optional.
	Password string
	// QoS applies to subscriptions and publications.
	QoS byte
	// Timeout bounds connecting, subscribing and publishing.
	Timeout time.Duration
}

// OptionsFromConfig builds Options from the broker section of the settings.
func OptionsFromConfig(cfg config.BrokerConfig, clientPrefix string) Options {
	return Options{
		URL:          cfg.URL,
		ClientPrefix: clientPrefix,
		Username:     cfg.Username,
		Password:     cfg.Password,
		QoS:          cfg.QoS,
		Timeout:      cfg.ConnectTimeout,
	}
}

// Client is an MQTT-backed Bus.
type Client struct {
	// client is the paho client.
	client mqtt.Client
	// qos applies to every subscription and publication.
	qos byte
	// timeout bounds broker round-trips.
	timeout time.Duration
	// ctx is handed to message handlers.
	ctx context.Context //nolint:containedctx // Handlers run on paho goroutines and need the service logger.

	// mu protects subscriptions.
	mu sync.Mutex
	// subscriptions are restored after every reconnect.
	subscriptions map[string]Handler
}

// Connect opens a connection to the broker.
func Connect(ctx context.Context, opts Options) (*Client, error) {
	if opts.URL == "" {
		return nil, errBrokerURLRequired
	}

	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultTimeout
	}

	installPahoLoggers(ctx)

	c := &Client{
		qos:           opts.QoS,
		timeout:       opts.Timeout,
		ctx:           ctx,
		subscriptions: make(map[string]Handler),
	}

	clientID := uuid.NewString()
	if opts.ClientPrefix != "" {
		clientID = opts.ClientPrefix + "-" + clientID
	}

	clientOpts := mqtt.NewClientOptions().
		AddBroker(opts.URL).
		SetClientID(clientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectTimeout(opts.Timeout).
		SetOrderMatters(true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost)

	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
	}

	if opts.Password != "" {
		clientOpts.SetPassword(opts.Password)
	}

	c.client = mqtt.NewClient(clientOpts)

	if err := c.wait(ctx, c.client.Connect()); err != nil {
		return nil, fmt.Errorf("connect to broker %s: %w", opts.URL, err)
	}

	logger.InfoKV(ctx, "Connected to broker", "url", opts.URL, "client_id", clientID)

	return c, nil
}

// Publish sends payload to topic and waits for the broker to acknowledge it.
func (c *Client) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := c.wait(ctx, c.client.Publish(topic, c.qos, false, payload)); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	return nil
}

// Subscribe registers handler for topic. The subscription survives reconnects.
func (c *Client) Subscribe(ctx context.Context, topic string, handler Handler) error {
	c.mu.Lock()
	c.subscriptions[topic] = handler
	c.mu.Unlock()

	if err := c.wait(ctx, c.client.Subscribe(topic, c.qos, c.deliver(handler))); err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	logger.DebugKV(ctx, "Subscribed", "topic", topic)

	return nil
}

// Close disconnects from the broker.
func (c *Client) Close() {
	if c == nil || c.client == nil {
		return
	}

	c.client.Disconnect(disconnectQuiesce)
}

// deliver adapts a Handler to the paho callback signature.
func (c *Client) deliver(handler Handler) mqtt.MessageHandler {
	return func(_ mqtt.Client, m mqtt.Message) {
		handler(c.ctx, Message{
			Topic:   m.Topic(),
			Payload: m.Payload(),
		})
	}
}

// onConnect restores subscriptions; a clean session drops them on every reconnect.
func (c *Client) onConnect(client mqtt.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.subscriptions) == 0 {
		return
	}

	handlers := make(map[string]Handler, len(c.subscriptions))
	for topic, h := range c.subscriptions {
		handlers[topic] = h
	}

	go func() {
		for topic, h := range handlers {
			token := client.Subscribe(topic, c.qos, c.deliver(h))
			if !token.WaitTimeout(c.timeout) || token.Error() != nil {
				logger.WarnKV(c.ctx, "Failed to restore subscription", "topic", topic, "error", token.Error())
			}
		}

		logger.InfoKV(c.ctx, "Subscriptions restored", "count", len(handlers))
	}()
}

func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	logger.WarnKV(c.ctx, "Connection to broker lost", "error", err)
}

// wait blocks until the token completes, the timeout elapses or ctx is done.
func (c *Client) wait(ctx context.Context, token mqtt.Token) error {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return errTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pahoLogger forwards paho's internal diagnostics to zap.
type pahoLogger struct {
	log   *zap.SugaredLogger
	level zapcore.Level
}

func (l pahoLogger) Println(v ...any) {
	l.log.Logln(l.level, v...)
}

func (l pahoLogger) Printf(format string, v ...any) {
	l.log.Logf(l.level, format, v...)
}

// installPahoLoggers routes paho warnings and errors into the service logger.
// Paho debug output is never forwarded, whatever the global level.
func installPahoLoggers(ctx context.Context) {
	pahoLoggersOnce.Do(func() {
		log := logger.FromContext(ctx).
			Desugar().
			WithOptions(logger.WithLevel(zapcore.WarnLevel)).
			Sugar().
			Named("paho")

		mqtt.CRITICAL = pahoLogger{log: log, level: zapcore.ErrorLevel}
		mqtt.ERROR = pahoLogger{log: log, level: zapcore.ErrorLevel}
		mqtt.WARN = pahoLogger{log: log, level: zapcore.WarnLevel}
	})
}
