package publish

import (
	"context"
	"fmt"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/muurk/heatlink/internal/config"
	"github.com/muurk/heatlink/internal/datapoint"
	"github.com/muurk/heatlink/internal/logging"
)

const connectTimeout = 10 * time.Second

// Publisher forwards readings to an MQTT broker, one topic per
// datapoint: <prefix>/<bus address>/<name>.
type Publisher struct {
	client mqtt.Client
	prefix string
	qos    byte
}

// NewPublisher connects to the broker. Connection failure is returned
// immediately; there is no background reconnect, matching the bridge's
// single-straight-through-session design.
func NewPublisher(cfg config.MQTT) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt.broker is not configured")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetCleanSession(true).
		SetOrderMatters(false).
		SetConnectTimeout(connectTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("timed out connecting to MQTT broker %s", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", cfg.Broker, err)
	}

	logging.Info("connected to MQTT broker",
		zap.String("broker", cfg.Broker),
		zap.String("client_id", cfg.ClientID),
	)
	return &Publisher{client: client, prefix: cfg.TopicPrefix, qos: cfg.QoS}, nil
}

// Forward publishes one reading. Satisfies the session's forward
// contract; a failed publish is fatal for the connection.
func (p *Publisher) Forward(ctx context.Context, update datapoint.Update) error {
	topic := fmt.Sprintf("%s/%s/%s", p.prefix, update.BusAddress, update.Name)
	payload := strconv.FormatFloat(update.Value, 'f', -1, 64)

	token := p.client.Publish(topic, p.qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	logging.Debug("published reading",
		zap.String("topic", topic),
		zap.String("payload", payload),
		zap.String("unit", update.Unit),
	)
	return nil
}

// Close disconnects from the broker, allowing in-flight messages a
// short grace period.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
