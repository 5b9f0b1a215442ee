package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/maintenance-tracker/internal/config"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

const mqttTimeout = 5 * time.Second

// MQTTPublisher sends each event to a topic derived from its type and
// subject, e.g. maintenance/requests/REQ-1001/approved.
type MQTTPublisher struct {
	Client mqtt.Client
	Prefix string
}

// NewMQTTPublisher connects to the configured broker.
func NewMQTTPublisher(cfg config.MQTTConfig) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(mqttTimeout).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username).SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	log.WithField("broker", cfg.Broker).Info("Connected to MQTT broker")
	return &MQTTPublisher{Client: client, Prefix: cfg.TopicPrefix}, nil
}

// Topic returns the topic an event is published on.
func (p *MQTTPublisher) Topic(event models.Event) string {
	kind, action, found := strings.Cut(string(event.Type), ".")
	if !found {
		action = kind
		kind = "event"
	}
	return fmt.Sprintf("%s/%ss/%s/%s", p.Prefix, kind, event.Subject, action)
}

// Publish implements Publisher with QoS 1.
func (p *MQTTPublisher) Publish(ctx context.Context, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	token := p.Client.Publish(p.Topic(event), 1, false, payload)
	if !token.WaitTimeout(mqttTimeout) {
		return fmt.Errorf("mqtt publish %s timed out", event.Type)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.Client.Disconnect(250)
}
