package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTClient wraps a paho client connection.
type MQTTClient struct {
	client mqtt.Client
}

func NewMQTTClient(broker, clientID, username, password string) (*MQTTClient, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	if username != "" {
		opts.SetUsername(username)
	}
	if password != "" {
		opts.SetPassword(password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &MQTTClient{client: client}, nil
}

func (c *MQTTClient) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, token.Error())
	}
	return nil
}

func (c *MQTTClient) Close() {
	c.client.Disconnect(250)
}

// MQTTSink pushes merchant-facing order events to <prefix>/tenants/<id>/orders.
type MQTTSink struct {
	Pub    Publisher
	Prefix string
}

func (MQTTSink) Name() string { return "mqtt" }

func (s MQTTSink) Topic(tenantID uint) string {
	return fmt.Sprintf("%s/tenants/%d/orders", s.Prefix, tenantID)
}

func (s MQTTSink) Send(_ context.Context, msg Message) error {
	if msg.Kind == KindCustomerConfirmation {
		return nil // ลูกค้าได้ทาง email อย่างเดียว
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.Pub.Publish(s.Topic(msg.TenantID), 1, false, payload)
}
