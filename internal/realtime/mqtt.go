package realtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/likerotech-cyber/Check-Lariviere/internal/config"
)

// connectTimeout bounds the initial broker handshake.
const connectTimeout = 10 * time.Second

// MQTTFeed is a Feed backed by an MQTT broker. Cues are published to
// <prefix>/<collection> at QoS 1; the feed also subscribes to <prefix>/+ and
// delivers every incoming cue (its own included, echoed by the broker) into
// an embedded Hub, so local and remote publishers look identical to
// subscribers.
type MQTTFeed struct {
	client mqtt.Client
	prefix string
	hub    *Hub
	log    zerolog.Logger
}

// NewMQTTFeed connects to the broker and subscribes to the cue topic tree.
func NewMQTTFeed(cfg config.MQTTConfig, log zerolog.Logger) (*MQTTFeed, error) {
	f := &MQTTFeed{
		prefix: strings.TrimSuffix(cfg.TopicPrefix, "/"),
		hub:    NewHub(),
		log:    log,
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetOnConnectHandler(func(c mqtt.Client) {
			// (Re)subscribe on every connect; subscriptions die with the session.
			t := c.Subscribe(f.prefix+"/+", 1, f.onMessage)
			t.Wait()
			if err := t.Error(); err != nil {
				log.Error().Err(err).Msg("mqtt resubscribe failed")
			}
		})

	f.client = mqtt.NewClient(opts)
	t := f.client.Connect()
	if !t.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("realtime: mqtt connect timed out after %s", connectTimeout)
	}
	if err := t.Error(); err != nil {
		return nil, fmt.Errorf("realtime: mqtt connect: %w", err)
	}
	return f, nil
}

func (f *MQTTFeed) onMessage(_ mqtt.Client, msg mqtt.Message) {
	collection := strings.TrimPrefix(msg.Topic(), f.prefix+"/")
	if collection == "" || strings.Contains(collection, "/") {
		return
	}
	_ = f.hub.Publish(context.Background(), collection)
}

// Publish sends the cue to the broker. Local subscribers receive it via the
// broker echo, keeping ordering consistent with what other instances see.
func (f *MQTTFeed) Publish(ctx context.Context, collection string) error {
	t := f.client.Publish(f.prefix+"/"+collection, 1, false, []byte{})
	select {
	case <-t.Done():
		return t.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe delegates to the embedded hub.
func (f *MQTTFeed) Subscribe() (<-chan Cue, func()) {
	return f.hub.Subscribe()
}

// Close disconnects from the broker and tears down local subscribers.
func (f *MQTTFeed) Close() {
	f.client.Disconnect(250)
	f.hub.Close()
}
