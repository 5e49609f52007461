package events

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/avolkov/catalog_insights/internal/config"
	"github.com/avolkov/catalog_insights/internal/pkg/logger"
)

// Consumer handles consuming events from NATS
type Consumer struct {
	nc     *nats.Conn
	logger *logger.Logger
	sub    *nats.Subscription
}

// NewConsumer creates a new NATS consumer
func NewConsumer(cfg *config.Config, log *logger.Logger) (*Consumer, error) {
	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("catalog-notifier"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Infof("Connected to NATS at %s", cfg.NATS.URL)

	return &Consumer{
		nc:     nc,
		logger: log,
	}, nil
}

// Subscribe subscribes to a NATS subject and processes messages
func (c *Consumer) Subscribe(subject string, handler func(data []byte) error) error {
	sub, err := c.nc.Subscribe(subject, func(msg *nats.Msg) {
		c.logger.Debugf("Received message on subject %s", subject)

		if err := handler(msg.Data); err != nil {
			c.logger.Errorf(err, "Failed to handle message on subject %s", subject)
		}
	})

	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	c.sub = sub
	c.logger.Infof("Subscribed to NATS subject: %s", subject)
	return nil
}

// Close closes the NATS connection
func (c *Consumer) Close() {
	if c.sub != nil {
		if err := c.sub.Unsubscribe(); err != nil {
			c.logger.Warnf("Failed to unsubscribe from NATS: %v", err)
		}
	}
	if c.nc != nil {
		c.nc.Close()
		c.logger.Info("NATS consumer connection closed")
	}
}

// LoggingHandler creates a handler that logs every catalog mutation event as
// structured fields. Payloads that don't look like catalog events are logged
// raw rather than dropped.
func LoggingHandler(log *logger.Logger) func(data []byte) error {
	return func(data []byte) error {
		var event struct {
			EventID   string `json:"event_id"`
			EventType string `json:"event_type"`
			Entity    string `json:"entity"`
			ItemID    string `json:"item_id"`
			Timestamp string `json:"timestamp"`
		}
		if err := json.Unmarshal(data, &event); err != nil || event.EventType == "" {
			log.Infof("Received non-catalog event: %s", string(data))
			return nil
		}

		log.WithFields(map[string]interface{}{
			"event_id":  event.EventID,
			"type":      event.EventType,
			"entity":    event.Entity,
			"item_id":   event.ItemID,
			"timestamp": event.Timestamp,
		}).Info("Catalog event received")
		return nil
	}
}
