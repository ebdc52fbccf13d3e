package mq

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ObservantAbc123/OpenFarm3-D/contracts/events"
)

// Dispatcher owns one consumer per registered event kind. Handlers are
// looked up by kind, so adding an event type is a Register call away.
type Dispatcher struct {
	url       string
	logger    *zap.Logger
	handlers  map[events.Kind]MessageHandler
	order     []events.Kind
	consumers []*Consumer
}

func NewDispatcher(url string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		url:      url,
		logger:   logger,
		handlers: make(map[events.Kind]MessageHandler),
	}
}

// Register binds a handler to an event kind. Registering the same kind
// twice replaces the earlier handler.
func (d *Dispatcher) Register(kind events.Kind, h MessageHandler) {
	if _, exists := d.handlers[kind]; !exists {
		d.order = append(d.order, kind)
	}
	d.handlers[kind] = h
}

// Start declares a queue per registered kind and consumes each on its
// own goroutine. Cancelling the context closes every consumer.
func (d *Dispatcher) Start(ctx context.Context) error {
	if len(d.handlers) == 0 {
		return fmt.Errorf("no handlers registered")
	}

	for _, kind := range d.order {
		consumer, err := NewConsumer(d.url, kind, d.logger)
		if err != nil {
			d.Close()
			return fmt.Errorf("failed to start consumer for %s: %w", kind, err)
		}
		consumer.SetHandler(d.handlers[kind])
		d.consumers = append(d.consumers, consumer)

		go func(c *Consumer, kind events.Kind) {
			if err := c.StartConsuming(ctx); err != nil {
				d.logger.Error("Consumer stopped",
					zap.String("routing_key", string(kind)),
					zap.Error(err),
				)
			}
		}(consumer, kind)
	}

	go func() {
		<-ctx.Done()
		d.Close()
	}()

	d.logger.Info("Dispatcher started", zap.Int("consumers", len(d.consumers)))
	return nil
}

// Close shuts down every consumer connection.
func (d *Dispatcher) Close() {
	for _, c := range d.consumers {
		c.Close()
	}
	d.consumers = nil
}
