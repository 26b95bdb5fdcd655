package events

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPublishContinuesPastFailingHandler(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	var calls []string
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("smtp unavailable")
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})

	if err := d.Publish(context.Background(), Event{ID: "evt-1", Type: EventTicketCreated}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Fatalf("handler calls = %v", calls)
	}
	if logs.FilterMessage("event handler failed").Len() != 1 {
		t.Fatalf("handler failure was not logged")
	}
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	if err := d.Publish(context.Background(), Event{Type: EventTicketUpdated}); err != nil {
		t.Fatalf("publish: %v", err)
	}
}
