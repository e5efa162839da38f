package command

import (
	"context"
	"fmt"
	"testing"

	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-outbound/core"
)

type stubMutatingService struct {
	dispatchFn func(ctx context.Context, req core.DispatchRequest) (string, error)
	sendTestFn func(ctx context.Context, data map[string]any) (bool, error)
	sweepFn    func(ctx context.Context) (core.SweepStats, error)
	deliverFn  func(ctx context.Context, deliveryID string) (core.Delivery, error)
}

func (s stubMutatingService) Dispatch(ctx context.Context, req core.DispatchRequest) (string, error) {
	if s.dispatchFn == nil {
		return "", fmt.Errorf("unexpected Dispatch call")
	}
	return s.dispatchFn(ctx, req)
}

func (s stubMutatingService) SendTest(ctx context.Context, data map[string]any) (bool, error) {
	if s.sendTestFn == nil {
		return false, fmt.Errorf("unexpected SendTest call")
	}
	return s.sendTestFn(ctx, data)
}

func (s stubMutatingService) Sweep(ctx context.Context) (core.SweepStats, error) {
	if s.sweepFn == nil {
		return core.SweepStats{}, fmt.Errorf("unexpected Sweep call")
	}
	return s.sweepFn(ctx)
}

func (s stubMutatingService) Deliver(ctx context.Context, deliveryID string) (core.Delivery, error) {
	if s.deliverFn == nil {
		return core.Delivery{}, fmt.Errorf("unexpected Deliver call")
	}
	return s.deliverFn(ctx, deliveryID)
}

func TestDispatchEventCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	called := false
	svc := stubMutatingService{
		dispatchFn: func(_ context.Context, req core.DispatchRequest) (string, error) {
			called = true
			if req.EventType != "invoice.paid" {
				t.Fatalf("expected event invoice.paid, got %q", req.EventType)
			}
			if !req.Async {
				t.Fatalf("expected async flag to pass through")
			}
			if req.Data["invoice_id"] != "inv_1" {
				t.Fatalf("unexpected data: %#v", req.Data)
			}
			return "delivery-7", nil
		},
	}

	cmd := NewDispatchEventCommand(svc)
	collector := gocmd.NewResult[string]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, DispatchEventMessage{
		EventType: "invoice.paid",
		Data:      map[string]any{"invoice_id": "inv_1"},
		Async:     true,
	})
	if err != nil {
		t.Fatalf("execute dispatch: %v", err)
	}
	if !called {
		t.Fatalf("expected dispatch invocation")
	}
	id, ok := collector.Load()
	if !ok {
		t.Fatalf("expected delivery id result")
	}
	if id != "delivery-7" {
		t.Fatalf("unexpected delivery id: %q", id)
	}
}

func TestMutationCommands_DelegateToService(t *testing.T) {
	t.Run("send test", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			sendTestFn: func(_ context.Context, data map[string]any) (bool, error) {
				called = true
				if data["note"] != "ping" {
					t.Fatalf("unexpected test data: %#v", data)
				}
				return true, nil
			},
		}
		cmd := NewSendTestCommand(svc)
		collector := gocmd.NewResult[bool]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := cmd.Execute(ctx, SendTestMessage{Data: map[string]any{"note": "ping"}}); err != nil {
			t.Fatalf("execute send test: %v", err)
		}
		if !called {
			t.Fatalf("expected send test invocation")
		}
		ok2xx, ok := collector.Load()
		if !ok || !ok2xx {
			t.Fatalf("expected stored success result, ok=%v value=%v", ok, ok2xx)
		}
	})

	t.Run("sweep retries", func(t *testing.T) {
		expected := core.SweepStats{Selected: 3, Delivered: 2, Failed: 1}
		svc := stubMutatingService{
			sweepFn: func(context.Context) (core.SweepStats, error) {
				return expected, nil
			},
		}
		cmd := NewSweepRetriesCommand(svc)
		collector := gocmd.NewResult[core.SweepStats]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := cmd.Execute(ctx, SweepRetriesMessage{}); err != nil {
			t.Fatalf("execute sweep: %v", err)
		}
		stats, ok := collector.Load()
		if !ok || stats != expected {
			t.Fatalf("unexpected sweep stats: %#v ok=%v", stats, ok)
		}
	})

	t.Run("redeliver", func(t *testing.T) {
		svc := stubMutatingService{
			deliverFn: func(_ context.Context, deliveryID string) (core.Delivery, error) {
				if deliveryID != "delivery-9" {
					t.Fatalf("unexpected delivery id: %q", deliveryID)
				}
				return core.Delivery{ID: "delivery-9", Status: core.DeliveryStatusDelivered}, nil
			},
		}
		cmd := NewRedeliverCommand(svc)
		collector := gocmd.NewResult[core.Delivery]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := cmd.Execute(ctx, RedeliverMessage{DeliveryID: "delivery-9"}); err != nil {
			t.Fatalf("execute redeliver: %v", err)
		}
		record, ok := collector.Load()
		if !ok || record.Status != core.DeliveryStatusDelivered {
			t.Fatalf("unexpected redeliver result: %#v ok=%v", record, ok)
		}
	})
}

func TestCommands_PropagateServiceErrors(t *testing.T) {
	want := fmt.Errorf("endpoint exploded")
	svc := stubMutatingService{
		dispatchFn: func(context.Context, core.DispatchRequest) (string, error) {
			return "", want
		},
	}
	cmd := NewDispatchEventCommand(svc)
	err := cmd.Execute(context.Background(), DispatchEventMessage{EventType: "invoice.paid"})
	if err == nil || err.Error() != want.Error() {
		t.Fatalf("expected service error to pass through, got %v", err)
	}
}

func TestCommands_RequireService(t *testing.T) {
	cases := []struct {
		name string
		run  func(ctx context.Context) error
	}{
		{"dispatch", func(ctx context.Context) error {
			return NewDispatchEventCommand(nil).Execute(ctx, DispatchEventMessage{EventType: "x"})
		}},
		{"send test", func(ctx context.Context) error {
			return NewSendTestCommand(nil).Execute(ctx, SendTestMessage{})
		}},
		{"sweep", func(ctx context.Context) error {
			return NewSweepRetriesCommand(nil).Execute(ctx, SweepRetriesMessage{})
		}},
		{"redeliver", func(ctx context.Context) error {
			return NewRedeliverCommand(nil).Execute(ctx, RedeliverMessage{DeliveryID: "d1"})
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run(context.Background())
			if err == nil {
				t.Fatalf("expected dependency error")
			}
			var richErr *goerrors.Error
			if !goerrors.As(err, &richErr) {
				t.Fatalf("expected structured error, got %T", err)
			}
			if richErr.TextCode != core.WebhookErrorInternal {
				t.Fatalf("unexpected text code: %q", richErr.TextCode)
			}
		})
	}
}

func TestMessageValidation(t *testing.T) {
	if err := (DispatchEventMessage{}).Validate(); err == nil {
		t.Fatalf("expected blank event type rejection")
	}
	if err := (DispatchEventMessage{EventType: "invoice.paid"}).Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if err := (RedeliverMessage{}).Validate(); err == nil {
		t.Fatalf("expected blank delivery id rejection")
	}
	if err := (SweepRetriesMessage{}).Validate(); err != nil {
		t.Fatalf("unexpected sweep validation error: %v", err)
	}
}
