package amqp

import (
	"context"
	"errors"
	"testing"
)

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }
func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func TestSettle(t *testing.T) {
	valid, err := NewTransactionEvent(EventCreated, 7).ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	tests := []struct {
		name        string
		body        []byte
		handlerErr  error
		wantAck     bool
		wantNack    bool
		wantRequeue bool
	}{
		{name: "handled", body: valid, wantAck: true},
		{name: "handler failure is requeued", body: valid, handlerErr: errors.New("boom"), wantNack: true, wantRequeue: true},
		{name: "garbage is dropped", body: []byte("not json"), wantNack: true},
		{name: "unknown kind is dropped", body: []byte(`{"kind":"transaction.updated","transaction_id":1}`), wantNack: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}
			var got *TransactionEvent
			settle(context.Background(), tt.body, ack, func(_ context.Context, ev *TransactionEvent) error {
				got = ev
				return tt.handlerErr
			})

			if ack.acked != tt.wantAck || ack.nacked != tt.wantNack || ack.requeued != tt.wantRequeue {
				t.Fatalf("ack=%v nack=%v requeue=%v", ack.acked, ack.nacked, ack.requeued)
			}
			if tt.wantAck && (got == nil || got.TransactionID != 7 || got.Kind != EventCreated) {
				t.Fatalf("unexpected event: %+v", got)
			}
		})
	}
}

func TestNewTransactionEventIDsAreUnique(t *testing.T) {
	a := NewTransactionEvent(EventDeleted, 1)
	b := NewTransactionEvent(EventDeleted, 1)
	if a.EventID == "" || a.EventID == b.EventID {
		t.Fatalf("expected distinct non-empty ids, got %q and %q", a.EventID, b.EventID)
	}
}
