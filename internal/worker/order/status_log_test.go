package order

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/database/dbtest"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/messaging"
	orderrepo "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/order"
	ordersvc "github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/order"
)

func eventMessage(t *testing.T, ev ordersvc.OrderEvent) messaging.Message {
	t.Helper()
	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	return messaging.Message{
		Topic:   "orders",
		Value:   raw,
		Headers: map[string]string{messaging.HeaderEventType: ev.Type},
	}
}

func TestStatusLogHandlers_RecordHistory(t *testing.T) {
	conns := dbtest.New(t)
	repo := orderrepo.NewRepository(conns)
	order := &entity.Order{UserID: 7, Status: entity.StatusPending}
	dbtest.Insert(t, conns.Writer, order)

	created := NewStatusLogHandler(repo, zap.NewNop())
	changed := NewStatusChangedHandler(repo, zap.NewNop())
	assert.Equal(t, ordersvc.EventOrderCreated, created.EventType)
	assert.Equal(t, ordersvc.EventOrderStatusChanged, changed.EventType)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, created.Handler(context.Background(), eventMessage(t, ordersvc.OrderEvent{
		Type: ordersvc.EventOrderCreated, OrderID: order.ID, UserID: 7, Status: entity.StatusPending, OccurredAt: base,
	})))
	require.NoError(t, changed.Handler(context.Background(), eventMessage(t, ordersvc.OrderEvent{
		Type: ordersvc.EventOrderStatusChanged, OrderID: order.ID, UserID: 7, Status: entity.StatusCancelled, OccurredAt: base.Add(2 * time.Minute),
	})))
	require.NoError(t, changed.Handler(context.Background(), eventMessage(t, ordersvc.OrderEvent{
		Type: ordersvc.EventOrderStatusChanged, OrderID: order.ID, UserID: 7, Status: entity.StatusInMaking, OccurredAt: base.Add(time.Minute),
	})))

	history, err := repo.ListStatusLog(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, entity.StatusPending, history[0].Status)
	assert.Equal(t, entity.StatusInMaking, history[1].Status)
	assert.Equal(t, entity.StatusCancelled, history[2].Status)
}

func TestStatusLogHandler_BadPayloads(t *testing.T) {
	conns := dbtest.New(t)
	repo := orderrepo.NewRepository(conns)
	handler := NewStatusChangedHandler(repo, zap.NewNop()).Handler

	testCases := map[string]struct {
		msg     messaging.Message
		wantErr bool
	}{
		"should fail on undecodable payload": {
			msg:     messaging.Message{Value: []byte("{not json")},
			wantErr: true,
		},
		"should skip unknown status": {
			msg: eventMessage(t, ordersvc.OrderEvent{Type: ordersvc.EventOrderStatusChanged, OrderID: 1, Status: "burnt"}),
		},
		"should skip missing order id": {
			msg: eventMessage(t, ordersvc.OrderEvent{Type: ordersvc.EventOrderStatusChanged, Status: entity.StatusReady}),
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			err := handler(context.Background(), tc.msg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}

	history, err := repo.ListStatusLog(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, history)
}
