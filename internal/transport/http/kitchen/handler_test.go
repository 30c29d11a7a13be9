package kitchen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/database/dbtest"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/realtime"
	menurepo "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/menu"
	orderrepo "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/order"
	menuservice "github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/menu"
	orderservice "github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/order"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/transport/http/transporttest"
)

type fixture struct {
	*transporttest.Env
	orders  *orderservice.Service
	kitchen string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	env := transporttest.New(t)
	orders := orderservice.NewService(orderservice.Params{
		Repository: orderrepo.NewRepository(env.Conns),
		Notifier:   env.Recorder,
		Config:     env.Config,
		Logger:     zap.NewNop(),
	})
	menu := menuservice.NewService(menuservice.Params{
		Repository: menurepo.NewRepository(env.Conns),
		Notifier:   env.Recorder,
		Config:     env.Config,
		Logger:     zap.NewNop(),
	})
	Register(env.Echo, NewHandler(orders, menu), env.Tokens)
	return fixture{Env: env, orders: orders, kitchen: env.Token(t, 1, entity.RoleKitchen)}
}

func (f fixture) placeOrder(t *testing.T, customerID int64) int64 {
	t.Helper()
	order, err := f.orders.Create(context.Background(), customerID, []orderservice.LineItem{{ID: 7, Quantity: 2}, {ID: 9, Quantity: 1}})
	require.NoError(t, err)
	f.Recorder.Reset()
	return order.ID
}

func TestHandler_RequiresKitchenRole(t *testing.T) {
	f := newFixture(t)

	testCases := map[string]struct {
		bearer     string
		wantStatus int
	}{
		"anonymous": {bearer: "", wantStatus: http.StatusUnauthorized},
		"customer":  {bearer: f.Token(t, 42, entity.RoleCustomer), wantStatus: http.StatusForbidden},
		"admin":     {bearer: f.Token(t, 2, entity.RoleAdmin), wantStatus: http.StatusForbidden},
		"kitchen":   {bearer: f.kitchen, wantStatus: http.StatusOK},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			rec := f.Do(http.MethodGet, "/kitchen/orders", tc.bearer, "")
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}

	rec := f.Do(http.MethodGet, "/kitchen/orders", f.Token(t, 42, entity.RoleCustomer), "")
	assert.JSONEq(t, `{"message":"Forbidden: kitchen only","kind":"forbidden"}`, rec.Body.String())
}

func TestHandler_SetStatus(t *testing.T) {
	for _, prefix := range []string{"/kitchen/orders", "/kitchen"} {
		t.Run(prefix, func(t *testing.T) {
			f := newFixture(t)
			id := f.placeOrder(t, 42)

			rec := f.Do(http.MethodPatch, fmt.Sprintf("%s/%d/status", prefix, id), f.kitchen, `{"status":"ready"}`)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.JSONEq(t, fmt.Sprintf(`{"orderId":%d,"status":"ready"}`, id), rec.Body.String())

			updates := f.Recorder.Named(realtime.EventOrderStatusUpdate)
			require.Len(t, updates, 1)
			assert.Equal(t, realtime.KitchenChannel, updates[0].Channel)
			assert.Equal(t, realtime.OrderStatusUpdate{OrderID: id, Status: entity.StatusReady, UserID: 42}, updates[0].Event)

			private := f.Recorder.Named(realtime.EventYourOrderStatus)
			require.Len(t, private, 1)
			assert.Equal(t, realtime.CustomerChannel(42), private[0].Channel)
			assert.Equal(t, realtime.YourOrderStatus{OrderID: id, Status: entity.StatusReady}, private[0].Event)
		})
	}
}

func TestHandler_SetStatusErrors(t *testing.T) {
	f := newFixture(t)
	id := f.placeOrder(t, 42)

	testCases := map[string]struct {
		path       string
		body       string
		wantStatus int
	}{
		"bogus status":     {path: fmt.Sprintf("/kitchen/orders/%d/status", id), body: `{"status":"bogus"}`, wantStatus: http.StatusBadRequest},
		"cancelled status": {path: fmt.Sprintf("/kitchen/orders/%d/status", id), body: `{"status":"cancelled"}`, wantStatus: http.StatusBadRequest},
		"missing status":   {path: fmt.Sprintf("/kitchen/orders/%d/status", id), body: `{}`, wantStatus: http.StatusBadRequest},
		"unknown order":    {path: "/kitchen/orders/999/status", body: `{"status":"ready"}`, wantStatus: http.StatusNotFound},
		"invalid id":       {path: "/kitchen/orders/abc/status", body: `{"status":"ready"}`, wantStatus: http.StatusBadRequest},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			rec := f.Do(http.MethodPatch, tc.path, f.kitchen, tc.body)
			assert.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
		})
	}

	assert.Empty(t, f.Recorder.Events())
	rec := f.Do(http.MethodGet, "/kitchen/orders", f.kitchen, "")
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)
}

func TestHandler_CancelTwice(t *testing.T) {
	f := newFixture(t)
	id := f.placeOrder(t, 42)

	for _, path := range []string{fmt.Sprintf("/kitchen/orders/%d/cancel", id), fmt.Sprintf("/kitchen/%d/cancel", id)} {
		rec := f.Do(http.MethodPatch, path, f.kitchen, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, fmt.Sprintf(`{"orderId":%d,"status":"cancelled"}`, id), rec.Body.String())
	}
	assert.Len(t, f.Recorder.Named(realtime.EventOrderStatusUpdate), 2)
	assert.Len(t, f.Recorder.Named(realtime.EventYourOrderStatus), 2)

	rec := f.Do(http.MethodPatch, "/kitchen/orders/999/cancel", f.kitchen, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ListActiveExcludesCancelled(t *testing.T) {
	f := newFixture(t)
	keep := f.placeOrder(t, 42)
	drop := f.placeOrder(t, 43)
	_, err := f.orders.Cancel(context.Background(), drop)
	require.NoError(t, err)

	for _, path := range []string{"/kitchen/orders", "/kitchen/"} {
		rec := f.Do(http.MethodGet, path, f.kitchen, "")
		require.Equal(t, http.StatusOK, rec.Code, path)

		var orders []struct {
			ID    int64 `json:"id"`
			Items []struct {
				MenuItemID int64 `json:"menuItemId"`
				Quantity   int   `json:"quantity"`
			} `json:"items"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
		require.Len(t, orders, 1, path)
		assert.Equal(t, keep, orders[0].ID)
		assert.Len(t, orders[0].Items, 2)
	}
}

func TestHandler_SetAvailability(t *testing.T) {
	f := newFixture(t)
	item := &entity.MenuItem{Name: "Margherita", Price: 80, Available: true}
	dbtest.Insert(t, f.Conns.Writer, item)
	path := fmt.Sprintf("/kitchen/menu-items/%d/availability", item.ID)

	rec := f.Do(http.MethodPatch, path, f.kitchen, `{"available":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"available":false}`, item.ID), rec.Body.String())

	events := f.Recorder.Named(realtime.EventMenuItemUpdated)
	require.Len(t, events, 1)
	assert.Equal(t, realtime.MenuItemUpdated{ID: item.ID, Available: false}, events[0].Event)

	testCases := map[string]struct {
		path       string
		body       string
		wantStatus int
	}{
		"string flag":  {path: path, body: `{"available":"no"}`, wantStatus: http.StatusBadRequest},
		"numeric flag": {path: path, body: `{"available":0}`, wantStatus: http.StatusBadRequest},
		"missing flag": {path: path, body: `{}`, wantStatus: http.StatusBadRequest},
		"unknown item": {path: "/kitchen/menu-items/999/availability", body: `{"available":true}`, wantStatus: http.StatusNotFound},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			f.Recorder.Reset()
			rec := f.Do(http.MethodPatch, tc.path, f.kitchen, tc.body)
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Empty(t, f.Recorder.Events())
		})
	}
}

func TestHandler_History(t *testing.T) {
	f := newFixture(t)
	id := f.placeOrder(t, 42)
	repo := orderrepo.NewRepository(f.Conns)
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.AppendStatusLog(context.Background(), &entity.OrderStatusLog{OrderID: id, Status: entity.StatusPending, OccurredAt: at}))

	rec := f.Do(http.MethodGet, fmt.Sprintf("/kitchen/orders/%d/history", id), f.kitchen, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"status":"pending","occurredAt":"2025-05-01T12:00:00Z"}]`, rec.Body.String())

	rec = f.Do(http.MethodGet, "/kitchen/orders/999/history", f.kitchen, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
