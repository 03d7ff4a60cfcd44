package backend

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token", 5*time.Second, 10*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGetOrCreateUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/", r.URL.Path)
		assert.Equal(t, "Bot test-token", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(42), body["telegram_id"])
		assert.Equal(t, "fa", body["language"])
		assert.Equal(t, "SECRET", body["invite_code"])

		json.NewEncoder(w).Encode(User{ID: 7, TelegramID: 42, Language: "fa"})
	})

	user, err := client.GetOrCreateUser(context.Background(), 42, "fa", "SECRET")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "fa", user.Language)
}

func TestGetOrCreateUser_InviteRequired(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"invite_code_required","message":"invite code required"}`))
	})

	_, err := client.GetOrCreateUser(context.Background(), 42, "en", "")
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrKindInviteCodeRequired))

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "invite code required", apiErr.Message)
}

func TestListPlans_QueryParams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/plans", r.URL.Path)
		assert.Equal(t, "v2ray", r.URL.Query().Get("type"))
		assert.Equal(t, "true", r.URL.Query().Get("all"))

		json.NewEncoder(w).Encode([]Plan{{ID: 1, ServerType: ProtocolV2Ray, PriceIRR: 150000}})
	})

	plans, err := client.ListPlans(context.Background(), ProtocolV2Ray, true)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, float64(150000), plans[0].PriceIRR)
}

func TestCreateOrder_IdempotencyKey(t *testing.T) {
	var keys []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("X-Idempotency-Key"))
		json.NewEncoder(w).Encode(OrderReceipt{ID: 10})
	})

	order := CreateOrderRequest{TelegramID: 42, PlanID: 1, PaymentMethod: PaymentMethodCard}
	_, err := client.CreateOrder(context.Background(), order)
	require.NoError(t, err)
	_, err = client.CreateOrder(context.Background(), order)
	require.NoError(t, err)

	require.Len(t, keys, 2)
	assert.NotEmpty(t, keys[0])
	assert.NotEqual(t, keys[0], keys[1])
}

func TestApproveOrder_ProvisioningFailed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/10/approve", r.URL.Path)
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"provisioning_failed","message":"panel unreachable"}`))
	})

	_, err := client.ApproveOrder(context.Background(), 10)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrKindProvisioningFailed))
}

func TestParseAPIError_NonJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded"))
	})

	err := client.RejectOrder(context.Background(), 3)
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Empty(t, apiErr.Kind)
}
