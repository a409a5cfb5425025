package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	coreconfig "github.com/Growstale/RequestHandlerWebServer/core/config"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(coreconfig.BackendConfig{
		BaseURL:        srv.URL,
		APIKey:         "secret-key",
		TimeoutSeconds: 2,
		ListPageSize:   1000,
	})
}

func TestClientSendsAPIKey(t *testing.T) {
	var gotKey string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		_ = json.NewEncoder(w).Encode(map[string]any{"userID": 1, "roleName": "RetailAdmin"})
	}))

	u, err := c.UserByTelegramID(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, "secret-key", gotKey)
	require.Equal(t, int64(1), u.UserID)
	require.Equal(t, "RetailAdmin", u.RoleName)
}

func TestClientShopsUnwrapsContent(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/shops", r.URL.Path)
		require.Equal(t, "1000", r.URL.Query().Get("size"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"shopID": 7, "shopName": "Центральный"},
				{"shopID": 8, "shopName": "Северный"},
			},
		})
	}))

	opts, err := c.Shops(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Option{{ID: 7, Label: "Центральный"}, {ID: 8, Label: "Северный"}}, opts)
}

func TestClientContractorsFlatList(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/user/contractors", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"userID": 3, "login": "ivanov"},
		})
	}))

	opts, err := c.Contractors(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Option{{ID: 3, Label: "ivanov"}}, opts)
}

func TestClientNonOKStatusIsError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.UserByTelegramID(context.Background(), 1)
	require.Error(t, err)

	_, err = c.WorkCategories(context.Background())
	require.Error(t, err)
}

func TestClientCreateRequest(t *testing.T) {
	days := 14
	var got CreateRequestInput
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/bot/requests", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{"requestID": 555})
	}))

	resp, err := c.CreateRequest(context.Background(), CreateRequestInput{
		Description:          "Течёт кран",
		ShopID:               7,
		WorkCategoryID:       2,
		UrgencyID:            4,
		AssignedContractorID: 3,
		CreatedByUserID:      1,
		CustomDays:           &days,
	})
	require.NoError(t, err)
	require.Equal(t, int64(555), resp.RequestID)
	require.NotNil(t, got.CustomDays)
	require.Equal(t, 14, *got.CustomDays)
}

func TestClientCreateRequestOmitsCustomDays(t *testing.T) {
	var raw map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_ = json.NewEncoder(w).Encode(map[string]any{"requestID": 1})
	}))

	_, err := c.CreateRequest(context.Background(), CreateRequestInput{
		Description: "x", ShopID: 1, WorkCategoryID: 1, UrgencyID: 1,
		AssignedContractorID: 1, CreatedByUserID: 1,
	})
	require.NoError(t, err)
	_, present := raw["customDays"]
	require.False(t, present)
}

func TestClientCreateRequestMissingID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}))

	_, err := c.CreateRequest(context.Background(), CreateRequestInput{})
	require.Error(t, err)
}

func TestClientHealthClassification(t *testing.T) {
	cases := []struct {
		code int
		want HealthStatus
	}{
		{http.StatusOK, HealthOK},
		{http.StatusUnauthorized, HealthUnauthorized},
		{http.StatusForbidden, HealthForbidden},
		{http.StatusBadGateway, HealthStatusError},
	}
	for _, tc := range cases {
		code := tc.code
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/bot/health", r.URL.Path)
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"status":"x"}`))
		}))
		res := c.Health(context.Background())
		require.Equal(t, tc.want, res.Status)
		require.Equal(t, code, res.Code)
	}
}

func TestClientHealthUnreachable(t *testing.T) {
	c := NewClient(coreconfig.BackendConfig{
		BaseURL:        "http://127.0.0.1:1",
		APIKey:         "k",
		TimeoutSeconds: 1,
	})
	res := c.Health(context.Background())
	require.Equal(t, HealthUnreachable, res.Status)
	require.Error(t, res.Err)
}
