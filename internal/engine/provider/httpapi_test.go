// internal/engine/provider/httpapi_test.go
package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engerrors "license-alert-engine/internal/common/errors"
)

func TestHTTPProviderSendSuccess(t *testing.T) {
	var gotAuth string
	var gotReq map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]interface{}{"message_id": "http-42", "cost": 0.021})
	}))
	defer srv.Close()

	p := NewHTTPProvider("backup", srv.URL, "secret-key", "BACKOFFICE")
	res, err := p.Send(context.Background(), "+13125550142", "hello")
	require.NoError(t, err)

	assert.Equal(t, "http-42", res.MessageID)
	assert.Equal(t, 0.021, res.Cost)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "+13125550142", gotReq["to"])
	assert.Equal(t, "BACKOFFICE", gotReq["from"])
}

func TestHTTPProviderSendStatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"throttled", http.StatusTooManyRequests, true},
		{"server error", http.StatusInternalServerError, true},
		{"bad request", http.StatusBadRequest, false},
		{"unauthorized", http.StatusUnauthorized, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			p := NewHTTPProvider("backup", srv.URL, "k", "")
			_, err := p.Send(context.Background(), "+13125550142", "hello")
			require.Error(t, err)
			assert.Equal(t, tt.retryable, engerrors.IsTransient(err))
		})
	}
}

func TestHTTPProviderSendNetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	p := NewHTTPProvider("backup", srv.URL, "k", "")
	_, err := p.Send(context.Background(), "+13125550142", "hello")
	require.Error(t, err)
	assert.True(t, engerrors.IsTransient(err))
}
