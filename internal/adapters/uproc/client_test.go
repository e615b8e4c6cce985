package uproc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/process", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ops@acme.com", user)
		assert.Equal(t, "secret", pass)

		var req processRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			assert.Equal(t, "check-email-exists", req.Processor)
			assert.Equal(t, "jane@acme.com", req.Params["email"])
		}

		_, _ = w.Write([]byte(`{"result":true,"message":{"email":"jane@acme.com"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/v2", "ops@acme.com", "secret", "check-email-exists", srv.Client(), zap.NewNop())

	got, err := c.Verify(context.Background(), "jane@acme.com")
	require.NoError(t, err)
	assert.True(t, got.Deliverable)
	assert.Equal(t, "jane@acme.com", got.Address)
	assert.Equal(t, Source, got.Source)
}

func TestVerifyUndeliverable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":false,"message":{"email":""}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "ops@acme.com", "secret", "check-email-exists", srv.Client(), zap.NewNop())

	got, err := c.Verify(context.Background(), "ghost@acme.com")
	require.NoError(t, err)
	assert.False(t, got.Deliverable)
	assert.Empty(t, got.Address)
}

func TestVerifyErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "ops@acme.com", "wrong", "check-email-exists", srv.Client(), zap.NewNop())

	_, err := c.Verify(context.Background(), "jane@acme.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
