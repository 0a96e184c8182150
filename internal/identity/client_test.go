package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserReturnsSubjectID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/users", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice@example.com", body["email"])

		fmt.Fprint(w, `{"id":"subject-1"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	id, err := c.CreateUser(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "subject-1", id)
}

func TestCreateUserEmailConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	_, err := c.CreateUser(context.Background(), "alice@example.com", "secret1")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestCreateUserProviderOutage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	_, err := c.CreateUser(context.Background(), "alice@example.com", "secret1")
	assert.ErrorIs(t, err, ErrIdentityUnavailable)
}

func TestCreateUserEmptySubjectRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":""}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	_, err := c.CreateUser(context.Background(), "alice@example.com", "secret1")
	assert.ErrorIs(t, err, ErrIdentityUnavailable)
}
