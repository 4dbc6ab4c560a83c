package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserByEmailFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/users", r.URL.Path)
		assert.Equal(t, "a@x.com", r.URL.Query().Get("email"))
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(User{UID: "uid-1", Email: "a@x.com"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-key")
	u, err := c.GetUserByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", u.UID)
	assert.Equal(t, "a@x.com", u.Email)
}

func TestGetUserByEmailPlain404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	_, err := c.GetUserByEmail(context.Background(), "missing@x.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserByEmailCodedNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "auth/user-not-found", "message": "no such user"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	_, err := c.GetUserByEmail(context.Background(), "missing@x.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserByEmailServerErrorIsNotNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "internal", "message": "boom"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	_, err := c.GetUserByEmail(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
	assert.Contains(t, err.Error(), "http 500")
}

func TestGetUserByEmailOther4xxIsNotNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "permission-denied"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	_, err := c.GetUserByEmail(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestCreateUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/users", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@x.com", body["email"])
		assert.NotEmpty(t, body["password_hash"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(User{UID: "uid-new", Email: body["email"]})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	u, err := c.CreateUser(context.Background(), "a@x.com", "bcrypt-hash")
	require.NoError(t, err)
	assert.Equal(t, "uid-new", u.UID)
}

func TestCreateUserConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "email-already-exists"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	_, err := c.CreateUser(context.Background(), "a@x.com", "hash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email-already-exists")
}
