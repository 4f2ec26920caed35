package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProxy_ReturnsBodyAndSendsHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Riot-Token"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	proxy := NewProxy("test", map[string]string{"X-Riot-Token": "secret"}, nil, time.Second)
	assert.Equal(t, []byte(`{"ok":true}`), proxy.Request(context.Background(), server.URL, true))
}

func TestProxy_NilOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	proxy := NewProxy("test", nil, nil, time.Second)
	assert.Nil(t, proxy.Request(context.Background(), server.URL, true))
}

func TestProxy_NilOnUnknownStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(418)
	}))
	defer server.Close()

	proxy := NewProxy("test", nil, nil, time.Second)
	assert.Nil(t, proxy.Request(context.Background(), server.URL, true))
}

func TestProxy_NilOnTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("late"))
	}))
	defer server.Close()

	proxy := NewProxy("test", nil, nil, 20*time.Millisecond)
	assert.Nil(t, proxy.Request(context.Background(), server.URL, true))
}

func TestProxy_RateLimitStartsCooldown(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	proxy := NewProxy("test", nil, []Restriction{{Requests: 100, Duration: time.Minute}}, time.Second)
	assert.Nil(t, proxy.Request(context.Background(), server.URL, true))
	// Non vital requests are refused while cooling down, without reaching the server
	assert.Nil(t, proxy.Request(context.Background(), server.URL, false))
	assert.Equal(t, 1, calls)
}
