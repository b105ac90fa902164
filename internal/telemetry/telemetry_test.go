package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	var received Event
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte("1.4.0\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	latest, err := client.Check(context.Background(), "version", "1.2.3")
	require.NoError(t, err)

	assert.Equal(t, "1.4.0", latest)
	assert.Equal(t, "version", received.Command)
	assert.Equal(t, "1.2.3", received.Version)
	assert.Equal(t, runtime.GOOS, received.OS)
	assert.Equal(t, runtime.GOARCH, received.Arch)
}

func TestCheckNoEndpoint(t *testing.T) {
	client := NewClient("")
	_, err := client.Check(context.Background(), "version", "1.2.3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestCheckServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Check(context.Background(), "version", "1.2.3")
	assert.Error(t, err)
}

func TestCheckUnreachableEndpoint(t *testing.T) {
	client := NewClient("http://127.0.0.1:1/version")
	_, err := client.Check(context.Background(), "version", "1.2.3")
	assert.Error(t, err)
}
