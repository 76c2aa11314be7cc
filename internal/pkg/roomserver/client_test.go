package roomserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
)

func newTestClient(url string, timeout time.Duration) *Client {
	res := &Client{roomsURL: url}
	res.httpclient = retryablehttp.NewClient()
	res.httpclient.RetryMax = 0
	res.httpclient.HTTPClient.Timeout = timeout
	res.httpclient.Logger = nil
	return res
}

func TestGetRoom(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rooms/r1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"r1","sid":"RM_1","numParticipants":2}`))
	}))
	defer server.Close()

	res, err := newTestClient(server.URL, time.Second).GetRoom("r1")
	assert.Nil(t, err)
	assert.True(t, res.Exists)
	assert.Equal(t, 2, res.NumParticipants)
}

func TestGetRoom_Missing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no room", http.StatusNotFound)
	}))
	defer server.Close()

	res, err := newTestClient(server.URL, time.Second).GetRoom("r1")
	assert.Nil(t, err)
	assert.False(t, res.Exists)
}

func TestGetRoom_ServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, time.Second).GetRoom("r1")
	assert.NotNil(t, err)
}

func TestGetRoom_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 20*time.Millisecond).GetRoom("r1")
	assert.NotNil(t, err)
}
