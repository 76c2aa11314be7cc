package whatsapp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	apperr "github.com/rolevate/roomgo/internal/pkg/err"
	"github.com/stretchr/testify/assert"
)

func newTestWAClient(url string) *Client {
	tokens, _ := NewStaticTokenCache("token1")
	res := &Client{tokens: tokens, messageURL: url}
	res.httpclient = retryablehttp.NewClient()
	res.httpclient.RetryMax = 0
	res.httpclient.HTTPClient.Timeout = time.Second
	res.httpclient.Logger = nil
	return res
}

func newMsg() *TemplateMsg {
	return &TemplateMsg{To: "+962796026659", Template: "interview_feedback",
		Language: "en", Params: []string{"John", "Backend Engineer"}}
}

func TestSend(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token1", r.Header.Get("Authorization"))
		assert.Nil(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer server.Close()

	id, err := newTestWAClient(server.URL).Send(newMsg())
	assert.Nil(t, err)
	assert.Equal(t, "wamid.1", id)
	assert.Equal(t, "whatsapp", got["messaging_product"])
	assert.Equal(t, "+962796026659", got["to"])
	template := got["template"].(map[string]interface{})
	assert.Equal(t, "interview_feedback", template["name"])
	components := template["components"].([]interface{})
	params := components[0].(map[string]interface{})["parameters"].([]interface{})
	assert.Equal(t, 2, len(params), "params are positional, all must be passed")
	assert.Equal(t, "John", params[0].(map[string]interface{})["text"])
}

func TestSend_PermanentFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"template not found"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newTestWAClient(server.URL).Send(newMsg())
	assert.True(t, errors.Is(err, apperr.ErrNonRestorable))
	assert.False(t, errors.Is(err, apperr.ErrExternalService))
}

func TestSend_TransientFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestWAClient(server.URL).Send(newMsg())
	assert.True(t, errors.Is(err, apperr.ErrExternalService))
	assert.False(t, errors.Is(err, apperr.ErrNonRestorable))
}

func TestSend_Unreachable(t *testing.T) {
	_, err := newTestWAClient("http://localhost:12345").Send(newMsg())
	assert.True(t, errors.Is(err, apperr.ErrExternalService))
}
