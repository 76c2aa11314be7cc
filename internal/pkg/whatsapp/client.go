package whatsapp

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	apperr "github.com/rolevate/roomgo/internal/pkg/err"
	"github.com/rolevate/roomgo/internal/pkg/utils"
)

// Client sends pre-approved template messages through the WhatsApp Business API
type Client struct {
	httpclient *retryablehttp.Client
	messageURL string
	tokens     *TokenCache
}

//TemplateMsg is one outgoing template send.
//Params are positional and must match the template registered at the provider -
//the provider, not the broker, rejects a mismatch
type TemplateMsg struct {
	To       string
	Template string
	Language string
	Params   []string
}

//NewClient creates the messaging provider client
func NewClient(tokens *TokenCache) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("No token cache")
	}
	res := Client{tokens: tokens}
	urlStr, err := utils.GetURLFromConfig("whatsapp.url")
	if err != nil {
		return nil, errors.Wrap(apperr.ErrConfiguration, err.Error())
	}
	phoneID := cmdapp.Config.GetString("whatsapp.phoneID")
	if phoneID == "" {
		return nil, errors.Wrap(apperr.ErrConfiguration, "No whatsapp.phoneID setting")
	}
	res.messageURL = utils.URLJoin(urlStr, phoneID, "messages")
	res.httpclient = retryablehttp.NewClient()
	res.httpclient.RetryMax = 2
	res.httpclient.HTTPClient.Timeout = 10 * time.Second
	res.httpclient.Logger = nil
	return &res, nil
}

//Send posts the template message, returns the provider message id.
//A 4xx answer (bad template or phone) is permanent - the caller must not retry.
//Transport failures and 5xx are transient
func (cl *Client) Send(msg *TemplateMsg) (string, error) {
	cmdapp.Log.Infof("Sending template '%s'", msg.Template)

	token, err := cl.tokens.Get()
	if err != nil {
		return "", errors.Wrap(apperr.ErrExternalService, err.Error())
	}

	body, err := json.Marshal(newTemplatePayload(msg))
	if err != nil {
		return "", errors.Wrap(err, "Can't marshal message")
	}
	req, err := retryablehttp.NewRequest("POST", cl.messageURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "Can't prepare request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := cl.httpclient.Do(req)
	if err != nil {
		return "", errors.Wrap(apperr.ErrExternalService, err.Error())
	}
	defer resp.Body.Close()
	if err := utils.ValidateResponse(resp); err != nil {
		if errors.Is(err, utils.ErrWrongHTTPCall) {
			return "", errors.Wrap(apperr.ErrNonRestorable, err.Error())
		}
		return "", errors.Wrap(apperr.ErrExternalService, err.Error())
	}

	var respData sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return "", errors.Wrap(err, "Can't decode response")
	}
	if len(respData.Messages) == 0 || respData.Messages[0].ID == "" {
		return "", errors.New("No message ID in response")
	}
	return respData.Messages[0].ID, nil
}

type templatePayload struct {
	MessagingProduct string          `json:"messaging_product"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Template         templateSection `json:"template"`
}

type templateSection struct {
	Name       string      `json:"name"`
	Language   language    `json:"language"`
	Components []component `json:"components,omitempty"`
}

type language struct {
	Code string `json:"code"`
}

type component struct {
	Type       string      `json:"type"`
	Parameters []parameter `json:"parameters"`
}

type parameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func newTemplatePayload(msg *TemplateMsg) *templatePayload {
	res := &templatePayload{
		MessagingProduct: "whatsapp",
		To:               msg.To,
		Type:             "template",
		Template:         templateSection{Name: msg.Template, Language: language{Code: msg.Language}},
	}
	if len(msg.Params) > 0 {
		c := component{Type: "body"}
		for _, p := range msg.Params {
			c.Parameters = append(c.Parameters, parameter{Type: "text", Text: p})
		}
		res.Template.Components = []component{c}
	}
	return res
}
