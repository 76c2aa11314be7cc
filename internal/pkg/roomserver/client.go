package roomserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	"github.com/rolevate/roomgo/internal/pkg/session"
	"github.com/rolevate/roomgo/internal/pkg/utils"
)

// Client asks the room server for its authoritative room state
type Client struct {
	httpclient *retryablehttp.Client
	roomsURL   string
}

//NewClient creates a room server client.
//Every call is bounded by the configured timeout - a stuck room server
//must not hang reconciliation
func NewClient() (*Client, error) {
	res := Client{}
	var err error
	res.roomsURL, err = utils.GetURLFromConfig("roomServer.url")
	if err != nil {
		return nil, err
	}
	timeout := cmdapp.Config.GetDuration("roomServer.timeout")
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	res.httpclient = retryablehttp.NewClient()
	res.httpclient.RetryMax = 2
	res.httpclient.HTTPClient.Timeout = timeout
	res.httpclient.Logger = nil
	return &res, nil
}

//GetRoom returns the live state for the room name.
//A missing room is a regular answer, not an error
func (sp *Client) GetRoom(roomName string) (*session.RemoteRoom, error) {
	urlStr := utils.URLJoin(sp.roomsURL, "rooms", roomName)
	cmdapp.Log.Debugf("Get room state: %s", urlStr)
	resp, err := sp.httpclient.Get(urlStr)
	if err != nil {
		return nil, errors.Wrap(err, "Can't reach room server")
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return &session.RemoteRoom{Exists: false}, nil
	}
	if err := utils.ValidateResponse(resp); err != nil {
		return nil, errors.Wrap(err, "Can't get room state")
	}

	var result roomState
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "Can't decode response")
	}
	return &session.RemoteRoom{Exists: true, NumParticipants: result.NumParticipants}, nil
}

type roomState struct {
	Name            string `json:"name"`
	Sid             string `json:"sid"`
	NumParticipants int    `json:"numParticipants"`
}
