package whatsapp

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
)

type refreshFunc func() (string, time.Duration, error)

// TokenCache keeps the provider access token for its TTL.
// It is constructed once per process and passed to the client -
// no module level state
type TokenCache struct {
	refresh    refreshFunc
	token      string
	validUntil time.Time
	m          sync.Mutex // struct field mutex
}

//NewTokenCache creates a cache over the refresh function
func NewTokenCache(refresh refreshFunc) (*TokenCache, error) {
	if refresh == nil {
		return nil, errors.New("No refresh function")
	}
	return &TokenCache{refresh: refresh}, nil
}

//NewStaticTokenCache wraps a long lived configured token
func NewStaticTokenCache(token string) (*TokenCache, error) {
	if token == "" {
		return nil, errors.New("No token")
	}
	return NewTokenCache(func() (string, time.Duration, error) {
		return token, 24 * time.Hour, nil
	})
}

//Get returns a valid token, refreshing the expired one
func (tc *TokenCache) Get() (string, error) {
	tc.m.Lock()
	defer tc.m.Unlock()

	if tc.token != "" && time.Now().Before(tc.validUntil) {
		return tc.token, nil
	}
	cmdapp.Log.Info("Refreshing messaging provider token")
	token, ttl, err := tc.refresh()
	if err != nil {
		return "", errors.Wrap(err, "Can't refresh token")
	}
	tc.token = token
	tc.validUntil = time.Now().Add(ttl)
	return tc.token, nil
}

//Drop forgets the cached token so the next Get refreshes
func (tc *TokenCache) Drop() {
	tc.m.Lock()
	defer tc.m.Unlock()
	tc.token = ""
}
