package whatsapp

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestGet_RefreshOnce(t *testing.T) {
	calls := 0
	tc, err := NewTokenCache(func() (string, time.Duration, error) {
		calls++
		return "t1", time.Hour, nil
	})
	assert.Nil(t, err)

	for i := 0; i < 5; i++ {
		token, err := tc.Get()
		assert.Nil(t, err)
		assert.Equal(t, "t1", token)
	}
	assert.Equal(t, 1, calls)
}

func TestGet_RefreshAfterTTL(t *testing.T) {
	calls := 0
	tc, _ := NewTokenCache(func() (string, time.Duration, error) {
		calls++
		return "t1", -time.Second, nil
	})
	_, _ = tc.Get()
	_, _ = tc.Get()
	assert.Equal(t, 2, calls)
}

func TestGet_RefreshAfterDrop(t *testing.T) {
	calls := 0
	tc, _ := NewTokenCache(func() (string, time.Duration, error) {
		calls++
		return "t1", time.Hour, nil
	})
	_, _ = tc.Get()
	tc.Drop()
	_, _ = tc.Get()
	assert.Equal(t, 2, calls)
}

func TestGet_Fails(t *testing.T) {
	tc, _ := NewTokenCache(func() (string, time.Duration, error) {
		return "", 0, errors.New("provider down")
	})
	_, err := tc.Get()
	assert.NotNil(t, err)
}

func TestNewStaticTokenCache(t *testing.T) {
	tc, err := NewStaticTokenCache("olia")
	assert.Nil(t, err)
	token, err := tc.Get()
	assert.Nil(t, err)
	assert.Equal(t, "olia", token)

	_, err = NewStaticTokenCache("")
	assert.NotNil(t, err)
}
