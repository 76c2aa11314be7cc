package roomserver

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func newTestIssuer() *TokenIssuer {
	return &TokenIssuer{apiKey: "key1", apiSecret: "secret1", ttl: 2 * time.Hour}
}

func parseGrant(t *testing.T, token string, opts ...jwt.ParserOption) (*GrantClaims, error) {
	t.Helper()
	claims := &GrantClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret1"), nil
	}, opts...)
	return claims, err
}

func TestIssue(t *testing.T) {
	token, err := newTestIssuer().Issue("interview_app1_1", "candidate_1", 0)
	assert.Nil(t, err)

	claims, err := parseGrant(t, token)
	assert.Nil(t, err)
	assert.Equal(t, "interview_app1_1", claims.Video.Room)
	assert.True(t, claims.Video.RoomJoin)
	assert.Equal(t, "candidate_1", claims.Subject)
	assert.Equal(t, "key1", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestIssue_DefaultTTL(t *testing.T) {
	token, err := newTestIssuer().Issue("r1", "p1", 0)
	assert.Nil(t, err)
	claims, err := parseGrant(t, token)
	assert.Nil(t, err)
	left := time.Until(claims.ExpiresAt.Time)
	assert.InDelta(t, (2 * time.Hour).Seconds(), left.Seconds(), 60)
}

func TestIssue_ExpiresAfterTTL(t *testing.T) {
	token, err := newTestIssuer().Issue("r1", "p1", 0)
	assert.Nil(t, err)

	_, err = parseGrant(t, token, jwt.WithTimeFunc(func() time.Time {
		return time.Now().Add(2*time.Hour + time.Minute)
	}))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = parseGrant(t, token, jwt.WithTimeFunc(func() time.Time {
		return time.Now().Add(2*time.Hour - time.Minute)
	}))
	assert.Nil(t, err)
}

func TestIssue_ScopedToOneRoom(t *testing.T) {
	issuer := newTestIssuer()
	t1, err := issuer.Issue("r1", "p1", 0)
	assert.Nil(t, err)
	t2, err := issuer.Issue("r2", "p1", 0)
	assert.Nil(t, err)
	c1, _ := parseGrant(t, t1)
	c2, _ := parseGrant(t, t2)
	assert.Equal(t, "r1", c1.Video.Room)
	assert.Equal(t, "r2", c2.Video.Room)
	assert.NotEqual(t, c1.ID, c2.ID)
}

func TestIssue_Fails(t *testing.T) {
	issuer := newTestIssuer()
	_, err := issuer.Issue("", "p1", 0)
	assert.NotNil(t, err)
	_, err = issuer.Issue("r1", "", 0)
	assert.NotNil(t, err)
}

func TestIssue_WrongSecretRejected(t *testing.T) {
	issuer := &TokenIssuer{apiKey: "key1", apiSecret: "other", ttl: time.Hour}
	token, err := issuer.Issue("r1", "p1", 0)
	assert.Nil(t, err)
	_, err = parseGrant(t, token)
	assert.NotNil(t, err)
}
