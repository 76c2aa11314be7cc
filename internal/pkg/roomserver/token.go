package roomserver

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	apperr "github.com/rolevate/roomgo/internal/pkg/err"
)

const defaultTokenDurationHours = 2

//VideoGrant is the room server's capability claim.
//One grant opens exactly one room for exactly one identity
type VideoGrant struct {
	Room         string `json:"room"`
	RoomJoin     bool   `json:"roomJoin"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

//GrantClaims is the signed token payload the room server validates on its own
type GrantClaims struct {
	Video VideoGrant `json:"video"`
	jwt.RegisteredClaims
}

// TokenIssuer mints signed time-bounded room join grants.
// The broker never validates media access itself - the room server checks
// the signature with the shared secret
type TokenIssuer struct {
	apiKey    string
	apiSecret string
	ttl       time.Duration
}

//NewTokenIssuer creates TokenIssuer from config.
//Missing credentials stop the service at startup
func NewTokenIssuer() (*TokenIssuer, error) {
	key := cmdapp.Config.GetString("roomServer.key")
	secret := cmdapp.Config.GetString("roomServer.secret")
	if key == "" || secret == "" {
		return nil, errors.Wrap(apperr.ErrConfiguration, "No roomServer.key or roomServer.secret setting")
	}
	hours := cmdapp.Config.GetInt("roomServer.tokenDurationHours")
	if hours <= 0 {
		hours = defaultTokenDurationHours
	}
	return &TokenIssuer{apiKey: key, apiSecret: secret, ttl: time.Duration(hours) * time.Hour}, nil
}

//TTL returns the configured grant lifetime
func (ti *TokenIssuer) TTL() time.Duration {
	return ti.ttl
}

//Issue mints a join grant for one room and one participant identity.
//Non-positive ttl falls back to the configured default
func (ti *TokenIssuer) Issue(roomName, identity string, ttl time.Duration) (string, error) {
	if roomName == "" {
		return "", apperr.Validationf("No room name")
	}
	if identity == "" {
		return "", apperr.Validationf("No participant identity")
	}
	if ttl <= 0 {
		ttl = ti.ttl
	}
	now := time.Now()
	claims := GrantClaims{
		Video: VideoGrant{Room: roomName, RoomJoin: true, CanPublish: true, CanSubscribe: true},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ti.apiKey,
			Subject:   identity,
			ID:        uuid.New().String(),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	res, err := token.SignedString([]byte(ti.apiSecret))
	if err != nil {
		return "", errors.Wrap(err, "Can't sign token")
	}
	return res, nil
}
