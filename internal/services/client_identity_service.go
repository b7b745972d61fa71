package services

import (
	"context"
	"time"

	poll_errors "live-poll/pkg/errors"
	"live-poll/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ClientIdentityService issues the per-browser client identifier. The
// token is signed so a participant cannot answer on behalf of another
// client id; it carries no expiry.
type ClientIdentityService struct {
	secret []byte
	now    func() time.Time
}

type ClientClaims struct {
	ClientID string `json:"cid"`
	jwt.RegisteredClaims
}

type ClientIdentity struct {
	ClientID string
	Token    string
}

func NewClientIdentityService(secret string) *ClientIdentityService {
	return &ClientIdentityService{secret: []byte(secret), now: time.Now}
}

func (s *ClientIdentityService) Issue() (ClientIdentity, error) {
	clientID := uuid.NewString()
	claims := ClientClaims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  clientID,
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return ClientIdentity{}, err
	}
	return ClientIdentity{ClientID: clientID, Token: signed}, nil
}

// Parse validates the token and returns the client id it was issued for.
func (s *ClientIdentityService) Parse(tokenString string) (string, error) {
	if tokenString == "" {
		return "", poll_errors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &ClientClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, poll_errors.ErrUnauthorized
		}
		return s.secret, nil
	})
	if err != nil {
		return "", poll_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*ClientClaims)
	if !ok || !parsed.Valid || claims.ClientID == "" || claims.Subject != claims.ClientID {
		return "", poll_errors.ErrUnauthorized
	}
	if _, err := uuid.Parse(claims.ClientID); err != nil {
		return "", poll_errors.ErrUnauthorized
	}
	return claims.ClientID, nil
}

// WithClientContext stores the client id under the logger's key so request
// logs carry it.
func WithClientContext(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, logger.ClientIdKey, clientID)
}

func ClientIDFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(logger.ClientIdKey)
	if value == nil {
		return "", false
	}
	clientID, ok := value.(string)
	return clientID, ok && clientID != ""
}
