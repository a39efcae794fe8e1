// Package auth issues and reads the bearer tokens of the HTTP adapter. Users are
// identified by their chat id; signing in through the chat platform happens elsewhere.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/monegment/monegment/pkg/config"
)

// ErrUserUnauthorized is returned when a token carries no usable user id.
var ErrUserUnauthorized = errors.New("user unauthorized")

// ClaimUserID is the claim holding the chat id.
const ClaimUserID = "user_id"

type Service struct {
	cfg    *config.Jwt
	logger *slog.Logger
	now    func() time.Time
}

func New(cfg *config.Jwt, logger *slog.Logger) *Service {
	return &Service{cfg: cfg, logger: logger, now: time.Now}
}

// GenerateToken signs an HS256 token for userID valid for the configured expiry.
func (s *Service) GenerateToken(_ context.Context, userID int64) (string, error) {
	log := s.logger.With("userID", userID)
	log.Debug("GenerateToken called")
	if userID == 0 {
		return "", ErrUserUnauthorized
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		ClaimUserID: strconv.FormatInt(userID, 10),
		"iat":       s.now().Unix(),
		"exp":       s.now().Add(s.cfg.Expiry).Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		log.Error("GenerateToken failed", "error", err)
		return "", err
	}
	log.Info("GenerateToken successful")
	return signed, nil
}

// GetCurrentUserID reads the user id from a verified token. The claim may be a string or
// a JSON number.
func (s *Service) GetCurrentUserID(token *jwt.Token) (int64, error) {
	if token == nil {
		return 0, ErrUserUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrUserUnauthorized
	}
	var id int64
	switch v := claims[ClaimUserID].(type) {
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.logger.Warn("GetCurrentUserID failed", "error", err)
			return 0, ErrUserUnauthorized
		}
		id = parsed
	case float64:
		id = int64(v)
	}
	if id == 0 {
		return 0, ErrUserUnauthorized
	}
	return id, nil
}

// ParseToken verifies a signed token string. Used by the CLI and tests; HTTP requests
// are verified by the middleware.
func (s *Service) ParseToken(raw string) (int64, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, errors.Join(ErrUserUnauthorized, err)
	}
	return s.GetCurrentUserID(token)
}
