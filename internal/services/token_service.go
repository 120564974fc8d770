package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenInvalid = errors.New("token is invalid")

// TokenTTL — срок жизни сессионного токена.
const TokenTTL = 24 * time.Hour

type TokenService interface {
	Issue(email string) (string, error)
	// Verify сначала проверяет подпись и структуру, потом отдельно срок.
	// Подделанный токен не доходит до проверки срока.
	Verify(token string) (email string, expired bool, err error)
}

type tokenService struct {
	key    []byte
	parser *jwt.Parser
	now    func() time.Time
}

func NewTokenService(key []byte) TokenService {
	return &tokenService{
		key: key,
		parser: jwt.NewParser(
			// принимаем только HMAC (HS256 и т.п.)
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			// срок проверяем сами, отдельным шагом
			jwt.WithoutClaimsValidation(),
		),
		now: time.Now,
	}
}

func (s *tokenService) Issue(email string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

func (s *tokenService) Verify(tokenStr string) (string, bool, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := s.parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	})
	if err != nil || !token.Valid {
		return "", false, ErrTokenInvalid
	}

	expired := claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(s.now())
	return claims.Subject, expired, nil
}
