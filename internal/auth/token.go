package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/w0nsdoof/diplomatch/internal/common"
	"github.com/w0nsdoof/diplomatch/model"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Claims struct {
	Role               model.Role `json:"role"`
	IsProfileCompleted bool       `json:"is_profile_completed"`
	TokenType          string     `json:"token_type"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// TokenService issues and validates the HS256 access/refresh pairs used by
// both the HTTP API and the socket handshake.
type TokenService struct {
	secret         []byte
	issuer         string
	accessExpires  time.Duration
	refreshExpires time.Duration
	clock          common.Clock
}

func NewTokenService(secret, issuer string, accessExpires, refreshExpires time.Duration, clock common.Clock) *TokenService {
	return &TokenService{
		secret:         []byte(secret),
		issuer:         issuer,
		accessExpires:  accessExpires,
		refreshExpires: refreshExpires,
		clock:          clock,
	}
}

func (s *TokenService) sign(user *model.User, tokenType string, expiresIn time.Duration) (string, error) {
	now := s.clock.Now()
	claims := Claims{
		Role:               user.Role,
		IsProfileCompleted: user.IsProfileCompleted,
		TokenType:          tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// IssuePair mints a fresh access/refresh token pair for user.
func (s *TokenService) IssuePair(user *model.User) (*TokenPair, error) {
	access, err := s.sign(user, TokenTypeAccess, s.accessExpires)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user, TokenTypeRefresh, s.refreshExpires)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) verify(tokenStr string, tokenType string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}
	if !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// VerifyAccess validates signature and expiry of an access token.
func (s *TokenService) VerifyAccess(tokenStr string) (*Claims, error) {
	return s.verify(tokenStr, TokenTypeAccess)
}

// VerifyRefresh validates signature and expiry of a refresh token.
func (s *TokenService) VerifyRefresh(tokenStr string) (*Claims, error) {
	return s.verify(tokenStr, TokenTypeRefresh)
}
