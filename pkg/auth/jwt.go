package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	PurposeAccess  = "access"
	PurposeConfirm = "confirm"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongPurpose = errors.New("token issued for a different purpose")
)

// Claims are the registered claims plus the identity's email and the
// token purpose. The session id travels as the standard jti.
type Claims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// IdentityID parses the subject claim.
func (c *Claims) IdentityID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

type JWTService interface {
	GenerateAccessToken(identityID uuid.UUID, email, sessionID string, expiresAt time.Time) (string, error)
	GenerateConfirmToken(identityID uuid.UUID, email string, expiresAt time.Time) (string, error)
	ValidateToken(token, purpose string) (*Claims, error)
	// ParseIgnoringExpiry checks the signature but accepts expired tokens.
	ParseIgnoringExpiry(token, purpose string) (*Claims, error)
}

type jwtService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTService(secret, issuer string) JWTService {
	return &jwtService{secret: []byte(secret), issuer: issuer, now: time.Now}
}

func (s *jwtService) sign(identityID uuid.UUID, email, purpose, jti string, expiresAt time.Time) (string, error) {
	now := s.now()
	claims := Claims{
		Email:   email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   identityID.String(),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (s *jwtService) GenerateAccessToken(identityID uuid.UUID, email, sessionID string, expiresAt time.Time) (string, error) {
	return s.sign(identityID, email, PurposeAccess, sessionID, expiresAt)
}

func (s *jwtService) GenerateConfirmToken(identityID uuid.UUID, email string, expiresAt time.Time) (string, error) {
	return s.sign(identityID, email, PurposeConfirm, uuid.NewString(), expiresAt)
}

func (s *jwtService) ValidateToken(token, purpose string) (*Claims, error) {
	return s.parse(token, purpose)
}

func (s *jwtService) ParseIgnoringExpiry(token, purpose string) (*Claims, error) {
	return s.parse(token, purpose, jwt.WithoutClaimsValidation())
}

func (s *jwtService) parse(token, purpose string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	if _, err := claims.IdentityID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return &claims, nil
}
