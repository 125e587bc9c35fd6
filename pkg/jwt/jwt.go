package jwt

import (
	"errors"
	"fmt"
	"time"

	"clinic-booking/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Principal identifies who a token was issued to.
type Principal struct {
	Role     string
	Username string
	DoctorID int64 // zero for administrators
}

// Subject is the session key owner, e.g. "admin:root" or "doctor:3".
func (p Principal) Subject() string {
	if p.DoctorID != 0 {
		return fmt.Sprintf("%s:%d", p.Role, p.DoctorID)
	}
	return fmt.Sprintf("%s:%s", p.Role, p.Username)
}

type Claims struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	DoctorID int64  `json:"doctor_id,omitempty"`
	TokenID  string `json:"token_id"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() Principal {
	return Principal{Role: c.Role, Username: c.Username, DoctorID: c.DoctorID}
}

type JWTService struct {
	config config.JWTConfig
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{config: cfg}
}

// GenerateAccessToken signs an HS256 token and returns it with its id.
func (s *JWTService) GenerateAccessToken(p Principal) (string, string, error) {
	tokenID := uuid.New().String()
	now := time.Now()
	claims := Claims{
		Role:     p.Role,
		Username: p.Username,
		DoctorID: p.DoctorID,
		TokenID:  tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Subject(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", "", err
	}

	return signedToken, tokenID, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *JWTService) GetAccessExpiry() time.Duration {
	return s.config.AccessExpiry
}
