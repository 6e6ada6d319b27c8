package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID   string `json:"uid"`
	RoleName string `json:"role"`
	Locale   string `json:"locale,omitempty"`
	jwt.RegisteredClaims
}

// UserContext is the authenticated caller attached to a request.
type UserContext struct {
	UserID   string
	RoleName string
	Locale   string
}

func (u UserContext) HasRole(roles ...string) bool {
	for _, role := range roles {
		if u.RoleName == role {
			return true
		}
	}
	return false
}

// CanManage reports whether the caller may decide on requests of other users.
func (u UserContext) CanManage() bool {
	return u.HasRole(RoleManager, RoleHR)
}

func ValidRole(role string) bool {
	switch role {
	case RoleEmployee, RoleManager, RoleHR:
		return true
	default:
		return false
	}
}

func GenerateToken(secret string, claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" || !ValidRole(claims.RoleName) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
