package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity 鉴权后写入 gin.Context 的调用者身份
type Identity struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	CitizenID string `json:"citizenId"`
	Role      string `json:"role"`
}

type Claims struct {
	UID       string `json:"uid"`
	StudentID string `json:"sid"`
	CitizenID string `json:"cid"`
	Role      string `json:"role"` // FRESHMAN / STAFF
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{ID: c.UID, StudentID: c.StudentID, CitizenID: c.CitizenID, Role: c.Role}
}

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
	ErrNoSecret     = errors.New("jwt secret is empty")
)

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Issue 为已登录的新生/工作人员签发访问令牌
func (j *JWTer) Issue(id Identity) (string, error) {
	if len(j.Secret) == 0 {
		return "", ErrNoSecret
	}
	if id.ID == "" {
		return "", fmt.Errorf("issue token: %w", ErrTokenInvalid)
	}
	now := time.Now()
	claims := Claims{
		UID:       id.ID,
		StudentID: id.StudentID,
		CitizenID: id.CitizenID,
		Role:      id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// Parse 过期单独返回 ErrTokenExpired，其余一律 ErrTokenInvalid
func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return j.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.Issuer),
		jwt.WithLeeway(60*time.Second),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.UID == "" || c.Subject != c.UID {
		return nil, ErrTokenInvalid
	}
	return c, nil
}
