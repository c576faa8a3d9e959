// Package auth issues and verifies the HS256 JWTs used by the HTTP API.
// Access and refresh tokens are signed with different secrets, so a token
// of one kind never verifies as the other.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/containerhub/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const jtiSize = 16

// GenerateToken signs a token whose subject is userID and which expires
// after ttl.
func GenerateToken(userID int64, secretKey []byte, ttl time.Duration) (string, error) {
	jti, err := common.MakeRandHexString(jtiSize)
	if err != nil {
		return "", fmt.Errorf("token id: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        jti,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify checks the signature and expiry of tokenString and returns the
// user id carried in its subject.
//
// Errors:
//   - common.ErrTokenExpired: the token is past its expiry.
//   - common.ErrMalformedClaims: the subject is missing or not a user id.
//   - common.ErrInvalidToken: anything else (bad signature, non-HMAC alg, garbage).
func Verify(tokenString string, secretKey []byte) (int64, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secretKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, common.ErrTokenExpired
		}
		return 0, common.ErrInvalidToken
	}

	if !token.Valid {
		return 0, common.ErrInvalidToken
	}

	if claims.Subject == "" {
		return 0, common.ErrMalformedClaims
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, common.ErrMalformedClaims
	}

	return userID, nil
}
