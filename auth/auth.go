// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token format")
	ErrExpiredToken = errors.New("token expired")
)

// Identity is the verified caller of a request
type Identity struct {
	UserID   string `json:"userId"`
	UserType string `json:"userType"`
}

// NewID returns a random UUID string for database records
func NewID() string {
	return uuid.New().String()
}

// IssueToken creates a signed bearer token for a user.
// Format: base64url(userID|userType|expiryUnix) "." base64url(HMAC-SHA256)
func IssueToken(id Identity, secret string, ttl time.Duration, now time.Time) (string, error) {
	if id.UserID == "" {
		return "", errors.New("user id is required")
	}
	if strings.Contains(id.UserID, "|") || strings.Contains(id.UserType, "|") {
		return "", errors.New("user id and type must not contain '|'")
	}

	expiry := now.Add(ttl).Unix()
	payload := fmt.Sprintf("%s|%s|%d", id.UserID, id.UserType, expiry)
	encoded := encode([]byte(payload))

	return encoded + "." + sign(encoded, secret), nil
}

// VerifyToken checks the signature and expiry of a bearer token
func VerifyToken(token, secret string, now time.Time) (Identity, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || sig == "" {
		return Identity{}, ErrInvalidToken
	}

	expected := sign(encoded, secret)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return Identity{}, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	parts := strings.Split(string(payload), "|")
	if len(parts) != 3 || parts[0] == "" {
		return Identity{}, ErrInvalidToken
	}

	expiry, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	if now.Unix() >= expiry {
		return Identity{}, ErrExpiredToken
	}

	return Identity{UserID: parts[0], UserType: parts[1]}, nil
}

// BearerToken extracts the token from an Authorization header
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

func sign(encoded, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(encoded))
	return encode(h.Sum(nil))
}

// encode uses URL-safe base64 without padding for cleaner tokens
func encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
