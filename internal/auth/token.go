package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ExtractTokenFromRequest extracts the bearer token from the Authorization header
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}
	return parts[1], nil
}

// SubjectFromJWT reads the sub claim without checking the signature. It is only
// meant for attributing anonymous-mode requests in the access log.
func SubjectFromJWT(tokenString string) (string, error) {
	if tokenString == "" {
		return "", errors.New("empty token")
	}

	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("subject claim not found in token")
	}
	return sub, nil
}

// RequestSubject returns the verified subject if the guard ran, otherwise the
// unverified subject of any bearer token, otherwise "anonymous".
func RequestSubject(r *http.Request) string {
	if sub := Subject(r.Context()); sub != "" {
		return sub
	}
	if raw, err := ExtractTokenFromRequest(r); err == nil {
		if sub, err := SubjectFromJWT(raw); err == nil {
			return sub + " (unverified)"
		}
	}
	return "anonymous"
}
