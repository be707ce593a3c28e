package auth_test

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ms-fyyur/internal/auth"
	"ms-fyyur/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const issuer = "https://id.fyyur.test"

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func validClaims(sub string) jwt.MapClaims {
	return jwt.MapClaims{
		"iss": issuer,
		"sub": sub,
		"aud": "fyyur",
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
}

func TestExtractTokenFromRequest(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", false},
		{"bearer abc", "abc", false},
		{"", "", true},
		{"Basic dXNlcjpwYXNz", "", true},
		{"Bearer", "", true},
		{"Bearer a b", "", true},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		got, err := auth.ExtractTokenFromRequest(r)
		if tt.wantErr {
			assert.Error(t, err, tt.header)
			continue
		}
		require.NoError(t, err, tt.header)
		assert.Equal(t, tt.want, got)
	}
}

func TestSubjectFromJWT(t *testing.T) {
	token := signToken(t, newKey(t), validClaims("auth0|42"))

	sub, err := auth.SubjectFromJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "auth0|42", sub)

	_, err = auth.SubjectFromJWT("")
	assert.Error(t, err)
	_, err = auth.SubjectFromJWT("not-a-jwt")
	assert.Error(t, err)

	noSub := signToken(t, newKey(t), jwt.MapClaims{"iss": issuer})
	_, err = auth.SubjectFromJWT(noSub)
	assert.Error(t, err)
}

func TestRequestSubject(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/venues/create", nil)
	assert.Equal(t, "anonymous", auth.RequestSubject(r))

	r.Header.Set("Authorization", "Bearer "+signToken(t, newKey(t), validClaims("manager")))
	assert.Equal(t, "manager (unverified)", auth.RequestSubject(r))

	r = r.WithContext(auth.WithSubject(r.Context(), "verified-manager"))
	assert.Equal(t, "verified-manager", auth.RequestSubject(r))
}

func TestDisabledGuardPassesThrough(t *testing.T) {
	guard, err := auth.NewGuard(context.Background(), "", logger.Discard())
	require.NoError(t, err)
	assert.False(t, guard.Enabled())

	called := false
	h := guard.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Empty(t, auth.Subject(r.Context()))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/venues/1", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardVerifiesTokens(t *testing.T) {
	key := newKey(t)
	verifier := oidc.NewVerifier(issuer, &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{key.Public()}},
		&oidc.Config{SkipClientIDCheck: true})
	guard := auth.NewGuardWithVerifier(verifier, logger.Discard())
	require.True(t, guard.Enabled())

	var subject string
	h := guard.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = auth.Subject(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(header string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/artists/create", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	rec := serve("Bearer " + signToken(t, key, validClaims("auth0|7")))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "auth0|7", subject)

	assert.Equal(t, http.StatusUnauthorized, serve("").Code)
	assert.Equal(t, http.StatusUnauthorized, serve("Bearer "+signToken(t, newKey(t), validClaims("intruder"))).Code)

	expired := validClaims("auth0|7")
	expired["exp"] = time.Now().Add(-time.Hour).Unix()
	assert.Equal(t, http.StatusUnauthorized, serve("Bearer "+signToken(t, key, expired)).Code)

	foreign := validClaims("auth0|7")
	foreign["iss"] = "https://elsewhere.test"
	assert.Equal(t, http.StatusUnauthorized, serve("Bearer "+signToken(t, key, foreign)).Code)
}

func TestGuardOnDenied(t *testing.T) {
	guard := auth.NewGuardWithVerifier(oidc.NewVerifier(issuer, &oidc.StaticKeySet{}, &oidc.Config{SkipClientIDCheck: true}), logger.Discard())
	guard.OnDenied = func(w http.ResponseWriter, r *http.Request, reason string) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}

	rec := httptest.NewRecorder()
	guard.Middleware(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/shows/create", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}
