package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/creativeops/matrixsync/internal/common"
)

func testCredential(t *testing.T) (*Credential, *rsa.PublicKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	return &Credential{
		Email:         "svc@example.iam.gserviceaccount.com",
		PrivateKeyPEM: string(pemBytes),
	}, &key.PublicKey
}

func TestNew_MissingCredential(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	require.ErrorIs(t, err, common.ErrCredentialMissing)

	_, err = New(&Credential{Email: "svc@example.com"})
	require.ErrorIs(t, err, common.ErrCredentialMissing)
}

func TestNew_BadKey(t *testing.T) {
	t.Parallel()

	_, err := New(&Credential{Email: "svc@example.com", PrivateKeyPEM: "not a pem"})
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestToken_ExchangeAndClaims(t *testing.T) {
	t.Parallel()

	cred, pub := testCredential(t)

	var assertion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, grantType, r.Form.Get("grant_type"))
		assertion = r.Form.Get("assertion")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
	}))
	defer srv.Close()

	issuer, err := New(cred, WithTokenURL(srv.URL), WithScope("scope-x"))
	require.NoError(t, err)

	tok, err := issuer.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok.Value)

	parsed, err := jwt.Parse(assertion, func(t *jwt.Token) (any, error) {
		return pub, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	require.NoError(t, err)

	claims := parsed.Claims.(jwt.MapClaims)
	require.Equal(t, cred.Email, claims["iss"])
	require.Equal(t, "scope-x", claims["scope"])
	require.Equal(t, srv.URL, claims["aud"])
}

func TestToken_CacheHit(t *testing.T) {
	t.Parallel()

	cred, _ := testCredential(t)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
	}))
	defer srv.Close()

	issuer, err := New(cred, WithTokenURL(srv.URL))
	require.NoError(t, err)

	first, err := issuer.Token(context.Background())
	require.NoError(t, err)
	second, err := issuer.Token(context.Background())
	require.NoError(t, err)

	require.Equal(t, first.Value, second.Value)
	require.Equal(t, int32(1), calls.Load())
}

func TestToken_RefreshAfterExpiry(t *testing.T) {
	t.Parallel()

	cred, _ := testCredential(t)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
	}))
	defer srv.Close()

	now := time.Now()
	clock := func() time.Time { return now }

	issuer, err := New(cred, WithTokenURL(srv.URL), WithClock(func() time.Time { return clock() }))
	require.NoError(t, err)

	_, err = issuer.Token(context.Background())
	require.NoError(t, err)

	// Jump past expiry minus the safety margin.
	clock = func() time.Time { return now.Add(3600 * time.Second) }

	_, err = issuer.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
}

func TestToken_EndpointRejection(t *testing.T) {
	t.Parallel()

	cred, _ := testCredential(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	issuer, err := New(cred, WithTokenURL(srv.URL))
	require.NoError(t, err)

	_, err = issuer.Token(context.Background())
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Contains(t, authErr.Body, "invalid_grant")
}
