// Package auth implements the OAuth2 service-account bearer flow: a JWT
// assertion signed with the service credential's RSA key is exchanged at the
// token endpoint for a short-lived access token, which is cached until near
// expiry.
package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/creativeops/matrixsync/internal/common"
)

const grantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// assertionLifetime is the exp-iat window of the signed assertion, fixed by
// the token endpoint's contract.
const assertionLifetime = time.Hour

// Token is a short-lived bearer access token. ExpiresAt already has the
// issuer's safety margin subtracted.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// AuthError reports a failure to obtain an access token: missing credential,
// signing failure, or a token-endpoint rejection (Body carries the
// provider's error body in that case).
type AuthError struct {
	Op   string
	Body string
	Err  error
}

func (e *AuthError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("auth: %s: %v: %s", e.Op, e.Err, e.Body)
	}
	return fmt.Sprintf("auth: %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Issuer builds and signs JWT-bearer assertions and exchanges them for
// access tokens. It owns a single cache entry (one credential, one token)
// and is safe for concurrent use; near-simultaneous refreshes are collapsed
// into one request via singleflight.
type Issuer struct {
	cred         *Credential
	key          *rsa.PrivateKey
	tokenURL     string
	scope        string
	safetyMargin time.Duration
	httpClient   *http.Client
	now          func() time.Time

	mu     sync.Mutex
	cached *Token
	group  singleflight.Group
}

type Option func(*Issuer)

func WithTokenURL(u string) Option {
	return func(i *Issuer) { i.tokenURL = u }
}

func WithScope(scope string) Option {
	return func(i *Issuer) { i.scope = scope }
}

func WithSafetyMargin(d time.Duration) Option {
	return func(i *Issuer) { i.safetyMargin = d }
}

func WithHTTPClient(c *http.Client) Option {
	return func(i *Issuer) { i.httpClient = c }
}

// WithClock overrides the issuer's time source. Tests use this to exercise
// expiry without sleeping.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// New constructs an Issuer from a credential. The private key is parsed
// once, up front, so a malformed credential fails at construction rather
// than on first use.
func New(cred *Credential, opts ...Option) (*Issuer, error) {
	if cred == nil || cred.Email == "" || cred.PrivateKeyPEM == "" {
		return nil, &AuthError{Op: "credential", Err: common.ErrCredentialMissing}
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cred.PrivateKeyPEM))
	if err != nil {
		return nil, &AuthError{Op: "parse key", Err: err}
	}

	i := &Issuer{
		cred:         cred,
		key:          key,
		tokenURL:     "https://oauth2.googleapis.com/token",
		scope:        "https://www.googleapis.com/auth/spreadsheets",
		safetyMargin: time.Minute,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Token returns the cached access token if it is still valid, otherwise
// refreshes it from the token endpoint. No retry is performed here; callers
// decide retry policy.
func (i *Issuer) Token(ctx context.Context) (*Token, error) {
	i.mu.Lock()
	if i.cached != nil && i.now().Before(i.cached.ExpiresAt) {
		t := *i.cached
		i.mu.Unlock()
		return &t, nil
	}
	i.mu.Unlock()

	v, err, _ := i.group.Do("token", func() (any, error) {
		return i.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Token), nil
}

// Invalidate drops the cached token so the next Token call refreshes.
func (i *Issuer) Invalidate() {
	i.mu.Lock()
	i.cached = nil
	i.mu.Unlock()
}

func (i *Issuer) refresh(ctx context.Context) (*Token, error) {
	assertion, err := i.signAssertion()
	if err != nil {
		return nil, &AuthError{Op: "sign assertion", Err: err}
	}

	form := url.Values{
		"grant_type": {grantType},
		"assertion":  {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &AuthError{Op: "token request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, &AuthError{Op: "token request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &AuthError{Op: "token response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AuthError{
			Op:   "token exchange",
			Body: string(body),
			Err:  fmt.Errorf("token endpoint returned status %d", resp.StatusCode),
		}
	}

	var tr struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, &AuthError{Op: "token response", Err: err}
	}

	tok := &Token{
		Value:     tr.AccessToken,
		ExpiresAt: i.now().Add(time.Duration(tr.ExpiresIn)*time.Second - i.safetyMargin),
	}

	i.mu.Lock()
	i.cached = tok
	i.mu.Unlock()

	t := *tok
	return &t, nil
}

// signAssertion builds the RS256-signed JWT asserting the service identity
// to the token endpoint.
func (i *Issuer) signAssertion() (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"iss":   i.cred.Email,
		"scope": i.scope,
		"aud":   i.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(i.key)
}
