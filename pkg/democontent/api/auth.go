package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/tendant/demo-content/pkg/democontent"
)

const (
	// CapabilitiesClaim lists the capabilities granted to the token holder.
	CapabilitiesClaim = "caps"

	// NonceAction is the action admin form nonces are bound to.
	NonceAction = "demo_content_admin"

	// DefaultNonceTTL is how long an admin form stays submittable.
	DefaultNonceTTL = time.Hour

	actionClaim = "action"
)

// ErrInvalidNonce indicates a missing, expired or mismatched form nonce.
var ErrInvalidNonce = errors.New("invalid nonce")

// Auth issues and verifies admin tokens and form nonces. Nonces are signed
// with a key derived from the token secret so a nonce is never accepted as
// a bearer token.
type Auth struct {
	tokens   *jwtauth.JWTAuth
	nonces   *jwtauth.JWTAuth
	nonceTTL time.Duration
}

// NewAuth creates an HS256 Auth from secret.
func NewAuth(secret []byte, nonceTTL time.Duration) *Auth {
	if nonceTTL <= 0 {
		nonceTTL = DefaultNonceTTL
	}
	nonceKey := append([]byte("nonce:"), secret...)
	return &Auth{
		tokens:   jwtauth.New("HS256", secret, nil),
		nonces:   jwtauth.New("HS256", nonceKey, nil),
		nonceTTL: nonceTTL,
	}
}

// IssueToken mints an access token for subject holding capabilities.
func (a *Auth) IssueToken(subject string, capabilities []string, ttl time.Duration) (string, error) {
	claims := map[string]interface{}{
		"sub":             subject,
		CapabilitiesClaim: capabilities,
	}
	jwtauth.SetIssuedNow(claims)
	if ttl > 0 {
		jwtauth.SetExpiryIn(claims, ttl)
	}
	_, token, err := a.tokens.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// IssueNonce mints a form nonce bound to action and subject.
func (a *Auth) IssueNonce(action, subject string) (string, error) {
	claims := map[string]interface{}{
		"sub":       subject,
		actionClaim: action,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, a.nonceTTL)
	_, nonce, err := a.nonces.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign nonce: %w", err)
	}
	return nonce, nil
}

// VerifyNonce checks that nonce was issued for action and subject and has
// not expired.
func (a *Auth) VerifyNonce(nonce, action, subject string) error {
	if nonce == "" {
		return ErrInvalidNonce
	}
	token, err := jwtauth.VerifyToken(a.nonces, nonce)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidNonce, err)
	}
	if token.Subject() != subject {
		return ErrInvalidNonce
	}
	if v, ok := token.Get(actionClaim); !ok || v != action {
		return ErrInvalidNonce
	}
	return nil
}

// Verifier finds and verifies the access token in the Authorization header
// or the "jwt" cookie. Only routes that check a form nonce may use it.
func (a *Auth) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verifier(a.tokens)
}

// HeaderVerifier verifies the access token in the Authorization header and
// ignores cookies, so a browser session cannot drive the JSON API.
func (a *Auth) HeaderVerifier() func(http.Handler) http.Handler {
	return jwtauth.Verify(a.tokens, jwtauth.TokenFromHeader)
}

// Capabilities copies the verified token's capability claim into the
// request context, where democontent.ContextAuthorizer reads it.
func Capabilities(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := democontent.WithCapabilities(r.Context(), claimStrings(claims[CapabilitiesClaim])...)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func subjectFromRequest(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}

// claimStrings accepts the decoded form of a string list claim.
func claimStrings(v interface{}) []string {
	switch caps := v.(type) {
	case []string:
		return caps
	case []interface{}:
		out := make([]string, 0, len(caps))
		for _, c := range caps {
			if s, ok := c.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{caps}
	default:
		return nil
	}
}
