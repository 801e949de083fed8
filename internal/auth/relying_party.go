package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	httphelper "github.com/zitadel/oidc/v3/pkg/http"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/ensembleops/ensemble/internal/config"
)

const redirectCookieName = "ensemble.redirect_uri"

// RelyingParty wraps the zitadel/oidc relying party for the SSO login flow.
type RelyingParty struct {
	rp     rp.RelyingParty
	claims ClaimMapping
}

// NewRelyingParty discovers the issuer and configures PKCE. The state and
// PKCE cookies are protected with the session keys.
func NewRelyingParty(ctx context.Context, cfg config.OIDCConfig, session config.SessionConfig, secure bool) (*RelyingParty, error) {
	var cookieOpts []httphelper.CookieHandlerOpt
	if !secure {
		cookieOpts = append(cookieOpts, httphelper.WithUnsecure())
	}
	cookieHandler := httphelper.NewCookieHandler([]byte(session.HashKey), []byte(session.BlockKey), cookieOpts...)

	options := []rp.Option{
		rp.WithCookieHandler(cookieHandler),
		rp.WithVerifierOpts(rp.WithIssuedAtMaxAge(30 * time.Second)),
		rp.WithPKCE(cookieHandler),
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx, cfg.Issuer, cfg.ClientID, cfg.ClientSecret, cfg.RedirectURI,
		cfg.Scopes, options...)
	if err != nil {
		return nil, fmt.Errorf("create OIDC relying party: %w", err)
	}

	return &RelyingParty{
		rp: relyingParty,
		claims: ClaimMapping{
			GroupsField: cfg.GroupsClaimField,
			GroupsPath:  cfg.GroupsClaimPath,
			AdsIDField:  cfg.AdsIDClaimField,
		},
	}, nil
}

// LoginHandler redirects to the identity provider.
func (r *RelyingParty) LoginHandler() http.Handler {
	return rp.AuthURLHandler(func() string {
		state, err := GenerateNonce()
		if err != nil {
			return ""
		}
		return state
	}, r.rp)
}

// IdentityCallback receives the identity asserted at the end of a
// successful code exchange.
type IdentityCallback func(w http.ResponseWriter, req *http.Request, id *Identity, err error)

// CallbackHandler exchanges the code, verifies the ID token and hands the
// extracted identity to fn.
func (r *RelyingParty) CallbackHandler(fn IdentityCallback) http.Handler {
	return rp.CodeExchangeHandler(func(w http.ResponseWriter, req *http.Request, tokens *oidc.Tokens[*oidc.IDTokenClaims], _ string, _ rp.RelyingParty) {
		claims, err := DecodeIDTokenClaims(tokens.IDToken)
		if err != nil {
			fn(w, req, nil, err)
			return
		}
		id, err := IdentityFromClaims(claims, r.claims)
		fn(w, req, id, err)
	}, r.rp)
}

// GenerateNonce returns a random URL-safe string.
func GenerateNonce() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SetRedirectCookie remembers where to send the user after the callback.
func SetRedirectCookie(w http.ResponseWriter, redirectURI string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     redirectCookieName,
		Value:    redirectURI,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopRedirectCookie reads and clears the redirect cookie. Only local paths
// are honored; anything else yields "/".
func PopRedirectCookie(w http.ResponseWriter, r *http.Request, secure bool) string {
	cookie, err := r.Cookie(redirectCookieName)
	if err != nil {
		return "/"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     redirectCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return safeRedirect(cookie.Value)
}

func safeRedirect(uri string) string {
	if len(uri) == 0 || uri[0] != '/' || (len(uri) > 1 && (uri[1] == '/' || uri[1] == '\\')) {
		return "/"
	}
	return uri
}
