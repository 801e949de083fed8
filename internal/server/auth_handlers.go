package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ensembleops/ensemble/internal/auth"
)

// ssoLogin starts the authorization code flow. An optional redirect_uri
// query parameter (local path) is honored after the callback.
func (h *handlers) ssoLogin(w http.ResponseWriter, r *http.Request) {
	if redirectURI := r.URL.Query().Get("redirect_uri"); redirectURI != "" {
		auth.SetRedirectCookie(w, redirectURI, h.opts.SecureCookies)
	}
	h.opts.RelyingParty.LoginHandler().ServeHTTP(w, r)
}

// ssoCallback turns the verified identity into a session cookie.
func (h *handlers) ssoCallback(w http.ResponseWriter, r *http.Request, id *auth.Identity, err error) {
	if err != nil {
		h.logger.Warn("SSO callback: unusable identity", zap.Error(err))
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: auth.ErrUnauthenticated.Error()})
		return
	}

	sess, err := h.opts.Login.Login(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.opts.Sessions.Issue(r.Context(), w, sess); err != nil {
		h.fail(w, r, err)
		return
	}

	http.Redirect(w, r, auth.PopRedirectCookie(w, r, h.opts.SecureCookies), http.StatusFound)
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.opts.Sessions.Clear(w, r); err != nil {
		h.logger.Warn("logout: session not deleted", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) whoami(w http.ResponseWriter, r *http.Request) {
	sc, err := auth.RequireAuthenticated(session(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc.Session)
}
