package middleware

import (
	"net/http"
	"net/url"

	"github.com/mrops-br/restyle-storefront/internal/infrastructure/auth"
)

// Session attaches the signed-in user, if any, to the request context
func Session(authenticator *auth.Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authenticator.Authenticate(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), user)))
		})
	}
}

// RequireSession redirects anonymous visitors to the sign-in page with the
// current location as callback.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.UserFromContext(r.Context()) == nil {
			target := "/sign-in?callbackUrl=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
