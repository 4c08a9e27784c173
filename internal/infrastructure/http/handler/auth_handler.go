package handler

import (
	"log/slog"
	"net/http"

	"github.com/mrops-br/restyle-storefront/internal/app/service"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/auth"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/http/response"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/http/view"
)

const defaultSignInCallback = "/account"

// AuthHandler serves the sign-in pages and the session endpoint
type AuthHandler struct {
	auth      *auth.Authenticator
	favorites *service.FavoritesService
	renderer  *view.Renderer
	logger    *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authenticator *auth.Authenticator,
	favoritesService *service.FavoritesService,
	renderer *view.Renderer,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:      authenticator,
		favorites: favoritesService,
		renderer:  renderer,
		logger:    logger,
	}
}

// SignInPage handles GET /sign-in
func (h *AuthHandler) SignInPage(w http.ResponseWriter, r *http.Request) {
	callback, ok := localTarget(r.URL.Query().Get("callbackUrl"))
	if !ok {
		callback = defaultSignInCallback
	}

	if auth.UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, callback, http.StatusSeeOther)
		return
	}

	render(w, r, h.renderer, h.logger, http.StatusOK, view.PageSignIn,
		newPage(r, h.favorites, "Sign In", view.SignInData{Callback: callback}))
}

// SignIn handles POST /sign-in
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	callback, ok := localTarget(r.PostFormValue("callbackUrl"))
	if !ok {
		callback = defaultSignInCallback
	}

	form := auth.SignInForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	if _, err := h.auth.SignIn(r.Context(), w, form); err != nil {
		render(w, r, h.renderer, h.logger, http.StatusUnauthorized, view.PageSignIn,
			newPage(r, h.favorites, "Sign In", view.SignInData{
				Email:    form.Email,
				Error:    "Invalid email or password",
				Callback: callback,
			}))
		return
	}

	http.Redirect(w, r, callback, http.StatusSeeOther)
}

// SignOut handles POST /sign-out
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.auth.SignOut(w)
	h.logger.InfoContext(r.Context(), "User signed out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Session handles GET /api/auth/session: {"user":{...}} or {}
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{}
	if user := auth.UserFromContext(r.Context()); user != nil {
		body["user"] = user
	}
	response.JSON(w, http.StatusOK, body)
}
