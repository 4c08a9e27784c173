package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrops-br/restyle-storefront/internal/app/dto"
	"github.com/mrops-br/restyle-storefront/internal/app/favorites"
	"github.com/mrops-br/restyle-storefront/internal/app/service"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/auth"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/config"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/http/handler"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/http/view"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/repository/file"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/telemetry"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: "0"},
		OTLP:   config.OTLPConfig{ServiceName: "storefront-test", Environment: "test"},
		Log:    config.LogConfig{Level: "error"},
		Favorites: config.FavoritesConfig{
			Persist:      true,
			CookieMaxAge: time.Hour,
		},
		Auth: config.AuthConfig{
			Secret:       "test_secret_that_is_at_least_32_characters",
			DemoEmail:    "user@example.com",
			DemoPassword: "password",
			DemoName:     "Demo User",
			SessionTTL:   time.Hour,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	telem := telemetry.NewNoOpTelemetry(cfg)
	tracer := telem.TracerProvider.Tracer(InstrumentationName)
	meter := telem.MeterProvider.Meter(InstrumentationName)
	logger := telem.Logger

	repo, err := file.NewProductRepository(cfg.Catalog.Path, tracer, logger)
	require.NoError(t, err)

	authenticator, err := auth.NewAuthenticator(&cfg.Auth, false, logger)
	require.NoError(t, err)

	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	productService := service.NewProductService(repo, tracer, meter, logger)
	favoritesService := service.NewFavoritesService(repo, tracer, meter, logger)

	server := NewServer(cfg, Handlers{
		Pages:     handler.NewPageHandler(productService, favoritesService, renderer, logger),
		Products:  handler.NewProductHandler(productService, logger),
		Favorites: handler.NewFavoritesHandler(favoritesService, logger),
		Auth:      handler.NewAuthHandler(authenticator, favoritesService, renderer, logger),
	}, authenticator, telem)

	return server.Handler()
}

type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, h http.Handler) *client {
	return &client{t: t, handler: h, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *client) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) api(method, target string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(method, target, nil))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestServer_Health(t *testing.T) {
	c := newClient(t, newTestServer(t, testConfig()))

	rec := c.get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestServer_ToggleFavoriteSurvivesRequests(t *testing.T) {
	c := newClient(t, newTestServer(t, testConfig()))

	rec := c.postForm("/favorites/10/toggle", url.Values{"return": {"/products/10"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/products/10", rec.Header().Get("Location"))
	require.Contains(t, c.cookies, favorites.StorageKey)

	page := c.get("/products/10")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Camel Wool Coat")
	assert.Contains(t, page.Body.String(), `aria-pressed="true"`)

	list := decode[dto.FavoritesResponse](t, c.get("/api/favorites"))
	assert.Equal(t, []int{10}, list.Favorites)

	favs := c.get("/favorites")
	assert.Contains(t, favs.Body.String(), "Camel Wool Coat")

	// toggling again removes it
	c.postForm("/favorites/10/toggle", nil)
	list = decode[dto.FavoritesResponse](t, c.get("/api/favorites"))
	assert.Empty(t, list.Favorites)
}

func TestServer_ToggleRedirectStaysOnSite(t *testing.T) {
	c := newClient(t, newTestServer(t, testConfig()))

	rec := c.postForm("/favorites/3/toggle", url.Values{"return": {"//evil.example/steal"}})
	assert.Equal(t, "/", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodPost, "/favorites/3/toggle", nil)
	req.Header.Set("Referer", "http://example.com/search?q=boots")
	rec = c.do(req)
	assert.Equal(t, "/search?q=boots", rec.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodPost, "/favorites/3/toggle", nil)
	req.Header.Set("Referer", "http://evil.example/search")
	rec = c.do(req)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestServer_ToggleUnknownProduct(t *testing.T) {
	c := newClient(t, newTestServer(t, testConfig()))

	rec := c.postForm("/favorites/9999/toggle", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, c.cookies, favorites.StorageKey)
}

func TestServer_StaleFavoritesCanBeRemoved(t *testing.T) {
	c := newClient(t, newTestServer(t, testConfig()))
	stale := &http.Cookie{Name: favorites.StorageKey, Value: "WzMsOTk5OV0"} // [3,9999]
	c.cookies[favorites.StorageKey] = stale

	// the badge only counts ids still in the catalog
	page := c.get("/favorites")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "&#9825; 1<")

	rec := c.api(http.MethodDelete, "/api/favorites/9999")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.ToggleFavoriteResponse{ID: 9999, Favorite: false, Favorites: []int{3}},
		decode[dto.ToggleFavoriteResponse](t, rec))
	list := decode[dto.FavoritesResponse](t, c.get("/api/favorites"))
	assert.Equal(t, []int{3}, list.Favorites)

	c.cookies[favorites.StorageKey] = stale
	rec = c.postForm("/favorites/9999/toggle", url.Values{"return": {"/favorites"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	list = decode[dto.FavoritesResponse](t, c.get("/api/favorites"))
	assert.Equal(t, []int{3}, list.Favorites)
}

func TestServer_ProductNotFound(t *testing.T) {
	c := newClient(t, newTestServer(t, testConfig()))

	for _, target := range []string{"/products/9999", "/products/abc", "/products/0"} {
		rec := c.get(target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "Product Not Found", target)
	}
}

func TestServer_CorruptFavoritesCookieFailsOpen(t *testing.T) {
	c := newClient(t, newTestServer(t, testConfig()))
	c.cookies[favorites.StorageKey] = &http.Cookie{Name: favorites.StorageKey, Value: "bm90IGpzb24"} // "not json"

	list := decode[dto.FavoritesResponse](t, c.get("/api/favorites"))
	assert.Empty(t, list.Favorites)

	rec := c.api(http.MethodPut, "/api/favorites/5")
	require.Equal(t, http.StatusOK, rec.Code)
	list = decode[dto.FavoritesResponse](t, c.get("/api/favorites"))
	assert.Equal(t, []int{5}, list.Favorites)
}

func TestServer_FavoritesWithoutPersistence(t *testing.T) {
	cfg := testConfig()
	cfg.Favorites.Persist = false
	c := newClient(t, newTestServer(t, cfg))

	rec := c.api(http.MethodPost, "/api/favorites/5/toggle")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dto.ToggleFavoriteResponse](t, rec).Favorite)
	assert.NotContains(t, c.cookies, favorites.StorageKey)

	list := decode[dto.FavoritesResponse](t, c.get("/api/favorites"))
	assert.Empty(t, list.Favorites)
}

func TestServer_FavoritesAPI(t *testing.T) {
	c := newClient(t, newTestServer(t, testConfig()))

	rec := c.api(http.MethodPut, "/api/favorites/3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.ToggleFavoriteResponse{ID: 3, Favorite: true, Favorites: []int{3}},
		decode[dto.ToggleFavoriteResponse](t, rec))

	// idempotent add
	rec = c.api(http.MethodPut, "/api/favorites/3")
	assert.Equal(t, []int{3}, decode[dto.ToggleFavoriteResponse](t, rec).Favorites)

	c.api(http.MethodPut, "/api/favorites/7")
	rec = c.api(http.MethodDelete, "/api/favorites/3")
	assert.Equal(t, dto.ToggleFavoriteResponse{ID: 3, Favorite: false, Favorites: []int{7}},
		decode[dto.ToggleFavoriteResponse](t, rec))

	// removing an absent id is a no-op
	rec = c.api(http.MethodDelete, "/api/favorites/3")
	assert.Equal(t, []int{7}, decode[dto.ToggleFavoriteResponse](t, rec).Favorites)

	assert.Equal(t, http.StatusNotFound, c.api(http.MethodPut, "/api/favorites/9999").Code)
	assert.Equal(t, http.StatusBadRequest, c.api(http.MethodPut, "/api/favorites/abc").Code)
}

func TestServer_ProductsAPI(t *testing.T) {
	c := newClient(t, newTestServer(t, testConfig()))

	all := decode[[]dto.ProductResponse](t, c.get("/api/products"))
	assert.Len(t, all, 16)

	outerwear := decode[[]dto.ProductResponse](t, c.get("/api/products?category=Outerwear&sort=price-asc"))
	ids := make([]int, 0, len(outerwear))
	for _, p := range outerwear {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int{1, 16, 10}, ids)

	one := c.get("/api/products/10")
	require.Equal(t, http.StatusOK, one.Code)
	assert.Equal(t, "Camel Wool Coat", decode[dto.ProductResponse](t, one).Title)

	assert.Equal(t, http.StatusNotFound, c.get("/api/products/9999").Code)
	assert.Equal(t, http.StatusBadRequest, c.get("/api/products/abc").Code)
}

func TestServer_SearchPage(t *testing.T) {
	c := newClient(t, newTestServer(t, testConfig()))

	rec := c.get("/search?q=leather")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Leather Sneakers")
	assert.Contains(t, body, "Leather Shoulder Bag")
	assert.NotContains(t, body, "Camel Wool Coat")

	rec = c.get("/search?q=zzzz")
	assert.Contains(t, rec.Body.String(), "No items found")
}

func TestServer_HomePage(t *testing.T) {
	c := newClient(t, newTestServer(t, testConfig()))

	rec := c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Featured Items")
	assert.Contains(t, rec.Body.String(), "Vintage Denim Jacket")
}

func TestServer_AccountRequiresSession(t *testing.T) {
	c := newClient(t, newTestServer(t, testConfig()))

	rec := c.get("/account")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/sign-in?callbackUrl=%2Faccount", rec.Header().Get("Location"))

	session := decode[map[string]any](t, c.get("/api/auth/session"))
	assert.Empty(t, session)
}

func TestServer_SignInFlow(t *testing.T) {
	c := newClient(t, newTestServer(t, testConfig()))

	rec := c.postForm("/sign-in", url.Values{"email": {"user@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")

	rec = c.postForm("/sign-in", url.Values{
		"email":       {"user@example.com"},
		"password":    {"password"},
		"callbackUrl": {"/account"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/account", rec.Header().Get("Location"))
	require.Contains(t, c.cookies, auth.SessionCookieName)

	c.api(http.MethodPut, "/api/favorites/2")

	account := c.get("/account")
	require.Equal(t, http.StatusOK, account.Code)
	assert.Contains(t, account.Body.String(), "user@example.com")
	assert.Contains(t, account.Body.String(), "Floral Midi Dress")

	session := decode[map[string]map[string]string](t, c.get("/api/auth/session"))
	assert.Equal(t, "Demo User", session["user"]["name"])

	rec = c.postForm("/sign-out", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.NotContains(t, c.cookies, auth.SessionCookieName)
	assert.Equal(t, http.StatusSeeOther, c.get("/account").Code)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	c := newClient(t, newTestServer(t, testConfig()))

	c.api(http.MethodPut, "/api/favorites/1")

	rec := c.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "favorites_operations")
}
