// Package cookie implements the favorites slot on top of a browser cookie.
//
// The value is stored as base64url(JSON) so it survives cookie value rules.
// A Slot is bound to a single request/response pair and remembers what it
// wrote, so a later Load in the same request sees the new value.
package cookie

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mrops-br/restyle-storefront/internal/app/favorites"
)

// MaxCookieSize is the largest Set-Cookie value browsers are required to keep
const MaxCookieSize = 4096

// Options controls the attributes of written cookies
type Options struct {
	Path     string
	MaxAge   time.Duration
	Secure   bool
	HttpOnly bool
}

// Slot reads the request cookie and writes Set-Cookie on the response.
type Slot struct {
	w    http.ResponseWriter
	r    *http.Request
	opts Options

	mu      sync.Mutex
	written map[string]string
}

var _ favorites.Slot = (*Slot)(nil)

// NewSlot binds a slot to one request/response pair
func NewSlot(w http.ResponseWriter, r *http.Request, opts Options) *Slot {
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &Slot{
		w:       w,
		r:       r,
		opts:    opts,
		written: make(map[string]string),
	}
}

// Load returns the decoded cookie value for key
func (s *Slot) Load(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.written[key]; ok {
		return v, true, nil
	}

	c, err := s.r.Cookie(key)
	if errors.Is(err, http.ErrNoCookie) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cookie %s: %w", key, err)
	}

	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(c.Value, "="))
	if err != nil {
		return "", true, fmt.Errorf("%w: cookie %s is not base64url: %v", favorites.ErrCorruptState, key, err)
	}
	return string(decoded), true, nil
}

// Save writes value as a cookie, replacing any Set-Cookie for the same key
// already queued on this response.
func (s *Slot) Save(key, value string) error {
	c := &http.Cookie{
		Name:     key,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(value)),
		Path:     s.opts.Path,
		MaxAge:   int(s.opts.MaxAge.Seconds()),
		Secure:   s.opts.Secure,
		HttpOnly: s.opts.HttpOnly,
		SameSite: http.SameSiteLaxMode,
	}

	line := c.String()
	if line == "" {
		return fmt.Errorf("invalid cookie %s", key)
	}
	if len(line) > MaxCookieSize {
		return fmt.Errorf("%w: cookie %s needs %d bytes", favorites.ErrQuotaExceeded, key, len(line))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	header := s.w.Header()
	var kept []string
	for _, v := range header.Values("Set-Cookie") {
		if !strings.HasPrefix(v, key+"=") {
			kept = append(kept, v)
		}
	}
	header.Del("Set-Cookie")
	for _, v := range kept {
		header.Add("Set-Cookie", v)
	}
	header.Add("Set-Cookie", line)

	s.written[key] = value
	return nil
}
