package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// CookieKey is the durable storage key holding the API origin's cookies.
const CookieKey = "pt_cookies_v1"

// KV is the durable key-value storage the jar persists into.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Jar is an http.CookieJar for a single API origin whose cookies survive
// process restarts, the way a browser keeps the backend's session cookie.
type Jar struct {
	origin *url.URL
	store  KV

	mu    sync.Mutex
	inner *cookiejar.Jar
}

func newInnerJar() *cookiejar.Jar {
	// cookiejar.New never returns an error.
	j, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return j
}

// NewJar creates a jar for origin. A nil store keeps cookies in memory only.
func NewJar(origin *url.URL, store KV) *Jar {
	return &Jar{origin: origin, store: store, inner: newInnerJar()}
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner.SetCookies(u, cookies)
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

// Load restores persisted cookies. Missing or unreadable records are ignored:
// the worst case is that the server asks the user to log in again.
func (j *Jar) Load(ctx context.Context) error {
	if j.store == nil {
		return nil
	}
	raw, err := j.store.Get(ctx, CookieKey)
	if err != nil {
		return err
	}

	var stored []storedCookie
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return fmt.Errorf("failed to parse stored cookies: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	j.SetCookies(j.origin, cookies)
	return nil
}

// Save persists the cookies currently sent to the API origin.
func (j *Jar) Save(ctx context.Context) error {
	if j.store == nil {
		return nil
	}
	cookies := j.Cookies(j.origin)
	if len(cookies) == 0 {
		return j.store.Delete(ctx, CookieKey)
	}

	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return j.store.Set(ctx, CookieKey, string(data))
}

// Clear drops every cookie, in memory and on disk.
func (j *Jar) Clear(ctx context.Context) error {
	j.mu.Lock()
	j.inner = newInnerJar()
	j.mu.Unlock()

	if j.store == nil {
		return nil
	}
	return j.store.Delete(ctx, CookieKey)
}
