package sessionclient

// Package sessionclient mirrors the browser-side session state for a signed-in
// viewer. It resolves identity through the server's session accessor and exposes
// logout and refresh to callers that render role-aware views.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/publicsuffix"

	domainauth "github.com/zephir/path-explorer/internal/domain/auth"
)

// SessionPath is the server's session accessor.
const SessionPath = "/auth/api"

// maxSessionBody caps how much of an accessor response is read.
const maxSessionBody = 64 << 10

// State is a snapshot of the viewer's identity.
type State struct {
	User          domainauth.CurrentUser
	Authenticated bool
}

// Navigator moves the viewer to another page.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Navigate calls f(path).
func (f NavigatorFunc) Navigate(path string) { f(path) }

// Options configures a Hook.
type Options struct {
	BaseURL   string
	Client    *http.Client // its Jar holds the cookie mirror; one is created when nil
	Navigator Navigator
	Logger    *slog.Logger
}

// Hook keeps the viewer's session state in sync with the server.
// Refresh calls may overlap; the most recently started one that completes wins.
type Hook struct {
	base   *url.URL
	client *http.Client
	nav    Navigator
	logger *slog.Logger

	seq atomic.Uint64

	mu        sync.Mutex
	applied   uint64
	state     State
	listeners map[int]func(State)
	nextID    int
}

// New builds a Hook. BaseURL must be an absolute http(s) URL.
func New(opts Options) (*Hook, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute http(s): %q", opts.BaseURL)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	if client.Jar == nil {
		jar, err := NewJar()
		if err != nil {
			return nil, err
		}
		c := *client
		c.Jar = jar
		client = &c
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	nav := opts.Navigator
	if nav == nil {
		nav = NavigatorFunc(func(string) {})
	}

	return &Hook{
		base:      base,
		client:    client,
		nav:       nav,
		logger:    logger,
		listeners: make(map[int]func(State)),
	}, nil
}

// NewJar returns a cookie jar scoped by the public suffix list.
func NewJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return jar, nil
}

// State returns the current snapshot.
func (h *Hook) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Subscribe registers fn to be called after every state change and returns a
// function that removes it.
func (h *Hook) Subscribe(fn func(State)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserType      string `json:"userType"`
	UserID        string `json:"userId"`
}

// Refresh re-resolves the session from the server. Network failures leave the
// state untouched. A response that cannot be decoded counts as no session.
func (h *Hook) Refresh(ctx context.Context) error {
	seq := h.seq.Add(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint(), nil)
	if err != nil {
		return fmt.Errorf("create session request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("resolve session: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSessionBody))
	if err != nil {
		return fmt.Errorf("read session response: %w", err)
	}

	next := State{}
	var body sessionResponse
	switch {
	case resp.StatusCode != http.StatusOK:
		h.logger.WarnContext(ctx, "session accessor returned non-200", "status", resp.StatusCode)
	case json.Unmarshal(data, &body) != nil:
		h.logger.WarnContext(ctx, "session response is not valid JSON")
	default:
		next = stateFrom(body)
	}

	h.apply(seq, next)
	return nil
}

func stateFrom(body sessionResponse) State {
	if !body.Authenticated {
		return State{}
	}
	role, ok := domainauth.ParseRole(body.UserType)
	if !ok || !role.Known() {
		return State{}
	}
	return State{
		User:          domainauth.CurrentUser{UserID: body.UserID, Role: role},
		Authenticated: true,
	}
}

// Logout asks the server to end the session, drops the local cookie mirror,
// resets the state and navigates to the login page. A failed server call is
// logged and does not stop the local steps.
func (h *Hook) Logout(ctx context.Context) {
	if err := h.endSession(ctx); err != nil {
		h.logger.WarnContext(ctx, "ending server session failed", "error", err)
	}
	h.expireCookies()
	h.apply(h.seq.Add(1), State{})
	h.nav.Navigate("/")
}

func (h *Hook) endSession(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, h.endpoint(), nil)
	if err != nil {
		return fmt.Errorf("create logout request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxSessionBody))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New("logout returned " + resp.Status)
	}
	return nil
}

// expireCookies overwrites every session cookie in the jar with an expired copy.
func (h *Hook) expireCookies() {
	if h.client.Jar == nil {
		return
	}
	root := *h.base
	root.Path = "/"
	expired := make([]*http.Cookie, 0, len(domainauth.SessionCookieNames()))
	for _, name := range domainauth.SessionCookieNames() {
		expired = append(expired, &http.Cookie{
			Name:    name,
			Value:   "",
			Path:    "/",
			MaxAge:  -1,
			Expires: time.Unix(0, 0),
		})
	}
	h.client.Jar.SetCookies(&root, expired)
}

// apply stores next unless a newer call has already been applied.
func (h *Hook) apply(seq uint64, next State) {
	h.mu.Lock()
	if seq < h.applied {
		h.mu.Unlock()
		return
	}
	h.applied = seq
	changed := h.state != next
	h.state = next
	listeners := make([]func(State), 0, len(h.listeners))
	for _, fn := range h.listeners {
		listeners = append(listeners, fn)
	}
	h.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range listeners {
		fn(next)
	}
}

func (h *Hook) endpoint() string {
	return h.base.String() + SessionPath
}
