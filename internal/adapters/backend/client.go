package backend

// Package backend is the REST client for the HR backend API.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	apperrors "github.com/zephir/path-explorer/internal/errors"
	"github.com/zephir/path-explorer/internal/ports"
)

// maxBodyBytes caps how much of a backend response is read.
const maxBodyBytes = 4 << 20

// Config captures how to reach the backend API.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
}

// Client implements ports.BackendAPI over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

var _ ports.BackendAPI = (*Client)(nil)

// NewClient builds a backend client. BaseURL must be an absolute http(s) URL.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("backend base url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("backend base url must be absolute http(s): %q", raw)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: strings.TrimRight(u.String(), "/"), client: hc}, nil
}

type loginRequest struct {
	Email    string `json:"correo"`
	Password string `json:"contraseña"`
}

type loginResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    wireUser `json:"user"`
}

// Login posts credentials to /api/users/login.
func (c *Client) Login(ctx context.Context, in ports.LoginInput) (ports.LoginResult, error) {
	body, err := json.Marshal(loginRequest{Email: in.Email, Password: in.Password})
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("encode login request: %w", err)
	}

	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/users/login", "", body, &resp); err != nil {
		return ports.LoginResult{}, err
	}
	if resp.Token == "" {
		msg := resp.Message
		if msg == "" {
			msg = "login rejected"
		}
		return ports.LoginResult{}, apperrors.BackendStatus(http.StatusUnauthorized, msg)
	}
	return ports.LoginResult{Token: resp.Token, User: resp.User.toPort(), Message: resp.Message}, nil
}

// Profile fetches the token owner's profile from /api/users/profile.
func (c *Client) Profile(ctx context.Context, token string) (ports.BackendUser, error) {
	var resp struct {
		User *wireUser `json:"user"`
	}
	raw, err := c.getRaw(ctx, "/api/users/profile", token)
	if err != nil {
		return ports.BackendUser{}, err
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ports.BackendUser{}, fmt.Errorf("decode profile: %w", err)
	}
	if resp.User != nil {
		return resp.User.toPort(), nil
	}
	// Some deployments answer with the bare user object.
	var bare wireUser
	if err := json.Unmarshal(raw, &bare); err != nil {
		return ports.BackendUser{}, fmt.Errorf("decode profile: %w", err)
	}
	return bare.toPort(), nil
}

// Users fetches the user directory from /api/users.
func (c *Client) Users(ctx context.Context, token string) ([]ports.BackendUser, error) {
	raw, err := c.getRaw(ctx, "/api/users", token)
	if err != nil {
		return nil, err
	}
	wire, err := decodeUserList(raw)
	if err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	out := make([]ports.BackendUser, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toPort())
	}
	return out, nil
}

// Skills fetches /api/users/{id}/skills.
func (c *Client) Skills(ctx context.Context, token, userID string) (json.RawMessage, error) {
	return c.userDocument(ctx, token, userID, "skills")
}

// Certifications fetches /api/users/{id}/certifications.
func (c *Client) Certifications(ctx context.Context, token, userID string) (json.RawMessage, error) {
	return c.userDocument(ctx, token, userID, "certifications")
}

// Projects fetches /api/users/{id}/projects.
func (c *Client) Projects(ctx context.Context, token, userID string) (json.RawMessage, error) {
	return c.userDocument(ctx, token, userID, "projects")
}

func (c *Client) userDocument(ctx context.Context, token, userID, kind string) (json.RawMessage, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.Validation("user id is required")
	}
	return c.getRaw(ctx, "/api/users/"+url.PathEscape(userID)+"/"+kind, token)
}

func (c *Client) getRaw(ctx context.Context, path, token string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, token, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create backend request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.BackendUnreachable(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return apperrors.BackendUnreachable(fmt.Errorf("read backend response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.BackendStatus(resp.StatusCode, errorMessage(data))
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode backend response from %s: %w", path, err)
	}
	return nil
}

// errorMessagePaths lists where backend deployments put a human-readable error.
//
//nolint:gochecknoglobals // static read-only lookup table.
var errorMessagePaths = []string{"message", "error.message", "error", "msg"}

// errorMessage extracts the backend's human-readable error message, if any.
func errorMessage(data []byte) string {
	if !gjson.ValidBytes(data) {
		return ""
	}
	for _, path := range errorMessagePaths {
		if r := gjson.GetBytes(data, path); r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}

func decodeUserList(raw []byte) ([]wireUser, error) {
	var list []wireUser
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Users []wireUser `json:"users"`
		Data  []wireUser `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Users != nil {
		return wrapped.Users, nil
	}
	return wrapped.Data, nil
}

// flexID accepts user ids encoded as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("user id %s is not an integer", n)
	}
	*f = flexID(n.String())
	return nil
}

type wireUser struct {
	ID          flexID `json:"idUsuario"`
	Email       string `json:"correo"`
	UserType    string `json:"tipoUsuario"`
	FirstName   string `json:"nombre"`
	LastName    string `json:"apellidoP"`
	SecondName  string `json:"apellidoM"`
	Profession  string `json:"profesion"`
	Phone       string `json:"telefono"`
	Interests   string `json:"intereses"`
	Description string `json:"descripcion"`
}

func (w wireUser) toPort() ports.BackendUser {
	return ports.BackendUser{
		ID:          string(w.ID),
		Email:       w.Email,
		UserType:    w.UserType,
		FirstName:   w.FirstName,
		LastName:    w.LastName,
		SecondName:  w.SecondName,
		Profession:  w.Profession,
		Phone:       w.Phone,
		Interests:   w.Interests,
		Description: w.Description,
	}
}
