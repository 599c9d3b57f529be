package ports

import (
	"context"
	"encoding/json"
)

// LoginInput carries the credentials posted to the backend login endpoint.
type LoginInput struct {
	Email    string
	Password string
}

// BackendUser is the user record returned by the backend API.
type BackendUser struct {
	ID          string `json:"idUsuario"`
	Email       string `json:"correo"`
	UserType    string `json:"tipoUsuario"`
	FirstName   string `json:"nombre,omitempty"`
	LastName    string `json:"apellidoP,omitempty"`
	SecondName  string `json:"apellidoM,omitempty"`
	Profession  string `json:"profesion,omitempty"`
	Phone       string `json:"telefono,omitempty"`
	Interests   string `json:"intereses,omitempty"`
	Description string `json:"descripcion,omitempty"`
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token   string
	User    BackendUser
	Message string
}

// BackendAPI is the external HR REST API. Every call except Login is bearer-authenticated.
// Skills, certifications and projects are returned as raw JSON documents since
// this service only relays them.
type BackendAPI interface {
	Login(ctx context.Context, in LoginInput) (LoginResult, error)
	Profile(ctx context.Context, token string) (BackendUser, error)
	Users(ctx context.Context, token string) ([]BackendUser, error)
	Skills(ctx context.Context, token, userID string) (json.RawMessage, error)
	Certifications(ctx context.Context, token, userID string) (json.RawMessage, error)
	Projects(ctx context.Context, token, userID string) (json.RawMessage, error)
}
