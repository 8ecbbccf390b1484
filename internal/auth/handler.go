package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ayush/bloglist/internal/apperror"
	"github.com/ayush/bloglist/internal/models"
)

// UserStore defines the user lookups authentication needs. Both methods
// return (nil, nil) when no user matches.
type UserStore interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

// Handler holds the login HTTP handler.
type Handler struct {
	users     UserStore
	passwords *Passwords
	tokens    *Tokens
}

func NewHandler(users UserStore, passwords *Passwords, tokens *Tokens) *Handler {
	return &Handler{users: users, passwords: passwords, tokens: tokens}
}

// Login checks the credentials and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, r, apperror.New(apperror.MalformedBody, "invalid request body", err))
		return
	}

	user, err := h.users.FindUserByUsername(r.Context(), req.Username)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	if !h.passwords.Authenticate(user, req.Password) {
		apperror.Write(w, r, apperror.New(apperror.InvalidCredentials, "invalid username or password", nil))
		return
	}

	token, err := h.tokens.Issue(user.ID.Hex(), user.Username)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.LoginResponse{
		Token:    token,
		Username: user.Username,
		Name:     user.Name,
	})
}
