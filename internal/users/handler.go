package users

import (
	"context"
	"encoding/json"
	"net/http"
	"unicode/utf8"

	"github.com/ayush/bloglist/internal/apperror"
	"github.com/ayush/bloglist/internal/models"
	"github.com/ayush/bloglist/internal/validation"
)

const minPasswordLength = 3

// Store defines user persistence. CreateUser reports a taken username as a
// DuplicateUsername error.
type Store interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
}

// Hasher turns a plain password into a storable hash.
type Hasher interface {
	Hash(plain string) (string, error)
}

// Handler holds user HTTP handlers.
type Handler struct {
	store  Store
	hasher Hasher
}

func NewHandler(store Store, hasher Hasher) *Handler {
	return &Handler{store: store, hasher: hasher}
}

// List returns every user with their blogs populated.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, r, apperror.New(apperror.MalformedBody, "invalid request body", err))
		return
	}
	if req.Password == "" {
		apperror.Write(w, r, apperror.Validation("password", "required", "password missing"))
		return
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		apperror.Write(w, r, apperror.Validation("password", "min", "password too short"))
		return
	}

	user := &models.User{Username: req.Username, Name: req.Name}
	if err := validation.Struct(user); err != nil {
		apperror.Write(w, r, err)
		return
	}
	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	user.PasswordHash = hash

	created, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}
