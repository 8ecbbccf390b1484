package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ayush/bloglist/internal/apperror"
	"github.com/ayush/bloglist/internal/auth"
	"github.com/ayush/bloglist/internal/models"
)

type ctxKey int

const (
	tokenKey ctxKey = iota
	userKey
)

const bearerPrefix = "Bearer "

// TokenVerifier checks a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

// ExtractToken copies a bearer token from the Authorization header onto
// the request context. A missing or non-bearer header is not an error.
func ExtractToken(r *http.Request) (*http.Request, error) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, bearerPrefix) {
		return r, nil
	}
	token := strings.TrimPrefix(h, bearerPrefix)
	return r.WithContext(context.WithValue(r.Context(), tokenKey, token)), nil
}

// ResolveUser verifies the extracted token and loads its user. It must run
// after ExtractToken.
func ResolveUser(tokens TokenVerifier, users auth.UserStore) Step {
	return func(r *http.Request) (*http.Request, error) {
		raw, ok := TokenFrom(r.Context())
		if !ok {
			return nil, apperror.New(apperror.MissingToken, "authentication token missing", nil)
		}
		claims, err := tokens.Verify(raw)
		if err != nil {
			return nil, err
		}
		user, err := users.FindUserByID(r.Context(), claims.ID)
		if apperror.Is(err, apperror.MalformedID) {
			// a signed id that is not an ObjectID cannot name a user
			user, err = nil, nil
		}
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, apperror.New(apperror.UnknownUser, "user associated to token not found", nil)
		}
		return r.WithContext(context.WithValue(r.Context(), userKey, user)), nil
	}
}

// RequireUser is the middleware for routes that need an identity.
func RequireUser(tokens TokenVerifier, users auth.UserStore) func(http.Handler) http.Handler {
	return Pipeline(ResolveUser(tokens, users))
}

// TokenFrom returns the raw bearer token stored by ExtractToken.
func TokenFrom(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok && t != ""
}

// UserFrom returns the user stored by ResolveUser.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}
