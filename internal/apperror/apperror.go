// Package apperror defines the closed set of failures the API can report
// and translates them into HTTP responses.
package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ayush/bloglist/internal/logutil"
)

// Kind identifies a failure category.
type Kind int

const (
	// MissingToken means a protected route received no bearer token.
	MissingToken Kind = iota + 1
	// InvalidToken means the token failed signature or format checks.
	InvalidToken
	// UnknownUser means the token's id resolves to no stored user.
	UnknownUser
	// InvalidCredentials means login failed. Wrong username and wrong
	// password are indistinguishable.
	InvalidCredentials
	// Forbidden means the caller does not own the resource.
	Forbidden
	// NotFound means the target document does not exist.
	NotFound
	// MalformedID means an id does not have the shape of an ObjectID.
	MalformedID
	// MalformedBody means the request body is not valid JSON.
	MalformedBody
	// ValidationFailed means a field failed schema validation.
	ValidationFailed
	// DuplicateUsername means the unique username index rejected a write.
	DuplicateUsername
)

var kindNames = map[Kind]string{
	MissingToken:       "MissingToken",
	InvalidToken:       "InvalidToken",
	UnknownUser:        "UnknownUser",
	InvalidCredentials: "InvalidCredentials",
	Forbidden:          "Forbidden",
	NotFound:           "NotFound",
	MalformedID:        "MalformedID",
	MalformedBody:      "MalformedBody",
	ValidationFailed:   "ValidationFailed",
	DuplicateUsername:  "DuplicateUsername",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a tagged failure. Field and Reason are only set for
// ValidationFailed; Reason carries the validator tag ("required", "min").
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Reason  string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error of the given kind.
func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation builds a ValidationFailed error for a single field.
func Validation(field, reason, message string) *Error {
	return &Error{Kind: ValidationFailed, Field: field, Reason: reason, Message: message}
}

func MalformedIDError(err error) *Error {
	return New(MalformedID, "malformatted id", err)
}

func NotFoundError(what string) *Error {
	return New(NotFound, what+" not found", nil)
}

func DuplicateUsernameError(err error) *Error {
	return New(DuplicateUsername, "username already taken", err)
}

// Is reports whether err carries an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Response is the JSON body of every error response.
type Response struct {
	Error string `json:"error"`
}

// Translate maps err to an HTTP status and the message sent to the client.
// ok is false for errors outside the taxonomy.
func Translate(err error) (status int, message string, ok bool) {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, "internal server error", false
	}
	switch e.Kind {
	case MissingToken:
		return http.StatusUnauthorized, "authentication token missing", true
	case InvalidToken:
		return http.StatusUnauthorized, "token invalid", true
	case UnknownUser:
		return http.StatusUnauthorized, "user associated to token not found", true
	case InvalidCredentials:
		return http.StatusUnauthorized, "invalid username or password", true
	case Forbidden:
		return http.StatusForbidden, e.Message, true
	case NotFound:
		return http.StatusNotFound, e.Message, true
	case MalformedID:
		return http.StatusBadRequest, "malformatted id", true
	case MalformedBody:
		return http.StatusBadRequest, e.Message, true
	case ValidationFailed:
		if e.Field == "username" {
			switch e.Reason {
			case "min":
				return http.StatusBadRequest, "username too short", true
			case "required":
				return http.StatusBadRequest, "username missing", true
			}
		}
		return http.StatusBadRequest, e.Message, true
	case DuplicateUsername:
		return http.StatusBadRequest, "username already taken", true
	}
	return http.StatusInternalServerError, "internal server error", false
}

// Write sends the translated error as JSON. Unmapped errors are logged and
// answered with 500; they never stop the server.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	status, msg, ok := Translate(err)
	log := logutil.GetOrDefault(r.Context())
	if !ok {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled error")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("Request failed")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Error: msg})
}
