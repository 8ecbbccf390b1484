package blogs

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/bloglist/internal/apperror"
	"github.com/ayush/bloglist/internal/auth"
	"github.com/ayush/bloglist/internal/blogstats"
	"github.com/ayush/bloglist/internal/logutil"
	"github.com/ayush/bloglist/internal/middleware"
	"github.com/ayush/bloglist/internal/models"
	"github.com/ayush/bloglist/internal/validation"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Store defines the blog persistence the handlers need. Lookups by id
// return (nil, nil) when nothing matches and a MalformedID error when the
// id is not an ObjectID.
type Store interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	CreatePost(ctx context.Context, p *models.Post, owner *models.User) (*models.Post, error)
	DeletePost(ctx context.Context, p *models.Post) error
	UpdatePost(ctx context.Context, id string, req models.UpdatePostRequest) (*models.Post, error)
}

// ListCache holds the encoded list response. Set must drop the body when
// Invalidate ran after gen was read with Generation.
type ListCache interface {
	Get(ctx context.Context) ([]byte, bool, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, gen int64, body []byte) error
	Invalidate(ctx context.Context) error
}

type nopCache struct{}

func (nopCache) Get(context.Context) ([]byte, bool, error) { return nil, false, nil }
func (nopCache) Generation(context.Context) (int64, error) { return 0, nil }
func (nopCache) Set(context.Context, int64, []byte) error  { return nil }
func (nopCache) Invalidate(context.Context) error          { return nil }

// Handler holds blog HTTP handlers.
type Handler struct {
	store Store
	cache ListCache
}

// NewHandler builds the handlers. cache may be nil.
func NewHandler(store Store, cache ListCache) *Handler {
	if cache == nil {
		cache = nopCache{}
	}
	return &Handler{store: store, cache: cache}
}

// List returns every blog with its owner populated.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := logutil.GetOrDefault(r.Context())
	if body, ok, err := h.cache.Get(r.Context()); err != nil {
		log.Warn().Err(err).Msg("Blog list cache read failed")
	} else if ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
		return
	}

	// read before the query so a concurrent mutation makes this body stale
	gen, genErr := h.cache.Generation(r.Context())
	if genErr != nil {
		log.Warn().Err(genErr).Msg("Blog list cache generation read failed")
	}

	posts, err := h.store.ListPosts(r.Context())
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(posts); err != nil {
		apperror.Write(w, r, err)
		return
	}
	if genErr == nil {
		if err := h.cache.Set(r.Context(), gen, buf.Bytes()); err != nil {
			log.Warn().Err(err).Msg("Blog list cache write failed")
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(buf.Bytes())
}

// Stats returns the total likes and the most liked blog.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListPosts(r.Context())
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, blogstats.Summarize(posts))
}

// Create stores a new blog owned by the authenticated user.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		apperror.Write(w, r, apperror.New(apperror.MissingToken, "authentication token missing", nil))
		return
	}

	var req models.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, r, apperror.New(apperror.MalformedBody, "invalid request body", err))
		return
	}
	post := &models.Post{Title: req.Title, Author: req.Author, URL: req.URL}
	if req.Likes != nil {
		post.Likes = *req.Likes
	}
	if err := validation.Struct(post); err != nil {
		apperror.Write(w, r, err)
		return
	}

	saved, err := h.store.CreatePost(r.Context(), post, user)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	h.invalidate(r)
	writeJSON(w, http.StatusCreated, saved)
}

// Delete removes a blog owned by the authenticated user. Deleting an id
// that does not exist succeeds.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		apperror.Write(w, r, apperror.New(apperror.MissingToken, "authentication token missing", nil))
		return
	}

	post, err := h.store.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	if post == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := auth.Authorize(user, post.UserID); err != nil {
		apperror.Write(w, r, err)
		return
	}
	if err := h.store.DeletePost(r.Context(), post); err != nil {
		apperror.Write(w, r, err)
		return
	}
	h.invalidate(r)
	w.WriteHeader(http.StatusNoContent)
}

// Update changes the given fields of a blog.
//
// No authentication or ownership check is applied: any caller may update
// any blog.
// TODO: decide whether update should require the owner, as delete does.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, r, apperror.New(apperror.MalformedBody, "invalid request body", err))
		return
	}
	if err := validation.Struct(req); err != nil {
		apperror.Write(w, r, err)
		return
	}

	post, err := h.store.UpdatePost(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	if post == nil {
		apperror.Write(w, r, apperror.NotFoundError("blog"))
		return
	}
	if !req.Empty() {
		h.invalidate(r)
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) invalidate(r *http.Request) {
	if err := h.cache.Invalidate(r.Context()); err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Warn().Err(err).Msg("Blog list cache invalidation failed")
	}
}
