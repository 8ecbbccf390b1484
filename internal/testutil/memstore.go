// Package testutil holds helpers shared by handler tests.
package testutil

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/bloglist/internal/apperror"
	"github.com/ayush/bloglist/internal/models"
)

// MemStore is an in-memory stand-in for store.MongoStore with the same
// lookup and error semantics.
type MemStore struct {
	mu    sync.Mutex
	users []models.User
	posts []models.Post

	// Fail, when set, is returned by every operation.
	Fail error
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

// AddUser stores u directly, assigning an id if it has none.
func (s *MemStore) AddUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.BlogIDs == nil {
		u.BlogIDs = []primitive.ObjectID{}
	}
	s.users = append(s.users, u)
	return u
}

// AddPost stores p directly without touching the owner's blog list.
func (s *MemStore) AddPost(p models.Post) models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.posts = append(s.posts, p)
	return p
}

// Users returns a copy of the stored users.
func (s *MemStore) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, len(s.users))
	for i, u := range s.users {
		u.BlogIDs = append([]primitive.ObjectID(nil), u.BlogIDs...)
		out[i] = u
	}
	return out
}

// Posts returns a copy of the stored posts.
func (s *MemStore) Posts() []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Post(nil), s.posts...)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.MalformedIDError(err)
	}
	return oid, nil
}

func (s *MemStore) userIndex(id primitive.ObjectID) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *MemStore) postIndex(id primitive.ObjectID) int {
	for i := range s.posts {
		if s.posts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *MemStore) owner(id primitive.ObjectID) *models.OwnerSummary {
	if i := s.userIndex(id); i >= 0 {
		u := s.users[i]
		return &models.OwnerSummary{ID: u.ID, Username: u.Username, Name: u.Name}
	}
	return nil
}

func (s *MemStore) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return nil, apperror.DuplicateUsernameError(errors.New("E11000 duplicate key error"))
		}
	}
	u.ID = primitive.NewObjectID()
	u.BlogIDs = []primitive.ObjectID{}
	s.users = append(s.users, *u)
	u.Blogs = []models.BlogSummary{}
	return u, nil
}

func (s *MemStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *MemStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	if i := s.userIndex(oid); i >= 0 {
		u := s.users[i]
		return &u, nil
	}
	return nil, nil
}

func (s *MemStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		u.Blogs = []models.BlogSummary{}
		for _, id := range u.BlogIDs {
			if i := s.postIndex(id); i >= 0 {
				p := s.posts[i]
				u.Blogs = append(u.Blogs, models.BlogSummary{ID: p.ID, Title: p.Title, Author: p.Author, URL: p.URL})
			}
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *MemStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		p.Owner = s.owner(p.UserID)
		out = append(out, p)
	}
	return out, nil
}

func (s *MemStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	if i := s.postIndex(oid); i >= 0 {
		p := s.posts[i]
		return &p, nil
	}
	return nil, nil
}

func (s *MemStore) CreatePost(ctx context.Context, p *models.Post, owner *models.User) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	p.ID = primitive.NewObjectID()
	p.UserID = owner.ID
	s.posts = append(s.posts, *p)
	if i := s.userIndex(owner.ID); i >= 0 {
		ids := append([]primitive.ObjectID(nil), s.users[i].BlogIDs...)
		s.users[i].BlogIDs = append(ids, p.ID)
	}
	p.Owner = s.owner(owner.ID)
	return p, nil
}

func (s *MemStore) DeletePost(ctx context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if i := s.postIndex(p.ID); i >= 0 {
		s.posts = append(s.posts[:i], s.posts[i+1:]...)
	}
	if i := s.userIndex(p.UserID); i >= 0 {
		ids := make([]primitive.ObjectID, 0, len(s.users[i].BlogIDs))
		for _, id := range s.users[i].BlogIDs {
			if id != p.ID {
				ids = append(ids, id)
			}
		}
		s.users[i].BlogIDs = ids
	}
	return nil
}

func (s *MemStore) UpdatePost(ctx context.Context, id string, req models.UpdatePostRequest) (*models.Post, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	i := s.postIndex(oid)
	if i < 0 {
		return nil, nil
	}
	p := &s.posts[i]
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Author != nil {
		p.Author = *req.Author
	}
	if req.URL != nil {
		p.URL = *req.URL
	}
	if req.Likes != nil {
		p.Likes = *req.Likes
	}
	out := *p
	out.Owner = s.owner(p.UserID)
	return &out, nil
}
