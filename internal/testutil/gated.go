package testutil

import (
	"context"
	"sync"

	"github.com/ayush/bloglist/internal/models"
)

// GatedStore pauses the first ListPosts call after it has read the posts,
// until Release is called. Read is closed once that call has read.
type GatedStore struct {
	*MemStore
	Read chan struct{}

	release chan struct{}
	once    sync.Once
}

func NewGatedStore(s *MemStore) *GatedStore {
	return &GatedStore{
		MemStore: s,
		Read:     make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (g *GatedStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	posts, err := g.MemStore.ListPosts(ctx)
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.Read)
		<-g.release
	}
	return posts, err
}

// Release lets the paused ListPosts call return.
func (g *GatedStore) Release() {
	close(g.release)
}
