package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/bloglist/internal/apperror"
	"github.com/ayush/bloglist/internal/models"
)

const (
	usersCollection = "users"
	blogsCollection = "blogs"
)

// MongoStore handles users and blogs in MongoDB.
type MongoStore struct {
	users *mongo.Collection
	blogs *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users: db.Collection(usersCollection),
		blogs: db.Collection(blogsCollection),
	}
}

// Migrate creates the unique username index.
func (s *MongoStore) Migrate(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	})
	if err != nil {
		return fmt.Errorf("mongo create index: %w", err)
	}
	return nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.MalformedIDError(err)
	}
	return oid, nil
}

// ── Users ────────────────────────────────────────────────────

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	if u.BlogIDs == nil {
		u.BlogIDs = []primitive.ObjectID{}
	}
	res, err := s.users.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return nil, apperror.DuplicateUsernameError(err)
	}
	if err != nil {
		return nil, fmt.Errorf("mongo insert user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	u.Blogs = []models.BlogSummary{}
	return u, nil
}

func (s *MongoStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

func (s *MongoStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find user: %w", err)
	}
	return &u, nil
}

// ListUsers returns every user with its blogs populated.
func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("mongo decode users: %w", err)
	}
	if err := s.populateBlogs(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

// populateBlogs resolves each user's blog ids into summaries, keeping the
// order of the id list and skipping ids that no longer resolve.
func (s *MongoStore) populateBlogs(ctx context.Context, users []models.User) error {
	var ids []primitive.ObjectID
	for _, u := range users {
		ids = append(ids, u.BlogIDs...)
	}
	byID := map[primitive.ObjectID]models.BlogSummary{}
	if len(ids) > 0 {
		opts := options.Find().SetProjection(bson.M{"title": 1, "author": 1, "url": 1})
		cur, err := s.blogs.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
		if err != nil {
			return fmt.Errorf("mongo populate blogs: %w", err)
		}
		defer cur.Close(ctx)
		var found []models.BlogSummary
		if err := cur.All(ctx, &found); err != nil {
			return fmt.Errorf("mongo decode blogs: %w", err)
		}
		for _, b := range found {
			byID[b.ID] = b
		}
	}
	for i := range users {
		users[i].Blogs = []models.BlogSummary{}
		for _, id := range users[i].BlogIDs {
			if b, ok := byID[id]; ok {
				users[i].Blogs = append(users[i].Blogs, b)
			}
		}
	}
	return nil
}

// ── Blogs ────────────────────────────────────────────────────

// ListPosts returns every post with its owner populated.
func (s *MongoStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	cur, err := s.blogs.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo list blogs: %w", err)
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("mongo decode blogs: %w", err)
	}
	if err := s.populateOwners(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *MongoStore) populateOwners(ctx context.Context, posts []models.Post) error {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, p := range posts {
		if p.UserID.IsZero() || seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		ids = append(ids, p.UserID)
	}
	if len(ids) == 0 {
		return nil
	}
	opts := options.Find().SetProjection(bson.M{"username": 1, "name": 1})
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return fmt.Errorf("mongo populate users: %w", err)
	}
	defer cur.Close(ctx)
	var owners []models.OwnerSummary
	if err := cur.All(ctx, &owners); err != nil {
		return fmt.Errorf("mongo decode users: %w", err)
	}
	byID := make(map[primitive.ObjectID]*models.OwnerSummary, len(owners))
	for i := range owners {
		byID[owners[i].ID] = &owners[i]
	}
	for i := range posts {
		posts[i].Owner = byID[posts[i].UserID]
	}
	return nil
}

func (s *MongoStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var p models.Post
	err = s.blogs.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find blog: %w", err)
	}
	return &p, nil
}

// CreatePost inserts p and appends its id to the owner's blog list. The two
// writes are separate single-document operations; if the append fails the
// inserted post is removed again.
func (s *MongoStore) CreatePost(ctx context.Context, p *models.Post, owner *models.User) (*models.Post, error) {
	p.UserID = owner.ID
	res, err := s.blogs.InsertOne(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("mongo insert blog: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)

	_, err = s.users.UpdateByID(ctx, owner.ID, bson.M{"$push": bson.M{"blogs": p.ID}})
	if err != nil {
		err = fmt.Errorf("mongo append blog to user: %w", err)
		if _, derr := s.blogs.DeleteOne(ctx, bson.M{"_id": p.ID}); derr != nil {
			return nil, errors.Join(err, fmt.Errorf("mongo remove orphaned blog: %w", derr))
		}
		return nil, err
	}
	owner.BlogIDs = append(owner.BlogIDs, p.ID)
	p.Owner = &models.OwnerSummary{ID: owner.ID, Username: owner.Username, Name: owner.Name}
	return p, nil
}

// DeletePost removes p and pulls its id from the owner's blog list.
func (s *MongoStore) DeletePost(ctx context.Context, p *models.Post) error {
	if _, err := s.blogs.DeleteOne(ctx, bson.M{"_id": p.ID}); err != nil {
		return fmt.Errorf("mongo delete blog: %w", err)
	}
	if p.UserID.IsZero() {
		return nil
	}
	_, err := s.users.UpdateByID(ctx, p.UserID, bson.M{"$pull": bson.M{"blogs": p.ID}})
	if err != nil {
		return fmt.Errorf("mongo pull blog from user: %w", err)
	}
	return nil
}

// UpdatePost applies the present fields of req and returns the updated,
// populated post, or (nil, nil) when no post has that id.
func (s *MongoStore) UpdatePost(ctx context.Context, id string, req models.UpdatePostRequest) (*models.Post, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	set := bson.M{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Author != nil {
		set["author"] = *req.Author
	}
	if req.URL != nil {
		set["url"] = *req.URL
	}
	if req.Likes != nil {
		set["likes"] = *req.Likes
	}

	var p models.Post
	if len(set) == 0 {
		err = s.blogs.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	} else {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err = s.blogs.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&p)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo update blog: %w", err)
	}
	posts := []models.Post{p}
	if err := s.populateOwners(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}
