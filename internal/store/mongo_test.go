package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/ayush/bloglist/internal/apperror"
	"github.com/ayush/bloglist/internal/models"
)

const (
	usersNS = "bloglist.users"
	blogsNS = "bloglist.blogs"
)

func userDoc(id primitive.ObjectID, username string, blogs ...primitive.ObjectID) bson.D {
	ids := bson.A{}
	for _, b := range blogs {
		ids = append(ids, b)
	}
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "username", Value: username},
		{Key: "name", Value: "Name of " + username},
		{Key: "passwordHash", Value: "$2a$04$hash"},
		{Key: "blogs", Value: ids},
	}
}

func blogDoc(id, owner primitive.ObjectID, title string, likes int) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: title},
		{Key: "author", Value: "Author"},
		{Key: "url", Value: "http://example.com/" + title},
		{Key: "likes", Value: likes},
		{Key: "user", Value: owner},
	}
}

func TestMongoUsers(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("migrate", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		assert.NoError(mt, s.Migrate(ctx))
	})

	mt.Run("find by username", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, userDoc(id, "root")))

		u, err := s.FindUserByUsername(ctx, "root")
		require.NoError(mt, err)
		require.NotNil(mt, u)
		assert.Equal(mt, id, u.ID)
		assert.Equal(mt, "$2a$04$hash", u.PasswordHash)
	})

	mt.Run("find by username missing", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		u, err := s.FindUserByUsername(ctx, "ghost")
		require.NoError(mt, err)
		assert.Nil(mt, u)
	})

	mt.Run("find by malformed id", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		_, err := s.FindUserByID(ctx, "x")
		assert.True(mt, apperror.Is(err, apperror.MalformedID))
	})

	mt.Run("create", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u, err := s.CreateUser(ctx, &models.User{Username: "newuser", Name: "New", PasswordHash: "h"})
		require.NoError(mt, err)
		assert.False(mt, u.ID.IsZero())
		assert.NotNil(mt, u.Blogs)
		assert.Empty(mt, u.Blogs)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: bloglist.users index: username_unique",
		}))

		_, err := s.CreateUser(ctx, &models.User{Username: "root", PasswordHash: "h"})
		assert.True(mt, apperror.Is(err, apperror.DuplicateUsername), "got %v", err)
	})

	mt.Run("list populates blogs", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		uid := primitive.NewObjectID()
		b1, b2, gone := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, userDoc(uid, "root", b2, gone, b1)),
			mtest.CreateCursorResponse(0, blogsNS, mtest.FirstBatch,
				blogDoc(b1, uid, "first", 1),
				blogDoc(b2, uid, "second", 2),
			),
		)

		users, err := s.ListUsers(ctx)
		require.NoError(mt, err)
		require.Len(mt, users, 1)
		require.Len(mt, users[0].Blogs, 2)
		assert.Equal(mt, "second", users[0].Blogs[0].Title)
		assert.Equal(mt, "first", users[0].Blogs[1].Title)
	})
}

func TestMongoBlogs(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("list populates owners", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		uid, orphanOwner := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, blogsNS, mtest.FirstBatch,
				blogDoc(primitive.NewObjectID(), uid, "owned", 3),
				blogDoc(primitive.NewObjectID(), orphanOwner, "orphan", 0),
			),
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, userDoc(uid, "root")),
		)

		posts, err := s.ListPosts(ctx)
		require.NoError(mt, err)
		require.Len(mt, posts, 2)
		require.NotNil(mt, posts[0].Owner)
		assert.Equal(mt, "root", posts[0].Owner.Username)
		assert.Equal(mt, 3, posts[0].Likes)
		assert.Nil(mt, posts[1].Owner)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, blogsNS, mtest.FirstBatch))

		p, err := s.GetPost(ctx, primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.Nil(mt, p)
	})

	mt.Run("get malformed", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		_, err := s.GetPost(ctx, "x")
		assert.True(mt, apperror.Is(err, apperror.MalformedID))
	})

	mt.Run("create appends to owner", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		owner := &models.User{ID: primitive.NewObjectID(), Username: "root", Name: "Superuser"}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		p, err := s.CreatePost(ctx, &models.Post{Title: "t", Author: "a", URL: "u"}, owner)
		require.NoError(mt, err)
		assert.False(mt, p.ID.IsZero())
		assert.Equal(mt, owner.ID, p.UserID)
		require.NotNil(mt, p.Owner)
		assert.Equal(mt, "root", p.Owner.Username)
		assert.Equal(mt, []primitive.ObjectID{p.ID}, owner.BlogIDs)
	})

	mt.Run("create removes post when append fails", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		owner := &models.User{ID: primitive.NewObjectID(), Username: "root"}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "append failed"}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		_, err := s.CreatePost(ctx, &models.Post{Title: "t", Author: "a", URL: "u"}, owner)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "append blog to user")
		assert.Empty(mt, owner.BlogIDs)

		var commands []string
		for _, evt := range mt.GetAllStartedEvents() {
			commands = append(commands, evt.CommandName)
		}
		assert.Equal(mt, []string{"insert", "update", "delete"}, commands)
	})

	mt.Run("create reports failed cleanup", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		owner := &models.User{ID: primitive.NewObjectID(), Username: "root"}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "append failed"}),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "delete failed"}),
		)

		_, err := s.CreatePost(ctx, &models.Post{Title: "t", Author: "a", URL: "u"}, owner)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "remove orphaned blog")
	})

	mt.Run("delete pulls from owner", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)
		err := s.DeletePost(ctx, &models.Post{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID()})
		assert.NoError(mt, err)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))
		likes := 5

		p, err := s.UpdatePost(ctx, primitive.NewObjectID().Hex(), models.UpdatePostRequest{Likes: &likes})
		require.NoError(mt, err)
		assert.Nil(mt, p)
	})

	mt.Run("update returns populated post", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		id, uid := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: blogDoc(id, uid, "t", 9)}),
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, userDoc(uid, "root")),
		)
		likes := 9

		p, err := s.UpdatePost(ctx, id.Hex(), models.UpdatePostRequest{Likes: &likes})
		require.NoError(mt, err)
		require.NotNil(mt, p)
		assert.Equal(mt, 9, p.Likes)
		require.NotNil(mt, p.Owner)
		assert.Equal(mt, "root", p.Owner.Username)
	})

	mt.Run("update malformed", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		_, err := s.UpdatePost(ctx, "nope", models.UpdatePostRequest{})
		assert.True(mt, apperror.Is(err, apperror.MalformedID))
	})
}
