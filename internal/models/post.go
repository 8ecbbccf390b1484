package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Post is a single blog entry stored in the blogs collection.
type Post struct {
	ID     primitive.ObjectID `json:"id"     bson:"_id,omitempty"`
	Title  string             `json:"title"  bson:"title"  validate:"required"`
	Author string             `json:"author" bson:"author" validate:"required"`
	URL    string             `json:"url"    bson:"url"    validate:"required"`
	Likes  int                `json:"likes"  bson:"likes"`
	UserID primitive.ObjectID `json:"-"      bson:"user,omitempty"`

	// Owner is populated in responses only.
	Owner *OwnerSummary `json:"user" bson:"-"`
}

// CreatePostRequest is the JSON body for POST /api/blogs.
type CreatePostRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  *int   `json:"likes"`
}

// UpdatePostRequest is the JSON body for PUT /api/blogs/{id}. Absent
// fields are left untouched.
type UpdatePostRequest struct {
	Title  *string `json:"title"  validate:"omitnil,min=1"`
	Author *string `json:"author" validate:"omitnil,min=1"`
	URL    *string `json:"url"    validate:"omitnil,min=1"`
	Likes  *int    `json:"likes"`
}

// Empty reports whether the request would not change anything.
func (r UpdatePostRequest) Empty() bool {
	return r.Title == nil && r.Author == nil && r.URL == nil && r.Likes == nil
}

// Stats summarises the likes across all posts.
type Stats struct {
	TotalLikes int   `json:"totalLikes"`
	Favorite   *Post `json:"favorite"`
}
