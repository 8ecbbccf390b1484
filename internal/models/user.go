package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is a registered account stored in the users collection.
type User struct {
	ID           primitive.ObjectID   `json:"id"       bson:"_id,omitempty"`
	Username     string               `json:"username" bson:"username"     validate:"required,min=3"`
	Name         string               `json:"name"     bson:"name"`
	PasswordHash string               `json:"-"        bson:"passwordHash"` // never serialize
	BlogIDs      []primitive.ObjectID `json:"-"        bson:"blogs"`

	// Blogs is filled by populate before the user is written out.
	Blogs []BlogSummary `json:"blogs" bson:"-"`
}

// BlogSummary is the populated view of a post embedded in a user.
type BlogSummary struct {
	ID     primitive.ObjectID `json:"id"     bson:"_id"`
	Title  string             `json:"title"  bson:"title"`
	Author string             `json:"author" bson:"author"`
	URL    string             `json:"url"    bson:"url"`
}

// OwnerSummary is the populated view of a user embedded in a post.
type OwnerSummary struct {
	ID       primitive.ObjectID `json:"id"       bson:"_id"`
	Username string             `json:"username" bson:"username"`
	Name     string             `json:"name"     bson:"name"`
}

// RegisterRequest is the JSON body for POST /api/users.
type RegisterRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}
