package auth

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/bloglist/internal/apperror"
	"github.com/ayush/bloglist/internal/models"
)

// Authorize allows acting to mutate a resource owned by owner. Ids are
// compared in their hex form.
func Authorize(acting *models.User, owner primitive.ObjectID) error {
	if acting == nil || acting.ID.Hex() != owner.Hex() {
		return apperror.New(apperror.Forbidden, "not the creator of the blog entry", nil)
	}
	return nil
}
