package users

import (
	"context"

	"github.com/profilekit/profilekit/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository defines persistence operations for users. Lookups return
// (nil, nil) when no record matches; uniqueness violations surface as
// ErrConflict wrapping the store error.
type Repository interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Find(ctx context.Context, q *ListQuery) ([]models.User, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, patch bson.M) (bool, error)
}
