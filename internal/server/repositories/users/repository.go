package users

import (
	"context"

	"github.com/erisahalipaj/userauth/internal/server/models"
)

// UpdateFields is a partial update: nil fields are left untouched.
type UpdateFields struct {
	Username     *string
	PasswordHash *string
}

// Repository is the persistence contract for user records. Implementations
// return common.ErrNotFound and common.ErrDuplicateUsername for the expected
// failure modes; anything else is an infrastructure error.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, fields UpdateFields) error
	Delete(ctx context.Context, id string) error
}
