package repositories

import (
	"context"

	"shoplite/internal/models"
)

// UserRepository defines the interface for user and role data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindRoleByName(ctx context.Context, name models.RoleName) (*models.Role, error)
	// EnsureRole returns the role row, creating it when missing.
	EnsureRole(ctx context.Context, name models.RoleName) (*models.Role, error)
}
