package repositories

import "blogapi/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	// GetByUsernameOrEmail performs the single combined duplicate lookup
	// used at signup: it returns the first user matching either field.
	GetByUsernameOrEmail(username, email string) (*models.User, error)
}
