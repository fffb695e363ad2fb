package repositories

import (
	"blogapi/internal/apperrors"
	"blogapi/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to create user", err)
	}
	return nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.KindUserNotFound, "user not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to get user by email", err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.KindUserNotFound, "user not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to get user by ID", err)
	}
	return &user, nil
}

// GetByUsernameOrEmail retrieves a user matching either the username or the
// email in a single query.
func (r *GORMUserRepository) GetByUsernameOrEmail(username, email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "username = ? OR email = ?", username, email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.KindUserNotFound, "user not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to look up user", err)
	}
	return &user, nil
}
