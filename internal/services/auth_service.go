package services

import (
	"errors"
	"log"

	"blogapi/internal/apperrors"
	"blogapi/internal/models"
	"blogapi/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo repositories.UserRepository
	codec    *TokenCodec
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		codec:    NewTokenCodec(jwtSecret, DefaultTokenTTL),
	}
}

// AuthResult is what a successful signup or login returns.
type AuthResult struct {
	Token string             `json:"token"`
	User  *models.PublicUser `json:"user"`
}

// Signup registers a new user, hashes their password, saves them, and
// issues a token for the fresh account.
func (s *AuthService) Signup(user *models.User) (*AuthResult, error) {
	if user.Username == "" || user.Email == "" || user.Password == "" {
		return nil, apperrors.New(apperrors.KindValidation, "username, email, and password are required")
	}
	if len(user.Password) < 6 {
		return nil, apperrors.New(apperrors.KindValidation, "password must be at least 6 characters long")
	}

	// Single combined lookup; the response never says which field collided.
	existing, err := s.userRepo.GetByUsernameOrEmail(user.Username, user.Email)
	if err == nil && existing != nil {
		return nil, apperrors.New(apperrors.KindDuplicateUser, "user with this email or username already exists")
	}
	if err != nil && apperrors.KindOf(err) != apperrors.KindUserNotFound {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to check for existing user", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to hash password", err)
	}
	user.Password = string(hashedPassword) // Store the hashed password

	if err := s.userRepo.Create(user); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to register user", err)
	}

	token, err := s.codec.Issue(user.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to generate token", err)
	}

	return &AuthResult{Token: token, User: user.Public()}, nil
}

// Login authenticates a user by email and password and issues a token.
// A missing user and a wrong password yield the same error so callers
// cannot enumerate accounts.
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, apperrors.New(apperrors.KindValidation, "email and password are required")
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindUserNotFound {
			return nil, apperrors.New(apperrors.KindInvalidCredentials, "invalid email or password")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.New(apperrors.KindInvalidCredentials, "invalid email or password")
	}

	token, err := s.codec.Issue(user.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to generate token", err)
	}

	return &AuthResult{Token: token, User: user.Public()}, nil
}

// VerifyToken validates a bearer token and returns the embedded user ID.
// Failures wrap the token codec's cause errors.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	return s.codec.Verify(tokenString)
}

// ResolveUser verifies a token and loads the user it refers to.
func (s *AuthService) ResolveUser(tokenString string) (*models.PublicUser, error) {
	userID, err := s.codec.Verify(tokenString)
	if err != nil {
		log.Printf("Token verification failed: %v", err)
		return nil, apperrors.Wrap(apperrors.KindUnauthenticated, tokenFailureMessage(err), err)
	}
	return s.GetUserByID(userID)
}

// GetUserByID loads a user's public view by ID.
func (s *AuthService) GetUserByID(id string) (*models.PublicUser, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// tokenFailureMessage maps a codec failure to its client-facing message.
func tokenFailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "token expired"
	default:
		return "invalid token"
	}
}
