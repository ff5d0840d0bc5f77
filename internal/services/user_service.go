package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/calentasker/calentasker-api/internal/constants"
	"github.com/calentasker/calentasker-api/internal/models"
	"github.com/calentasker/calentasker-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailRequired        = errors.New("email is required")
	ErrEmailTaken           = errors.New("email already registered")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrInvalidCredentials   = errors.New("invalid email/username or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotProfileOwner      = errors.New("you can only edit your own profile")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// UserService handles identity and authentication business logic.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Signup registers a new user. When no username is supplied one is derived
// from the first and last name; a user with neither name keeps a blank
// username and is displayed by email.
func (s *UserService) Signup(input SignupInput) (*models.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user := &models.User{
		Email:     email,
		Username:  strings.TrimSpace(input.Username),
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Active:    true,
	}
	user.EnsureUsername()

	if err := s.ensureUsernameAvailable(user.Username, 0); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}
	user.PasswordHash = string(hashedPassword)

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and returns the authenticated user. The
// identifier may be either an email or a username, matched case-insensitively.
func (s *UserService) Login(identifier, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(identifier)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
		user, err = s.userRepo.FindByUsername(identifier)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
	}

	if !user.Active {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// UpdateProfileInput represents a partial profile update.
type UpdateProfileInput struct {
	Username  *string
	FirstName *string
	LastName  *string
}

// UpdateProfile applies a partial update to a user's own profile. Editing
// someone else's profile is never permitted, regardless of any group role.
func (s *UserService) UpdateProfile(userID, actorID uint64, input UpdateProfileInput) (*models.User, error) {
	if userID != actorID {
		return nil, ErrNotProfileOwner
	}

	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Username != nil {
		user.Username = strings.TrimSpace(*input.Username)
	}

	// A cleared username is re-derived from the names; it stays blank when
	// both names are blank, with no validation error.
	user.EnsureUsername()

	if user.Username != "" {
		if err := s.ensureUsernameAvailable(user.Username, user.ID); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// SetProfilePicture records the stored path of a user's profile picture.
func (s *UserService) SetProfilePicture(userID, actorID uint64, path string) (*models.User, error) {
	if userID != actorID {
		return nil, ErrNotProfileOwner
	}

	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	user.ProfilePicture = path
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// ensureUsernameAvailable rejects a non-blank username already held by a
// different user. Blank usernames are always allowed.
func (s *UserService) ensureUsernameAvailable(username string, selfID uint64) error {
	if username == "" {
		return nil
	}

	existing, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check username: %w", err)
	}
	if existing.ID != selfID {
		return ErrUsernameTaken
	}
	return nil
}
