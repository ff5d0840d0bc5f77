package services

import (
	"testing"

	"github.com/calentasker/calentasker-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type userTestEnv struct {
	db          *gorm.DB
	userService *UserService
}

func setupUserTestEnv(t *testing.T) userTestEnv {
	t.Helper()

	db := openTestDB(t)

	return userTestEnv{
		db:          db,
		userService: NewUserService(repository.NewUserRepository(db)),
	}
}

func TestUserService_Signup(t *testing.T) {
	env := setupUserTestEnv(t)

	user, err := env.userService.Signup(SignupInput{
		Email:    "new@example.com",
		Username: "newbie",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.True(t, user.Active)
	require.NotEqual(t, "supersecret", user.PasswordHash)
}

func TestUserService_Signup_DerivesUsername(t *testing.T) {
	env := setupUserTestEnv(t)

	user, err := env.userService.Signup(SignupInput{
		Email:     "new@example.com",
		FirstName: "New",
		LastName:  "User",
		Password:  "supersecret",
	})
	require.NoError(t, err)
	require.Equal(t, "New_User", user.Username)

	// Without names the username stays blank and display falls back to email.
	nameless, err := env.userService.Signup(SignupInput{
		Email:    "blank@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.Empty(t, nameless.Username)
	require.Equal(t, "blank@example.com", nameless.DisplayUsername())
}

func TestUserService_Signup_Validation(t *testing.T) {
	env := setupUserTestEnv(t)

	_, err := env.userService.Signup(SignupInput{Password: "supersecret"})
	require.ErrorIs(t, err, ErrEmailRequired)

	_, err = env.userService.Signup(SignupInput{Email: "a@example.com", Password: "short"})
	require.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = env.userService.Signup(SignupInput{Email: "taken@example.com", Username: "first", Password: "supersecret"})
	require.NoError(t, err)

	_, err = env.userService.Signup(SignupInput{Email: "taken@example.com", Username: "second", Password: "supersecret"})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = env.userService.Signup(SignupInput{Email: "other@example.com", Username: "first", Password: "supersecret"})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUserService_Login(t *testing.T) {
	env := setupUserTestEnv(t)

	created, err := env.userService.Signup(SignupInput{
		Email:    "login@example.com",
		Username: "login_user",
		Password: "supersecret",
	})
	require.NoError(t, err)

	byEmail, err := env.userService.Login("login@example.com", "supersecret")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)

	byUsername, err := env.userService.Login("LOGIN_USER", "supersecret")
	require.NoError(t, err)
	require.Equal(t, created.ID, byUsername.ID)

	_, err = env.userService.Login("login@example.com", "wrongpassword")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.userService.Login("nobody@example.com", "supersecret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Login_InactiveUser(t *testing.T) {
	env := setupUserTestEnv(t)

	user, err := env.userService.Signup(SignupInput{
		Email:    "gone@example.com",
		Username: "gone",
		Password: "supersecret",
	})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(user).Update("active", false).Error)

	_, err = env.userService.Login("gone@example.com", "supersecret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_UpdateProfile_OwnerOnly(t *testing.T) {
	env := setupUserTestEnv(t)

	owner, err := env.userService.Signup(SignupInput{
		Email:    "owner@example.com",
		Username: "owner",
		Password: "supersecret",
	})
	require.NoError(t, err)

	other, err := env.userService.Signup(SignupInput{
		Email:    "other@example.com",
		Username: "other",
		Password: "supersecret",
	})
	require.NoError(t, err)

	name := "Hijacked"
	_, err = env.userService.UpdateProfile(owner.ID, other.ID, UpdateProfileInput{FirstName: &name})
	require.ErrorIs(t, err, ErrNotProfileOwner)

	first := "Olive"
	updated, err := env.userService.UpdateProfile(owner.ID, owner.ID, UpdateProfileInput{FirstName: &first})
	require.NoError(t, err)
	require.Equal(t, "Olive", updated.FirstName)
}

func TestUserService_UpdateProfile_ClearedUsernameIsRederived(t *testing.T) {
	env := setupUserTestEnv(t)

	user, err := env.userService.Signup(SignupInput{
		Email:     "re@example.com",
		Username:  "explicit",
		FirstName: "Rena",
		LastName:  "Ito",
		Password:  "supersecret",
	})
	require.NoError(t, err)

	blank := ""
	updated, err := env.userService.UpdateProfile(user.ID, user.ID, UpdateProfileInput{Username: &blank})
	require.NoError(t, err)
	require.Equal(t, "Rena_Ito", updated.Username)
}
