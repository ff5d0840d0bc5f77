package dto

import (
	"github.com/calentasker/calentasker-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID              uint64 `json:"id"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	DisplayUsername string `json:"display_username"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	ProfilePicture  string `json:"profile_picture,omitempty"`
	Active          bool   `json:"active"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:              user.ID,
		Email:           user.Email,
		Username:        user.Username,
		DisplayUsername: user.DisplayUsername(),
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		ProfilePicture:  user.ProfilePicture,
		Active:          user.Active,
	}
}
