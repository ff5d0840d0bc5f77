package models

import (
	"strings"
	"time"
)

type User struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Username       string    `gorm:"type:varchar(150);index" json:"username"`
	FirstName      string    `gorm:"type:varchar(150)" json:"first_name"`
	LastName       string    `gorm:"type:varchar(150)" json:"last_name"`
	ProfilePicture string    `gorm:"type:varchar(255)" json:"profile_picture"`
	PasswordHash   string    `gorm:"type:varchar(255);not null" json:"-"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	CreatedTasks []Task           `gorm:"foreignKey:CreatedByID" json:"-"`
	Assignments  []TaskAssignment `gorm:"foreignKey:UserID" json:"-"`
	Memberships  []GroupMember    `gorm:"foreignKey:UserID" json:"-"`
}

// DisplayUsername resolves the name shown for a user: the username when set,
// otherwise "first last", otherwise the email. Stable for identical inputs,
// so it is safe to sort and search on.
func (u *User) DisplayUsername() string {
	if u.Username != "" {
		return u.Username
	}
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	return u.Email
}

// EnsureUsername derives a username from the first and last name when none
// was supplied. A user with neither name keeps a blank username and display
// falls back to the email.
func (u *User) EnsureUsername() {
	if u.Username != "" {
		return
	}
	u.Username = strings.Trim(u.FirstName+"_"+u.LastName, "_")
}
