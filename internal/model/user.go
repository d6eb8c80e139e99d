package model

import "time"

// User is a registered account. PasswordHash never leaves the service layer.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is the public view of the signed-in user.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Identity returns the public view of u.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, AvatarURL: u.AvatarURL}
}
