package domain

import "time"

const (
	RoleVisitor    = "visitor"
	RoleRegistered = "registered"
	RoleSubscriber = "subscriber"
	RoleAdmin      = "admin"

	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// User is a stored account. PasswordHash is empty for Google-only accounts
// and never serialized to clients.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password,omitempty" json:"-"`
	Role         string    `bson:"role" json:"role"`
	Avatar       string    `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Location     string    `bson:"location,omitempty" json:"location,omitempty"`
	AuthProvider string    `bson:"authProvider" json:"authProvider"`
	GoogleID     string    `bson:"googleId,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// PublicProfile is the display-form snapshot other entities embed when a
// referenced author is resolved.
type PublicProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, Name: u.Name, Email: u.Email}
}
