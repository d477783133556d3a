package model

// User represents a registered board member.
//
// PasswordHash is persisted in the document store but must never leave the
// server: API responses use PublicUser instead. An empty hash means the
// account cannot sign in with a password (seeded members, GitHub sign-ins).
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"` // lower-cased, unique across the store
	PasswordHash string `json:"passwordHash"`
	GitHubID     int64  `json:"githubId,omitempty"` // set once the account is linked to GitHub
}

// PublicUser is the shape of a user in API responses.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public strips the credential fields.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

// PublicUsers maps a slice of users to their public view.
func PublicUsers(users []User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}
