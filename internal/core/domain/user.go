package domain

// User is a login identity with its bcrypt hash.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	CreatedAt    string `json:"createdAt"`
}

// Identity is the authenticated caller carried through a request. The zero
// value means anonymous (shared pool).
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Identity strips the credential material from u.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username}
}

// IsAnonymous reports whether no user is attached.
func (id Identity) IsAnonymous() bool {
	return id.ID == "" && id.Username == ""
}

// UserSummary is the listing view of a user; hashes are never exposed.
type UserSummary struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	CreatedAt    string `json:"createdAt"`
	ManagedByEnv bool   `json:"managedByEnv,omitempty"`
}
