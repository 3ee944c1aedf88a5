package models

// User represents a registered account.
// Password holds the bcrypt digest and is never returned in JSON responses.
type User struct {
	ID       int64  `json:"id" db:"id"`
	Email    string `json:"email" db:"email"`
	Password string `json:"-" db:"password"`
}

// CredentialsRequest is the body of /api/auth/signup and /api/auth/login
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MeResponse describes the signed-in user
type MeResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// MessageResponse is the generic {"message": ...} body used by the auth endpoints
type MessageResponse struct {
	Message string      `json:"message"`
	User    *MeResponse `json:"user,omitempty"`
}
