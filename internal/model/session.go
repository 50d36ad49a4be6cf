package model

import "time"

// UserProfile is the signed-in user as returned by the backend.
type UserProfile struct {
	CreatedAt        time.Time `json:"created_at,omitempty"`
	ID               string    `json:"id"`
	FullName         string    `json:"full_name"`
	CompanyName      string    `json:"company_name"`
	Email            string    `json:"email"`
	SubscriptionTier string    `json:"subscription_tier,omitempty"`
}

// Session pairs an opaque bearer token with the profile it was issued for.
// User is present if and only if Token is present.
type Session struct {
	User  *UserProfile `json:"user,omitempty"`
	Token string       `json:"token"`
}

// Valid reports whether the token/profile invariant holds.
func (s Session) Valid() bool {
	return s.Token != "" && s.User != nil
}

// Clone returns a deep copy so callers never share the profile pointer.
func (s Session) Clone() Session {
	out := Session{Token: s.Token}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}

// Credentials are the sign-in inputs.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the account-creation input.
type Registration struct {
	FullName    string `json:"full_name"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}
