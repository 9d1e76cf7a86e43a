package models

import "time"

// Role labels a user. Roles only drive what is displayed.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// User is an account stored inside the state document.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	Role         Role      `json:"role"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CurrentUser is the logged-in user as exposed to the rest of the app.
// It never carries the password hash.
type CurrentUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// Projection returns the session view of the user.
func (u User) Projection() CurrentUser {
	return CurrentUser{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		Name:     u.Name,
		Email:    u.Email,
	}
}

// UserByUsername returns the user with the given username.
func (s *AppState) UserByUsername(username string) (User, bool) {
	for _, u := range s.Users {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}

// UserByID returns the user with the given id.
func (s *AppState) UserByID(id string) (User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}
