package model

import (
	"strings"
	"time"
)

// DemoUser is a built-in account that is never persisted.
type DemoUser struct {
	User
	Password string
}

var demoCreatedAt = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

var demoUsers = [...]DemoUser{
	{
		User: User{
			ID:        "admin123",
			Name:      "Admin User",
			Email:     "admin@todo.com",
			Role:      RoleAdmin,
			CreatedAt: demoCreatedAt,
		},
		Password: "admin123",
	},
	{
		User: User{
			ID:        "user123",
			Name:      "Regular User",
			Email:     "user@todo.com",
			Role:      RoleUser,
			CreatedAt: demoCreatedAt,
		},
		Password: "user123",
	},
}

// DemoUsers returns a copy of the demo table.
func DemoUsers() []DemoUser {
	out := make([]DemoUser, len(demoUsers))
	copy(out, demoUsers[:])
	return out
}

func DemoUserCount() int {
	return len(demoUsers)
}

func FindDemoUserByID(id string) (DemoUser, bool) {
	for _, u := range demoUsers {
		if u.ID == id {
			return u, true
		}
	}
	return DemoUser{}, false
}

func FindDemoUserByEmail(email string) (DemoUser, bool) {
	for _, u := range demoUsers {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, true
		}
	}
	return DemoUser{}, false
}
