package model

import "strings"

// SystemUserID attributes activities that no user performed
const SystemUserID = "system"

// User represents a board member
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"` // Initials
	Role     string `json:"role"`
	IsOnline bool   `json:"isOnline"`
	Color    string `json:"color"`
}

// Initials builds an avatar from the first letters of up to two name parts
func Initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		for _, r := range part {
			b.WriteString(strings.ToUpper(string(r)))
			break
		}
		if b.Len() >= 2 {
			break
		}
	}
	return b.String()
}

// DefaultUsers returns the members a fresh board starts with
func DefaultUsers() []User {
	users := []User{
		{ID: "user-1", Name: "Sarah Chen", Email: "sarah.chen@example.com", Role: "Product Manager", IsOnline: true, Color: "#4ECDC4"},
		{ID: "user-2", Name: "Marcus Johnson", Email: "marcus.j@example.com", Role: "Developer", IsOnline: true, Color: "#FFB347"},
		{ID: "user-3", Name: "Elena Rodriguez", Email: "elena.r@example.com", Role: "Designer", IsOnline: false, Color: "#A78BFA"},
		{ID: "user-4", Name: "David Kim", Email: "david.kim@example.com", Role: "QA Engineer", IsOnline: true, Color: "#FF6B6B"},
	}
	for i := range users {
		users[i].Avatar = Initials(users[i].Name)
	}
	return users
}
