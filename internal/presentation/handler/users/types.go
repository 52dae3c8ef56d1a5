package users

import "github.com/hilthontt/devtea/internal/domain"

// createUserRequest represents the identity returned by the sign-in provider
type createUserRequest struct {
	Email   string `json:"email" example:"ada@example.com"`               // Account email
	Name    string `json:"name" example:"Ada Lovelace"`                   // Display name
	Picture string `json:"picture" example:"https://example.com/ada.png"` // Avatar URL
}

// deleteUserRequest is the body of the DELETE alias under /auth/google
type deleteUserRequest struct {
	UserID string `json:"userId" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// userResponse wraps a freshly issued identity
type userResponse struct {
	User *domain.Identity `json:"user"`
}

// userSummary is a search hit; it never exposes the email
type userSummary struct {
	ID       string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Username string `json:"username" example:"adalovelace"`
	Name     string `json:"name" example:"Ada Lovelace"`
	UserCode string `json:"userCode" example:"K3ZQ9A"`
	Avatar   string `json:"avatar,omitempty"`
}

type searchResponse struct {
	Users []userSummary `json:"users"`
}

type deleteResponse struct {
	Success bool `json:"success" example:"true"`
}
