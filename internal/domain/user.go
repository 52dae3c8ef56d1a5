package domain

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/hilthontt/devtea/internal/infrastructure/validate"
)

var ErrUsernameTaken = errors.New("username already taken")

var whitespace = regexp.MustCompile(`\s+`)

// Identity is an account issued by the user directory. The chat core only ever
// sees its ID and Username.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar,omitempty"`
	UserCode  string    `json:"userCode"`
	CreatedAt time.Time `json:"createdAt"`
}

var validateDisplayName = validate.Field("name",
	validate.Required(),
	validate.MaxLength(64),
)

var validateEmail = validate.Field("email", validate.Email())

// BaseUsername lowercases the display name and drops all whitespace.
func BaseUsername(name string) (string, error) {
	if err := validateDisplayName(name); err != nil {
		return "", err
	}
	return whitespace.ReplaceAllString(strings.ToLower(name), ""), nil
}

func ValidateEmail(email string) error {
	return validateEmail(email)
}

// Matches reports a case-insensitive hit on username, user code or name.
func (i *Identity) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(i.Username), q) ||
		strings.Contains(strings.ToLower(i.UserCode), q) ||
		strings.Contains(strings.ToLower(i.Name), q)
}

type IdentityRepository interface {
	// Create fails with ErrUsernameTaken when the username is in use.
	Create(ctx context.Context, identity *Identity) error
	GetByID(ctx context.Context, id string) (*Identity, error)
	Search(ctx context.Context, query string) ([]Identity, error)
	Delete(ctx context.Context, id string) error
}
