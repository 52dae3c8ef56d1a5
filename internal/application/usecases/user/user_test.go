package user

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/hilthontt/devtea/internal/domain"
	"github.com/hilthontt/devtea/internal/infrastructure/logging"
	"github.com/hilthontt/devtea/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func newUseCase(t *testing.T) UserUseCase {
	t.Helper()
	uc, err := NewUserUseCase(repository.NewIdentityRepository(), logging.NewNopLogger())
	require.NoError(t, err)
	return uc
}

func TestCreateUser(t *testing.T) {
	uc := newUseCase(t)

	identity, err := uc.Create(context.Background(), CreateInput{Email: "ada@example.com", Name: "Ada Lovelace", Avatar: "https://example.com/a.png"})
	require.NoError(t, err)

	assert.Equal(t, "adalovelace", identity.Username)
	assert.Regexp(t, userCodePattern, identity.UserCode)
	assert.NotEmpty(t, identity.ID)
	assert.Equal(t, "https://example.com/a.png", identity.Avatar)
}

func TestCreateUserSuffixesTakenUsernames(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	var names []string
	for i := 0; i < 3; i++ {
		identity, err := uc.Create(ctx, CreateInput{Name: "Ada Lovelace"})
		require.NoError(t, err)
		names = append(names, identity.Username)
	}

	assert.Equal(t, []string{"adalovelace", "adalovelace1", "adalovelace2"}, names)
}

func TestCreateUserRejectsBadInput(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, CreateInput{Name: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, CreateInput{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, CreateInput{Name: "Ada", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchUsers(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := uc.Create(ctx, CreateInput{Name: fmt.Sprintf("Dev %d", i)})
		require.NoError(t, err)
	}
	grace, err := uc.Create(ctx, CreateInput{Name: "Grace Hopper"})
	require.NoError(t, err)

	results, err := uc.Search(ctx, "DEV")
	require.NoError(t, err)
	require.Len(t, results, 10)
	assert.Equal(t, "dev0", results[0].Username)
	assert.Equal(t, "dev2", results[2].Username)
	assert.Equal(t, "dev9", results[9].Username)

	results, err = uc.Search(ctx, grace.UserCode)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	results, err = uc.Search(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDeleteUser(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	identity, err := uc.Create(ctx, CreateInput{Name: "Linus"})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, identity.ID))
	assert.ErrorIs(t, uc.Delete(ctx, identity.ID), domain.ErrIdentityNotFound)
}
