package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/hilthontt/devtea/internal/domain"
	"github.com/maruel/natural"
)

type identityRepository struct {
	identities    map[string]*domain.Identity // ID -> Identity
	usernameIndex map[string]string           // username -> ID
	mu            *sync.RWMutex
}

func NewIdentityRepository() domain.IdentityRepository {
	return &identityRepository{
		identities:    make(map[string]*domain.Identity),
		usernameIndex: make(map[string]string),
		mu:            &sync.RWMutex{},
	}
}

func (r *identityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	if identity == nil || identity.ID == "" || identity.Username == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.usernameIndex[identity.Username]; taken {
		return domain.ErrUsernameTaken
	}

	cpy := *identity
	r.identities[identity.ID] = &cpy
	r.usernameIndex[identity.Username] = identity.ID

	return nil
}

func (r *identityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identity, ok := r.identities[id]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}

	cpy := *identity
	return &cpy, nil
}

// Search returns matches in natural username order.
func (r *identityRepository) Search(ctx context.Context, query string) ([]domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]domain.Identity, 0)
	for _, identity := range r.identities {
		if identity.Matches(query) {
			results = append(results, *identity)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return natural.Less(results[i].Username, results[j].Username)
	})

	return results, nil
}

func (r *identityRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.identities[id]
	if !ok {
		return domain.ErrIdentityNotFound
	}

	delete(r.usernameIndex, identity.Username)
	delete(r.identities, id)

	return nil
}
