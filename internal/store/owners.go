package store

import (
	"context"
	"fmt"

	"github.com/jocilejr/whatsbot/internal/model"
)

func (s *Store) CreateOwner(ctx context.Context, name, login, secret string) (model.Owner, error) {
	var created model.Owner
	err := s.mutate(ctx, "create_owner", func(next *model.Snapshot) (bool, error) {
		if next.OwnerIndexByLogin(login) >= 0 {
			return false, fmt.Errorf("login %q already exists: %w", login, ErrConflict)
		}
		created = model.Owner{
			ID:        s.newID(),
			Name:      name,
			Login:     login,
			Secret:    secret,
			CreatedAt: s.now(),
			Devices:   []model.Device{},
		}
		next.Owners = append(next.Owners, created)
		next.Conversations[created.ID] = []model.Conversation{}
		next.Campaigns[created.ID] = []model.Campaign{}
		return true, nil
	})
	if err != nil {
		return model.Owner{}, err
	}
	return created.Clone(), nil
}

func (s *Store) GetOwner(id string) (model.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.snap.OwnerIndex(id)
	if i < 0 {
		return model.Owner{}, ownerNotFound(id)
	}
	return s.snap.Owners[i].Clone(), nil
}

func (s *Store) GetOwnerByLogin(login string) (model.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.snap.OwnerIndexByLogin(login)
	if i < 0 {
		return model.Owner{}, fmt.Errorf("login %q: %w", login, ErrNotFound)
	}
	return s.snap.Owners[i].Clone(), nil
}

func (s *Store) ListOwners() []model.Owner {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]model.Owner, 0, len(s.snap.Owners))
	for _, o := range s.snap.Owners {
		result = append(result, o.Clone())
	}
	return result
}

// UpdateOwner replaces name, login and secret.
func (s *Store) UpdateOwner(ctx context.Context, id, name, login, secret string) (model.Owner, error) {
	var updated model.Owner
	err := s.mutate(ctx, "update_owner", func(next *model.Snapshot) (bool, error) {
		i := next.OwnerIndex(id)
		if i < 0 {
			return false, ownerNotFound(id)
		}
		if login != next.Owners[i].Login {
			if j := next.OwnerIndexByLogin(login); j >= 0 && j != i {
				return false, fmt.Errorf("login %q already exists: %w", login, ErrConflict)
			}
		}
		o := &next.Owners[i]
		o.Name = name
		o.Login = login
		o.Secret = secret
		updated = *o
		return true, nil
	})
	if err != nil {
		return model.Owner{}, err
	}
	return updated.Clone(), nil
}

// DeleteOwner removes the owner together with its devices, conversations and
// campaigns. It reports false when the owner does not exist.
func (s *Store) DeleteOwner(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := s.mutate(ctx, "delete_owner", func(next *model.Snapshot) (bool, error) {
		i := next.OwnerIndex(id)
		if i < 0 {
			return false, nil
		}
		next.Owners = append(next.Owners[:i], next.Owners[i+1:]...)
		delete(next.Conversations, id)
		delete(next.Campaigns, id)
		deleted = true
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}
