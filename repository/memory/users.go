package memory

import (
	"context"
	"strings"

	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	defer r.s.lock(ctx)()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = strings.ToLower(u.Email)
	if r.emailTaken(u.Email, u.ID) {
		return repository.ErrDuplicate
	}
	remember(ctx, r.s.users, u.ID)
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepository) Get(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) GetMany(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := []models.User{}
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			u.Password = ""
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	u.Email = strings.ToLower(u.Email)
	if r.emailTaken(u.Email, u.ID) {
		return repository.ErrDuplicate
	}
	remember(ctx, r.s.users, u.ID)
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	remember(ctx, r.s.users, id)
	delete(r.s.users, id)
	return nil
}

func (r *UserRepository) AdminExists(_ context.Context) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Role == models.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) emailTaken(email string, self primitive.ObjectID) bool {
	for id, u := range r.s.users {
		if id != self && u.Email == email {
			return true
		}
	}
	return false
}
