package jsonfile

import (
	"context"
	"strings"

	"github.com/solarops/installation-tracker/internal/core/domain"
)

// UserRepository keeps file-backed users in a single JSON array.
type UserRepository struct {
	path string
}

func NewUserRepository(path string) *UserRepository {
	return &UserRepository{path: path}
}

func (r *UserRepository) load() ([]domain.User, error) {
	var users []domain.User
	err := readArray(r.path, &users)
	if isNotExist(err) {
		users = []domain.User{}
		return users, writeArray(r.path, users)
	}
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	users, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			return &users[i], nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Create appends user. Usernames are unique ignoring case.
func (r *UserRepository) Create(_ context.Context, user domain.User) (*domain.User, error) {
	users, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, user.Username) {
			return nil, domain.ErrUserExists
		}
	}

	users = append(users, user)
	if err := writeArray(r.path, users); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) List(_ context.Context) ([]domain.User, error) {
	return r.load()
}
