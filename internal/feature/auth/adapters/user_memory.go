package adapters

import (
	"context"
	"sync"
	"time"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/usecase"
)

// userMemory is an in-process UserRepository used for DB_DRIVER=memory and tests.
type userMemory struct {
	mu     sync.RWMutex
	nextID uint
	users  map[string]UserModel
}

var _ usecase.UserRepository = (*userMemory)(nil)

// NewUserMemory creates an empty in-memory repository.
func NewUserMemory() *userMemory {
	return &userMemory{users: make(map[string]UserModel)}
}

// Create stores a user. The email key is unique.
func (r *userMemory) Create(ctx context.Context, email, passwordHash string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[email]; ok {
		return nil, usecase.ErrEmailAlreadyExists
	}
	r.nextID++
	now := time.Now()
	m := UserModel{
		ID:           r.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[email] = m
	return m.ToEntity(), nil
}

// FindByEmail returns the stored credential for email.
func (r *userMemory) FindByEmail(ctx context.Context, email string) (*entity.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.users[email]
	if !ok {
		return nil, usecase.ErrUserNotFound
	}
	row := credentialRow{ID: m.ID, Email: m.Email, PasswordHash: m.PasswordHash}
	return row.toCredential(), nil
}

// UpdatePasswordHash replaces the stored hash of the user with userID.
func (r *userMemory) UpdatePasswordHash(ctx context.Context, userID uint, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for email, m := range r.users {
		if m.ID == userID {
			m.PasswordHash = passwordHash
			m.UpdatedAt = time.Now()
			r.users[email] = m
			return nil
		}
	}
	return usecase.ErrUserNotFound
}

// Len returns the number of stored users.
func (r *userMemory) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
