package adapters

import (
	"time"

	"auth_backend/internal/feature/auth/domain/entity"
)

// UserModel is the GORM model for the users table.
// It is the only struct that ever holds both the identity and the password hash.
type UserModel struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ToEntity converts the GORM model to the response-safe domain entity.
func (m *UserModel) ToEntity() *entity.User {
	return &entity.User{
		ID:        m.ID,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
	}
}

// credentialRow is the narrow projection selected for password verification.
type credentialRow struct {
	ID           uint
	Email        string
	PasswordHash string
}

func (r *credentialRow) toCredential() *entity.Credential {
	return &entity.Credential{
		UserID:       r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
	}
}
