package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/filemart-io/filemart/internal/shared/db"
)

// UserEmailResolver reads email addresses from the users table the identity
// service maintains. This engine never writes user rows.
type UserEmailResolver struct {
	db *gorm.DB
}

func NewUserEmailResolver(db *gorm.DB) *UserEmailResolver {
	return &UserEmailResolver{db: db}
}

func (r *UserEmailResolver) EmailForUser(ctx context.Context, userID uint) (string, error) {
	var email string
	err := r.db.WithContext(ctx).
		Table("users").
		Select("email").
		Scopes(db.NotDeleted()).
		Where("id = ?", userID).
		Scan(&email).Error
	if err != nil {
		return "", fmt.Errorf("failed to look up user email: %w", err)
	}
	return email, nil
}
