// Package users provides database operations for account management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail("jean@example.com")
package users

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ewen-lbh/loca7/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new user.
func (r *Repository) Create(user *entities.User) error {
	return r.db.Create(user).Error
}

// Update saves changes to an existing user.
func (r *Repository) Update(user *entities.User) error {
	return r.db.Save(user).Error
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id string) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExists reports whether an account already uses the address.
func (r *Repository) EmailExists(email string) (bool, error) {
	_, err := r.GetByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListAdmins returns every administrator account.
func (r *Repository) ListAdmins() ([]entities.User, error) {
	var admins []entities.User
	err := r.db.Where("admin = ?", true).Find(&admins).Error
	return admins, err
}

// ListEmails returns the addresses of every account, excluding those
// flagged invalid when validatedOnly is set.
func (r *Repository) ListEmails(validatedOnly bool) ([]string, error) {
	query := r.db.Model(&entities.User{})
	if validatedOnly {
		query = query.Where("email_is_validated = ?", true)
	}
	var emails []string
	err := query.Order("email ASC").Pluck("email", &emails).Error
	return emails, err
}

// ListEmailsWithoutCredentials returns the addresses of accounts that
// never set a password, typically imported owners yet to claim them.
func (r *Repository) ListEmailsWithoutCredentials() ([]string, error) {
	var emails []string
	err := r.db.Model(&entities.User{}).
		Where("password_hash = ?", "").
		Order("email ASC").
		Pluck("email", &emails).Error
	return emails, err
}

// DeleteNonAdmins removes every non-administrator account.
func (r *Repository) DeleteNonAdmins() error {
	return r.db.Where("admin = ?", false).Delete(&entities.User{}).Error
}

// CreateEmailValidation issues a validation token for the user.
func (r *Repository) CreateEmailValidation(userID string, ttl time.Duration) (*entities.EmailValidation, error) {
	validation := &entities.EmailValidation{
		UserID:  userID,
		Expires: time.Now().Add(ttl),
	}
	if err := r.db.Create(validation).Error; err != nil {
		return nil, err
	}
	return validation, nil
}

// ConsumeEmailValidation redeems a validation token: it marks the email
// as validated and deletes the token. Expired or unknown tokens fail.
func (r *Repository) ConsumeEmailValidation(tokenID string) (*entities.User, error) {
	var validation entities.EmailValidation
	if err := r.db.First(&validation, "id = ?", tokenID).Error; err != nil {
		return nil, err
	}
	if time.Now().After(validation.Expires) {
		r.db.Delete(&validation)
		return nil, errors.New("email validation token expired")
	}

	var user entities.User
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", validation.UserID).Error; err != nil {
			return err
		}
		user.EmailIsValidated = true
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		return tx.Delete(&validation).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreatePasswordReset issues a password reset token for the user.
func (r *Repository) CreatePasswordReset(userID string, ttl time.Duration) (*entities.PasswordReset, error) {
	reset := &entities.PasswordReset{
		UserID:  userID,
		Expires: time.Now().Add(ttl),
	}
	if err := r.db.Create(reset).Error; err != nil {
		return nil, err
	}
	return reset, nil
}

// ConsumePasswordReset redeems a reset token: it stores the new password
// hash and deletes the token. Expired or unknown tokens fail.
func (r *Repository) ConsumePasswordReset(tokenID, passwordHash string) (*entities.User, error) {
	var reset entities.PasswordReset
	if err := r.db.First(&reset, "id = ?", tokenID).Error; err != nil {
		return nil, err
	}
	if time.Now().After(reset.Expires) {
		r.db.Delete(&reset)
		return nil, errors.New("password reset token expired")
	}

	var user entities.User
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", reset.UserID).Error; err != nil {
			return err
		}
		user.PasswordHash = passwordHash
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		return tx.Delete(&reset).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
