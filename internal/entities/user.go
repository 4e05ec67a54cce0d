package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User owns appartment listings. Accounts imported from the legacy site
// have no credentials until the owner claims them via password reset.
type User struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	FirstName        string    `gorm:"size:255" json:"firstName"`
	LastName         string    `gorm:"size:255" json:"lastName"`
	Email            string    `gorm:"uniqueIndex;size:255" json:"email"`
	Phone            string    `gorm:"size:50" json:"phone"`
	PasswordHash     string    `gorm:"size:255" json:"-"`
	EmailIsValidated bool      `gorm:"default:false" json:"emailIsValidated"`
	Admin            bool      `gorm:"default:false;index" json:"admin"`
	AgencyName       string    `gorm:"size:255" json:"agencyName"`
	AgencyWebsite    string    `gorm:"size:255" json:"agencyWebsite"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	Appartments []Appartment `gorm:"foreignKey:OwnerID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// EmailValidation is a one-time token proving ownership of an address.
type EmailValidation struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;size:36" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Expires   time.Time `json:"expires"`
	CreatedAt time.Time `json:"created_at"`
}

func (v *EmailValidation) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// PasswordReset is a one-time token allowing a password change.
type PasswordReset struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;size:36" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Expires   time.Time `json:"expires"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *PasswordReset) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (User) TableName() string {
	return "users"
}

func (EmailValidation) TableName() string {
	return "email_validations"
}

func (PasswordReset) TableName() string {
	return "password_resets"
}

// Name returns the user's display name.
func (u User) Name() string {
	if u.FirstName == "" {
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}
