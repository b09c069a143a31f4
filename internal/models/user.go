package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/larenzzx/aetas-cert-tracker/internal/authz"
)

// User is an employee or administrator account. Accounts are never hard
// deleted; deactivation flips IsActive so certificates keep a valid owner.
type User struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email              string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash       string     `gorm:"size:128;not null" json:"-"`
	FirstName          string     `gorm:"size:50;not null" json:"first_name"`
	LastName           string     `gorm:"size:50;not null" json:"last_name"`
	Department         string     `gorm:"size:100" json:"department"`
	Position           string     `gorm:"size:100" json:"position"`
	Role               string     `gorm:"size:20;not null;default:'EMPLOYEE';index" json:"role"`
	IsStaff            bool       `gorm:"default:false" json:"is_staff"`
	IsActive           bool       `gorm:"default:true" json:"is_active"`
	IsSuperuser        bool       `gorm:"default:false" json:"-"`
	MustChangePassword bool       `gorm:"default:false" json:"must_change_password"`
	ProfileImagePath   string     `gorm:"size:255" json:"profile_image_path,omitempty"`
	DateJoined         time.Time  `gorm:"not null" json:"date_joined"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	UpdatedAt          time.Time  `json:"updated_at"`

	Certificates []Certificate `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now().UTC()
	}
	return nil
}

// BeforeSave keeps the email normalized and the staff flag tied to the role.
// Invariant: IsStaff == (Role == ADMIN), except for superusers, which keep
// staff access regardless of role.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	if u.IsSuperuser {
		u.IsStaff = true
	} else {
		u.IsStaff = u.Role == authz.RoleAdmin
	}
	return nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsAdmin() bool {
	return u.Role == authz.RoleAdmin || u.IsSuperuser
}

// Principal is the explicit acting-user value handed to the authorization
// gate and the services. Nothing below the handlers reads request state.
func (u *User) Principal() authz.Principal {
	return authz.Principal{
		ID:        u.ID,
		Role:      u.Role,
		Superuser: u.IsSuperuser,
		Active:    u.IsActive,
	}
}

// NormalizeEmail lowercases and trims an address so lookups and the unique
// index agree on identity.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
