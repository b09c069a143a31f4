package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/larenzzx/aetas-cert-tracker/internal/authz"
	"github.com/larenzzx/aetas-cert-tracker/internal/dto"
	"github.com/larenzzx/aetas-cert-tracker/internal/models"
)

var (
	ErrForbidden    = errors.New("you do not have permission to perform this action")
	ErrAdminOnly    = errors.New("admin privileges are required")
	ErrEmailTaken   = errors.New("email already registered")
	ErrInvalidRole  = errors.New("invalid role")
	ErrInvalidInput = errors.New("invalid input")
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// RoleChangeOutcome reports what Update did about the role field, so the
// handler can audit an applied change.
type RoleChangeOutcome struct {
	Changed bool
	OldRole string
}

// Create makes a new account with a generated temporary password. Admin
// only; there is no self-service registration. The temporary password is
// returned exactly once.
func (s *UserService) Create(actor authz.Principal, req *dto.CreateUserRequest) (*models.User, string, error) {
	if !actor.IsAdmin() {
		return nil, "", ErrAdminOnly
	}

	email := models.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if len(strings.TrimSpace(req.FirstName)) < 2 || len(strings.TrimSpace(req.LastName)) < 2 {
		return nil, "", fmt.Errorf("%w: first and last name must be at least 2 characters", ErrInvalidInput)
	}

	role := req.Role
	if role == "" {
		role = authz.RoleEmployee
	}
	if !authz.ValidRole(role) {
		return nil, "", ErrInvalidRole
	}

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, "", ErrEmailTaken
	}

	tempPassword, err := GenerateTemporaryPassword(12)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate temporary password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:              email,
		PasswordHash:       string(hash),
		FirstName:          strings.TrimSpace(req.FirstName),
		LastName:           strings.TrimSpace(req.LastName),
		Department:         strings.TrimSpace(req.Department),
		Position:           strings.TrimSpace(req.Position),
		Role:               role,
		IsActive:           true,
		MustChangePassword: true,
	}

	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	return &user, tempPassword, nil
}

// Update edits a profile. The actor must own the profile or be an admin. A
// role change by a non-admin rejects the entire mutation before anything is
// applied; ErrRoleChangeForbidden surfaces distinctly so the denial can be
// audited as security-relevant.
func (s *UserService) Update(actor authz.Principal, userID uuid.UUID, req *dto.UpdateUserRequest) (*models.User, RoleChangeOutcome, error) {
	var outcome RoleChangeOutcome

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, outcome, ErrUserNotFound
	}

	if !authz.CanAct(actor, user.ID) {
		return nil, outcome, ErrForbidden
	}

	// The role guard runs before any field is applied: a denied role change
	// must not leave the other fields silently saved.
	if req.Role != nil {
		if !authz.CanAssignRole(actor) {
			return nil, outcome, authz.ErrRoleChangeForbidden
		}
		if !authz.ValidRole(*req.Role) {
			return nil, outcome, ErrInvalidRole
		}
	}

	if req.FirstName != nil {
		name := strings.TrimSpace(*req.FirstName)
		if len(name) < 2 {
			return nil, outcome, fmt.Errorf("%w: first name must be at least 2 characters", ErrInvalidInput)
		}
		user.FirstName = name
	}
	if req.LastName != nil {
		name := strings.TrimSpace(*req.LastName)
		if len(name) < 2 {
			return nil, outcome, fmt.Errorf("%w: last name must be at least 2 characters", ErrInvalidInput)
		}
		user.LastName = name
	}
	if req.Department != nil {
		user.Department = strings.TrimSpace(*req.Department)
	}
	if req.Position != nil {
		user.Position = strings.TrimSpace(*req.Position)
	}
	if req.ProfileImagePath != nil {
		user.ProfileImagePath = *req.ProfileImagePath
	}
	if req.Role != nil && *req.Role != user.Role {
		outcome = RoleChangeOutcome{Changed: true, OldRole: user.Role}
		user.Role = *req.Role
		// BeforeSave re-derives IsStaff from the new role.
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, RoleChangeOutcome{}, fmt.Errorf("failed to update user: %w", err)
	}

	return &user, outcome, nil
}

func (s *UserService) Get(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// List returns active users with aggregate certificate counts, optionally
// filtered by a search term over name, email, department and position.
func (s *UserService) List(search string) (*dto.EmployeeListResponse, error) {
	employees, err := s.employeeSummaries(search, false)
	if err != nil {
		return nil, err
	}

	resp := &dto.EmployeeListResponse{Employees: employees}
	for _, e := range employees {
		resp.TotalEmployees++
		if e.Role == authz.RoleAdmin {
			resp.TotalAdmins++
		}
		if e.TotalCerts > 0 {
			resp.WithCerts++
		}
	}
	return resp, nil
}

// Deactivate soft-deletes an account. Users are never hard-deleted so their
// certificates keep a valid owner.
func (s *UserService) Deactivate(actor authz.Principal, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrAdminOnly
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return ErrUserNotFound
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.RefreshToken{}).
			Where("user_id = ?", user.ID).
			Update("revoked", true).Error
	})
}

// EnsureBootstrapAdmin creates the initial superuser account when the
// configured email does not exist yet. It is the only path that sets the
// superuser flag.
func (s *UserService) EnsureBootstrapAdmin(email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	email = models.NormalizeEmail(email)
	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "System",
		LastName:     "Administrator",
		Role:         authz.RoleAdmin,
		IsActive:     true,
		IsSuperuser:  true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	return nil
}

// employeeSummaries aggregates certificate counts per user in one query.
func (s *UserService) employeeSummaries(search string, withCertsOnly bool) ([]dto.EmployeeSummary, error) {
	query := s.db.Model(&models.User{}).
		Select(`users.id, users.email, users.first_name, users.last_name,
			users.department, users.position, users.role, users.is_active,
			COUNT(certificates.id) AS total_certs,
			COALESCE(SUM(CASE WHEN certificates.status = 'ACTIVE' THEN 1 ELSE 0 END), 0) AS active_certs,
			COALESCE(SUM(CASE WHEN certificates.status = 'EXPIRED' THEN 1 ELSE 0 END), 0) AS expired_certs`).
		Joins("LEFT JOIN certificates ON certificates.user_id = users.id").
		Where("users.is_active = ?", true).
		Group("users.id, users.email, users.first_name, users.last_name, users.department, users.position, users.role, users.is_active").
		Order("users.first_name, users.last_name")

	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(users.first_name) LIKE ? OR LOWER(users.last_name) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(users.department) LIKE ? OR LOWER(users.position) LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}
	if withCertsOnly {
		query = query.Having("COUNT(certificates.id) > 0")
	}

	var employees []dto.EmployeeSummary
	if err := query.Scan(&employees).Error; err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}
