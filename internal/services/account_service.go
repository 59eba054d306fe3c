package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ocserv-tools/ocserv-panel/internal/models"
)

// AccountService handles panel account management: the initial admin,
// staff accounts and password changes.
type AccountService struct {
	db *gorm.DB
}

// NewAccountService creates a new account service instance.
func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// AdminExists reports whether an admin account has been created yet.
func (s *AccountService) AdminExists(ctx context.Context) (bool, error) {
	const op = "AccountService.AdminExists"

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("role = ?", models.RoleAdmin).
		Where("deleted_at IS NULL").
		Count(&count).Error
	if err != nil {
		return false, WrapDBError(op, err)
	}
	return count > 0, nil
}

// CreateAdmin creates the initial admin account. Fails when one already exists,
// the panel supports exactly one setup run.
func (s *AccountService) CreateAdmin(ctx context.Context, username, password string) (*models.Account, error) {
	const op = "AccountService.CreateAdmin"

	exists, err := s.AdminExists(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%s: %w: admin config exists", op, ErrDuplicate)
	}

	return s.create(ctx, op, username, password, models.RoleAdmin)
}

// CreateStaff creates a staff account. Creating an existing staff username
// returns the existing account unchanged.
func (s *AccountService) CreateStaff(ctx context.Context, username, password string) (*models.Account, bool, error) {
	const op = "AccountService.CreateStaff"

	var existing models.Account
	err := s.db.WithContext(ctx).
		Where("username = ?", username).
		Where("deleted_at IS NULL").
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, WrapDBError(op, err)
	}

	account, err := s.create(ctx, op, username, password, models.RoleStaff)
	if err != nil {
		return nil, false, err
	}
	return account, true, nil
}

func (s *AccountService) create(ctx context.Context, op, username, password, role string) (*models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	account := models.Account{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, WrapDBError(op, err)
	}
	return &account, nil
}

// ListStaffs returns all staff accounts.
func (s *AccountService) ListStaffs(ctx context.Context) ([]models.Account, error) {
	const op = "AccountService.ListStaffs"

	var staffs []models.Account
	err := s.db.WithContext(ctx).
		Where("role = ?", models.RoleStaff).
		Where("deleted_at IS NULL").
		Order("username").
		Find(&staffs).Error
	if err != nil {
		return nil, WrapDBError(op, err)
	}
	return staffs, nil
}

// GetByID retrieves an account by its ID.
func (s *AccountService) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	const op = "AccountService.GetByID"

	var account models.Account
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, WrapDBError(op, err)
	}
	return &account, nil
}

// DeleteStaff removes a staff account. Admin accounts cannot be deleted this way.
func (s *AccountService) DeleteStaff(ctx context.Context, id int64) error {
	const op = "AccountService.DeleteStaff"

	result := s.db.WithContext(ctx).
		Where("id = ?", id).
		Where("role = ?", models.RoleStaff).
		Delete(&models.Account{})
	if result.Error != nil {
		return WrapDBError(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: %w: staff", op, ErrNotFound)
	}
	return nil
}

// ChangePassword verifies the old password and sets a new one for the account.
func (s *AccountService) ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	const op = "AccountService.ChangePassword"

	account, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(oldPassword)); err != nil {
		return fmt.Errorf("%s: %w: old password does not match", op, ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	err = s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_hash":       string(hash),
			"password_changed_at": gorm.Expr("NOW()"),
		}).Error
	if err != nil {
		return WrapDBError(op, err)
	}
	return nil
}

// Suspend blocks an account from logging in.
func (s *AccountService) Suspend(ctx context.Context, id int64) error {
	return s.setSuspended(ctx, "AccountService.Suspend", id, true)
}

// Unsuspend restores a suspended account.
func (s *AccountService) Unsuspend(ctx context.Context, id int64) error {
	return s.setSuspended(ctx, "AccountService.Unsuspend", id, false)
}

func (s *AccountService) setSuspended(ctx context.Context, op string, id int64, suspended bool) error {
	value := gorm.Expr("NOW()")
	if !suspended {
		value = gorm.Expr("NULL")
	}

	result := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Update("suspended_at", value)
	if result.Error != nil {
		return WrapDBError(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
