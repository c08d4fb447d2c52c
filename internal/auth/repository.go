package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Repository persists student and admin accounts
type Repository interface {
	CreateStudent(ctx context.Context, s *Student) error
	// FindStudent looks a student up by student id or email; nil when absent.
	FindStudent(ctx context.Context, identifier string) (*Student, error)
	StudentExists(ctx context.Context, studentID, email string) (bool, error)

	CreateAdmin(ctx context.Context, a *Admin) error
	FindAdmin(ctx context.Context, identifier string) (*Admin, error)
	AdminExists(ctx context.Context, adminID, email string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a gorm backed account repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// AutoMigrate creates or updates the account tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Student{}, &Admin{})
}

func (r *repository) CreateStudent(ctx context.Context, s *Student) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func (r *repository) FindStudent(ctx context.Context, identifier string) (*Student, error) {
	var s Student
	err := r.db.WithContext(ctx).
		Where("student_id = ? OR email = ?", identifier, identifier).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find student: %w", err)
	}
	return &s, nil
}

func (r *repository) StudentExists(ctx context.Context, studentID, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Student{}).
		Where("student_id = ? OR email = ?", studentID, email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check student: %w", err)
	}
	return count > 0, nil
}

func (r *repository) CreateAdmin(ctx context.Context, a *Admin) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *repository) FindAdmin(ctx context.Context, identifier string) (*Admin, error) {
	var a Admin
	err := r.db.WithContext(ctx).
		Where("admin_id = ? OR email = ?", identifier, identifier).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}
	return &a, nil
}

func (r *repository) AdminExists(ctx context.Context, adminID, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Admin{}).
		Where("admin_id = ? OR email = ?", adminID, email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check admin: %w", err)
	}
	return count > 0, nil
}
