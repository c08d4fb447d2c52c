package requests

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"smart-certify/certify-backend/pkg/workflows"
)

// Repository persists certificate requests
type Repository interface {
	Create(ctx context.Context, req *CertificateRequest) error
	GetPending(ctx context.Context, id uint) (*CertificateRequest, error)
	GetByID(ctx context.Context, id uint) (*CertificateRequest, error)
	ListByStudent(ctx context.Context, studentName string) ([]CertificateRequest, error)
	ListAll(ctx context.Context) ([]CertificateRequest, error)
	MarkApproved(ctx context.Context, id uint, approvedBy, pdfPath string, at time.Time) error
	MarkRejected(ctx context.Context, id uint, rejectedBy string, at time.Time) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm backed repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// AutoMigrate creates or updates the requests table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&CertificateRequest{})
}

func (r *gormRepository) Create(ctx context.Context, req *CertificateRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *gormRepository) GetPending(ctx context.Context, id uint) (*CertificateRequest, error) {
	var req CertificateRequest
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, workflows.StatusPending).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uint) (*CertificateRequest, error) {
	var req CertificateRequest
	err := r.db.WithContext(ctx).First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *gormRepository) ListByStudent(ctx context.Context, studentName string) ([]CertificateRequest, error) {
	var out []CertificateRequest
	err := r.db.WithContext(ctx).
		Where("student_name = ?", studentName).
		Order("request_date DESC").
		Find(&out).Error
	return out, err
}

func (r *gormRepository) ListAll(ctx context.Context) ([]CertificateRequest, error) {
	var out []CertificateRequest
	err := r.db.WithContext(ctx).Order("request_date DESC").Find(&out).Error
	return out, err
}

// MarkApproved and MarkRejected only touch rows that are still Pending, so a
// request is decided at most once even under concurrent admins.
func (r *gormRepository) MarkApproved(ctx context.Context, id uint, approvedBy, pdfPath string, at time.Time) error {
	return r.decide(ctx, id, map[string]interface{}{
		"status":        workflows.StatusApproved,
		"approved_by":   approvedBy,
		"approved_date": at,
		"pdf_path":      pdfPath,
	})
}

func (r *gormRepository) MarkRejected(ctx context.Context, id uint, rejectedBy string, at time.Time) error {
	return r.decide(ctx, id, map[string]interface{}{
		"status":        workflows.StatusRejected,
		"approved_by":   rejectedBy,
		"approved_date": at,
	})
}

func (r *gormRepository) decide(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&CertificateRequest{}).
		Where("id = ? AND status = ?", id, workflows.StatusPending).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}
