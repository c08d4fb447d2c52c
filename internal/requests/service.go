package requests

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"smart-certify/certify-backend/internal/certificates"
	"smart-certify/certify-backend/internal/logging"
	"smart-certify/certify-backend/internal/notifications"
	"smart-certify/certify-backend/pkg/workflows"
)

// Renderer turns an approved request into a PDF and returns its file name.
type Renderer interface {
	Generate(ctx context.Context, req certificates.RenderRequest) (string, error)
}

// Service holds the certificate request workflow
type Service interface {
	Submit(ctx context.Context, in SubmitInput) (*CertificateRequest, error)
	StatusByStudent(ctx context.Context, studentName string) ([]CertificateRequest, error)
	ListAll(ctx context.Context) ([]CertificateRequest, error)
	Approve(ctx context.Context, id uint, approvedBy string) (*CertificateRequest, error)
	Reject(ctx context.Context, id uint, rejectedBy string) (*CertificateRequest, error)
	Export(ctx context.Context, w io.Writer) error
}

type service struct {
	repo         Repository
	renderer     Renderer
	publisher    notifications.Publisher
	stateMachine *workflows.StateMachine
	logger       *zap.Logger
	now          func() time.Time
}

// NewService creates the request service. A nil publisher drops events.
func NewService(repo Repository, renderer Renderer, publisher notifications.Publisher, logger *zap.Logger) Service {
	if publisher == nil {
		publisher = notifications.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		repo:         repo,
		renderer:     renderer,
		publisher:    publisher,
		stateMachine: workflows.NewStateMachine(),
		logger:       logger,
		now:          time.Now,
	}
}

func (s *service) Submit(ctx context.Context, in SubmitInput) (*CertificateRequest, error) {
	if strings.TrimSpace(in.StudentName) == "" || strings.TrimSpace(in.College) == "" ||
		strings.TrimSpace(in.CertificateType) == "" || strings.TrimSpace(in.GeneratedLetter) == "" {
		return nil, ErrMissingFields
	}

	req := &CertificateRequest{
		StudentName:     in.StudentName,
		College:         in.College,
		CertificateType: in.CertificateType,
		GeneratedLetter: in.GeneratedLetter,
		Status:          workflows.StatusPending,
		RequestDate:     s.now(),
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to store request: %w", err)
	}

	logging.FromContext(ctx, s.logger).Info("Certificate request submitted",
		zap.Uint("certificate_request_id", req.ID),
		zap.String("certificate_type", req.CertificateType))
	s.publish(ctx, notifications.EventRequestSubmitted, req)

	return req, nil
}

func (s *service) StatusByStudent(ctx context.Context, studentName string) ([]CertificateRequest, error) {
	return s.repo.ListByStudent(ctx, studentName)
}

func (s *service) ListAll(ctx context.Context) ([]CertificateRequest, error) {
	return s.repo.ListAll(ctx)
}

// Approve renders the certificate and marks the request Approved. When the
// render fails the request stays Pending and can be approved again.
func (s *service) Approve(ctx context.Context, id uint, approvedBy string) (*CertificateRequest, error) {
	if strings.TrimSpace(approvedBy) == "" {
		return nil, ErrMissingDecider
	}
	logger := logging.FromContext(ctx, s.logger).With(zap.Uint("certificate_request_id", id))

	req, err := s.repo.GetPending(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.stateMachine.CanTransition(req.Status, workflows.StatusApproved) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, req.Status, workflows.StatusApproved)
	}

	fileName, err := s.renderer.Generate(ctx, certificates.RenderRequest{
		LetterText:      req.GeneratedLetter,
		RequestID:       strconv.FormatUint(uint64(req.ID), 10),
		StudentName:     req.StudentName,
		CertificateType: req.CertificateType,
	})
	if err != nil {
		logger.Error("Certificate generation failed", zap.Error(err))
		return nil, err
	}

	at := s.now()
	if err := s.repo.MarkApproved(ctx, id, approvedBy, fileName, at); err != nil {
		return nil, err
	}

	req.Status = workflows.StatusApproved
	req.ApprovedBy = &approvedBy
	req.ApprovedDate = &at
	req.PDFPath = &fileName

	logger.Info("Certificate request approved", zap.String("file", fileName))
	s.publish(ctx, notifications.EventRequestApproved, req)

	return req, nil
}

func (s *service) Reject(ctx context.Context, id uint, rejectedBy string) (*CertificateRequest, error) {
	if strings.TrimSpace(rejectedBy) == "" {
		return nil, ErrMissingDecider
	}

	at := s.now()
	if err := s.repo.MarkRejected(ctx, id, rejectedBy, at); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx, s.logger).Info("Certificate request rejected", zap.Uint("certificate_request_id", id))
	s.publish(ctx, notifications.EventRequestRejected, req)

	return req, nil
}

func (s *service) Export(ctx context.Context, w io.Writer) error {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return err
	}
	return WriteXLSX(w, all)
}

// publish never fails the caller; delivery problems are only logged.
func (s *service) publish(ctx context.Context, eventType string, req *CertificateRequest) {
	event := notifications.Event{
		Type:            eventType,
		RequestID:       strconv.FormatUint(uint64(req.ID), 10),
		StudentName:     req.StudentName,
		CertificateType: req.CertificateType,
		Status:          req.Status,
		Timestamp:       s.now(),
	}
	if req.ApprovedBy != nil {
		event.ActedBy = *req.ApprovedBy
	}
	if url := req.DownloadURL(); url != nil {
		event.DownloadURL = *url
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		logging.FromContext(ctx, s.logger).Warn("Failed to publish request event",
			zap.String("event", eventType),
			zap.Error(err))
	}
}
