package auth

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"smart-certify/certify-backend/internal/logging"
)

// StudentSession is returned by student signup and signin
type StudentSession struct {
	Token   string
	Student StudentProfile
}

// AdminSession is returned by admin signup and signin
type AdminSession struct {
	Token string
	Admin AdminProfile
}

// Service handles account registration and sign in
type Service struct {
	repo       Repository
	tokens     *TokenIssuer
	bcryptCost int
	logger     *zap.Logger
}

// NewService creates an account service. A zero bcryptCost uses bcrypt.DefaultCost.
func NewService(repo Repository, tokens *TokenIssuer, bcryptCost int, logger *zap.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, tokens: tokens, bcryptCost: bcryptCost, logger: logger}
}

// Tokens exposes the issuer used to verify bearer tokens
func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}

func (s *Service) SignupStudent(ctx context.Context, in StudentSignupInput) (*StudentSession, error) {
	if blank(in.StudentID, in.FirstName, in.LastName, in.Email, in.Password, in.College) {
		return nil, ErrMissingFields
	}

	exists, err := s.repo.StudentExists(ctx, in.StudentID, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyExists
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	student := &Student{
		StudentID:    in.StudentID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		College:      in.College,
		Department:   in.Department,
		YearOfStudy:  in.YearOfStudy,
		PhoneNumber:  in.PhoneNumber,
		IsActive:     true,
	}
	if err := s.repo.CreateStudent(ctx, student); err != nil {
		return nil, err
	}

	logging.FromContext(ctx, s.logger).Info("Student registered", zap.String("student_id", student.StudentID))
	return s.studentSession(student)
}

func (s *Service) SigninStudent(ctx context.Context, in StudentSigninInput) (*StudentSession, error) {
	if blank(in.StudentID, in.Password) {
		return nil, ErrMissingFields
	}

	student, err := s.repo.FindStudent(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrUnknownAccount
	}
	if !student.IsActive {
		return nil, ErrAccountInactive
	}
	if bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(in.Password)) != nil {
		logging.FromContext(ctx, s.logger).Info("Student signin rejected", zap.String("student_id", student.StudentID))
		return nil, ErrWrongPassword
	}

	return s.studentSession(student)
}

func (s *Service) SignupAdmin(ctx context.Context, in AdminSignupInput) (*AdminSession, error) {
	if blank(in.AdminID, in.FirstName, in.LastName, in.Email, in.Password) {
		return nil, ErrMissingFields
	}

	exists, err := s.repo.AdminExists(ctx, in.AdminID, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyExists
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = DefaultAdminRole
	}
	admin := &Admin{
		AdminID:      in.AdminID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		Department:   in.Department,
		IsActive:     true,
	}
	if len(in.Permissions) > 0 {
		admin.Permissions = datatypes.JSON(in.Permissions)
	}
	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}

	logging.FromContext(ctx, s.logger).Info("Admin registered", zap.String("admin_id", admin.AdminID))
	return s.adminSession(admin)
}

func (s *Service) SigninAdmin(ctx context.Context, in AdminSigninInput) (*AdminSession, error) {
	if blank(in.AdminID, in.Password) {
		return nil, ErrMissingFields
	}

	admin, err := s.repo.FindAdmin(ctx, in.AdminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrUnknownAccount
	}
	if !admin.IsActive {
		return nil, ErrAccountInactive
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(in.Password)) != nil {
		logging.FromContext(ctx, s.logger).Info("Admin signin rejected", zap.String("admin_id", admin.AdminID))
		return nil, ErrWrongPassword
	}

	return s.adminSession(admin)
}

// Verify checks a bearer token and returns its claims
func (s *Service) Verify(token string) (*Claims, error) {
	return s.tokens.Parse(token)
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) studentSession(student *Student) (*StudentSession, error) {
	token, err := s.tokens.Issue(Claims{
		ID:        student.ID,
		Email:     student.Email,
		FirstName: student.FirstName,
		LastName:  student.LastName,
		Type:      TypeStudent,
		StudentID: student.StudentID,
	})
	if err != nil {
		return nil, err
	}
	return &StudentSession{Token: token, Student: student.Profile()}, nil
}

func (s *Service) adminSession(admin *Admin) (*AdminSession, error) {
	token, err := s.tokens.Issue(Claims{
		ID:        admin.ID,
		Email:     admin.Email,
		FirstName: admin.FirstName,
		LastName:  admin.LastName,
		Type:      TypeAdmin,
		AdminID:   admin.AdminID,
		Role:      admin.Role,
	})
	if err != nil {
		return nil, err
	}
	return &AdminSession{Token: token, Admin: admin.Profile()}, nil
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
