package auth

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Account types carried in the token
const (
	TypeStudent = "student"
	TypeAdmin   = "admin"
)

// DefaultAdminRole is assigned when signup does not name a role
const DefaultAdminRole = "Admin"

// Student is a registered student account
type Student struct {
	ID           uint   `gorm:"primaryKey"`
	StudentID    string `gorm:"not null;uniqueIndex"`
	FirstName    string `gorm:"not null"`
	LastName     string `gorm:"not null"`
	Email        string `gorm:"not null;uniqueIndex"`
	PasswordHash string `gorm:"column:password;not null"`
	College      string `gorm:"not null"`
	Department   *string
	YearOfStudy  *int
	PhoneNumber  *string
	IsActive     bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (Student) TableName() string { return "master_students" }

// Admin is a staff account allowed to decide requests
type Admin struct {
	ID           uint   `gorm:"primaryKey"`
	AdminID      string `gorm:"not null;uniqueIndex"`
	FirstName    string `gorm:"not null"`
	LastName     string `gorm:"not null"`
	Email        string `gorm:"not null;uniqueIndex"`
	PasswordHash string `gorm:"column:password;not null"`
	Role         string `gorm:"not null;default:Admin"`
	Department   *string
	Permissions  datatypes.JSON `gorm:"type:jsonb"`
	IsActive     bool           `gorm:"not null;default:true"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
}

func (Admin) TableName() string { return "master_admins" }

// StudentSignupInput is the body of POST /auth/student/signup
type StudentSignupInput struct {
	StudentID   string  `json:"studentId"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	College     string  `json:"college"`
	Department  *string `json:"department"`
	YearOfStudy *int    `json:"yearOfStudy"`
	PhoneNumber *string `json:"phoneNumber"`
}

// AdminSignupInput is the body of POST /auth/admin/signup
type AdminSignupInput struct {
	AdminID     string          `json:"adminId"`
	FirstName   string          `json:"firstName"`
	LastName    string          `json:"lastName"`
	Email       string          `json:"email"`
	Password    string          `json:"password"`
	Role        string          `json:"role"`
	Department  *string         `json:"department"`
	Permissions json.RawMessage `json:"permissions"`
}

// StudentSigninInput accepts the student id or the email as studentId
type StudentSigninInput struct {
	StudentID string `json:"studentId"`
	Password  string `json:"password"`
}

// AdminSigninInput accepts the admin id or the email as adminId
type AdminSigninInput struct {
	AdminID  string `json:"adminId"`
	Password string `json:"password"`
}

// StudentProfile is the public view of a student
type StudentProfile struct {
	ID          uint    `json:"id"`
	StudentID   string  `json:"studentId"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	College     string  `json:"college"`
	Department  *string `json:"department"`
	YearOfStudy *int    `json:"yearOfStudy"`
}

// AdminProfile is the public view of an admin
type AdminProfile struct {
	ID          uint            `json:"id"`
	AdminID     string          `json:"adminId"`
	FirstName   string          `json:"firstName"`
	LastName    string          `json:"lastName"`
	Email       string          `json:"email"`
	Role        string          `json:"role"`
	Department  *string         `json:"department"`
	Permissions json.RawMessage `json:"permissions"`
}

func (s *Student) Profile() StudentProfile {
	return StudentProfile{
		ID:          s.ID,
		StudentID:   s.StudentID,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		Email:       s.Email,
		College:     s.College,
		Department:  s.Department,
		YearOfStudy: s.YearOfStudy,
	}
}

func (a *Admin) Profile() AdminProfile {
	p := AdminProfile{
		ID:         a.ID,
		AdminID:    a.AdminID,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Email:      a.Email,
		Role:       a.Role,
		Department: a.Department,
	}
	if len(a.Permissions) > 0 {
		p.Permissions = json.RawMessage(a.Permissions)
	}
	return p
}
