package requests

import (
	"time"
)

// CertificateRequest is a student's request for a certificate and, once
// approved, the name of the rendered PDF.
type CertificateRequest struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	StudentName     string     `json:"studentName" gorm:"not null;index"`
	College         string     `json:"college" gorm:"not null"`
	CertificateType string     `json:"certificateType" gorm:"not null"`
	RequestDate     time.Time  `json:"requestDate" gorm:"autoCreateTime;index"`
	Status          string     `json:"status" gorm:"not null;default:Pending;index"`
	GeneratedLetter string     `json:"generatedLetter" gorm:"type:text"`
	ApprovedBy      *string    `json:"approvedBy"`
	ApprovedDate    *time.Time `json:"approvedDate"`
	PDFPath         *string    `json:"pdfPath"`
}

// TableName overrides the gorm default
func (CertificateRequest) TableName() string {
	return "requests"
}

// DownloadURL is the public path of the rendered PDF, or nil before approval.
func (r *CertificateRequest) DownloadURL() *string {
	if r.PDFPath == nil || *r.PDFPath == "" {
		return nil
	}
	url := CertificatesPath + "/" + *r.PDFPath
	return &url
}

// CertificatesPath is where rendered PDFs are served.
const CertificatesPath = "/certificates"

// SubmitInput is the body of POST /submit-request
type SubmitInput struct {
	StudentName     string `json:"studentName"`
	College         string `json:"college"`
	CertificateType string `json:"certificateType"`
	GeneratedLetter string `json:"generatedLetter"`
}

// DecisionInput is the body of the approve and reject endpoints
type DecisionInput struct {
	ApprovedBy string `json:"approvedBy"`
}

// StatusEntry is one row of the student status view
type StatusEntry struct {
	ID              uint       `json:"id"`
	College         string     `json:"college"`
	CertificateType string     `json:"certificateType"`
	RequestDate     time.Time  `json:"requestDate"`
	Status          string     `json:"status"`
	ApprovedDate    *time.Time `json:"approvedDate"`
	DownloadURL     *string    `json:"downloadUrl"`
}

// AdminEntry is one row of the admin request list
type AdminEntry struct {
	ID              uint       `json:"id"`
	StudentName     string     `json:"studentName"`
	College         string     `json:"college"`
	CertificateType string     `json:"certificateType"`
	RequestDate     time.Time  `json:"requestDate"`
	Status          string     `json:"status"`
	GeneratedLetter string     `json:"generatedLetter"`
	ApprovedBy      *string    `json:"approvedBy"`
	ApprovedDate    *time.Time `json:"approvedDate"`
	DownloadURL     *string    `json:"downloadUrl"`
}

func toStatusEntry(r *CertificateRequest) StatusEntry {
	return StatusEntry{
		ID:              r.ID,
		College:         r.College,
		CertificateType: r.CertificateType,
		RequestDate:     r.RequestDate,
		Status:          r.Status,
		ApprovedDate:    r.ApprovedDate,
		DownloadURL:     r.DownloadURL(),
	}
}

func toAdminEntry(r *CertificateRequest) AdminEntry {
	return AdminEntry{
		ID:              r.ID,
		StudentName:     r.StudentName,
		College:         r.College,
		CertificateType: r.CertificateType,
		RequestDate:     r.RequestDate,
		Status:          r.Status,
		GeneratedLetter: r.GeneratedLetter,
		ApprovedBy:      r.ApprovedBy,
		ApprovedDate:    r.ApprovedDate,
		DownloadURL:     r.DownloadURL(),
	}
}
