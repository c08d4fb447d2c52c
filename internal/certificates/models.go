package certificates

import (
	"fmt"
	"strings"
)

// RenderRequest carries everything a single render call needs. It is built
// fresh for every approval and discarded once Generate returns.
type RenderRequest struct {
	LetterText      string `json:"letter_text"`
	RequestID       string `json:"request_id"`
	StudentName     string `json:"student_name"`
	CertificateType string `json:"certificate_type"`
}

// Validate checks the required fields before the request reaches the
// sanitizer or the layout engine.
func (r RenderRequest) Validate() error {
	if strings.TrimSpace(r.RequestID) == "" {
		return fmt.Errorf("%w: request id is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.StudentName) == "" {
		return fmt.Errorf("%w: student name is required", ErrInvalidRequest)
	}
	if normalizeKey(r.StudentName) == "" {
		return fmt.Errorf("%w: student name %q has no letters or digits", ErrInvalidRequest, r.StudentName)
	}
	if strings.TrimSpace(r.CertificateType) == "" {
		return fmt.Errorf("%w: certificate type is required", ErrInvalidRequest)
	}
	return nil
}

// Institution describes the issuing body printed in the header and the seal.
type Institution struct {
	Name         string   `json:"name"`
	ShortName    string   `json:"short_name"`
	City         string   `json:"city"`
	AddressLines []string `json:"address_lines"`
}

// Signatory describes the cosmetic signature block.
type Signatory struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Template is the static content shared by every certificate.
type Template struct {
	Institution Institution `json:"institution"`
	Signatory   Signatory   `json:"signatory"`
	SealLabel   string      `json:"seal_label"`
	DateFormat  string      `json:"date_format"`
}

// DefaultTemplate returns the template used by the college deployment.
func DefaultTemplate() Template {
	return Template{
		Institution: Institution{
			Name:      "Rajalakshmi Engineering College",
			ShortName: "REC",
			City:      "Chennai",
			AddressLines: []string{
				"Thandalam, Chennai - 602105, Tamil Nadu, India",
				"Phone: +91-44-37181111   Email: info@rajalakshmi.edu.in",
			},
		},
		Signatory: Signatory{
			Role:  "Principal",
			Name:  "S.N Murugesan",
			Title: "Principal, REC",
		},
		SealLabel:  "Official College Seal:",
		DateFormat: "1/2/2006",
	}
}
