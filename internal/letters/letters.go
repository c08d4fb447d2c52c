package letters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingFields is returned when a draft request lacks a required value
var ErrMissingFields = errors.New("name, college and certificateType are required")

// DraftRequest describes the letter a student asks for
type DraftRequest struct {
	Name            string `json:"name"`
	College         string `json:"college"`
	CertificateType string `json:"certificateType"`
}

// Validate checks that every field is present
func (r DraftRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.College) == "" || strings.TrimSpace(r.CertificateType) == "" {
		return ErrMissingFields
	}
	return nil
}

// Drafter produces the text of a certificate letter
type Drafter interface {
	Draft(ctx context.Context, req DraftRequest) (string, error)
}

const systemPrompt = "You are an expert at generating formal academic certificates and letters. " +
	"Generate professional, properly formatted certificate letters based on the provided student information."

func userPrompt(req DraftRequest) string {
	return fmt.Sprintf(`Generate a formal %s for:

Student Name: %s
College: %s
Certificate Type: %s

Please create a professional, formal letter that includes:
- Proper letterhead format
- Official language and tone
- Relevant details for this type of certificate
- Appropriate closing and signature line
- Current date

Make it look like an official academic document.`, req.CertificateType, req.Name, req.College, req.CertificateType)
}

// TemplateDrafter fills a fixed letter without calling a model
type TemplateDrafter struct {
	now func() time.Time
}

func NewTemplateDrafter() *TemplateDrafter {
	return &TemplateDrafter{now: time.Now}
}

func (d *TemplateDrafter) Draft(_ context.Context, req DraftRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n\n", d.now().Format("January 2, 2006"))
	b.WriteString("To Whom It May Concern,\n\n")
	fmt.Fprintf(&b, "This is to certify that %s is a bonafide student of %s. ", req.Name, req.College)
	fmt.Fprintf(&b, "This %s is issued at the request of the student for official purposes.\n\n", req.CertificateType)
	b.WriteString("The particulars stated above are true to the best of our knowledge and are based on the records maintained by the institution.\n\n")
	b.WriteString("Sincerely,")
	return b.String(), nil
}
