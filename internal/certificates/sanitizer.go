package certificates

import (
	"regexp"
	"strings"
)

// Disclaimer is the boilerplate sentence the letter model appends to most
// drafts. It never belongs on the rendered certificate.
const Disclaimer = "Note: This certificate is valid for official use only and should not be used for any unauthorized purposes."

var (
	disclaimerPattern  = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(Disclaimer))
	salutationPattern  = regexp.MustCompile(`(?i)(yours faithfully,|sincerely,|yours truly,)`)
	placeholderPattern = regexp.MustCompile(`(?i)\[\s*(signature|name|designation)[^\]]*\]`)
	signatoryPattern   = regexp.MustCompile(`(?im)^[ \t]*authori[sz]ed signatory.*$`)
	sealNotePattern    = regexp.MustCompile(`(?i)\([^()]*\b(seal|stamp)\b[^()]*\)`)
	blankLinesPattern  = regexp.MustCompile(`\n[ \t]*(\n[ \t]*)+\n`)
	trailingSpaces     = regexp.MustCompile(`(?m)[ \t]+$`)
)

// SanitizeOptions selects the optional cleanup policies.
type SanitizeOptions struct {
	// StripAllDashes removes every single '-' in addition to '--' separators.
	StripAllDashes bool `json:"strip_all_dashes"`
	// StripSignatureBlocks drops whatever the model wrote after the closing
	// salutation together with bracketed signature placeholders.
	StripSignatureBlocks bool `json:"strip_signature_blocks"`
}

// DefaultSanitizeOptions matches what the college renderer has always done.
func DefaultSanitizeOptions() SanitizeOptions {
	return SanitizeOptions{
		StripAllDashes:       true,
		StripSignatureBlocks: true,
	}
}

// SanitizeStep is one named, pure transformation of the pipeline.
type SanitizeStep struct {
	Name  string
	Apply func(string) string
}

// Sanitizer applies an ordered list of steps to AI-drafted letter text.
type Sanitizer struct {
	steps []SanitizeStep
}

// NewSanitizer builds the pipeline. Order matters: later steps see the text
// already shortened by earlier ones.
func NewSanitizer(opts SanitizeOptions) *Sanitizer {
	steps := []SanitizeStep{
		{Name: "strip-asterisks", Apply: StripAsterisks},
		{Name: "strip-dashes", Apply: dashStripper(opts.StripAllDashes)},
		{Name: "strip-disclaimer", Apply: StripDisclaimer},
	}
	if opts.StripSignatureBlocks {
		steps = append(steps, SanitizeStep{Name: "strip-signature-block", Apply: StripSignatureBlock})
	}
	steps = append(steps, SanitizeStep{Name: "trim", Apply: strings.TrimSpace})

	return &Sanitizer{steps: steps}
}

// Steps returns the pipeline in execution order.
func (s *Sanitizer) Steps() []SanitizeStep {
	out := make([]SanitizeStep, len(s.steps))
	copy(out, s.steps)
	return out
}

// Sanitize runs the pipeline until the text stops changing, so that a removal
// which brings two fragments together (for example "a-" and "-b" around the
// disclaimer) is cleaned up as well. The result is idempotent. Steps only
// remove text, so every pass that changes it makes it shorter and the loop ends.
func (s *Sanitizer) Sanitize(text string) string {
	for {
		next := text
		for _, step := range s.steps {
			next = step.Apply(next)
		}
		if next == text {
			break
		}
		text = next
	}
	return text
}

// StripAsterisks removes markdown emphasis markers.
func StripAsterisks(text string) string {
	return strings.ReplaceAll(text, "*", "")
}

// StripDoubleDashes removes "--" separators and keeps single hyphens.
func StripDoubleDashes(text string) string {
	return strings.ReplaceAll(text, "--", "")
}

// StripAllDashes removes every hyphen.
func StripAllDashes(text string) string {
	return strings.ReplaceAll(text, "-", "")
}

func dashStripper(all bool) func(string) string {
	if all {
		return func(text string) string {
			return StripAllDashes(StripDoubleDashes(text))
		}
	}
	return StripDoubleDashes
}

// StripDisclaimer removes the boilerplate disclaimer, ignoring case.
func StripDisclaimer(text string) string {
	return disclaimerPattern.ReplaceAllString(text, "")
}

// StripSignatureBlock keeps the closing salutation and drops the name,
// designation and stamp lines the model tends to invent after it.
func StripSignatureBlock(text string) string {
	if loc := salutationPattern.FindStringIndex(text); loc != nil {
		text = text[:loc[1]]
	}
	text = placeholderPattern.ReplaceAllString(text, "")
	text = signatoryPattern.ReplaceAllString(text, "")
	text = sealNotePattern.ReplaceAllString(text, "")
	text = trailingSpaces.ReplaceAllString(text, "")
	return blankLinesPattern.ReplaceAllString(text, "\n\n")
}
