package certificates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLayoutIsValid(t *testing.T) {
	l := DefaultLayout()

	assert.NoError(t, l.Validate())
	assert.Equal(t, 495.0, l.ContentWidth())
	assert.Equal(t, 692.0, l.SealTop())
	assert.Equal(t, 170.0, l.BottomBlockHeight())
}

func TestNeedsNewPage(t *testing.T) {
	l := DefaultLayout()

	assert.False(t, l.NeedsNewPage(300))
	assert.False(t, l.NeedsNewPage(672))
	assert.True(t, l.NeedsNewPage(672.5))
	assert.True(t, l.NeedsNewPage(780))
}

func TestLayoutValidateRejectsOverlap(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Layout)
	}{
		{"seal overlaps signature", func(l *Layout) { l.SignatureX = 150 }},
		{"signature past right margin", func(l *Layout) { l.SignatureX = 450 }},
		{"body wider than content", func(l *Layout) { l.BodyWidth = 600 }},
		{"seal without inner ring", func(l *Layout) { l.SealRadius = 8 }},
		{"margins eat the page", func(l *Layout) { l.Margins.Left = 300; l.Margins.Right = 300 }},
		{"bottom block above top margin", func(l *Layout) { l.BottomOffset = 700 }},
		{"no page", func(l *Layout) { l.PageHeight = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := DefaultLayout()
			tt.mutate(&l)
			assert.Error(t, l.Validate())
		})
	}
}

func TestSealAndSignatureDoNotOverlap(t *testing.T) {
	l := DefaultLayout()

	sealRight := l.SealX + 2*l.SealRadius + 10
	captionRight := l.SealX + l.SealCaptionWidth
	assert.Less(t, sealRight, l.SignatureX)
	assert.Less(t, captionRight, l.SignatureX)
	assert.LessOrEqual(t, l.SignatureX+l.SignatureRuleWidth, l.PageWidth-l.Margins.Right)
}

func TestNewGeneratorRejectsInvalidLayout(t *testing.T) {
	opts := DefaultOptions()
	opts.Layout.SignatureX = 100

	g, err := NewGenerator(opts, nil)
	assert.Error(t, err)
	assert.Nil(t, g)
}

func TestSealID(t *testing.T) {
	assert.Equal(t, "CERT-2025-007", SealID(2025, "7"))
	assert.Equal(t, "CERT-2025-042", SealID(2025, "42"))
	assert.Equal(t, "CERT-2025-123", SealID(2025, "123"))
	assert.Equal(t, "CERT-2026-12345", SealID(2026, "12345"))
}

func TestSealNameLines(t *testing.T) {
	id := func(s string) string { return s }

	assert.Equal(t, []string{"RAJALAKSHMI", "ENGINEERING COLLEGE"}, sealNameLines("Rajalakshmi Engineering College", id))
	assert.Equal(t, []string{"REC"}, sealNameLines("rec", id))
	assert.Nil(t, sealNameLines("  ", id))
}
