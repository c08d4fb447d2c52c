package certificates

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// starGlyph is the black star in the ZapfDingbats encoding.
const starGlyph = "H"

// sealSpec describes the cosmetic seal. Strings are already translated to
// the core font code page.
type sealSpec struct {
	radius       float64
	captionWidth float64
	shortName    string
	nameLines    []string
	city         string
	caption      string
}

// signatureSpec describes the cosmetic signature block.
type signatureSpec struct {
	role      string
	name      string
	title     string
	ruleWidth float64
}

// SealID formats the identifier printed under the seal, e.g. CERT-2025-007.
// Ids shorter than three characters are left-padded with zeros; longer ids
// are printed unchanged.
func SealID(year int, requestID string) string {
	if n := len(requestID); n < 3 {
		requestID = strings.Repeat("0", 3-n) + requestID
	}
	return fmt.Sprintf("CERT-%d-%s", year, requestID)
}

// drawSeal draws the seal with its top-left corner at (x, y).
func drawSeal(pdf *gofpdf.Fpdf, x, y float64, s sealSpec) {
	r := s.radius
	cx := x + r + 10
	cy := y + r

	setDrawColor(pdf, colorNavy)
	pdf.SetLineWidth(2)
	pdf.Circle(cx, cy, r, "D")
	pdf.SetLineWidth(1)
	pdf.Circle(cx, cy, r-8, "D")

	pdf.SetFont("Helvetica", "B", 10)
	setTextColor(pdf, colorNavy)
	textBox(pdf, cx-15, cy-20, 30, 10, s.shortName, "C")

	if len(s.nameLines) > 0 {
		pdf.SetFont("Helvetica", "B", 7)
		textBox(pdf, cx-25, cy-8, 50, 7, s.nameLines[0], "C")
	}
	if len(s.nameLines) > 1 {
		pdf.SetFont("Helvetica", "B", 6)
		textBox(pdf, cx-25, cy+2, 50, 6, s.nameLines[1], "C")
	}

	pdf.SetFont("Helvetica", "", 6)
	textBox(pdf, cx-20, cy+12, 40, 6, s.city, "C")
	textBox(pdf, cx-20, cy+22, 40, 6, "OFFICIAL SEAL", "C")

	pdf.SetFont("ZapfDingbats", "", 8)
	setTextColor(pdf, colorBlue)
	textBox(pdf, cx-r+5, cy-3, 8, 8, starGlyph, "L")
	textBox(pdf, cx+r-12, cy-3, 8, 8, starGlyph, "L")
	textBox(pdf, cx-3, cy-r+8, 8, 8, starGlyph, "L")
	textBox(pdf, cx-3, cy+r-12, 8, 8, starGlyph, "L")

	pdf.SetFont("Helvetica", "", 7)
	setTextColor(pdf, colorMuted)
	textBox(pdf, x, y+2*r+15, s.captionWidth, 7, s.caption, "C")
}

// drawSignature draws the signature block with its top-left corner at (x, y).
// It is decoration only and carries no cryptographic binding.
func drawSignature(pdf *gofpdf.Fpdf, x, y float64, s signatureSpec) {
	pdf.SetFont("Helvetica", "B", 10)
	setTextColor(pdf, colorNavy)
	textBox(pdf, x, y, s.ruleWidth, 10, s.role, "L")

	pdf.SetFont("Times", "I", 14)
	textBox(pdf, x, y+18, s.ruleWidth, 14, s.name, "L")

	pdf.SetFont("Helvetica", "", 10)
	textBox(pdf, x, y+36, s.ruleWidth, 10, s.title, "L")

	pdf.SetFont("Helvetica", "", 8)
	setTextColor(pdf, colorMuted)
	textBox(pdf, x, y+52, s.ruleWidth, 8, "Digitally Signed by "+s.role, "L")

	setDrawColor(pdf, colorBlack)
	pdf.SetLineWidth(1)
	pdf.Line(x, y+68, x+s.ruleWidth, y+68)
}

// sealNameLines splits the institution name for the seal: the first word on
// one line, the rest on the next, all in capitals.
func sealNameLines(name string, tr func(string) string) []string {
	words := strings.Fields(strings.ToUpper(name))
	switch len(words) {
	case 0:
		return nil
	case 1:
		return []string{tr(words[0])}
	default:
		return []string{tr(words[0]), tr(strings.Join(words[1:], " "))}
	}
}

// textBox writes one line of text whose box starts at (x, y).
func textBox(pdf *gofpdf.Fpdf, x, y, w, fontSize float64, text, align string) {
	pdf.SetXY(x, y)
	pdf.CellFormat(w, lineHeight(fontSize), text, "", 0, align, false, 0, "")
}

func setTextColor(pdf *gofpdf.Fpdf, c PDFColor) {
	pdf.SetTextColor(c.R, c.G, c.B)
}

func setDrawColor(pdf *gofpdf.Fpdf, c PDFColor) {
	pdf.SetDrawColor(c.R, c.G, c.B)
}
