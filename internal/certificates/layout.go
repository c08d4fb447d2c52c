package certificates

import (
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFColor represents an RGB color
type PDFColor struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// PDFMargins represents page margins in points
type PDFMargins struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

var (
	colorNavy  = PDFColor{R: 26, G: 54, B: 93}
	colorBlue  = PDFColor{R: 0, G: 102, B: 204}
	colorText  = PDFColor{R: 51, G: 51, B: 51}
	colorMuted = PDFColor{R: 102, G: 102, B: 102}
	colorBlack = PDFColor{R: 0, G: 0, B: 0}
)

// lineHeightFactor approximates the line height of the core fonts.
const lineHeightFactor = 1.15

// Layout holds the page geometry of a certificate. All values are points.
type Layout struct {
	PageWidth  float64    `json:"page_width"`
	PageHeight float64    `json:"page_height"`
	Margins    PDFMargins `json:"margins"`

	HeaderFontSize float64 `json:"header_font_size"`
	AddressSize    float64 `json:"address_size"`
	TitleFontSize  float64 `json:"title_font_size"`

	BodyWidth    float64 `json:"body_width"`
	BodyFontSize float64 `json:"body_font_size"`
	BodyLineGap  float64 `json:"body_line_gap"`
	// BodyGapLines is the gap below the body, in body lines.
	BodyGapLines float64 `json:"body_gap_lines"`

	SealX              float64 `json:"seal_x"`
	SealRadius         float64 `json:"seal_radius"`
	SealCaptionWidth   float64 `json:"seal_caption_width"`
	SignatureX         float64 `json:"signature_x"`
	SignatureRuleWidth float64 `json:"signature_rule_width"`
	// BottomOffset is the distance from the bottom margin up to the top of
	// the seal and signature row.
	BottomOffset float64 `json:"bottom_offset"`
	// LabelGap is the space above the row taken by the seal label.
	LabelGap float64 `json:"label_gap"`

	FooterOffset float64 `json:"footer_offset"`
	BorderInset  float64 `json:"border_inset"`
	BorderWidth  float64 `json:"border_width"`
}

// DefaultLayout returns the A4 portrait layout of the college certificate.
func DefaultLayout() Layout {
	return Layout{
		PageWidth:  595,
		PageHeight: 842,
		Margins: PDFMargins{
			Left:   50,
			Right:  50,
			Top:    50,
			Bottom: 80,
		},
		HeaderFontSize:     20,
		AddressSize:        10,
		TitleFontSize:      16,
		BodyWidth:          445,
		BodyFontSize:       13,
		BodyLineGap:        4,
		BodyGapLines:       3,
		SealX:              70,
		SealRadius:         40,
		SealCaptionWidth:   120,
		SignatureX:         350,
		SignatureRuleWidth: 140,
		BottomOffset:       70,
		LabelGap:           20,
		FooterOffset:       40,
		BorderInset:        45,
		BorderWidth:        2,
	}
}

// Validate rejects geometries where blocks would overlap or leave the page.
func (l Layout) Validate() error {
	if l.PageWidth <= 0 || l.PageHeight <= 0 {
		return fmt.Errorf("page size must be positive, got %.0fx%.0f", l.PageWidth, l.PageHeight)
	}
	if l.ContentWidth() <= 0 {
		return fmt.Errorf("margins leave no room for content")
	}
	if l.BodyWidth <= 0 || l.BodyWidth > l.ContentWidth() {
		return fmt.Errorf("body width %.0f must fit the content width %.0f", l.BodyWidth, l.ContentWidth())
	}
	if l.SealRadius <= 8 {
		return fmt.Errorf("seal radius %.0f is too small for the inner ring", l.SealRadius)
	}
	if right := l.SealX + l.sealBlockWidth(); right > l.SignatureX {
		return fmt.Errorf("seal (right edge %.0f) overlaps signature (left edge %.0f)", right, l.SignatureX)
	}
	if right := l.SignatureX + l.SignatureRuleWidth; right > l.PageWidth-l.Margins.Right {
		return fmt.Errorf("signature (right edge %.0f) crosses the right margin", right)
	}
	if l.SealTop()-l.LabelGap <= l.Margins.Top {
		return fmt.Errorf("bottom block does not fit below the top margin")
	}
	return nil
}

// ContentWidth is the width between the left and right margins.
func (l Layout) ContentWidth() float64 {
	return l.PageWidth - l.Margins.Left - l.Margins.Right
}

// SealTop is the y coordinate of the seal and signature row.
func (l Layout) SealTop() float64 {
	return l.PageHeight - l.Margins.Bottom - l.BottomOffset
}

// BottomBlockHeight is the vertical space, measured up from the page bottom,
// that the seal label, seal, signature and footer need.
func (l Layout) BottomBlockHeight() float64 {
	return l.PageHeight - (l.SealTop() - l.LabelGap)
}

// NeedsNewPage is the overflow check run once after the body text.
func (l Layout) NeedsNewPage(cursorY float64) bool {
	return l.PageHeight-cursorY < l.BottomBlockHeight()
}

// BodyLineHeight is the distance between two baselines of body text.
func (l Layout) BodyLineHeight() float64 {
	return lineHeight(l.BodyFontSize) + l.BodyLineGap
}

func (l Layout) sealBlockWidth() float64 {
	w := 2*l.SealRadius + 10
	if l.SealCaptionWidth > w {
		return l.SealCaptionWidth
	}
	return w
}

func lineHeight(fontSize float64) float64 {
	return fontSize * lineHeightFactor
}

// content is the per-render data handed to the layout engine.
type content struct {
	requestID       string
	studentName     string
	certificateType string
	body            string
	generatedAt     time.Time
}

// layoutEngine places every block of one certificate on a gofpdf document.
type layoutEngine struct {
	pdf    *gofpdf.Fpdf
	layout Layout
	tmpl   Template
	tr     func(string) string
}

func newLayoutEngine(layout Layout, tmpl Template, compress bool) *layoutEngine {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: layout.PageWidth, Ht: layout.PageHeight},
	})
	pdf.SetCompression(compress)
	pdf.SetMargins(layout.Margins.Left, layout.Margins.Top, layout.Margins.Right)
	pdf.SetAutoPageBreak(true, layout.Margins.Bottom)
	pdf.SetCellMargin(0)

	return &layoutEngine{
		pdf:    pdf,
		layout: layout,
		tmpl:   tmpl,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// render draws all blocks top to bottom and finishes with the borders.
func (e *layoutEngine) render(c content) *gofpdf.Fpdf {
	e.pdf.SetTitle(e.tr(c.certificateType+" - "+c.studentName), false)
	e.pdf.SetAuthor(e.tr(e.tmpl.Institution.Name), false)
	e.pdf.SetCreator("smart-certify", false)
	e.pdf.SetCreationDate(c.generatedAt)
	e.pdf.AddPage()

	e.addHeader()
	e.addDivider()
	e.addTitle(c.certificateType)
	e.addBody(c.body)

	// Body overflow is left to gofpdf's automatic break; from here on every
	// block is placed at an absolute position.
	if e.layout.NeedsNewPage(e.pdf.GetY()) {
		e.pdf.AddPage()
	}
	e.pdf.SetAutoPageBreak(false, 0)

	sealTop := e.layout.SealTop()
	e.addSealLabel(sealTop)
	drawSeal(e.pdf, e.layout.SealX, sealTop, sealSpec{
		radius:       e.layout.SealRadius,
		captionWidth: e.layout.SealCaptionWidth,
		shortName:    e.tr(e.tmpl.Institution.ShortName),
		nameLines:    sealNameLines(e.tmpl.Institution.Name, e.tr),
		city:         e.tr(e.tmpl.Institution.City),
		caption:      e.tr("Seal ID: " + SealID(c.generatedAt.Year(), c.requestID)),
	})
	drawSignature(e.pdf, e.layout.SignatureX, sealTop, signatureSpec{
		role:      e.tr(e.tmpl.Signatory.Role),
		name:      e.tr(e.tmpl.Signatory.Name),
		title:     e.tr(e.tmpl.Signatory.Title),
		ruleWidth: e.layout.SignatureRuleWidth,
	})
	e.addFooter(c)
	e.addBorders()

	return e.pdf
}

func (e *layoutEngine) addHeader() {
	l := e.layout
	e.setFont("Helvetica", "B", l.HeaderFontSize, colorNavy)
	e.centered(e.tmpl.Institution.Name, lineHeight(l.HeaderFontSize))
	e.pdf.Ln(0.1 * lineHeight(l.HeaderFontSize))

	e.setFont("Helvetica", "", l.AddressSize, colorText)
	for _, line := range e.tmpl.Institution.AddressLines {
		e.centered(line, lineHeight(l.AddressSize))
	}
	e.pdf.Ln(0.3 * lineHeight(l.AddressSize))
}

func (e *layoutEngine) addDivider() {
	l := e.layout
	y := e.pdf.GetY()
	setDrawColor(e.pdf, colorNavy)
	e.pdf.SetLineWidth(1.5)
	e.pdf.Line(l.Margins.Left, y, l.PageWidth-l.Margins.Right, y)
	e.pdf.Ln(0.8 * lineHeight(l.AddressSize))
}

func (e *layoutEngine) addTitle(certificateType string) {
	l := e.layout
	e.setFont("Helvetica", "B", l.TitleFontSize, colorBlue)
	e.centered(certificateType, lineHeight(l.TitleFontSize))
	e.pdf.Ln(0.8 * lineHeight(l.TitleFontSize))
}

func (e *layoutEngine) addBody(body string) {
	l := e.layout
	e.setFont("Times", "", l.BodyFontSize, colorText)
	if body != "" {
		e.pdf.SetX(l.Margins.Left)
		e.pdf.MultiCell(l.BodyWidth, l.BodyLineHeight(), e.tr(body), "", "J", false)
	}
	e.pdf.Ln(l.BodyGapLines * l.BodyLineHeight())
}

func (e *layoutEngine) addSealLabel(sealTop float64) {
	e.setFont("Helvetica", "B", 10, colorNavy)
	e.pdf.SetXY(e.layout.SealX, sealTop-e.layout.LabelGap)
	e.pdf.CellFormat(e.layout.SealCaptionWidth+e.layout.LabelGap, lineHeight(10), e.tr(e.tmpl.SealLabel), "", 0, "L", false, 0, "")
}

func (e *layoutEngine) addFooter(c content) {
	l := e.layout
	text := fmt.Sprintf("Certificate ID: %s | Student: %s | Generated: %s",
		c.requestID, c.studentName, c.generatedAt.Format(e.tmpl.DateFormat))

	e.setFont("Helvetica", "", 8, colorMuted)
	e.pdf.SetXY(l.Margins.Left, l.PageHeight-l.FooterOffset)
	e.pdf.CellFormat(l.ContentWidth(), lineHeight(8), e.tr(text), "", 0, "C", false, 0, "")
}

// addBorders frames every page, so it runs after all content exists.
func (e *layoutEngine) addBorders() {
	l := e.layout
	current := e.pdf.PageNo()
	for page := 1; page <= e.pdf.PageCount(); page++ {
		e.pdf.SetPage(page)
		setDrawColor(e.pdf, colorNavy)
		e.pdf.SetLineWidth(l.BorderWidth)
		e.pdf.Rect(l.BorderInset, l.BorderInset, l.PageWidth-2*l.BorderInset, l.PageHeight-2*l.BorderInset, "D")
	}
	e.pdf.SetPage(current)
}

func (e *layoutEngine) centered(text string, h float64) {
	e.pdf.SetX(e.layout.Margins.Left)
	e.pdf.CellFormat(e.layout.ContentWidth(), h, e.tr(text), "", 1, "C", false, 0, "")
}

func (e *layoutEngine) setFont(family, style string, size float64, color PDFColor) {
	e.pdf.SetFont(family, style, size)
	setTextColor(e.pdf, color)
}
