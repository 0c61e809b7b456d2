package invoicepdf

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/ridwanfathin/donation-invoice-service/internal/domain"
	"github.com/ridwanfathin/donation-invoice-service/internal/imageutil"
)

const (
	pageMargin          = 20.0
	contentWidth        = 170.0
	descriptionWidth    = 130.0
	amountWidth         = contentWidth - descriptionWidth
	lineHeight          = 6.0
	logoHeightMM        = 18.0
	maxDescriptionLines = 12
	maxAddressLines     = 4
	billToWidth         = contentWidth / 2
	fontFamily          = "invoice"
	displayDateLayout   = "02 Jan 2006"
)

// DejaVu Sans carries U+20B9, so amounts always render with the rupee sign
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	defaultRegularFont []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	defaultBoldFont []byte
)

// Organization is the issuer shown in the document header
type Organization struct {
	Name    string
	Address string
	Email   string
}

// Config holds configuration for the generator
type Config struct {
	Organization Organization
	LogoPath     string
	// FontPath overrides the bundled font with a TTF covering U+20B9
	FontPath string

	// DisableCompression writes plain content streams
	DisableCompression bool

	Now    func() time.Time
	Logger *slog.Logger
}

// Generator renders invoice metadata to a single-page A4 PDF
type Generator struct {
	org      Organization
	logo     *imageutil.Logo
	regular  []byte
	bold     []byte
	compress bool
	now      func() time.Time
}

// NewGenerator creates a generator. A configured font that cannot be read is an
// error; a missing logo only drops the logo from the header.
func NewGenerator(config Config) (*Generator, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}

	g := &Generator{
		org:      config.Organization,
		regular:  defaultRegularFont,
		bold:     defaultBoldFont,
		compress: !config.DisableCompression,
		now:      now,
	}

	if config.FontPath != "" {
		font, err := os.ReadFile(config.FontPath)
		if err != nil {
			return nil, domain.NewError(domain.KindDocumentGeneration, "load_font", err)
		}
		g.regular = font
		g.bold = font
	}

	if config.LogoPath != "" {
		logo, err := imageutil.LoadLogo(config.LogoPath, imageutil.DefaultLogoHeight)
		if err != nil {
			logger.Warn("invoice logo unavailable, rendering without it", "path", config.LogoPath, "error", err)
		} else {
			g.logo = logo
		}
	}

	return g, nil
}

// Generate renders the document. Only an unparseable date is a validation
// error; every other failure is a document generation error.
func (g *Generator) Generate(meta domain.InvoiceMetadata) ([]byte, error) {
	const op = "generate_invoice"

	date, err := domain.ParseDateOnly(meta.Date)
	if err != nil {
		return nil, domain.NewValidationError(op, map[string]string{"date": "must be a valid YYYY-MM-DD date"})
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(g.compress)
	stamp := g.now().UTC()
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetTitle("Invoice "+meta.SerialNumber, true)
	pdf.SetAuthor(g.org.Name, true)
	pdf.SetCreator(g.org.Name, true)

	pdf.AddUTF8FontFromBytes(fontFamily, "", g.regular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", g.bold)

	pdf.AddPage()
	g.drawHeader(pdf)
	drawTitle(pdf, meta.SerialNumber, date)
	drawBillTo(pdf, meta.Donor)
	drawLineItem(pdf, meta)
	drawFooter(pdf, g.org)

	if err := pdf.Error(); err != nil {
		return nil, domain.NewError(domain.KindDocumentGeneration, op, err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, domain.NewError(domain.KindDocumentGeneration, op, fmt.Errorf("failed to write pdf: %w", err))
	}
	data := buf.Bytes()

	pages, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, domain.NewError(domain.KindDocumentGeneration, op, fmt.Errorf("failed to read back pdf: %w", err))
	}
	if pages != 1 {
		return nil, domain.NewError(domain.KindDocumentGeneration, op, fmt.Errorf("expected 1 page, rendered %d", pages))
	}

	return data, nil
}

func (g *Generator) drawHeader(pdf *fpdf.Fpdf) {
	textX := pageMargin
	if g.logo != nil {
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(g.logo.PNG))
		width := logoHeightMM * g.logo.AspectRatio()
		pdf.ImageOptions("logo", pageMargin, 15, width, logoHeightMM, false, opts, 0, "")
		textX += width + 5
	}

	pdf.SetXY(textX, 15)
	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(0, 8, g.org.Name, "", 1, "L", false, 0, "")

	pdf.SetFont(fontFamily, "", 9)
	if g.org.Address != "" {
		pdf.SetX(textX)
		pdf.MultiCell(0, 4.5, g.org.Address, "", "L", false)
	}
	if g.org.Email != "" {
		pdf.SetX(textX)
		pdf.CellFormat(0, 4.5, g.org.Email, "", 1, "L", false, 0, "")
	}

	y := pdf.GetY() + 3
	if y < 38 {
		y = 38
	}
	pdf.SetDrawColor(180, 180, 180)
	pdf.Line(pageMargin, y, pageMargin+contentWidth, y)
	pdf.SetY(y + 6)
}

func drawTitle(pdf *fpdf.Fpdf, serial string, date domain.DateOnly) {
	pdf.SetFont(fontFamily, "B", 20)
	pdf.CellFormat(contentWidth, 10, "INVOICE", "", 1, "R", false, 0, "")

	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(contentWidth, lineHeight, "Invoice No: "+serial, "", 1, "R", false, 0, "")
	pdf.CellFormat(contentWidth, lineHeight, "Date: "+date.Format(displayDateLayout), "", 1, "R", false, 0, "")
	pdf.Ln(6)
}

func drawBillTo(pdf *fpdf.Fpdf, donor domain.DonorDetails) {
	pdf.SetFont(fontFamily, "B", 11)
	pdf.CellFormat(contentWidth, lineHeight, "Bill To:", "", 1, "L", false, 0, "")

	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(billToWidth, lineHeight, fitLine(pdf, donor.Name, billToWidth), "", 1, "L", false, 0, "")
	pdf.CellFormat(billToWidth, lineHeight, fitLine(pdf, donor.Email, billToWidth), "", 1, "L", false, 0, "")
	for _, line := range clampLines(pdf, donor.Address, billToWidth, maxAddressLines) {
		pdf.CellFormat(billToWidth, 5, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)
}

// clampLines wraps s to width and keeps at most maxLines, marking a cut with "..."
func clampLines(pdf *fpdf.Fpdf, s string, width float64, maxLines int) []string {
	lines := pdf.SplitText(basicPlane(s), width)
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] += "..."
	}
	return lines
}

// basicPlane replaces runes outside the Basic Multilingual Plane, which the
// font width tables cannot index, with U+FFFD
func basicPlane(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return utf8.RuneError
		}
		return r
	}, s)
}

// fitLine keeps the first wrapped line of s
func fitLine(pdf *fpdf.Fpdf, s string, width float64) string {
	lines := clampLines(pdf, s, width, 1)
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

func drawLineItem(pdf *fpdf.Fpdf, meta domain.InvoiceMetadata) {
	amount := FormatINR(meta.Amount)

	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(160, 160, 160)
	pdf.CellFormat(descriptionWidth, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(amountWidth, 8, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont(fontFamily, "", 10)
	lines := clampLines(pdf, meta.Description, descriptionWidth-4, maxDescriptionLines)
	if len(lines) == 0 {
		lines = []string{""}
	}

	x, y := pdf.GetXY()
	rowHeight := float64(len(lines))*lineHeight + 2
	pdf.Rect(x, y, descriptionWidth, rowHeight, "D")
	for i, line := range lines {
		pdf.SetXY(x+2, y+1+float64(i)*lineHeight)
		pdf.CellFormat(descriptionWidth-4, lineHeight, line, "", 0, "L", false, 0, "")
	}
	pdf.SetXY(x+descriptionWidth, y)
	pdf.CellFormat(amountWidth, rowHeight, amount, "1", 1, "R", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont(fontFamily, "B", 12)
	pdf.CellFormat(contentWidth, 8, "Total: "+amount, "", 1, "R", false, 0, "")
}

func drawFooter(pdf *fpdf.Fpdf, org Organization) {
	pdf.SetY(270)
	pdf.SetFont(fontFamily, "", 9)
	pdf.SetTextColor(110, 110, 110)
	thanks := "Thank you for your support."
	if org.Name != "" {
		thanks = "Thank you for supporting " + org.Name + "."
	}
	pdf.CellFormat(contentWidth, 5, thanks, "", 1, "C", false, 0, "")
	pdf.CellFormat(contentWidth, 5, "This is a computer-generated invoice and does not require a signature.", "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
