package shopping

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/config"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatText Format = "txt"

	ContentTypePDF  = "application/pdf"
	ContentTypeText = "text/plain; charset=utf-8"

	Title       = "Shopping list"
	EmptyMarker = "Shopping list is empty."
)

// Page geometry in points, A4 portrait, measured from the top edge.
const (
	pageHeight   = 841.89
	fontSize     = 12
	lineX        = 100
	titleY       = 60
	firstLineY   = 92
	lineSpacing  = 20
	bottomMargin = 50
	fontFamily   = "export"
)

var ErrUnknownFormat = errors.New("unknown export format")

// defaultFont covers Latin and Cyrillic; EXPORT_FONT_PATH replaces it.
//
//go:embed fonts/DejaVuSansCondensed.ttf
var defaultFont []byte

// documentDate pins /CreationDate and /ModDate.
var documentDate = time.Unix(0, 0).UTC()

type (
	Document struct {
		Body        []byte
		ContentType string
		FileName    string
	}

	Exporter struct {
		pdfFileName string
		txtFileName string
		fontPath    string
	}
)

func NewExporter(cfg *config.Config) *Exporter {
	return &Exporter{
		pdfFileName: cfg.ExportPDFFileName,
		txtFileName: cfg.ExportTXTFileName,
		fontPath:    cfg.ExportFontPath,
	}
}

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatText, "text":
		return FormatText, nil
	}
	return "", errors.Wrap(ErrUnknownFormat, s)
}

// FormatLine renders one entry with its 1-based position.
func FormatLine(index int, e Entry) string {
	return fmt.Sprintf("%d. %s (%s) - %d", index, e.Name, e.MeasurementUnit, e.Amount)
}

func Lines(entries []Entry) []string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = FormatLine(i+1, e)
	}
	return lines
}

func (e *Exporter) Export(entries []Entry, format Format) (*Document, error) {
	switch format {
	case FormatPDF:
		body, err := e.renderPDF(Lines(entries))
		if err != nil {
			return nil, err
		}
		return &Document{Body: body, ContentType: ContentTypePDF, FileName: e.pdfFileName}, nil
	case FormatText:
		return &Document{Body: renderText(Lines(entries)), ContentType: ContentTypeText, FileName: e.txtFileName}, nil
	}
	return nil, errors.Wrap(ErrUnknownFormat, string(format))
}

func renderText(lines []string) []byte {
	var b strings.Builder
	b.WriteString(Title)
	b.WriteString("\n\n")
	if len(lines) == 0 {
		b.WriteString(EmptyMarker)
		b.WriteString("\n")
	}
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	return []byte(b.String())
}

// Paginate splits lines into pages. A page holds every line whose cursor stays above the
// bottom margin; the cursor restarts at the first line position on each new page.
// An empty list still yields one empty page.
func Paginate(lines []string) [][]string {
	pages := [][]string{{}}
	y := float64(firstLineY)
	for _, l := range lines {
		if y > pageHeight-bottomMargin {
			pages = append(pages, []string{})
			y = firstLineY
		}
		pages[len(pages)-1] = append(pages[len(pages)-1], l)
		y += lineSpacing
	}
	return pages
}

func (e *Exporter) renderPDF(lines []string) ([]byte, error) {
	fontDir := ""
	if e.fontPath != "" {
		fontDir = filepath.Dir(e.fontPath)
	}
	pdf := fpdf.New("P", "pt", "A4", fontDir)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(documentDate)
	pdf.SetModificationDate(documentDate)
	pdf.SetTitle(Title, true)

	if e.fontPath != "" {
		pdf.AddUTF8Font(fontFamily, "", filepath.Base(e.fontPath))
	} else {
		pdf.AddUTF8FontFromBytes(fontFamily, "", defaultFont)
	}
	pdf.SetFont(fontFamily, "", fontSize)

	for i, page := range Paginate(lines) {
		pdf.AddPage()
		if i == 0 {
			pdf.Text(lineX, titleY, Title)
			if len(lines) == 0 {
				pdf.Text(lineX, firstLineY, EmptyMarker)
			}
		}
		y := float64(firstLineY)
		for _, l := range page {
			pdf.Text(lineX, y, l)
			y += lineSpacing
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "render pdf")
	}
	return buf.Bytes(), nil
}
