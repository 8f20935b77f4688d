// Package cards renders printable library cards: CR80-sized cards laid
// out on A4 pages, fronts carrying the patron name and a Code 128
// barcode of the card code, backs carrying the name only. Back pages
// mirror the slot order so the sheet can be run through a duplex
// printer.
package cards

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/phpdave11/gofpdf"
)

// CR80 card dimensions in millimeters (standard credit card).
const (
	cardWidthMM  = 85.6
	cardHeightMM = 53.98
)

// Account is one card to print.
type Account struct {
	Name string
	Code string
}

// Printer lays cards out on A4 pages. The zero value is not usable;
// call NewPrinter.
type Printer struct {
	cols, rows       int
	marginX, marginY float64
	hGap, vGap       float64
}

// NewPrinter returns a printer with the standard 2x5 layout. The grid
// runs 299.9 mm tall on a 297 mm A4 page, so the bottom row's lower
// border clips at the page edge.
func NewPrinter() *Printer {
	return &Printer{
		cols:    2,
		rows:    5,
		marginX: 10,
		marginY: 10,
		hGap:    5,
		vGap:    5,
	}
}

// PerPage is how many cards fit on one page.
func (p *Printer) PerPage() int { return p.cols * p.rows }

type slot struct{ x, y float64 }

// slots returns the card origins on a page, row-major from the top
// left.
func (p *Printer) slots() []slot {
	out := make([]slot, 0, p.PerPage())
	for row := 0; row < p.rows; row++ {
		for col := 0; col < p.cols; col++ {
			out = append(out, slot{
				x: p.marginX + float64(col)*(cardWidthMM+p.hGap),
				y: p.marginY + float64(row)*(cardHeightMM+p.vGap),
			})
		}
	}
	return out
}

// Generate writes the PDF for the given accounts: all front pages
// first, then the matching back pages with mirrored slots.
func (p *Printer) Generate(accounts []Account, w io.Writer) error {
	if len(accounts) == 0 {
		return fmt.Errorf("no accounts to print")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	// Register one barcode image per account up front.
	for i, acct := range accounts {
		img, err := barcodePNG(acct.Code)
		if err != nil {
			return fmt.Errorf("barcode for %q: %w", acct.Name, err)
		}
		pdf.RegisterImageOptionsReader(
			imageName(i),
			gofpdf.ImageOptions{ImageType: "PNG"},
			bytes.NewReader(img),
		)
	}

	forward := p.slots()
	mirrored := make([]slot, len(forward))
	for i, s := range forward {
		mirrored[len(forward)-1-i] = s
	}

	for start := 0; start < len(accounts); start += p.PerPage() {
		pdf.AddPage()
		for offset, s := range forward {
			idx := start + offset
			if idx >= len(accounts) {
				break
			}
			p.drawFront(pdf, accounts[idx], imageName(idx), s)
		}
	}

	for start := 0; start < len(accounts); start += p.PerPage() {
		pdf.AddPage()
		for offset, s := range mirrored {
			idx := start + offset
			if idx >= len(accounts) {
				break
			}
			p.drawBack(pdf, accounts[idx], s)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (p *Printer) drawFront(pdf *gofpdf.Fpdf, acct Account, img string, s slot) {
	pdf.Rect(s.x, s.y, cardWidthMM, cardHeightMM, "D")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(s.x, s.y+5)
	pdf.CellFormat(cardWidthMM, 8, acct.Name, "", 0, "C", false, 0, "")

	barW := cardWidthMM - 20
	barH := 20.0
	pdf.ImageOptions(img,
		s.x+10, s.y+cardHeightMM/2-barH/2,
		barW, barH,
		false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}

func (p *Printer) drawBack(pdf *gofpdf.Fpdf, acct Account, s slot) {
	pdf.Rect(s.x, s.y, cardWidthMM, cardHeightMM, "D")

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(s.x, s.y+cardHeightMM/2-4)
	pdf.CellFormat(cardWidthMM, 8, acct.Name, "", 0, "C", false, 0, "")
}

func imageName(i int) string { return fmt.Sprintf("card-%d", i) }

// barcodePNG encodes text as a Code 128 barcode PNG. The pixel size is
// generous; gofpdf scales it to the card.
func barcodePNG(text string) ([]byte, error) {
	bc, err := code128.Encode(text)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(bc, 600, 180)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
