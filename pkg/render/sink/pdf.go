package sink

import (
	"bytes"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/synmed/synviz/pkg/errors"
	"github.com/synmed/synviz/pkg/geometry"
	"github.com/synmed/synviz/pkg/piechart"
)

const (
	pxToMM    = 0.25 // 448px chart card -> 112mm
	pageW     = 210.0
	pageH     = 297.0
	pageMarg  = 15.0
	pdfFamily = "go"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	title string
}

// WithPDFTitle sets the report heading on the first page.
func WithPDFTitle(s string) PDFOption { return func(r *pdfRenderer) { r.title = s } }

// RenderPDF renders a report: counters first, then each chart scene, flowing
// onto new A4 pages as needed.
func RenderPDF(charts []piechart.Scene, counters []CounterView, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMarg, pageMarg, pageMarg)
	pdf.SetAutoPageBreak(false, pageMarg)
	pdf.AddUTF8FontFromBytes(pdfFamily, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(pdfFamily, "B", gobold.TTF)
	pdf.AddPage()

	y := pageMarg
	if r.title != "" {
		pdf.SetFont(pdfFamily, "B", 16)
		setPDFColor(pdf, textColor)
		pdf.Text(pageMarg, y+6, r.title)
		y += 14
	}

	for _, c := range counters {
		h := counterHeight * pxToMM
		if y+h > pageH-pageMarg {
			pdf.AddPage()
			y = pageMarg
		}
		ox := (pageW - counterWidth*pxToMM) / 2
		pdf.SetFont(pdfFamily, "B", 20)
		pdf.SetTextColor(0x25, 0x63, 0xEB)
		centerText(pdf, ox, y+12, counterWidth*pxToMM, c.Frame.Text)
		if c.Label != "" {
			pdf.SetFont(pdfFamily, "", 10)
			setPDFColor(pdf, mutedColor)
			centerText(pdf, ox, y+19, counterWidth*pxToMM, c.Label)
		}
		y += h
	}

	for _, s := range charts {
		l := layoutChart(s)
		h := l.Height * pxToMM
		if y+h > pageH-pageMarg {
			pdf.AddPage()
			y = pageMarg
		}
		drawPDFChart(pdf, l, s, (pageW-l.Width*pxToMM)/2, y)
		y += h
	}

	if err := pdf.Error(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build pdf")
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write pdf")
	}
	return buf.Bytes(), nil
}

func drawPDFChart(pdf *fpdf.Fpdf, l chartLayout, s piechart.Scene, ox, oy float64) {
	at := func(x, y float64) (float64, float64) { return ox + x*pxToMM, oy + y*pxToMM }

	if s.Title != "" {
		pdf.SetFont(pdfFamily, "B", 12)
		setPDFColor(pdf, textColor)
		x, y := at(0, l.TitleY)
		centerText(pdf, x, y, l.Width*pxToMM, s.Title)
	}

	for _, sl := range s.Slices {
		if sl.Opacity <= 0 {
			continue
		}
		pts := l.slicePolygon(sl.Sector, sl.Scale)
		if len(pts) == 0 {
			continue
		}
		poly := make([]fpdf.PointType, len(pts))
		for i, p := range pts {
			poly[i].X, poly[i].Y = at(p[0], p[1])
		}
		setPDFFill(pdf, sl.Fill)
		pdf.SetAlpha(sl.Opacity, "Normal")
		pdf.Polygon(poly, "F")
	}
	pdf.SetAlpha(1, "Normal")

	if s.Center != "" {
		cx, cy := at(l.pieToFrame(geometry.Point{X: geometry.CenterX, Y: geometry.CenterY}))
		pdf.SetFillColor(0xFF, 0xFF, 0xFF)
		pdf.Circle(cx, cy, centerRadius*pieSize/geometry.ViewBox*pxToMM, "F")
		pdf.SetFont(pdfFamily, "B", 8)
		setPDFColor(pdf, textColor)
		centerText(pdf, cx-10, cy+1, 20, s.Center)
	}

	for _, e := range s.Legend {
		if e.Opacity <= 0 {
			continue
		}
		x, y := l.legendPos(e.Index)
		y += e.OffsetY
		pdf.SetAlpha(e.Opacity, "Normal")
		setPDFFill(pdf, e.Fill)
		sx, sy := at(x+swatchRadius, y+swatchRadius+4)
		pdf.Circle(sx, sy, swatchRadius*pxToMM, "F")

		tx, ty := at(x+24, y+16)
		pdf.SetFont(pdfFamily, "B", 9)
		setPDFColor(pdf, textColor)
		pdf.Text(tx, ty, e.Label)
		_, dy := at(0, y+34)
		pdf.SetFont(pdfFamily, "", 9)
		setPDFColor(pdf, mutedColor)
		pdf.Text(tx, dy, e.Detail)
	}
	pdf.SetAlpha(1, "Normal")
}

func centerText(pdf *fpdf.Fpdf, x, baseline, w float64, s string) {
	pdf.Text(x+(w-pdf.GetStringWidth(s))/2, baseline, s)
}

func setPDFColor(pdf *fpdf.Fpdf, hex string) {
	c := geometry.ParseHex(hex)
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}

func setPDFFill(pdf *fpdf.Fpdf, hex string) {
	c := geometry.ParseHex(hex)
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
