package sink

import (
	"bytes"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/synmed/synviz/pkg/errors"
	"github.com/synmed/synviz/pkg/geometry"
	"github.com/synmed/synviz/pkg/piechart"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale float64
}

// WithPNGScale sets the pixel density (default 2.0 for 2x resolution).
func WithPNGScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

func newPNGRenderer(opts []PNGOption) pngRenderer {
	r := pngRenderer{scale: 2}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

var (
	fontsOnce   sync.Once
	regularFont *truetype.Font
	boldFont    *truetype.Font
)

func loadFonts() {
	fontsOnce.Do(func() {
		regularFont, _ = truetype.Parse(goregular.TTF)
		boldFont, _ = truetype.Parse(gobold.TTF)
	})
}

func face(bold bool, size float64) font.Face {
	loadFonts()
	f := regularFont
	if bold {
		f = boldFont
	}
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

// RenderPNG rasterizes a chart scene as it looks at its elapsed time.
func RenderPNG(s piechart.Scene, opts ...PNGOption) ([]byte, error) {
	r := newPNGRenderer(opts)
	l := layoutChart(s)

	dc := gg.NewContext(int(l.Width*r.scale), int(l.Height*r.scale))
	dc.SetColor(color.White)
	dc.Clear()
	dc.Scale(r.scale, r.scale)

	if s.Title != "" {
		dc.SetFontFace(face(true, 18))
		setHex(dc, textColor, 1)
		dc.DrawStringAnchored(s.Title, l.Width/2, l.TitleY, 0.5, 0)
	}

	for _, sl := range s.Slices {
		if sl.Opacity <= 0 {
			continue
		}
		pts := l.slicePolygon(sl.Sector, sl.Scale)
		if len(pts) == 0 {
			continue
		}
		dc.MoveTo(pts[0][0], pts[0][1])
		for _, p := range pts[1:] {
			dc.LineTo(p[0], p[1])
		}
		dc.ClosePath()
		setHex(dc, sl.Fill, sl.Opacity)
		dc.Fill()
	}

	if s.Center != "" {
		cx, cy := l.pieToFrame(geometry.Point{X: geometry.CenterX, Y: geometry.CenterY})
		dc.DrawCircle(cx, cy, centerRadius*pieSize/geometry.ViewBox)
		dc.SetRGBA(1, 1, 1, 0.9)
		dc.Fill()
		dc.SetFontFace(face(true, 12))
		setHex(dc, textColor, 1)
		dc.DrawStringAnchored(s.Center, cx, cy, 0.5, 0.35)
	}

	for _, e := range s.Legend {
		if e.Opacity <= 0 {
			continue
		}
		x, y := l.legendPos(e.Index)
		y += e.OffsetY
		dc.DrawCircle(x+swatchRadius, y+swatchRadius+4, swatchRadius)
		setHex(dc, e.Fill, e.Opacity)
		dc.Fill()

		dc.SetFontFace(face(true, 14))
		setHex(dc, textColor, e.Opacity)
		dc.DrawString(e.Label, x+24, y+16)
		dc.SetFontFace(face(false, 14))
		setHex(dc, mutedColor, e.Opacity)
		dc.DrawString(e.Detail, x+24, y+34)
	}

	return encodePNG(dc)
}

// RenderCounterPNG rasterizes a counter frame.
func RenderCounterPNG(v CounterView, opts ...PNGOption) ([]byte, error) {
	r := newPNGRenderer(opts)
	dc := gg.NewContext(int(counterWidth*r.scale), int(counterHeight*r.scale))
	dc.SetColor(color.White)
	dc.Clear()
	dc.Scale(r.scale, r.scale)

	dc.SetFontFace(face(true, 30))
	setHex(dc, counterColor, 1)
	dc.DrawStringAnchored(v.Frame.Text, counterWidth/2, 48, 0.5, 0)
	if v.Label != "" {
		dc.SetFontFace(face(false, 14))
		setHex(dc, mutedColor, 1)
		dc.DrawStringAnchored(v.Label, counterWidth/2, 76, 0.5, 0)
	}
	return encodePNG(dc)
}

func setHex(dc *gg.Context, hex string, alpha float64) {
	c := geometry.ParseHex(hex)
	dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(alpha*255))
}

func encodePNG(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}
