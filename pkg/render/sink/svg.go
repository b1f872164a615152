package sink

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/synmed/synviz/pkg/piechart"
	"github.com/synmed/synviz/pkg/visibility"
)

// easeOutCSS is the cubic ease-out curve of piechart.EaseOut.
const easeOutCSS = "cubic-bezier(0.33, 1, 0.68, 1)"

// chartCSS holds the hidden and revealed states; %[1]s is the chart ID
// selector, %[2]d/%[3]d the slice/legend durations in ms.
const chartCSS = `
    %[1]s .slice { opacity: 0; transform: scale(0.75); transform-origin: 50%% 50%%; transform-box: view-box;
      transition: opacity %[2]dms %[4]s, transform %[2]dms %[4]s; }
    %[1]s.revealed .slice { opacity: 1; transform: scale(1); filter: drop-shadow(0 4px 8px rgba(0,0,0,0.1)); }
    %[1]s .legend-entry { opacity: 0; transform: translateY(16px); transition: opacity %[3]dms %[4]s, transform %[3]dms %[4]s; }
    %[1]s.revealed .legend-entry { opacity: 1; transform: none; }`

// revealJS flips the chart to its revealed state the first time enough of it
// is visible. Without IntersectionObserver the chart stays hidden.
const revealJS = `
    (function () {
      var el = document.getElementById(%[1]s);
      if (!el || !('IntersectionObserver' in window)) return;
      var io = new IntersectionObserver(function (entries) {
        entries.forEach(function (e) {
          if (e.isIntersecting && e.intersectionRatio >= %[2]s) {
            el.classList.add('revealed');
            io.disconnect();
          }
        });
      }, { threshold: %[2]s });
      io.observe(el);
    })();`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	scale      float64
	animated   bool
	threshold  float64
	timing     piechart.Timing
	standalone bool
}

// WithScale multiplies the output width and height. The view box is unchanged.
func WithScale(s float64) SVGOption {
	return func(r *svgRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithAnimation emits CSS transitions and a reveal script instead of a
// static frame. The chart reveals when at least threshold of it is visible.
func WithAnimation(threshold float64, timing piechart.Timing) SVGOption {
	return func(r *svgRenderer) {
		r.animated = true
		r.threshold = visibility.ClampThreshold(threshold)
		r.timing = timing
	}
}

// WithInline omits the XML namespace so the SVG can be embedded in HTML.
func WithInline() SVGOption { return func(r *svgRenderer) { r.standalone = false } }

// RenderSVG renders a chart scene.
//
// Without [WithAnimation] the output is a static frame: every element is
// painted with the opacity and scale it has in s. With it, elements carry
// their per-index transition-delay and the browser animates the reveal.
func RenderSVG(s piechart.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{scale: 1, standalone: true, timing: piechart.DefaultTiming()}
	for _, opt := range opts {
		opt(&r)
	}
	l := layoutChart(s)

	var buf bytes.Buffer
	xmlns := ""
	if r.standalone {
		xmlns = ` xmlns="http://www.w3.org/2000/svg"`
	}
	class := "synviz-chart"
	if r.animated && s.Revealed {
		class += " revealed"
	}
	fmt.Fprintf(&buf, `<svg%s id="%s" class="%s" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		xmlns, escapeXML(s.ID), class, num(l.Width), num(l.Height), num(l.Width*r.scale), num(l.Height*r.scale))

	if r.animated {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", fmt.Sprintf(chartCSS,
			"#"+cssIdent(s.ID), r.timing.Duration.Milliseconds(), r.timing.LegendDuration.Milliseconds(), easeOutCSS))
	}

	if s.Title != "" {
		fmt.Fprintf(&buf, `  <text x="%s" y="%s" text-anchor="middle" font-family="%s" font-size="18" font-weight="600" fill="%s">%s</text>`+"\n",
			num(l.Width/2), num(l.TitleY), fontFamily, textColor, escapeXML(s.Title))
	}

	renderPie(&buf, &r, l, s)
	renderLegend(&buf, &r, l, s)

	if r.animated {
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n",
			fmt.Sprintf(revealJS, strconv.Quote(s.ID), num(r.threshold)))
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderPie(buf *bytes.Buffer, r *svgRenderer, l chartLayout, s piechart.Scene) {
	fmt.Fprintf(buf, `  <svg x="%s" y="%s" width="%s" height="%s" viewBox="0 0 100 100">`+"\n",
		num(l.PieX), num(l.PieY), num(pieSize), num(pieSize))
	buf.WriteString(`    <g transform="rotate(-90 50 50)">` + "\n")
	for _, sl := range s.Slices {
		if sl.Sector.Empty() {
			continue
		}
		if r.animated {
			fmt.Fprintf(buf, `      <path class="slice" d="%s" fill="%s" style="transition-delay: %s"><title>%s</title></path>`+"\n",
				sl.Path, sl.Fill, ms(sl.Delay), escapeXML(sl.Label))
			continue
		}
		if sl.Opacity <= 0 {
			continue
		}
		fmt.Fprintf(buf, `      <path class="slice" d="%s" fill="%s" opacity="%s" transform="translate(50 50) scale(%s) translate(-50 -50)"><title>%s</title></path>`+"\n",
			sl.Path, sl.Fill, num(sl.Opacity), num(sl.Scale), escapeXML(sl.Label))
	}
	buf.WriteString("    </g>\n")
	if s.Center != "" {
		fmt.Fprintf(buf, `    <circle cx="50" cy="50" r="%s" fill="#FFFFFF" fill-opacity="0.9"/>`+"\n", num(centerRadius))
		fmt.Fprintf(buf, `    <text x="50" y="50" text-anchor="middle" dominant-baseline="central" font-family="%s" font-size="4.7" font-weight="600" fill="%s">%s</text>`+"\n",
			fontFamily, textColor, escapeXML(s.Center))
	}
	buf.WriteString("  </svg>\n")
}

func renderLegend(buf *bytes.Buffer, r *svgRenderer, l chartLayout, s piechart.Scene) {
	for _, e := range s.Legend {
		x, y := l.legendPos(e.Index)
		fmt.Fprintf(buf, `  <g transform="translate(%s %s)">`+"\n", num(x), num(y))
		switch {
		case r.animated:
			fmt.Fprintf(buf, `    <g class="legend-entry" style="transition-delay: %s">`+"\n", ms(e.Delay))
		default:
			fmt.Fprintf(buf, `    <g class="legend-entry" opacity="%s" transform="translate(0 %s)">`+"\n", num(e.Opacity), num(e.OffsetY))
		}
		fmt.Fprintf(buf, `      <circle cx="%s" cy="%s" r="%s" fill="%s"/>`+"\n",
			num(swatchRadius), num(swatchRadius+4), num(swatchRadius), e.Fill)
		fmt.Fprintf(buf, `      <text x="24" y="16" font-family="%s" font-size="14" font-weight="500" fill="%s">%s</text>`+"\n",
			fontFamily, textColor, escapeXML(e.Label))
		fmt.Fprintf(buf, `      <text x="24" y="34" font-family="%s" font-size="14" fill="%s">%s</text>`+"\n",
			fontFamily, mutedColor, escapeXML(e.Detail))
		buf.WriteString("    </g>\n  </g>\n")
	}
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ms(d time.Duration) string { return strconv.FormatInt(d.Milliseconds(), 10) + "ms" }

// cssIdent escapes id for use after '#' in a CSS selector.
func cssIdent(id string) string {
	var b strings.Builder
	for i, c := range id {
		switch {
		case c == '-' || c == '_' || unicode.IsLetter(c):
		case unicode.IsDigit(c) && i > 0:
		default:
			fmt.Fprintf(&b, "\\%x ", c)
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
