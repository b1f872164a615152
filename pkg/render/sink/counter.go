package sink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/synmed/synviz/pkg/counter"
	"github.com/synmed/synviz/pkg/visibility"
)

const (
	counterWidth  = 320.0
	counterHeight = 96.0
	counterColor  = "#2563EB"
)

const countUpJS = `
    (function () {
      var el = document.getElementById(%[1]s);
      if (!el || !('IntersectionObserver' in window)) return;
      var value = el.querySelector('.counter-value');
      var frames = %[2]s;
      var io = new IntersectionObserver(function (entries) {
        entries.forEach(function (e) {
          if (!e.isIntersecting || e.intersectionRatio < %[3]s) return;
          io.disconnect();
          var k = 0;
          var timer = setInterval(function () {
            k++;
            value.textContent = frames[k];
            if (k >= frames.length - 1) clearInterval(timer);
          }, %[4]s);
        });
      }, { threshold: %[3]s });
      io.observe(el);
    })();`

// CounterView is what a sink needs to paint a counter.
type CounterView struct {
	ID       string        `json:"id"`
	Label    string        `json:"label,omitempty"`
	Frame    counter.Frame `json:"frame"`
	Texts    []string      `json:"texts,omitempty"` // text before start and after each tick
	Interval time.Duration `json:"interval"`
}

// CounterViewOf captures a's current frame and its full text sequence.
func CounterViewOf(id, label string, a *counter.Animator) CounterView {
	return CounterView{
		ID:       id,
		Label:    label,
		Frame:    a.Frame(),
		Texts:    a.Texts(),
		Interval: a.Interval(),
	}
}

// RenderCounterSVG renders a counter. With [WithAnimation] the value starts
// at the first text and counts up in the browser once visible; otherwise the
// view's frame is painted.
func RenderCounterSVG(v CounterView, opts ...SVGOption) []byte {
	r := svgRenderer{scale: 1, standalone: true, threshold: visibility.CounterThreshold}
	for _, opt := range opts {
		opt(&r)
	}

	text := v.Frame.Text
	if r.animated && len(v.Texts) > 0 && v.Frame.Step == 0 {
		text = v.Texts[0]
	}

	var buf bytes.Buffer
	xmlns := ""
	if r.standalone {
		xmlns = ` xmlns="http://www.w3.org/2000/svg"`
	}
	fmt.Fprintf(&buf, `<svg%s id="%s" class="synviz-counter" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		xmlns, escapeXML(v.ID), num(counterWidth), num(counterHeight), num(counterWidth*r.scale), num(counterHeight*r.scale))
	fmt.Fprintf(&buf, `  <text class="counter-value" x="%s" y="48" text-anchor="middle" font-family="%s" font-size="30" font-weight="700" fill="%s">%s</text>`+"\n",
		num(counterWidth/2), fontFamily, counterColor, escapeXML(text))
	if v.Label != "" {
		fmt.Fprintf(&buf, `  <text x="%s" y="76" text-anchor="middle" font-family="%s" font-size="14" fill="%s">%s</text>`+"\n",
			num(counterWidth/2), fontFamily, mutedColor, escapeXML(v.Label))
	}
	if r.animated && len(v.Texts) > 1 && v.Frame.Step == 0 {
		frames, _ := json.Marshal(v.Texts)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n",
			fmt.Sprintf(countUpJS, strconv.Quote(v.ID), frames, num(r.threshold), strconv.FormatInt(max(v.Interval.Milliseconds(), 1), 10)))
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}
