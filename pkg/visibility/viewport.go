package visibility

import "math"

// Rect is an axis-aligned rectangle in page coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Area returns the rectangle's area, or 0 for degenerate rectangles.
func (r Rect) Area() float64 {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// Intersect returns the overlap of r and o.
func (r Rect) Intersect(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.X+r.W, o.X+o.W)
	y1 := math.Min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Viewport is an Observer over rectangular regions laid out on a page.
// Moving the viewport (ScrollTo, Resize) or moving a region (Place)
// re-evaluates every observation and reports those whose state changed.
//
// Viewport is not safe for concurrent use.
type Viewport struct {
	view    Rect
	regions map[string]Rect
	obs     []*observation
}

type observation struct {
	vp      *Viewport
	region  string
	fn      func(Entry)
	last    Entry
	started bool
	active  bool
}

// NewViewport creates a viewport of the given size at the top of the page.
func NewViewport(width, height float64) *Viewport {
	return &Viewport{
		view:    Rect{W: width, H: height},
		regions: make(map[string]Rect),
	}
}

// View returns the current viewport rectangle.
func (v *Viewport) View() Rect { return v.view }

// Place positions region on the page.
func (v *Viewport) Place(region string, r Rect) {
	v.regions[region] = r
	v.evaluate()
}

// Remove deletes region from the page. Observers of a removed region
// receive a non-intersecting report.
func (v *Viewport) Remove(region string) {
	delete(v.regions, region)
	v.evaluate()
}

// ScrollTo moves the top edge of the viewport to y.
func (v *Viewport) ScrollTo(y float64) {
	v.view.Y = y
	v.evaluate()
}

// ScrollBy moves the viewport by dy.
func (v *Viewport) ScrollBy(dy float64) {
	v.ScrollTo(v.view.Y + dy)
}

// Resize changes the viewport dimensions.
func (v *Viewport) Resize(width, height float64) {
	v.view.W, v.view.H = width, height
	v.evaluate()
}

// Ratio returns the visible fraction of region.
func (v *Viewport) Ratio(region string) float64 {
	return v.entry(region).Ratio
}

// Observe implements Observer. The current state is reported immediately.
func (v *Viewport) Observe(region string, _ float64, fn func(Entry)) Subscription {
	o := &observation{vp: v, region: region, fn: fn, active: true}
	v.obs = append(v.obs, o)
	o.report(v.entry(region))
	return o
}

func (v *Viewport) entry(region string) Entry {
	r, ok := v.regions[region]
	if !ok || r.Area() == 0 {
		return Entry{Region: region}
	}
	overlap := r.Intersect(v.view).Area()
	return Entry{
		Region:       region,
		Ratio:        overlap / r.Area(),
		Intersecting: overlap > 0,
	}
}

func (v *Viewport) evaluate() {
	// Callbacks may unobserve, so iterate over a snapshot.
	snapshot := append([]*observation(nil), v.obs...)
	for _, o := range snapshot {
		if o.active {
			o.report(v.entry(o.region))
		}
	}
}

func (o *observation) report(e Entry) {
	if o.started && e == o.last {
		return
	}
	o.started = true
	o.last = e
	o.fn(e)
}

// Unobserve implements Subscription.
func (o *observation) Unobserve() {
	if !o.active {
		return
	}
	o.active = false
	obs := o.vp.obs
	for i, p := range obs {
		if p == o {
			o.vp.obs = append(obs[:i], obs[i+1:]...)
			break
		}
	}
}

// Observers returns the number of live observations.
func (v *Viewport) Observers() int { return len(v.obs) }
