package visibility_test

import (
	"fmt"

	"github.com/synmed/synviz/pkg/visibility"
)

func ExampleTrigger() {
	// A 800x600 window over a page whose chart starts one screen down.
	vp := visibility.NewViewport(800, 600)
	vp.Place("states", visibility.Rect{X: 100, Y: 600, W: 400, H: 400})

	trigger := visibility.NewTrigger(vp, "states", visibility.ChartThreshold)
	defer trigger.Close()
	trigger.OnVisible(func() { fmt.Println("reveal at", vp.View().Y) })

	for _, y := range []float64{40, 100, 160, 0} {
		vp.ScrollTo(y)
		fmt.Printf("scroll %v: %.2f visible\n", y, vp.Ratio("states"))
	}
	// Output:
	// scroll 40: 0.10 visible
	// scroll 100: 0.25 visible
	// reveal at 160
	// scroll 160: 0.40 visible
	// scroll 0: 0.00 visible
}
