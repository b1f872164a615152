package piechart_test

import (
	"fmt"
	"time"

	"github.com/synmed/synviz/pkg/geometry"
	"github.com/synmed/synviz/pkg/piechart"
	"github.com/synmed/synviz/pkg/schedule"
)

func ExampleChart_Reveal() {
	clock := schedule.NewVirtual()
	chart := piechart.New(clock, []geometry.Segment{
		{Label: "Construction", Percentage: 50},
		{Label: "Agriculture", Percentage: 30},
		{Label: "Others", Percentage: 20},
	}, piechart.WithID("sectors"))
	defer chart.Close()

	chart.OnTransition(func(tr piechart.Transition) {
		fmt.Println(tr.At, tr.Kind, tr.Index)
	})
	chart.Reveal()
	clock.Advance(chart.Timing().TotalDuration(3))
	fmt.Println("done:", chart.Scene().Done())
	// Output:
	// 0s slice 0
	// 150ms slice 1
	// 300ms slice 2
	// 800ms legend 0
	// 900ms legend 1
	// 1s legend 2
	// done: true
}

func ExampleChart_SceneAt() {
	clock := schedule.NewVirtual()
	chart := piechart.New(clock, []geometry.Segment{
		{Label: "West Bengal", Percentage: 35, Detail: "1.2M"},
		{Label: "Others", Percentage: 65},
	})
	chart.Reveal()

	s := chart.SceneAt(150 * time.Millisecond)
	for _, sl := range s.Slices {
		fmt.Printf("%s opacity %.2f\n", sl.Label, sl.Opacity)
	}
	fmt.Println(s.Legend[0].Detail)
	// Output:
	// West Bengal opacity 0.27
	// Others opacity 0.00
	// 1.2M (35%)
}
