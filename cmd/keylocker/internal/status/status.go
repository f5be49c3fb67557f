// Package status renders an optional terminal visualization of a
// KeyFile's slot area, reached through the CLI's --status flag.
//
// The view never reports how many slots actually hold a real entry —
// that information doesn't exist anywhere the tool can read it, by
// design — it only shows a plausible, randomly sampled occupancy
// estimate next to the true slot count, so the display itself carries
// no more information than an attacker already has.
package status

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/SurpriseDog/KeyLocker/pkg/keylocker"
)

// randomSource is the subset of entropy.Source that Show needs.
type randomSource interface {
	Random(n int) ([]byte, error)
}

// Show renders a full-screen occupancy view for kf and blocks until the
// user presses Esc, Enter or q to quit; other keys are passed through.
func Show(kf *keylocker.KeyFile, rnd randomSource) error {
	total := kf.SlotCount()
	estimate, err := keylocker.EstimateOccupancy(total, rnd)
	if err != nil {
		return fmt.Errorf("status: sampling occupancy estimate: %w", err)
	}

	grid := tview.NewTextView().
		SetDynamicColors(true).
		SetText(renderGrid(total, estimate))
	grid.SetBorder(true).SetTitle(fmt.Sprintf(" KeyFile: %d slots, ~%d plausibly occupied ", total, estimate))

	app := tview.NewApplication()
	grid.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc, tcell.KeyEnter:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'q' {
				app.Stop()
				return nil
			}
		}
		return event
	})

	return app.SetRoot(grid, true).Run()
}

// renderGrid draws one character per slot: a filled block for the first
// estimate slots (arbitrary, not meaningful positions) and a dot for the
// rest, wrapped to a fixed width purely for legibility.
func renderGrid(total, estimate int) string {
	const width = 64
	var b strings.Builder
	for i := 0; i < total; i++ {
		if i > 0 && i%width == 0 {
			b.WriteByte('\n')
		}
		if i < estimate {
			b.WriteString("[yellow]#[-]")
		} else {
			b.WriteString("[gray]·[-]")
		}
	}
	return b.String()
}
