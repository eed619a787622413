package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot/plotutil"

	"github.com/banshee-data/trackconsole/internal/plotdata"
)

// estimateColor is used for every filtered-state overlay.
var estimateColor = color.RGBA{R: 220, G: 30, B: 30, A: 255}

// seriesColor returns the colour for s: the overlay colour for estimates,
// otherwise a palette colour fixed by track id so a track keeps its colour
// across modes and redraws.
func seriesColor(s plotdata.Series) color.Color {
	if s.Style.Estimate {
		return estimateColor
	}
	id := s.TrackID
	if id < 0 {
		id = -id
	}
	return plotutil.Color(id)
}

// hexColor formats c as #rrggbb.
func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
