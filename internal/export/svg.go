package export

import (
	"fmt"
	"io"
	"strings"

	"genodyn/internal/dynamics"
	"genodyn/internal/simulate"
)

// One fixed color per genotype series, male solid hues first, female
// lighter tints second.
var seriesColors = [dynamics.Dim]string{
	"#e6194b", "#3cb44b", "#4363d8", "#f58231",
	"#fabed4", "#aaffc3", "#a9d1f7", "#ffd8b1",
}

const (
	svgMarginLeft   = 50.0
	svgMarginRight  = 120.0
	svgMarginTop    = 20.0
	svgMarginBottom = 40.0
)

// TrajectorySVG renders all eight share series as polylines against the
// generation axis.
func TrajectorySVG(w io.Writer, tr *simulate.Trajectory, width, height int) error {
	if tr.Len() < 2 {
		return fmt.Errorf("export: trajectory has %d states, want at least 2: %w", tr.Len(), dynamics.ErrInvalidArgument)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("export: chart size %dx%d, want positive: %w", width, height, dynamics.ErrInvalidArgument)
	}

	plotW := float64(width) - svgMarginLeft - svgMarginRight
	plotH := float64(height) - svgMarginTop - svgMarginBottom

	// Shares stay in [0, 1] on the simplex, but nothing pins an arbitrary
	// initial state there, so scale to the data.
	minY, maxY := tr.States[0][0], tr.States[0][0]
	for _, s := range tr.States {
		for _, v := range s {
			if v < minY {
				minY = v
			}
			if v > maxY {
				maxY = v
			}
		}
	}
	if maxY == minY {
		maxY = minY + 1
	}

	toX := func(k int) float64 {
		return svgMarginLeft + float64(k)/float64(tr.Len()-1)*plotW
	}
	toY := func(v float64) float64 {
		return svgMarginTop + (1-(v-minY)/(maxY-minY))*plotH
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	// Plot frame and extremal axis labels.
	sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#444444"/>
`, svgMarginLeft, svgMarginTop, plotW, plotH))
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="#aaaaaa" font-size="11" text-anchor="end">%.3g</text>
`, svgMarginLeft-6, svgMarginTop+10, maxY))
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="#aaaaaa" font-size="11" text-anchor="end">%.3g</text>
`, svgMarginLeft-6, svgMarginTop+plotH, minY))
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="#aaaaaa" font-size="11">generation 0 .. %d</text>
`, svgMarginLeft, float64(height)-12, tr.Len()-1))

	labels := trajectoryHeader()[1:]
	for i := 0; i < dynamics.Dim; i++ {
		sb.WriteString(fmt.Sprintf(`<polyline fill="none" stroke="%s" stroke-width="1.5" points="`, seriesColors[i]))
		for k, s := range tr.States {
			if k > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", toX(k), toY(s[i])))
		}
		sb.WriteString("\"/>\n")

		ly := svgMarginTop + 14*float64(i+1)
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-size="11">%s</text>
`, svgMarginLeft+plotW+10, ly, seriesColors[i], labels[i]))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
