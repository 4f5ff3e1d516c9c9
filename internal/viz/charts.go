package viz

import (
	"github.com/guptarohit/asciigraph"

	"genodyn/internal/dynamics"
	"genodyn/internal/simulate"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Red, asciigraph.Green, asciigraph.Blue, asciigraph.Orange,
	asciigraph.Pink, asciigraph.PaleGreen, asciigraph.LightBlue, asciigraph.Wheat,
}

// SeriesLegends labels the eight share series, male half first.
func SeriesLegends() []string {
	legends := make([]string, 0, dynamics.Dim)
	for _, g := range dynamics.GenotypeNames {
		legends = append(legends, "m "+g)
	}
	for _, g := range dynamics.GenotypeNames {
		legends = append(legends, "f "+g)
	}
	return legends
}

// SharesChart plots every share series of a trajectory against the
// generation axis.
func SharesChart(tr *simulate.Trajectory, width, height int) string {
	series := make([][]float64, dynamics.Dim)
	for i := range series {
		series[i] = tr.Series(i)
	}
	return plotSeries(series, width, height, "genotype shares by generation")
}

func plotSeries(series [][]float64, width, height int, caption string) string {
	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(seriesColors...),
		asciigraph.SeriesLegends(SeriesLegends()...),
		asciigraph.Caption(caption),
	)
}
