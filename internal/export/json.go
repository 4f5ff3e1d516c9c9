package export

import (
	"encoding/json"
	"io"
	"math"
	"time"

	"genodyn/internal/dynamics"
	"genodyn/internal/simulate"
)

// RunMeta identifies the run an export came from.
type RunMeta struct {
	Scenario  string             `json:"scenario"`
	Params    map[string]float64 `json:"params"`
	Timestamp time.Time          `json:"timestamp"`
}

type trajectoryDoc struct {
	RunMeta
	Generations int      `json:"generations"`
	Converged   bool     `json:"converged"`
	FinalDelta  *float64 `json:"final_delta,omitempty"`
	Genotypes   []string `json:"genotypes"`

	// States is row-per-generation, male shares then female shares.
	States [][]float64 `json:"states"`
}

// TrajectoryJSON writes an indented JSON document with a metadata header,
// one state row per generation. A FinalDelta of NaN (a run with no
// generations) is omitted rather than emitted, since JSON has no NaN.
func TrajectoryJSON(w io.Writer, meta RunMeta, tr *simulate.Trajectory) error {
	doc := trajectoryDoc{
		RunMeta:     meta,
		Generations: tr.Len(),
		Converged:   tr.Converged,
		Genotypes:   dynamics.GenotypeNames[:],
		States:      make([][]float64, tr.Len()),
	}
	if !math.IsNaN(tr.FinalDelta) {
		d := tr.FinalDelta
		doc.FinalDelta = &d
	}
	for i, s := range tr.States {
		doc.States[i] = s
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
