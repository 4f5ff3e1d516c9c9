package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"genodyn/internal/dynamics"
	"genodyn/internal/simulate"
	"genodyn/internal/sweep"
)

// trajectoryHeader is the column layout shared by the CSV and SVG exports:
// generation counter, four male shares, four female shares.
func trajectoryHeader() []string {
	header := []string{"generation"}
	for _, g := range dynamics.GenotypeNames {
		header = append(header, "m_"+g)
	}
	for _, g := range dynamics.GenotypeNames {
		header = append(header, "f_"+g)
	}
	return header
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// TrajectoryCSV writes one row per generation.
func TrajectoryCSV(w io.Writer, tr *simulate.Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(trajectoryHeader()); err != nil {
		return err
	}

	row := make([]string, 0, dynamics.Dim+1)
	for k, s := range tr.States {
		row = row[:0]
		row = append(row, strconv.Itoa(k))
		for _, v := range s {
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReportCSV writes one row per sweep guess. Rejected guesses carry their
// NaN state markers; the stable column stays empty when no classification
// ran.
func ReportCSV(w io.Writer, rep *sweep.Report) error {
	cw := csv.NewWriter(w)

	header := []string{"guess", "accepted", "objective", "residual", "iterations"}
	for _, g := range dynamics.GenotypeNames {
		header = append(header, "m_"+g)
	}
	for _, g := range dynamics.GenotypeNames {
		header = append(header, "f_"+g)
	}
	header = append(header, "spectral_radius", "stable")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, o := range rep.Outcomes {
		row := []string{
			strconv.Itoa(o.Index),
			strconv.FormatBool(o.Accepted),
			formatFloat(o.Result.Objective),
			formatFloat(o.Result.ResidualNorm),
			strconv.Itoa(o.Result.Iterations),
		}
		for _, v := range o.Result.State {
			row = append(row, formatFloat(v))
		}
		if o.Verdict != nil {
			row = append(row, formatFloat(o.Verdict.SpectralRadius), strconv.FormatBool(o.Verdict.Stable))
		} else {
			row = append(row, "NaN", "")
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ScanCSV writes one row per parameter value of a scan.
func ScanCSV(w io.Writer, name string, points []sweep.ScanPoint) error {
	cw := csv.NewWriter(w)

	header := []string{name, "accepted"}
	for _, g := range dynamics.GenotypeNames {
		header = append(header, "m_"+g)
	}
	for _, g := range dynamics.GenotypeNames {
		header = append(header, "f_"+g)
	}
	header = append(header, "spectral_radius", "stable")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, pt := range points {
		row := []string{formatFloat(pt.Value), strconv.FormatBool(pt.Accepted)}
		for _, v := range pt.Result.State {
			row = append(row, formatFloat(v))
		}
		if pt.Verdict != nil {
			row = append(row, formatFloat(pt.Verdict.SpectralRadius), strconv.FormatBool(pt.Verdict.Stable))
		} else {
			row = append(row, "NaN", "")
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile routes any of the writer-based exports to a file path.
func WriteFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
