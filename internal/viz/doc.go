// Package viz renders trajectories and live runs in the terminal.
//
//   - [SharesChart] draws genotype shares over generations as an
//     asciigraph multi-series plot.
//   - [LiveModel] is a bubbletea model that steps the generation map
//     on a timer with pause, reset, and speed controls.
//
// The live view draws itself from the lipgloss package variables
// ([HeaderStyle], [LabelStyle], and friends).
package viz
