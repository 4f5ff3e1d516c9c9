package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"genodyn/internal/config"
	"genodyn/internal/dynamics"
	"genodyn/internal/equilibrium"
	"genodyn/internal/export"
	"genodyn/internal/genetics"
	"genodyn/internal/simulate"
	"genodyn/internal/stability"
	"genodyn/internal/sweep"
	"genodyn/internal/viz"
)

var (
	configFile string
	preset     string
	m0         float64
	steps      int
	rtol       float64
	maxSteps   int
	strategy   string
	method     string
	tol        float64
	maxIter    int
	useJac     bool
	guesses    int
	seed       uint64
	acceptTol  float64
	workers    int
	scanPoints int
	shareIdx   int
	chartW     int
	chartH     int
	csvPath    string
	jsonPath   string
	svgPath    string
)

const (
	svgWidth  = 960
	svgHeight = 540
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "genodyn",
		Short: "genotype share dynamics: trajectories, equilibria, stability",
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "run a trajectory of the generation map",
		RunE:  runSimulate,
	}
	addScenarioFlags(simulateCmd)
	simulateCmd.Flags().IntVar(&steps, "steps", 0, "fixed trajectory length (0 = run to rtol)")
	simulateCmd.Flags().Float64Var(&rtol, "rtol", config.DefaultRTol, "settle tolerance on per-generation change")
	simulateCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "generation cap for rtol runs (0 = 50000)")
	addChartFlags(simulateCmd)
	simulateCmd.Flags().StringVar(&csvPath, "csv", "", "write trajectory CSV to file")
	simulateCmd.Flags().StringVar(&jsonPath, "json", "", "write trajectory JSON to file")
	simulateCmd.Flags().StringVar(&svgPath, "svg", "", "write trajectory SVG to file")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "search for an equilibrium from the initial condition",
		RunE:  runSolve,
	}
	addScenarioFlags(solveCmd)
	addSolverFlags(solveCmd)
	solveCmd.Flags().Float64Var(&acceptTol, "accept-tol", sweep.DefaultAcceptTol, "objective tolerance for accepting an equilibrium")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "solve from many random simplex guesses",
		RunE:  runSweep,
	}
	addScenarioFlags(sweepCmd)
	addSolverFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&guesses, "guesses", config.DefaultGuessN, "number of random initial guesses")
	sweepCmd.Flags().Uint64Var(&seed, "seed", config.DefaultGuessSeed, "random seed for the guess generator")
	sweepCmd.Flags().Float64Var(&acceptTol, "accept-tol", sweep.DefaultAcceptTol, "objective tolerance for accepting an equilibrium")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent searches (0 = all cores)")
	sweepCmd.Flags().StringVar(&csvPath, "csv", "", "write sweep report CSV to file")

	scanCmd := &cobra.Command{
		Use:   "scan [param] [from] [to]",
		Short: "track the equilibrium while one parameter varies",
		Args:  cobra.ExactArgs(3),
		RunE:  runScan,
	}
	addScenarioFlags(scanCmd)
	addSolverFlags(scanCmd)
	scanCmd.Flags().IntVar(&scanPoints, "points", 21, "number of scan points, endpoints included")
	scanCmd.Flags().IntVar(&shareIdx, "share", 0, "state component to chart (0..7)")
	scanCmd.Flags().Float64Var(&acceptTol, "accept-tol", sweep.DefaultAcceptTol, "objective tolerance for accepting an equilibrium")
	addChartFlags(scanCmd)
	scanCmd.Flags().StringVar(&csvPath, "csv", "", "write scan CSV to file")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in parameter presets",
		RunE:  listPresetsCmd,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the map evolve in the terminal",
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)

	rootCmd.AddCommand(simulateCmd, solveCmd, sweepCmd, scanCmd, presetsCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use a built-in preset scenario")
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file path (yaml)")
	cmd.Flags().Float64Var(&m0, "m0", config.DefaultM0, "initial male share of genotype GA (isolated subpopulations)")
}

func addSolverFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&strategy, "strategy", config.DefaultStrategy, "search strategy (root, minimize)")
	cmd.Flags().StringVar(&method, "method", config.DefaultMethod, "method within the strategy")
	cmd.Flags().Float64Var(&tol, "tol", config.DefaultTol, "solver tolerance")
	cmd.Flags().IntVar(&maxIter, "max-iter", 0, "iteration cap (0 = solver default)")
	cmd.Flags().BoolVar(&useJac, "jacobian", true, "use the analytic Jacobian")
}

func addChartFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&chartW, "width", 80, "chart width")
	cmd.Flags().IntVar(&chartH, "height", 12, "chart height")
}

// loadScenario resolves one scenario: preset first, config file overrides
// preset, CLI flags override both.
func loadScenario(cmd *cobra.Command) (*config.Scenario, error) {
	sc := config.DefaultScenario()

	if preset != "" {
		var err error
		sc, err = config.GetPreset(preset)
		if err != nil {
			return nil, err
		}
	}

	if configFile != "" {
		var err error
		sc, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	f := cmd.Flags()
	if f.Changed("m0") {
		sc.Init.M0 = m0
		sc.Init.State = nil
	}
	if f.Changed("steps") {
		sc.Run.Steps = steps
	}
	if f.Changed("rtol") {
		sc.Run.RTol = rtol
	}
	if f.Changed("max-steps") {
		sc.Run.MaxSteps = maxSteps
	}
	if f.Changed("strategy") {
		sc.Solver.Strategy = strategy
	}
	if f.Changed("method") {
		sc.Solver.Method = method
	}
	if f.Changed("tol") {
		sc.Solver.Tol = tol
	}
	if f.Changed("max-iter") {
		sc.Solver.MaxIterations = maxIter
	}
	if f.Changed("jacobian") {
		sc.Solver.UseJacobian = useJac
	}
	if f.Changed("guesses") {
		sc.Sweep.Guesses = guesses
	}
	if f.Changed("seed") {
		sc.Sweep.Seed = seed
	}
	if f.Changed("accept-tol") {
		sc.Sweep.AcceptTol = acceptTol
	}
	if f.Changed("workers") {
		sc.Sweep.Workers = workers
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func initialState(sc *config.Scenario, p dynamics.Params) (dynamics.State, error) {
	if len(sc.Init.State) > 0 {
		return simulate.InitialFromState(sc.Init.State)
	}
	return simulate.IsolatedSubpopulations(sc.Init.M0, p)
}

func solverConfig(sc *config.Scenario) equilibrium.Config {
	return equilibrium.Config{
		Method:        sc.Solver.Method,
		Tol:           sc.Solver.Tol,
		MaxIterations: sc.Solver.MaxIterations,
		UseJacobian:   sc.Solver.UseJacobian,
	}
}

func resolveAcceptTol(sc *config.Scenario) float64 {
	if sc.Sweep.AcceptTol > 0 {
		return sc.Sweep.AcceptTol
	}
	return sweep.DefaultAcceptTol
}

func formatShares(x dynamics.State) string {
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = strconv.FormatFloat(v, 'f', 6, 64)
	}
	return strings.Join(parts, " ")
}

func printStateTable(x dynamics.State) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GENOTYPE\tMALE\tFEMALE")
	for i, g := range dynamics.GenotypeNames {
		fmt.Fprintf(w, "%s\t%.9f\t%.9f\n", g, x[i], x[dynamics.NGenotypes+i])
	}
	return w.Flush()
}

func runSimulate(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	p, err := sc.ParamSet()
	if err != nil {
		return err
	}
	x0, err := initialState(sc, p)
	if err != nil {
		return err
	}

	sim := simulate.New(genetics.NewFamily(), p)

	fmt.Printf("running scenario %s...\n", sc.Name)
	start := time.Now()
	tr, runErr := sim.Run(context.Background(), x0, simulate.Config{
		Steps:    sc.Run.Steps,
		RTol:     sc.Run.RTol,
		MaxSteps: sc.Run.MaxSteps,
	})
	elapsed := time.Since(start)
	if runErr != nil && (tr == nil || tr.Len() == 0) {
		return runErr
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("generations: %d\n", tr.Len()-1)
	fmt.Printf("converged: %v\n", tr.Converged)
	if !math.IsNaN(tr.FinalDelta) {
		fmt.Printf("final delta: %.3e\n", tr.FinalDelta)
	}
	if runErr != nil {
		fmt.Printf("stopped early: %v\n", runErr)
	}

	if tr.Len() >= 2 {
		fmt.Println()
		fmt.Println(viz.SharesChart(tr, chartW, chartH))
	}

	fmt.Println()
	if err := printStateTable(tr.Last()); err != nil {
		return err
	}

	if csvPath != "" {
		if err := export.WriteFile(csvPath, func(w io.Writer) error {
			return export.TrajectoryCSV(w, tr)
		}); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", csvPath)
	}
	if jsonPath != "" {
		meta := export.RunMeta{Scenario: sc.Name, Params: p.Map(), Timestamp: time.Now()}
		if err := export.WriteFile(jsonPath, func(w io.Writer) error {
			return export.TrajectoryJSON(w, meta, tr)
		}); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", jsonPath)
	}
	if svgPath != "" {
		if err := export.WriteFile(svgPath, func(w io.Writer) error {
			return export.TrajectorySVG(w, tr, svgWidth, svgHeight)
		}); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	return nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	p, err := sc.ParamSet()
	if err != nil {
		return err
	}
	guess, err := initialState(sc, p)
	if err != nil {
		return err
	}

	sys := genetics.NewFamily()
	strat, err := equilibrium.NewStrategy(sc.Solver.Strategy, sys, p)
	if err != nil {
		return err
	}

	fmt.Printf("solving scenario %s...\n", sc.Name)
	start := time.Now()
	res, err := strat.Solve(guess, solverConfig(sc))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("result: %s\n", res)
	fmt.Printf("func evals: %d\n", res.FuncEvals)
	if res.Message != "" {
		fmt.Printf("note: %s\n", res.Message)
	}

	at := resolveAcceptTol(sc)
	if !res.AtRoot(at) {
		fmt.Printf("no equilibrium within tolerance %.1e\n", at)
		return nil
	}

	fmt.Println()
	if err := printStateTable(res.State); err != nil {
		return err
	}

	verdict, err := stability.Classify(sys, p, res)
	if err != nil {
		return err
	}
	fmt.Printf("\nstability: %s\n", verdict)
	fmt.Println("eigenvalues:")
	for _, ev := range verdict.Eigenvalues {
		fmt.Printf("  % .6f %+.6fi  (modulus %.6f)\n", real(ev), imag(ev), cmplx.Abs(ev))
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	p, err := sc.ParamSet()
	if err != nil {
		return err
	}
	gs, err := sweep.Guesses(sc.Sweep.Guesses, sc.Sweep.Seed)
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %d guesses (scenario %s)...\n", len(gs), sc.Name)
	start := time.Now()
	rep, err := sweep.Run(context.Background(), sweep.Config{
		Sys:       genetics.NewFamily(),
		Params:    p,
		Strategy:  sc.Solver.Strategy,
		Solver:    solverConfig(sc),
		Guesses:   gs,
		AcceptTol: sc.Sweep.AcceptTol,
		Workers:   sc.Sweep.Workers,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	fmt.Printf("completed in %v\n\n", elapsed)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GUESSES\tACCEPTED\tDISTINCT\tSTABLE")
	fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", len(rep.Outcomes), rep.Accepted, len(rep.Distinct), rep.Stable)
	if err := w.Flush(); err != nil {
		return err
	}

	if rep.Accepted > 0 {
		fmt.Println()
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STAT\tMEAN\tMEDIAN\tMIN\tMAX\tSTDDEV")
		o := rep.ObjectiveStats
		fmt.Fprintf(w, "objective\t%.3e\t%.3e\t%.3e\t%.3e\t%.3e\n", o.Mean, o.Median, o.Min, o.Max, o.StdDev)
		r := rep.RadiusStats
		fmt.Fprintf(w, "radius\t%.6f\t%.6f\t%.6f\t%.6f\t%.6f\n", r.Mean, r.Median, r.Min, r.Max, r.StdDev)
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if len(rep.Distinct) > 0 {
		fmt.Println("\ndistinct equilibria:")
		for i, st := range rep.Distinct {
			fmt.Printf("  #%d  [%s]\n", i+1, formatShares(st))
		}
	}

	if csvPath != "" {
		if err := export.WriteFile(csvPath, func(w io.Writer) error {
			return export.ReportCSV(w, rep)
		}); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", csvPath)
	}
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	name := args[0]
	from, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("bad from value %q: %w", args[1], err)
	}
	to, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("bad to value %q: %w", args[2], err)
	}
	if shareIdx < 0 || shareIdx >= dynamics.Dim {
		return fmt.Errorf("share index %d out of range 0..%d", shareIdx, dynamics.Dim-1)
	}

	sc, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	p, err := sc.ParamSet()
	if err != nil {
		return err
	}
	guess, err := initialState(sc, p)
	if err != nil {
		return err
	}

	fmt.Printf("scanning %s from %g to %g (%d points)...\n", name, from, to, scanPoints)
	points, scanErr := sweep.ParamScan(context.Background(), sweep.ScanConfig{
		Sys:       genetics.NewFamily(),
		Params:    p,
		Name:      name,
		From:      from,
		To:        to,
		N:         scanPoints,
		Guess:     guess,
		Strategy:  sc.Solver.Strategy,
		Solver:    solverConfig(sc),
		AcceptTol: sc.Sweep.AcceptTol,
	})
	if scanErr != nil && len(points) == 0 {
		return scanErr
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(name)+"\tOBJECTIVE\tRADIUS\tSTABLE")
	for _, pt := range points {
		if pt.Accepted {
			fmt.Fprintf(w, "%.6g\t%.3e\t%.6f\t%v\n", pt.Value, pt.Result.Objective, pt.Verdict.SpectralRadius, pt.Verdict.Stable)
		} else {
			fmt.Fprintf(w, "%.6g\t-\t-\t-\n", pt.Value)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	data := make([]float64, 0, len(points))
	for _, pt := range points {
		if pt.Accepted {
			data = append(data, pt.Result.State[shareIdx])
		}
	}
	if len(data) >= 2 {
		caption := fmt.Sprintf("%s share vs %s in [%g, %g]", viz.SeriesLegends()[shareIdx], name, from, to)
		graph := asciigraph.Plot(data,
			asciigraph.Height(chartH),
			asciigraph.Width(chartW),
			asciigraph.Caption(caption),
		)
		fmt.Println()
		fmt.Println(graph)
	}

	if scanErr != nil {
		fmt.Printf("\nscan stopped early: %v\n", scanErr)
	}

	if csvPath != "" {
		if err := export.WriteFile(csvPath, func(w io.Writer) error {
			return export.ScanCSV(w, name, points)
		}); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", csvPath)
	}
	return nil
}

func listPresetsCmd(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tdA\tda\teA\tea\tPiaA\tPiAA\tPiaa\tPiAa\tM0")
	for _, name := range config.ListPresets() {
		sc, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		pp := sc.Params
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%g\t%g\t%g\t%g\t%g\n",
			name, pp["dA"], pp["da"], pp["eA"], pp["ea"],
			pp["PiaA"], pp["PiAA"], pp["Piaa"], pp["PiAa"], sc.Init.M0)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	p, err := sc.ParamSet()
	if err != nil {
		return err
	}
	x0, err := initialState(sc, p)
	if err != nil {
		return err
	}

	m := viz.NewLive(genetics.NewFamily(), p, x0)
	prog := tea.NewProgram(m)
	if _, err := prog.Run(); err != nil {
		return err
	}
	return nil
}
