package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"genodyn/internal/dynamics"
)

const (
	DefaultStrategy  = "root"
	DefaultMethod    = "newton"
	DefaultTol       = 1e-10
	DefaultRTol      = 1e-9
	DefaultM0        = 0.5
	DefaultGuessN    = 100
	DefaultGuessSeed = 42
)

// Scenario is one complete, file-loadable experiment description: the
// parameter set plus how to start, simulate, solve and sweep it.
type Scenario struct {
	Name   string             `yaml:"name"`
	Params map[string]float64 `yaml:"params"`
	Init   InitConfig         `yaml:"init"`
	Run    RunConfig          `yaml:"run"`
	Solver SolverConfig       `yaml:"solver"`
	Sweep  SweepConfig        `yaml:"sweep"`
}

// InitConfig selects the initial condition. An explicit 8-component state
// wins over the isolated-subpopulation share m0.
type InitConfig struct {
	M0    float64   `yaml:"m0"`
	State []float64 `yaml:"state,omitempty"`
}

type RunConfig struct {
	Steps    int     `yaml:"steps"`
	RTol     float64 `yaml:"rtol"`
	MaxSteps int     `yaml:"max_steps"`
}

type SolverConfig struct {
	Strategy      string  `yaml:"strategy"`
	Method        string  `yaml:"method"`
	Tol           float64 `yaml:"tol"`
	MaxIterations int     `yaml:"max_iterations"`
	UseJacobian   bool    `yaml:"use_jacobian"`
}

type SweepConfig struct {
	Guesses   int     `yaml:"guesses"`
	Seed      uint64  `yaml:"seed"`
	AcceptTol float64 `yaml:"accept_tol"`
	Workers   int     `yaml:"workers"`
}

func DefaultScenario() *Scenario {
	return &Scenario{
		Name: "baseline",
		Params: map[string]float64{
			"dA": 0.5, "da": 0.5, "eA": 0.5, "ea": 0.5,
			"PiaA": 7.0, "PiAA": 5.0, "Piaa": 3.0, "PiAa": 2.0,
			"c": 1.0,
		},
		Init: InitConfig{M0: DefaultM0},
		Run:  RunConfig{RTol: DefaultRTol},
		Solver: SolverConfig{
			Strategy:    DefaultStrategy,
			Method:      DefaultMethod,
			Tol:         DefaultTol,
			UseJacobian: true,
		},
		Sweep: SweepConfig{
			Guesses: DefaultGuessN,
			Seed:    DefaultGuessSeed,
		},
	}
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc := DefaultScenario()
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func Save(path string, sc *Scenario) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks everything that does not need the dynamics engine:
// parameter ranges via dynamics.NewParams, the initial condition shape and
// the stopping rules.
func (sc *Scenario) Validate() error {
	if _, err := dynamics.NewParams(sc.Params); err != nil {
		return fmt.Errorf("scenario %q: %w", sc.Name, err)
	}
	if len(sc.Init.State) != 0 && len(sc.Init.State) != dynamics.Dim {
		return fmt.Errorf("scenario %q: init state has length %d, want %d: %w",
			sc.Name, len(sc.Init.State), dynamics.Dim, dynamics.ErrInvalidArgument)
	}
	if len(sc.Init.State) == 0 && (sc.Init.M0 <= 0 || sc.Init.M0 >= 1) {
		return fmt.Errorf("scenario %q: m0 = %v, want 0 < m0 < 1: %w",
			sc.Name, sc.Init.M0, dynamics.ErrInvalidArgument)
	}
	if sc.Run.Steps < 0 || sc.Run.RTol < 0 || sc.Run.MaxSteps < 0 {
		return fmt.Errorf("scenario %q: negative run setting: %w", sc.Name, dynamics.ErrInvalidArgument)
	}
	if sc.Run.Steps == 0 && sc.Run.RTol == 0 {
		return fmt.Errorf("scenario %q: run sets neither steps nor rtol: %w", sc.Name, dynamics.ErrInvalidArgument)
	}
	if sc.Solver.Tol < 0 || sc.Solver.MaxIterations < 0 {
		return fmt.Errorf("scenario %q: negative solver setting: %w", sc.Name, dynamics.ErrInvalidArgument)
	}
	if sc.Sweep.Guesses < 0 || sc.Sweep.AcceptTol < 0 || sc.Sweep.Workers < 0 {
		return fmt.Errorf("scenario %q: negative sweep setting: %w", sc.Name, dynamics.ErrInvalidArgument)
	}
	return nil
}

// ParamSet builds the validated immutable parameter set.
func (sc *Scenario) ParamSet() (dynamics.Params, error) {
	return dynamics.NewParams(sc.Params)
}
