package learning

import (
	"fmt"
	"math"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/registry"
)

// Scheduler adjusts the learning rate of the optimizer it is bound to once per epoch.
type Scheduler interface {
	Name() string

	// Step advances one epoch. metric is only read by schedulers that report UsesMetric.
	Step(metric float64)

	LR() float64

	// UsesMetric reports whether Step needs a monitored metric, usually the validation loss.
	UsesMetric() bool
}

// SchedulerConstructor binds a new scheduler to opt.
type SchedulerConstructor func(opt Optimizer, args config.Args) (Scheduler, error)

// SchedulerRegistry holds scheduler constructors by name.
type SchedulerRegistry = registry.Registry[SchedulerConstructor]

// NewSchedulerRegistry returns a registry with step, rdp, exponential and cosine.
func NewSchedulerRegistry() *SchedulerRegistry {
	r := registry.New[SchedulerConstructor]("lr_scheduler")
	r.MustRegister("step", NewStep)
	r.MustRegister("rdp", NewReduceOnPlateau)
	r.MustRegister("exponential", NewExponential)
	r.MustRegister("cosine", NewCosine)
	return r
}

// BuildScheduler resolves spec.Name and binds the scheduler to opt.
func BuildScheduler(reg *SchedulerRegistry, opt Optimizer, spec config.ComponentSpec) (Scheduler, error) {
	if opt == nil {
		return nil, fmt.Errorf("lr_scheduler %s: optimizer: %w", spec.Name, ErrDependencyNotReady)
	}
	ctor, err := reg.Lookup(spec.Name)
	if err != nil {
		return nil, err
	}
	s, err := ctor(opt, spec.Args)
	if err != nil {
		return nil, fmt.Errorf("lr_scheduler %s: %w", spec.Name, err)
	}
	return s, nil
}

type schedule struct {
	name  string
	opt   Optimizer
	base  float64
	epoch int
}

func (s *schedule) Name() string     { return s.name }
func (s *schedule) LR() float64      { return s.opt.LR() }
func (s *schedule) UsesMetric() bool { return false }

// StepLR multiplies the rate by gamma every step_size epochs.
type StepLR struct {
	schedule
	opts stepOptions
}

type stepOptions struct {
	StepSize int     `yaml:"step_size"`
	Gamma    float64 `yaml:"gamma"`
}

func NewStep(opt Optimizer, args config.Args) (Scheduler, error) {
	if err := args.Require("step", "step_size"); err != nil {
		return nil, err
	}
	s := &StepLR{schedule: schedule{name: "step", opt: opt, base: opt.LR()}, opts: stepOptions{Gamma: 0.1}}
	if err := args.Decode("step", &s.opts); err != nil {
		return nil, err
	}
	if s.opts.StepSize <= 0 {
		return nil, config.InvalidField("step", "step_size", "must be positive, got %d", s.opts.StepSize)
	}
	return s, nil
}

func (s *StepLR) Step(float64) {
	s.epoch++
	s.opt.SetLR(s.base * math.Pow(s.opts.Gamma, float64(s.epoch/s.opts.StepSize)))
}

// ExponentialLR multiplies the rate by gamma every epoch.
type ExponentialLR struct {
	schedule
	opts struct {
		Gamma float64 `yaml:"gamma"`
	}
}

func NewExponential(opt Optimizer, args config.Args) (Scheduler, error) {
	if err := args.Require("exponential", "gamma"); err != nil {
		return nil, err
	}
	s := &ExponentialLR{schedule: schedule{name: "exponential", opt: opt, base: opt.LR()}}
	if err := args.Decode("exponential", &s.opts); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ExponentialLR) Step(float64) {
	s.epoch++
	s.opt.SetLR(s.base * math.Pow(s.opts.Gamma, float64(s.epoch)))
}

// CosineLR anneals from the initial rate to eta_min over t_max epochs.
type CosineLR struct {
	schedule
	opts struct {
		TMax   int     `yaml:"t_max"`
		EtaMin float64 `yaml:"eta_min"`
	}
}

func NewCosine(opt Optimizer, args config.Args) (Scheduler, error) {
	if err := args.Require("cosine", "t_max"); err != nil {
		return nil, err
	}
	s := &CosineLR{schedule: schedule{name: "cosine", opt: opt, base: opt.LR()}}
	if err := args.Decode("cosine", &s.opts); err != nil {
		return nil, err
	}
	if s.opts.TMax <= 0 {
		return nil, config.InvalidField("cosine", "t_max", "must be positive, got %d", s.opts.TMax)
	}
	return s, nil
}

func (s *CosineLR) Step(float64) {
	s.epoch++
	o := s.opts
	t := float64(min(s.epoch, o.TMax))
	s.opt.SetLR(o.EtaMin + (s.base-o.EtaMin)*(1+math.Cos(math.Pi*t/float64(o.TMax)))/2)
}

// ReduceOnPlateau multiplies the rate by factor once the monitored metric
// has not improved for more than patience epochs.
type ReduceOnPlateau struct {
	schedule
	opts plateauOptions

	best     float64
	bad      int
	cooldown int
}

type plateauOptions struct {
	Mode      string  `yaml:"mode"`
	Factor    float64 `yaml:"factor"`
	Patience  int     `yaml:"patience"`
	Threshold float64 `yaml:"threshold"`
	Cooldown  int     `yaml:"cooldown"`
	MinLR     float64 `yaml:"min_lr"`
}

func NewReduceOnPlateau(opt Optimizer, args config.Args) (Scheduler, error) {
	o := plateauOptions{Mode: "min", Factor: 0.1, Patience: 10, Threshold: 1e-4}
	if err := args.Decode("rdp", &o); err != nil {
		return nil, err
	}
	switch {
	case o.Mode != "min" && o.Mode != "max":
		return nil, config.InvalidField("rdp", "mode", "must be min or max, got %q", o.Mode)
	case o.Factor <= 0 || o.Factor >= 1:
		return nil, config.InvalidField("rdp", "factor", "must be in (0, 1), got %g", o.Factor)
	case o.Patience < 0:
		return nil, config.InvalidField("rdp", "patience", "must not be negative, got %d", o.Patience)
	}
	s := &ReduceOnPlateau{schedule: schedule{name: "rdp", opt: opt, base: opt.LR()}, opts: o, best: math.Inf(1)}
	if o.Mode == "max" {
		s.best = math.Inf(-1)
	}
	return s, nil
}

func (s *ReduceOnPlateau) UsesMetric() bool { return true }

func (s *ReduceOnPlateau) improved(metric float64) bool {
	if math.IsInf(s.best, 0) {
		return true
	}
	if s.opts.Mode == "max" {
		return metric > s.best+math.Abs(s.best)*s.opts.Threshold
	}
	return metric < s.best-math.Abs(s.best)*s.opts.Threshold
}

func (s *ReduceOnPlateau) Step(metric float64) {
	s.epoch++
	if s.improved(metric) {
		s.best = metric
		s.bad = 0
	} else {
		s.bad++
	}
	if s.cooldown > 0 {
		s.cooldown--
		s.bad = 0
	}
	if s.bad > s.opts.Patience {
		s.opt.SetLR(math.Max(s.opt.LR()*s.opts.Factor, s.opts.MinLR))
		s.cooldown = s.opts.Cooldown
		s.bad = 0
	}
}
