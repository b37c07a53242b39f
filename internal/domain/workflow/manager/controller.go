// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package manager implements the four-step workflow controller of one session.
package manager

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/locflow/internal/domain/workflow/lifecycle"
	"github.com/ManuGH/locflow/internal/domain/workflow/model"
	"github.com/ManuGH/locflow/internal/domain/workflow/ports"
	"github.com/ManuGH/locflow/internal/domain/workflow/progress"
	"github.com/ManuGH/locflow/internal/i18n"
	"github.com/ManuGH/locflow/internal/log"
	"github.com/ManuGH/locflow/internal/metrics"
)

const (
	defaultMaxUploadBytes = 500 << 20
	defaultMaxVariants    = 2
	defaultObjective      = "awareness"
	// holdCeiling keeps remote-job tasks visibly unfinished until the job reports done.
	holdCeiling = 95
)

// Options configures a Controller.
type Options struct {
	SessionID      string
	Strategy       Strategy
	MaxUploadBytes int64
	TickInterval   time.Duration
	// Increment drives Tick; nil draws random increments.
	Increment progress.Increment
	// Language is the display language for error messages.
	Language  string
	Localize  ports.LocalizeOptions
	Platforms []model.Platform
	// MaxVariants is requested per campaign record.
	MaxVariants int
}

func normalizeOptions(opts Options) Options {
	if opts.Strategy == "" {
		opts.Strategy = StrategyLive
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = progress.DefaultInterval
	}
	if opts.Increment == nil {
		opts.Increment = progress.RandomIncrement(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))) // #nosec G404 -- cosmetic progress
	}
	if opts.Localize == (ports.LocalizeOptions{}) {
		opts.Localize = ports.LocalizeOptions{Dubbing: true, Subtitles: true}
	}
	if len(opts.Platforms) == 0 {
		opts.Platforms = model.Platforms
	}
	if opts.MaxVariants <= 0 {
		opts.MaxVariants = defaultMaxVariants
	}
	return opts
}

// Controller owns the State of one session. Every mutation happens under
// mu; backend calls run outside it with busy set.
type Controller struct {
	backend ports.Backend
	opts    Options
	printer *i18n.Printer
	logger  zerolog.Logger
	ticker  *progress.Ticker

	// ctx bounds background work: the ticker and job watchers.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	state      model.State
	busy       bool
	closed     bool
	jobID      string
	jobPending bool
}

// New creates a controller at the Upload step.
func New(b ports.Backend, opts Options) *Controller {
	opts = normalizeOptions(opts)
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		backend: b,
		opts:    opts,
		printer: i18n.NewPrinter(opts.Language),
		logger: log.Derive(func(lc *zerolog.Context) {
			*lc = lc.Str(log.FieldComponent, "workflow").
				Str(log.FieldSessionID, opts.SessionID).
				Str(log.FieldStrategy, string(opts.Strategy))
		}),
		ctx:    ctx,
		cancel: cancel,
		state:  model.NewState(),
	}
	c.ticker = &progress.Ticker{Interval: opts.TickInterval, Target: c}
	return c
}

// Strategy returns the configured strategy.
func (c *Controller) Strategy() Strategy {
	return c.opts.Strategy
}

// SetTickInterval changes the tick period from the next ticker start on.
func (c *Controller) SetTickInterval(d time.Duration) {
	if d > 0 {
		c.ticker.SetInterval(d)
	}
}

// Snapshot returns a deep copy of the session state.
func (c *Controller) Snapshot() model.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// SelectCountry toggles country in the target selection.
func (c *Controller) SelectCountry(country model.Country) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guardLocked(); err != nil {
		return err
	}
	if c.state.CurrentStep != model.StepUpload {
		return errors.Join(ErrWrongStep, errors.New("countries can only be changed during upload"))
	}
	prev := c.state.TargetCountries
	c.state.TargetCountries = lifecycle.Toggle(prev, country)
	if !sameCountries(prev, c.state.TargetCountries) && c.hasStageDataLocked() {
		// Analysis and progress belong to the previous target; a new Submit is required.
		c.clearDerivedLocked()
		c.logger.Info().
			Str(log.FieldEvent, "workflow.stage_data_cleared").
			Str(log.FieldCountryCode, country.Code).
			Msg("target changed, downstream results discarded")
	}
	c.logger.Debug().
		Str(log.FieldEvent, "workflow.country_toggled").
		Str(log.FieldCountryCode, country.Code).
		Int("selected", len(c.state.TargetCountries)).
		Msg("target selection changed")
	return nil
}

// Continue moves from Analysis to Localization and starts the ticker.
func (c *Controller) Continue() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guardLocked(); err != nil {
		return err
	}
	tr, err := lifecycle.TransitionFor(&c.state, lifecycle.EvContinue)
	if err != nil {
		return err
	}
	c.advanceLocked(tr)
	c.startTickerLocked()
	return nil
}

// StartLocalization promotes pending tasks to processing and restarts the
// ticker. The ticker is stopped before the progress is re-seeded.
func (c *Controller) StartLocalization() error {
	c.ticker.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guardLocked(); err != nil {
		return err
	}
	if _, err := lifecycle.TransitionFor(&c.state, lifecycle.EvStartLocally); err != nil {
		return err
	}
	c.state.Progress = progress.Promote(progress.Initialize(c.state.Progress, c.state.TargetCountries))
	c.startTickerLocked()
	return nil
}

// ConfirmLocalization moves from Localization to Marketing once every task
// completed. There is no automatic advance.
func (c *Controller) ConfirmLocalization() error {
	c.mu.Lock()
	if err := c.guardLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	tr, err := lifecycle.TransitionFor(&c.state, lifecycle.EvConfirm)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if !progress.IsComplete(c.state.Progress) {
		c.mu.Unlock()
		return &model.WorkflowError{Kind: model.ErrorGeneric, Message: c.printer.Sprintf(i18n.NotComplete), Err: ErrNotComplete}
	}
	c.advanceLocked(tr)
	c.mu.Unlock()

	c.ticker.Stop()
	return nil
}

// Navigate jumps to a completed step or the current one. Leaving
// Localization stops the ticker; entering it restarts it.
func (c *Controller) Navigate(target model.Step) error {
	c.mu.Lock()
	if err := c.guardLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := lifecycle.CanNavigate(&c.state, target); err != nil {
		c.mu.Unlock()
		return err
	}
	from := c.state.CurrentStep
	if from != target {
		c.state.CurrentStep = target
		c.logStepLocked(from, target)
	}
	if target == model.StepLocalization {
		c.startTickerLocked()
	}
	c.mu.Unlock()

	if from == model.StepLocalization && target != model.StepLocalization {
		c.ticker.Stop()
	}
	return nil
}

// TickOnce applies one progress tick. It reports true when ticking should
// stop: no task is processing any more, or the session left Localization.
func (c *Controller) TickOnce() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state.CurrentStep != model.StepLocalization || c.state.Progress == nil {
		return true
	}
	ceiling := 100
	if c.jobPending {
		ceiling = holdCeiling
	}
	c.state.Progress = progress.TickUntil(c.state.Progress, c.opts.Increment, ceiling)
	metrics.IncProgressTick()
	return !progress.Active(c.state.Progress)
}

// Close stops background work. The controller rejects further operations.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancel()
	c.mu.Unlock()

	c.ticker.Stop()
	c.wg.Wait()
	c.logger.Debug().Str(log.FieldEvent, "workflow.closed").Msg("session closed")
}

func (c *Controller) hasStageDataLocked() bool {
	return c.state.Analysis != nil || c.state.Progress != nil || len(c.state.Campaigns) > 0
}

// clearDerivedLocked drops everything produced after Upload and detaches
// any running job watcher.
func (c *Controller) clearDerivedLocked() {
	c.state.Analysis = nil
	c.state.Progress = nil
	c.state.Campaigns = []model.CampaignRecord{}
	c.state.CampaignSource = model.CampaignSourceNone
	c.state.RawCampaignResponse = nil
	c.state.CompletedSteps = slices.DeleteFunc(c.state.CompletedSteps, func(s model.Step) bool { return s != model.StepUpload })
	c.jobID = ""
	c.jobPending = false
}

func sameCountries(a, b []model.Country) bool {
	return slices.EqualFunc(a, b, func(x, y model.Country) bool { return x.Code == y.Code })
}

func (c *Controller) guardLocked() error {
	if c.closed {
		return ErrClosed
	}
	if c.busy {
		return ErrBusy
	}
	return nil
}

func (c *Controller) advanceLocked(tr lifecycle.Transition) {
	from := c.state.CurrentStep
	lifecycle.Advance(&c.state, tr)
	if from != c.state.CurrentStep {
		c.logStepLocked(from, c.state.CurrentStep)
	}
}

func (c *Controller) logStepLocked(from, to model.Step) {
	metrics.RecordStepTransition(string(from), string(to))
	c.logger.Info().
		Str(log.FieldEvent, "workflow.step_changed").
		Str(log.FieldOldStep, string(from)).
		Str(log.FieldNewStep, string(to)).
		Msg("workflow step changed")
}

// startTickerLocked starts the ticker when there is progress left to make.
// Start does not wait on mu, so holding it here is safe.
func (c *Controller) startTickerLocked() {
	if c.closed || !progress.Active(c.state.Progress) {
		return
	}
	c.ticker.Start(c.ctx)
}

func (c *Controller) setErrorLocked(op string, werr *model.WorkflowError) {
	c.state.SetError(werr)
	if werr == nil {
		return
	}
	metrics.RecordWorkflowError(op, string(werr.Kind))
	c.logger.Warn().
		Err(werr.Err).
		Str(log.FieldEvent, "workflow.error").
		Str(log.FieldErrorKind, string(werr.Kind)).
		Str("operation", op).
		Msg("workflow operation failed")
}

func (c *Controller) maxUploadMB() int64 {
	return c.opts.MaxUploadBytes >> 20
}
