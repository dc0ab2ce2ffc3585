// Package engine is the host-facing facade over the economy: named commands,
// read-only queries, one change signal, and the persistence policy.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/khwan789/KimchiClicker/internal/clock"
	"github.com/khwan789/KimchiClicker/internal/config"
	"github.com/khwan789/KimchiClicker/internal/economy"
	"github.com/khwan789/KimchiClicker/internal/events"
	"github.com/khwan789/KimchiClicker/internal/persist"
	"github.com/khwan789/KimchiClicker/internal/sim"
)

// ErrSaveRecovered is returned by Load when the stored document could not be
// used and a fresh run replaced it.
var ErrSaveRecovered = errors.New("save discarded, fresh run started")

const (
	MinBatch = 1
	MaxBatch = 100
)

// Engine is not safe for concurrent use; hosts serialize calls.
type Engine struct {
	bal   config.Balance
	game  *economy.Game
	store persist.Store
	clk   clock.Clock
	log   *slog.Logger
	bus   events.Bus
	tick  *sim.Clock

	batch      int
	pulseAccum float64
	saveAccum  float64
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.log = l } }

func WithClock(c clock.Clock) Option { return func(e *Engine) { e.clk = c } }

// New builds an engine on a fresh run. Call Load to restore a save.
func New(b config.Balance, store persist.Store, opts ...Option) *Engine {
	e := &Engine{
		bal:   b,
		store: store,
		clk:   clock.Real{},
		log:   slog.Default(),
		batch: MinBatch,
	}
	for _, o := range opts {
		o(e)
	}
	e.game = economy.NewGame(&e.bal.Defs)
	e.tick = sim.NewClock(b.TickHz, b.SecondsPerKey)
	return e
}

// Subscribe registers fn for every change notification.
func (e *Engine) Subscribe(fn func(events.Event)) (cancel func()) {
	return e.bus.Subscribe(fn)
}

func (e *Engine) notify(cmd string, typ events.EventType, data any) {
	e.bus.Publish(events.New(e.clk.Now(), cmd, typ, data))
}

// Save writes the current state. Failures are logged and returned; the
// in-memory state stays authoritative.
func (e *Engine) Save() error {
	if err := e.store.Save(persist.FromState(e.game.State, e.clk.Now())); err != nil {
		e.log.Error("save failed", "err", err)
		return err
	}
	e.log.Debug("saved")
	e.saveAccum = 0
	return nil
}

// commit finishes a command that applied: one notification, one save.
func (e *Engine) commit(cmd string, typ events.EventType, data any) {
	e.notify(cmd, typ, data)
	_ = e.Save()
}

// Load restores the stored run. A missing save starts a fresh run and writes
// a baseline. An unusable save is discarded; the returned error then wraps
// ErrSaveRecovered.
func (e *Engine) Load() error {
	rec, err := e.store.Load()
	if errors.Is(err, persist.ErrNotFound) {
		e.game.State = economy.NewState(&e.bal.Defs)
		e.log.Info("no save found, starting fresh run")
		e.commit("load", events.Loaded, nil)
		return nil
	}
	if err != nil {
		return e.recoverFrom(err)
	}
	st, notes, err := persist.Apply(rec, &e.bal.Defs)
	if err != nil {
		return e.recoverFrom(err)
	}
	for _, n := range notes {
		e.log.Warn("save repaired", "note", n)
	}
	e.game.State = st
	e.notify("load", events.Loaded, nil)
	return nil
}

func (e *Engine) recoverFrom(cause error) error {
	e.log.Warn("save unusable, progress discarded", "err", cause)
	e.game.State = economy.NewState(&e.bal.Defs)
	e.commit("load", events.Recovered, nil)
	return fmt.Errorf("%w: %w", ErrSaveRecovered, cause)
}

// Reconfigure switches to a new balance, reshaping the live state through
// the save mapping so that added or removed entries are repaired the same
// way a load would.
func (e *Engine) Reconfigure(b config.Balance) error {
	rec := persist.FromState(e.game.State, e.clk.Now())
	e.bal = b
	e.game.Defs = &e.bal.Defs
	st, notes, err := persist.Apply(rec, &e.bal.Defs)
	if err != nil {
		return err
	}
	for _, n := range notes {
		e.log.Warn("state reshaped", "note", n)
	}
	e.game.State = st
	e.tick = sim.NewClock(b.TickHz, b.SecondsPerKey)
	e.commit("reconfigure", events.Loaded, nil)
	return nil
}

// Step feeds dt seconds of play time: production ticks, timers, the drip,
// the periodic pulse and autosave.
func (e *Engine) Step(dt float64) sim.StepResult {
	if dt <= 0 {
		return sim.StepResult{}
	}
	res := e.tick.Step(e.game, dt)
	if res.Dirty() {
		e.notify("step", events.Changed, res)
	}

	e.pulseAccum += dt
	if e.pulseAccum >= e.bal.UIPulseSeconds {
		e.pulseAccum = 0
		e.notify("step", events.Pulse, nil)
	}

	e.saveAccum += dt
	if e.bal.AutosaveSeconds > 0 && e.saveAccum >= e.bal.AutosaveSeconds {
		_ = e.Save()
	}
	return res
}

// Suspend saves and stamps the suspend instant for the next Resume.
func (e *Engine) Suspend() error {
	err := e.Save()
	if serr := e.store.SaveSuspend(e.clk.Now()); serr != nil {
		e.log.Error("suspend stamp failed", "err", serr)
		err = errors.Join(err, serr)
	}
	return err
}

// Resume credits the time since the last Suspend and saves. It reports
// what was granted; ok is false when nothing was.
func (e *Engine) Resume() (sim.Offline, bool) {
	now := e.clk.Now()
	last, err := e.store.LoadSuspend()
	if err != nil {
		if !errors.Is(err, persist.ErrNotFound) {
			e.log.Error("read suspend stamp", "err", err)
		}
		return sim.Offline{}, false
	}
	if serr := e.store.SaveSuspend(now); serr != nil {
		e.log.Error("suspend stamp failed", "err", serr)
	}

	elapsed := now.Sub(last).Seconds()
	off, ok := sim.CatchUp(e.game, elapsed, e.bal.Offline)
	if !ok {
		e.log.Info("offline time outside window, ignored", "seconds", elapsed)
		return sim.Offline{}, false
	}
	e.log.Info("offline progress granted",
		"seconds", elapsed,
		"credited", off.Credited,
		"kimchi", off.Kimchi.String(),
		"keys", off.KeysGranted)
	e.commit("resume", events.Offline, off)
	return off, true
}

// Now is the engine's wall clock.
func (e *Engine) Now() time.Time { return e.clk.Now() }

// Balance returns the active configuration.
func (e *Engine) Balance() config.Balance { return e.bal }
