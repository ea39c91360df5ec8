package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/GD-alt/hoofd/pkg/expr"
	"github.com/GD-alt/hoofd/pkg/scene"
	"github.com/GD-alt/hoofd/pkg/state"
)

// Status is the controller's coarse state machine position.
type Status int

const (
	StatusAtMenu        Status = iota
	StatusChoicePending        // a scene is presented, awaiting the player
	StatusTerminated
)

// SnapshotStore persists and restores whole session snapshots. Both
// operations are all-or-nothing: a failed load leaves state untouched.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, slot string, gs *state.GameState) error
	LoadSnapshot(ctx context.Context, slot string) (*state.GameState, error)
}

const (
	defaultRedirectLimit = 32
	defaultHistoryLimit  = 1000
	// DefaultSlot is the snapshot slot used when none is configured.
	DefaultSlot = "default"
)

// Session orchestrates scene transitions for one player. It owns the
// single GameState and the single current Presentation; everything else
// reaches them through the session's methods. Single-threaded by design:
// one resolution pass runs at a time, to completion.
type Session struct {
	set          *scene.Set
	store        SnapshotStore
	slot         string
	logger       *slog.Logger
	notify       func(string)
	rng          func() int
	policy       EvalPolicy
	historyLimit int
	maxRedirects int

	gs       *state.GameState
	pres     *Presentation
	status   Status
	resolver *Resolver
	exec     Executor
	eval     *evaluator
}

// Option configures a Session.
type Option func(*Session)

// WithStore attaches a snapshot store and the slot save/load acts on.
func WithStore(store SnapshotStore, slot string) Option {
	return func(s *Session) {
		s.store = store
		if slot != "" {
			s.slot = slot
		}
	}
}

// WithNotifier registers the sink for transient user-facing messages
// (game notify actions, save/load notices).
func WithNotifier(f func(string)) Option {
	return func(s *Session) { s.notify = f }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithPolicy selects strict or lenient handling of content errors in
// expressions and templates.
func WithPolicy(p EvalPolicy) Option {
	return func(s *Session) { s.policy = p }
}

// WithRandom replaces the per-pass draw source; tests pin it.
func WithRandom(f func() int) Option {
	return func(s *Session) { s.rng = f }
}

// WithHistoryLimit caps the visited-scene history. Zero keeps it unbounded.
func WithHistoryLimit(n int) Option {
	return func(s *Session) { s.historyLimit = n }
}

// WithRedirectLimit bounds consecutive goto/restart redirects within one
// transition, as a tripwire for cyclic on-enter content.
func WithRedirectLimit(n int) Option {
	return func(s *Session) { s.maxRedirects = n }
}

// NewSession builds a session over one scene set. The session starts at
// the menu; call Start to enter the first scene.
func NewSession(set *scene.Set, opts ...Option) *Session {
	s := &Session{
		set:          set,
		slot:         DefaultSlot,
		logger:       slog.Default(),
		notify:       func(string) {},
		rng:          func() int { return rand.Intn(101) },
		historyLimit: defaultHistoryLimit,
		maxRedirects: defaultRedirectLimit,
		status:       StatusAtMenu,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.eval = &evaluator{policy: s.policy, logger: s.logger}
	s.resolver = NewResolver(set, s.eval)
	return s
}

// Status reports the controller state.
func (s *Session) Status() Status { return s.status }

// Presentation returns the currently displayed scene, nil at the menu.
func (s *Session) Presentation() *Presentation { return s.pres }

// State exposes the session state for persistence and display. Callers
// must treat it as read-only; mutations belong to the action vocabulary.
func (s *Session) State() *state.GameState { return s.gs }

// Set returns the active scene set (for localized UI chrome).
func (s *Session) Set() *scene.Set { return s.set }

// Start begins a fresh game: new state, initial scene, on-enter pass.
func (s *Session) Start(ctx context.Context) error {
	if s.status == StatusTerminated {
		return fmt.Errorf("session is terminated")
	}
	s.gs = state.NewGameState()
	return s.enter(ctx, s.set.Start)
}

// Restart is Start under a different name; the reserved restart scene and
// the menu both land here. State is wholly replaced, never merged.
func (s *Session) Restart(ctx context.Context) error {
	return s.Start(ctx)
}

// Choose takes the exit at index i of the current presentation's filtered
// exit list: records the departed scene, then enters the target.
func (s *Session) Choose(ctx context.Context, i int) error {
	if s.status != StatusChoicePending || s.pres == nil {
		return fmt.Errorf("no scene is awaiting a choice")
	}
	if i < 0 || i >= len(s.pres.Exits) {
		return fmt.Errorf("choice %d out of range (have %d exits)", i, len(s.pres.Exits))
	}
	exit := s.pres.Exits[i]

	s.gs.PreviousScene = s.gs.CurrentScene
	s.gs.RecordVisit(s.gs.CurrentScene, s.historyLimit)
	return s.enter(ctx, exit.To)
}

// Save snapshots the whole state to the configured store.
func (s *Session) Save(ctx context.Context) error {
	return s.save(ctx, false)
}

// Load replaces the whole state from the configured store and re-resolves
// the loaded scene's presentation. On-enter actions do not run again: the
// loaded state already reflects them.
func (s *Session) Load(ctx context.Context) error {
	return s.load(ctx, false)
}

// Terminate ends the session; no further transitions are possible.
func (s *Session) Terminate() {
	s.status = StatusTerminated
	s.pres = nil
}

// Destroy tears down the current presentation and returns to the menu
// without touching state.
func (s *Session) Destroy() {
	if s.status == StatusChoicePending {
		s.pres = nil
		s.status = StatusAtMenu
	}
}

// enter runs resolution passes until one completes without a control
// transfer. A goto or restart abandons the current pass and starts exactly
// one new pass on its target; the redirect limit guards against content
// that chains gotos forever.
func (s *Session) enter(ctx context.Context, id string) error {
	for hops := 0; ; hops++ {
		if hops > s.maxRedirects {
			return fmt.Errorf("scene %q: on-enter redirect chain exceeded %d hops", id, s.maxRedirects)
		}

		sc, err := s.set.Get(id)
		if err != nil {
			return err
		}
		s.gs.CurrentScene = sc.ID

		rnum := s.rng()
		my, err := s.computeMyVars(rnum)
		if err != nil {
			return err
		}
		env := buildEnv(s.gs, rnum, my)

		pres, err := s.resolver.Resolve(sc, s.gs, env)
		if err != nil {
			return err
		}

		res, err := s.runOnEnter(sc, rnum, my)
		if err != nil {
			return err
		}

		switch res.Control {
		case ControlNone, ControlSave:
			if res.Control == ControlSave {
				if err := s.save(ctx, res.Silent); err != nil {
					return err
				}
			}
			// Exits and the inventory panel reflect the post-action
			// state; text, image and speaker keep the entry snapshot.
			env = buildEnv(s.gs, rnum, my)
			refreshed, err := s.resolver.Resolve(sc, s.gs, env)
			if err != nil {
				return err
			}
			pres.Exits = refreshed.Exits
			pres.Inventory = refreshed.Inventory
			s.pres = pres
			s.status = StatusChoicePending
			return nil

		case ControlGoto:
			s.logger.Debug("on-enter goto", "from", sc.ID, "to", res.Scene)
			id = res.Scene

		case ControlRestart:
			s.logger.Debug("session restart", "from", sc.ID)
			s.gs = state.NewGameState()
			id = s.set.Start

		case ControlLoad:
			if err := s.load(ctx, res.Silent); err != nil {
				return err
			}
			return nil

		case ControlDestroy:
			s.pres = nil
			s.status = StatusAtMenu
			return nil

		case ControlExit:
			s.Terminate()
			return nil
		}
	}
}

// runOnEnter applies the scene's on-enter actions in declaration order and
// stops at the first control transfer. Later actions of an abandoned pass
// never run; they only take effect within their own scene's pass. Each
// condition is evaluated fresh, so it sees the mutations of the actions
// before it.
func (s *Session) runOnEnter(sc *scene.Scene, rnum int, my expr.Dict) (Result, error) {
	for i, ta := range sc.OnEnter {
		env := buildEnv(s.gs, rnum, my)
		ok, err := s.eval.cond(ta.If, env)
		if err != nil {
			return Result{}, fmt.Errorf("scene %q on_enter %d: %w", sc.ID, i, err)
		}
		if !ok {
			continue
		}

		res, err := s.exec.Apply(ta.Do, s.gs, env)
		if err != nil {
			if s.policy == EvalLenient {
				s.logger.Warn("on-enter action failed", "scene", sc.ID, "action", ta.Do.String(), "error", err)
				continue
			}
			return Result{}, fmt.Errorf("scene %q on_enter %d: %w", sc.ID, i, err)
		}
		if res.Notice != "" {
			s.notify(res.Notice)
		}
		if res.Control != ControlNone {
			return res, nil
		}
	}
	return Result{}, nil
}

// computeMyVars evaluates the set's custom-variable formulas in order.
// Each formula sees the entries computed before it through MY; secondary
// conditions later in the pass see the complete mapping.
func (s *Session) computeMyVars(rnum int) (expr.Dict, error) {
	my := make(expr.Dict, len(s.set.MyVars))
	for _, mv := range s.set.MyVars {
		env := buildEnv(s.gs, rnum, my)
		v, err := expr.Eval(mv.Expr, env)
		if err != nil {
			if s.policy == EvalLenient {
				s.logger.Warn("custom variable failed to evaluate", "name", mv.Name, "error", err)
				continue
			}
			return nil, fmt.Errorf("custom variable %q: %w", mv.Name, err)
		}
		my[mv.Name] = v
	}
	return my, nil
}

func (s *Session) save(ctx context.Context, silent bool) error {
	if s.store == nil {
		return fmt.Errorf("no snapshot store configured")
	}
	if s.gs == nil {
		return fmt.Errorf("nothing to save")
	}
	if err := s.store.SaveSnapshot(ctx, s.slot, s.gs); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if !silent {
		s.notify(s.set.Localized(scene.StrSaved))
	}
	return nil
}

func (s *Session) load(ctx context.Context, silent bool) error {
	if s.store == nil {
		return fmt.Errorf("no snapshot store configured")
	}
	loaded, err := s.store.LoadSnapshot(ctx, s.slot)
	if err != nil {
		// State stays untouched on a failed load.
		return fmt.Errorf("load snapshot: %w", err)
	}
	if loaded == nil {
		return fmt.Errorf("load snapshot: slot %q is empty", s.slot)
	}

	sc, err := s.set.Get(loaded.CurrentScene)
	if err != nil {
		return fmt.Errorf("snapshot references %q: %w", loaded.CurrentScene, err)
	}

	s.gs = loaded

	rnum := s.rng()
	my, err := s.computeMyVars(rnum)
	if err != nil {
		return err
	}
	env := buildEnv(s.gs, rnum, my)
	pres, err := s.resolver.Resolve(sc, s.gs, env)
	if err != nil {
		return err
	}
	s.pres = pres
	s.status = StatusChoicePending
	if !silent {
		s.notify(s.set.Localized(scene.StrLoaded))
	}
	return nil
}
