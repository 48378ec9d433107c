package katex

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alnah/go-katex/internal/jsengine"
	"github.com/alnah/go-katex/internal/snapshot"
)

// mathEngine abstracts the embedded typesetting engine to allow test doubles.
type mathEngine interface {
	// Exec runs one conversion. A returned error is an engine-level fault;
	// input problems come back in Output.Error.
	Exec(in jsengine.Input) (jsengine.Output, error)

	// Snapshot returns an opaque warm-start image of the initialized
	// engine, or nil when none is available.
	Snapshot() []byte

	Close() error
}

// engineFactory builds an engine, warm-started from blob when non-nil.
type engineFactory func(blob []byte) (mathEngine, error)

type sessionState int

const (
	stateUninitialized sessionState = iota
	stateReady
	statePoisoned
	stateClosed
)

// session owns the single embedded engine instance and is the only
// synchronization point of the package. The mutex is held for the whole
// push-macros/convert/pull-macros span of a conversion: releasing it between
// those steps would let another caller's macro push corrupt the attribution
// of the readback.
type session struct {
	mu        sync.Mutex
	state     sessionState
	engine    mathEngine
	fault     error // first unrecoverable failure, kept for fail-fast replies
	cachePath string
	tag       string
	newEngine engineFactory
	warn      func(error)
}

// convert is the single serialized entry point for conversions.
//
// The macro push works on a copy of the caller's table, and the readback is
// applied only on success, so a failed conversion never leaks partial macro
// state: after ErrParse the table still reflects the state preceding the
// call. Once the engine call has started it runs to completion; ctx is only
// honored at the boundaries, because abandoning a half-applied macro push
// would leave the table inconsistent.
func (s *session) convert(ctx context.Context, latex string, opts *Options, macros *MacroTable) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureReadyLocked(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var throwaway MacroTable
	if macros == nil {
		macros = &throwaway
	}

	out, err := s.engine.Exec(jsengine.Input{
		Latex:   latex,
		Options: opts.engineOptions(),
		Macros:  macros.Clone(),
	})
	if err != nil {
		s.poisonLocked(err)
		return "", fmt.Errorf("%w: %v", ErrEngineFault, err)
	}

	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrParse, out.Error)
	}

	// Authoritative post-conversion state: input may have grown the table
	// through \gdef and friends.
	*macros = out.Macros
	return out.HTML, nil
}

// ensureReadyLocked brings the session to Ready, preferring a
// snapshot-restored start and falling back to a cold start on any cache
// trouble. After a successful cold start the fresh snapshot is persisted
// best-effort. Idempotent once Ready.
func (s *session) ensureReadyLocked() error {
	switch s.state {
	case stateReady:
		return nil
	case statePoisoned:
		return fmt.Errorf("%w: %v", ErrEngineFault, s.fault)
	case stateClosed:
		return ErrConverterClosed
	}

	var blob []byte
	if s.cachePath != "" {
		b, err := snapshot.Load(s.cachePath, s.tag)
		switch {
		case err == nil:
			blob = b
		case errors.Is(err, snapshot.ErrNotFound):
			// First run, cold start.
		default:
			s.warnf(fmt.Errorf("snapshot cache: %w", err))
		}
	}

	eng, err := s.newEngine(blob)
	if err != nil && blob != nil {
		// The blob passed the version check but failed to restore.
		s.warnf(fmt.Errorf("snapshot restore failed, cold starting: %w", err))
		blob = nil
		eng, err = s.newEngine(nil)
	}
	if err != nil {
		s.fault = err
		s.state = statePoisoned
		return fmt.Errorf("%w: %v", ErrEngineFault, err)
	}

	s.engine = eng
	s.state = stateReady

	if s.cachePath != "" && blob == nil {
		if code := eng.Snapshot(); len(code) > 0 {
			if err := snapshot.Store(s.cachePath, s.tag, code); err != nil {
				s.warnf(fmt.Errorf("snapshot cache: %w", err))
			}
		}
	}
	return nil
}

// setCache records a snapshot location. It only affects future cold starts:
// a Ready engine is never reconfigured or restarted, so calling this after
// first use has no effect until a new Converter is built with the same path.
func (s *session) setCache(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cachePath = path
}

// poisonLocked records an unrecoverable fault and releases the engine.
// Every subsequent call fails fast with the same fault kind.
func (s *session) poisonLocked(err error) {
	s.fault = err
	s.state = statePoisoned
	if s.engine != nil {
		_ = s.engine.Close()
		s.engine = nil
	}
}

func (s *session) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateClosed {
		return nil
	}
	s.state = stateClosed

	if s.engine != nil {
		err := s.engine.Close()
		s.engine = nil
		return err
	}
	return nil
}

func (s *session) warnf(err error) {
	if s.warn != nil {
		s.warn(err)
	}
}
