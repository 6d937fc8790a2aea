package tregex

import (
	"context"

	"go.uber.org/zap"
)

// session is the state shared by every node matcher of one Matcher.
type session struct {
	env    *Env
	names  *NamesToNodes
	vars   *VariableStrings
	ctx    context.Context
	limit  int
	steps  int
	err    error
	logger *zap.Logger
}

// ctxCheckInterval is how many candidates are examined between context checks.
const ctxCheckInterval = 128

// tick accounts for one examined candidate. It returns false once the step
// limit is exceeded or the context is done; the search then behaves as if
// no further candidates exist.
func (s *session) tick() bool {
	if s.err != nil {
		return false
	}
	s.steps++
	if s.limit > 0 && s.steps > s.limit {
		s.stop(ErrStepLimit)
		return false
	}
	if s.ctx != nil && s.steps%ctxCheckInterval == 1 {
		if err := s.ctx.Err(); err != nil {
			s.stop(err)
			return false
		}
	}
	return true
}

func (s *session) stop(err error) {
	s.err = err
	s.logger.Warn("match stopped",
		zap.Int("steps", s.steps),
		zap.Error(err),
	)
}

func (s *session) stopped() bool { return s.err != nil }

func (s *session) clearBindings() {
	s.names.Reset()
	s.vars.Reset()
}

func (s *session) resetBudget() {
	s.steps = 0
	s.err = nil
}
