package core

import "context"

// NewReorderStep builds the reorder task (spec §4.2): it buffers the
// out-of-order stream listen produces and emits tokens in strict ascending
// order, holding the end-token back until every token it has ever seen has
// been emitted (spec §8 scenario S6).
func NewReorderStep(env *Env) func(ctx context.Context, s *Stepper) error {
	return func(ctx context.Context, s *Stepper) error {
		if err := s.PreSync(ctx); err != nil {
			return err
		}

		pending := make(map[Token]bool)
		var next Token

		flush := func() {
			for pending[next] {
				delete(pending, next)
				s.Put(next)
				next++
			}
		}

		for {
			t, err := s.Get(ctx)
			if err != nil {
				return err
			}
			if t.IsEnd() {
				flush()
				s.Put(EndToken)
				return nil
			}
			pending[t] = true
			flush()
		}
	}
}
