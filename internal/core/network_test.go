package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// passThrough builds a stepped coroutine that forwards whatever it
// receives unchanged, for wiring-only network tests that don't need real
// step logic.
func passThrough(env *Env) func(ctx context.Context, s *Stepper) error {
	return func(ctx context.Context, s *Stepper) error {
		return s.Walk(ctx, func(ctx context.Context, t Token) error { return nil })
	}
}

func TestNetworkValidate_AcceptsLinearChain(t *testing.T) {
	n := NewNetwork()
	n.Add("a", StepOpts{SendTo: []string{"a:b"}}, passThrough(nil))
	n.Add("b", StepOpts{PullFrom: []string{"a:b"}, SendTo: []string{"b:c"}}, passThrough(nil))
	n.Add("c", StepOpts{PullFrom: []string{"b:c"}}, passThrough(nil))

	assert.NoError(t, n.Validate())
}

func TestNetworkValidate_RejectsCycle(t *testing.T) {
	n := NewNetwork()
	n.Add("a", StepOpts{PullFrom: []string{"c:a"}, SendTo: []string{"a:b"}}, passThrough(nil))
	n.Add("b", StepOpts{PullFrom: []string{"a:b"}, SendTo: []string{"b:c"}}, passThrough(nil))
	n.Add("c", StepOpts{PullFrom: []string{"b:c"}, SendTo: []string{"c:a"}}, passThrough(nil))

	err := n.Validate()
	require.Error(t, err)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
}

func TestNetworkValidate_RejectsUnclaimedQueue(t *testing.T) {
	n := NewNetwork()
	n.Add("a", StepOpts{SendTo: []string{"a:b"}}, passThrough(nil))
	// nothing consumes "a:b"

	err := n.Validate()
	require.Error(t, err)
	var wiringErr *WiringError
	require.ErrorAs(t, err, &wiringErr)
}

func TestNetworkValidate_RejectsSelfLoop(t *testing.T) {
	n := NewNetwork()
	n.Add("a", StepOpts{PullFrom: []string{"a:a"}, SendTo: []string{"a:a"}}, passThrough(nil))

	err := n.Validate()
	require.Error(t, err)
	var wiringErr *WiringError
	require.ErrorAs(t, err, &wiringErr)
}

// TestReorder_S6 reproduces spec's scenario S6: listen completes tokens
// out of order (2,0,3,1,end) and reorder must emit them 0,1,2,3,end.
func TestReorder_S6(t *testing.T) {
	n := NewNetwork()
	env := &Env{Worklist: NewWorklist()}

	n.Add("feed", StepOpts{SendTo: []string{"feed:reorder"}}, func(ctx context.Context, s *Stepper) error {
		for _, tok := range []Token{2, 0, 3, 1, EndToken} {
			s.Put(tok)
		}
		return nil
	})
	n.Add("reorder", StepOpts{PullFrom: []string{"feed:reorder"}, SendTo: []string{"reorder:sink"}}, NewReorderStep(env))

	var got []Token
	n.Add("sink", StepOpts{PullFrom: []string{"reorder:sink"}}, func(ctx context.Context, s *Stepper) error {
		for {
			tok, err := s.Get(ctx)
			if err != nil {
				return err
			}
			got = append(got, tok)
			if tok.IsEnd() {
				return nil
			}
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, n.Run(ctx))

	assert.Equal(t, []Token{0, 1, 2, 3, EndToken}, got)
}

// TestStepper_CrossSyncRequiresAllQueues exercises invariant 3 (spec §8): a
// stepper with k>=2 pull_from queues only delivers a token once it has
// appeared on every one of them.
func TestStepper_CrossSyncRequiresAllQueues(t *testing.T) {
	n := NewNetwork()

	n.Add("left", StepOpts{SendTo: []string{"left:join"}}, func(ctx context.Context, s *Stepper) error {
		time.Sleep(10 * time.Millisecond) // arrives after "right" to prove ordering doesn't matter
		s.Put(0)
		s.Put(EndToken)
		return nil
	})
	n.Add("right", StepOpts{SendTo: []string{"right:join"}}, func(ctx context.Context, s *Stepper) error {
		s.Put(0)
		s.Put(EndToken)
		return nil
	})

	var delivered []Token
	n.Add("join", StepOpts{PullFrom: []string{"left:join", "right:join"}}, func(ctx context.Context, s *Stepper) error {
		for {
			tok, err := s.Get(ctx)
			if err != nil {
				return err
			}
			delivered = append(delivered, tok)
			if tok.IsEnd() {
				return nil
			}
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, n.Run(ctx))

	assert.Equal(t, []Token{0, EndToken}, delivered)
}

func TestStepper_DuplicateTokenIsFatal(t *testing.T) {
	n := NewNetwork()
	n.Add("dup", StepOpts{SendTo: []string{"dup:sink"}}, func(ctx context.Context, s *Stepper) error {
		s.Put(0)
		s.Put(0)
		s.Put(EndToken)
		return nil
	})
	n.Add("sink", StepOpts{PullFrom: []string{"dup:sink"}}, func(ctx context.Context, s *Stepper) error {
		for {
			tok, err := s.Get(ctx)
			if err != nil {
				return err
			}
			if tok.IsEnd() {
				return nil
			}
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := n.Run(ctx)
	require.Error(t, err)
	var dupErr *DuplicateTokenError
	require.ErrorAs(t, err, &dupErr)
}
