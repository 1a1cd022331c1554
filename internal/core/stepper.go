package core

import "context"

// Stepper owns the four queue-sets a step-network task coordinates through
// (spec §4.1): sync_from/pull_from are read, send_to/sync_to are written.
// PreSync and Get are called from one goroutine only — the task or stepped
// coroutine driving it — so their bookkeeping needs no locking; the
// happens-before relationship is the token-delivery protocol itself (spec
// §5 "Shared resources"). Put only sends on channels and may be called from
// several goroutines at once (listen's workers do).
type Stepper struct {
	Name string

	pullFrom []*Queue
	sendTo   []*Queue
	syncFrom []*Queue
	syncTo   []*Queue

	pending  []map[Token]bool
	delivered map[Token]bool // non-end tokens Get has already returned
	aggCh    chan aggMsg
	readersUp bool
}

type aggMsg struct {
	idx   int
	token Token
}

func newStepper(name string, pullFrom, sendTo, syncFrom, syncTo []*Queue) *Stepper {
	return &Stepper{
		Name:     name,
		pullFrom: pullFrom,
		sendTo:   sendTo,
		syncFrom: syncFrom,
		syncTo:   syncTo,
		pending:  make([]map[Token]bool, len(pullFrom)),
		aggCh:    make(chan aggMsg, 4*(len(pullFrom)+1)),
	}
}

// PreSync drains sync_from: each must deliver exactly the end-token before
// the stepper's first Get (spec §4.1 "Pre-sync").
func (s *Stepper) PreSync(ctx context.Context) error {
	for _, q := range s.syncFrom {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t, ok := <-q.ch:
			if !ok || t != EndToken {
				return &PreSyncTokenError{Stepper: s.Name, Queue: q.Name, Got: t}
			}
		}
	}
	return nil
}

func (s *Stepper) startReaders(ctx context.Context) {
	if s.readersUp {
		return
	}
	s.readersUp = true
	for i := range s.pending {
		s.pending[i] = make(map[Token]bool)
	}
	for i, q := range s.pullFrom {
		go func(i int, q *Queue) {
			for {
				t, ok := q.recv()
				if !ok {
					return
				}
				select {
				case s.aggCh <- aggMsg{idx: i, token: t}:
				case <-ctx.Done():
					return
				}
				if t == EndToken {
					return
				}
			}
		}(i, q)
	}
}

// Get implements the cross-queue synchronization algorithm of spec §4.1: a
// token is delivered only once every pull_from queue has produced it.
func (s *Stepper) Get(ctx context.Context) (Token, error) {
	if len(s.pullFrom) == 0 {
		return EndToken, nil
	}
	s.startReaders(ctx)
	for {
		if tok, ok, err := s.popCommon(); err != nil {
			return 0, err
		} else if ok {
			if tok != EndToken {
				if s.delivered == nil {
					s.delivered = make(map[Token]bool)
				}
				s.delivered[tok] = true
			}
			return tok, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case msg := <-s.aggCh:
			if s.pending[msg.idx][msg.token] || (msg.token != EndToken && s.delivered[msg.token]) {
				return 0, &DuplicateTokenError{Stepper: s.Name, Queue: s.pullFrom[msg.idx].Name, Token: msg.token}
			}
			s.pending[msg.idx][msg.token] = true
		}
	}
}

func (s *Stepper) popCommon() (Token, bool, error) {
	inter := make(map[Token]bool)
	for t := range s.pending[0] {
		inter[t] = true
	}
	for i := 1; i < len(s.pending); i++ {
		next := make(map[Token]bool)
		for t := range inter {
			if s.pending[i][t] {
				next[t] = true
			}
		}
		inter = next
	}
	if len(inter) == 0 {
		return 0, false, nil
	}

	best := Token(0)
	found := false
	for t := range inter {
		if t == EndToken {
			continue
		}
		if !found || t < best {
			best, found = t, true
		}
	}
	if found {
		for _, p := range s.pending {
			delete(p, best)
		}
		return best, true, nil
	}

	// inter == {EndToken}: every queue must have nothing pending but the
	// end-token, or some upstream over-delivered (spec §4.1).
	extra := map[string][]Token{}
	for i, p := range s.pending {
		for t := range p {
			if t != EndToken {
				extra[s.pullFrom[i].Name] = append(extra[s.pullFrom[i].Name], t)
			}
		}
	}
	if len(extra) > 0 {
		return 0, false, &DesynchronizationError{Stepper: s.Name, Extra: extra}
	}
	for _, p := range s.pending {
		delete(p, EndToken)
	}
	return EndToken, true, nil
}

// Put emits t on every send_to; when t is the end-token it additionally
// puts the end-token on every sync_to (spec §4.1 "Emission").
func (s *Stepper) Put(t Token) {
	for _, q := range s.sendTo {
		q.send(t)
	}
	if t == EndToken {
		for _, q := range s.syncTo {
			q.send(EndToken)
		}
	}
}

// Walk drives a stepped coroutine: get/put bracketing applied once per
// received token, until the end-token is observed and forwarded (spec
// §4.1 "Stepped vs. task"). Stepped coroutines must have at least one
// pull_from queue.
func (s *Stepper) Walk(ctx context.Context, coro func(ctx context.Context, t Token) error) error {
	if len(s.pullFrom) == 0 {
		panic("core: stepped coroutine " + s.Name + " has no pull_from queue")
	}
	if err := s.PreSync(ctx); err != nil {
		return err
	}
	for {
		t, err := s.Get(ctx)
		if err != nil {
			return err
		}
		if t == EndToken {
			s.Put(EndToken)
			return nil
		}
		if err := coro(ctx, t); err != nil {
			return err
		}
		s.Put(t)
	}
}
