package core

import (
	"context"
	"fmt"
	"sort"
)

// NodeID identifies a step in the network's arena of node descriptors.
// Edges are pairs of NodeIDs; this avoids representing the graph through
// function identity and back-references, which the source did and which
// is awkward to validate or print a cycle path for (spec §9).
type NodeID int

type nodeDesc struct {
	id      NodeID
	name    string
	stepper *Stepper
	run     func(ctx context.Context, s *Stepper) error
}

// StepOpts names the queues a step is wired to by queue name. Queues are
// created lazily and shared by name: two Add calls naming the same queue
// on opposite sides wire a producer to a consumer.
type StepOpts struct {
	PullFrom []string
	SendTo   []string
	SyncFrom []string
	SyncTo   []string
}

// Network is the arena holding every step's descriptor plus the queues
// wiring them together (spec §4.1).
type Network struct {
	nodes  []*nodeDesc
	byName map[string]NodeID
	queues map[string]*Queue

	producerOf map[string]NodeID
	consumerOf map[string][]NodeID // token queues have 1 consumer; kept as slice to report "claimed twice" errors
}

func NewNetwork() *Network {
	return &Network{
		byName:     make(map[string]NodeID),
		queues:     make(map[string]*Queue),
		producerOf: make(map[string]NodeID),
		consumerOf: make(map[string][]NodeID),
	}
}

func (n *Network) queue(name string, kind QueueKind) *Queue {
	q, ok := n.queues[name]
	if !ok {
		q = NewQueue(name, kind)
		n.queues[name] = q
	}
	return q
}

// Add registers a step under name, wired to the named queues, and returns
// its NodeID. run implements the step's control flow: a task coroutine
// calling Stepper.Get/Put/PreSync directly, or a stepped coroutine via
// Stepper.Walk.
func (n *Network) Add(name string, opts StepOpts, run func(ctx context.Context, s *Stepper) error) NodeID {
	pull := make([]*Queue, len(opts.PullFrom))
	for i, qn := range opts.PullFrom {
		pull[i] = n.queue(qn, TokenQueueKind)
	}
	send := make([]*Queue, len(opts.SendTo))
	for i, qn := range opts.SendTo {
		send[i] = n.queue(qn, TokenQueueKind)
	}
	syncFrom := make([]*Queue, len(opts.SyncFrom))
	for i, qn := range opts.SyncFrom {
		syncFrom[i] = n.queue(qn, SyncQueueKind)
	}
	syncTo := make([]*Queue, len(opts.SyncTo))
	for i, qn := range opts.SyncTo {
		syncTo[i] = n.queue(qn, SyncQueueKind)
	}

	id := NodeID(len(n.nodes))
	stepper := newStepper(name, pull, send, syncFrom, syncTo)
	n.nodes = append(n.nodes, &nodeDesc{id: id, name: name, stepper: stepper, run: run})
	n.byName[name] = id

	for _, qn := range opts.SendTo {
		n.producerOf[qn] = id
	}
	for _, qn := range opts.SyncTo {
		n.producerOf[qn] = id
	}
	for _, qn := range opts.PullFrom {
		n.consumerOf[qn] = append(n.consumerOf[qn], id)
	}
	for _, qn := range opts.SyncFrom {
		n.consumerOf[qn] = append(n.consumerOf[qn], id)
	}
	return id
}

// AddPipeline wires a sequence of named steps consecutively with token
// queues ("a:b", "b:c", …), then applies the outer pull_from/send_to to the
// first/last steps respectively. Each stage is still added via a caller
// supplied build func so stages can be stepped or task coroutines freely.
func (n *Network) AddPipeline(outerPull, outerSend []string, stages ...PipelineStage) []NodeID {
	ids := make([]NodeID, len(stages))
	for i, st := range stages {
		opts := StepOpts{SyncFrom: st.SyncFrom, SyncTo: st.SyncTo}
		if i > 0 {
			opts.PullFrom = []string{fmt.Sprintf("%s:%s", stages[i-1].Name, st.Name)}
		} else {
			opts.PullFrom = outerPull
		}
		if i < len(stages)-1 {
			opts.SendTo = []string{fmt.Sprintf("%s:%s", st.Name, stages[i+1].Name)}
		} else {
			opts.SendTo = outerSend
		}
		ids[i] = n.Add(st.Name, opts, st.Run)
	}
	return ids
}

// PipelineStage is one link of an AddPipeline chain.
type PipelineStage struct {
	Name     string
	SyncFrom []string
	SyncTo   []string
	Run      func(ctx context.Context, s *Stepper) error
}

// Validate checks the invariants of spec §4.1/§8.1: every queue claimed on
// exactly one producer and one consumer, no self-loops, and the union of
// sync+token edges forms a DAG. Producers are recorded one per queue name,
// so a queue named in the send_to or sync_to of two steps keeps only the
// later step as its producer; that double claim is not reported.
func (n *Network) Validate() error {
	names := make([]string, 0, len(n.queues))
	for name := range n.queues {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		producers := 0
		if _, ok := n.producerOf[name]; ok {
			producers = 1
		}
		consumers := len(n.consumerOf[name])
		if producers != 1 {
			return &WiringError{Queue: name, Detail: fmt.Sprintf("expected exactly one producer, got %d", producers)}
		}
		if consumers != 1 {
			return &WiringError{Queue: name, Detail: fmt.Sprintf("expected exactly one consumer, got %d", consumers)}
		}
		if n.producerOf[name] == n.consumerOf[name][0] {
			return &WiringError{Queue: name, Detail: "self-loop: producer and consumer are the same step"}
		}
	}

	adj := make(map[NodeID][]NodeID)
	for _, name := range names {
		p := n.producerOf[name]
		c := n.consumerOf[name][0]
		adj[p] = append(adj[p], c)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[NodeID]int)
	var path []NodeID

	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		color[id] = gray
		path = append(path, id)
		for _, next := range adj[id] {
			switch color[next] {
			case white:
				if err := visit(next); err != nil {
					return err
				}
			case gray:
				cyclePath := make([]string, 0, len(path)+1)
				start := 0
				for i, p := range path {
					if p == next {
						start = i
						break
					}
				}
				for _, p := range path[start:] {
					cyclePath = append(cyclePath, n.nodes[p].name)
				}
				cyclePath = append(cyclePath, n.nodes[next].name)
				return &CycleError{BackEdge: [2]string{n.nodes[id].name, n.nodes[next].name}, Path: cyclePath}
			case black:
				// cross edge, fine
			}
		}
		path = path[:len(path)-1]
		color[id] = black
		return nil
	}

	for _, node := range n.nodes {
		if color[node.id] == white {
			if err := visit(node.id); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run validates the network, then drives every step concurrently. The
// first error from any step cancels the shared context and aborts the
// whole gather (spec §5 "Cancellation").
func (n *Network) Run(ctx context.Context) error {
	if err := n.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(n.nodes))
	for _, node := range n.nodes {
		go func(node *nodeDesc) {
			errCh <- node.run(ctx, node.stepper)
		}(node)
	}

	var firstErr error
	for range n.nodes {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	return firstErr
}
