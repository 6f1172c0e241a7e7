package graph

import (
	"fmt"

	"honnef.co/go/forward/gpu"
)

// Job is a single named stage. It runs once per frame on the render
// thread and records its GPU work into one scoped batch. A returned
// error abandons the rest of the frame.
type Job interface {
	Run(fc *FrameContext) error
}

// JobFunc adapts a function to the Job interface.
type JobFunc func(fc *FrameContext) error

func (f JobFunc) Run(fc *FrameContext) error {
	return f(fc)
}

// Node is one graph entry: a job plus its wiring. Disabled nodes keep
// the graph's shape inspectable without running anything.
type Node struct {
	Name    string
	Job     Job
	Enabled bool

	needs []Slot
	emits []Slot
}

// Needs returns the slots the node consumes.
func (n *Node) Needs() []Slot { return n.needs }

// Emits returns the slots the node produces.
func (n *Node) Emits() []Slot { return n.emits }

type JobOption func(*Node)

// Needs declares slots the job reads. Every one of them must already
// have an enabled producer when the job is added; jobs only ever see
// upstream output.
func Needs(slots ...Slot) JobOption {
	return func(n *Node) {
		n.needs = append(n.needs, slots...)
	}
}

// Emits declares slots the job writes. Each slot has exactly one
// producer for the lifetime of the graph.
func Emits(slots ...Slot) JobOption {
	return func(n *Node) {
		n.emits = append(n.emits, slots...)
	}
}

// Disabled adds the node without scheduling it. Used for stages that
// are wired but intentionally inactive.
func Disabled() JobOption {
	return func(n *Node) {
		n.Enabled = false
	}
}

// Task is an executable render graph: an ordered list of jobs with
// validated wiring. The topology is built once per task lifetime;
// only execution happens per frame.
type Task struct {
	name  string
	nodes []Node
	// all slots emitted anywhere in the graph, reset at frame start
	slots  []Slot
	byName map[string]*Node
}

func NewTask(name string) *Task {
	return &Task{
		name:   name,
		byName: make(map[string]*Node),
	}
}

func (t *Task) Name() string {
	return t.name
}

// Nodes returns the graph's nodes in execution order.
func (t *Task) Nodes() []Node {
	return t.nodes
}

// AddJob appends a job to the graph, validating its wiring against
// everything added so far. Wiring failures are build-time errors; a
// graph that builds cleanly cannot hit a missing input at draw time.
func (t *Task) AddJob(name string, job Job, opts ...JobOption) error {
	if _, ok := t.byName[name]; ok {
		return &WiringError{Task: t.name, Job: name, Reason: "duplicate job name"}
	}
	node := Node{Name: name, Job: job, Enabled: true}
	for _, opt := range opts {
		opt(&node)
	}
	for _, s := range node.needs {
		producer := s.Producer()
		if producer == "" {
			return &WiringError{Task: t.name, Job: name, Slot: s.Name(), Reason: "input has no upstream producer"}
		}
		if pn := t.byName[producer]; pn != nil && !pn.Enabled && node.Enabled {
			return &WiringError{Task: t.name, Job: name, Slot: s.Name(), Reason: fmt.Sprintf("producer %q is disabled", producer)}
		}
	}
	for _, s := range node.emits {
		if p := s.Producer(); p != "" {
			return &WiringError{Task: t.name, Job: name, Slot: s.Name(), Reason: fmt.Sprintf("already produced by %q", p)}
		}
		s.bindProducer(name)
		t.slots = append(t.slots, s)
	}
	t.nodes = append(t.nodes, node)
	t.byName[name] = &t.nodes[len(t.nodes)-1]
	return nil
}

// MustAddJob is AddJob for graph builders whose wiring is statically
// known to be valid.
func (t *Task) MustAddJob(name string, job Job, opts ...JobOption) {
	if err := t.AddJob(name, job, opts...); err != nil {
		panic(err)
	}
}

// Releaser is implemented by jobs that own device resources, like the
// framebuffer provider.
type Releaser interface {
	Release(dev gpu.Device)
}

// Teardown releases every resource-owning job. The task must not run
// afterwards.
func (t *Task) Teardown(dev gpu.Device) {
	for i := range t.nodes {
		if r, ok := t.nodes[i].Job.(Releaser); ok {
			r.Release(dev)
		}
	}
}

// Run executes the enabled jobs in build order. The first job error
// abandons the frame: later jobs do not run and the caller decides
// whether to retry on the next frame. There is no partial-frame
// rollback.
func (t *Task) Run(fc *FrameContext) error {
	for _, s := range t.slots {
		s.reset()
	}
	pg := fc.profiler().Start(t.name)
	defer pg.End()
	for i := range t.nodes {
		n := &t.nodes[i]
		if !n.Enabled {
			continue
		}
		jg := pg.Start(n.Name)
		err := n.Job.Run(fc)
		jg.End()
		if err != nil {
			return fmt.Errorf("job %q: %w", n.Name, err)
		}
		for _, s := range n.emits {
			if !s.valid() {
				return &WiringError{Task: t.name, Job: n.Name, Slot: s.Name(), Reason: "job completed without producing its output"}
			}
		}
	}
	return nil
}
