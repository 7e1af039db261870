package playback

import (
	"errors"
	"fmt"
	"math"
)

// Context is the environment a voice Runtime configures itself against,
// the same shape as effectchain.Context.
type Context struct {
	SampleRate float64
}

// Params carries named numeric parameters into a voice's Configure call.
type Params map[string]float64

// Runtime is the per-voice processing and configuration contract, the
// same shape as effectchain.Runtime. Unlike effectchain's nodes, a
// playback voice is sample-at-a-time (it must respond to ramped
// parameter changes within a block), so it exposes ProcessSample instead
// of a block-oriented Process.
type Runtime interface {
	Configure(ctx Context, params Params) error
	ProcessSample() float64
}

// Factory builds one voice Runtime.
type Factory func(ctx Context) (Runtime, error)

var errDuplicateVoice = errors.New("playback: duplicate voice name")

// Registry maps voice names to their factories. Three names are ever
// registered in practice (original, pitch, notes) but the registry keeps
// the teacher's effectchain.Registry shape rather than hardcoding a
// three-element struct, so a future voice only needs a Register call.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return errors.New("playback: empty voice name")
	}
	if factory == nil {
		return errors.New("playback: nil voice factory")
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %s", errDuplicateVoice, name)
	}
	r.factories[name] = factory
	return nil
}

// Lookup returns the factory registered under name, or nil.
func (r *Registry) Lookup(name string) Factory {
	return r.factories[name]
}

// node pairs a named voice Runtime with its mixer gain ramp.
type node struct {
	name    string
	runtime Runtime
	gain    *gainRamp
}

// Graph owns the three always-present playback voices (original, pitch,
// notes) and walks them in that fixed order every sample, summing their
// output through independent mixer gain ramps. It is rebuilt fresh per
// play() call rather than mutated, per the scheduler's read-the-snapshot-
// once contract.
type Graph struct {
	ctx   Context
	nodes []*node
}

// NewGraph builds a Graph from reg, instantiating one Runtime per name in
// names, in order. The order given is the order voices are summed and
// the order mixer updates apply.
func NewGraph(ctx Context, reg *Registry, names ...string) (*Graph, error) {
	g := &Graph{ctx: ctx}
	for _, name := range names {
		factory := reg.Lookup(name)
		if factory == nil {
			return nil, fmt.Errorf("playback: no voice registered for %q", name)
		}
		rt, err := factory(ctx)
		if err != nil {
			return nil, fmt.Errorf("playback: building voice %q: %w", name, err)
		}
		g.nodes = append(g.nodes, &node{name: name, runtime: rt, gain: newGainRamp(ctx.SampleRate)})
	}
	return g, nil
}

// SetGain stages a ~100ms exponential gain ramp on the named voice's
// mixer node to target. Volume 0 is equivalent to disabling the voice.
func (g *Graph) SetGain(name string, enabled bool, volume float64) {
	target := volume
	if !enabled {
		target = 0
	}
	for _, n := range g.nodes {
		if n.name == name {
			n.gain.setTarget(target)
			return
		}
	}
}

// Next advances every voice by one sample and returns the mixed output.
func (g *Graph) Next() float64 {
	var out float64
	for _, n := range g.nodes {
		out += n.runtime.ProcessSample() * n.gain.next()
	}
	return out
}

// gainRamp is a one-pole exponential approach to a target value, the
// ~100ms mixer ramp the scheduler's updateMixer contract calls for.
type gainRamp struct {
	coeff  float64
	value  float64
	target float64
}

func newGainRamp(sampleRate float64) *gainRamp {
	const rampSeconds = 0.1
	// One-pole coefficient with a time constant of rampSeconds: the value
	// moves ~63% of the way to target in rampSeconds and ~95% in three
	// times that.
	coeff := 1 - math.Exp(-1/(rampSeconds*sampleRate))
	return &gainRamp{coeff: coeff}
}

func (r *gainRamp) setTarget(target float64) { r.target = target }

func (r *gainRamp) next() float64 {
	r.value += r.coeff * (r.target - r.value)
	return r.value
}
