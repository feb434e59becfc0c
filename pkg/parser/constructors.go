package parser

import (
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/dicetables/pkg/dicetables"
	"github.com/Sumatoshi-tech/dicetables/pkg/limiter"
	"github.com/Sumatoshi-tech/dicetables/pkg/poolmath"
)

type valueKind int

const (
	kindInt valueKind = iota
	kindTuple
	kindMapping
	kindDie
)

func (k valueKind) String() string {
	switch k {
	case kindInt:
		return "integer"
	case kindTuple:
		return "tuple"
	case kindMapping:
		return "mapping"
	default:
		return "die"
	}
}

type value struct {
	kind    valueKind
	pos     int
	integer int
	tuple   []int
	mapping map[int]int
	die     dicetables.Descriptor
}

type argument struct {
	name  string
	value value
	pos   int
}

type param struct {
	name     string
	kind     valueKind
	fallback *value
}

type constructor struct {
	params []param
	build  func(p *Parser, args []value) (dicetables.Descriptor, error)
}

func intDefault(n int) *value {
	return &value{kind: kindInt, integer: n}
}

var (
	dieParam        = param{name: "input_die", kind: kindDie}
	explosionsParam = param{name: "explosions", kind: kindInt, fallback: intDefault(dicetables.DefaultExplosions)}
	poolParams      = []param{dieParam, {name: "pool_size", kind: kindInt}, {name: "select", kind: kindInt}}
)

var constructors = map[string]constructor{
	"Die": {
		params: []param{{name: "die_size", kind: kindInt}},
		build: func(p *Parser, args []value) (dicetables.Descriptor, error) {
			if err := p.check(func(l *limiter.Limiter) error { return l.CheckSize(args[0].integer) }); err != nil {
				return nil, err
			}

			return dicetables.NewDie(args[0].integer)
		},
	},
	"ModDie": {
		params: []param{{name: "die_size", kind: kindInt}, {name: "modifier", kind: kindInt}},
		build: func(p *Parser, args []value) (dicetables.Descriptor, error) {
			if err := p.check(func(l *limiter.Limiter) error { return l.CheckSize(args[0].integer) }); err != nil {
				return nil, err
			}

			return dicetables.NewModDie(args[0].integer, args[1].integer)
		},
	},
	"WeightedDie": {
		params: []param{{name: "dictionary_input", kind: kindMapping}},
		build: func(p *Parser, args []value) (dicetables.Descriptor, error) {
			if err := p.checkWeights(args[0].mapping); err != nil {
				return nil, err
			}

			return dicetables.NewWeightedDie(args[0].mapping)
		},
	},
	"ModWeightedDie": {
		params: []param{{name: "dictionary_input", kind: kindMapping}, {name: "modifier", kind: kindInt}},
		build: func(p *Parser, args []value) (dicetables.Descriptor, error) {
			if err := p.checkWeights(args[0].mapping); err != nil {
				return nil, err
			}

			return dicetables.NewModWeightedDie(args[0].mapping, args[1].integer)
		},
	},
	"StrongDie": {
		params: []param{dieParam, {name: "multiplier", kind: kindInt}},
		build: func(_ *Parser, args []value) (dicetables.Descriptor, error) {
			return dicetables.NewStrongDie(args[0].die, args[1].integer)
		},
	},
	"Exploding": {
		params: []param{dieParam, explosionsParam},
		build: func(p *Parser, args []value) (dicetables.Descriptor, error) {
			if err := p.check(func(l *limiter.Limiter) error { return l.CheckExplosions(args[1].integer) }); err != nil {
				return nil, err
			}

			return dicetables.NewExploding(args[0].die, args[1].integer)
		},
	},
	"ExplodingOn": {
		params: []param{dieParam, {name: "explodes_on", kind: kindTuple}, explosionsParam},
		build: func(p *Parser, args []value) (dicetables.Descriptor, error) {
			if err := p.check(func(l *limiter.Limiter) error { return l.CheckExplosions(args[2].integer) }); err != nil {
				return nil, err
			}

			return dicetables.NewExplodingOn(args[0].die, args[1].tuple, args[2].integer)
		},
	},
	"BestOfDicePool":     poolConstructor(poolmath.Best),
	"WorstOfDicePool":    poolConstructor(poolmath.Worst),
	"UpperMidOfDicePool": poolConstructor(poolmath.UpperMid),
	"LowerMidOfDicePool": poolConstructor(poolmath.LowerMid),
}

func poolConstructor(policy poolmath.Policy) constructor {
	return constructor{
		params: poolParams,
		build: func(p *Parser, args []value) (dicetables.Descriptor, error) {
			base, poolSize := args[0].die, args[1].integer

			if err := p.check(func(l *limiter.Limiter) error { return l.CheckPool(base, poolSize) }); err != nil {
				return nil, err
			}

			return dicetables.NewDicePool(base, poolSize, args[2].integer, policy, p.poolOptions()...)
		},
	}
}

// Names returns the known constructor names, sorted.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func (p *Parser) checkWeights(weights map[int]int) error {
	size := 0
	for face := range weights {
		size = max(size, face)
	}

	return p.check(func(l *limiter.Limiter) error { return l.CheckSize(size) })
}

// bind matches positional then keyword arguments to the parameter list.
func (c constructor) bind(name string, args []argument) ([]value, error) {
	bound := make([]*value, len(c.params))
	seenKeyword := false

	for i, arg := range args {
		idx := i

		if arg.name != "" {
			seenKeyword = true
			idx = slices.IndexFunc(c.params, func(p param) bool { return p.name == arg.name })

			if idx < 0 {
				return nil, fmt.Errorf("%w: %s has no parameter %q (position %d)", ErrArguments, name, arg.name, arg.pos)
			}
		} else if seenKeyword {
			return nil, fmt.Errorf("%w: %s: positional argument after keyword (position %d)", ErrArguments, name, arg.pos)
		}

		if idx >= len(c.params) {
			return nil, fmt.Errorf("%w: %s takes at most %d arguments, got %d", ErrArguments, name, len(c.params), len(args))
		}

		if bound[idx] != nil {
			return nil, fmt.Errorf("%w: %s: %s given more than once (position %d)", ErrArguments, name, c.params[idx].name, arg.pos)
		}

		if arg.value.kind != c.params[idx].kind {
			return nil, fmt.Errorf("%w: %s: %s must be a %s, got a %s (position %d)",
				ErrArguments, name, c.params[idx].name, c.params[idx].kind, arg.value.kind, arg.value.pos)
		}

		bound[idx] = &arg.value
	}

	values := make([]value, len(c.params))

	for i, v := range bound {
		switch {
		case v != nil:
			values[i] = *v
		case c.params[i].fallback != nil:
			values[i] = *c.params[i].fallback
		default:
			return nil, fmt.Errorf("%w: %s missing %s", ErrArguments, name, c.params[i].name)
		}
	}

	return values, nil
}
