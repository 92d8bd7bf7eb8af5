// Package expr implements the compiled boolean predicates that specifications
// attach to operations: guards evaluated against a prestate and properties
// evaluated against a poststate.
//
// Expressions are CEL. A guard sees the variables `receiver` and `args`; a
// property additionally sees `result`. Evaluation failure is a distinct
// *EvalError result and is never coerced to false.
package expr

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// Program limits applied to every compiled expression. Specifications are
// untrusted input; a runaway expression must not stall an attempt.
const (
	interruptCheckFrequency = 100
	costLimit               = 10000
)

// Compiler compiles guard and property sources into evaluable predicates.
// Compiled programs are cached per source with double-checked locking, so a
// catalog shared across many attempts compiles each expression once.
type Compiler struct {
	preEnv  *cel.Env
	postEnv *cel.Env

	mu    sync.RWMutex
	cache map[string]cel.Program
}

// NewCompiler creates a compiler with the standard prestate and poststate
// environments.
func NewCompiler() (*Compiler, error) {
	preEnv, err := cel.NewEnv(
		cel.Variable("receiver", cel.DynType),
		cel.Variable("args", cel.ListType(cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("expr: prestate env: %w", err)
	}

	postEnv, err := cel.NewEnv(
		cel.Variable("receiver", cel.DynType),
		cel.Variable("args", cel.ListType(cel.DynType)),
		cel.Variable("result", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("expr: poststate env: %w", err)
	}

	return &Compiler{
		preEnv:  preEnv,
		postEnv: postEnv,
		cache:   make(map[string]cel.Program),
	}, nil
}

// Guard compiles a prestate predicate.
func (c *Compiler) Guard(source string) (*Guard, error) {
	prg, err := c.compile(c.preEnv, "pre:", source)
	if err != nil {
		return nil, err
	}
	return &Guard{source: source, prg: prg}, nil
}

// Property compiles a poststate predicate.
func (c *Compiler) Property(source string) (*Property, error) {
	prg, err := c.compile(c.postEnv, "post:", source)
	if err != nil {
		return nil, err
	}
	return &Property{source: source, prg: prg}, nil
}

func (c *Compiler) compile(env *cel.Env, kind, source string) (cel.Program, error) {
	key := kind + source

	c.mu.RLock()
	prg, hit := c.cache[key]
	c.mu.RUnlock()
	if hit {
		return prg, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if prg, hit = c.cache[key]; hit {
		return prg, nil
	}

	ast, issues := env.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("expr: compile %q: %w", source, issues.Err())
	}
	prg, err := env.Program(ast,
		cel.InterruptCheckFrequency(interruptCheckFrequency),
		cel.CostLimit(costLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("expr: program %q: %w", source, err)
	}
	c.cache[key] = prg
	return prg, nil
}

// Guard is a compiled boolean predicate over a prestate context. Pure: it
// reads the activation and nothing else.
type Guard struct {
	source string
	prg    cel.Program
}

// Source returns the expression source text.
func (g *Guard) Source() string { return g.source }

// Eval evaluates the guard against a prestate activation. A failure during
// evaluation, or a non-boolean result, is returned as *EvalError.
func (g *Guard) Eval(activation map[string]any) (bool, error) {
	return evalBool(g.prg, g.source, activation)
}

// Property is a compiled boolean predicate over a poststate context.
type Property struct {
	source string
	prg    cel.Program
}

// Source returns the expression source text.
func (p *Property) Source() string { return p.source }

// Eval evaluates the property against a poststate activation. A failure
// during evaluation, or a non-boolean result, is returned as *EvalError.
func (p *Property) Eval(activation map[string]any) (bool, error) {
	return evalBool(p.prg, p.source, activation)
}

func evalBool(prg cel.Program, source string, activation map[string]any) (bool, error) {
	out, _, err := prg.Eval(activation)
	if err != nil {
		return false, &EvalError{Source: source, Err: err}
	}
	val, ok := out.Value().(bool)
	if !ok {
		return false, &EvalError{Source: source, Err: fmt.Errorf("result is %T, not bool", out.Value())}
	}
	return val, nil
}
