// Package specloader loads per-operation specification documents from the
// filesystem, validates them against a JSON Schema, and compiles their
// guards, properties, and throws clauses into immutable operation catalogs.
//
// Documents are JSON or YAML files, one operation each. Loading happens once
// at startup; catalogs are shared read-only afterwards.
package specloader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/specfirst/veridict/pkg/canonicalize"
	"github.com/specfirst/veridict/pkg/condition"
	"github.com/specfirst/veridict/pkg/contracts"
	"github.com/specfirst/veridict/pkg/expr"
)

// SpecDocument is the on-disk shape of one operation's specification.
type SpecDocument struct {
	Operation   string       `json:"operation"`
	Description string       `json:"description,omitempty"`
	Pre         []PreSpec    `json:"pre,omitempty"`
	Post        []PostSpec   `json:"post,omitempty"`
	Throws      []ThrowsSpec `json:"throws,omitempty"`
}

// PreSpec is a bare precondition: a guard over the prestate with no attached
// property. Its guard still counts toward invalidity detection.
type PreSpec struct {
	Description string `json:"description,omitempty"`
	Guard       string `json:"guard"`
}

// PostSpec states that when the guard holds in the prestate, the property
// must hold in the poststate.
type PostSpec struct {
	Description string `json:"description,omitempty"`
	Guard       string `json:"guard"`
	Property    string `json:"property"`
}

// ThrowsSpec states that when the guard holds in the prestate, the call must
// raise one of the listed causes.
type ThrowsSpec struct {
	Description string                   `json:"description,omitempty"`
	Guard       string                   `json:"guard"`
	Exceptions  []contracts.ThrowsClause `json:"exceptions"`
}

// CompiledSpec pairs a validated document with its compiled catalog and
// content address.
type CompiledSpec struct {
	Document   SpecDocument
	Conditions *condition.OperationConditions
	Hash       string
	Path       string
}

// Loader loads and holds compiled specifications keyed by operation.
type Loader struct {
	mu       sync.RWMutex
	dir      string
	compiler *expr.Compiler
	schema   *jsonschema.Schema
	specs    map[string]*CompiledSpec
	onLoad   func(*CompiledSpec)
}

// NewLoader creates a loader reading specification documents from dir and
// compiling expressions through the given compiler.
func NewLoader(dir string, compiler *expr.Compiler) (*Loader, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	return &Loader{
		dir:      dir,
		compiler: compiler,
		schema:   schema,
		specs:    make(map[string]*CompiledSpec),
	}, nil
}

// OnLoad registers a callback invoked for each document as it loads.
func (l *Loader) OnLoad(fn func(*CompiledSpec)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onLoad = fn
}

// LoadAll loads every .json, .yaml, and .yml document in the configured
// directory. A document that fails validation or compilation aborts the load.
func (l *Loader) LoadAll() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("specloader: read dir %s: %w", l.dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		if _, err := l.LoadFile(filepath.Join(l.dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile loads, validates, and compiles a single document, replacing any
// previously loaded specification for the same operation.
func (l *Loader) LoadFile(path string) (*CompiledSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("specloader: read %s: %w", path, err)
	}

	generic, err := decodeGeneric(path, raw)
	if err != nil {
		return nil, err
	}
	if err := l.schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("specloader: %s: schema validation: %w", path, err)
	}

	var doc SpecDocument
	if err := rebind(generic, &doc); err != nil {
		return nil, fmt.Errorf("specloader: %s: %w", path, err)
	}

	conds, err := l.compile(doc)
	if err != nil {
		return nil, fmt.Errorf("specloader: %s: %w", path, err)
	}

	hash, err := canonicalize.CanonicalHash(generic)
	if err != nil {
		return nil, fmt.Errorf("specloader: %s: content hash: %w", path, err)
	}

	spec := &CompiledSpec{Document: doc, Conditions: conds, Hash: hash, Path: path}

	l.mu.Lock()
	l.specs[doc.Operation] = spec
	onLoad := l.onLoad
	l.mu.Unlock()

	if onLoad != nil {
		onLoad(spec)
	}
	return spec, nil
}

// Conditions returns the compiled catalog for an operation.
func (l *Loader) Conditions(operation string) (*condition.OperationConditions, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	spec, ok := l.specs[operation]
	if !ok {
		return nil, false
	}
	return spec.Conditions, true
}

// Spec returns the full compiled specification for an operation.
func (l *Loader) Spec(operation string) (*CompiledSpec, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	spec, ok := l.specs[operation]
	return spec, ok
}

// Operations lists the loaded operation names.
func (l *Loader) Operations() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ops := make([]string, 0, len(l.specs))
	for op := range l.specs {
		ops = append(ops, op)
	}
	return ops
}

func (l *Loader) compile(doc SpecDocument) (*condition.OperationConditions, error) {
	var props []condition.GuardPropertyPair
	var throws []condition.GuardThrowsPair

	for _, pre := range doc.Pre {
		guard, err := l.compiler.Guard(pre.Guard)
		if err != nil {
			return nil, err
		}
		props = append(props, condition.GuardPropertyPair{Guard: guard})
	}

	for _, post := range doc.Post {
		guard, err := l.compiler.Guard(post.Guard)
		if err != nil {
			return nil, err
		}
		property, err := l.compiler.Property(post.Property)
		if err != nil {
			return nil, err
		}
		props = append(props, condition.GuardPropertyPair{Guard: guard, Property: property})
	}

	for _, th := range doc.Throws {
		guard, err := l.compiler.Guard(th.Guard)
		if err != nil {
			return nil, err
		}
		throws = append(throws, condition.GuardThrowsPair{
			Guard:  guard,
			Throws: contracts.ThrowsSet(th.Exceptions),
		})
	}

	return condition.New(doc.Operation, props, throws)
}

// decodeGeneric parses the raw document into JSON-compatible generic values
// suitable for schema validation, regardless of the source format.
func decodeGeneric(path string, raw []byte) (any, error) {
	var generic any
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return nil, fmt.Errorf("specloader: %s: yaml parse: %w", path, err)
		}
		// Round-trip through JSON so numbers and nested maps take the shapes
		// the schema validator expects.
		return rebindGeneric(generic)
	default:
		if err := json.Unmarshal(raw, &generic); err != nil {
			return nil, fmt.Errorf("specloader: %s: json parse: %w", path, err)
		}
		return generic, nil
	}
}

func rebindGeneric(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("specloader: normalize: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("specloader: normalize: %w", err)
	}
	return out, nil
}

func rebind(generic any, out *SpecDocument) error {
	data, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("rebind: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("rebind: %w", err)
	}
	return nil
}
