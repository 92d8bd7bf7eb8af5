package specloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfirst/veridict/pkg/contracts"
	"github.com/specfirst/veridict/pkg/expr"
)

const dequeueJSON = `{
  "operation": "container.Queue.Dequeue",
  "description": "removes and returns the head",
  "pre":  [{"guard": "receiver.closed == false"}],
  "post": [{"guard": "receiver.size > 0", "property": "result >= 0"}],
  "throws": [{
    "guard": "receiver.size == 0",
    "exceptions": [{"type": "container.ErrEmpty", "comment": "dequeue on empty queue"}]
  }]
}`

const enqueueYAML = `operation: container.Queue.Enqueue
post:
  - guard: args[0] >= 0
    property: result == true
`

func writeSpec(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func newLoader(t *testing.T, dir string) *Loader {
	t.Helper()
	compiler, err := expr.NewCompiler()
	require.NoError(t, err)
	loader, err := NewLoader(dir, compiler)
	require.NoError(t, err)
	return loader
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "dequeue.json", dequeueJSON)
	writeSpec(t, dir, "enqueue.yaml", enqueueYAML)
	writeSpec(t, dir, "notes.txt", "not a specification")

	loader := newLoader(t, dir)

	var loaded []string
	loader.OnLoad(func(spec *CompiledSpec) {
		loaded = append(loaded, spec.Document.Operation)
	})
	require.NoError(t, loader.LoadAll())

	assert.ElementsMatch(t,
		[]string{"container.Queue.Dequeue", "container.Queue.Enqueue"},
		loader.Operations())
	assert.ElementsMatch(t,
		[]string{"container.Queue.Dequeue", "container.Queue.Enqueue"}, loaded)

	conds, ok := loader.Conditions("container.Queue.Dequeue")
	require.True(t, ok)
	assert.Equal(t, 3, conds.Len(), "one pre, one post, one throws pair")

	_, ok = loader.Conditions("container.Queue.Peek")
	assert.False(t, ok)
}

func TestLoadedCatalogEvaluates(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "dequeue.json", dequeueJSON)

	loader := newLoader(t, dir)
	require.NoError(t, loader.LoadAll())

	conds, ok := loader.Conditions("container.Queue.Dequeue")
	require.True(t, ok)

	table, err := conds.CheckPrestate(contracts.Prestate{
		Receiver: map[string]any{"closed": false, "size": 0},
	})
	require.NoError(t, err)

	// The empty-queue throws guard holds; the bare precondition holds too and
	// counts as a satisfied guard.
	assert.True(t, table.HasSatisfiedGuardExpression())
	require.Len(t, table.ExceptionSets(), 1)
	assert.Equal(t, "container.ErrEmpty", table.ExceptionSets()[0][0].Type)
}

func TestLoadFileContentHash(t *testing.T) {
	dir := t.TempDir()
	pathA := writeSpec(t, dir, "a.json", dequeueJSON)
	pathB := writeSpec(t, dir, "b.json", dequeueJSON)

	loader := newLoader(t, dir)
	specA, err := loader.LoadFile(pathA)
	require.NoError(t, err)
	specB, err := loader.LoadFile(pathB)
	require.NoError(t, err)

	assert.Equal(t, specA.Hash, specB.Hash, "identical content, identical address")
	assert.Contains(t, specA.Hash, "sha256:")
}

func TestLoadFileRejectsInvalidDocuments(t *testing.T) {
	dir := t.TempDir()
	loader := newLoader(t, dir)

	tests := []struct {
		name, file, body string
	}{
		{"missing operation", "bad1.json", `{"pre": [{"guard": "true"}]}`},
		{"unknown field", "bad2.json", `{"operation": "x.Y", "extra": 1}`},
		{"empty exceptions", "bad3.json",
			`{"operation": "x.Y", "throws": [{"guard": "true", "exceptions": []}]}`},
		{"post without property", "bad4.json",
			`{"operation": "x.Y", "post": [{"guard": "true"}]}`},
		{"malformed json", "bad5.json", `{"operation": `},
		{"guard does not compile", "bad6.json",
			`{"operation": "x.Y", "pre": [{"guard": "args[0] >"}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSpec(t, dir, tc.file, tc.body)
			_, err := loader.LoadFile(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadFileReplacesPriorSpec(t *testing.T) {
	dir := t.TempDir()
	path := writeSpec(t, dir, "dequeue.json", dequeueJSON)

	loader := newLoader(t, dir)
	_, err := loader.LoadFile(path)
	require.NoError(t, err)

	writeSpec(t, dir, "dequeue.json", `{
	  "operation": "container.Queue.Dequeue",
	  "pre": [{"guard": "true"}]
	}`)
	spec, err := loader.LoadFile(path)
	require.NoError(t, err)

	conds, ok := loader.Conditions("container.Queue.Dequeue")
	require.True(t, ok)
	assert.Equal(t, 1, conds.Len())
	assert.Equal(t, spec.Conditions, conds)
}
