package tui

import (
	"context"
	"sync"
	"testing"

	"github.com/Iampro1712/apiconsole/internal/catalog"
	"github.com/Iampro1712/apiconsole/internal/console"
	"github.com/Iampro1712/apiconsole/internal/notify"
	"github.com/Iampro1712/apiconsole/internal/tokenstore"
	"github.com/Iampro1712/apiconsole/internal/types"
	tea "github.com/charmbracelet/bubbletea"
)

// FakeTransport returns a fixed outcome and records the requests it receives
type FakeTransport struct {
	mu       sync.Mutex
	Outcome  types.Outcome
	Requests []*types.RequestDescriptor
}

func (f *FakeTransport) Execute(_ context.Context, desc *types.RequestDescriptor, _ types.Config) types.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, desc)
	return f.Outcome
}

// Calls returns the number of executed requests
func (f *FakeTransport) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}

// TestEnv bundles a model with its collaborators
type TestEnv struct {
	Model     *Model
	Transport *FakeTransport
	Store     *tokenstore.Memory
	Notices   *notify.Center
}

// CreateTestModel creates a Model over the built-in catalog, an in-memory
// token store and a fake transport answering 200 {}
func CreateTestModel(t *testing.T) *TestEnv {
	t.Helper()

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	transport := &FakeTransport{Outcome: types.Outcome{
		Kind:       types.OutcomeOK,
		OK:         true,
		Status:     200,
		StatusText: "200 OK",
		JSON:       map[string]any{},
		RawBody:    "{}",
	}}
	store := tokenstore.NewMemory()
	notices := notify.NewCenter()

	c := console.New(types.Config{BaseURL: "http://localhost:5000/api"}, store, transport,
		console.WithNotifier(notices))

	m := New(context.Background(), Options{
		Console: c,
		Catalog: cat,
		Notices: notices,
	})
	m.width, m.height = 160, 40
	m.resize()

	return &TestEnv{Model: &m, Transport: transport, Store: store, Notices: notices}
}

// SelectEndpoint moves the selection to the named catalog entry
func (e *TestEnv) SelectEndpoint(t *testing.T, name string) {
	t.Helper()
	for i, ep := range e.Model.endpoints {
		if ep.Name == name {
			e.Model.selectEndpoint(i)
			return
		}
	}
	t.Fatalf("endpoint %q not in catalog", name)
}

// RunCmd executes cmd synchronously and feeds its message back into the model
func (e *TestEnv) RunCmd(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			e.RunCmd(c)
		}
	default:
		e.Model.Update(msg)
	}
}

// AssertModelField is a generic helper for checking model field values
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}
