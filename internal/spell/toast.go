package spell

import (
	"sort"

	"github.com/sirupsen/logrus"

	"nif-optimizer/internal/nif"
)

// Options apply to every spell cast on a toast.
type Options struct {
	// Exclude lists block kinds the walker never enters.
	Exclude []nif.Kind
}

// Excluded reports whether kind is in the exclude list.
func (o Options) Excluded(kind nif.Kind) bool {
	for _, k := range o.Exclude {
		if k == kind {
			return true
		}
	}
	return false
}

// Toast carries one graph through a sequence of spells. It owns the
// per-graph accumulators of the spells and is discarded with the graph.
type Toast struct {
	Graph   *nif.Graph
	Log     *logrus.Entry
	Options Options

	stats   map[string]int
	scratch map[any]any
}

// NewToast prepares g for casting. A nil log discards messages.
func NewToast(g *nif.Graph, log *logrus.Entry, opts Options) *Toast {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = logrus.NewEntry(l)
	}
	return &Toast{
		Graph:   g,
		Log:     log,
		Options: opts,
		stats:   make(map[string]int),
		scratch: make(map[any]any),
	}
}

// Count adds n to the named counter.
func (t *Toast) Count(name string, n int) {
	t.stats[name] += n
}

// Stat returns the value of the named counter.
func (t *Toast) Stat(name string) int {
	return t.stats[name]
}

// StatNames returns the names of all counters, sorted.
func (t *Toast) StatNames() []string {
	names := make([]string, 0, len(t.stats))
	for k := range t.stats {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Forget drops the accumulator stored under key.
func (t *Toast) Forget(key any) {
	delete(t.scratch, key)
}

// Scratch returns the accumulator stored under key, creating it with init
// on first use.
func Scratch[T any](t *Toast, key any, init func() T) T {
	if v, ok := t.scratch[key]; ok {
		return v.(T)
	}
	v := init()
	t.scratch[key] = v
	return v
}

// BlockLog returns the toast logger with the block fields set.
func (t *Toast) BlockLog(r nif.Ref) *logrus.Entry {
	b := t.Graph.Block(r)
	if b == nil {
		return t.Log.WithField("block", r.String())
	}
	e := t.Log.WithField("block", r.String()).WithField("type", string(b.Kind()))
	if n, ok := b.(nif.NET); ok && n.Net().Name != "" {
		e = e.WithField("name", n.Net().Name)
	}
	return e
}
