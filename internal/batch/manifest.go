package batch

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Manifest summarizes one batch run.
type Manifest struct {
	RunID    string         `json:"run_id"`
	Started  time.Time      `json:"started"`
	Spell    string         `json:"spell"`
	DryRun   bool           `json:"dry_run"`
	Files    []Result       `json:"files"`
	Failed   int            `json:"failed"`
	Totals   map[string]int `json:"totals"`
	Duration time.Duration  `json:"duration_ns"`
}

// NewManifest starts a manifest with a fresh run id.
func NewManifest(spell string, dryRun bool) *Manifest {
	return &Manifest{RunID: uuid.NewString(), Started: time.Now(), Spell: spell, DryRun: dryRun}
}

// Finish records the results and sums their counters.
func (m *Manifest) Finish(results []Result) {
	m.Files = results
	m.Duration = time.Since(m.Started)
	m.Totals = make(map[string]int)
	m.Failed = 0
	for _, r := range results {
		if !r.Success {
			m.Failed++
		}
		for k, v := range r.Stats {
			m.Totals[k] += v
		}
	}
}

// WriteManifest writes the manifest as indented JSON.
func WriteManifest(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "manifest")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "manifest: write %s", path)
}
