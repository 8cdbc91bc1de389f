package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nif-optimizer/internal/nif"
	"nif-optimizer/internal/spell"
)

func TestRecorder(t *testing.T) {
	r := New()
	r.File("ok", 20*time.Millisecond)
	r.File("ok", 10*time.Millisecond)
	r.File("failed", time.Millisecond)

	toast := spell.NewToast(nif.NewGraph("20.0.0.5"), nil, spell.Options{})
	toast.Count("branches_merged", 3)
	toast.Count("references_cleaned", 2)
	r.Toast(toast)
	r.Toast(toast)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.files.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.files.WithLabelValues("failed")))
	assert.Equal(t, 6.0, testutil.ToFloat64(r.toast.WithLabelValues("branches_merged")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))

	path := filepath.Join(t.TempDir(), "niftoaster.prom")
	require.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `niftoaster_events_total{counter="references_cleaned"} 4`)
	assert.Contains(t, string(data), "niftoaster_file_duration_seconds_count 3")
}
