package batch

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"nif-optimizer/internal/metrics"
	"nif-optimizer/internal/raster"
	"nif-optimizer/internal/scenefile"
	"nif-optimizer/internal/spell"
	"nif-optimizer/internal/texture"
)

// Config holds all shared resources for a batch run.
type Config struct {
	InputDir   string
	OutputDir  string // empty: files are rewritten in place
	PreviewDir string // empty: no previews
	Unit       spell.Unit
	Options    spell.Options
	DryRun     bool
	Workers    int

	TexResolver texture.Resolver
	Render      raster.Options

	Log      *logrus.Entry
	Metrics  *metrics.Recorder
	Progress Progress
}

// Result holds the outcome of processing one scene file.
type Result struct {
	File         string         `json:"file"`
	Output       string         `json:"output,omitempty"`
	Success      bool           `json:"success"`
	Error        string         `json:"error,omitempty"`
	BlocksBefore int            `json:"blocks_before"`
	BlocksAfter  int            `json:"blocks_after"`
	Stats        map[string]int `json:"stats,omitempty"`
	Previews     []string       `json:"previews,omitempty"`
	Duration     time.Duration  `json:"duration_ns"`
}

// sceneExts are the file extensions Discover picks up.
var sceneExts = map[string]bool{".yaml": true, ".yml": true}

// Discover lists the scene files below dir, relative to it and sorted.
func Discover(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !sceneExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "batch: scan %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

// Run processes files with at most cfg.Workers files in flight. Every file
// gets a Result; the returned error collects the failed ones. Cancelling
// ctx stops scheduling new files.
func Run(ctx context.Context, cfg Config, files []string) ([]Result, error) {
	progress := cfg.Progress
	if progress == nil {
		progress = NopProgress{}
	}

	results := make([]Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))

	for i := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = ProcessFile(cfg, files[i])
			progress.Done(results[i])
			return nil
		})
	}
	g.Wait()
	progress.Finish()

	var merr *multierror.Error
	for i, r := range results {
		if r.File == "" {
			results[i] = Result{File: files[i], Error: "not processed"}
			merr = multierror.Append(merr, errors.Errorf("%s: not processed", files[i]))
			continue
		}
		if !r.Success {
			merr = multierror.Append(merr, errors.Errorf("%s: %s", r.File, r.Error))
		}
	}
	if err := ctx.Err(); err != nil {
		merr = multierror.Append(merr, err)
	}
	return results, merr.ErrorOrNil()
}

// ProcessFile loads one scene file, casts the configured spell on it and
// writes the result.
func ProcessFile(cfg Config, rel string) (res Result) {
	start := time.Now()
	res = Result{File: rel}
	log := cfg.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("file", rel)
	defer func() {
		res.Duration = time.Since(start)
		if cfg.Metrics != nil {
			status := "ok"
			if !res.Success {
				status = "failed"
			}
			cfg.Metrics.File(status, res.Duration)
		}
	}()
	fail := func(err error) Result {
		log.WithError(err).Error("failed")
		res.Error = err.Error()
		return res
	}

	g, err := scenefile.Load(filepath.Join(cfg.InputDir, rel))
	if err != nil {
		return fail(err)
	}
	res.BlocksBefore = len(g.Tree())

	var before *image.NRGBA
	if cfg.PreviewDir != "" {
		before = renderPreview(cfg, g)
	}

	work := g
	if cfg.DryRun {
		if work, err = g.Clone(); err != nil {
			return fail(err)
		}
	}

	toast := spell.NewToast(work, log, cfg.Options)
	castErr := spell.Cast(toast, cfg.Unit)
	res.Stats = make(map[string]int)
	for _, name := range toast.StatNames() {
		res.Stats[name] = toast.Stat(name)
	}
	if cfg.Metrics != nil {
		cfg.Metrics.Toast(toast)
	}
	if castErr != nil {
		return fail(castErr)
	}
	res.BlocksAfter = len(work.Tree())

	if before != nil {
		if res.Previews, err = writePreviews(cfg, rel, before, renderPreview(cfg, work)); err != nil {
			return fail(err)
		}
	}

	if !cfg.DryRun && !cfg.Unit.ReadOnly() {
		out := filepath.Join(cfg.InputDir, rel)
		if cfg.OutputDir != "" {
			out = filepath.Join(cfg.OutputDir, rel)
		}
		if err := scenefile.Save(out, work); err != nil {
			return fail(err)
		}
		res.Output = out
	}

	log.WithField("blocks", res.BlocksAfter).Info("done")
	res.Success = true
	return res
}
