package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nif-optimizer/internal/batch"
	"nif-optimizer/internal/config"
	"nif-optimizer/internal/metrics"
	"nif-optimizer/internal/nif"
	"nif-optimizer/internal/optimize"
	"nif-optimizer/internal/raster"
	"nif-optimizer/internal/spell"
	"nif-optimizer/internal/spells"
	"nif-optimizer/internal/texture"
)

func addRunFlags(cmd *cobra.Command, root *rootFlags) {
	f := &root.cfg
	fl := cmd.Flags()
	fl.StringVarP(&f.InputDir, "input", "i", "", "directory of scene files")
	fl.StringVarP(&f.OutputDir, "output", "o", "", "write results here instead of in place")
	fl.StringVar(&f.PreviewDir, "preview", "", "write before/after WebP previews here")
	fl.IntVarP(&f.Workers, "workers", "j", 0, "files processed in parallel (default: NumCPU)")
	fl.StringSliceVarP(&f.Exclude, "exclude", "x", nil, "block types to leave alone, e.g. NiMaterialProperty")
	fl.Float64Var(&root.cutoff, "strip-cutoff", 10, "average strip length below which triangle lists are kept; 0 always keeps strips")
	fl.BoolVar(&f.NoStitch, "no-stitch", false, "keep strips separate")
	fl.BoolVarP(&f.DryRun, "dry-run", "n", false, "cast on a copy and write nothing back")
}

func newOptimizeCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize [input-dir]",
		Short: "Clean, merge duplicates and optimize geometry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				root.cfg.InputDir = args[0]
			}
			root.cfg.Spells = []string{"optimize"}
			return run(cmd, root)
		},
	}
	addRunFlags(cmd, root)
	return cmd
}

func newCastCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cast <spell>...",
		Short: "Cast the named spells, one after another",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root.cfg.Spells = args
			return run(cmd, root)
		},
	}
	addRunFlags(cmd, root)
	return cmd
}

func settings(cfg config.Config) (spells.Settings, error) {
	s := spells.DefaultSettings()
	s.Geometry = optimize.Options{
		StripLengthCutoff: *cfg.StripLengthCutoff,
		Stitch:            *cfg.Stitch,
		Precision:         cfg.Precision,
	}
	if cfg.MergeControlledProperties {
		s.Merge.Skip = nil
	}
	if cfg.MergeVeto != nil {
		veto, err := kinds("merge_veto", cfg.MergeVeto)
		if err != nil {
			return s, err
		}
		s.Merge.Veto = veto
	}
	return s, nil
}

func excludes(names []string) ([]nif.Kind, error) {
	return kinds("--exclude", names)
}

// kinds parses block type names, rejecting unknown ones.
func kinds(what string, names []string) ([]nif.Kind, error) {
	out := make([]nif.Kind, 0, len(names))
	for _, n := range names {
		k := nif.Kind(strings.TrimSpace(n))
		if !nif.Known(k) {
			return nil, errors.Wrapf(nif.ErrUnknownKind, "%s %q", what, n)
		}
		out = append(out, k)
	}
	return out, nil
}

func run(cmd *cobra.Command, root *rootFlags) error {
	if cmd.Flags().Changed("strip-cutoff") {
		root.cfg.StripLengthCutoff = &root.cutoff
	}
	cfg, err := root.load()
	if err != nil {
		return err
	}
	if cfg.InputDir == "" {
		return errors.New("no input directory: pass --input or set input_dir")
	}
	excluded, err := excludes(cfg.Exclude)
	if err != nil {
		return err
	}
	s, err := settings(cfg)
	if err != nil {
		return err
	}
	unit, err := spells.LookupAll(cfg.Spells, s)
	if err != nil {
		return err
	}

	files, err := batch.Discover(cfg.InputDir)
	if err != nil {
		return err
	}
	log := logrus.WithField("spell", unit.Name())
	if len(files) == 0 {
		log.Warn("no scene files found")
		return nil
	}

	var tex texture.Resolver
	if cfg.PreviewDir != "" {
		idx := texture.BuildIndex(cfg.TextureDir)
		log.WithField("textures", idx.Len()).Info("texture index built")
		tex = texture.NewCache(idx, func(path string, err error) {
			logrus.WithField("texture", path).WithError(err).Warn("texture not loaded")
		})
	}
	render := raster.DefaultOptions()
	render.Size = cfg.PreviewSize
	render.Supersample = cfg.Supersample

	rec := metrics.New()
	manifest := batch.NewManifest(unit.Name(), cfg.DryRun)
	log.WithFields(logrus.Fields{
		"run":     manifest.RunID,
		"files":   len(files),
		"workers": cfg.Workers,
		"dry_run": cfg.DryRun,
	}).Info("starting")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	results, runErr := batch.Run(ctx, batch.Config{
		InputDir:    cfg.InputDir,
		OutputDir:   cfg.OutputDir,
		PreviewDir:  cfg.PreviewDir,
		Unit:        unit,
		Options:     spell.Options{Exclude: excluded},
		DryRun:      cfg.DryRun,
		Workers:     cfg.Workers,
		TexResolver: tex,
		Render:      render,
		Log:         log,
		Metrics:     rec,
		Progress:    batch.NewProgress(os.Stdout, len(files), log),
	}, files)

	manifest.Finish(results)
	manifestDir := cfg.OutputDir
	if manifestDir == "" {
		manifestDir = cfg.InputDir
	}
	if !cfg.DryRun {
		if err := batch.WriteManifest(filepath.Join(manifestDir, "manifest.json"), manifest); err != nil {
			log.WithError(err).Warn("manifest not written")
		}
	}
	if cfg.MetricsTextfile != "" {
		if err := rec.WriteTextfile(cfg.MetricsTextfile); err != nil {
			log.WithError(err).Warn("metrics not written")
		}
	}

	printSummary(os.Stdout, manifest)
	log.WithFields(logrus.Fields{
		"ok":       len(results) - manifest.Failed,
		"failed":   manifest.Failed,
		"duration": manifest.Duration.Round(time.Millisecond),
	}).Info("done")
	return runErr
}
