// Package logger configures the process-wide logrus logger.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

type Options struct {
	// Verbose switches to debug level.
	Verbose bool
	// Quiet only lets warnings and errors through.
	Quiet bool
	// DisableColor turns off level colours. Colours are also off when the
	// output is not a terminal.
	DisableColor bool
	// JSON selects the logrus JSON formatter, for log collectors.
	JSON bool
	// LogDir, when set, also writes a daily rotated niftoaster.log there.
	LogDir string
	// Output defaults to stderr.
	Output io.Writer
}

func Init(options Options) error {
	return Configure(logrus.StandardLogger(), options)
}

// Configure applies options to l.
func Configure(l *logrus.Logger, options Options) error {
	switch {
	case options.Verbose:
		l.SetLevel(logrus.DebugLevel)
	case options.Quiet:
		l.SetLevel(logrus.WarnLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}

	out := options.Output
	if out == nil {
		out = os.Stderr
	}
	l.SetOutput(out)

	if options.JSON {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		l.SetFormatter(&Formatter{DisableColor: options.DisableColor || !terminal(out)})
	}

	if options.LogDir != "" {
		fh, err := NewFileHook(options.LogDir)
		if err != nil {
			return errors.Wrap(err, "failed to init log file hook")
		}
		l.AddHook(fh)
	}
	return nil
}

// NewFileHook writes every entry to a daily rotated file under dir.
func NewFileHook(dir string) (logrus.Hook, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "mkdir %s", dir)
	}
	path := filepath.Join(dir, "niftoaster.log")
	writer, err := rotatelogs.New(
		path+".%Y%m%d",
		rotatelogs.WithLinkName(path),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	return lfshook.NewHook(lfshook.WriterMap{
		logrus.InfoLevel:  writer,
		logrus.DebugLevel: writer,
		logrus.WarnLevel:  writer,
		logrus.ErrorLevel: writer,
		logrus.FatalLevel: writer,
		logrus.PanicLevel: writer,
	}, &Formatter{DisableColor: true}), nil
}

func terminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
