package batch

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

// Progress is told about every finished file.
type Progress interface {
	Done(Result)
	Finish()
}

// NopProgress reports nothing.
type NopProgress struct{}

func (NopProgress) Done(Result) {}
func (NopProgress) Finish()     {}

// NewProgress returns a progress bar when out is a terminal and a
// periodic log line otherwise.
func NewProgress(out io.Writer, total int, log *logrus.Entry) Progress {
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return newBar(out, total)
	}
	return newTicker(total, 2*time.Second, log)
}

type bar struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func newBar(out io.Writer, total int) *bar {
	return &bar{bar: progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetDescription("optimizing"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)}
}

func (b *bar) Done(r Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !r.Success {
		b.bar.Describe("failed: " + r.File)
	}
	if err := b.bar.Add(1); err != nil {
		logrus.Errorf("failed to increment progress bar, err: %s", err)
	}
}

func (b *bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.bar.Finish()
}

// ticker logs the processing rate every interval.
type ticker struct {
	total     int
	processed atomic.Int64
	stop      chan struct{}
	once      sync.Once
}

func newTicker(total int, every time.Duration, log *logrus.Entry) *ticker {
	t := &ticker{total: total, stop: make(chan struct{})}
	start := time.Now()
	go func() {
		tick := time.NewTicker(every)
		defer tick.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-tick.C:
				if p := t.processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Infof("[%d/%d] %.1f files/sec", p, total, rate)
				}
			}
		}
	}()
	return t
}

func (t *ticker) Done(Result) { t.processed.Add(1) }

func (t *ticker) Finish() { t.once.Do(func() { close(t.stop) }) }
