package output

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/cheggaaa/pb/v3"

	"github.com/sdejongh/dircmp/pkg/models"
)

const progressTemplate = `{{string . "phase"}} {{counters . }} {{bar . "[" "=" ">" "." "]"}} {{percent . }} {{etime . }}`

// getUpdateInterval returns the progress update interval based on OS
// Windows terminals have higher latency with ANSI sequences, so we use a longer interval
func getUpdateInterval() time.Duration {
	if runtime.GOOS == "windows" {
		return 300 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// ProgressBar renders live compare counters as a terminal progress bar.
// The bar tracks compared files against queued files; both grow while
// collection is still running.
type ProgressBar struct {
	bar      *pb.ProgressBar
	interval time.Duration
}

// NewProgressBar creates a bar writing to w
func NewProgressBar(w io.Writer) *ProgressBar {
	interval := getUpdateInterval()
	bar := pb.New64(0)
	bar.SetTemplateString(progressTemplate)
	bar.SetWriter(w)
	bar.SetWidth(terminalWidth(w, 100))
	bar.SetRefreshRate(interval)
	return &ProgressBar{bar: bar, interval: interval}
}

// Update copies a snapshot into the bar
func (p *ProgressBar) Update(snap models.StatsSnapshot) {
	p.bar.Set("phase", phaseLabel(snap))
	p.bar.SetTotal(snap.Queued)
	p.bar.SetCurrent(snap.Compared)
}

// Watch refreshes the bar from snapshot until done is closed
func (p *ProgressBar) Watch(done <-chan struct{}, snapshot func() models.StatsSnapshot) {
	p.Update(snapshot())
	p.bar.Start()
	Poll(done, p.interval, snapshot, p.Update)
	p.bar.Finish()
}

// Poll calls fn with a fresh snapshot every interval and once more after
// done is closed
func Poll(done <-chan struct{}, interval time.Duration, snapshot func() models.StatsSnapshot, fn func(models.StatsSnapshot)) {
	if interval <= 0 {
		interval = getUpdateInterval()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			fn(snapshot())
			return
		case <-ticker.C:
			fn(snapshot())
		}
	}
}

func phaseLabel(snap models.StatsSnapshot) string {
	switch snap.Phase {
	case models.PhaseCollecting:
		return fmt.Sprintf("Collecting (%d items)", snap.Collected)
	case models.PhaseComparing:
		return "Comparing"
	default:
		return "Done"
	}
}
