// Package progress throttles byte-count download progress into rate-limited
// status-message edits. Unthrottled per-chunk edits would exceed the chat
// platform's edit-rate limits.
package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/premrelay/internal/common"
	"github.com/dmitrijs2005/premrelay/internal/logging"
)

// stepPercent is the minimum advance between two emitted updates.
const stepPercent = 5

// EditFunc edits the transfer's status message. It reports
// common.ErrMessageNotModified when the platform rejected an identical text.
type EditFunc func(ctx context.Context, text string) error

// Reporter tracks one transfer's progress and emits throttled status edits.
// It is driven from the transfer's single sequential chunk loop and is not
// safe for concurrent use.
type Reporter struct {
	edit     EditFunc
	logger   logging.Logger
	last     int
	reported bool
	done     bool
}

func NewReporter(edit EditFunc, logger logging.Logger) *Reporter {
	return &Reporter{edit: edit, logger: logger.With("module", "progress")}
}

// Report records that downloaded of total bytes have arrived. An update is
// emitted only when the integer percentage advanced by at least stepPercent
// since the last one, and the terminal update exactly once at 100%. With an
// unknown total (total <= 0) the percentage stays at 0 until Finish.
func (r *Reporter) Report(ctx context.Context, downloaded, total int64) {
	percent := 0
	if total > 0 {
		percent = int(downloaded * 100 / total)
		if percent > 100 {
			percent = 100
		}
	}

	switch {
	case percent == 100 && !r.done:
		r.done = true
		r.last = 100
		r.emit(ctx, "Download complete")
	case percent < 100 && percent >= r.last+stepPercent:
		r.last = percent
		r.emit(ctx, fmt.Sprintf("Downloading: %d%%", percent))
	}
}

// Finish emits the terminal update for streams whose total size was unknown.
// It is a no-op when the 100% update has already been sent.
func (r *Reporter) Finish(ctx context.Context) {
	if r.done {
		return
	}
	r.done = true
	r.last = 100
	r.emit(ctx, "Download complete")
}

// emit performs one status edit. A not-modified rejection is expected when
// two reports compute the same text and is swallowed; any other edit failure
// (deleted or aged-out message) is logged and never aborts the transfer.
func (r *Reporter) emit(ctx context.Context, text string) {
	err := r.edit(ctx, text)
	if err == nil || errors.Is(err, common.ErrMessageNotModified) {
		return
	}
	r.logger.Warn(ctx, "progress edit failed", "error", err.Error())
}
