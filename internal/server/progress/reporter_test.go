package progress

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/premrelay/internal/common"
	"github.com/dmitrijs2005/premrelay/internal/logging"
)

func discardLogger(t *testing.T) logging.Logger {
	t.Helper()
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func collectingEdit(texts *[]string) EditFunc {
	return func(ctx context.Context, text string) error {
		*texts = append(*texts, text)
		return nil
	}
}

func TestReporter_ThrottlesToFivePointSteps(t *testing.T) {
	var texts []string
	r := NewReporter(collectingEdit(&texts), discardLogger(t))
	ctx := context.Background()

	// One report per percent point.
	const total = 100
	for downloaded := int64(1); downloaded <= total; downloaded++ {
		r.Report(ctx, downloaded, total)
	}

	require.NotEmpty(t, texts)
	assert.Equal(t, "Download complete", texts[len(texts)-1])

	// Non-terminal updates advance by at least 5 points and never regress.
	prev := -1
	for _, text := range texts[:len(texts)-1] {
		require.True(t, strings.HasPrefix(text, "Downloading: "), "unexpected text %q", text)
		p, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(text, "Downloading: "), "%"))
		require.NoError(t, err)
		assert.Less(t, p, 100)
		if prev >= 0 {
			assert.GreaterOrEqual(t, p, prev+5)
		}
		prev = p
	}
}

func TestReporter_SingleTerminalUpdate(t *testing.T) {
	var texts []string
	r := NewReporter(collectingEdit(&texts), discardLogger(t))
	ctx := context.Background()

	r.Report(ctx, 100, 100)
	r.Report(ctx, 100, 100)
	r.Finish(ctx)

	assert.Equal(t, []string{"Download complete"}, texts)
}

func TestReporter_NeverExceedsHundred(t *testing.T) {
	var texts []string
	r := NewReporter(collectingEdit(&texts), discardLogger(t))
	ctx := context.Background()

	// More bytes than announced.
	r.Report(ctx, 150, 100)

	assert.Equal(t, []string{"Download complete"}, texts)
}

func TestReporter_UnknownTotal(t *testing.T) {
	var texts []string
	r := NewReporter(collectingEdit(&texts), discardLogger(t))
	ctx := context.Background()

	r.Report(ctx, 4096, 0)
	r.Report(ctx, 8192, 0)
	assert.Empty(t, texts, "no percentage is known, nothing to report")

	r.Finish(ctx)
	assert.Equal(t, []string{"Download complete"}, texts)
}

func TestReporter_SwallowsNotModified(t *testing.T) {
	calls := 0
	edit := func(ctx context.Context, text string) error {
		calls++
		return common.ErrMessageNotModified
	}
	r := NewReporter(edit, discardLogger(t))
	ctx := context.Background()

	r.Report(ctx, 10, 100)
	r.Report(ctx, 50, 100)
	r.Finish(ctx)

	assert.Equal(t, 3, calls, "edits keep flowing despite not-modified rejections")
}

func TestReporter_LogsButContinuesOnEditFailure(t *testing.T) {
	edit := func(ctx context.Context, text string) error {
		return errors.New("message to edit not found")
	}
	r := NewReporter(edit, discardLogger(t))
	ctx := context.Background()

	// Must not panic or abort; subsequent reports still run.
	r.Report(ctx, 10, 100)
	r.Report(ctx, 90, 100)
	r.Finish(ctx)
}
