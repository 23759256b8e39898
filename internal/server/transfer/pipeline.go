// Package transfer implements the download-and-deliver pipeline: it
// validates an incoming link, resolves it through the broker, streams the
// file into content-addressed storage while reporting progress, records the
// transfer, and delivers the result inline or as a hosted link. Video files
// additionally get a contact-sheet thumbnail generated off the delivery
// path.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/premrelay/internal/common"
	"github.com/dmitrijs2005/premrelay/internal/logging"
	"github.com/dmitrijs2005/premrelay/internal/server/broker"
	"github.com/dmitrijs2005/premrelay/internal/server/config"
	"github.com/dmitrijs2005/premrelay/internal/server/files"
	"github.com/dmitrijs2005/premrelay/internal/server/progress"
	"github.com/dmitrijs2005/premrelay/internal/server/storage"
	"github.com/dmitrijs2005/premrelay/internal/server/thumbnail"
	"github.com/dmitrijs2005/premrelay/internal/server/users"
)

// supportedLink matches links of the one file host the broker is used for.
var supportedLink = regexp.MustCompile(`^https?://(www\.)?rapidgator\.net`)

// Request describes one incoming link to process.
type Request struct {
	Link        string
	RequesterID int64
	ChatID      int64
}

// Result is the successful outcome of a transfer. FileURL carries the
// user-facing location of the delivered file: the hosted download link, or
// the messaging platform's file URL after an inline send (empty if that
// lookup failed).
type Result struct {
	Hash     string
	Path     string
	Filename string
	Size     int64
	FileURL  string
}

// Fetcher resolves a file-host link into a broker outcome.
type Fetcher interface {
	Fetch(ctx context.Context, link string) broker.Outcome
}

// Messenger is the messaging-transport contract the pipeline needs. Edit
// failures are classified: common.ErrMessageNotModified for identical text,
// common.ErrMessageNotEditable for a deleted or aged-out target. SendFile
// reports common.ErrDeliveryTimeout when the transmission timed out.
type Messenger interface {
	SendStatusText(ctx context.Context, chatID int64, text string) (messageID int, err error)
	EditStatusText(ctx context.Context, chatID int64, messageID int, text string) error
	SendFile(ctx context.Context, chatID int64, path, caption, filename string) (fileID string, err error)
	FileLocation(ctx context.Context, fileID string) (string, error)
	SendPhoto(ctx context.Context, chatID int64, path, caption string) error
}

// Pipeline coordinates one transfer per incoming link. A single instance
// serves all transfers; each Handle call owns its request exclusively.
type Pipeline struct {
	logger      logging.Logger
	fetcher     Fetcher
	messenger   Messenger
	store       *storage.Store
	files       files.Repository
	users       *users.Service
	generator   *thumbnail.Generator
	pool        *thumbnail.Pool
	inlineLimit int64
	baseURL     string
	sendTimeout time.Duration
}

func NewPipeline(cfg *config.Config, logger logging.Logger, fetcher Fetcher, messenger Messenger,
	store *storage.Store, fileRepo files.Repository, userService *users.Service,
	generator *thumbnail.Generator, pool *thumbnail.Pool) *Pipeline {
	return &Pipeline{
		logger:      logger.With("module", "transfer"),
		fetcher:     fetcher,
		messenger:   messenger,
		store:       store,
		files:       fileRepo,
		users:       userService,
		generator:   generator,
		pool:        pool,
		inlineLimit: cfg.InlineSizeLimit,
		baseURL:     strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		sendTimeout: cfg.SendTimeout,
	}
}

// Handle runs the full pipeline for one link. Every failure is terminal for
// the transfer and has already been reported to the requester in plain terms
// when Handle returns; the error identifies the failure class for the
// caller's bookkeeping.
func (p *Pipeline) Handle(ctx context.Context, req Request) (*Result, error) {
	if !supportedLink.MatchString(req.Link) {
		p.reply(ctx, req.ChatID, "Please send a valid Rapidgator URL.")
		return nil, common.ErrUnsupportedLink
	}

	statusID, err := p.messenger.SendStatusText(ctx, req.ChatID, "Processing your Rapidgator link...")
	if err != nil {
		return nil, fmt.Errorf("sending status message: %w", err)
	}

	edit := func(ctx context.Context, text string) error {
		return p.messenger.EditStatusText(ctx, req.ChatID, statusID, text)
	}

	outcome := p.fetcher.Fetch(ctx, req.Link)

	var stream broker.Stream
	switch o := outcome.(type) {
	case broker.Stream:
		stream = o
	case broker.Redirected:
		p.edit(ctx, edit, fmt.Sprintf("Download redirected to: %s", o.Location))
		return nil, fmt.Errorf("%w: %s", common.ErrBrokerRedirect, o.Location)
	case broker.APIError:
		p.edit(ctx, edit, fmt.Sprintf("Error: %s", o.Message))
		return nil, fmt.Errorf("%w: %s", common.ErrBrokerAPI, o.Message)
	case broker.TransportFailure:
		p.edit(ctx, edit, "Error contacting the download service. Please try again.")
		return nil, fmt.Errorf("%w: %v", common.ErrBrokerTransport, o.Cause)
	default:
		p.edit(ctx, edit, "Error contacting the download service. Please try again.")
		return nil, fmt.Errorf("%w: unexpected outcome %T", common.ErrBrokerTransport, outcome)
	}
	defer stream.Body.Close()

	result, err := p.download(ctx, req, stream, edit)
	if err != nil {
		return nil, err
	}

	if err := p.deliver(ctx, req, result, edit); err != nil {
		return nil, err
	}

	p.scheduleThumbnail(ctx, req, result)

	return result, nil
}

// download streams the broker's body to a requester-scoped temporary file,
// hashing while writing and driving throttled progress edits, then finalizes
// the file under its content hash and records the transfer.
func (p *Pipeline) download(ctx context.Context, req Request, stream broker.Stream, edit progress.EditFunc) (*Result, error) {
	tmpPath, err := p.store.TempPath(req.RequesterID)
	if err != nil {
		p.edit(ctx, edit, "Failed to store the file. Please try again later.")
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	reporter := progress.NewReporter(edit, p.logger)

	total := stream.ContentLength
	hash, size, err := storage.WriteStream(tmpPath, stream.Body, func(written int64) {
		reporter.Report(ctx, written, total)
	})
	if err != nil {
		if cleanupErr := p.store.Discard(tmpPath); cleanupErr != nil {
			p.logger.Warn(ctx, "failed to remove partial download", "path", tmpPath, "error", cleanupErr.Error())
		}
		p.edit(ctx, edit, "Download failed. Please try again later.")
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	reporter.Finish(ctx)

	finalPath, err := p.store.Finalize(req.RequesterID, tmpPath, hash)
	if err != nil {
		if cleanupErr := p.store.Discard(tmpPath); cleanupErr != nil {
			p.logger.Warn(ctx, "failed to remove partial download", "path", tmpPath, "error", cleanupErr.Error())
		}
		p.edit(ctx, edit, "Failed to store the file. Please try again later.")
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	record := &files.StoredFile{
		Hash:             hash,
		Path:             finalPath,
		OriginalFilename: stream.Filename,
	}
	if err := p.files.Upsert(ctx, record); err != nil {
		p.edit(ctx, edit, "Failed to store the file. Please try again later.")
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	// The StoredFile record is the durable outcome; a lost history entry
	// only hides the file from /premium listings.
	if err := p.users.RecordDownload(ctx, req.RequesterID, hash); err != nil {
		p.logger.Error(ctx, "failed to record download history",
			"requester", req.RequesterID, "hash", hash, "error", err.Error())
	}

	p.logger.Info(ctx, "download finalized",
		"requester", req.RequesterID, "hash", hash, "size", size, "filename", stream.Filename)

	return &Result{
		Hash:     hash,
		Path:     finalPath,
		Filename: stream.Filename,
		Size:     size,
	}, nil
}

// deliver picks the delivery mode by size: small files are sent inline
// through the messaging transport, large ones become hosted links. An inline
// send that times out fails the transfer outright; there is no fallback to
// link mode.
func (p *Pipeline) deliver(ctx context.Context, req Request, result *Result, edit progress.EditFunc) error {
	if result.Size < p.inlineLimit {
		return p.deliverInline(ctx, req, result, edit)
	}
	return p.deliverHosted(ctx, result, edit)
}

func (p *Pipeline) deliverInline(ctx context.Context, req Request, result *Result, edit progress.EditFunc) error {
	sendCtx, cancel := context.WithTimeout(ctx, p.sendTimeout)
	defer cancel()

	fileID, err := p.messenger.SendFile(sendCtx, req.ChatID, result.Path, "Here is your file!", result.Filename)
	if err != nil {
		if errors.Is(err, common.ErrDeliveryTimeout) {
			p.edit(ctx, edit, "Sending the file timed out. Please try again later.")
			return fmt.Errorf("%w: %v", common.ErrDeliveryTimeout, err)
		}
		p.edit(ctx, edit, "Failed to send the file. Please try again later.")
		return fmt.Errorf("sending file: %w", err)
	}

	// Best-effort: the file is already delivered, a failed URL lookup only
	// downgrades the completion message.
	fileURL, err := p.messenger.FileLocation(ctx, fileID)
	if err != nil {
		p.logger.Warn(ctx, "failed to resolve file location", "file_id", fileID, "error", err.Error())
		p.edit(ctx, edit, "Your file has been downloaded and sent to you.")
		return nil
	}

	result.FileURL = fileURL
	p.edit(ctx, edit, fmt.Sprintf("Your file has been downloaded and is available here: %s", fileURL))
	return nil
}

func (p *Pipeline) deliverHosted(ctx context.Context, result *Result, edit progress.EditFunc) error {
	if p.baseURL == "" {
		p.edit(ctx, edit, "The file is too large to send directly and hosted downloads are not configured.")
		return common.ErrHostingNotConfigured
	}

	result.FileURL = fmt.Sprintf("%s/download/%s", p.baseURL, result.Hash)
	p.edit(ctx, edit, fmt.Sprintf("Your file has been downloaded: %s", result.FileURL))
	return nil
}

// scheduleThumbnail launches contact-sheet generation for video files on the
// bounded background pool. The task has its own error boundary: nothing it
// does can alter the already-delivered transfer outcome.
func (p *Pipeline) scheduleThumbnail(ctx context.Context, req Request, result *Result) {
	if !isVideo(result.Filename, result.Path) {
		return
	}

	// Detached from the request's cancellation: generation outlives the
	// update handler, bounded only by process shutdown draining the pool.
	taskCtx := context.WithoutCancel(ctx)

	p.pool.Submit(taskCtx, func(ctx context.Context) {
		thumbPath, err := p.generator.Generate(ctx, result.Path, req.RequesterID, result.Hash)
		if err != nil {
			p.logger.Error(ctx, "thumbnail generation failed", "hash", result.Hash, "error", err.Error())
			return
		}

		if err := p.files.SetThumbnail(ctx, result.Hash, thumbPath); err != nil {
			p.logger.Error(ctx, "failed to record thumbnail", "hash", result.Hash, "error", err.Error())
			return
		}

		caption := fmt.Sprintf("Thumbnail for: %s", result.Filename)
		if err := p.messenger.SendPhoto(ctx, req.ChatID, thumbPath, caption); err != nil {
			p.logger.Warn(ctx, "failed to send thumbnail", "hash", result.Hash, "error", err.Error())
		}
	})
}

// reply sends a standalone message, logging a failure instead of returning
// it: there is nothing more to do for the transfer at that point.
func (p *Pipeline) reply(ctx context.Context, chatID int64, text string) {
	if _, err := p.messenger.SendStatusText(ctx, chatID, text); err != nil {
		p.logger.Warn(ctx, "failed to send reply", "error", err.Error())
	}
}

// edit applies a status edit, tolerating classification sentinels the same
// way the progress reporter does.
func (p *Pipeline) edit(ctx context.Context, edit progress.EditFunc, text string) {
	err := edit(ctx, text)
	if err == nil || errors.Is(err, common.ErrMessageNotModified) {
		return
	}
	p.logger.Warn(ctx, "failed to edit status message", "error", err.Error())
}

// videoExtensions lists the container formats that get a contact sheet.
// Kept explicit: mime.TypeByExtension depends on host mime tables and knows
// none of these in a minimal container.
var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mkv": {}, ".avi": {}, ".mov": {}, ".webm": {},
	".wmv": {}, ".flv": {}, ".m4v": {}, ".mpg": {}, ".mpeg": {}, ".ts": {},
}

// isVideo reports whether the file's name (or, failing that, its stored
// path) carries a video extension.
func isVideo(filename, path string) bool {
	name := filename
	if name == "" {
		name = path
	}
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}
