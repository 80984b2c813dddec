package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// State is the orchestrator's position in the import flow.
type State string

const (
	StateIdle          State = "idle"
	StateFileSelected  State = "file_selected"
	StateParsedValid   State = "parsed_valid"
	StateParsedInvalid State = "parsed_invalid"
	StateUploading     State = "uploading"
	StateSuccess       State = "success"
	StateError         State = "error"
)

// DefaultAutoCloseDelay is how long a successful session stays visible.
const DefaultAutoCloseDelay = 2 * time.Second

// maxPreviewRows caps the rows returned by Snapshot.
const maxPreviewRows = 10

// UploadOutcome is what an upload callback reports back.
type UploadOutcome struct {
	Success  bool              `json:"success"`
	Uploaded int               `json:"uploaded"`
	Errors   []ValidationError `json:"errors,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// UploadFunc persists parsed rows. The orchestrator does not care how.
type UploadFunc func(ctx context.Context, rows []Row) (UploadOutcome, error)

// Options configures an Orchestrator.
type Options struct {
	// AcceptedExtensions lists allowed file extensions, e.g. ".csv".
	// Matching is case-insensitive; the leading dot is optional.
	AcceptedExtensions []string

	// MaxSizeMB is the file size ceiling in megabytes (MB×1024×1024 bytes).
	// Zero disables the check.
	MaxSizeMB int64

	Mapping        FieldMapping
	RequiredFields []string
	Checks         []RowCheck

	Upload UploadFunc

	// AutoCloseDelay defaults to DefaultAutoCloseDelay.
	AutoCloseDelay time.Duration

	// OnClose runs after the session returns to Idle by Close or auto-close.
	OnClose func()

	Logger *slog.Logger
}

// Preview is a read-only snapshot of an import session.
type Preview struct {
	State     State             `json:"state"`
	FileName  string            `json:"fileName,omitempty"`
	Headers   []string          `json:"headers,omitempty"`
	TotalRows int               `json:"totalRows"`
	Rows      []Row             `json:"rows,omitempty"`
	Errors    []ValidationError `json:"errors,omitempty"`
	Message   string            `json:"message,omitempty"`
	CanUpload bool              `json:"canUpload"`
	Outcome   *UploadOutcome    `json:"outcome,omitempty"`
}

// Orchestrator runs one import session at a time: accept a file, parse and
// validate it, then upload the rows through the injected callback.
type Orchestrator struct {
	opts     Options
	exts     []string
	maxBytes int64
	logger   *slog.Logger
	inflight *UploadLimiter

	mu       sync.Mutex
	state    State
	fileName string
	headers  []string
	rows     []Row
	errs     []ValidationError
	message  string
	outcome  *UploadOutcome
	timer    *time.Timer
	gen      uint64 // bumped whenever the session is replaced; stale results are dropped
}

// NewOrchestrator creates an idle orchestrator.
func NewOrchestrator(opts Options) *Orchestrator {
	if opts.AutoCloseDelay <= 0 {
		opts.AutoCloseDelay = DefaultAutoCloseDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	exts := make([]string, 0, len(opts.AcceptedExtensions))
	for _, e := range opts.AcceptedExtensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}

	return &Orchestrator{
		opts:     opts,
		exts:     exts,
		maxBytes: opts.MaxSizeMB * 1024 * 1024,
		logger:   logger,
		inflight: NewUploadLimiter(1, time.Second),
		state:    StateIdle,
	}
}

// MaxBytes returns the size ceiling in bytes, or 0 if unlimited.
func (o *Orchestrator) MaxBytes() int64 {
	return o.maxBytes
}

// SelectFile runs the acceptance gate and, on success, parses and validates
// the file. A rejected file leaves the session Idle with a message set.
// Selecting a new file replaces whatever the session held before, except
// while an upload is running.
func (o *Orchestrator) SelectFile(ctx context.Context, name string, size int64, r io.Reader) error {
	o.mu.Lock()
	if o.state == StateUploading {
		o.mu.Unlock()
		return ErrUploadInProgress
	}
	o.clearLocked()

	ext := strings.ToLower(filepath.Ext(name))
	if len(o.exts) > 0 && !slices.Contains(o.exts, ext) {
		o.message = fmt.Sprintf("Unsupported file type %q. Accepted: %s", ext, strings.Join(o.exts, ", "))
		o.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}
	if o.maxBytes > 0 && size > o.maxBytes {
		o.message = fmt.Sprintf("File is larger than %d MB", o.opts.MaxSizeMB)
		o.mu.Unlock()
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, size)
	}

	o.state = StateFileSelected
	o.fileName = name
	gen := o.gen
	o.mu.Unlock()

	text, err := ReadText(r, o.maxBytes)

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen {
		// Replaced or reset while reading.
		return nil
	}
	if err != nil {
		o.clearLocked()
		o.message = "Could not read file: " + err.Error()
		return err
	}

	headers, rows := ParseTable(text, o.opts.Mapping)
	o.headers = headers
	o.rows = rows

	if len(rows) == 0 {
		o.state = StateParsedInvalid
		o.message = "File contains no data rows"
		o.logger.InfoContext(ctx, "import file has no data rows", "file", name)
		return nil
	}

	o.errs = ValidateWith(rows, o.opts.RequiredFields, o.opts.Checks...)
	if len(o.errs) > 0 {
		o.state = StateParsedInvalid
		o.message = fmt.Sprintf("%d validation error(s); fix the file and select it again", len(o.errs))
	} else {
		o.state = StateParsedValid
		o.message = fmt.Sprintf("%d row(s) ready to upload", len(rows))
	}

	o.logger.InfoContext(ctx, "import file parsed",
		"file", name,
		"rows", len(rows),
		"errors", len(o.errs),
		"state", o.state,
	)
	return nil
}

// Upload submits the parsed rows. It is allowed from ParsedValid, and from
// Error when the failure carried no validation errors (manual retry).
// On success the session closes itself after the auto-close delay; on
// failure it stays in Error.
func (o *Orchestrator) Upload(ctx context.Context) (UploadOutcome, error) {
	o.mu.Lock()
	if o.state == StateUploading {
		o.mu.Unlock()
		return UploadOutcome{}, ErrUploadInProgress
	}
	if !o.canUploadLocked() {
		o.mu.Unlock()
		return UploadOutcome{}, ErrNotUploadable
	}
	if o.opts.Upload == nil {
		o.mu.Unlock()
		return UploadOutcome{}, ErrNoUploader
	}
	if !o.inflight.TryAcquire() {
		// A reset session can still have its previous upload running.
		o.mu.Unlock()
		return UploadOutcome{}, ErrUploadInProgress
	}

	o.state = StateUploading
	o.outcome = nil
	o.message = "Uploading..."
	rows := slices.Clone(o.rows)
	gen := o.gen
	name := o.fileName
	o.mu.Unlock()

	start := time.Now()
	outcome, err := o.upload(ctx, rows)
	o.inflight.Release()

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen {
		return outcome, err
	}

	switch {
	case err != nil:
		o.state = StateError
		o.message = "Upload failed: " + err.Error()
		o.logger.ErrorContext(ctx, "import upload failed", "file", name, "error", err)
	case !outcome.Success:
		o.state = StateError
		if len(outcome.Errors) > 0 {
			o.errs = outcome.Errors
		}
		o.message = outcome.Message
		if o.message == "" {
			o.message = "Upload failed"
		}
		o.outcome = &outcome
		o.logger.WarnContext(ctx, "import upload rejected",
			"file", name,
			"errors", len(outcome.Errors),
			"uploaded", outcome.Uploaded,
		)
	default:
		o.state = StateSuccess
		o.message = outcome.Message
		if o.message == "" {
			o.message = fmt.Sprintf("Uploaded %d row(s)", len(rows))
		}
		o.outcome = &outcome
		o.timer = time.AfterFunc(o.opts.AutoCloseDelay, func() { o.autoClose(gen) })
		o.logger.InfoContext(ctx, "import upload completed",
			"file", name,
			"rows", len(rows),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return outcome, err
}

// upload calls the callback, turning a panic into an error so the slot is
// always released.
func (o *Orchestrator) upload(ctx context.Context, rows []Row) (outcome UploadOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("upload handler panic: %v", r)
		}
	}()
	return o.opts.Upload(ctx, rows)
}

func (o *Orchestrator) autoClose(gen uint64) {
	o.mu.Lock()
	if gen != o.gen || o.state != StateSuccess {
		o.mu.Unlock()
		return
	}
	o.clearLocked()
	o.mu.Unlock()

	if o.opts.OnClose != nil {
		o.opts.OnClose()
	}
}

// Reset returns the session to Idle, discarding the file, errors and any
// pending auto-close.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.clearLocked()
	o.mu.Unlock()
}

// Close is Reset followed by the OnClose hook.
func (o *Orchestrator) Close() {
	o.Reset()
	if o.opts.OnClose != nil {
		o.opts.OnClose()
	}
}

func (o *Orchestrator) clearLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.gen++
	o.state = StateIdle
	o.fileName = ""
	o.headers = nil
	o.rows = nil
	o.errs = nil
	o.message = ""
	o.outcome = nil
}

func (o *Orchestrator) canUploadLocked() bool {
	switch o.state {
	case StateParsedValid:
		return true
	case StateError:
		return len(o.errs) == 0 && len(o.rows) > 0
	default:
		return false
	}
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// CanUpload reports whether Upload would be accepted now.
func (o *Orchestrator) CanUpload() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.canUploadLocked() && o.opts.Upload != nil
}

// Errors returns a copy of the current validation errors.
func (o *Orchestrator) Errors() []ValidationError {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.errs)
}

// Rows returns a copy of the parsed rows.
func (o *Orchestrator) Rows() []Row {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.rows)
}

// Snapshot returns the session as the preview UI shows it.
func (o *Orchestrator) Snapshot() Preview {
	o.mu.Lock()
	defer o.mu.Unlock()

	p := Preview{
		State:     o.state,
		FileName:  o.fileName,
		Headers:   slices.Clone(o.headers),
		TotalRows: len(o.rows),
		Errors:    slices.Clone(o.errs),
		Message:   o.message,
		CanUpload: o.canUploadLocked() && o.opts.Upload != nil,
	}
	n := min(len(o.rows), maxPreviewRows)
	p.Rows = slices.Clone(o.rows[:n])
	if o.outcome != nil {
		out := *o.outcome
		p.Outcome = &out
	}
	return p
}
