package importer

import "errors"

var (
	// ErrUnsupportedFile is returned when the file extension is not in the
	// accepted set.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrFileTooLarge is returned when a file exceeds the configured size.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUploadInProgress is returned when an upload is requested while
	// another one from the same orchestrator is still running.
	ErrUploadInProgress = errors.New("upload already in progress")

	// ErrNotUploadable is returned when upload is requested from a state that
	// does not allow it (no file, or validation errors present).
	ErrNotUploadable = errors.New("nothing to upload: select a valid file first")

	// ErrNoUploader is returned when the orchestrator has no upload callback.
	ErrNoUploader = errors.New("no upload handler configured")

	// ErrUploadAborted marks a send failure that ends the whole upload
	// instead of failing a single row. Senders wrap the cause with it.
	ErrUploadAborted = errors.New("upload aborted")
)
