package importer

import (
	"context"
	"errors"
	"fmt"
)

// RowSender submits a single row.
type RowSender func(ctx context.Context, row Row) error

// BatchSender submits all rows in one request.
type BatchSender func(ctx context.Context, rows []Row) (UploadOutcome, error)

// ErrorMapper turns a failure for the row at index (0-based) into
// validation errors. An index of -1 means the failure is not tied to a row.
type ErrorMapper func(index int, err error) []ValidationError

// DefaultErrorMapper reports the error text against the row's line number.
func DefaultErrorMapper(index int, err error) []ValidationError {
	row := 0
	if index >= 0 {
		row = LineNumber(index)
	}
	return []ValidationError{{Row: row, Message: err.Error()}}
}

// PerRow returns an UploadFunc that sends rows one at a time, in file order,
// and keeps going after failures. The outcome is a success only if every row
// was accepted. A cancelled context or an ErrUploadAborted failure stops the
// loop and is returned as the error.
func PerRow(send RowSender, mapErr ErrorMapper) UploadFunc {
	if mapErr == nil {
		mapErr = DefaultErrorMapper
	}
	return func(ctx context.Context, rows []Row) (UploadOutcome, error) {
		var out UploadOutcome
		for i, row := range rows {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			if err := send(ctx, row); err != nil {
				if isFatal(err) {
					return out, err
				}
				out.Errors = append(out.Errors, mapErr(i, err)...)
				continue
			}
			out.Uploaded++
		}

		out.Success = len(out.Errors) == 0
		if out.Success {
			out.Message = fmt.Sprintf("Uploaded %d row(s)", out.Uploaded)
		} else {
			out.Message = fmt.Sprintf("Uploaded %d of %d row(s); %d failed", out.Uploaded, len(rows), len(rows)-out.Uploaded)
		}
		return out, nil
	}
}

// Batch returns an UploadFunc that sends all rows in one call. A returned
// error is passed through mapErr (with index -1) into a failed outcome,
// unless it is a context error or ErrUploadAborted.
func Batch(send BatchSender, mapErr ErrorMapper) UploadFunc {
	return func(ctx context.Context, rows []Row) (UploadOutcome, error) {
		out, err := send(ctx, rows)
		if err == nil {
			if out.Success && out.Uploaded == 0 {
				out.Uploaded = len(rows)
			}
			return out, nil
		}
		if mapErr == nil || isFatal(err) {
			return out, err
		}
		return UploadOutcome{
			Errors:  mapErr(-1, err),
			Message: "Upload rejected: " + err.Error(),
		}, nil
	}
}

func isFatal(err error) bool {
	return errors.Is(err, ErrUploadAborted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
