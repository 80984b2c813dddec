package core

// upload.go sends validated import rows to the backend and turns backend
// rejections back into row-level validation errors.
//
// Two wire shapes are supported:
//
//   - batch: POST BulkEndpoint with a JSON array of row objects. The
//     response may report per-row failures as
//     {"created": 3, "errors": [{"row": 1, "errors": {"email": ["taken"]}}]}
//     where "row" is the 0-based index into the posted array. A 400 whose
//     body is an array is read as one error object per posted row.
//   - per row: POST Endpoint once per row; a 400 carries that row's field
//     errors.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/JonMunkholm/coverdesk/internal/apiclient"
	"github.com/JonMunkholm/coverdesk/internal/importer"
	"github.com/JonMunkholm/coverdesk/internal/logging"
)

// rowSender builds the upload callback for ent without history or limits.
func rowSender(client *apiclient.Client, ent Entity) importer.UploadFunc {
	spec := ent.Import
	if spec.Batch() {
		return importer.Batch(func(ctx context.Context, rows []importer.Row) (importer.UploadOutcome, error) {
			resp, err := apiclient.Post[json.RawMessage](ctx, client, spec.BulkEndpoint, rows)
			if err != nil {
				return importer.UploadOutcome{}, abortOnAuth(err)
			}
			return batchOutcome(resp.Data, len(rows)), nil
		}, batchErrors)
	}

	return importer.PerRow(func(ctx context.Context, row importer.Row) error {
		_, err := apiclient.Post[json.RawMessage](ctx, client, ent.Endpoint, row)
		return abortOnAuth(err)
	}, rowErrors)
}

// abortOnAuth ends the upload on a 401 or 403. The client has already
// cleared the session, so the remaining rows would fail the same way.
func abortOnAuth(err error) error {
	if apiclient.IsUnauthorized(err) {
		return fmt.Errorf("%w: %w", importer.ErrUploadAborted, err)
	}
	return err
}

// uploadFunc wraps rowSender with the shared upload limiter, the import
// timeout, metrics and history.
func (s *Service) uploadFunc(client *apiclient.Client, ent Entity, fileName func() string) importer.UploadFunc {
	send := rowSender(client, ent)

	return func(ctx context.Context, rows []importer.Row) (importer.UploadOutcome, error) {
		if err := s.limiter.Acquire(ctx); err != nil {
			return importer.UploadOutcome{}, err
		}
		defer s.limiter.Release()

		s.metrics.UploadStarted()
		defer s.metrics.UploadDone()

		uctx, cancel := context.WithTimeout(ctx, s.importTimeout)
		defer cancel()

		start := time.Now()
		out, err := send(uctx, rows)
		s.recordImport(ctx, ent.Key, fileName(), len(rows), out, err, start)
		return out, err
	}
}

func (s *Service) recordImport(ctx context.Context, entity, file string, rows int, out importer.UploadOutcome, err error, start time.Time) {
	rec := ImportRecord{
		Entity:    entity,
		FileName:  file,
		Actor:     ActorFromContext(ctx),
		Rows:      rows,
		Uploaded:  out.Uploaded,
		Failed:    rows - out.Uploaded,
		Message:   out.Message,
		StartedAt: start.UTC(),
		Duration:  time.Since(start),
	}
	switch {
	case err != nil:
		rec.Outcome = OutcomeFailed
		rec.Message = err.Error()
	case out.Success:
		rec.Outcome = OutcomeSuccess
	default:
		rec.Outcome = OutcomeRejected
	}

	s.metrics.ImportFinished(entity, rec.Outcome, rec.Uploaded)

	// The request may already be cancelled; the record should still land.
	if herr := s.history.Record(context.WithoutCancel(ctx), rec); herr != nil {
		logging.FromContext(ctx).Error("failed to record import history",
			"entity", entity,
			"error", herr,
		)
	}
}

// batchOutcome reads a successful bulk response.
func batchOutcome(body []byte, total int) importer.UploadOutcome {
	doc := gjson.ParseBytes(body)

	var out importer.UploadOutcome
	failedRows := make(map[int]bool)
	for _, item := range doc.Get("errors").Array() {
		idx := int(item.Get("row").Int())
		if !item.Get("row").Exists() {
			idx = int(item.Get("index").Int())
		}
		failedRows[idx] = true
		out.Errors = append(out.Errors, itemErrors(item, importer.LineNumber(idx))...)
	}

	out.Uploaded = total - len(failedRows)
	for _, p := range []string{"created", "uploaded", "count"} {
		if v := doc.Get(p); v.Type == gjson.Number {
			out.Uploaded = int(v.Int())
			break
		}
	}

	out.Success = len(failedRows) == 0
	if out.Success {
		out.Message = fmt.Sprintf("Uploaded %d row(s)", out.Uploaded)
	} else {
		out.Message = fmt.Sprintf("Uploaded %d of %d row(s); %d failed", out.Uploaded, total, total-out.Uploaded)
	}
	return out
}

// itemErrors reads one entry of a bulk response's "errors" list. The
// entry's "errors" may be a field object, a list of messages or a single
// message; "message" and "detail" add row-level messages. A rejected row
// always yields at least one error.
func itemErrors(item gjson.Result, line int) []importer.ValidationError {
	var errs []importer.ValidationError
	add := func(msg string) {
		if msg = strings.TrimSpace(msg); msg != "" {
			errs = append(errs, importer.ValidationError{Row: line, Message: msg})
		}
	}

	switch e := item.Get("errors"); {
	case e.IsObject():
		errs = append(errs, objectErrors(e, line)...)
	case e.IsArray():
		for _, m := range e.Array() {
			if m.Type == gjson.String {
				add(m.Str)
			}
		}
	case e.Type == gjson.String:
		add(e.Str)
	}
	for _, key := range []string{"message", "detail"} {
		if m := item.Get(key); m.Type == gjson.String {
			add(m.Str)
		}
	}

	if len(errs) == 0 {
		errs = append(errs, importer.ValidationError{Row: line, Message: "row rejected"})
	}
	return errs
}

// batchErrors maps a rejected bulk request. index is always -1.
func batchErrors(index int, err error) []importer.ValidationError {
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		return importer.DefaultErrorMapper(index, err)
	}

	for _, src := range [][]byte{apiErr.Details, apiErr.Response} {
		doc := gjson.ParseBytes(src)
		if !doc.IsArray() {
			continue
		}
		var errs []importer.ValidationError
		for i, item := range doc.Array() {
			if item.Get("errors").Exists() {
				// {"row": n, "errors": {...}} entries
				row := int(item.Get("row").Int())
				errs = append(errs, objectErrors(item.Get("errors"), importer.LineNumber(row))...)
				continue
			}
			errs = append(errs, objectErrors(item, importer.LineNumber(i))...)
		}
		if len(errs) > 0 {
			return errs
		}
	}

	if errs := fieldErrors(apiErr, 0); len(errs) > 0 {
		return errs
	}
	return importer.DefaultErrorMapper(index, err)
}

// rowErrors maps a rejected single-row request.
func rowErrors(index int, err error) []importer.ValidationError {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		if errs := fieldErrors(apiErr, importer.LineNumber(index)); len(errs) > 0 {
			return errs
		}
	}
	return importer.DefaultErrorMapper(index, err)
}

// fieldErrors turns APIError.FieldErrors into validation errors on line,
// ordered by field name.
func fieldErrors(apiErr *apiclient.APIError, line int) []importer.ValidationError {
	fields := apiErr.FieldErrors()
	var errs []importer.ValidationError
	for _, field := range slices.Sorted(maps.Keys(fields)) {
		for _, msg := range fields[field] {
			errs = append(errs, importer.ValidationError{Row: line, Field: errorField(field), Message: msg})
		}
	}
	return errs
}

// objectErrors reads {"field": ["msg", ...]} or {"field": "msg"} in
// document order.
func objectErrors(obj gjson.Result, line int) []importer.ValidationError {
	if !obj.IsObject() {
		return nil
	}
	var errs []importer.ValidationError
	obj.ForEach(func(key, value gjson.Result) bool {
		field := errorField(key.String())
		if value.IsArray() {
			for _, v := range value.Array() {
				if s := v.String(); s != "" {
					errs = append(errs, importer.ValidationError{Row: line, Field: field, Message: s})
				}
			}
		} else if s := value.String(); s != "" {
			errs = append(errs, importer.ValidationError{Row: line, Field: field, Message: s})
		}
		return true
	})
	return errs
}

func errorField(key string) string {
	switch key {
	case "non_field_errors", "detail", "message":
		return ""
	}
	return key
}
