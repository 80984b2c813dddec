package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPerRow(t *testing.T) {
	rows := []Row{
		NewRow("name", "Alice"),
		NewRow("name", "Bob"),
		NewRow("name", "Cy"),
	}

	var sent []string
	send := func(ctx context.Context, r Row) error {
		sent = append(sent, r.Value("name"))
		if r.Value("name") == "Bob" {
			return errors.New("duplicate member")
		}
		return nil
	}

	out, err := PerRow(send, nil)(context.Background(), rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"Alice", "Bob", "Cy"}, sent); diff != "" {
		t.Errorf("rows sent out of order (-want +got):\n%s", diff)
	}
	if out.Success {
		t.Error("Success should be false when a row fails")
	}
	if out.Uploaded != 2 {
		t.Errorf("Uploaded = %d, want 2", out.Uploaded)
	}
	want := []ValidationError{{Row: 3, Message: "duplicate member"}}
	if diff := cmp.Diff(want, out.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestPerRow_AllAccepted(t *testing.T) {
	send := func(ctx context.Context, r Row) error { return nil }
	out, err := PerRow(send, nil)(context.Background(), []Row{NewRow("a", "1"), NewRow("a", "2")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Success || out.Uploaded != 2 || len(out.Errors) != 0 {
		t.Errorf("outcome = %+v", out)
	}
}

func TestPerRow_CustomMapper(t *testing.T) {
	send := func(ctx context.Context, r Row) error { return errors.New("bad email") }
	mapErr := func(i int, err error) []ValidationError {
		return []ValidationError{{Row: LineNumber(i), Field: "email", Message: err.Error()}}
	}

	out, _ := PerRow(send, mapErr)(context.Background(), []Row{NewRow("email", "x")})
	want := []ValidationError{{Row: 2, Field: "email", Message: "bad email"}}
	if diff := cmp.Diff(want, out.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestPerRow_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	send := func(ctx context.Context, r Row) error {
		calls++
		cancel()
		return nil
	}

	_, err := PerRow(send, nil)(ctx, []Row{NewRow("a", "1"), NewRow("a", "2")})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("send called %d times, want 1", calls)
	}
}

func TestPerRow_StopsOnAbort(t *testing.T) {
	calls := 0
	send := func(ctx context.Context, r Row) error {
		calls++
		return fmt.Errorf("%w: session expired", ErrUploadAborted)
	}

	out, err := PerRow(send, nil)(context.Background(), []Row{NewRow("a", "1"), NewRow("a", "2"), NewRow("a", "3")})
	if !errors.Is(err, ErrUploadAborted) {
		t.Fatalf("err = %v, want ErrUploadAborted", err)
	}
	if calls != 1 {
		t.Errorf("send called %d times, want 1", calls)
	}
	if len(out.Errors) != 0 {
		t.Errorf("aborted upload should not map row errors, got %v", out.Errors)
	}
}

func TestBatch(t *testing.T) {
	rows := []Row{NewRow("a", "1"), NewRow("a", "2")}

	t.Run("success fills uploaded", func(t *testing.T) {
		send := func(ctx context.Context, rows []Row) (UploadOutcome, error) {
			return UploadOutcome{Success: true}, nil
		}
		out, err := Batch(send, nil)(context.Background(), rows)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Uploaded != 2 {
			t.Errorf("Uploaded = %d, want 2", out.Uploaded)
		}
	})

	t.Run("error without mapper passes through", func(t *testing.T) {
		boom := errors.New("boom")
		send := func(ctx context.Context, rows []Row) (UploadOutcome, error) {
			return UploadOutcome{}, boom
		}
		if _, err := Batch(send, nil)(context.Background(), rows); !errors.Is(err, boom) {
			t.Errorf("err = %v, want boom", err)
		}
	})

	t.Run("abort bypasses mapper", func(t *testing.T) {
		send := func(ctx context.Context, rows []Row) (UploadOutcome, error) {
			return UploadOutcome{}, fmt.Errorf("%w: forbidden", ErrUploadAborted)
		}
		out, err := Batch(send, DefaultErrorMapper)(context.Background(), rows)
		if !errors.Is(err, ErrUploadAborted) {
			t.Fatalf("err = %v, want ErrUploadAborted", err)
		}
		if len(out.Errors) != 0 {
			t.Errorf("errors = %v, want none", out.Errors)
		}
	})

	t.Run("error with mapper becomes rejected outcome", func(t *testing.T) {
		send := func(ctx context.Context, rows []Row) (UploadOutcome, error) {
			return UploadOutcome{}, errors.New("row 2 invalid")
		}
		out, err := Batch(send, DefaultErrorMapper)(context.Background(), rows)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Success {
			t.Error("Success should be false")
		}
		want := []ValidationError{{Row: 0, Message: "row 2 invalid"}}
		if diff := cmp.Diff(want, out.Errors); diff != "" {
			t.Errorf("errors mismatch (-want +got):\n%s", diff)
		}
	})
}
