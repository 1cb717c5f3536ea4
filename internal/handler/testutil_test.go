package handler

import (
	"errors"
	"io"
	"log/slog"

	"github.com/menezmethod/mwpriority/priority"
)

// discardLogger returns a logger that writes to /dev/null.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newManager returns a manager seeded with exactly ids.
func newManager(ids ...string) *priority.Manager {
	return priority.WithDefaults(priority.NewSliceOwner(), append([]string{}, ids...))
}

// brokenReader fails every lookup with an error that is not ErrNotFound.
type brokenReader struct{}

func (brokenReader) Priority() []string { return nil }

func (brokenReader) Index(string) (int, error) { return 0, errors.New("store offline") }
