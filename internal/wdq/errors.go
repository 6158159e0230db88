package wdq

import (
	"errors"
	"fmt"
)

// Stage identifies the decode phase that produced a ParseError.
type Stage string

const (
	StageHeader       Stage = "header"
	StageChannelTable Stage = "channel table"
	StageSampleData   Stage = "sample data"
	StageTrailer      Stage = "trailer"
)

// Sentinel errors for the decode failure taxonomy. Callers classify
// failures with errors.Is.
var (
	// ErrInvalidFormat means the buffer does not look like a WinDaq
	// file at all.
	ErrInvalidFormat = errors.New("not a WinDaq file")
	// ErrCorruptHeader means header offsets or counts are
	// inconsistent with the file bounds.
	ErrCorruptHeader = errors.New("corrupt header")
	// ErrCorruptChannelTable means a channel descriptor record
	// overruns its region or uses an unrecognized layout.
	ErrCorruptChannelTable = errors.New("corrupt channel table")
	// ErrTruncatedData means the file holds fewer sample bytes than
	// the header declares.
	ErrTruncatedData = errors.New("truncated sample data")
	// ErrOutOfBounds means a read would pass the end of the buffer.
	ErrOutOfBounds = errors.New("read past end of file")
)

// ParseError reports a decode failure together with the stage and the
// byte offset that triggered it.
type ParseError struct {
	Stage  Stage
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("wdq: %s at byte %d: %v", e.Stage, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseError(stage Stage, offset int64, err error) error {
	return &ParseError{Stage: stage, Offset: offset, Err: err}
}

func parseErrorf(stage Stage, offset int64, sentinel error, format string, args ...any) error {
	args = append([]any{sentinel}, args...)
	return &ParseError{Stage: stage, Offset: offset, Err: fmt.Errorf("%w: "+format, args...)}
}
