package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	ErrInvalidRequest     = errors.New("invalid job request")
	ErrStorageUnavailable = errors.New("artifact storage unavailable")
	ErrExtractionFailed   = errors.New("text extraction failed")
	ErrStoryboardInvalid  = errors.New("storyboard has no segments")
	ErrRenderFailed       = errors.New("scene rendering failed")
	ErrSynthesisFailed    = errors.New("speech synthesis failed")
	ErrMergeFailed        = errors.New("audio/video merge failed")
	ErrCancelled          = errors.New("job cancelled")
)

const maxDiagnosticLength = 240

var errorKinds = []struct {
	err  error
	name string
}{
	{ErrInvalidRequest, "InvalidRequest"},
	{ErrStorageUnavailable, "StorageUnavailable"},
	{ErrExtractionFailed, "ExtractionFailed"},
	{ErrStoryboardInvalid, "StoryboardInvalid"},
	{ErrRenderFailed, "RenderFailed"},
	{ErrSynthesisFailed, "SynthesisFailed"},
	{ErrMergeFailed, "MergeFailed"},
}

// KindOf maps an error to its taxonomy name. Cancellation wins over the
// adapter's own kind so an interrupted engine is never reported as broken.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	if IsCancellation(err) {
		return "Cancelled"
	}
	for _, kind := range errorKinds {
		if errors.Is(err, kind.err) {
			return kind.name
		}
	}
	return "Internal"
}

func IsCancellation(err error) bool {
	return errors.Is(err, ErrCancelled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// EngineError is returned by adapters wrapping an external engine call.
type EngineError struct {
	Kind       error
	Diagnostic string
	Err        error
}

func NewEngineError(kind error, diagnostic string, err error) *EngineError {
	return &EngineError{
		Kind:       kind,
		Diagnostic: diagnostic,
		Err:        err,
	}
}

func (e *EngineError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Diagnostic != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Diagnostic)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Err)
	}
	return msg
}

func (e *EngineError) Unwrap() []error {
	if e == nil {
		return nil
	}
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ShortDiagnostic keeps the last non-empty line of raw engine output, capped
// in length, so failure payloads never carry whole stack traces.
func ShortDiagnostic(raw string) string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	line := ""
	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			line = trimmed
			break
		}
	}
	if utf8.RuneCountInString(line) <= maxDiagnosticLength {
		return line
	}
	runes := []rune(line)
	return string(runes[:maxDiagnosticLength]) + "..."
}

// failureMessage folds a possibly multi-line error chain onto one line before
// capping it, so no part of a joined cause is lost to ShortDiagnostic.
func failureMessage(err error) string {
	var parts []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return ShortDiagnostic(strings.Join(parts, "; "))
}
