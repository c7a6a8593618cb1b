// Package disasm turns a raw bytecode instruction stream into the shared
// ir representation: decode instructions and parameters, emit time and
// rank markers wherever they change, and insert labels at every byte
// offset some other instruction's 'o'-parameter targets (spec.md §4.6).
package disasm

import (
	"fmt"
	"strings"
)

// ErrorKind categorises a disassembly failure (spec.md §7's error-kind
// vocabulary, restricted to the subset this package can raise).
type ErrorKind int

const (
	ErrorShortRead ErrorKind = iota
	ErrorInvalidMagic
	ErrorUnsupportedVersion
	ErrorUnknownOpcode
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorShortRead:
		return "ShortRead"
	case ErrorInvalidMagic:
		return "InvalidMagic"
	case ErrorUnsupportedVersion:
		return "UnsupportedVersion"
	case ErrorUnknownOpcode:
		return "UnknownOpcode"
	default:
		return "Unknown"
	}
}

// Error is one disassembly failure, tied to a byte offset rather than a
// source position since there is no text at this stage.
type Error struct {
	Kind    ErrorKind
	Offset  uint32
	Sub     string
	Message string
}

func (e *Error) Error() string {
	if e.Sub != "" {
		return fmt.Sprintf("%s: offset %#x in %q: %s", e.Kind, e.Offset, e.Sub, e.Message)
	}
	return fmt.Sprintf("%s: offset %#x: %s", e.Kind, e.Offset, e.Message)
}

// ErrorList collects every error from a disassembly run up to a cap
// (spec.md §7: batch errors rather than stopping at the first one).
type ErrorList struct {
	Errors []*Error
	Cap    int
}

// NewErrorList returns a list that stops accumulating past cap errors
// (a cap of 0 means unlimited).
func NewErrorList(cap int) *ErrorList {
	return &ErrorList{Cap: cap}
}

// Add appends err unless the cap has already been reached; it reports
// whether the caller should keep going.
func (l *ErrorList) Add(err *Error) bool {
	if l.Cap > 0 && len(l.Errors) >= l.Cap {
		return false
	}
	l.Errors = append(l.Errors, err)
	return l.Cap == 0 || len(l.Errors) < l.Cap
}

func (l *ErrorList) HasErrors() bool { return len(l.Errors) > 0 }

func (l *ErrorList) Error() string {
	var sb strings.Builder
	for _, e := range l.Errors {
		sb.WriteString(e.Error())
		sb.WriteByte('\n')
	}
	return sb.String()
}
