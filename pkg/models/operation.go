package models

import (
	"time"
)

// CompareMethod defines how file contents are compared
type CompareMethod string

const (
	// MethodContent compares text line by line and binaries byte by byte
	MethodContent CompareMethod = "content"
	// MethodQuick compares byte-by-byte without text analysis
	MethodQuick CompareMethod = "quick"
	// MethodHash compares content digests
	MethodHash CompareMethod = "hash"
	// MethodDate compares modification times
	MethodDate CompareMethod = "date"
	// MethodDateSize compares modification times and sizes
	MethodDateSize CompareMethod = "datesize"
	// MethodSize compares sizes only
	MethodSize CompareMethod = "size"
)

// ValidMethods lists the accepted compare methods
var ValidMethods = []CompareMethod{MethodContent, MethodQuick, MethodHash, MethodDate, MethodDateSize, MethodSize}

// IsValid reports whether m is a known method
func (m CompareMethod) IsValid() bool {
	for _, v := range ValidMethods {
		if m == v {
			return true
		}
	}
	return false
}

// CompareOperation describes one requested compare run
type CompareOperation struct {
	ID            string
	Paths         PathSet
	Method        CompareMethod
	Recursive     bool
	OnlySelected  bool
	CaseSensitive bool
	ExpandUnique  bool
	Exclude       []string
	Skip          []string
	CreatedAt     time.Time
}

// Validate checks if the operation configuration is valid
func (op *CompareOperation) Validate() error {
	if op.Paths.Len() < 2 {
		return &ValidationError{Field: "Paths", Message: "at least two paths are required"}
	}
	if !op.Method.IsValid() {
		return &ValidationError{Field: "Method", Message: "unknown compare method: " + string(op.Method)}
	}
	return op.Paths.Validate()
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
