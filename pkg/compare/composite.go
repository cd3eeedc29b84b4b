package compare

import (
	"fmt"
	"time"

	"github.com/sdejongh/dircmp/pkg/models"
)

// Options configures the comparer built by New
type Options struct {
	BufferSize    int
	HashAlgorithm string
	TimeTolerance time.Duration
	Text          TextOptions
	// ReaderWrapper is applied to every reader the comparer opens
	ReaderWrapper ReaderWrapper
}

// New builds the ContentComparer for a compare method
func New(method models.CompareMethod, opts Options) (ContentComparer, error) {
	tolerance := opts.TimeTolerance
	if tolerance <= 0 {
		tolerance = DefaultTimeTolerance
	}

	switch method {
	case models.MethodContent, "":
		c := NewTextComparator(opts.Text, opts.BufferSize)
		c.SetReaderWrapper(opts.ReaderWrapper)
		return c, nil
	case models.MethodQuick:
		c := NewQuickComparator(opts.BufferSize)
		c.SetReaderWrapper(opts.ReaderWrapper)
		return c, nil
	case models.MethodHash:
		c, err := NewHashComparator(opts.HashAlgorithm, opts.BufferSize)
		if err != nil {
			return nil, err
		}
		c.SetReaderWrapper(opts.ReaderWrapper)
		return c, nil
	case models.MethodDate:
		return NewDateComparator(tolerance), nil
	case models.MethodDateSize:
		return NewDateSizeComparator(tolerance), nil
	case models.MethodSize:
		return NewSizeComparator(), nil
	default:
		return nil, fmt.Errorf("unknown compare method: %s", method)
	}
}
