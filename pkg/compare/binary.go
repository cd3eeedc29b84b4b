package compare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// QuickComparator compares files byte-by-byte across all sides.
// Files are classified binary when the first chunk of any side contains a NUL byte.
type QuickComparator struct {
	bufferSize    int
	bufferPool    *sync.Pool
	readerWrapper ReaderWrapper
}

// NewQuickComparator creates a new byte-by-byte comparator
func NewQuickComparator(bufferSize int) *QuickComparator {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &QuickComparator{
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// SetReaderWrapper sets a function to wrap readers (e.g., for rate limiting)
func (c *QuickComparator) SetReaderWrapper(wrapper ReaderWrapper) {
	c.readerWrapper = wrapper
}

// Compare compares all targets byte-by-byte
func (c *QuickComparator) Compare(ctx context.Context, targets []Target) *Comparison {
	if res := checkTargets(targets); res != nil {
		return res
	}

	infos, res := statAll(ctx, targets)
	if res != nil {
		return res
	}

	readers, res := openAll(ctx, targets, c.readerWrapper)
	if res != nil {
		return res
	}
	defer closeAll(readers)

	bufs := make([][]byte, len(readers))
	for i := range bufs {
		ptr := c.bufferPool.Get().(*[]byte)
		defer c.bufferPool.Put(ptr)
		bufs[i] = *ptr
	}

	binary := false
	var offset int64
	for first := true; ; first = false {
		if err := ctx.Err(); err != nil {
			return failed("comparison cancelled", err)
		}

		lens := make([]int, len(readers))
		done := 0
		for i, r := range readers {
			n, err := io.ReadFull(r, bufs[i])
			if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				return failed(fmt.Sprintf("failed to read %s", targets[i].Path), err)
			}
			if n < len(bufs[i]) {
				done++
			}
			lens[i] = n
		}

		if first {
			for i := range bufs {
				if IsBinary(bufs[i][:lens[i]]) {
					binary = true
					break
				}
			}
		}

		for i := 1; i < len(bufs); i++ {
			if lens[i] != lens[0] || !bytes.Equal(bufs[0][:lens[0]], bufs[i][:lens[i]]) {
				return c.differ(binary, offset+firstMismatch(bufs[0][:lens[0]], bufs[i][:lens[i]]), infos[0].Size != infos[i].Size)
			}
		}

		offset += int64(lens[0])
		if done > 0 {
			break
		}
	}

	if binary {
		return &Comparison{Outcome: BinaryIdentical, Reason: fmt.Sprintf("binary content matches (%d bytes)", offset)}
	}
	return &Comparison{Outcome: Identical, Reason: fmt.Sprintf("content matches (%d bytes)", offset)}
}

func (c *QuickComparator) differ(binary bool, offset int64, sizeMismatch bool) *Comparison {
	reason := fmt.Sprintf("content differs at byte offset %d", offset)
	if sizeMismatch {
		reason = "file sizes differ, " + reason
	}
	if binary {
		return &Comparison{Outcome: BinaryDifferent, Reason: reason}
	}
	return &Comparison{Outcome: Different, Reason: reason}
}

// firstMismatch returns the index of the first differing byte
func firstMismatch(a, b []byte) int64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return int64(i)
		}
	}
	return int64(n)
}

// Name returns the comparator name
func (c *QuickComparator) Name() string {
	return "quick"
}
