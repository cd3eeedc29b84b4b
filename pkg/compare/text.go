package compare

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/cases"
)

// DefaultMaxTextSize is the largest file the text comparer loads into memory
const DefaultMaxTextSize = 16 * 1024 * 1024

// TextOptions controls how lines are normalized before diffing
type TextOptions struct {
	// IgnoreEOL treats CRLF, CR and LF line endings as equal
	IgnoreEOL bool
	// IgnoreWhitespace drops all whitespace inside lines
	IgnoreWhitespace bool
	// IgnoreCase compares lines with Unicode case folding
	IgnoreCase bool
	// MaxSize caps the file size diffed line by line; larger files are
	// compared byte-by-byte
	MaxSize int64
}

// TextComparator diffs text files line by line and counts differing blocks.
// The left side is the reference every other side is diffed against.
type TextComparator struct {
	opts          TextOptions
	quick         *QuickComparator
	readerWrapper ReaderWrapper
}

// NewTextComparator creates a line-based comparator
func NewTextComparator(opts TextOptions, bufferSize int) *TextComparator {
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxTextSize
	}
	return &TextComparator{opts: opts, quick: NewQuickComparator(bufferSize)}
}

// SetReaderWrapper sets a function to wrap readers (e.g., for rate limiting)
func (c *TextComparator) SetReaderWrapper(wrapper ReaderWrapper) {
	c.readerWrapper = wrapper
	c.quick.SetReaderWrapper(wrapper)
}

// Compare diffs all targets against the first one
func (c *TextComparator) Compare(ctx context.Context, targets []Target) *Comparison {
	if res := checkTargets(targets); res != nil {
		return res
	}

	infos, res := statAll(ctx, targets)
	if res != nil {
		return res
	}
	for _, info := range infos {
		if info.Size > c.opts.MaxSize {
			return c.quick.Compare(ctx, targets)
		}
	}

	contents := make([][]byte, len(targets))
	for i, t := range targets {
		data, err := c.readAll(ctx, t)
		if err != nil {
			return failed(fmt.Sprintf("failed to read %s", t.Path), err)
		}
		if IsBinary(data) {
			return c.quick.Compare(ctx, targets)
		}
		contents[i] = data
	}

	fold := cases.Fold()
	ref := c.lines(string(contents[0]), fold)
	blocks := 0
	for _, data := range contents[1:] {
		if err := ctx.Err(); err != nil {
			return failed("comparison cancelled", err)
		}
		if n := diffBlocks(ref, c.lines(string(data), fold)); n > blocks {
			blocks = n
		}
	}

	if blocks == 0 {
		return &Comparison{Outcome: Identical, Reason: "text content matches"}
	}
	return &Comparison{
		Outcome:     Different,
		Reason:      fmt.Sprintf("%d differing block(s)", blocks),
		Differences: blocks,
	}
}

func (c *TextComparator) readAll(ctx context.Context, t Target) ([]byte, error) {
	rc, err := t.Backend.Read(ctx, t.Path)
	if err != nil {
		return nil, err
	}
	if c.readerWrapper != nil {
		rc = c.readerWrapper(ctx, rc)
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, c.opts.MaxSize+1))
}

// lines splits text into normalized lines. Line terminators stay part of
// the line unless EOL differences are ignored.
func (c *TextComparator) lines(text string, fold cases.Caser) []string {
	if c.opts.IgnoreEOL {
		text = strings.ReplaceAll(text, "\r\n", "\n")
		text = strings.ReplaceAll(text, "\r", "\n")
		text = strings.TrimSuffix(text, "\n")
	}

	out := strings.SplitAfter(text, "\n")
	if n := len(out); n > 0 && out[n-1] == "" {
		out = out[:n-1]
	}
	for i, line := range out {
		if c.opts.IgnoreEOL {
			line = strings.TrimSuffix(line, "\n")
		}
		if c.opts.IgnoreWhitespace {
			line = stripSpace(line)
		}
		if c.opts.IgnoreCase {
			line = fold.String(line)
		}
		out[i] = line
	}
	return out
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// diffBlocks counts the non-equal opcode groups between a and b
func diffBlocks(a, b []string) int {
	n := 0
	for _, op := range difflib.NewMatcher(a, b).GetOpCodes() {
		if op.Tag != 'e' {
			n++
		}
	}
	return n
}

// Name returns the comparator name
func (c *TextComparator) Name() string {
	return "content"
}
