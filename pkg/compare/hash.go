package compare

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Partial hashing configuration
const (
	// Minimum file size to enable partial hashing (1MB)
	partialHashThreshold = 1 * 1024 * 1024
	// Size of partial hash to compute (256KB)
	partialHashSize = 256 * 1024
)

// Hash algorithms accepted by NewHashComparator
const (
	AlgorithmSHA256 = "sha256"
	AlgorithmMD5    = "md5"
)

// HashComparator compares files by content digest
type HashComparator struct {
	algorithm         string
	newHash           func() hash.Hash
	bufferPool        *sync.Pool
	enablePartialHash bool
	readerWrapper     ReaderWrapper
}

// NewHashComparator creates a digest comparator for the given algorithm
func NewHashComparator(algorithm string, bufferSize int) (*HashComparator, error) {
	if bufferSize < 4096 {
		bufferSize = 4096
	}

	var newHash func() hash.Hash
	switch algorithm {
	case "", AlgorithmSHA256:
		algorithm, newHash = AlgorithmSHA256, sha256.New
	case AlgorithmMD5:
		newHash = md5.New
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algorithm)
	}

	return &HashComparator{
		algorithm:         algorithm,
		newHash:           newHash,
		enablePartialHash: true,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}, nil
}

// SetPartialHashEnabled enables or disables the partial hash pre-check
func (c *HashComparator) SetPartialHashEnabled(enabled bool) {
	c.enablePartialHash = enabled
}

// SetReaderWrapper sets a function to wrap readers (e.g., for rate limiting)
func (c *HashComparator) SetReaderWrapper(wrapper ReaderWrapper) {
	c.readerWrapper = wrapper
}

// Compare compares all targets by digest
func (c *HashComparator) Compare(ctx context.Context, targets []Target) *Comparison {
	if res := checkTargets(targets); res != nil {
		return res
	}

	infos, res := statAll(ctx, targets)
	if res != nil {
		return res
	}

	if sizesDiffer(infos) {
		return &Comparison{Outcome: Different, Reason: fmt.Sprintf("file sizes differ (%s)", sizeList(infos))}
	}

	// Large files are rejected early when their leading bytes differ
	if c.enablePartialHash && infos[0].Size >= partialHashThreshold {
		sums, err := c.hashAll(ctx, targets, partialHashSize)
		if err == nil && !allEqual(sums) {
			return &Comparison{Outcome: Different, Reason: fmt.Sprintf("%s partial hashes differ", c.algorithm)}
		}
		// A failed partial hash falls through to the full hash
	}

	sums, err := c.hashAll(ctx, targets, -1)
	if err != nil {
		return failed("failed to compute hash", err)
	}
	if !allEqual(sums) {
		return &Comparison{Outcome: Different, Reason: fmt.Sprintf("%s hashes differ", c.algorithm)}
	}
	return &Comparison{Outcome: Identical, Reason: fmt.Sprintf("%s hashes match", c.algorithm)}
}

// hashAll digests every target in parallel. A negative limit hashes whole files.
func (c *HashComparator) hashAll(ctx context.Context, targets []Target, limit int64) ([]string, error) {
	sums := make([]string, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			sum, err := c.computeHash(gctx, t, limit)
			if err != nil {
				return fmt.Errorf("%s: %w", t.Path, err)
			}
			sums[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sums, nil
}

// computeHash streams a file through the digest
func (c *HashComparator) computeHash(ctx context.Context, t Target, limit int64) (string, error) {
	reader, err := t.Backend.Read(ctx, t.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	if c.readerWrapper != nil {
		reader = c.readerWrapper(ctx, reader)
	}
	defer reader.Close()

	var src io.Reader = reader
	if limit >= 0 {
		src = io.LimitReader(reader, limit)
	}

	hasher := c.newHash()
	bufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufPtr)
	buffer := *bufPtr

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := src.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

func allEqual(sums []string) bool {
	for _, s := range sums[1:] {
		if s != sums[0] {
			return false
		}
	}
	return true
}

// Name returns the comparator name
func (c *HashComparator) Name() string {
	return "hash-" + c.algorithm
}
