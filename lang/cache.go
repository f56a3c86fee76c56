package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// parseCache stores parsed templates keyed by a hash of their source and
// the options that affect parsing. Values are *cacheEntry.
var parseCache sync.Map

// cacheEntry parses its source exactly once, even when requested by many
// goroutines at the same time.
type cacheEntry struct {
	once sync.Once
	tpl  *Template
	err  error
}

// hashOptions encodes the options that change parse output with gob and
// hashes the encoding with xxh3.
func hashOptions(cfg parseConfig) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(cfg.braces)

	return xxh3.Hash(buf.Bytes())
}

// cacheKey combines the hashes of source and options.
func cacheKey(src string, cfg parseConfig) string {
	return strconv.FormatUint(xxh3.HashString(src)^hashOptions(cfg), 36)
}

// ParseString parses src, reusing the tree from an earlier call with the same
// source and options. The returned tree is shared and must not be modified.
//
// Plain text that cannot contain a tag bypasses the cache.
func ParseString(ctx context.Context, src string, opts ...ParseOption) (*Template, error) {
	cfg := makeParseConfig(opts...)

	if !strings.Contains(src, "<") && !(cfg.braces && strings.Contains(src, "{{")) {
		return Parse(ctx, src, opts...)
	}

	key := cacheKey(src, cfg)

	value, hit := parseCache.LoadOrStore(key, new(cacheEntry))

	cfg.logger.TraceContext(ctx, "cache lookup",
		slog.String("key", key),
		slog.Bool("cache_hit", hit))

	entry, _ := value.(*cacheEntry)

	entry.once.Do(func() {
		entry.tpl, entry.err = Parse(ctx, src, opts...)
	})

	return entry.tpl, entry.err
}

// ParseReader reads all of r and parses it with [ParseString].
func ParseReader(ctx context.Context, r io.Reader, opts ...ParseOption) (*Template, error) {
	src, err := ReadAll(r)
	if err != nil {
		return nil, err
	}

	return ParseString(ctx, string(src), opts...)
}

// ReadAll reads r to the end through an asynchronous read-ahead buffer.
func ReadAll(r io.Reader) ([]byte, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return data, nil
}

// ClearCache removes all cached parse trees.
func ClearCache() { parseCache.Clear() }
