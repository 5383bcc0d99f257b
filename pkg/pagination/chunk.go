package pagination

import (
	"context"
	"errors"
	"fmt"
)

// DefaultChunkSize is the batch cap of multi-id lookup endpoints.
const DefaultChunkSize = 50

// DedupeKeys removes duplicate keys, keeping the first occurrence of each.
func DedupeKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// ChunkKeys splits keys into consecutive groups of at most size elements.
func ChunkKeys(keys []string, size int) [][]string {
	if size <= 0 || len(keys) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(keys)+size-1)/size)
	for start := 0; start < len(keys); start += size {
		end := min(start+size, len(keys))
		chunks = append(chunks, keys[start:end:end])
	}
	return chunks
}

// Chunked returns one lazy sequence over a batch lookup endpoint queried with
// many keys. Keys are deduplicated (first occurrence wins) and split into
// chunks of chunkSize; each chunk is sent as keyParam and paginated in turn.
// Chunk order and page order are preserved. A limit applies to the whole
// sequence, and later chunks are never requested once it is reached.
func Chunked(fetcher PageFetcher, endpoint string, params Params, keyParam string, keys []string, chunkSize int, opts ...Option) (*Sequence[RawItem], error) {
	if fetcher == nil {
		return nil, fmt.Errorf("page fetcher is required")
	}
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if keyParam == "" {
		return nil, fmt.Errorf("key parameter is required")
	}
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be > 0 (got %d)", ErrLimitViolation, chunkSize)
	}

	s, err := buildSettings(opts)
	if err != nil {
		return nil, err
	}

	chunks := ChunkKeys(DedupeKeys(keys), chunkSize)
	next := 0
	total := 0
	var current *cursor

	return newSequence(func(ctx context.Context) (RawItem, error) {
		for {
			if s.hasLimit && total >= s.limit {
				return nil, Done
			}
			if current == nil {
				if next >= len(chunks) {
					return nil, Done
				}
				sub := s
				if s.hasLimit {
					sub.limit = s.limit - total
				}
				current = newCursor(fetcher, endpoint, params.With(keyParam, chunks[next]), sub)
				next++
			}

			item, err := current.next(ctx)
			if errors.Is(err, Done) {
				current = nil
				continue
			}
			if err != nil {
				return nil, err
			}
			total++
			return item, nil
		}
	}), nil
}
