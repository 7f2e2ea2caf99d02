package vecindex

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/ontomap/core"
)

// Index is an embedding index over corpus entries.
type Index struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens an index at the specified path, creating the directory if it
// doesn't exist. With inMemory set, path is ignored and nothing is persisted.
func Open(filePath string, inMemory bool) (*Index, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Index{
		db:     db,
		logger: slog.Default(),
	}, nil
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Add validates and stores corpus entries. Entries with ID 0 get a
// content-based ID derived from their label; re-adding an entry with the
// same label overwrites it.
func (ix *Index) Add(ctx context.Context, entries ...*core.CorpusEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	wb := ix.db.NewWriteBatch()
	defer wb.Cancel()

	for _, entry := range entries {
		if err := core.ValidateCorpusEntry(entry); err != nil {
			return err
		}
		if entry.Id == 0 {
			entry.Id = core.IDFromContent(entry.Label)
		}
		if err := wb.Set(makeEntryKey(entry.Id), MarshalCorpusEntry(entry)); err != nil {
			return err
		}
	}

	return wb.Flush()
}

// Get retrieves a corpus entry by ID. Returns nil when the entry doesn't exist.
func (ix *Index) Get(ctx context.Context, id core.ID) (*core.CorpusEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry *core.CorpusEntry
	err := ix.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEntryKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			entry, err = UnmarshalCorpusEntry(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Count returns the number of indexed entries.
func (ix *Index) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := ix.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// FindSimilar finds corpus entries similar to the given vector.
// Returns entries with similarity >= minSimilarity, up to limit results,
// ordered by similarity score (highest first).
func (ix *Index) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.EntryMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var results []*core.EntryMatch
	err := ix.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.CorpusEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = UnmarshalCorpusEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if entry == nil || len(entry.Vector) == 0 {
				continue
			}

			// Cosine similarity (dot product for normalized vectors)
			similarity := dotProduct(vector, entry.Vector)
			if similarity >= minSimilarity {
				results = append(results, &core.EntryMatch{
					Entry: entry,
					Score: similarity,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.EntryMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
