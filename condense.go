package condense

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lambdacasserole/condense/blobstore"
	"github.com/lambdacasserole/condense/codec"
	"github.com/lambdacasserole/condense/compress"
	"github.com/lambdacasserole/condense/crypt"
	"github.com/lambdacasserole/condense/relation"
)

// blobSuffix is the conventional content-encoding suffix appended to the
// table name to form the blob name.
const blobSuffix = ".dat"

// Table is a named, persistent, ordered sequence of rows.
//
// Every operation works on the whole sequence: queries load the blob, run the
// pure operators from package relation and discard the loaded rows; mutations
// load, apply one in-memory change and rewrite the entire blob. Nothing is
// cached between calls, so a Table handle is always as fresh as its backing
// blob, and two handles over the same backing location observe each other's
// writes.
//
// Concurrent readers are safe. Concurrent writers to the same backing
// location never corrupt the blob (writes are atomic) but do race: the last
// rewrite wins, silently discarding the other's update. Callers that need
// concurrent writers must serialize mutating calls externally, for example
// with an advisory lock.
type Table struct {
	name    string
	blob    string
	store   blobstore.Store
	codec   codec.Codec
	comp    compress.Compressor
	cipher  crypt.Cipher
	inMode  relation.EqualityMode
	metrics MetricsCollector
	logger  *Logger
}

// Open constructs a Table persisted as one file under dir, creating both the
// directory and the blob if absent. It is the local-disk convenience form of
// New; dir is normalized, so a trailing separator is tolerated.
func Open(ctx context.Context, name, dir string, optFns ...Option) (*Table, error) {
	store, err := blobstore.NewLocal(dir)
	if err != nil {
		return nil, fmt.Errorf("condense: open %q: %w", dir, err)
	}
	return New(ctx, name, store, optFns...)
}

// New constructs a Table persisted in the given store. The backing blob is
// created empty if it does not exist yet, so a table exists from the moment
// it is constructed, before its first insert.
func New(ctx context.Context, name string, store blobstore.Store, optFns ...Option) (*Table, error) {
	if name == "" {
		return nil, errors.New("condense: table name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("condense: table name %q must not contain path separators", name)
	}
	if store == nil {
		return nil, errors.New("condense: store must not be nil")
	}

	opts := applyOptions(optFns)

	cipher := opts.cipher
	if cipher == nil && opts.key != "" {
		var err error
		cipher, err = crypt.NewChaCha20Poly1305(opts.key)
		if err != nil {
			return nil, fmt.Errorf("condense: derive cipher: %w", err)
		}
	}

	t := &Table{
		name:    name,
		blob:    name + blobSuffix,
		store:   store,
		codec:   opts.codec,
		comp:    opts.compressor,
		cipher:  cipher,
		inMode:  opts.inMode,
		metrics: opts.metricsCollector,
		logger:  opts.logger.WithTable(name),
	}

	exists, err := store.Exists(ctx, t.blob)
	if err != nil {
		return nil, fmt.Errorf("condense: stat %s: %w", t.blob, err)
	}
	if !exists {
		if err := store.Write(ctx, t.blob, nil); err != nil {
			return nil, fmt.Errorf("condense: create %s: %w", t.blob, err)
		}
		t.logger.LogCreate(ctx, t.blob)
	}

	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Location returns the name of the backing blob within the store.
func (t *Table) Location() string { return t.blob }

// Encrypted reports whether a cipher is configured. It is a property of the
// handle, not of the blob's actual content: a keyed table whose blob happens
// to be empty still reports true.
func (t *Table) Encrypted() bool { return t.cipher != nil }

// Load reads the backing blob and returns the full row sequence. An absent or
// zero-length blob loads as an empty table, never as an error. A keyed blob
// that fails authentication returns ErrDecryption; bytes that authenticate
// (or were never sealed) but cannot be decoded return ErrCorruptData.
func (t *Table) Load(ctx context.Context) (relation.Table, error) {
	start := time.Now()
	rows, size, err := t.load(ctx)
	t.metrics.RecordLoad(size, time.Since(start), err)
	t.logger.LogLoad(ctx, len(rows), size, err)
	return rows, err
}

func (t *Table) load(ctx context.Context) (relation.Table, int, error) {
	data, err := t.store.Read(ctx, t.blob)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			// A deleted or never-created blob reads as an empty table.
			return relation.Table{}, 0, nil
		}
		return nil, 0, fmt.Errorf("condense: read %s: %w", t.blob, err)
	}

	size := len(data)
	if size == 0 {
		return relation.Table{}, 0, nil
	}

	if t.cipher != nil {
		if data, err = t.cipher.Open(data); err != nil {
			return nil, size, fmt.Errorf("condense: open %s: %w", t.blob, err)
		}
	}
	if t.comp != nil {
		if data, err = t.comp.Decompress(data); err != nil {
			return nil, size, fmt.Errorf("%w: %s: %w", ErrCorruptData, t.blob, err)
		}
	}

	var rows relation.Table
	if err := t.codec.Unmarshal(data, &rows); err != nil {
		return nil, size, fmt.Errorf("%w: %s: %w", ErrCorruptData, t.blob, err)
	}
	if rows == nil {
		rows = relation.Table{}
	}

	return rows, size, nil
}

// Rewrite encodes rows and atomically replaces the backing blob, returning the
// table written. A subsequent Load observes either the previous content or
// rows in full, never a mix.
func (t *Table) Rewrite(ctx context.Context, rows relation.Table) (relation.Table, error) {
	start := time.Now()
	written, size, err := t.rewrite(ctx, rows)
	t.metrics.RecordRewrite(size, time.Since(start), err)
	t.logger.LogRewrite(ctx, len(written), size, err)
	return written, err
}

func (t *Table) rewrite(ctx context.Context, rows relation.Table) (relation.Table, int, error) {
	if rows == nil {
		rows = relation.Table{}
	}

	data, err := t.codec.Marshal(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("condense: encode %s: %w", t.blob, err)
	}

	// A zero-length encoding is written raw: an empty blob already means an
	// empty table, and sealing it would make emptiness key-dependent.
	if len(data) > 0 {
		if t.comp != nil {
			if data, err = t.comp.Compress(data); err != nil {
				return nil, 0, fmt.Errorf("condense: compress %s: %w", t.blob, err)
			}
		}
		if t.cipher != nil {
			if data, err = t.cipher.Seal(data); err != nil {
				return nil, 0, fmt.Errorf("condense: seal %s: %w", t.blob, err)
			}
		}
	}

	if err := t.store.Write(ctx, t.blob, data); err != nil {
		return nil, 0, fmt.Errorf("condense: write %s: %w", t.blob, err)
	}

	return rows, len(data), nil
}

// Insert appends row to the table and returns the new row count. The row is
// deep copied, so the caller's map can be reused afterwards.
func (t *Table) Insert(ctx context.Context, row relation.Row) (int, error) {
	start := time.Now()
	rows, _, err := t.load(ctx)
	if err == nil {
		rows = append(rows, row.Clone())
		_, _, err = t.rewrite(ctx, rows)
	}
	n := 0
	if err == nil {
		n = len(rows)
	}
	t.metrics.RecordMutation("insert", time.Since(start), err)
	t.logger.LogMutation(ctx, "insert", n, err)
	return n, err
}

// Remove deletes the row at index. Indices of all subsequent rows shift down
// by one, so positions resolved before the call are stale after it.
func (t *Table) Remove(ctx context.Context, index int) error {
	start := time.Now()
	rows, _, err := t.load(ctx)
	if err == nil {
		if err = checkIndex(index, len(rows)); err == nil {
			rows = append(rows[:index], rows[index+1:]...)
			_, _, err = t.rewrite(ctx, rows)
		}
	}
	t.metrics.RecordMutation("remove", time.Since(start), err)
	t.logger.LogMutation(ctx, "remove", len(rows), err)
	return err
}

// Update merges partial into the row at index: partial's fields overwrite
// same-named existing fields, all other fields are kept.
func (t *Table) Update(ctx context.Context, index int, partial relation.Row) error {
	start := time.Now()
	rows, _, err := t.load(ctx)
	if err == nil {
		if err = checkIndex(index, len(rows)); err == nil {
			rows[index] = rows[index].Merge(partial.Clone())
			_, _, err = t.rewrite(ctx, rows)
		}
	}
	t.metrics.RecordMutation("update", time.Since(start), err)
	t.logger.LogMutation(ctx, "update", len(rows), err)
	return err
}

// SetField sets field to val in every row where matchKey strictly equals
// matchVal and returns the number of rows changed. Matching zero rows is not
// an error; the table is rewritten either way.
func (t *Table) SetField(ctx context.Context, field string, val relation.Value, matchKey string, matchVal relation.Value) (int, error) {
	start := time.Now()
	rows, _, err := t.load(ctx)
	changed := 0
	if err == nil {
		for _, row := range rows {
			if v, ok := row[matchKey]; ok && relation.Equal(v, matchVal) {
				row[field] = val
				changed++
			}
		}
		_, _, err = t.rewrite(ctx, rows)
	}
	if err != nil {
		changed = 0
	}
	t.metrics.RecordMutation("setField", time.Since(start), err)
	t.logger.LogMutation(ctx, "setField", changed, err)
	return changed, err
}

// Delete removes the backing blob entirely and reports whether it existed.
// The handle stays usable: the next Load yields an empty table and the next
// mutation recreates the blob.
func (t *Table) Delete(ctx context.Context) (bool, error) {
	start := time.Now()
	existed, err := t.store.Exists(ctx, t.blob)
	if err == nil {
		err = t.store.Delete(ctx, t.blob)
	}
	if err != nil {
		existed = false
		err = fmt.Errorf("condense: delete %s: %w", t.blob, err)
	}
	t.metrics.RecordMutation("delete", time.Since(start), err)
	t.logger.LogDelete(ctx, existed, err)
	return existed, err
}

// IndexOf returns the position of the first row whose key field strictly
// equals val, or -1 when no row matches. A missing match is not an error.
//
// Positions are not stable keys: re-resolve after any mutation instead of
// caching the result across calls.
func (t *Table) IndexOf(ctx context.Context, key string, val relation.Value) (int, error) {
	start := time.Now()
	rows, _, err := t.load(ctx)
	index := -1
	if err == nil {
		for i, row := range rows {
			if v, ok := row[key]; ok && relation.Equal(v, val) {
				index = i
				break
			}
		}
	}
	found := 0
	if index >= 0 {
		found = 1
	}
	t.metrics.RecordQuery("indexOf", time.Since(start), err)
	t.logger.LogQuery(ctx, "indexOf", found, err)
	return index, err
}

// Select loads the table and projects it onto fields. Empty fields keeps
// every present field; either way, rows left with zero fields are dropped.
func (t *Table) Select(ctx context.Context, fields []string) (relation.Table, error) {
	start := time.Now()
	rows, _, err := t.load(ctx)
	var out relation.Table
	if err == nil {
		out = relation.Select(fields, rows)
	}
	t.metrics.RecordQuery("select", time.Since(start), err)
	t.logger.LogQuery(ctx, "select", len(out), err)
	return out, err
}

// Where returns the rows whose key field strictly equals val, projected onto
// fields.
func (t *Table) Where(ctx context.Context, fields []string, key string, val relation.Value) (relation.Table, error) {
	start := time.Now()
	rows, _, err := t.load(ctx)
	var out relation.Table
	if err == nil {
		out = relation.Where(fields, key, val, rows)
	}
	t.metrics.RecordQuery("where", time.Since(start), err)
	t.logger.LogQuery(ctx, "where", len(out), err)
	return out, err
}

// In returns the rows whose key field is a member of vals, projected onto
// fields. Membership uses the table's configured equality mode (strict by
// default, see WithInMode).
func (t *Table) In(ctx context.Context, fields []string, key string, vals []relation.Value) (relation.Table, error) {
	start := time.Now()
	rows, _, err := t.load(ctx)
	var out relation.Table
	if err == nil {
		out = relation.In(fields, key, vals, rows, t.inMode)
	}
	t.metrics.RecordQuery("in", time.Since(start), err)
	t.logger.LogQuery(ctx, "in", len(out), err)
	return out, err
}

// Like returns the rows whose key field is a string matching pattern,
// projected onto fields. The pattern is a Go regular expression; a pattern
// that does not compile returns ErrBadPattern. Missing keys and non-string
// values never match.
func (t *Table) Like(ctx context.Context, fields []string, key, pattern string) (relation.Table, error) {
	start := time.Now()
	rows, _, err := t.load(ctx)
	var out relation.Table
	if err == nil {
		out, err = relation.Like(fields, key, pattern, rows)
	}
	t.metrics.RecordQuery("like", time.Since(start), err)
	t.logger.LogQuery(ctx, "like", len(out), err)
	return out, err
}

// Exists reports whether any row's key field strictly equals val.
func (t *Table) Exists(ctx context.Context, key string, val relation.Value) (bool, error) {
	start := time.Now()
	rows, _, err := t.load(ctx)
	found := false
	if err == nil {
		found = relation.Exists(key, val, rows)
	}
	results := 0
	if found {
		results = 1
	}
	t.metrics.RecordQuery("exists", time.Since(start), err)
	t.logger.LogQuery(ctx, "exists", results, err)
	return found, err
}

// Count returns the number of rows surviving projection onto field. An empty
// field counts every row that has at least one field.
func (t *Table) Count(ctx context.Context, field string) (int, error) {
	start := time.Now()
	rows, _, err := t.load(ctx)
	n := 0
	if err == nil {
		n = relation.Count(field, rows)
	}
	t.metrics.RecordQuery("count", time.Since(start), err)
	t.logger.LogQuery(ctx, "count", n, err)
	return n, err
}

// First returns the value of field in the first row of the projection onto
// field, or ErrNotFound when that projection is empty.
func (t *Table) First(ctx context.Context, field string) (relation.Value, error) {
	start := time.Now()
	rows, _, err := t.load(ctx)
	var v relation.Value
	if err == nil {
		v, err = relation.First(field, rows)
	}
	t.metrics.RecordQuery("first", time.Since(start), err)
	t.logger.LogQuery(ctx, "first", 1, err)
	return v, err
}

// Last returns the value of field in the last row of the projection onto
// field, or ErrNotFound when that projection is empty.
func (t *Table) Last(ctx context.Context, field string) (relation.Value, error) {
	start := time.Now()
	rows, _, err := t.load(ctx)
	var v relation.Value
	if err == nil {
		v, err = relation.Last(field, rows)
	}
	t.metrics.RecordQuery("last", time.Since(start), err)
	t.logger.LogQuery(ctx, "last", 1, err)
	return v, err
}

// Union loads this table and other concurrently and returns their
// deduplicated concatenation (this table's rows first) projected onto fields.
func (t *Table) Union(ctx context.Context, fields []string, other *Table) (relation.Table, error) {
	start := time.Now()
	left, right, err := t.loadBoth(ctx, other)
	var out relation.Table
	if err == nil {
		out = relation.Union(fields, left, right)
	}
	t.metrics.RecordQuery("union", time.Since(start), err)
	t.logger.LogQuery(ctx, "union", len(out), err)
	return out, err
}

// Join loads this table and other concurrently and joins them on match, with
// this table as the left side. See relation.Join for the semantics of each
// method; the result is projected onto fields.
func (t *Table) Join(ctx context.Context, method relation.JoinMethod, fields []string, other *Table, match relation.MatchKey) (relation.Table, error) {
	start := time.Now()
	left, right, err := t.loadBoth(ctx, other)
	var out relation.Table
	if err == nil {
		out, err = relation.Join(method, fields, left, right, match)
	}
	t.metrics.RecordQuery("join", time.Since(start), err)
	t.logger.LogQuery(ctx, "join", len(out), err)
	return out, err
}

// loadBoth loads the two tables' blobs in parallel. The blobs may live in
// different stores with different codecs, keys and compressors; each side is
// decoded by its own pipeline.
func (t *Table) loadBoth(ctx context.Context, other *Table) (left, right relation.Table, err error) {
	if other == nil {
		return nil, nil, errors.New("condense: other table must not be nil")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		left, _, err = t.load(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		right, _, err = other.load(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return left, right, nil
}
