// Package condense provides a small embedded row store with a
// relational-algebra query layer.
//
// A condense Table is an ordered sequence of flat key/value rows persisted as
// a single blob per named table. The blob may be transparently compressed and
// sealed with authenticated encryption. Queries (Select, Where, In, Like,
// Union, Join, Exists, Count, First, Last) load the blob and evaluate purely
// in memory; mutations (Insert, Remove, Update, SetField) load, change the
// sequence and rewrite the blob whole. There is no caching between calls and
// no index: every operation works on the full materialized sequence, which
// keeps the consistency model trivial and suits small tables (configuration,
// fixtures, job queues, test data) rather than large datasets.
//
// # Quick Start
//
//	ctx := context.Background()
//	tbl, err := condense.Open(ctx, "people", "./data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tbl.Insert(ctx, relation.Row{
//	    "name": relation.String("Ada"),
//	    "dept": relation.String("Engineering"),
//	})
//
//	rows, err := tbl.Where(ctx, nil, "dept", relation.String("Engineering"))
//
// # Storage Backends
//
// Open persists to a directory on the local filesystem. New accepts any
// blobstore.Store: in-memory (tests), a bbolt database file, a MinIO or
// S3-compatible bucket, or a rate-limited wrapper around any of these.
//
//	store := blobstore.NewMemory()
//	tbl, err := condense.New(ctx, "people", store)
//
// # Encryption and Compression
//
//	tbl, err := condense.Open(ctx, "people", "./data",
//	    condense.WithKey("secret"),
//	    condense.WithCompressor(compress.Zstd{}),
//	)
//
// Blobs are encoded, then compressed, then sealed. All three stages are fixed
// at construction; blobs are not self-describing, so a table must be reopened
// with the pipeline that wrote it.
//
// # Consistency
//
// Each write replaces the blob atomically, so readers never observe a torn
// blob. There is no cross-writer isolation: concurrent writers race and the
// last rewrite wins, silently discarding the other's update. Serialize
// mutating calls externally when multiple writers share a backing location.
package condense
