// Package minio provides a blobstore.Store implementation using the MinIO
// client.
//
// MinIO is a high-performance, S3-compatible object storage system. This
// package uses the official MinIO Go client library, so it works with MinIO
// itself and with other S3-compatible systems like Ceph, SeaweedFS, and
// Garage. Each condense table becomes one object.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "tables/")
//	tbl, err := condense.New(ctx, "people", store)
//
// Object writes in S3-compatible storage are already atomic at the object
// level (a GET sees either the previous object or the new one), which is
// exactly the replace guarantee blobstore.Store requires.
package minio
