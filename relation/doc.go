// Package relation holds the in-memory row model and the pure
// relational-algebra engine that condense tables are queried with.
//
// A Row is a schemaless mapping from field name to a typed Value; a Table is
// an ordered sequence of rows identified only by position. The operations
// (Select, Where, In, Like, Exists, Count, First, Last, Union, Join) are pure
// functions over whole tables: they never touch storage and never mutate
// their inputs.
//
// Field order within a row is not observable by any operation (projection,
// equality and joins are all field-name based), so rows are plain Go maps.
package relation
