// Package probemap provides a generic hash map with open addressing,
// linear probing, and lazy deletion.
//
// probemap trades the pointer-chasing of chained tables for flat,
// cache-friendly slot arrays: every entry lives directly in the table, and
// a lookup walks consecutive slots from the key's home position. Erased
// entries leave tombstones behind so probe chains stay intact; rebuilds
// reclaim them.
//
// # Basic Usage
//
//	m := probemap.New[string, int]()
//	m.Insert("a", 1)
//
//	v, ok := m.Get("a")
//
//	// Update in place; Insert never overwrites.
//	*m.Ref("a") = 2
//
//	m.Erase("a")
//
// Insert preserves existing values: inserting a present key is a no-op.
// Write through [Map.Ref] (or [Cursor.SetValue]) to update.
//
// # Iteration
//
// [Map.All], [Map.Keys] and [Map.Values] yield live entries in table order,
// which depends on the hasher and the mutation history, not on insertion
// order. [Map.Cursor] and [Map.Find] expose the same walk as an explicit
// cursor. Cursors borrow the table they were created over: they survive
// plain inserts and erases, but a resize retires their table and they never
// observe the rebuilt one.
//
// # Resizing
//
// The table starts at capacity 8, doubles when an insert would exceed 75%
// occupancy, and halves (never below 8) when tombstones outnumber live
// entries two to one. The capacity checks run at the start of every insert
// and after every erase. Resizing rewrites the table, drops all tombstones,
// and invalidates outstanding cursors and [Map.Ref] pointers.
//
// # Concurrency
//
// A Map has no internal locking and is not safe for concurrent use. Callers
// that share a Map across goroutines must serialize all access, including
// reads, since even lookups may follow a table swap mid-flight.
//
// # Error Handling
//
// Lookup misses are normal results: [Map.Get] and [Map.Contains] report
// them as booleans, [Map.Find] as an exhausted cursor, and [Map.At] as an
// error wrapping [ErrKeyNotFound]. Misusing a cursor (reading through an
// invalid one) panics; allocation failure follows Go runtime semantics.
package probemap
