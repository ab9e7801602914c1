// Package idf is an in-memory store for flat-record documents such as
// EnergyPlus input files.
//
// A document is an ordered list of records. Each record has a type and a
// positionally ordered list of string fields; field 0 is conventionally the
// record's name. The ordered list is the source of truth and lookups by type
// or by (type, key) go through derived indices that the store keeps in step
// with every edit.
//
// Field positions carry meaning (a Branch is a list of component quadruples),
// so the package exposes shifting edits ([Record.InsertFields],
// [Record.RemoveFields]) and makes index invalidation explicit: resolve names
// again through the [Resolver], or hold a [Mark].
//
// Records enter the store by parsing text ([Parse], [Store.Load]) and leave it
// through [Store.Marshal]. A [Tx] groups edits so they can be rolled back.
package idf
