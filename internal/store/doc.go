// Package store provides the on-disk conversation history.
//
// Layout: one directory per conversation peer (npub-encoded) under the
// root, one JSON file per decrypted message, named by the zero-padded unix
// timestamp plus a short content digest so names sort chronologically and
// the same message never lands twice.
//
// The store is append-only. Records are created with O_EXCL; an existing
// identical record makes the write an idempotent no-op, so re-running a
// save over overlapping fetch results cannot duplicate history. Nothing is
// ever rewritten or deleted.
package store
