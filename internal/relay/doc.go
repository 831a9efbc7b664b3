// Package relay speaks the nostr relay protocol over websockets and builds
// the two multi-relay pipelines on top of it.
//
// A Conn covers one endpoint: Fetch issues a REQ and collects events until
// the relay signals end-of-stored-events (EOSE); Publish sends an EVENT and
// waits for the matching OK.
//
// Pool fans a query out to a set of relays concurrently, merges the
// streams, deduplicates by event id and drops events whose signatures do
// not verify. Completion is EOSE-driven, not timer-driven: the pipeline
// returns once every relay has finished or failed. Send fans a batch of
// events out to relay groups under an explicit policy, reporting every
// (event, relay) pair independently.
//
// An unreachable endpoint is logged and skipped; only a set with no
// surviving endpoint is an error. Contexts bound every network round-trip;
// there is no connection pooling across calls and no retry.
package relay
