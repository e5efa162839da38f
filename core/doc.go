// Package core contains the canonical outbound webhook domain: delivery
// records, the dispatch/deliver/sweep lifecycle, and the contracts adapters
// must satisfy. Lower-level adapters (stores, schedulers, transports) depend
// on this package; core must not depend on them.
//
// Delivery processing is append-then-send:
// dispatch writes a pending record before any network work, the worker always
// records an outcome, and the sweeper re-drives failed records under the
// attempt ceiling. A record that exhausts its attempts or ages out of the
// retry window stays failed with no further processing.
package core
