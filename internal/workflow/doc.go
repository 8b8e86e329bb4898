// Package workflow orchestrates the toolkit's operations against one
// collection: initializing the layout, importing and tagging source
// files, generating derivatives, publishing item pages, and rebuilding
// the collection index.
//
// Every operation runs as a short-lived invocation. An flock-based lock
// at the collection root serializes concurrent invocations, and each
// step is idempotent so a re-run after a crash converges instead of
// duplicating work.
package workflow
