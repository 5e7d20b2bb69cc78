// Package confsync is the embeddable entry point to the audit and
// snapshot engine: snapshot storage, structural diffs, the import audit
// protocol, retention pruning and history views behind a single client.
package confsync
