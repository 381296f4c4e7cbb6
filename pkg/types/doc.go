/*
Package types defines the core domain entities shared across Agent Docs:
workspaces, documents, version snapshots, and comments.

These are plain data structures with JSON tags matching the wire format.
Derived fields (ContentHTML, WordCount) and the lock triple invariant are
maintained by pkg/storage; helpers here only express per-entity rules such
as lock expiry.
*/
package types
