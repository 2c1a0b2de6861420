// Package resgroup maintains a list of resource groups
// loaded from a JSON document.
//
// A [List] is updated by parsing the document with [(*List).Parse]
// or [(*List).ParseFile].
// Payloads are identified by their SHA-256 hash,
// so re-parsing an unchanged document only refreshes the update time.
// Invalid documents are logged and skipped, keeping the previous state.
// Accepted documents are written to a snappy-compressed [Cache],
// which [(*List).LoadCache] reads back on startup.
//
// Changes are published as rpl producers:
// [(*List).Updated], [(*List).FreqChanges], [(*List).LastUpdateChanges]
// and [(*List).IconChanges].
//
// The document is either the bare list:
//
//	{"freq": 3600, "groups": [{"title": "...", "icon": "...", "resources": [...]}]}
//
// or a service response wrapping it:
//
//	{"success": true, "freq": 3600, "resources": {"groups": [...]}}
package resgroup
