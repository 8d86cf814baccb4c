// Package domain defines the Les Coureurs MCP tools and resources.
//
// Every tool is a pair: XxxTool describes the tool and its input schema, and
// XxxHandler answers calls against the catalog or the dashboard rules. Input
// schemas carry the enums and bounds so the SDK rejects bad arguments before
// a handler runs. Resources return pretty-printed JSON snapshots.
package domain
