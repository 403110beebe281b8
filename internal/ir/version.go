package ir

// Version constants for the snapshot schema and the tool.
const (
	// SchemaVersion is the snapshot schema version.
	SchemaVersion = "1"

	// ToolVersion is the projdoc version.
	ToolVersion = "0.1.0"
)
