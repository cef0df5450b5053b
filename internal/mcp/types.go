package mcp

// EmptyInput is the input for tools that take no arguments.
type EmptyInput struct{}

// SaveStateInput is the input for the save_state tool.
type SaveStateInput struct {
	IncludeDump bool `json:"include_dump,omitempty" jsonschema:"When true, include a human-readable listing of the captured monitors and windows"`
}
