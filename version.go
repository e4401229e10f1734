package complog

// Version is the release of the complog module, reported by the CLI and the MCP server.
const Version = "0.3.0"
