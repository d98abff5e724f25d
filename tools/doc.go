// Package tools provides the registry of tools exposed by the connected MCP
// servers: discovery at startup, lookup by name and invocation.
package tools
