// Package mcp provides the client side of the Model Context Protocol:
// it spawns a tool server as a child process, talks to it over the
// process standard streams, lists its tools and invokes them.
package mcp
