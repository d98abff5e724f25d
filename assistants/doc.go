// Package assistants provides the turn engine: it submits the transcript to the
// model, interprets the tagged blocks of the response, resolves tool requests
// through the tool registry and produces the replies of the turn.
package assistants
