// Package transcript provides the linear conversation history of a session.
package transcript
