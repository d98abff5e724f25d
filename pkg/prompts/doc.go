// Package prompts provides templates for the system prompt and the
// console messages of the assistant persona.
package prompts
