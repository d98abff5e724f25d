// Package chat provides the interactive session: it reads lines typed by the
// user, hands them to the assistant one turn at a time and prints the replies.
package chat
