// Package chatmodel provides the session context carried through
// context.Context: the session and turn identifiers.
package chatmodel
