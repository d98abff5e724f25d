// Package llms provides the provider neutral types for talking to a remote
// text completion service: messages, tagged response content blocks, tools
// and call options.
//
// The `llms.go` file contains the Model interface.
//
// The `options.go` file provides various options and functions to configure the calls.
package llms
