// Package mcpserver serves the tools over the Model Context Protocol.
//
// Each tool takes an object argument with a required "input" string and an
// optional "stdin" string. Results are returned as a single text content
// block; failed executions set IsError and still carry the rendered output.
package mcpserver
