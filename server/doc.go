// Package server exposes the tools over HTTP.
//
// # Endpoints
//
//	POST /api/interpret                   {option, input, c_code, user_input_string} -> {output}
//	POST /api/execute_cli_command         {command, variables} -> {output, new_variables}
//	GET  /api/tools?q=&limit=             tool listing or catalog search
//	GET  /api/tools/{id}?detail=full      tool documentation
//	GET  /api/toolchains                  build-cache descriptors
//	GET  /api/toolchains/{id}
//	POST /api/toolchains/{id}/invalidate  reset a toolchain to uncompiled
//	GET  /health
//	GET  /metrics                         when a registry is configured
//
// Tool failures are reported in the output text with status 200, matching
// what the browser front end expects. Unknown options produce
// "Unknown option: <name>".
package server
