// Package dispatch routes tool requests to the mini-language components.
//
// The supported tools form a closed enumeration, [Tool]. Request names are
// parsed once with [ParseTool]; an unknown name never reaches the engine.
//
// # Execution
//
// [Engine.Execute] runs one tool and always returns rendered text in
// [Result.Output]. Toolchain-backed tools obtain their executable from a
// [Toolchains] source, normally a *toolchain.Cache, so every tool shares the
// same single-flight build. Build failures, launch failures, and timeouts are
// also returned as typed errors:
//
//	eng, err := dispatch.New(dispatch.Options{Toolchains: cache})
//	res, err := eng.Execute(ctx, dispatch.Calculator, dispatch.Payload{
//	    Input: "int a = 2 * (3 + 4);",
//	})
//	fmt.Println(res.Output) // Result: 14
//
// # Backend
//
// [Backend] adapts the engine to backend.Backend, so the tools can be listed
// and invoked as "minilang:<tool>" through a backend.Aggregator.
package dispatch
