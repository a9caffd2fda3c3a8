// Package toolchain builds generator-based mini-language executables and
// memoizes the outcome for the life of the process.
//
// A toolchain is described by a [Spec]: a grammar spec, a lexer spec, and any
// hand-written sources. [GeneratorBuilder] turns a Spec into an executable by
// running the grammar generator, the lexer generator, and the native compiler
// through a [process.Runner].
//
// # Caching
//
// [Cache] keeps one descriptor per toolchain:
//
//	Uncompiled -> Building -> Ready
//	                       -> Failed
//
// Ready and Failed are terminal. Concurrent callers of [Cache.Executable]
// for the same id share a single build. A failed build is reported from the
// cache on every later call; [Cache.Invalidate] is the only way to retry it
// without restarting the process.
//
// # Supervision
//
// [Cache.Descriptors] returns snapshots for status endpoints, and
// [Cache.Prebuild] warms toolchains concurrently at startup. [Metrics]
// exports build counts, build durations, and lookup results.
package toolchain
