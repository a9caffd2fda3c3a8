// Package process runs external programs with a hard wall-clock bound.
//
// A Runner launches one program per call with fully buffered standard input
// and captures standard output, standard error and the exit code:
//
//	r := process.New(process.WithDefaultTimeout(5 * time.Second))
//	res := r.Run(ctx, process.Request{Path: "./calc", Stdin: "1+2\n"})
//	if err := res.Err(req); err != nil {
//	    // *LaunchError, *TimeoutError or *RuntimeError
//	}
//
// # Timeouts
//
// On Unix the child is started in its own process group. When the deadline
// passes the whole group receives SIGKILL before Run returns, and any output
// captured so far is discarded so callers never see truncated results.
//
// # Statuses
//
//   - Completed: the program exited (check ExitCode)
//   - TimedOut: the deadline elapsed
//   - LaunchFailed: the executable was missing or not executable
//   - Canceled: the caller's context ended first
package process
