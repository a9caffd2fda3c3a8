// Package config loads the daemon's HCL configuration.
//
// A file has optional server, limits, and tools blocks and any number of
// labeled toolchain blocks:
//
//	server {
//	  addr        = ":8080"
//	  rate_limit  = 120
//	  rate_window = "1m"
//	}
//
//	limits {
//	  compile_timeout = "10s"
//	  run_timeout     = "5s"
//	}
//
//	toolchain "arithmetic_calculator" {
//	  dir     = "${config_dir}/programs/arithmetic_calculator"
//	  lexer   = "arithmetic_calculator.l"
//	  grammar = "arithmetic_calculator.y"
//	}
//
// Expressions may use the variable config_dir, the directory holding the
// file, and the function env(name). Durations accept Go duration strings.
// Relative toolchain directories resolve against config_dir.
package config
