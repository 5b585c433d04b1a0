// Package cli contains the command line interface for the Qi evaluator.
//
// # Usage
//
// The CLI provides logging and profiling configuration alongside the
// eval/fmt/init/repl subcommands:
//
//	qi --log-level=debug --pprof-mode=cpu eval main []
//
// # Configuration Loader
//
// The package includes a Kong configuration loader ([resolve]) that reads
// qi.yaml-format config files and converts their top-level keys to Kong
// flag values (see [github.com/qi-lang/qi/config] for the process-wide
// settings qi.yaml itself configures: language, worker count, and channel
// capacity).
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-callsite: Include caller information in log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o qi .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/qi/pprof)
package cli
