// Package profile provides optional runtime profiling for tagmacro.
//
// Profiling is compiled in only when building with the "pprof" tag:
//
//	go build -tags pprof .
//
// Without the tag, [Modes] is empty and [Profiler.Start] always returns a
// no-op stopper, so callers need no conditional code.
//
// With the tag, [github.com/pkg/profile] writes one profile per run into the
// configured directory, and [net/http/pprof] handlers are registered on the
// default mux for embedders that serve HTTP:
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/tagmacro"}
//	defer p.Start().Stop()
//
// Inspect the result with go tool pprof, e.g.:
//
//	go tool pprof -http=: /tmp/tagmacro/cpu.pprof
//
// Rendering large cross products with high concurrency is the usual reason to
// reach for "cpu", "mem", and "mutex" modes.
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
