// Package trace records what the abigen pipeline is doing.
//
// Tracing is enabled from the command line:
//
//	abigen check --trace=- --trace-level=phase cloudabi.txt
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes every event immediately (file or stderr)
//   - RingTracer: keeps the last N events for a dump on failure
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// Events carry a scope: ScopeDriver for a whole command, ScopePass for a
// pipeline phase (read, parse, links, layout), ScopeFile for one
// specification file and ScopeDecl for a single declaration. LevelPhase
// emits driver and pass events, LevelDetail adds files and LevelDebug
// adds declarations.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "parse", trace.ParentFrom(ctx))
//	defer span.End("")
//	ctx = trace.WithParent(ctx, span.ID())
package trace
