// Package trace records what the rustdex pipeline is doing.
//
// A Tracer receives begin/end events for nested spans. Spans are grouped by
// scope (driver, pass, module, node) and the configured Level decides which
// scopes reach the sink:
//
//	off     nothing
//	error   nothing but explicit error points
//	phase   driver and pass spans (load, parse, pass1, pass2, export)
//	detail  plus one span per file or unit
//	debug   everything
//
// Sinks: StreamTracer writes text or NDJSON to a writer, SlogTracer forwards
// to a *slog.Logger, MultiTracer fans out. The tracer travels in a
// context.Context:
//
//	ctx = trace.WithTracer(ctx, tr)
//	sp := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "parse", 0)
//	defer sp.End("")
package trace
