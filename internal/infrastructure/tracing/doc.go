/*
Package tracing provides lightweight request tracing.

# Overview

Every HTTP request gets a span. Trace and span identifiers are ULIDs and are
propagated through the X-Trace-ID and X-Span-ID headers, so a client call
made from a traced context shares its trace with the server-side
compilation.

Finished spans are handed to a buffered collector that logs them through
zap; spans that fail are logged at warn level. Spans that do not fit the
buffer are dropped and counted in Stats, which /health reports.

# Usage

	tracer := tracing.New("animforge", logger.Logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "compile")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

	// Outgoing requests
	tracing.Inject(ctx, req.Header)
*/
package tracing
