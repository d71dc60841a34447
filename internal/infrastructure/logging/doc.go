// Package logging provides structured logging using uber/zap.
//
// Production loggers write JSON for machine parsing; development loggers
// write colored console lines. Compilations, renders and stream sessions
// log with the CompileID, StreamID, RequestID and Frame fields, plus
// outcome, kind, stage and duration, so a single request can be followed
// through the pipeline.
//
//	logger, err := logging.New(logging.FromConfig(cfg.Logging))
//	logger.Named("preview").Warn("compilation failed", logging.CompileID(id), zap.Error(err))
package logging
