// Package ws streams live previews over a WebSocket.
//
// A client compiles once and then asks for frames; each rendered frame is
// pushed as its own message so a player can start drawing before the whole
// selection is done. A new render request, or an explicit cancel, stops the
// render in progress.
//
// Message Types (Client → Server):
//   - compile: {source, composition}
//   - render: {frames} against the last compilation, or {source, frames}
//   - cancel: stop the render in progress
//   - ping: keep-alive
//
// Message Types (Server → Client):
//   - system: connection accepted, carries the stream ID
//   - compiled: compilation outcome and diagnostic
//   - frame: one rendered frame
//   - complete: render finished
//   - cancelled: render stopped before its last frame
//   - pong, error
//
// Every reply echoes the request_id of the message it answers.
//
// Example Usage:
//
//	handler := ws.NewHandler(previewService, metrics, logger)
//	router.GET("/stream", handler.HandleConnection)
package ws
