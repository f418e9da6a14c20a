// Package ws is the display surface for the terminal view.
//
// One WebSocket connection is one surface. Connecting attaches it to the
// session manager, replacing any earlier connection; disconnecting detaches
// it. Shells keep running while no surface is attached and their output is
// dropped.
//
// Message Types (Client → Server):
//   - create-terminal: Spawn a shell, optionally in cwd
//   - destroy-terminal: Terminate a shell
//   - write-to-terminal: Send keystrokes
//   - resize-terminal: Change the window size
//   - read-directory: List a directory for the file explorer
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - <request type>: Reply carrying the request_id and success flag
//   - terminal-data: Output from a shell
//   - terminal-closed: A shell has exited
//   - pong: Reply to ping
//   - error: Malformed or unknown message
//
// Example Usage:
//
//	handler := ws.NewHandler(manager, lister, ws.DefaultConfig(), logger)
//	router.GET("/terminal", handler.HandleConnection)
package ws
