// Package http exposes the terminal service over REST.
//
// Routes:
//   - GET    /                      service banner
//   - GET    /health                session count and pty availability
//   - GET    /terminals             live sessions
//   - POST   /terminals             spawn a shell
//   - GET    /terminals/:id         one session with a process sample
//   - POST   /terminals/:id/input   write keystrokes
//   - POST   /terminals/:id/resize  change the window size
//   - DELETE /terminals/:id         terminate a shell
//   - GET    /fs/list               directory listing
//   - GET    /system/info           host information
//
// Output is never returned here; it is pushed over the WebSocket surface.
package http
