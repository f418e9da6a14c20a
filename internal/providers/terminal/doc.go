// Package terminal owns the shell sessions behind the terminal view.
//
// A Manager spawns pseudo-terminal backed shells, forwards keystrokes to
// them and relays their output and exit to a single attached display
// surface. Sessions are addressed by ids of the form
// terminal_<unix millis>_<random>.
//
// Lifecycle per session:
//
//	Create -> Running -> Terminated
//
// Running ends either through Destroy or because the shell exits on its own.
// Both paths converge on one finish routine: the session leaves the registry
// and exactly one terminal-closed event is emitted. Output for a session is
// delivered in the order the shell produced it, always before its
// terminal-closed event, and never after Destroy has returned.
//
// Shell policy:
//   - windows: powershell.exe, bare interactive shell
//   - everything else: /bin/zsh when $SHELL mentions zsh, otherwise /bin/bash
//
// Spawned shells inherit the server environment with TERM=xterm-256color
// and COLORTERM=truecolor forced.
package terminal
