// Package system reports host information for the terminal view: platform,
// user directories, the shell that new terminals will run and whether the
// pseudo-terminal facility is usable.
package system
