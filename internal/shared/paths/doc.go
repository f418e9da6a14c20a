// Package paths resolves the user's well known folders.
//
// # Usage
//
//	user, err := paths.Current()
//	docs := user.Documents // $HOME/Documents
//
//	dir := paths.Expand("~/projects", user.Home)
package paths
