// Package filesystem lists directories for the terminal's file explorer.
//
// Listings are read straight from the host filesystem:
//   - depth 1 reads a single directory
//   - deeper listings walk concurrently with fastwalk
//   - an optional doublestar pattern filters entries by relative path
//   - files can be tagged with a sniffed mime type
//
// Failures carry the DIRECTORY_READ_ERROR code so the display surface can
// report them next to the directory it tried to open.
package filesystem
