package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// User folder names below the home directory
const (
	Documents = "Documents"
	Downloads = "Downloads"
	Desktop   = "Desktop"
)

// User holds the well known folders of the current user
type User struct {
	Home      string `json:"home"`
	Documents string `json:"documents"`
	Downloads string `json:"downloads"`
	Desktop   string `json:"desktop"`
}

// ForHome returns the folder layout below home
func ForHome(home string) User {
	return User{
		Home:      home,
		Documents: filepath.Join(home, Documents),
		Downloads: filepath.Join(home, Downloads),
		Desktop:   filepath.Join(home, Desktop),
	}
}

// Current returns the folder layout of the user running the process
func Current() (User, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return User{}, err
	}
	return ForHome(home), nil
}

// Expand replaces a leading "~" with home
func Expand(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(home, path[2:])
	}
	return path
}
