package model

import "time"

// FileInfo is a file found while scanning the audio root.
type FileInfo struct {
	FullPath string
	ModTime  time.Time
	Name     string
	Dir      string
}
