package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem exposes the filesystem queries used during path resolution.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	Abs(path string) (string, error)
	Getwd() (string, error)
}

// OSFileSystem implements FileSystem using the operating system primitives.
type OSFileSystem struct{}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads file contents.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Abs resolves an absolute path.
func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// Getwd reports the process working directory.
func (OSFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

// IsDirectory reports whether path exists and is a directory.
func IsDirectory(fileSystem FileSystem, path string) bool {
	fileInfo, statError := fileSystem.Stat(path)
	return statError == nil && fileInfo.IsDir()
}

// IsRegularFile reports whether path exists and is a regular file.
func IsRegularFile(fileSystem FileSystem, path string) bool {
	fileInfo, statError := fileSystem.Stat(path)
	return statError == nil && fileInfo.Mode().IsRegular()
}

// Exists reports whether any entry exists at path.
func Exists(fileSystem FileSystem, path string) bool {
	_, statError := fileSystem.Stat(path)
	return statError == nil
}
