package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiscoveredFile represents a SQL file found during filesystem traversal
type DiscoveredFile struct {
	Path         string    // Absolute path to file
	RelativePath string    // Path relative to search root
	ModTime      time.Time // Last modification time
}

// Discover recursively finds all SQL files in the given directory
func Discover(rootPath string) ([]DiscoveredFile, error) {
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", absRoot)
		}
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absRoot)
	}

	var files []DiscoveredFile

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Skip directories we can't access
			if os.IsPermission(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(path), ".sql") {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}

		files = append(files, DiscoveredFile{
			Path:         path,
			RelativePath: relPath,
			ModTime:      info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return files, nil
}

/*
 * FindModel locates the directory under rootPath containing the model
 * file <name>.sql and returns that directory.  Split outputs are written
 * next to the model, so the directory is what callers need.  The first
 * match in walk order wins.
 */
func FindModel(rootPath, name string) (string, error) {
	files, err := Discover(rootPath)
	if err != nil {
		return "", err
	}

	want := strings.ToLower(name + ".sql")
	for _, f := range files {
		if strings.ToLower(filepath.Base(f.Path)) == want {
			return filepath.Dir(f.Path), nil
		}
	}
	return "", fmt.Errorf("model %s not found under %s", name, rootPath)
}

// ListSQL returns the names of the .sql files directly inside dir,
// without descending into subdirectories.
func ListSQL(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
