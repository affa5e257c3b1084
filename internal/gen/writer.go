package gen

import (
	"fmt"
	"os"
	"path/filepath"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFiles writes each file into its own directory, or into outputDir
// when the file has none, creating directories as needed. It returns the
// written paths.
func WriteFiles(files []GeneratedFile, outputDir string) ([]string, error) {
	paths := make([]string, 0, len(files))

	for _, file := range files {
		dir := file.Dir
		if dir == "" {
			dir = outputDir
		}

		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return paths, fmt.Errorf("creating directory %s: %w", dir, err)
		}

		p := filepath.Join(dir, file.Filename)
		if err := os.WriteFile(p, file.Content, filePerm); err != nil {
			return paths, fmt.Errorf("writing file %s: %w", file.Filename, err)
		}

		paths = append(paths, p)
	}

	return paths, nil
}
