package gen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFiles writes all generated files into their package directories.
func WriteFiles(files []GeneratedFile) error {
	for _, file := range files {
		outputPath := filepath.Join(file.Dir, file.Filename)

		err := os.WriteFile(outputPath, file.Content, filePerm)
		if err != nil {
			return fmt.Errorf("writing file %s: %w", outputPath, err)
		}
	}

	return nil
}

// RemoveStale deletes files in dir that carry the generated prefix but are
// not part of keep. Only files listed in built are candidates: a file whose
// //go:build line excludes it from this build belongs to declarations the
// load never saw. It returns the removed paths.
func RemoveStale(dir, prefix string, keep []GeneratedFile, built []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	kept := make(map[string]bool, len(keep))
	for _, f := range keep {
		kept[f.Filename] = true
	}

	inBuild := make(map[string]bool, len(built))
	for _, name := range built {
		inBuild[name] = true
	}

	var removed []string

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || kept[name] || !inBuild[name] || !IsGenerated(name, prefix) {
			continue
		}

		p := filepath.Join(dir, name)
		if err := os.Remove(p); err != nil {
			return removed, fmt.Errorf("removing %s: %w", p, err)
		}

		removed = append(removed, p)
	}

	return removed, nil
}

// IsGenerated matches <prefix>.go and <prefix>.<slug>.go.
func IsGenerated(name, prefix string) bool {
	return name == prefix+".go" || (strings.HasPrefix(name, prefix+".") && strings.HasSuffix(name, ".go"))
}

// Write stores the files of every package without errors and removes the
// generated files of the current build that the run no longer produces.
func Write(res *Result, prefix string) ([]string, error) {
	var removed []string

	for _, p := range res.Packages {
		if p.Diagnostics.HasErrors() {
			continue
		}

		if err := WriteFiles(p.Files); err != nil {
			return removed, err
		}

		stale, err := RemoveStale(p.Dir, prefix, p.Files, p.Built)
		removed = append(removed, stale...)

		if err != nil {
			return removed, err
		}
	}

	return removed, nil
}
