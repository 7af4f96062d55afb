package mapscanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MapEntry represents a directory of maps found in the data directory
type MapEntry struct {
	Name string   // Display name (directory name)
	Dir  string   // Directory path relative to the data directory
	Maps []string // List of available map files
}

// Path returns the path of one of the entry's maps below dataPath
func (e MapEntry) Path(dataPath, mapFile string) string {
	return filepath.Join(dataPath, e.Dir, mapFile)
}

// ScanDataDirectory scans the data directory for map collections.
// Returns one MapEntry for each directory holding at least one map file.
func ScanDataDirectory(dataPath string) ([]MapEntry, error) {
	entries, err := os.ReadDir(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var collections []MapEntry

	for _, entry := range entries {
		// Skip non-directories
		if !entry.IsDir() {
			continue
		}

		// Skip special directories
		dirName := entry.Name()
		if dirName == "tilesets" || strings.HasPrefix(dirName, ".") {
			continue
		}

		maps, err := scanMaps(filepath.Join(dataPath, dirName))
		if err != nil {
			// Skip directories that can't be read
			continue
		}

		if len(maps) > 0 {
			collections = append(collections, MapEntry{
				Name: dirName,
				Dir:  dirName,
				Maps: maps,
			})
		}
	}

	return collections, nil
}

// FindMap returns the path of the first map named mapFile, or of the first
// map found at all when mapFile is empty
func FindMap(dataPath string, entries []MapEntry, mapFile string) (string, bool) {
	for _, e := range entries {
		for _, m := range e.Maps {
			if mapFile == "" || m == mapFile || strings.TrimSuffix(m, filepath.Ext(m)) == mapFile {
				return e.Path(dataPath, m), true
			}
		}
	}
	return "", false
}

// scanMaps finds all .json map files in a directory
func scanMaps(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var maps []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasSuffix(strings.ToLower(name), ".json") {
			// Skip tile set files
			if name == "tileset.json" {
				continue
			}
			maps = append(maps, name)
		}
	}

	sort.Strings(maps)
	return maps, nil
}
