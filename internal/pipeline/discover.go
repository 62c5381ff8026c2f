package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/backmassage/labplot/internal/naming"
)

// ErrNoInputFiles is returned when the data directory holds no channel CSVs.
var ErrNoInputFiles = errors.New("no files found matching " + naming.FilePattern)

// Discover lists the channel CSVs directly inside dataDir (subdirectories
// are not searched) and returns their paths sorted lexicographically for a
// deterministic processing and color order.
func Discover(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !naming.MatchesPattern(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dataDir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
