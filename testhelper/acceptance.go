package testhelper

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/shibukawa/epubcfi/testdata"
)

// Acceptance test directories: 3 digits followed by a name
var acceptanceDirPattern = regexp.MustCompile(`^[0-9]{3}_.*$`)

// GetAcceptanceTestDirs returns a list of acceptance test directories
func GetAcceptanceTestDirs() ([]string, error) {
	entries, err := fs.ReadDir(testdata.GetFS(), "acceptancetests")
	if err != nil {
		return nil, fmt.Errorf("failed to read acceptancetests directory: %w", err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() && acceptanceDirPattern.MatchString(entry.Name()) {
			dirs = append(dirs, path.Join("acceptancetests", entry.Name()))
		}
	}

	return dirs, nil
}

// ReadTestFile reads a file from the embedded test data
func ReadTestFile(filePath string) ([]byte, error) {
	return fs.ReadFile(testdata.GetFS(), filePath)
}

// IsErrorTest checks if a test is an error test
func IsErrorTest(testPath string) bool {
	return strings.HasSuffix(path.Base(testPath), "_err")
}
