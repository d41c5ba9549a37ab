package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultPath is the URL list read when no path is given
const DefaultPath = "urls.txt"

// Read returns the non-blank lines of r, trimmed, in order
func Read(r io.Reader) ([]string, error) {
	urls := make([]string, 0)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading url list: %w", err)
	}

	return urls, nil
}

// Load reads the URL list stored at path
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening url list: %w", err)
	}
	defer f.Close()

	return Read(f)
}
