// Package stopwords provides the process-wide stopword set used by the
// analyzer to drop common words from extracted page tags. The set is
// loaded exactly once, from a newline-delimited file, and is read-only
// for the remainder of the process.
package stopwords

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"sync"
	"unicode/utf8"
)

// DefaultPath is used when no collaborator-supplied path is set.
const DefaultPath = "stop-words.txt"

var (
	once    sync.Once
	loadErr error
	set     map[string]struct{}
)

// Load reads path into the process-wide stopword set. It must be called
// before the first call to IsStopword (typically at startup); subsequent
// calls are no-ops regardless of path, matching the original's
// at-most-once load guard. A non-nil error means the file is missing or
// not valid UTF-8 — this is a startup invariant the caller is expected to
// treat as fatal, per the spec's error handling policy.
func Load(path string) error {
	once.Do(func() {
		set, loadErr = load(path)
	})
	return loadErr
}

// IsStopword reports whether word (expected already-lowercased) is a
// stopword. If Load was never called, it loads DefaultPath first so a
// single first caller still gets a consistent, idempotent initialization.
// A missing file at this point is treated as having no stopwords, since
// by the time IsStopword runs the startup-time fatal check has already
// had its chance to run via Load.
func IsStopword(word string) bool {
	_ = Load(DefaultPath)
	_, ok := set[word]
	return ok
}

func load(path string) (map[string]struct{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stopwords: failed to open %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("stopwords: %s contains invalid UTF-8", path)
	}

	res := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		res[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("stopwords: failed to read %s: %w", path, err)
	}

	return res, nil
}
