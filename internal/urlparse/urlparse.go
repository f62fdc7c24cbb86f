// Package urlparse holds the canonical URL validation and parsing
// regexes shared by the analyzer, indexer, and fetcher. Keeping a
// single compiled copy of each mirrors the original implementation's
// lazy_static regexes in main.rs.
package urlparse

import "regexp"

// Validate matches a well-formed http(s) URL as accepted by the fetch
// boundary (§6).
var Validate = regexp.MustCompile(`^https?://[A-Za-z0-9\-._~:/?#&\[\]@!$'()*+,;=%]+$`)

// Parse captures protocol (group 1), host (group 2), and an optional
// path (group 3) out of a URL (§6).
var Parse = regexp.MustCompile(`(https?)://([A-Za-z0-9\-._~:\[\]@!$'()*+,;=%]+)(/[A-Za-z0-9\-._~:/\[\]@!$'()*+,;=?#&%]+)?`)

// Parts is the decomposition of a URL into the three fields the catalog
// keys pages on.
type Parts struct {
	Protocol string
	Host     string
	Path     string
}

// Split parses rawURL into its protocol, host, and path, defaulting the
// path to "/" when absent, per §3's Page invariant.
func Split(rawURL string) (Parts, bool) {
	m := Parse.FindStringSubmatch(rawURL)
	if m == nil {
		return Parts{}, false
	}

	path := m[3]
	if path == "" {
		path = "/"
	}

	return Parts{
		Protocol: m[1],
		Host:     m[2],
		Path:     path,
	}, true
}
