// Package analyzer extracts a bag of terms and a set of outgoing links
// from a raw document. Analyze is a pure function: given the same bytes
// and source URL it always produces the same result, and it never
// fails — malformed input degrades to whatever could be extracted,
// per the spec's error-handling policy for this component.
//
// Extraction is regex-based rather than DOM-based on purpose: the
// crawler has to tolerate arbitrary, malformed HTML, and a full parser
// would choke on exactly the documents this system is most likely to
// encounter in the wild.
package analyzer

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/TheArchitect4855/ksearch/internal/stopwords"
	"github.com/TheArchitect4855/ksearch/internal/urlparse"
)

var (
	reInnerText     = regexp.MustCompile(`(?:^|>)([^<]+)`)
	reWordRun       = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	reStripSpecials = regexp.MustCompile(`[^\s\p{L}\p{N}_]+`)
	reMetaTag       = regexp.MustCompile(`<meta[^>]*>`)
	reMetaContent   = regexp.MustCompile(`content="([^"]*)"`)
	reAbsoluteURL   = regexp.MustCompile(`https?://[A-Za-z0-9\-._~:/?#&\[\]@!$'()*+,;=%]+`)
	reRootRelative  = regexp.MustCompile(`/[A-Za-z0-9\-._~:/?&@!$+=%]+>?`)
)

// Document is the result of analyzing one page: a deduplicated,
// deterministically-ordered bag of terms and set of outgoing links.
type Document struct {
	Tags  []string
	Links []string
}

// Analyze extracts tags and links from raw document bytes fetched from
// sourceURL. It never returns an error; on malformed input it simply
// extracts as much as it can.
func Analyze(doc []byte, sourceURL string) *Document {
	source := string(doc)

	decoded := html.UnescapeString(source)
	lowered := strings.ToLower(decoded)
	lowered = strings.ReplaceAll(lowered, "\r", " ")
	lowered = strings.ReplaceAll(lowered, "\n", " ")

	tags := extractTags(lowered)
	for k := range extractMetaKeywords(lowered) {
		tags[k] = struct{}{}
	}

	links := extractLinks(source, sourceURL)

	return &Document{
		Tags:  sortedKeys(tags),
		Links: sortedKeys(links),
	}
}

// extractTags implements §4.2 steps 2-6 over the document's inner text:
// take each run of text outside markup (from the start or a '>' up to
// the next '<'), strip any residual non-word non-space characters,
// tokenize into word runs, and drop stopwords. Tag and attribute names
// never become tags.
func extractTags(lowered string) map[string]struct{} {
	tags := make(map[string]struct{})

	for _, m := range reInnerText.FindAllStringSubmatch(lowered, -1) {
		stripped := reStripSpecials.ReplaceAllString(m[1], "")
		for _, word := range reWordRun.FindAllString(stripped, -1) {
			if stopwords.IsStopword(word) {
				continue
			}
			tags[word] = struct{}{}
		}
	}

	return tags
}

// extractMetaKeywords implements §4.2 step 7: <meta name="keywords">
// content is comma-split and added verbatim, bypassing the stopword
// filter.
func extractMetaKeywords(lowered string) map[string]struct{} {
	keywords := make(map[string]struct{})

	for _, tag := range reMetaTag.FindAllString(lowered, -1) {
		if !strings.Contains(tag, `name="keywords"`) {
			continue
		}

		m := reMetaContent.FindStringSubmatch(tag)
		if m == nil {
			continue
		}

		for _, k := range strings.Split(m[1], ",") {
			keywords[strings.TrimSpace(k)] = struct{}{}
		}
	}

	return keywords
}

// extractLinks implements §4.2's link extraction: absolute http(s)
// literals added verbatim, and root-relative paths resolved against the
// source URL's protocol and host.
func extractLinks(source, sourceURL string) map[string]struct{} {
	links := make(map[string]struct{})

	parts, ok := urlparse.Split(sourceURL)
	if !ok {
		return links
	}

	for _, u := range reAbsoluteURL.FindAllString(source, -1) {
		links[trimTrailingSlash(u)] = struct{}{}
	}

	for _, l := range reRootRelative.FindAllString(source, -1) {
		if strings.HasPrefix(l, "//") || strings.HasSuffix(l, ">") {
			continue
		}
		absolute := parts.Protocol + "://" + parts.Host + l
		links[trimTrailingSlash(absolute)] = struct{}{}
	}

	return links
}

func trimTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s[:len(s)-1]
	}
	return s
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
