package registry

import (
	"regexp"
	"sort"
	"strings"
)

var (
	wikiLinkRe = regexp.MustCompile(`\[\[([^\[\]|]+)(?:\|[^\[\]]*)?\]\]`)
	mdLinkRe   = regexp.MustCompile(`\]\(([^)\s]+\.md)\)`)
)

// ScanReferences extracts names of other content items referenced in a
// markdown body. Two forms are recognized: [[wiki-style]] links and
// standard markdown links targeting a relative .md file. External URLs
// are ignored.
func ScanReferences(body string) []string {
	seen := make(map[string]bool)

	for _, m := range wikiLinkRe.FindAllStringSubmatch(body, -1) {
		name := strings.TrimSpace(m[1])
		if name != "" {
			seen[name] = true
		}
	}
	for _, m := range mdLinkRe.FindAllStringSubmatch(body, -1) {
		target := m[1]
		if strings.Contains(target, "://") {
			continue
		}
		name := refName(target)
		if name != "" {
			seen[name] = true
		}
	}

	refs := make([]string, 0, len(seen))
	for name := range seen {
		refs = append(refs, name)
	}
	sort.Strings(refs)
	return refs
}

// refName reduces a relative link target to a bare item name.
func refName(target string) string {
	target = strings.TrimSuffix(target, ".md")
	if i := strings.LastIndex(target, "/"); i >= 0 {
		target = target[i+1:]
	}
	return target
}
