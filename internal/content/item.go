package content

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Item represents one content file (a rule, skill, or workflow)
type Item struct {
	Name         string            `json:"name"`
	Kind         Kind              `json:"kind"`
	Description  string            `json:"description,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	Dependencies []string          `json:"dependencies,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	// RelPath is the forward-slash path relative to the content root.
	RelPath string `json:"rel_path"`
	// Path is the absolute path the item was loaded from.
	Path string `json:"path"`
	// Content is the full file content including frontmatter.
	Content string `json:"content"`
	// Body is the content with frontmatter stripped.
	Body       string    `json:"-"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Frontmatter holds the YAML metadata block a content file may start with.
type Frontmatter struct {
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description"`
	Tags         []string          `yaml:"tags"`
	Dependencies []string          `yaml:"dependencies"`
	Metadata     map[string]string `yaml:"metadata"`
}

const frontmatterDelim = "---"

// ParseFrontmatter splits content into its frontmatter and body. Content
// without a frontmatter block returns a zero Frontmatter and the full
// content as body.
func ParseFrontmatter(content string) (Frontmatter, string, error) {
	var fm Frontmatter

	if !strings.HasPrefix(content, frontmatterDelim+"\n") && content != frontmatterDelim {
		return fm, content, nil
	}

	rest := strings.TrimPrefix(content, frontmatterDelim+"\n")
	end := strings.Index(rest, "\n"+frontmatterDelim)
	if end < 0 {
		// Unterminated block; treat the whole file as body.
		return fm, content, nil
	}

	block := rest[:end]
	body := rest[end+len("\n"+frontmatterDelim):]
	body = strings.TrimPrefix(body, "\n")

	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return Frontmatter{}, content, fmt.Errorf("parse frontmatter: %w", err)
	}
	return fm, body, nil
}

// NewItem builds an Item from raw file content, deriving the name from
// frontmatter when present and from the file name otherwise.
func NewItem(kind Kind, relPath, absPath string, raw []byte, modified time.Time) Item {
	content := string(raw)
	fm, body, err := ParseFrontmatter(content)
	if err != nil {
		// Malformed frontmatter is tolerated; the file still syncs as-is.
		body = content
	}

	name := fm.Name
	if name == "" {
		name = baseName(relPath)
	}

	return Item{
		Name:         name,
		Kind:         kind,
		Description:  fm.Description,
		Tags:         fm.Tags,
		Dependencies: fm.Dependencies,
		Metadata:     fm.Metadata,
		RelPath:      relPath,
		Path:         absPath,
		Content:      content,
		Body:         body,
		ModifiedAt:   modified,
	}
}

func baseName(relPath string) string {
	base := relPath
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, ".md")
}
