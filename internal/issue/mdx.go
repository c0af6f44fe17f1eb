package issue

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterFence = "---"

// EncodeMDX renders the issue as an MDX document: YAML frontmatter between
// --- fences followed by the markdown body.
func (i *Issue) EncodeMDX() (string, error) {
	meta, err := yaml.Marshal(&i.Meta)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	return fmt.Sprintf("%s\n%s%s\n\n%s", frontmatterFence, meta, frontmatterFence, i.Body), nil
}

// ParseMDX parses an MDX document into an issue. The document must start
// with a --- fenced YAML frontmatter block.
func ParseMDX(content string) (*Issue, error) {
	rest, ok := strings.CutPrefix(content, frontmatterFence+"\n")
	if !ok {
		return nil, fmt.Errorf("invalid MDX: missing frontmatter")
	}

	idx := strings.Index(rest, "\n"+frontmatterFence)
	if idx < 0 {
		return nil, fmt.Errorf("invalid MDX: unterminated frontmatter")
	}
	yamlText := rest[:idx]

	body := rest[idx+len("\n"+frontmatterFence):]
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimPrefix(body, "\n")

	var meta Metadata
	if err := yaml.Unmarshal([]byte(yamlText), &meta); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta.ID <= 0 {
		return nil, fmt.Errorf("invalid MDX: missing or non-positive id")
	}

	return &Issue{Meta: meta, Body: body}, nil
}
