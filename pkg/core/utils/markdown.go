// Package utils holds small document helpers shared by the scenario loader,
// the report renderer and the commentary writer.
package utils

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CleanMarkdown strips surrounding whitespace and an outer code fence
// (```markdown ... ``` or ``` ... ```), which model output often carries.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") && len(cleaned) >= 6 {
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimPrefix(cleaned, "```md")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

// ValidateMarkdown reports whether input parses into a document with at
// least one block. Goldmark accepts almost anything, so this mainly rejects
// empty or whitespace-only text.
func ValidateMarkdown(input string) bool {
	doc := goldmark.DefaultParser().Parse(text.NewReader([]byte(input)))
	if doc == nil {
		return false
	}
	blocks := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
			blocks++
		}
		return ast.WalkContinue, nil
	})
	return blocks > 0
}
