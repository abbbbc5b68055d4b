// Package content produces the optional markdown digest of a captured
// page, for agents that want readable context next to the node tree.
package content

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// Digester converts page HTML to markdown. Safe for reuse across captures.
type Digester struct {
	conv *converter.Converter
}

// NewDigester creates a Digester with the standard plugin set.
func NewDigester() *Digester {
	return &Digester{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Digest converts HTML to markdown. pageURL resolves relative links.
func (d *Digester) Digest(html, pageURL string) (string, error) {
	if html == "" {
		return "", nil
	}
	result, err := d.conv.ConvertString(html, converter.WithDomain(pageURL))
	if err != nil {
		return "", fmt.Errorf("content: convert: %w", err)
	}
	return strings.TrimSpace(result), nil
}
