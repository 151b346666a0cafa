package render

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/usestring/formjson-mcp/pkg/jsonvalue"
)

// Message renders a plain status message such as "Please configure control".
func Message(text string) string {
	div := element(atom.Div)
	div.AppendChild(textNode(text))
	return renderNode(div)
}

// JSONBlock renders a document as indented JSON inside a pre element.
func JSONBlock(v jsonvalue.Value) string {
	pre := element(atom.Pre)
	pre.AppendChild(textNode(jsonvalue.Indent(v)))
	return renderNode(pre)
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func renderNode(n *html.Node) string {
	var sb strings.Builder
	// Rendering into a strings.Builder cannot fail for well-formed trees.
	_ = html.Render(&sb, n)
	return sb.String()
}
