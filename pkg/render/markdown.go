package render

import (
	"fmt"
	"html"
	"strings"

	"rich-text-bridge/pkg/richtext"
)

// Renderer handles source document to Markdown conversion
type Renderer struct{}

// NewRenderer creates a new renderer instance
func NewRenderer() *Renderer {
	return &Renderer{}
}

var defaultRenderer = NewRenderer()

// Markdown renders doc with the default renderer.
func Markdown(doc *richtext.SourceNode) string {
	return defaultRenderer.Markdown(doc)
}

// ParseContent renders a raw JSON source document as Markdown. Content that
// is not a valid document is returned unchanged.
func ParseContent(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") || !richtext.IsValidDocument([]byte(trimmed)) {
		return content
	}

	doc, err := richtext.ParseSource([]byte(trimmed))
	if err != nil {
		return content
	}
	return defaultRenderer.Markdown(doc)
}

// Markdown converts a source document to GitHub flavoured Markdown.
func (r *Renderer) Markdown(doc *richtext.SourceNode) string {
	if doc == nil {
		return ""
	}

	var sb strings.Builder
	r.walkNode(doc, &sb, 0)

	out := strings.TrimRight(sb.String(), "\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

func (r *Renderer) walkNode(node *richtext.SourceNode, sb *strings.Builder, depth int) {
	if node == nil {
		return
	}

	if level, ok := richtext.HeadingLevel(node.NodeType); ok {
		sb.WriteString(strings.Repeat("#", level) + " ")
		r.walkChildren(node, sb, depth)
		sb.WriteString("\n")
		return
	}

	switch node.NodeType {
	case richtext.NodeDocument:
		for _, child := range node.Content {
			r.walkNode(child, sb, depth)
			sb.WriteString("\n")
		}

	case richtext.NodeParagraph:
		r.walkChildren(node, sb, depth)
		sb.WriteString("\n")

	case richtext.NodeText:
		r.handleText(node, sb)

	case richtext.NodeHyperlink:
		r.handleLink(node, sb)

	case richtext.NodeUnorderedList, richtext.NodeOrderedList:
		r.handleList(node, sb, depth)

	// List items are handled by handleList so that markers stay correct
	case richtext.NodeListItem:
		r.walkChildren(node, sb, depth)

	case richtext.NodeQuote:
		r.handleQuote(node, sb)

	case richtext.NodeHR:
		sb.WriteString("---\n")

	case richtext.NodeTable:
		r.handleTable(node, sb)

	case richtext.NodeEmbeddedEntry:
		r.handleBlockEmbed(node, sb, "data-entry-id", "Embedded Entry")

	case richtext.NodeEmbeddedAsset:
		r.handleBlockEmbed(node, sb, "data-asset-id", "Embedded Asset")

	case richtext.NodeInlineEntry:
		id := html.EscapeString(embedID(node))
		sb.WriteString(fmt.Sprintf(`<span data-entry-id="%s">[Inline Entry: %s]</span>`, id, id))

	default:
		r.walkChildren(node, sb, depth)
	}
}

func (r *Renderer) walkChildren(node *richtext.SourceNode, sb *strings.Builder, depth int) {
	for _, child := range node.Content {
		r.walkNode(child, sb, depth)
	}
}

func (r *Renderer) handleText(node *richtext.SourceNode, sb *strings.Builder) {
	text := node.Value
	if strings.TrimSpace(text) == "" {
		sb.WriteString(text)
		return
	}

	// Emphasis markers must hug the text, so surrounding spaces go outside
	core := strings.TrimSpace(text)
	lead := text[:strings.Index(text, core)]
	trail := text[len(lead)+len(core):]

	isBold := node.HasMark(richtext.MarkBold)
	isItalic := node.HasMark(richtext.MarkItalic)
	isUnderline := node.HasMark(richtext.MarkUnderline)
	isCode := node.HasMark(richtext.MarkCode)

	sb.WriteString(lead)

	// Apply wrappers (Code > Bold > Italic > Underline)
	fence := ""
	if isCode {
		fence = codeFence(core)
		sb.WriteString(fence)
	}
	if isBold {
		sb.WriteString("**")
	}
	if isItalic {
		sb.WriteString("_")
	}
	if isUnderline {
		sb.WriteString("<u>")
	}

	if isCode {
		sb.WriteString(codeSpanBody(core))
	} else {
		sb.WriteString(escapeText(core))
	}

	if isUnderline {
		sb.WriteString("</u>")
	}
	if isItalic {
		sb.WriteString("_")
	}
	if isBold {
		sb.WriteString("**")
	}
	if isCode {
		sb.WriteString(fence)
	}

	sb.WriteString(trail)
}

// markdownEscaper backslash-escapes the punctuation that would otherwise turn
// literal text into Markdown or raw HTML. Only the renderer's own tags reach
// goldmark unescaped.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
	`&`, `\&`,
	`#`, `\#`,
	`~`, `\~`,
	`|`, `\|`,
)

func escapeText(s string) string {
	return markdownEscaper.Replace(s)
}

// codeFence is one backtick longer than the longest backtick run in s.
func codeFence(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	return strings.Repeat("`", longest+1)
}

// codeSpanBody pads content that starts or ends with a backtick so the fence
// stays unambiguous.
func codeSpanBody(s string) string {
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		return " " + s + " "
	}
	return s
}

func (r *Renderer) handleLink(node *richtext.SourceNode, sb *strings.Builder) {
	uri, _ := node.Data["uri"].(string)

	sb.WriteString("[")
	r.walkChildren(node, sb, 0)
	sb.WriteString(fmt.Sprintf("](%s)", uri))
}

func (r *Renderer) handleList(node *richtext.SourceNode, sb *strings.Builder, depth int) {
	ordered := node.NodeType == richtext.NodeOrderedList
	index := 1
	indent := strings.Repeat("  ", depth)

	for _, item := range node.Content {
		if item == nil || item.NodeType != richtext.NodeListItem {
			continue
		}

		sb.WriteString(indent)
		if ordered {
			sb.WriteString(fmt.Sprintf("%d. ", index))
			index++
		} else {
			sb.WriteString("- ")
		}

		lineOpen, lineEmpty := true, true
		for _, child := range item.Content {
			if child == nil {
				continue
			}
			if child.NodeType == richtext.NodeUnorderedList || child.NodeType == richtext.NodeOrderedList {
				if lineOpen {
					sb.WriteString("\n")
					lineOpen = false
				}
				r.handleList(child, sb, depth+1)
				continue
			}

			if !lineOpen {
				sb.WriteString(indent + "  ")
				lineOpen, lineEmpty = true, true
			}
			if !lineEmpty {
				sb.WriteString(" ")
			}
			if child.NodeType == richtext.NodeParagraph {
				r.walkChildren(child, sb, depth)
			} else {
				r.walkNode(child, sb, depth)
			}
			lineEmpty = false
		}
		if lineOpen {
			sb.WriteString("\n")
		}
	}
}

func (r *Renderer) handleQuote(node *richtext.SourceNode, sb *strings.Builder) {
	var inner strings.Builder
	for i, child := range node.Content {
		if i > 0 {
			inner.WriteString("\n")
		}
		r.walkNode(child, &inner, 0)
	}

	body := strings.TrimRight(inner.String(), "\n")
	for _, line := range strings.Split(body, "\n") {
		if line == "" {
			sb.WriteString(">\n")
			continue
		}
		sb.WriteString("> " + line + "\n")
	}
}

func (r *Renderer) handleTable(node *richtext.SourceNode, sb *strings.Builder) {
	// 1. Extract grid data
	var rows [][]string
	maxCols := 0

	for _, row := range node.Content {
		if row == nil || row.NodeType != richtext.NodeTableRow {
			continue
		}

		var rowData []string
		for _, cell := range row.Content {
			if cell == nil {
				continue
			}
			var cellSb strings.Builder
			for _, content := range cell.Content {
				r.walkNode(content, &cellSb, 0)
			}
			// Newlines break Markdown tables; pipes are already escaped as text
			rowData = append(rowData, strings.TrimSpace(strings.ReplaceAll(cellSb.String(), "\n", " ")))
		}
		rows = append(rows, rowData)
		if len(rowData) > maxCols {
			maxCols = len(rowData)
		}
	}

	if len(rows) == 0 || maxCols == 0 {
		return
	}

	// 2. Render Markdown table, first row as header
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i := 0; i < maxCols; i++ {
			if i < len(cells) {
				sb.WriteString(" " + cells[i] + " |")
			} else {
				sb.WriteString("  |")
			}
		}
		sb.WriteString("\n")
	}

	writeRow(rows[0])
	sb.WriteString("|")
	for i := 0; i < maxCols; i++ {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
}

func (r *Renderer) handleBlockEmbed(node *richtext.SourceNode, sb *strings.Builder, attr, label string) {
	id := html.EscapeString(embedID(node))
	sb.WriteString(fmt.Sprintf(`<div %s="%s">[%s: %s]</div>`, attr, id, label, id))
	sb.WriteString("\n")
}

func embedID(node *richtext.SourceNode) string {
	target, _ := node.Data["target"].(map[string]interface{})
	sys, _ := target["sys"].(map[string]interface{})
	id, _ := sys["id"].(string)
	if id == "" {
		return "Unknown"
	}
	return id
}
