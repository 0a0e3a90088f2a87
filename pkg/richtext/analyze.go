package richtext

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// EmbeddedContent lists the ids referenced by a document, each list in
// first-seen order without duplicates.
type EmbeddedContent struct {
	Entries       []string `json:"entries"`
	Assets        []string `json:"assets"`
	InlineEntries []string `json:"inlineEntries"`
}

// Stats summarises a document.
type Stats struct {
	Words      int             `json:"words"`
	Characters int             `json:"characters"`
	Blocks     int             `json:"blocks"`
	PlainText  string          `json:"plainText"`
	Embedded   EmbeddedContent `json:"embedded"`
}

// IsValidDocument is a shallow guard: v must be a document root whose content
// is an array. It accepts *SourceNode, SourceNode, decoded JSON maps and raw
// JSON bytes.
func IsValidDocument(v interface{}) bool {
	switch doc := v.(type) {
	case nil:
		return false
	case *SourceNode:
		return doc != nil && doc.NodeType == NodeDocument && doc.Content != nil
	case SourceNode:
		return doc.NodeType == NodeDocument && doc.Content != nil
	case map[string]interface{}:
		if doc["nodeType"] != NodeDocument {
			return false
		}
		_, ok := doc["content"].([]interface{})
		return ok
	case json.RawMessage:
		return isValidJSONDocument(doc)
	case []byte:
		return isValidJSONDocument(doc)
	default:
		return false
	}
}

func isValidJSONDocument(raw []byte) bool {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return false
	}
	return IsValidDocument(m)
}

var degradableHeadings = map[string]bool{
	NodeHeading1: true,
	NodeHeading2: true,
	NodeHeading3: true,
	NodeHeading4: true,
	NodeHeading5: true,
	NodeHeading6: true,
}

// Containers whose sanitized children are lifted into the parent when the
// container itself is not allowed.
var degradableContainers = map[string]bool{
	NodeQuote:         true,
	NodeUnorderedList: true,
	NodeOrderedList:   true,
	NodeListItem:      true,
}

var inlineNodeTypes = map[string]bool{
	NodeText:        true,
	NodeHyperlink:   true,
	NodeInlineEntry: true,
}

// Sanitize returns a copy of doc restricted to the allowed node kinds and
// marks. A disallowed heading becomes a paragraph with the same sanitized
// children. A disallowed quote, list or list item is replaced by its
// sanitized blocks, so the items of a list become sibling paragraphs instead
// of paragraphs nested in paragraphs; loose inline children are wrapped in a
// paragraph. Other disallowed nodes are dropped. The root and text leaves are
// always kept.
func Sanitize(doc *SourceNode, allowedNodeTypes, allowedMarks []string) *SourceNode {
	if doc == nil {
		return nil
	}
	s := sanitizer{
		nodes: toSet(allowedNodeTypes),
		marks: toSet(allowedMarks),
	}
	if doc.NodeType == NodeText {
		return s.node(doc)[0]
	}
	return &SourceNode{
		NodeType: doc.NodeType,
		Data:     copyData(doc.Data),
		Content:  s.children(doc),
	}
}

type sanitizer struct {
	nodes map[string]bool
	marks map[string]bool
}

// node returns the replacement for n: usually one node, several when a
// container is lifted, none when n is dropped.
func (s sanitizer) node(n *SourceNode) []*SourceNode {
	if n.NodeType == NodeText {
		marks := make([]Mark, 0, len(n.Marks))
		for _, m := range n.Marks {
			if s.marks[m.Type] {
				marks = append(marks, m)
			}
		}
		return []*SourceNode{{
			NodeType: NodeText,
			Data:     copyData(n.Data),
			Value:    n.Value,
			Marks:    marks,
		}}
	}

	switch {
	case s.nodes[n.NodeType]:
		return []*SourceNode{{
			NodeType: n.NodeType,
			Data:     copyData(n.Data),
			Content:  s.children(n),
		}}
	case degradableHeadings[n.NodeType]:
		return []*SourceNode{NewParagraph(s.children(n)...)}
	case degradableContainers[n.NodeType]:
		return liftBlocks(s.children(n))
	default:
		return nil
	}
}

func (s sanitizer) children(n *SourceNode) []*SourceNode {
	out := make([]*SourceNode, 0, len(n.Content))
	for _, child := range n.Content {
		if child == nil {
			continue
		}
		out = append(out, s.node(child)...)
	}
	return out
}

// liftBlocks keeps block nodes as they are and gathers each run of inline
// nodes into one paragraph. An empty container still leaves a paragraph.
func liftBlocks(children []*SourceNode) []*SourceNode {
	var out []*SourceNode
	var inline []*SourceNode
	flush := func() {
		if len(inline) > 0 {
			out = append(out, NewParagraph(inline...))
			inline = nil
		}
	}
	for _, c := range children {
		if inlineNodeTypes[c.NodeType] {
			inline = append(inline, c)
			continue
		}
		flush()
		out = append(out, c)
	}
	flush()
	if len(out) == 0 {
		return []*SourceNode{NewParagraph()}
	}
	return out
}

// ExtractPlainText concatenates every text value in document order without
// separators between blocks.
func ExtractPlainText(doc *SourceNode) string {
	var b strings.Builder
	walk(doc, func(n *SourceNode) {
		if n.NodeType == NodeText {
			b.WriteString(n.Value)
		}
	})
	return b.String()
}

// CountWords counts whitespace-separated tokens of the plain text.
func CountWords(doc *SourceNode) int {
	return len(strings.Fields(ExtractPlainText(doc)))
}

// FindEmbeddedContent collects the ids of block entry, block asset and inline
// entry embeds. Embeds without an id are skipped.
func FindEmbeddedContent(doc *SourceNode) EmbeddedContent {
	out := EmbeddedContent{
		Entries:       []string{},
		Assets:        []string{},
		InlineEntries: []string{},
	}
	seen := map[string]map[string]bool{
		NodeEmbeddedEntry: {},
		NodeEmbeddedAsset: {},
		NodeInlineEntry:   {},
	}

	walk(doc, func(n *SourceNode) {
		ids, ok := seen[n.NodeType]
		if !ok {
			return
		}
		id := linkTargetID(n.Data)
		if id == "" || ids[id] {
			return
		}
		ids[id] = true
		switch n.NodeType {
		case NodeEmbeddedEntry:
			out.Entries = append(out.Entries, id)
		case NodeEmbeddedAsset:
			out.Assets = append(out.Assets, id)
		case NodeInlineEntry:
			out.InlineEntries = append(out.InlineEntries, id)
		}
	})
	return out
}

// Analyze gathers plain text, counts and embed references in one value.
func Analyze(doc *SourceNode) Stats {
	text := ExtractPlainText(doc)
	stats := Stats{
		Words:      len(strings.Fields(text)),
		Characters: utf8.RuneCountInString(text),
		PlainText:  text,
		Embedded:   FindEmbeddedContent(doc),
	}
	if doc != nil {
		for _, c := range doc.Content {
			if c != nil {
				stats.Blocks++
			}
		}
	}
	return stats
}

func walk(n *SourceNode, visit func(*SourceNode)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Content {
		walk(c, visit)
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}

func copyData(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return map[string]interface{}{}
	}
	return deepCopyMap(data)
}
