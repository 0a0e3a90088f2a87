package richtext

import (
	"encoding/json"
	"fmt"
	"io"
)

// Source node kinds.
const (
	NodeDocument        = "document"
	NodeParagraph       = "paragraph"
	NodeHeading1        = "heading-1"
	NodeHeading2        = "heading-2"
	NodeHeading3        = "heading-3"
	NodeHeading4        = "heading-4"
	NodeHeading5        = "heading-5"
	NodeHeading6        = "heading-6"
	NodeUnorderedList   = "unordered-list"
	NodeOrderedList     = "ordered-list"
	NodeListItem        = "list-item"
	NodeQuote           = "blockquote"
	NodeHR              = "hr"
	NodeTable           = "table"
	NodeTableRow        = "table-row"
	NodeTableCell       = "table-cell"
	NodeTableHeaderCell = "table-header-cell"
	NodeHyperlink       = "hyperlink"
	NodeEmbeddedEntry   = "embedded-entry-block"
	NodeEmbeddedAsset   = "embedded-asset-block"
	NodeInlineEntry     = "embedded-entry-inline"
	NodeText            = "text"
)

// Mark kinds shared by both schemas.
const (
	MarkBold      = "bold"
	MarkItalic    = "italic"
	MarkUnderline = "underline"
	MarkCode      = "code"
	MarkLink      = "link"
)

// SourceNode is a node of a source rich-text document. Text leaves use Value
// and Marks; every other kind uses Data and Content.
type SourceNode struct {
	NodeType string                 `json:"nodeType"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Content  []*SourceNode          `json:"content,omitempty"`
	Value    string                 `json:"value,omitempty"`
	Marks    []Mark                 `json:"marks,omitempty"`
}

// Mark is a character-level annotation on a source text leaf.
type Mark struct {
	Type string `json:"type"`
}

type sourceTextJSON struct {
	NodeType string                 `json:"nodeType"`
	Value    string                 `json:"value"`
	Marks    []Mark                 `json:"marks"`
	Data     map[string]interface{} `json:"data"`
}

type sourceBlockJSON struct {
	NodeType string                 `json:"nodeType"`
	Data     map[string]interface{} `json:"data"`
	Content  []*SourceNode          `json:"content"`
}

// MarshalJSON always emits data/content (or value/marks/data for text) so
// that documents round-trip through stores that expect the full shape.
func (n SourceNode) MarshalJSON() ([]byte, error) {
	data := n.Data
	if data == nil {
		data = map[string]interface{}{}
	}

	if n.NodeType == NodeText {
		marks := n.Marks
		if marks == nil {
			marks = []Mark{}
		}
		return json.Marshal(sourceTextJSON{
			NodeType: n.NodeType,
			Value:    n.Value,
			Marks:    marks,
			Data:     data,
		})
	}

	content := n.Content
	if content == nil {
		content = []*SourceNode{}
	}
	return json.Marshal(sourceBlockJSON{
		NodeType: n.NodeType,
		Data:     data,
		Content:  content,
	})
}

// IsText reports whether the node is a text leaf.
func (n *SourceNode) IsText() bool { return n != nil && n.NodeType == NodeText }

// HasMark reports whether a text leaf carries the given mark.
func (n *SourceNode) HasMark(mark string) bool {
	if n == nil {
		return false
	}
	for _, m := range n.Marks {
		if m.Type == mark {
			return true
		}
	}
	return false
}

// Clone deep-copies the node, including Data and nested content.
func (n *SourceNode) Clone() *SourceNode {
	if n == nil {
		return nil
	}
	out := &SourceNode{
		NodeType: n.NodeType,
		Data:     deepCopyMap(n.Data),
		Value:    n.Value,
	}
	if n.Marks != nil {
		out.Marks = make([]Mark, len(n.Marks))
		copy(out.Marks, n.Marks)
	}
	if n.Content != nil {
		out.Content = make([]*SourceNode, len(n.Content))
		for i, c := range n.Content {
			out.Content[i] = c.Clone()
		}
	}
	return out
}

// DecodeSource parses a JSON source document.
func DecodeSource(r io.Reader) (*SourceNode, error) {
	var n SourceNode
	if err := json.NewDecoder(r).Decode(&n); err != nil {
		return nil, fmt.Errorf("failed to decode source document: %w", err)
	}
	return &n, nil
}

// ParseSource parses a JSON source document from bytes.
func ParseSource(data []byte) (*SourceNode, error) {
	var n SourceNode
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to parse source document: %w", err)
	}
	return &n, nil
}

// NewDocument creates a document root holding the given blocks.
func NewDocument(blocks ...*SourceNode) *SourceNode {
	return NewBlock(NodeDocument, blocks...)
}

// NewBlock creates a container node of any non-text kind.
func NewBlock(nodeType string, content ...*SourceNode) *SourceNode {
	if content == nil {
		content = []*SourceNode{}
	}
	return &SourceNode{
		NodeType: nodeType,
		Data:     map[string]interface{}{},
		Content:  content,
	}
}

// NewParagraph creates a paragraph.
func NewParagraph(content ...*SourceNode) *SourceNode {
	return NewBlock(NodeParagraph, content...)
}

// NewHeading creates a heading of the given level. Levels outside 1..6
// become level 1.
func NewHeading(level int, content ...*SourceNode) *SourceNode {
	return NewBlock(HeadingNodeType(level), content...)
}

// NewText creates a text leaf.
func NewText(value string, marks ...string) *SourceNode {
	ms := make([]Mark, 0, len(marks))
	for _, m := range marks {
		ms = append(ms, Mark{Type: m})
	}
	return &SourceNode{
		NodeType: NodeText,
		Data:     map[string]interface{}{},
		Value:    value,
		Marks:    ms,
	}
}

// NewHyperlink creates a hyperlink wrapping text leaves.
func NewHyperlink(uri string, content ...*SourceNode) *SourceNode {
	n := NewBlock(NodeHyperlink, content...)
	n.Data["uri"] = uri
	return n
}

// NewEmbeddedEntryBlock creates a block-level entry embed.
func NewEmbeddedEntryBlock(id string) *SourceNode {
	return &SourceNode{
		NodeType: NodeEmbeddedEntry,
		Data:     linkData(id, LinkTypeEntry),
		Content:  []*SourceNode{},
	}
}

// NewEmbeddedAssetBlock creates a block-level asset embed.
func NewEmbeddedAssetBlock(id string) *SourceNode {
	return &SourceNode{
		NodeType: NodeEmbeddedAsset,
		Data:     linkData(id, LinkTypeAsset),
		Content:  []*SourceNode{},
	}
}

// NewEmbeddedEntryInline creates an inline entry embed.
func NewEmbeddedEntryInline(id string) *SourceNode {
	return &SourceNode{
		NodeType: NodeInlineEntry,
		Data:     linkData(id, LinkTypeEntry),
		Content:  []*SourceNode{},
	}
}

// CreateEmptyDocument returns a fresh document holding one empty paragraph.
func CreateEmptyDocument() *SourceNode {
	return NewDocument(NewParagraph())
}

func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i := range t {
			out[i] = deepCopyValue(t[i])
		}
		return out
	default:
		return t
	}
}
