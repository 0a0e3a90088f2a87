package richtext

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Target node kinds.
const (
	TypeDoc            = "doc"
	TypeParagraph      = "paragraph"
	TypeHeading        = "heading"
	TypeBulletList     = "bulletList"
	TypeOrderedList    = "orderedList"
	TypeListItem       = "listItem"
	TypeBlockquote     = "blockquote"
	TypeHorizontalRule = "horizontalRule"
	TypeTable          = "table"
	TypeTableRow       = "tableRow"
	TypeTableCell      = "tableCell"
	TypeTableHeader    = "tableHeader"
	TypeText           = "text"
	TypeEmbeddedEntry  = "embeddedEntry"
	TypeEmbeddedAsset  = "embeddedAsset"
	TypeInlineEntry    = "inlineEntry"
)

// TargetNode is a node of the editor JSON tree.
type TargetNode struct {
	Type    string                 `json:"type"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Content []*TargetNode          `json:"content,omitempty"`
	Text    string                 `json:"text,omitempty"`
	Marks   []TargetMark           `json:"marks,omitempty"`
}

// TargetMark is a formatting mark on an editor text node. Link marks carry
// attrs.href.
type TargetMark struct {
	Type  string                 `json:"type"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}

type targetJSON struct {
	Type    string                 `json:"type"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Content *[]*TargetNode         `json:"content,omitempty"`
	Text    *string                `json:"text,omitempty"`
	Marks   []TargetMark           `json:"marks,omitempty"`
}

// MarshalJSON emits content only when it is non-nil (so an empty container
// encodes as [] and a horizontal rule has no content key) and always emits
// text for text nodes.
func (n TargetNode) MarshalJSON() ([]byte, error) {
	out := targetJSON{
		Type:  n.Type,
		Attrs: n.Attrs,
		Marks: n.Marks,
	}
	if n.Content != nil {
		content := n.Content
		out.Content = &content
	}
	if n.Type == TypeText {
		text := n.Text
		out.Text = &text
	}
	return json.Marshal(out)
}

// IsText reports whether the node is a text leaf.
func (n *TargetNode) IsText() bool { return n != nil && n.Type == TypeText }

// Mark returns the first mark of the given type.
func (n *TargetNode) Mark(markType string) (TargetMark, bool) {
	if n == nil {
		return TargetMark{}, false
	}
	for _, m := range n.Marks {
		if m.Type == markType {
			return m, true
		}
	}
	return TargetMark{}, false
}

// HasMark reports whether the node carries a mark of the given type.
func (n *TargetNode) HasMark(markType string) bool {
	_, ok := n.Mark(markType)
	return ok
}

// Clone deep-copies the node.
func (n *TargetNode) Clone() *TargetNode {
	if n == nil {
		return nil
	}
	out := &TargetNode{
		Type:  n.Type,
		Attrs: deepCopyMap(n.Attrs),
		Text:  n.Text,
	}
	if n.Marks != nil {
		out.Marks = make([]TargetMark, len(n.Marks))
		for i, m := range n.Marks {
			out.Marks[i] = TargetMark{Type: m.Type, Attrs: deepCopyMap(m.Attrs)}
		}
	}
	if n.Content != nil {
		out.Content = make([]*TargetNode, len(n.Content))
		for i, c := range n.Content {
			out.Content[i] = c.Clone()
		}
	}
	return out
}

// ParseTarget parses an editor JSON tree from bytes.
func ParseTarget(data []byte) (*TargetNode, error) {
	var n TargetNode
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to parse target document: %w", err)
	}
	return &n, nil
}

// NewTargetDoc creates an editor root node.
func NewTargetDoc(content ...*TargetNode) *TargetNode {
	return NewTargetNode(TypeDoc, content...)
}

// NewTargetNode creates an editor container node with non-nil content.
func NewTargetNode(nodeType string, content ...*TargetNode) *TargetNode {
	if content == nil {
		content = []*TargetNode{}
	}
	return &TargetNode{Type: nodeType, Content: content}
}

// NewTargetText creates an editor text node. Marks are left nil when none
// are given.
func NewTargetText(text string, marks ...string) *TargetNode {
	n := &TargetNode{Type: TypeText, Text: text}
	for _, m := range marks {
		n.Marks = append(n.Marks, TargetMark{Type: m})
	}
	return n
}

// LinkMark builds a link mark pointing at href.
func LinkMark(href string) TargetMark {
	return TargetMark{Type: MarkLink, Attrs: map[string]interface{}{"href": href}}
}

func getAttrString(attrs map[string]interface{}, key string) string {
	if attrs == nil {
		return ""
	}
	s, _ := attrs[key].(string)
	return s
}

func getAttrInt(attrs map[string]interface{}, key string) (int, bool) {
	if attrs == nil {
		return 0, false
	}
	switch v := attrs[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		// Only canonical integer text: "2" but not " 2" or "02".
		i, err := strconv.Atoi(v)
		if err != nil || strconv.Itoa(i) != v {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
