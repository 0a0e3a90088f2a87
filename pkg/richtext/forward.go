package richtext

import (
	"fmt"
	"strings"
)

// ToTarget builds a fresh editor tree from a source document. Unknown node
// kinds degrade to empty paragraphs; only nil input and excessive nesting
// are reported as errors.
func (c *Converter) ToTarget(doc *SourceNode) (*TargetNode, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	nodes, err := c.forwardNode(doc, "", 0)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return NewTargetNode(TypeParagraph), nil
	}
	return nodes[0], nil
}

func (c *Converter) forwardNode(n *SourceNode, path string, depth int) ([]*TargetNode, error) {
	if err := c.checkDepth(path, depth); err != nil {
		return nil, err
	}

	if level, ok := HeadingLevel(n.NodeType); ok {
		content, err := c.forwardChildren(n, path, depth)
		if err != nil {
			return nil, err
		}
		return one(&TargetNode{
			Type:    TypeHeading,
			Attrs:   map[string]interface{}{"level": level},
			Content: content,
		}), nil
	}

	if targetType, ok := containerToTarget[n.NodeType]; ok {
		content, err := c.forwardChildren(n, path, depth)
		if err != nil {
			return nil, err
		}
		return one(&TargetNode{Type: targetType, Content: content}), nil
	}

	switch n.NodeType {
	case NodeHR:
		return one(&TargetNode{Type: TypeHorizontalRule}), nil

	case NodeText:
		return one(&TargetNode{
			Type:  TypeText,
			Text:  n.Value,
			Marks: c.forwardMarks(n.Marks, path),
		}), nil

	case NodeHyperlink:
		return one(c.forwardHyperlink(n, path)), nil

	case NodeEmbeddedEntry:
		return one(c.forwardBlockEmbed(n, TypeEmbeddedEntry, "Embedded Entry")), nil

	case NodeEmbeddedAsset:
		return one(c.forwardBlockEmbed(n, TypeEmbeddedAsset, "Embedded Asset")), nil

	case NodeInlineEntry:
		return one(c.forwardInlineEntry(n)), nil
	}

	c.logger().Warn(module, "Unknown source node type", map[string]interface{}{
		"nodeType": n.NodeType,
		"path":     path,
	})
	return one(NewTargetNode(TypeParagraph)), nil
}

func (c *Converter) forwardChildren(n *SourceNode, path string, depth int) ([]*TargetNode, error) {
	out := make([]*TargetNode, 0, len(n.Content))
	for i, child := range n.Content {
		p := childPath(path, i)
		if child == nil {
			c.logger().Warn(module, "Skipping nil source node", map[string]interface{}{"path": p})
			continue
		}
		nodes, err := c.forwardNode(child, p, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}

func (c *Converter) forwardMarks(marks []Mark, path string) []TargetMark {
	var out []TargetMark
	for _, m := range marks {
		t, ok := sourceToTargetMarks[m.Type]
		if !ok {
			c.logger().Debug(module, "Dropping unknown source mark", map[string]interface{}{
				"mark": m.Type,
				"path": path,
			})
			continue
		}
		out = append(out, TargetMark{Type: t})
	}
	return out
}

// forwardHyperlink collapses a hyperlink into one text node. Marks found on
// the descendant text leaves are kept (deduplicated, first seen first) and
// the link mark goes last.
func (c *Converter) forwardHyperlink(n *SourceNode, path string) *TargetNode {
	var (
		text  strings.Builder
		marks []TargetMark
		seen  = map[string]bool{}
	)

	var collect func(node *SourceNode)
	collect = func(node *SourceNode) {
		if node == nil {
			return
		}
		if node.NodeType == NodeText {
			text.WriteString(node.Value)
			for _, m := range c.forwardMarks(node.Marks, path) {
				if seen[m.Type] {
					continue
				}
				seen[m.Type] = true
				marks = append(marks, m)
			}
			return
		}
		for _, child := range node.Content {
			collect(child)
		}
	}
	for _, child := range n.Content {
		collect(child)
	}

	uri, _ := n.Data["uri"].(string)
	return &TargetNode{
		Type:  TypeText,
		Text:  text.String(),
		Marks: append(marks, LinkMark(uri)),
	}
}

func (c *Converter) forwardBlockEmbed(n *SourceNode, nativeType, label string) *TargetNode {
	id := linkTargetID(n.Data)
	if c.NativeEmbeds && id != "" {
		var attrs map[string]interface{}
		if nativeType == TypeEmbeddedAsset {
			attrs = AssetAttrsFromSource(assetFromLinkData(n.Data)).Map()
		} else {
			attrs = EntryAttrsFromSource(entryFromLinkData(n.Data)).Map()
		}
		return &TargetNode{Type: nativeType, Attrs: attrs}
	}
	return NewTargetNode(TypeParagraph, placeholder(label, id))
}

func (c *Converter) forwardInlineEntry(n *SourceNode) *TargetNode {
	id := linkTargetID(n.Data)
	if c.NativeEmbeds && id != "" {
		attrs := EntryAttrsFromSource(entryFromLinkData(n.Data))
		return &TargetNode{Type: TypeInlineEntry, Attrs: attrs.InlineMap()}
	}
	return placeholder("Inline Entry", id)
}

func placeholder(label, id string) *TargetNode {
	if id == "" {
		id = "Unknown"
	}
	return NewTargetText(fmt.Sprintf("[%s: %s]", label, id), MarkBold)
}

func one(n *TargetNode) []*TargetNode { return []*TargetNode{n} }
