package richtext

import "regexp"

var inlineEntryPattern = regexp.MustCompile(`^\[Inline Entry: ([^\]]+)\]$`)

// ToSource builds a source document from an editor tree. Unknown node kinds
// degrade to empty paragraphs and out-of-range heading levels become level 1.
func (c *Converter) ToSource(node *TargetNode) (*SourceNode, error) {
	if node == nil {
		return nil, ErrNilDocument
	}
	return c.reverseNode(node, "", 0)
}

func (c *Converter) reverseNode(n *TargetNode, path string, depth int) (*SourceNode, error) {
	if err := c.checkDepth(path, depth); err != nil {
		return nil, err
	}

	switch n.Type {
	case TypeHeading:
		level, ok := getAttrInt(n.Attrs, "level")
		if !ok || level < 1 || level > 6 {
			c.logger().Debug(module, "Heading level out of range, using level 1", map[string]interface{}{
				"level": n.Attrs["level"],
				"path":  path,
			})
		}
		content, err := c.reverseChildren(n, path, depth)
		if err != nil {
			return nil, err
		}
		return &SourceNode{
			NodeType: HeadingNodeType(level),
			Data:     map[string]interface{}{},
			Content:  content,
		}, nil

	case TypeText:
		return c.reverseText(n, path), nil

	case TypeEmbeddedEntry:
		return c.reverseEmbed(n, "entryId", NewEmbeddedEntryBlock, path), nil

	case TypeEmbeddedAsset:
		return c.reverseEmbed(n, "assetId", NewEmbeddedAssetBlock, path), nil

	case TypeInlineEntry:
		return c.reverseEmbed(n, "entryId", NewEmbeddedEntryInline, path), nil
	}

	if nodeType, ok := containerToSource[n.Type]; ok {
		content, err := c.reverseChildren(n, path, depth)
		if err != nil {
			return nil, err
		}
		return &SourceNode{
			NodeType: nodeType,
			Data:     map[string]interface{}{},
			Content:  content,
		}, nil
	}

	c.logger().Warn(module, "Unknown target node type", map[string]interface{}{
		"type": n.Type,
		"path": path,
	})
	return NewParagraph(), nil
}

func (c *Converter) reverseChildren(n *TargetNode, path string, depth int) ([]*SourceNode, error) {
	out := make([]*SourceNode, 0, len(n.Content))
	for i, child := range n.Content {
		p := childPath(path, i)
		if child == nil {
			c.logger().Warn(module, "Skipping nil target node", map[string]interface{}{"path": p})
			continue
		}
		node, err := c.reverseNode(child, p, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

func (c *Converter) reverseText(n *TargetNode, path string) *SourceNode {
	marks := make([]Mark, 0, len(n.Marks))
	for _, m := range n.Marks {
		if m.Type == MarkLink {
			continue
		}
		t, ok := targetToSourceMarks[m.Type]
		if !ok {
			c.logger().Debug(module, "Dropping unknown target mark", map[string]interface{}{
				"mark": m.Type,
				"path": path,
			})
			continue
		}
		marks = append(marks, Mark{Type: t})
	}

	leaf := &SourceNode{
		NodeType: NodeText,
		Data:     map[string]interface{}{},
		Value:    n.Text,
		Marks:    marks,
	}

	if link, ok := n.Mark(MarkLink); ok {
		return NewHyperlink(getAttrString(link.Attrs, "href"), leaf)
	}

	if n.HasMark(MarkBold) {
		if m := inlineEntryPattern.FindStringSubmatch(n.Text); m != nil {
			return NewEmbeddedEntryInline(m[1])
		}
	}

	return leaf
}

func (c *Converter) reverseEmbed(n *TargetNode, idAttr string, build func(string) *SourceNode, path string) *SourceNode {
	id := getAttrString(n.Attrs, idAttr)
	if id == "" {
		c.logger().Warn(module, "Embed node without id", map[string]interface{}{
			"type": n.Type,
			"path": path,
		})
		return NewParagraph()
	}
	return build(id)
}
