package richtext

// Link types carried in data.target.sys.linkType.
const (
	LinkTypeEntry = "Entry"
	LinkTypeAsset = "Asset"
)

var headingNodeTypes = [...]string{
	NodeHeading1, NodeHeading2, NodeHeading3,
	NodeHeading4, NodeHeading5, NodeHeading6,
}

// containerToTarget maps source containers that become target containers
// of the same shape. Headings are handled separately because of the level
// attribute.
var containerToTarget = map[string]string{
	NodeDocument:        TypeDoc,
	NodeParagraph:       TypeParagraph,
	NodeUnorderedList:   TypeBulletList,
	NodeOrderedList:     TypeOrderedList,
	NodeListItem:        TypeListItem,
	NodeQuote:           TypeBlockquote,
	NodeTable:           TypeTable,
	NodeTableRow:        TypeTableRow,
	NodeTableCell:       TypeTableCell,
	NodeTableHeaderCell: TypeTableHeader,
}

var containerToSource = map[string]string{
	TypeDoc:            NodeDocument,
	TypeParagraph:      NodeParagraph,
	TypeBulletList:     NodeUnorderedList,
	TypeOrderedList:    NodeOrderedList,
	TypeListItem:       NodeListItem,
	TypeBlockquote:     NodeQuote,
	TypeHorizontalRule: NodeHR,
	TypeTable:          NodeTable,
	TypeTableRow:       NodeTableRow,
	TypeTableCell:      NodeTableCell,
	TypeTableHeader:    NodeTableHeaderCell,
}

var sourceToTargetMarks = map[string]string{
	MarkBold:      MarkBold,
	MarkItalic:    MarkItalic,
	MarkUnderline: MarkUnderline,
	MarkCode:      MarkCode,
}

var targetToSourceMarks = map[string]string{
	MarkBold:      MarkBold,
	MarkItalic:    MarkItalic,
	MarkUnderline: MarkUnderline,
	MarkCode:      MarkCode,
}

// HeadingNodeType returns the source heading kind for a level, falling back
// to level 1 outside 1..6.
func HeadingNodeType(level int) string {
	if level < 1 || level > 6 {
		return NodeHeading1
	}
	return headingNodeTypes[level-1]
}

// HeadingLevel returns the level of a source heading kind.
func HeadingLevel(nodeType string) (int, bool) {
	for i, t := range headingNodeTypes {
		if t == nodeType {
			return i + 1, true
		}
	}
	return 0, false
}

// TargetType returns the target kind a source kind maps to. Hyperlinks and
// embeds have no one-to-one counterpart and report false.
func TargetType(nodeType string) (string, bool) {
	if _, ok := HeadingLevel(nodeType); ok {
		return TypeHeading, true
	}
	switch nodeType {
	case NodeHR:
		return TypeHorizontalRule, true
	case NodeText:
		return TypeText, true
	}
	t, ok := containerToTarget[nodeType]
	return t, ok
}

// SourceType returns the source kind a target kind maps to. Headings map to
// level 1 because the level lives in attrs.
func SourceType(nodeType string) (string, bool) {
	switch nodeType {
	case TypeHeading:
		return NodeHeading1, true
	case TypeText:
		return NodeText, true
	}
	t, ok := containerToSource[nodeType]
	return t, ok
}

// TargetMarkType maps a source mark kind to its target kind.
func TargetMarkType(mark string) (string, bool) {
	t, ok := sourceToTargetMarks[mark]
	return t, ok
}

// SourceMarkType maps a target mark kind to its source kind. Link marks are
// never mapped.
func SourceMarkType(mark string) (string, bool) {
	t, ok := targetToSourceMarks[mark]
	return t, ok
}
