package richtext

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
	debugs   []string
}

func (l *recordingLogger) Debug(_, message string, _ map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugs = append(l.debugs, message)
}

func (l *recordingLogger) Warn(_, message string, _ map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, message)
}

func TestToTarget_Paragraph(t *testing.T) {
	doc := NewDocument(NewParagraph(NewText("Hello world")))

	got, err := ToTarget(doc)
	require.NoError(t, err)

	assert.Equal(t, NewTargetDoc(NewTargetNode(TypeParagraph, NewTargetText("Hello world"))), got)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"Hello world"}]}]}`, string(raw))
}

func TestToTarget_Headings(t *testing.T) {
	for level := 1; level <= 6; level++ {
		doc := NewDocument(NewHeading(level, NewText("Title")))

		got, err := ToTarget(doc)
		require.NoError(t, err)
		require.Len(t, got.Content, 1)

		heading := got.Content[0]
		assert.Equal(t, TypeHeading, heading.Type)
		assert.Equal(t, level, heading.Attrs["level"])
	}
}

func TestToTarget_Marks(t *testing.T) {
	doc := NewDocument(NewParagraph(
		NewText("styled", MarkBold, MarkItalic, "superscript", MarkCode),
	))

	logger := &recordingLogger{}
	got, err := NewConverter(WithLogger(logger)).ToTarget(doc)
	require.NoError(t, err)

	text := got.Content[0].Content[0]
	assert.Equal(t, []TargetMark{{Type: MarkBold}, {Type: MarkItalic}, {Type: MarkCode}}, text.Marks)
	assert.Contains(t, logger.debugs, "Dropping unknown source mark")
}

func TestToTarget_HorizontalRuleHasNoContent(t *testing.T) {
	got, err := ToTarget(NewDocument(NewBlock(NodeHR)))
	require.NoError(t, err)

	raw, err := json.Marshal(got.Content[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"horizontalRule"}`, string(raw))
}

func TestToTarget_Hyperlink(t *testing.T) {
	tests := []struct {
		name      string
		link      *SourceNode
		wantText  string
		wantMarks []TargetMark
	}{
		{
			name:      "plain link",
			link:      NewHyperlink("https://example.com", NewText("Link text")),
			wantText:  "Link text",
			wantMarks: []TargetMark{LinkMark("https://example.com")},
		},
		{
			name:     "inner marks are carried",
			link:     NewHyperlink("https://example.com", NewText("Bold ", MarkBold), NewText("both", MarkItalic, MarkBold)),
			wantText: "Bold both",
			wantMarks: []TargetMark{
				{Type: MarkBold},
				{Type: MarkItalic},
				LinkMark("https://example.com"),
			},
		},
		{
			name:      "non-text children contribute nothing",
			link:      NewHyperlink("/a", NewText("x"), NewEmbeddedEntryInline("e1")),
			wantText:  "x",
			wantMarks: []TargetMark{LinkMark("/a")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToTarget(NewDocument(NewParagraph(tt.link)))
			require.NoError(t, err)

			para := got.Content[0]
			require.Len(t, para.Content, 1)
			assert.Equal(t, tt.wantText, para.Content[0].Text)
			assert.Equal(t, tt.wantMarks, para.Content[0].Marks)
		})
	}
}

func TestToTarget_LegacyEmbeds(t *testing.T) {
	doc := NewDocument(
		NewEmbeddedEntryBlock("e1"),
		NewEmbeddedAssetBlock("a1"),
		NewParagraph(NewEmbeddedEntryInline("i1")),
		NewBlock(NodeEmbeddedEntry),
	)

	got, err := ToTarget(doc)
	require.NoError(t, err)
	require.Len(t, got.Content, 4)

	assert.Equal(t, NewTargetNode(TypeParagraph, NewTargetText("[Embedded Entry: e1]", MarkBold)), got.Content[0])
	assert.Equal(t, NewTargetNode(TypeParagraph, NewTargetText("[Embedded Asset: a1]", MarkBold)), got.Content[1])
	assert.Equal(t, NewTargetText("[Inline Entry: i1]", MarkBold), got.Content[2].Content[0])
	assert.Equal(t, "[Embedded Entry: Unknown]", got.Content[3].Content[0].Text)
}

func TestToTarget_NativeEmbeds(t *testing.T) {
	entry := NewEmbeddedEntryBlock("e1")
	entry.Data["target"].(map[string]interface{})["fields"] = map[string]interface{}{"title": "Hero"}

	doc := NewDocument(
		entry,
		NewEmbeddedAssetBlock("a1"),
		NewParagraph(NewEmbeddedEntryInline("i1")),
	)

	got, err := NewConverter(WithNativeEmbeds(true)).ToTarget(doc)
	require.NoError(t, err)

	assert.Equal(t, TypeEmbeddedEntry, got.Content[0].Type)
	assert.Equal(t, "e1", got.Content[0].Attrs["entryId"])
	assert.Equal(t, "Hero", got.Content[0].Attrs["title"])
	assert.Nil(t, got.Content[0].Attrs["contentType"])

	assert.Equal(t, TypeEmbeddedAsset, got.Content[1].Type)
	assert.Equal(t, "a1", got.Content[1].Attrs["assetId"])

	inline := got.Content[2].Content[0]
	assert.Equal(t, TypeInlineEntry, inline.Type)
	assert.Equal(t, "i1", inline.Attrs["entryId"])
}

func TestToTarget_UnknownNodeDegrades(t *testing.T) {
	logger := &recordingLogger{}
	doc := NewDocument(
		NewParagraph(NewText("before")),
		NewBlock("custom-widget", NewText("lost")),
		NewParagraph(NewText("after")),
	)

	got, err := NewConverter(WithLogger(logger)).ToTarget(doc)
	require.NoError(t, err)
	require.Len(t, got.Content, 3)

	assert.Equal(t, NewTargetNode(TypeParagraph), got.Content[1])
	assert.Equal(t, "after", got.Content[2].Content[0].Text)
	assert.Equal(t, []string{"Unknown source node type"}, logger.warnings)
}

func TestToTarget_SkipsNilChildren(t *testing.T) {
	doc := NewDocument(nil, NewParagraph())

	got, err := ToTarget(doc)
	require.NoError(t, err)
	assert.Len(t, got.Content, 1)
}

func TestToSource_Heading(t *testing.T) {
	tests := []struct {
		name  string
		attrs map[string]interface{}
		want  string
	}{
		{name: "int level", attrs: map[string]interface{}{"level": 2}, want: NodeHeading2},
		{name: "json number level", attrs: map[string]interface{}{"level": float64(6)}, want: NodeHeading6},
		{name: "missing level", attrs: nil, want: NodeHeading1},
		{name: "level too high", attrs: map[string]interface{}{"level": 7}, want: NodeHeading1},
		{name: "level zero", attrs: map[string]interface{}{"level": 0}, want: NodeHeading1},
		{name: "fractional level", attrs: map[string]interface{}{"level": 2.5}, want: NodeHeading1},
		{name: "string level", attrs: map[string]interface{}{"level": "2"}, want: NodeHeading2},
		{name: "padded string level", attrs: map[string]interface{}{"level": " 2"}, want: NodeHeading1},
		{name: "zero padded string level", attrs: map[string]interface{}{"level": "02"}, want: NodeHeading1},
		{name: "string level too high", attrs: map[string]interface{}{"level": "9"}, want: NodeHeading1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &TargetNode{Type: TypeHeading, Attrs: tt.attrs, Content: []*TargetNode{NewTargetText("H")}}

			got, err := ToSource(NewTargetDoc(node))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Content[0].NodeType)
			assert.Equal(t, "H", got.Content[0].Content[0].Value)
		})
	}
}

func TestToSource_LinkMarkBuildsHyperlink(t *testing.T) {
	text := &TargetNode{
		Type:  TypeText,
		Text:  "Link text",
		Marks: []TargetMark{{Type: MarkBold}, LinkMark("https://example.com")},
	}

	got, err := ToSource(NewTargetDoc(NewTargetNode(TypeParagraph, text)))
	require.NoError(t, err)

	link := got.Content[0].Content[0]
	assert.Equal(t, NewHyperlink("https://example.com", NewText("Link text", MarkBold)), link)
	for _, m := range link.Content[0].Marks {
		assert.NotEqual(t, MarkLink, m.Type)
	}
}

func TestToSource_LinkWithoutHref(t *testing.T) {
	text := &TargetNode{Type: TypeText, Text: "x", Marks: []TargetMark{{Type: MarkLink}}}

	got, err := ToSource(text)
	require.NoError(t, err)
	assert.Equal(t, NodeHyperlink, got.NodeType)
	assert.Equal(t, "", got.Data["uri"])
}

func TestToSource_InlineEntryPattern(t *testing.T) {
	tests := []struct {
		name     string
		node     *TargetNode
		wantType string
		wantID   string
	}{
		{
			name:     "bold placeholder",
			node:     NewTargetText("[Inline Entry: i1]", MarkBold),
			wantType: NodeInlineEntry,
			wantID:   "i1",
		},
		{
			name:     "without bold stays text",
			node:     NewTargetText("[Inline Entry: i1]"),
			wantType: NodeText,
		},
		{
			name:     "surrounding text stays text",
			node:     NewTargetText("see [Inline Entry: i1]", MarkBold),
			wantType: NodeText,
		},
		{
			name:     "whitespace id is kept",
			node:     NewTargetText("[Inline Entry:  ]", MarkBold),
			wantType: NodeInlineEntry,
			wantID:   " ",
		},
		{
			name:     "empty id stays text",
			node:     NewTargetText("[Inline Entry: ]", MarkBold),
			wantType: NodeText,
		},
		{
			name:     "native inline node",
			node:     &TargetNode{Type: TypeInlineEntry, Attrs: map[string]interface{}{"entryId": "i2"}},
			wantType: NodeInlineEntry,
			wantID:   "i2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToSource(NewTargetDoc(NewTargetNode(TypeParagraph, tt.node)))
			require.NoError(t, err)

			node := got.Content[0].Content[0]
			assert.Equal(t, tt.wantType, node.NodeType)
			if tt.wantID != "" {
				assert.Equal(t, tt.wantID, linkTargetID(node.Data))
				assert.Equal(t, LinkTypeEntry, lookup(node.Data, "target", "sys", "linkType"))
				assert.Empty(t, node.Content)
			}
		})
	}
}

func TestToSource_NativeBlockEmbeds(t *testing.T) {
	logger := &recordingLogger{}
	tree := NewTargetDoc(
		&TargetNode{Type: TypeEmbeddedEntry, Attrs: map[string]interface{}{"entryId": "e1", "title": "x"}},
		&TargetNode{Type: TypeEmbeddedAsset, Attrs: map[string]interface{}{"assetId": "a1"}},
		&TargetNode{Type: TypeEmbeddedEntry, Attrs: map[string]interface{}{"entryId": nil}},
	)

	got, err := NewConverter(WithLogger(logger)).ToSource(tree)
	require.NoError(t, err)

	assert.Equal(t, NewEmbeddedEntryBlock("e1"), got.Content[0])
	assert.Equal(t, NewEmbeddedAssetBlock("a1"), got.Content[1])
	assert.Equal(t, NewParagraph(), got.Content[2])
	assert.Equal(t, []string{"Embed node without id"}, logger.warnings)
}

func TestToSource_UnknownTypeDegrades(t *testing.T) {
	logger := &recordingLogger{}
	tree := NewTargetDoc(NewTargetNode("mention", NewTargetText("@bob")))

	got, err := NewConverter(WithLogger(logger)).ToSource(tree)
	require.NoError(t, err)

	assert.Equal(t, NewDocument(NewParagraph()), got)
	assert.Equal(t, []string{"Unknown target node type"}, logger.warnings)
}

func TestRoundTrip_RepresentableContent(t *testing.T) {
	doc := NewDocument(
		NewHeading(1, NewText("Title")),
		NewHeading(4, NewText("Sub", MarkItalic)),
		NewParagraph(
			NewText("Plain "),
			NewText("bold", MarkBold),
			NewText(" and "),
			NewHyperlink("https://example.com", NewText("a link", MarkUnderline)),
		),
		NewBlock(NodeUnorderedList,
			NewBlock(NodeListItem, NewParagraph(NewText("one"))),
			NewBlock(NodeListItem, NewParagraph(NewText("two"))),
		),
		NewBlock(NodeOrderedList,
			NewBlock(NodeListItem, NewParagraph(NewText("first"))),
		),
		NewBlock(NodeQuote, NewParagraph(NewText("quoted", MarkItalic, MarkUnderline))),
		NewBlock(NodeHR),
		NewBlock(NodeTable,
			NewBlock(NodeTableRow,
				NewBlock(NodeTableHeaderCell, NewParagraph(NewText("h"))),
			),
			NewBlock(NodeTableRow,
				NewBlock(NodeTableCell, NewParagraph(NewText("c"))),
			),
		),
		NewParagraph(),
	)

	target, err := ToTarget(doc)
	require.NoError(t, err)

	back, err := ToSource(target)
	require.NoError(t, err)

	assert.Equal(t, doc, back)
}

func TestRoundTrip_ThroughJSON(t *testing.T) {
	doc := NewDocument(NewHeading(2, NewText("Heading")), NewParagraph(NewHyperlink("/x", NewText("x"))))

	target, err := ToTarget(doc)
	require.NoError(t, err)

	raw, err := json.Marshal(target)
	require.NoError(t, err)
	decoded, err := ParseTarget(raw)
	require.NoError(t, err)

	back, err := ToSource(decoded)
	require.NoError(t, err)

	want, err := json.Marshal(doc)
	require.NoError(t, err)
	got, err := json.Marshal(back)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestRoundTrip_NativeEmbeds(t *testing.T) {
	doc := NewDocument(
		NewEmbeddedEntryBlock("e1"),
		NewEmbeddedAssetBlock("a1"),
		NewParagraph(NewText("see "), NewEmbeddedEntryInline("i1")),
	)
	c := NewConverter(WithNativeEmbeds(true))

	target, err := c.ToTarget(doc)
	require.NoError(t, err)
	back, err := c.ToSource(target)
	require.NoError(t, err)

	assert.Equal(t, doc, back)
}

func TestConverter_MaxDepth(t *testing.T) {
	deep := NewParagraph(NewText("leaf"))
	for i := 0; i < 10; i++ {
		deep = NewBlock(NodeQuote, deep)
	}
	doc := NewDocument(deep)

	_, err := NewConverter(WithMaxDepth(5)).ToTarget(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMaxDepthExceeded))

	var depthErr *DepthError
	require.True(t, errors.As(err, &depthErr))
	assert.Equal(t, 5, depthErr.Limit)
	assert.Equal(t, "content[0].content[0].content[0].content[0].content[0].content[0]", depthErr.Path)

	_, err = NewConverter(WithMaxDepth(-1)).ToTarget(doc)
	assert.NoError(t, err)

	target, err := ToTarget(doc)
	require.NoError(t, err)
	_, err = NewConverter(WithMaxDepth(3)).ToSource(target)
	assert.ErrorIs(t, err, ErrMaxDepthExceeded)

	assert.ErrorIs(t, CheckDepth(doc, 5), ErrMaxDepthExceeded)
	assert.NoError(t, CheckDepth(doc, 50))
}

func TestConverter_NilInput(t *testing.T) {
	_, err := ToTarget(nil)
	assert.ErrorIs(t, err, ErrNilDocument)

	_, err = ToSource(nil)
	assert.ErrorIs(t, err, ErrNilDocument)
}

func TestConverter_DoesNotMutateInput(t *testing.T) {
	doc := NewDocument(NewParagraph(NewHyperlink("/a", NewText("a", MarkBold))))
	before := doc.Clone()

	target, err := ToTarget(doc)
	require.NoError(t, err)
	targetBefore := target.Clone()

	_, err = ToSource(target)
	require.NoError(t, err)

	assert.Equal(t, before, doc)
	assert.Equal(t, targetBefore, target)
}

func TestConverter_Concurrent(t *testing.T) {
	doc := NewDocument(NewHeading(3, NewText("x")), NewParagraph(NewText("y", MarkBold)))
	c := NewConverter()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			target, err := c.ToTarget(doc)
			assert.NoError(t, err)
			back, err := c.ToSource(target)
			assert.NoError(t, err)
			assert.Equal(t, doc, back)
		}()
	}
	wg.Wait()
}
