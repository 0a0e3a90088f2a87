package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"rich-text-bridge/internal/dto"
	"rich-text-bridge/internal/repository/memory"
	"rich-text-bridge/pkg/events"
	"rich-text-bridge/pkg/policy"
	"rich-text-bridge/pkg/richtext"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type documentFixture struct {
	service   IDocumentService
	repo      *fakeDocumentRepository
	publisher *fakePublisherService
	events    *fakeEventPublisher
	logger    *recordingLogger
	userId    uuid.UUID
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()
	f := &documentFixture{
		repo:      newFakeDocumentRepository(),
		publisher: &fakePublisherService{},
		events:    &fakeEventPublisher{},
		logger:    &recordingLogger{},
		userId:    uuid.New(),
	}
	f.service = NewDocumentService(
		&fakeRepositoryFactory{repo: f.repo},
		NewConvertService(0, false, f.logger),
		NewPolicyService(memory.NewPolicyCache(time.Minute), "", f.logger),
		f.publisher,
		f.events,
		f.logger,
	)
	return f
}

func (f *documentFixture) create(t *testing.T, content string) uuid.UUID {
	t.Helper()
	res, err := f.service.Create(context.Background(), f.userId, &dto.CreateDocumentRequest{
		Title:   "Doc",
		Content: json.RawMessage(content),
	})
	require.NoError(t, err)
	return res.Id
}

func storedSource(t *testing.T, f *documentFixture, id uuid.UUID) *richtext.SourceNode {
	t.Helper()
	d, ok := f.repo.get(id)
	require.True(t, ok)
	doc, err := richtext.ParseSource(d.Content)
	require.NoError(t, err)
	return doc
}

const embedDoc = `{"nodeType":"document","data":{},"content":[
	{"nodeType":"paragraph","data":{},"content":[
		{"nodeType":"text","value":"See ","marks":[],"data":{}},
		{"nodeType":"embedded-entry-inline","data":{"target":{"sys":{"id":"inline-1","type":"Link","linkType":"Entry"}}},"content":[]}
	]},
	{"nodeType":"embedded-entry-block","data":{"target":{"sys":{"id":"e1","type":"Link","linkType":"Entry"}}},"content":[]},
	{"nodeType":"blockquote","data":{},"content":[
		{"nodeType":"paragraph","data":{},"content":[{"nodeType":"text","value":"quoted","marks":[{"type":"underline"}],"data":{}}]}
	]}
]}`

func TestDocumentService_CreateEmpty(t *testing.T) {
	f := newDocumentFixture(t)

	id := f.create(t, "")

	doc := storedSource(t, f, id)
	assert.True(t, richtext.IsValidDocument(doc))
	require.Len(t, doc.Content, 1)
	assert.Equal(t, richtext.NodeParagraph, doc.Content[0].NodeType)
	assert.Empty(t, doc.Content[0].Content)
	assert.Equal(t, []string{events.DocumentCreated}, f.events.types())
	require.Len(t, f.publisher.payloads, 1)
	assert.Equal(t, dto.PublishAnalyzeDocumentMessage{DocumentId: id}, f.publisher.payloads[0])
}

func TestDocumentService_CreateSanitisesAndIndexes(t *testing.T) {
	f := newDocumentFixture(t)

	res, err := f.service.Create(context.Background(), f.userId, &dto.CreateDocumentRequest{
		Title:       "Restricted",
		Content:     json.RawMessage(embedDoc),
		FieldConfig: policy.MockFieldConfig([]string{"bold"}, []string{"paragraph", "embedded-entry-block"}),
	})
	require.NoError(t, err)

	stored, _ := f.repo.get(res.Id)
	assert.Equal(t, []string{"e1"}, stored.EmbeddedEntries)
	assert.Empty(t, stored.InlineEntries)
	require.NotNil(t, stored.FieldConfig)

	doc := storedSource(t, f, res.Id)
	require.Len(t, doc.Content, 3)
	assert.Len(t, doc.Content[0].Content, 1, "inline entry dropped")
	assert.Equal(t, richtext.NodeEmbeddedEntry, doc.Content[1].NodeType)
	assert.Equal(t, richtext.NodeParagraph, doc.Content[2].NodeType, "quote degraded")
	assert.Equal(t, richtext.NodeText, doc.Content[2].Content[0].NodeType, "quote lifted")
	assert.False(t, doc.Content[2].Content[0].HasMark(richtext.MarkUnderline))
}

func TestDocumentService_CreateRejectsInvalid(t *testing.T) {
	f := newDocumentFixture(t)

	_, err := f.service.Create(context.Background(), f.userId, &dto.CreateDocumentRequest{
		Title:   "Bad",
		Content: json.RawMessage(`{"nodeType":"paragraph","content":[]}`),
	})

	assert.ErrorIs(t, err, richtext.ErrInvalidDocument)
	assert.Zero(t, f.repo.writes)
	assert.Empty(t, f.events.types())
}

func TestDocumentService_Show(t *testing.T) {
	f := newDocumentFixture(t)
	id := f.create(t, embedDoc)

	res, err := f.service.Show(context.Background(), f.userId, id)
	require.NoError(t, err)

	assert.Equal(t, "Doc", res.Title)
	require.NotNil(t, res.Editor)
	assert.Equal(t, richtext.TypeDoc, res.Editor.Type)
	assert.Equal(t, richtext.TypeBlockquote, res.Editor.Content[2].Type)
	assert.Equal(t, []string{"e1"}, res.Embedded.Entries)
	assert.Equal(t, []string{"inline-1"}, res.Embedded.InlineEntries)
	assert.Equal(t, policy.Default(), res.Policy)

	_, err = f.service.Show(context.Background(), uuid.New(), id)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDocumentService_UpdateFromEditor(t *testing.T) {
	f := newDocumentFixture(t)
	id := f.create(t, "")

	_, err := f.service.Update(context.Background(), f.userId, &dto.UpdateDocumentRequest{
		Id:     id,
		Title:  "Renamed",
		Editor: json.RawMessage(`{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"typed"}]}]}`),
	})
	require.NoError(t, err)

	stored, _ := f.repo.get(id)
	assert.Equal(t, "Renamed", stored.Title)
	assert.NotNil(t, stored.UpdatedAt)
	doc := storedSource(t, f, id)
	assert.Equal(t, "typed", richtext.ExtractPlainText(doc))
	assert.Equal(t, []string{events.DocumentCreated, events.DocumentUpdated}, f.events.types())
}

func TestDocumentService_UpdateTitleOnlyKeepsContent(t *testing.T) {
	f := newDocumentFixture(t)
	id := f.create(t, embedDoc)
	before := storedSource(t, f, id)

	_, err := f.service.Update(context.Background(), f.userId, &dto.UpdateDocumentRequest{Id: id, Title: "Only title"})
	require.NoError(t, err)

	assert.Equal(t, before, storedSource(t, f, id))
}

func TestDocumentService_UpdateNotOwned(t *testing.T) {
	f := newDocumentFixture(t)
	id := f.create(t, "")

	_, err := f.service.Update(context.Background(), uuid.New(), &dto.UpdateDocumentRequest{Id: id, Title: "x"})
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDocumentService_ApplyEdit(t *testing.T) {
	f := newDocumentFixture(t)
	id := f.create(t, "")

	res, err := f.service.ApplyEdit(context.Background(), f.userId, id, json.RawMessage(
		`{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"[Inline Entry: e9]","marks":[{"type":"bold"}]}]}]}`,
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"e9"}, res.Stats.Embedded.InlineEntries)
	stored, _ := f.repo.get(id)
	assert.Equal(t, []string{"e9"}, stored.InlineEntries)

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, events.OriginEditor, last.Payload()["origin"])
}

func TestDocumentService_ApplyEditFailureKeepsState(t *testing.T) {
	f := newDocumentFixture(t)
	id := f.create(t, embedDoc)
	before, _ := f.repo.get(id)

	_, err := f.service.ApplyEdit(context.Background(), f.userId, id, json.RawMessage(`{"content":[]}`))
	assert.ErrorIs(t, err, richtext.ErrInvalidDocument)

	f.repo.failWrite = true
	_, err = f.service.ApplyEdit(context.Background(), f.userId, id, json.RawMessage(`{"type":"doc","content":[]}`))
	assert.True(t, errors.Is(err, errStorage))

	after, _ := f.repo.get(id)
	assert.Equal(t, before, after)
}

func TestDocumentService_ApplyEditCommitsOnlyOnSuccess(t *testing.T) {
	f := newDocumentFixture(t)
	id := f.create(t, "")
	committed := f.repo.commits

	_, err := f.service.ApplyEdit(context.Background(), f.userId, id, json.RawMessage(`{"content":[]}`))
	require.Error(t, err)
	assert.Equal(t, committed, f.repo.commits)

	_, err = f.service.ApplyEdit(context.Background(), f.userId, id, json.RawMessage(`{"type":"doc","content":[]}`))
	require.NoError(t, err)
	assert.Equal(t, committed+1, f.repo.commits)
}

func TestDocumentService_Delete(t *testing.T) {
	f := newDocumentFixture(t)
	id := f.create(t, "")

	require.NoError(t, f.service.Delete(context.Background(), f.userId, id))

	_, ok := f.repo.get(id)
	assert.False(t, ok)
	assert.Equal(t, []string{events.DocumentCreated, events.DocumentDeleted}, f.events.types())

	assert.ErrorIs(t, f.service.Delete(context.Background(), f.userId, id), ErrDocumentNotFound)
}

func TestDocumentService_Export(t *testing.T) {
	f := newDocumentFixture(t)
	id := f.create(t, helloDoc)

	md, err := f.service.Export(context.Background(), f.userId, &dto.ExportDocumentRequest{Id: id})
	require.NoError(t, err)
	assert.Equal(t, ExportMarkdown, md.Format)
	assert.Contains(t, md.Content, "## Title")
	assert.Contains(t, md.Content, "**Hello world**")

	html, err := f.service.Export(context.Background(), f.userId, &dto.ExportDocumentRequest{Id: id, Format: ExportHTML})
	require.NoError(t, err)
	assert.Contains(t, html.Content, "<strong>Hello world</strong>")

	_, err = f.service.Export(context.Background(), f.userId, &dto.ExportDocumentRequest{Id: id, Format: "pdf"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDocumentService_PublishFailuresDoNotFailRequests(t *testing.T) {
	f := newDocumentFixture(t)
	f.events.err = errors.New("nats down")
	f.publisher.err = errors.New("queue closed")

	id := f.create(t, "")

	_, ok := f.repo.get(id)
	assert.True(t, ok)
	assert.Contains(t, f.logger.messages("WARN"), "Failed to publish document event")
	assert.Contains(t, f.logger.messages("ERROR"), "Failed to queue document analysis")
}

func TestDocumentService_NilEventPublisher(t *testing.T) {
	log := &recordingLogger{}
	repo := newFakeDocumentRepository()
	s := NewDocumentService(
		&fakeRepositoryFactory{repo: repo},
		NewConvertService(0, false, log),
		NewPolicyService(memory.NewPolicyCache(time.Minute), "", log),
		&fakePublisherService{},
		nil,
		log,
	)

	_, err := s.Create(context.Background(), uuid.New(), &dto.CreateDocumentRequest{Title: "x"})
	assert.NoError(t, err)
}

func TestDocumentService_List(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	for _, c := range []struct{ title, content string }{
		{"Alpha", embedDoc},
		{"Beta", ""},
		{"Beta", ""},
	} {
		_, err := f.service.Create(ctx, f.userId, &dto.CreateDocumentRequest{Title: c.title, Content: json.RawMessage(c.content)})
		require.NoError(t, err)
	}

	cases := []struct {
		name  string
		req   dto.ListDocumentsRequest
		total int64
		page  int
	}{
		{"all", dto.ListDocumentsRequest{}, 3, 3},
		{"by title", dto.ListDocumentsRequest{Title: "Beta"}, 2, 2},
		{"by block entry", dto.ListDocumentsRequest{Entry: "e1"}, 1, 1},
		{"by inline entry", dto.ListDocumentsRequest{Entry: "inline-1"}, 1, 1},
		{"by asset", dto.ListDocumentsRequest{Asset: "a1"}, 0, 0},
		{"paged", dto.ListDocumentsRequest{Limit: 1, Offset: 1}, 3, 1},
		{"past the end", dto.ListDocumentsRequest{Offset: 5}, 3, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := f.service.List(ctx, f.userId, &tc.req)
			require.NoError(t, err)
			assert.Equal(t, tc.total, res.Total)
			assert.Len(t, res.Documents, tc.page)
		})
	}

	res, err := f.service.List(ctx, uuid.New(), &dto.ListDocumentsRequest{})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Equal(t, defaultListLimit, res.Limit)
	assert.NotNil(t, res.Documents)
}
