package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rich-text-bridge/internal/dto"
	"rich-text-bridge/internal/entity"
	"rich-text-bridge/internal/pkg/logger"
	"rich-text-bridge/internal/repository/specification"
	"rich-text-bridge/internal/repository/unitofwork"
	"rich-text-bridge/pkg/events"
	"rich-text-bridge/pkg/render"
	"rich-text-bridge/pkg/richtext"

	"github.com/google/uuid"
)

const (
	ExportMarkdown = "markdown"
	ExportHTML     = "html"
)

// IEventPublisher delivers document events to other services.
type IEventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IDocumentService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error)
	ApplyEdit(ctx context.Context, userId uuid.UUID, id uuid.UUID, editor json.RawMessage) (*dto.ApplyEditResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	List(ctx context.Context, userId uuid.UUID, req *dto.ListDocumentsRequest) (*dto.ListDocumentsResponse, error)
	Export(ctx context.Context, userId uuid.UUID, req *dto.ExportDocumentRequest) (*dto.ExportDocumentResponse, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	convertService   IConvertService
	policyService    IPolicyService
	publisherService IPublisherService
	eventPublisher   IEventPublisher
	logger           logger.ILogger
}

// NewDocumentService accepts a nil eventPublisher; events are then skipped.
func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	convertService IConvertService,
	policyService IPolicyService,
	publisherService IPublisherService,
	eventPublisher IEventPublisher,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		convertService:   convertService,
		policyService:    policyService,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

func (s *documentService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID, extra ...specification.Specification) (*entity.Document, error) {
	specs := append([]specification.Specification{
		specification.ByID{ID: id},
		specification.DocumentOwnedByUser{UserID: userId},
	}, extra...)
	document, err := uow.DocumentRepository().FindOne(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, ErrDocumentNotFound
	}
	return document, nil
}

// applyContent stores doc on the entity together with the embed references
// derived from it.
func applyContent(document *entity.Document, doc *richtext.SourceNode) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	embedded := richtext.FindEmbeddedContent(doc)

	document.Content = raw
	document.EmbeddedEntries = embedded.Entries
	document.EmbeddedAssets = embedded.Assets
	document.InlineEntries = embedded.InlineEntries
	return nil
}

func (s *documentService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	p := s.policyService.Resolve(req.FieldConfig)

	var doc *richtext.SourceNode
	if !hasBody(req.Content) {
		doc = s.convertService.EmptyDocument()
	} else {
		var err error
		doc, err = s.convertService.Prepare(ctx, req.Content, p)
		if err != nil {
			return nil, err
		}
	}

	document := entity.Document{
		Id:          uuid.New(),
		UserId:      userId,
		Title:       req.Title,
		FieldConfig: req.FieldConfig,
		CreatedAt:   time.Now(),
	}
	if err := applyContent(&document, doc); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, events.DocumentCreated, events.OriginAPI, &document, doc)

	return &dto.CreateDocumentResponse{
		Id: document.Id,
	}, nil
}

func (s *documentService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	p := s.policyService.Resolve(document.FieldConfig)
	doc, err := s.convertService.Prepare(ctx, document.Content, p)
	if err != nil {
		return nil, err
	}
	editor, err := s.convertService.Forward(ctx, doc)
	if err != nil {
		return nil, err
	}

	return &dto.ShowDocumentResponse{
		Id:        document.Id,
		Title:     document.Title,
		Content:   document.Content,
		Editor:    editor,
		Policy:    p,
		WordCount: document.WordCount,
		Embedded: richtext.EmbeddedContent{
			Entries:       document.EmbeddedEntries,
			Assets:        document.EmbeddedAssets,
			InlineEntries: document.InlineEntries,
		},
		CreatedAt: document.CreatedAt,
		UpdatedAt: document.UpdatedAt,
	}, nil
}

func (s *documentService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	document, err := s.findOwned(ctx, uow, userId, req.Id, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}

	if req.FieldConfig != nil {
		document.FieldConfig = req.FieldConfig
	}
	p := s.policyService.Resolve(document.FieldConfig)

	var doc *richtext.SourceNode
	switch {
	case hasBody(req.Editor):
		node, err := parseTarget(req.Editor)
		if err != nil {
			return nil, err
		}
		doc, err = s.convertService.Reverse(ctx, node, &p)
		if err != nil {
			return nil, err
		}
	case hasBody(req.Content):
		doc, err = s.convertService.Prepare(ctx, req.Content, p)
		if err != nil {
			return nil, err
		}
	default:
		// Title or configuration change only; re-sanitise under the new policy.
		doc, err = s.convertService.Prepare(ctx, document.Content, p)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	document.Title = req.Title
	document.UpdatedAt = &now
	if err := applyContent(document, doc); err != nil {
		return nil, err
	}

	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, events.DocumentUpdated, events.OriginAPI, document, doc)

	return &dto.UpdateDocumentResponse{
		Id: document.Id,
	}, nil
}

// ApplyEdit stores an editor tree. Any failure leaves the stored document
// untouched.
func (s *documentService) ApplyEdit(ctx context.Context, userId uuid.UUID, id uuid.UUID, editor json.RawMessage) (*dto.ApplyEditResponse, error) {
	node, err := parseTarget(editor)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	document, err := s.findOwned(ctx, uow, userId, id, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}

	p := s.policyService.Resolve(document.FieldConfig)
	doc, err := s.convertService.Reverse(ctx, node, &p)
	if err != nil {
		s.logger.Warn("DocumentService", "Rejected editor update", map[string]interface{}{
			"document_id": id.String(),
			"error":       err.Error(),
		})
		return nil, err
	}

	now := time.Now()
	document.UpdatedAt = &now
	if err := applyContent(document, doc); err != nil {
		return nil, err
	}
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, events.DocumentUpdated, events.OriginEditor, document, doc)

	return &dto.ApplyEditResponse{
		Id:       document.Id,
		Document: doc,
		Stats:    richtext.Analyze(doc),
	}, nil
}

func (s *documentService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	document, err := s.findOwned(ctx, uow, userId, id, specification.ForUpdate{})
	if err != nil {
		return err
	}

	if err := uow.DocumentRepository().Delete(ctx, document.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.publishEvent(ctx, events.DocumentDeleted, events.DocumentChange{
		DocumentId: document.Id,
		UserId:     document.UserId,
		Origin:     events.OriginAPI,
	})
	return nil
}

const defaultListLimit = 20

func (s *documentService) List(ctx context.Context, userId uuid.UUID, req *dto.ListDocumentsRequest) (*dto.ListDocumentsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	specs := []specification.Specification{specification.DocumentOwnedByUser{UserID: userId}}
	if req.Title != "" {
		specs = append(specs, specification.ByTitle{Title: req.Title})
	}
	if req.Entry != "" {
		specs = append(specs, specification.ReferencingEntry{EntryID: req.Entry})
	}
	if req.Asset != "" {
		specs = append(specs, specification.ReferencingAsset{AssetID: req.Asset})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.DocumentRepository().Count(ctx, specs...)
	if err != nil {
		return nil, err
	}

	page := append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	)
	documents, err := uow.DocumentRepository().FindAll(ctx, page...)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.DocumentSummary, 0, len(documents))
	for _, d := range documents {
		summaries = append(summaries, dto.DocumentSummary{
			Id:        d.Id,
			Title:     d.Title,
			WordCount: d.WordCount,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		})
	}

	return &dto.ListDocumentsResponse{
		Documents: summaries,
		Total:     total,
		Limit:     limit,
		Offset:    req.Offset,
	}, nil
}

func (s *documentService) Export(ctx context.Context, userId uuid.UUID, req *dto.ExportDocumentRequest) (*dto.ExportDocumentResponse, error) {
	format := req.Format
	if format == "" {
		format = ExportMarkdown
	}
	if format != ExportMarkdown && format != ExportHTML {
		return nil, ErrUnsupportedFormat
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := s.findOwned(ctx, uow, userId, req.Id)
	if err != nil {
		return nil, err
	}

	doc, err := s.convertService.Prepare(ctx, document.Content, s.policyService.Resolve(document.FieldConfig))
	if err != nil {
		return nil, err
	}

	var content string
	if format == ExportHTML {
		content, err = render.HTML(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to render html: %w", err)
		}
	} else {
		content = render.Markdown(doc)
	}

	return &dto.ExportDocumentResponse{
		Id:      document.Id,
		Format:  format,
		Content: content,
	}, nil
}

// afterWrite queues the async analysis and announces the change. Neither
// step fails the request.
func (s *documentService) afterWrite(ctx context.Context, eventType, origin string, document *entity.Document, doc *richtext.SourceNode) {
	if err := s.publisherService.SendMessage(ctx, dto.PublishAnalyzeDocumentMessage{DocumentId: document.Id}); err != nil {
		s.logger.Error("DocumentService", "Failed to queue document analysis", map[string]interface{}{
			"document_id": document.Id.String(),
			"error":       err.Error(),
		})
	}

	s.publishEvent(ctx, eventType, events.DocumentChange{
		DocumentId:    document.Id,
		UserId:        document.UserId,
		Origin:        origin,
		WordCount:     richtext.CountWords(doc),
		Entries:       document.EmbeddedEntries,
		Assets:        document.EmbeddedAssets,
		InlineEntries: document.InlineEntries,
	})
}

func (s *documentService) publishEvent(ctx context.Context, eventType string, change events.DocumentChange) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.NewDocumentEvent(eventType, change)); err != nil {
		s.logger.Warn("DocumentService", "Failed to publish document event", map[string]interface{}{
			"event":       eventType,
			"document_id": change.DocumentId.String(),
			"error":       err.Error(),
		})
	}
}

func hasBody(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
