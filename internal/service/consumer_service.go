package service

import (
	"context"
	"encoding/json"

	"rich-text-bridge/internal/dto"
	"rich-text-bridge/internal/pkg/logger"
	"rich-text-bridge/internal/repository/specification"
	"rich-text-bridge/internal/repository/unitofwork"
	"rich-text-bridge/pkg/richtext"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage recomputes the plain text and word count of a stored
// document. Storage errors Nack for redelivery; anything that cannot succeed
// on retry is Acked.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishAnalyzeDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	details := map[string]interface{}{"document_id": payload.DocumentId.String()}
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		details["error"] = err.Error()
		cs.logger.Error("ConsumerService", "Failed to load document", details)
		msg.Nack()
		return
	}
	if document == nil {
		cs.logger.Warn("ConsumerService", "Document vanished before analysis", details)
		msg.Ack()
		return
	}

	doc, err := richtext.ParseSource(document.Content)
	if err != nil || !richtext.IsValidDocument(doc) {
		cs.logger.Error("ConsumerService", "Stored document is not a valid source document", details)
		msg.Ack()
		return
	}

	stats := richtext.Analyze(doc)
	if document.PlainText == stats.PlainText && document.WordCount == stats.Words {
		msg.Ack()
		return
	}

	if err := uow.DocumentRepository().SaveAnalysis(ctx, document.Id, stats.PlainText, stats.Words); err != nil {
		details["error"] = err.Error()
		cs.logger.Error("ConsumerService", "Failed to store document analysis", details)
		msg.Nack()
		return
	}

	details["word_count"] = stats.Words
	cs.logger.Info("ConsumerService", "Document analysed", details)
	msg.Ack()
}
