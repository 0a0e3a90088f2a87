package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"rich-text-bridge/internal/dto"
	"rich-text-bridge/internal/entity"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConsumerFixture() (*consumerService, *fakeDocumentRepository, *recordingLogger) {
	repo := newFakeDocumentRepository()
	log := &recordingLogger{}
	cs := NewConsumerService(nil, "analysis", &fakeRepositoryFactory{repo: repo}, log).(*consumerService)
	return cs, repo, log
}

func analyzeMessage(t *testing.T, id uuid.UUID) *message.Message {
	t.Helper()
	payload, err := json.Marshal(dto.PublishAnalyzeDocumentMessage{DocumentId: id})
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func acked(msg *message.Message) bool {
	select {
	case <-msg.Acked():
		return true
	default:
		return false
	}
}

func nacked(msg *message.Message) bool {
	select {
	case <-msg.Nacked():
		return true
	default:
		return false
	}
}

func TestConsumerService_StoresAnalysis(t *testing.T) {
	cs, repo, _ := newConsumerFixture()
	id := uuid.New()
	require.NoError(t, repo.Create(context.Background(), &entity.Document{Id: id, Content: json.RawMessage(helloDoc)}))

	msg := analyzeMessage(t, id)
	cs.processMessage(context.Background(), msg)

	assert.True(t, acked(msg))
	stored, _ := repo.get(id)
	assert.Equal(t, "TitleHello world", stored.PlainText)
	assert.Equal(t, 2, stored.WordCount)
}

func TestConsumerService_AcksUnrecoverable(t *testing.T) {
	cs, repo, log := newConsumerFixture()
	broken := uuid.New()
	require.NoError(t, repo.Create(context.Background(), &entity.Document{Id: broken, Content: json.RawMessage(`{"nodeType":"paragraph"}`)}))

	cases := map[string]*message.Message{
		"bad payload":      message.NewMessage(watermill.NewUUID(), []byte("nope")),
		"missing document": analyzeMessage(t, uuid.New()),
		"invalid content":  analyzeMessage(t, broken),
	}
	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			cs.processMessage(context.Background(), msg)
			assert.True(t, acked(msg))
		})
	}
	assert.Contains(t, log.messages("WARN"), "Document vanished before analysis")
}

func TestConsumerService_NacksStorageErrors(t *testing.T) {
	cs, repo, _ := newConsumerFixture()
	id := uuid.New()
	require.NoError(t, repo.Create(context.Background(), &entity.Document{Id: id, Content: json.RawMessage(helloDoc)}))

	repo.failWrite = true
	msg := analyzeMessage(t, id)
	cs.processMessage(context.Background(), msg)
	assert.True(t, nacked(msg))

	repo.failWrite = false
	repo.failRead = true
	msg = analyzeMessage(t, id)
	cs.processMessage(context.Background(), msg)
	assert.True(t, nacked(msg))
}

func TestPublisherAndConsumer_ThroughGoChannel(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	repo := newFakeDocumentRepository()
	id := uuid.New()
	require.NoError(t, repo.Create(context.Background(), &entity.Document{Id: id, Content: json.RawMessage(helloDoc)}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := NewConsumerService(pubSub, "analysis", &fakeRepositoryFactory{repo: repo}, &recordingLogger{})
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("analysis", pubSub)
	require.NoError(t, publisher.SendMessage(ctx, dto.PublishAnalyzeDocumentMessage{DocumentId: id}))

	assert.Eventually(t, func() bool {
		stored, _ := repo.get(id)
		return stored.WordCount == 2
	}, time.Second, 10*time.Millisecond)
}
