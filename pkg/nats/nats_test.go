package nats

import (
	"testing"

	"rich-text-bridge/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.DOCUMENT_UPDATED", Subject(events.DocumentUpdated))
}

func TestDecodeEvent(t *testing.T) {
	evt, err := decodeEvent("events.DOCUMENT_CREATED", []byte(`{"document_id":"abc","word_count":2}`))
	require.NoError(t, err)
	assert.Equal(t, events.DocumentCreated, evt.EventType())
	assert.Equal(t, "abc", evt.Payload()["document_id"])
	assert.Equal(t, float64(2), evt.Payload()["word_count"])

	_, err = decodeEvent("events.DOCUMENT_CREATED", []byte(`nope`))
	assert.Error(t, err)
}
