package service

import (
	"context"
	"testing"
	"time"

	"erp-catalog-be/internal/dto"
	"erp-catalog-be/internal/pkg/logger"
	"erp-catalog-be/internal/repository/memory"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadFlowsThroughBusToConsumer(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	provider := &sequenceProvider{vectors: [][]float32{{1, 0}}}
	consumer := NewConsumerService(pubSub, "EMBED_DOCUMENT", factory, provider, logger.NopLogger{}, 0.9)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, consumer.Consume(ctx))

	knowledge := NewKnowledgeService(pubSub, "EMBED_DOCUMENT", factory)
	require.NoError(t, knowledge.Upload(ctx, &dto.UploadKnowledgeRequest{
		FileName: "suppliers.txt",
		Content:  "supplier terms and lead times",
	}))

	assert.Eventually(t, func() bool {
		chunks, err := knowledge.ListChunks(context.Background())
		return err == nil && len(chunks) == 1
	}, 2*time.Second, 10*time.Millisecond)

	chunks, err := knowledge.ListChunks(context.Background())
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "suppliers.txt", chunks[0].FileName)
	assert.Equal(t, "supplier terms and lead times", chunks[0].Document)
	assert.NotEmpty(t, chunks[0].Id)
}

func TestListChunksEmpty(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	knowledge := NewKnowledgeService(nil, "EMBED_DOCUMENT", factory)

	chunks, err := knowledge.ListChunks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
