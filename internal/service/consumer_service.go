package service

import (
	"context"
	"encoding/json"

	"erp-catalog-be/internal/dto"
	"erp-catalog-be/internal/entity"
	"erp-catalog-be/internal/pkg/logger"
	"erp-catalog-be/internal/repository/unitofwork"
	"erp-catalog-be/pkg/embedding"
	"erp-catalog-be/pkg/similarity"
	"erp-catalog-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const (
	chunkSize    = 1500
	chunkOverlap = 200
)

// IConsumerService drains the document-embedding topic: split, embed,
// deduplicate, persist. Near-duplicate chunks are dropped before
// storage so repeated uploads of overlapping documents do not bloat
// the knowledge base.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	provider       embedding.EmbeddingProvider
	log            logger.ILogger
	dedupThreshold float64
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	provider embedding.EmbeddingProvider,
	log logger.ILogger,
	dedupThreshold float64,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		provider:       provider,
		log:            log,
		dedupThreshold: dedupThreshold,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
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

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		// Malformed payloads are acked; retrying cannot fix them.
		cs.log.Error("consumer", "unmarshal failed, dropping message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	cs.log.Info("consumer", "processing document", map[string]interface{}{
		"file_name": payload.FileName,
		"length":    len(payload.Content),
	})

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.ChunkRepository().GetAll(ctx)
	if err != nil {
		cs.log.Error("consumer", "loading existing chunks failed", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Nack()
		return
	}

	chunks := utils.SplitText(payload.Content, chunkSize, chunkOverlap)

	var stored, duplicates int
	for i, chunk := range chunks {
		res, err := cs.provider.Generate(chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			cs.log.Error("consumer", "embedding failed", map[string]interface{}{
				"file_name": payload.FileName,
				"chunk":     i,
				"error":     err.Error(),
			})
			msg.Nack()
			return
		}

		if cs.isDuplicate(res.Embedding.Values, existing) {
			duplicates++
			continue
		}

		newChunk := &entity.Chunk{
			Id:        uuid.New(),
			FileName:  payload.FileName,
			Document:  chunk,
			Embedding: res.Embedding.Values,
		}
		if err := uow.ChunkRepository().Create(ctx, newChunk); err != nil {
			cs.log.Error("consumer", "chunk persist failed", map[string]interface{}{
				"file_name": payload.FileName,
				"chunk":     i,
				"error":     err.Error(),
			})
			msg.Nack()
			return
		}
		// New chunks join the comparison set immediately so duplicates
		// within one document are caught too.
		existing = append(existing, newChunk)
		stored++
	}

	cs.log.Info("consumer", "document processed", map[string]interface{}{
		"file_name":  payload.FileName,
		"stored":     stored,
		"duplicates": duplicates,
	})
	msg.Ack()
}

// isDuplicate reports whether the candidate vector is at least as
// similar as the threshold to any stored chunk. The comparison is
// inclusive: a similarity exactly at the threshold counts as a
// duplicate.
func (cs *consumerService) isDuplicate(candidate []float32, existing []*entity.Chunk) bool {
	for _, c := range existing {
		if similarity.Cosine(candidate, c.Embedding) >= cs.dedupThreshold {
			return true
		}
	}
	return false
}
