package service

import (
	"context"
	"encoding/json"

	"erp-catalog-be/internal/dto"
	"erp-catalog-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IKnowledgeService accepts reference documents (price lists, supplier
// notes) and hands them to the embedding consumer through the message
// bus. Upload returns as soon as the message is published.
type IKnowledgeService interface {
	Upload(ctx context.Context, req *dto.UploadKnowledgeRequest) error
	ListChunks(ctx context.Context) ([]dto.ChunkResponse, error)
}

type knowledgeService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewKnowledgeService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IKnowledgeService {
	return &knowledgeService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
	}
}

func (s *knowledgeService) Upload(ctx context.Context, req *dto.UploadKnowledgeRequest) error {
	payload, err := json.Marshal(dto.PublishEmbedDocumentMessage{
		FileName: req.FileName,
		Content:  req.Content,
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return s.pubSub.Publish(s.topicName, msg)
}

func (s *knowledgeService) ListChunks(ctx context.Context) ([]dto.ChunkResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chunks, err := uow.ChunkRepository().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]dto.ChunkResponse, 0, len(chunks))
	for _, c := range chunks {
		res = append(res, dto.ChunkResponse{
			Id:        c.Id.String(),
			FileName:  c.FileName,
			Document:  c.Document,
			CreatedAt: c.CreatedAt,
		})
	}
	return res, nil
}
