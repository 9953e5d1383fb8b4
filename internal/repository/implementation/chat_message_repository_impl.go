package implementation

import (
	"context"

	"sales-copilot-be/internal/entity"
	"sales-copilot-be/internal/mapper"
	"sales-copilot-be/internal/model"
	"sales-copilot-be/internal/repository/contract"
	"sales-copilot-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatMessageRepository(db *gorm.DB) contract.ChatMessageRepository {
	return &ChatMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatMessageRepositoryImpl) SaveAll(ctx context.Context, messages []*entity.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	models := r.mapper.ChatMessagesToModels(messages)
	// Text and author never change after creation; only annotations are updated on conflict.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"feedback", "rating"}),
		}).
		Create(&models).Error
}

func (r *ChatMessageRepositoryImpl) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ByChatSessionID{ChatSessionID: sessionId})
	return query.Delete(&model.ChatMessage{}).Error
}

func (r *ChatMessageRepositoryImpl) FindAllByChatSessionIds(ctx context.Context, sessionIds []uuid.UUID) ([]*entity.ChatMessage, error) {
	if len(sessionIds) == 0 {
		return []*entity.ChatMessage{}, nil
	}

	var models []*model.ChatMessage
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByChatSessionIDs{ChatSessionIDs: sessionIds},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ChatMessagesToEntities(models), nil
}
