package event

import (
	"context"
	"encoding/json"

	"anoa.com/tanyajawab/internal/model"
	"anoa.com/tanyajawab/internal/repository"
)

// AuditConsumer writes one AchievementLog row per dispatched event.
type AuditConsumer struct {
	repo repository.AchievementLogRepository
}

func NewAuditConsumer(repo repository.AchievementLogRepository) *AuditConsumer {
	return &AuditConsumer{repo: repo}
}

func (c *AuditConsumer) Name() string {
	return "audit_log"
}

func (c *AuditConsumer) Handle(ctx context.Context, evt AchievementEvent) error {
	metadata := ""
	if len(evt.Metadata) > 0 {
		payload, err := json.Marshal(evt.Metadata)
		if err == nil {
			metadata = string(payload)
		}
	}

	return c.repo.Create(ctx, &model.AchievementLog{
		UserID:    evt.UserID,
		Type:      evt.Type,
		Metadata:  metadata,
		CreatedAt: evt.OccurredAt,
	})
}
