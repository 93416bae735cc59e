package repo

import (
	"context"

	"github.com/Skotchmaster/gym_site/internal/models"
)

func (r *GormRepo) CreateContactMessage(ctx context.Context, m *models.ContactMessage) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *GormRepo) ListContactMessages(ctx context.Context, offset, limit int) (int64, []models.ContactMessage, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.ContactMessage{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.ContactMessage, 0, limit)
	if err := r.DB.WithContext(ctx).
		Model(&models.ContactMessage{}).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}
