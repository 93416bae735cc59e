package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/gym_site/internal/models"
)

// ListContent returns records in creation order. An empty typ lists every
// type.
func (r *GormRepo) ListContent(ctx context.Context, typ string) ([]models.ContentRecord, error) {
	q := r.DB.WithContext(ctx).Model(&models.ContentRecord{})
	if typ != "" {
		q = q.Where("type = ?", typ)
	}

	items := make([]models.ContentRecord, 0)
	if err := q.Order("created_at ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpsertSingleton overwrites the record of typ in place, or inserts it when
// none exists. A concurrent first insert loses on the unique singleton key
// and is retried as an update.
func (r *GormRepo) UpsertSingleton(ctx context.Context, typ string, data models.JSON) (*models.ContentRecord, error) {
	rec, err := r.upsertSingleton(ctx, typ, data)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		rec, err = r.upsertSingleton(ctx, typ, data)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *GormRepo) upsertSingleton(ctx context.Context, typ string, data models.JSON) (*models.ContentRecord, error) {
	var rec models.ContentRecord
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("type = ?", typ).Order("id ASC").First(&rec).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rec = models.ContentRecord{Type: typ, SingletonKey: &typ, Data: data}
			return tx.Create(&rec).Error
		case err != nil:
			return err
		}

		rec.Data = data
		rec.SingletonKey = &typ
		return tx.Model(&rec).Updates(map[string]any{"data": data, "singleton_key": &typ}).Error
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ReplaceCollection deletes every record of typ and inserts one record per
// item, in a single transaction.
func (r *GormRepo) ReplaceCollection(ctx context.Context, typ string, items []models.JSON) ([]models.ContentRecord, error) {
	records := make([]models.ContentRecord, 0, len(items))
	for _, data := range items {
		records = append(records, models.ContentRecord{Type: typ, Data: data})
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("type = ?", typ).Delete(&models.ContentRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
