package thread

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, t *Thread) error
	FindByID(ctx context.Context, id string) (*Thread, error)
	ListByRoom(ctx context.Context, roomID string, includeResolved bool, page, pageSize int) ([]Thread, int64, error)
	Focus(ctx context.Context, id string) (int64, bool, error)
	SetResolved(ctx context.Context, id string, resolved bool) error
	AddComment(ctx context.Context, comment *Comment) error
}

type RepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new thread repository
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// Create inserts a thread with its first comment. The stacking index is
// assigned inside the transaction so two concurrent placements in the
// same room cannot end up with the same index.
func (r *RepositoryImpl) Create(ctx context.Context, t *Thread) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxZ int64
		if err := tx.Model(&Thread{}).
			Where("room_id = ?", t.RoomID).
			Select("COALESCE(MAX(z_index), 0)").
			Scan(&maxZ).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		t.ZIndex = maxZ + 1
		t.CreatedAt = now
		t.UpdatedAt = now
		for i := range t.Comments {
			t.Comments[i].CreatedAt = now
		}

		return tx.Create(t).Error
	})
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id string) (*Thread, error) {
	var t Thread
	err := r.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *RepositoryImpl) ListByRoom(ctx context.Context, roomID string, includeResolved bool, page, pageSize int) ([]Thread, int64, error) {
	query := r.db.WithContext(ctx).Model(&Thread{}).Where("room_id = ?", roomID)
	if !includeResolved {
		query = query.Where("resolved = false")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var threads []Thread
	offset := (page - 1) * pageSize
	err := query.
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Order("z_index ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&threads).Error

	return threads, total, err
}

// Focus raises a thread to the top of its room's stacking order. Like
// Create, the max read and the index write happen inside one
// transaction, with the room's rows locked, so two concurrent focuses
// cannot both claim the same index. A thread already on top keeps its
// index; the bool reports whether anything changed.
func (r *RepositoryImpl) Focus(ctx context.Context, id string) (int64, bool, error) {
	var newZ int64
	var changed bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t Thread
		if err := tx.First(&t, "id = ?", id).Error; err != nil {
			return err
		}

		var ids []string
		if err := tx.Model(&Thread{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("room_id = ?", t.RoomID).
			Order("id").
			Pluck("id", &ids).Error; err != nil {
			return err
		}

		var maxZ int64
		if err := tx.Model(&Thread{}).
			Where("room_id = ?", t.RoomID).
			Select("COALESCE(MAX(z_index), 0)").
			Scan(&maxZ).Error; err != nil {
			return err
		}

		if t.ZIndex == maxZ {
			newZ = maxZ
			return nil
		}

		newZ = maxZ + 1
		changed = true
		return tx.Model(&Thread{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"z_index":    newZ,
				"updated_at": time.Now().UTC(),
			}).Error
	})

	return newZ, changed, err
}

func (r *RepositoryImpl) SetResolved(ctx context.Context, id string, resolved bool) error {
	return r.db.WithContext(ctx).Model(&Thread{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"resolved":   resolved,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *RepositoryImpl) AddComment(ctx context.Context, comment *Comment) error {
	comment.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(comment).Error
}
