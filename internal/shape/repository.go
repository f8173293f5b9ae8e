package shape

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is the persisted form of one shape inside a room.
type Record struct {
	RoomID    string `gorm:"primaryKey;size:64"`
	ShapeID   string `gorm:"primaryKey;size:64"`
	Snapshot  []byte `gorm:"type:jsonb;not null"`
	Seq       uint64 `gorm:"not null"`
	UpdatedAt time.Time
}

func (Record) TableName() string {
	return "shape_records"
}

type Repository interface {
	Upsert(ctx context.Context, roomID string, seq uint64, s Snapshot) error
	Delete(ctx context.Context, roomID, shapeID string) error
	Clear(ctx context.Context, roomID string) error
	LoadRoom(ctx context.Context, roomID string) (map[string]Snapshot, uint64, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new shape repository
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Upsert(ctx context.Context, roomID string, seq uint64, s Snapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}

	record := Record{
		RoomID:    roomID,
		ShapeID:   s.ObjectID,
		Snapshot:  payload,
		Seq:       seq,
		UpdatedAt: time.Now().UTC(),
	}

	// A stale write from a retried task must not clobber a newer snapshot,
	// so the update is guarded by the sequence number.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "room_id"}, {Name: "shape_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"snapshot":   payload,
			"seq":        seq,
			"updated_at": record.UpdatedAt,
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Lt{Column: clause.Column{Table: "shape_records", Name: "seq"}, Value: seq},
		}},
	}).Create(&record).Error
}

func (r *RepositoryImpl) Delete(ctx context.Context, roomID, shapeID string) error {
	return r.db.WithContext(ctx).
		Where("room_id = ? AND shape_id = ?", roomID, shapeID).
		Delete(&Record{}).Error
}

func (r *RepositoryImpl) Clear(ctx context.Context, roomID string) error {
	return r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Delete(&Record{}).Error
}

// LoadRoom hydrates a room's shape map and returns the highest persisted
// sequence number so the sequencer can resume from it.
func (r *RepositoryImpl) LoadRoom(ctx context.Context, roomID string) (map[string]Snapshot, uint64, error) {
	var records []Record
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	shapes := make(map[string]Snapshot, len(records))
	var maxSeq uint64
	for _, rec := range records {
		var s Snapshot
		if err := json.Unmarshal(rec.Snapshot, &s); err != nil {
			// A corrupt row should not take the whole room down.
			continue
		}
		shapes[rec.ShapeID] = s
		if rec.Seq > maxSeq {
			maxSeq = rec.Seq
		}
	}

	return shapes, maxSeq, nil
}
