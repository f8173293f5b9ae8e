package thread

import (
	"time"
)

// Thread is one pinned discussion anchored to a point of the document.
// ZIndex totally orders threads by "most recently focused"; indices are
// not contiguous but the current maximum is always derivable.
type Thread struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	RoomID    string    `gorm:"index;size:64;not null" json:"room_id"`
	AnchorX   float64   `gorm:"not null" json:"x"`
	AnchorY   float64   `gorm:"not null" json:"y"`
	Resolved  bool      `gorm:"not null;default:false" json:"resolved"`
	ZIndex    int64     `gorm:"column:z_index;not null" json:"z_index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Comments  []Comment `gorm:"foreignKey:ThreadID;references:ID" json:"comments"`
}

type Comment struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ThreadID  string    `gorm:"index;size:64;not null" json:"thread_id"`
	Author    string    `gorm:"size:64;not null" json:"author"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
