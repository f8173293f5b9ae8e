package thread

import (
	"context"
	defError "errors"
	"fmt"
	"strings"
	"time"

	"collaborative-whiteboard/internal/errors"
	"collaborative-whiteboard/redis"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notifier pushes registry changes to the connected peers of a room.
// The room hub implements it; a nil notifier is fine in tests.
type Notifier interface {
	NotifyThread(roomID string, t *Thread)
}

type Service interface {
	CreateThread(ctx context.Context, roomID, author string, x, y float64, body string) (*Thread, error)
	AddComment(ctx context.Context, threadID, author, body string) (*Thread, error)
	Focus(ctx context.Context, threadID string) (*Thread, error)
	SetResolved(ctx context.Context, threadID string, resolved bool) (*Thread, error)
	ListThreads(ctx context.Context, roomID string, includeResolved bool, page, pageSize int) (*PaginatedThreads, error)
}

type DefaultService struct {
	repository Repository
	cache      *redis.Cache
	notifier   Notifier
}

func NewService(repository Repository, cache *redis.Cache, notifier Notifier) Service {
	return &DefaultService{
		repository: repository,
		cache:      cache,
		notifier:   notifier,
	}
}

// CreateThread commits a placement gesture. The body must be nonempty, a
// cancelled composer never reaches this call.
func (s *DefaultService) CreateThread(ctx context.Context, roomID, author string, x, y float64, body string) (*Thread, error) {
	if strings.TrimSpace(body) == "" {
		return nil, errors.BadRequest("Comment body cannot be empty", nil)
	}

	t := &Thread{
		ID:      uuid.NewString(),
		RoomID:  roomID,
		AnchorX: x,
		AnchorY: y,
		Comments: []Comment{
			{Author: author, Body: body},
		},
	}

	if err := s.repository.Create(ctx, t); err != nil {
		return nil, err
	}

	s.bumpVersion(ctx, roomID)
	s.notify(roomID, t)
	return t, nil
}

func (s *DefaultService) AddComment(ctx context.Context, threadID, author, body string) (*Thread, error) {
	if strings.TrimSpace(body) == "" {
		return nil, errors.BadRequest("Comment body cannot be empty", nil)
	}

	t, err := s.findThread(ctx, threadID)
	if err != nil {
		return nil, err
	}

	comment := &Comment{
		ThreadID: threadID,
		Author:   author,
		Body:     body,
	}
	if err := s.repository.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	t.Comments = append(t.Comments, *comment)

	s.bumpVersion(ctx, t.RoomID)
	s.notify(t.RoomID, t)
	return t, nil
}

// Focus brings a thread to the foreground. The repository assigns the
// new index atomically, a thread already holding the maximum keeps its
// index so refocusing the top thread never burns through indices.
func (s *DefaultService) Focus(ctx context.Context, threadID string) (*Thread, error) {
	t, err := s.findThread(ctx, threadID)
	if err != nil {
		return nil, err
	}

	z, changed, err := s.repository.Focus(ctx, threadID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Thread not found", err)
		}
		return nil, err
	}
	t.ZIndex = z
	if !changed {
		return t, nil
	}
	t.UpdatedAt = time.Now().UTC()

	s.bumpVersion(ctx, t.RoomID)
	s.notify(t.RoomID, t)
	return t, nil
}

func (s *DefaultService) SetResolved(ctx context.Context, threadID string, resolved bool) (*Thread, error) {
	t, err := s.findThread(ctx, threadID)
	if err != nil {
		return nil, err
	}

	if err := s.repository.SetResolved(ctx, threadID, resolved); err != nil {
		return nil, err
	}
	t.Resolved = resolved

	s.bumpVersion(ctx, t.RoomID)
	s.notify(t.RoomID, t)
	return t, nil
}

type ThreadsMeta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPage   int   `json:"total_page"`
}

type PaginatedThreads struct {
	Data []Thread    `json:"data"`
	Meta ThreadsMeta `json:"meta"`
}

func (s *DefaultService) ListThreads(ctx context.Context, roomID string, includeResolved bool, page, pageSize int) (*PaginatedThreads, error) {
	versionKey := fmt.Sprintf("room:%s:threads:version", roomID)
	v := s.cache.GetVersion(ctx, versionKey)

	cacheKey := fmt.Sprintf("threads:r:%s:v:%d:res:%t:p:%d:ps:%d", roomID, v, includeResolved, page, pageSize)

	var result PaginatedThreads
	found, _ := s.cache.Get(ctx, cacheKey, &result)
	if found {
		return &result, nil
	}

	threads, total, err := s.repository.ListByRoom(ctx, roomID, includeResolved, page, pageSize)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	result = PaginatedThreads{
		Data: threads,
		Meta: ThreadsMeta{
			Total:       total,
			CurrentPage: page,
			PerPage:     pageSize,
			TotalPage:   totalPages,
		},
	}
	go s.cache.Set(context.Background(), cacheKey, result, 24*time.Hour)

	return &result, nil
}

func (s *DefaultService) findThread(ctx context.Context, threadID string) (*Thread, error) {
	t, err := s.repository.FindByID(ctx, threadID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Thread not found", err)
		}
		return nil, err
	}
	return t, nil
}

func (s *DefaultService) bumpVersion(ctx context.Context, roomID string) {
	versionKey := fmt.Sprintf("room:%s:threads:version", roomID)
	s.cache.IncrementVersion(ctx, versionKey)
}

func (s *DefaultService) notify(roomID string, t *Thread) {
	if s.notifier != nil {
		s.notifier.NotifyThread(roomID, t)
	}
}
