package draft

import (
	"context"
	"scorewise/biz/infrastructure/consts"
	"scorewise/biz/infrastructure/util"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore 草稿的进程内存储实现 用于未配置Redis的单机部署和测试
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]*Draft
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drafts: make(map[string]*Draft),
	}
}

func (s *MemoryStore) Create(ctx context.Context, authorId, examKind, promptRef, assignmentRef string) (*Draft, error) {
	now := time.Now()
	d := &Draft{
		LocalId:       uuid.NewString(),
		AuthorId:      authorId,
		ExamKind:      examKind,
		PromptRef:     promptRef,
		AssignmentRef: assignmentRef,
		CreateTime:    now,
		UpdateTime:    now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.LocalId] = d
	c := *d
	return &c, nil
}

func (s *MemoryStore) Get(ctx context.Context, localId string) (*Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[localId]
	if !ok {
		return nil, consts.ErrDraftNotFound
	}
	c := *d
	return &c, nil
}

func (s *MemoryStore) Update(ctx context.Context, localId string, patch *Patch) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[localId]
	if !ok {
		return nil, nil
	}

	if patch.Text != nil {
		d.Text = *patch.Text
		d.WordCount = util.WordCount(d.Text)
	}
	if patch.RemoteId != nil && d.RemoteId == "" {
		d.RemoteId = *patch.RemoteId
	}
	if patch.DurationTotal != nil {
		d.DurationTotal = *patch.DurationTotal
	}
	d.UpdateTime = time.Now()
	c := *d
	return &c, nil
}
