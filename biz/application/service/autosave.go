package service

import (
	"context"
	"scorewise/biz/infrastructure/config"
	"scorewise/biz/infrastructure/consts"
	"scorewise/biz/infrastructure/repository/draft"
	"scorewise/biz/infrastructure/util/log"
	"sync"
	"time"

	"github.com/bytedance/gopkg/util/gopool"
)

// AutosaveScheduler 自动保存调度器
// 监听草稿文本变更 静默期过后落盘 同一草稿的写入按序号串行化
// 旧序号的落盘在新输入到来后作废 保证慢写不会覆盖新文本
type AutosaveScheduler struct {
	store    draft.Store
	debounce time.Duration

	mu      sync.Mutex
	entries map[string]*autosaveEntry
}

type autosaveEntry struct {
	seq    uint64
	text   string
	status string
	timer  *time.Timer
	// writeMu串行化同一草稿的落盘
	writeMu sync.Mutex
}

func NewAutosaveScheduler(config *config.Config, store draft.Store) *AutosaveScheduler {
	debounce := config.Practice.DebounceMillis
	if debounce <= 0 {
		debounce = consts.DefaultDebounceMillis
	}
	return &AutosaveScheduler{
		store:    store,
		debounce: time.Duration(debounce) * time.Millisecond,
		entries:  make(map[string]*autosaveEntry),
	}
}

// Observe 接收一次文本变更 立即置为pending 静默期后异步落盘
func (s *AutosaveScheduler) Observe(localId, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[localId]
	if !ok {
		e = &autosaveEntry{status: consts.AutosaveIdle}
		s.entries[localId] = e
	}

	e.seq++
	seq := e.seq
	e.text = text
	e.status = consts.AutosavePending

	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(s.debounce, func() {
		gopool.Go(func() {
			s.flush(context.Background(), localId, seq)
		})
	})
}

// ForceSave 绕过静默期立即落盘 提交前调用 保证提交看到的是最新文本
func (s *AutosaveScheduler) ForceSave(ctx context.Context, localId string) error {
	s.mu.Lock()
	e, ok := s.entries[localId]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	seq := e.seq
	s.mu.Unlock()

	return s.flush(ctx, localId, seq)
}

// Status 返回草稿当前的保存状态
func (s *AutosaveScheduler) Status(localId string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[localId]; ok {
		return e.status
	}
	return consts.AutosaveIdle
}

// Detach 会话结束时停止未触发的落盘 不产生额外副作用
func (s *AutosaveScheduler) Detach(localId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[localId]; ok {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(s.entries, localId)
	}
}

// flush 将seq对应的文本落盘 seq已过期则空操作
func (s *AutosaveScheduler) flush(ctx context.Context, localId string, seq uint64) error {
	s.mu.Lock()
	e, ok := s.entries[localId]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	s.mu.Lock()
	if e.seq != seq {
		// 已有更新的输入 旧写作废
		s.mu.Unlock()
		return nil
	}
	text := e.text
	s.mu.Unlock()

	d, err := s.store.Update(ctx, localId, &draft.Patch{Text: &text})

	s.mu.Lock()
	defer s.mu.Unlock()
	if e.seq != seq {
		return nil
	}
	if err != nil {
		log.Error("草稿自动保存失败 [localId: %s]: %v", localId, err)
		e.status = consts.AutosaveError
		return err
	}
	if d == nil {
		// 草稿不存在 按存储契约静默空操作 但状态反映失败
		e.status = consts.AutosaveError
		return consts.ErrDraftNotFound
	}
	e.status = consts.AutosaveSaved
	return nil
}
