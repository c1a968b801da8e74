package service

import (
	"context"
	"errors"
	"net"
	"scorewise/biz/infrastructure/consts"
	"scorewise/biz/infrastructure/lock"
	"scorewise/biz/infrastructure/repository/draft"
	"scorewise/biz/infrastructure/repository/essay"
	"scorewise/biz/infrastructure/repository/submission"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeEssayStore 云端作文记录的内存实现
type fakeEssayStore struct {
	mu       sync.Mutex
	inserts  int
	updates  int
	records  map[string]*essay.Essay
	failWith error
}

func newFakeEssayStore() *fakeEssayStore {
	return &fakeEssayStore{records: make(map[string]*essay.Essay)}
}

func (f *fakeEssayStore) Insert(ctx context.Context, req *essay.InsertEssayRequest) (*essay.Essay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.inserts++
	now := time.Now()
	e := &essay.Essay{
		ID:           primitive.NewObjectID(),
		AuthorID:     req.AuthorID,
		ExamKind:     req.ExamKind,
		PromptRef:    req.PromptRef,
		Text:         req.Text,
		OriginalText: req.Text,
		WordCount:    req.WordCount,
		CreateTime:   now,
		UpdateTime:   now,
	}
	f.records[e.ID.Hex()] = e
	return e, nil
}

func (f *fakeEssayStore) Update(ctx context.Context, id string, req *essay.UpdateEssayRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	e, ok := f.records[id]
	if !ok {
		return consts.ErrNotFound
	}
	f.updates++
	e.Text = req.Text
	e.WordCount = req.WordCount
	e.UpdateTime = time.Now()
	return nil
}

// fakeSubmissionStore 提交记录的内存实现
type fakeSubmissionStore struct {
	mu   sync.Mutex
	subs map[string]*submission.Submission
}

func newFakeSubmissionStore() *fakeSubmissionStore {
	return &fakeSubmissionStore{subs: make(map[string]*submission.Submission)}
}

func (f *fakeSubmissionStore) key(assignmentID, memberID string) string {
	return assignmentID + "|" + memberID
}

func (f *fakeSubmissionStore) Insert(ctx context.Context, sub *submission.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	f.subs[f.key(sub.AssignmentID, sub.MemberID)] = sub
	return nil
}

func (f *fakeSubmissionStore) Update(ctx context.Context, sub *submission.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[f.key(sub.AssignmentID, sub.MemberID)] = sub
	return nil
}

func (f *fakeSubmissionStore) FindOne(ctx context.Context, id string) (*submission.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subs {
		if s.ID.Hex() == id {
			c := *s
			return &c, nil
		}
	}
	return nil, consts.ErrNotFound
}

func (f *fakeSubmissionStore) FindByAssignmentAndMember(ctx context.Context, assignmentID, memberID string) (*submission.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[f.key(assignmentID, memberID)]
	if !ok {
		return nil, consts.ErrNotFound
	}
	c := *s
	return &c, nil
}

// memoryLocks 进程内锁工厂 持有中的key再次加锁直接失败
type memoryLocks struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemoryLocks() *memoryLocks {
	return &memoryLocks{held: make(map[string]bool)}
}

func (l *memoryLocks) factory(ctx context.Context, key string) lock.Mutex {
	return &memoryMutex{locks: l, key: key}
}

type memoryMutex struct {
	locks *memoryLocks
	key   string
}

func (m *memoryMutex) Lock() error {
	m.locks.mu.Lock()
	defer m.locks.mu.Unlock()
	if m.locks.held[m.key] {
		return consts.ErrFinalizeInFlight
	}
	m.locks.held[m.key] = true
	return nil
}

func (m *memoryMutex) Unlock() error {
	m.locks.mu.Lock()
	defer m.locks.mu.Unlock()
	delete(m.locks.held, m.key)
	return nil
}

func (m *memoryMutex) Expired() bool { return false }

func newTestFinalizer() (*FinalizeService, *draft.MemoryStore, *fakeEssayStore, *fakeSubmissionStore) {
	store := draft.NewMemoryStore()
	essays := newFakeEssayStore()
	subs := newFakeSubmissionStore()
	svc := &FinalizeService{
		DraftStore:       store,
		EssayMapper:      essays,
		SubmissionMapper: subs,
		LockFactory:      newMemoryLocks().factory,
	}
	return svc, store, essays, subs
}

func setText(t *testing.T, store *draft.MemoryStore, localId, text string) {
	t.Helper()
	if _, err := store.Update(context.Background(), localId, &draft.Patch{Text: &text}); err != nil {
		t.Fatalf("set text failed: %v", err)
	}
}

func TestFinalizeNotAuthenticated(t *testing.T) {
	svc, store, essays, _ := newTestFinalizer()
	ctx := context.Background()
	d, _ := store.Create(ctx, "user-1", consts.ExamKindTask1, "prompt", "")
	setText(t, store, d.LocalId, "hello world")

	if _, err := svc.Finalize(ctx, d.LocalId, ""); err != consts.ErrNotAuthentication {
		t.Fatalf("expected ErrNotAuthentication, got %v", err)
	}
	if essays.inserts != 0 {
		t.Error("no network call expected without authentication")
	}
}

// 只有草稿作者可以提交 其他已登录用户被拒绝
func TestFinalizeForbiddenForNonOwner(t *testing.T) {
	svc, store, essays, _ := newTestFinalizer()
	ctx := context.Background()
	d, _ := store.Create(ctx, "user-1", consts.ExamKindTask1, "prompt", "")
	setText(t, store, d.LocalId, "someone else's essay")

	if _, err := svc.Finalize(ctx, d.LocalId, "user-2"); err != consts.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if essays.inserts != 0 {
		t.Error("non-owner finalize must not reach the cloud store")
	}

	// 作者本人不受影响
	if _, err := svc.Finalize(ctx, d.LocalId, "user-1"); err != nil {
		t.Fatalf("owner finalize failed: %v", err)
	}
}

func TestFinalizeEmptyContent(t *testing.T) {
	svc, store, essays, _ := newTestFinalizer()
	ctx := context.Background()
	d, _ := store.Create(ctx, "user-1", consts.ExamKindTask1, "prompt", "")
	setText(t, store, d.LocalId, "   \n\t ")

	if _, err := svc.Finalize(ctx, d.LocalId, "user-1"); err != consts.ErrEmptyContent {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if essays.inserts != 0 || essays.updates != 0 {
		t.Error("empty content must not reach the cloud store")
	}
}

// 首次提交插入并赋值remoteId 此后的提交都是对同一remoteId的更新
func TestFinalizeInsertThenUpdate(t *testing.T) {
	svc, store, essays, _ := newTestFinalizer()
	ctx := context.Background()
	d, _ := store.Create(ctx, "user-1", consts.ExamKindTask2, "prompt", "")
	setText(t, store, d.LocalId, "hello world")

	resp, err := svc.Finalize(ctx, d.LocalId, "user-1")
	if err != nil {
		t.Fatalf("first finalize failed: %v", err)
	}
	if resp.RemoteId == "" {
		t.Fatal("remoteId not assigned")
	}
	if resp.WordCount != 2 {
		t.Errorf("wordCount = %d, want 2", resp.WordCount)
	}
	if essays.inserts != 1 {
		t.Fatalf("inserts = %d, want 1", essays.inserts)
	}

	// 编辑后再次提交 更新同一条记录
	setText(t, store, d.LocalId, "hello world again")
	resp2, err := svc.Finalize(ctx, d.LocalId, "user-1")
	if err != nil {
		t.Fatalf("second finalize failed: %v", err)
	}
	if resp2.RemoteId != resp.RemoteId {
		t.Errorf("remoteId changed: %s -> %s", resp.RemoteId, resp2.RemoteId)
	}
	if resp2.WordCount != 3 {
		t.Errorf("wordCount = %d, want 3", resp2.WordCount)
	}
	if essays.inserts != 1 || essays.updates != 1 {
		t.Errorf("inserts=%d updates=%d, want 1/1", essays.inserts, essays.updates)
	}
	if len(essays.records) != 1 {
		t.Errorf("records = %d, want 1", len(essays.records))
	}

	// 原文快照保持首次提交时的内容
	rec := essays.records[resp.RemoteId]
	if rec.OriginalText != "hello world" {
		t.Errorf("originalText = %q, want %q", rec.OriginalText, "hello world")
	}
	if rec.Text != "hello world again" {
		t.Errorf("text = %q, want %q", rec.Text, "hello world again")
	}
}

// 相同文本重复提交 远端状态不变 不产生重复记录
func TestFinalizeIdempotentUpdate(t *testing.T) {
	svc, store, essays, _ := newTestFinalizer()
	ctx := context.Background()
	d, _ := store.Create(ctx, "user-1", consts.ExamKindTask1, "prompt", "")
	setText(t, store, d.LocalId, "same text every time")

	resp, err := svc.Finalize(ctx, d.LocalId, "user-1")
	if err != nil {
		t.Fatalf("first finalize failed: %v", err)
	}
	resp2, err := svc.Finalize(ctx, d.LocalId, "user-1")
	if err != nil {
		t.Fatalf("second finalize failed: %v", err)
	}

	if resp.RemoteId != resp2.RemoteId {
		t.Error("idempotent finalize must target the same remote record")
	}
	if len(essays.records) != 1 {
		t.Errorf("records = %d, want 1", len(essays.records))
	}
	rec := essays.records[resp.RemoteId]
	if rec.Text != "same text every time" || rec.WordCount != 4 {
		t.Errorf("unexpected record state: %+v", rec)
	}
}

// 离线失败 文本保持原样 remoteId仍缺失 重试走插入
func TestFinalizeOfflinePreservesDraft(t *testing.T) {
	svc, store, essays, _ := newTestFinalizer()
	ctx := context.Background()
	d, _ := store.Create(ctx, "user-1", consts.ExamKindTask1, "prompt", "")
	setText(t, store, d.LocalId, "hello world")

	essays.failWith = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("network is unreachable")}
	_, err := svc.Finalize(ctx, d.LocalId, "user-1")
	if err != consts.ErrOffline {
		t.Fatalf("expected ErrOffline, got %v", err)
	}

	got, _ := store.Get(ctx, d.LocalId)
	if got.Text != "hello world" {
		t.Errorf("draft text changed after failure: %q", got.Text)
	}
	if got.RemoteId != "" {
		t.Errorf("remoteId must stay absent after failed insert, got %q", got.RemoteId)
	}

	// 恢复后重试 正确走插入
	essays.failWith = nil
	resp, err := svc.Finalize(ctx, d.LocalId, "user-1")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if resp.RemoteId == "" || essays.inserts != 1 {
		t.Errorf("retry should insert, inserts=%d", essays.inserts)
	}
}

// 远端拒绝 同样不丢内容
func TestFinalizeRemoteRejectedPreservesDraft(t *testing.T) {
	svc, store, essays, _ := newTestFinalizer()
	ctx := context.Background()
	d, _ := store.Create(ctx, "user-1", consts.ExamKindTask2, "prompt", "")
	setText(t, store, d.LocalId, "some essay text")

	essays.failWith = errors.New("validation failed")
	_, err := svc.Finalize(ctx, d.LocalId, "user-1")
	if err != consts.ErrRemoteRejected {
		t.Fatalf("expected ErrRemoteRejected, got %v", err)
	}

	got, _ := store.Get(ctx, d.LocalId)
	if got.Text != "some essay text" {
		t.Errorf("draft text changed after failure: %q", got.Text)
	}
}

// 网关侧已分类的错误原样透传
func TestFinalizeQuotaExceeded(t *testing.T) {
	svc, store, essays, _ := newTestFinalizer()
	ctx := context.Background()
	d, _ := store.Create(ctx, "user-1", consts.ExamKindTask1, "prompt", "")
	setText(t, store, d.LocalId, "text")

	essays.failWith = consts.ErrQuotaExceeded
	if _, err := svc.Finalize(ctx, d.LocalId, "user-1"); err != consts.ErrQuotaExceeded {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
}

// 关联作业的草稿提交两次 提交记录不重复 状态保持submitted
func TestFinalizeAssignmentSubmission(t *testing.T) {
	svc, store, _, subs := newTestFinalizer()
	ctx := context.Background()
	d, _ := store.Create(ctx, "member-1", consts.ExamKindTask2, "prompt", "assignment-1")
	setText(t, store, d.LocalId, "first version")

	resp, err := svc.Finalize(ctx, d.LocalId, "member-1")
	if err != nil {
		t.Fatalf("first finalize failed: %v", err)
	}

	sub, err := subs.FindByAssignmentAndMember(ctx, "assignment-1", "member-1")
	if err != nil {
		t.Fatalf("submission not created: %v", err)
	}
	if sub.Status != consts.SubmissionSubmitted {
		t.Errorf("status = %d, want %d", sub.Status, consts.SubmissionSubmitted)
	}
	if sub.EssayID != resp.RemoteId {
		t.Errorf("essayId = %s, want %s", sub.EssayID, resp.RemoteId)
	}
	firstSubmittedAt := sub.SubmittedAt

	// 复核前重新提交 更新既有记录而非新建
	setText(t, store, d.LocalId, "second version")
	if _, err := svc.Finalize(ctx, d.LocalId, "member-1"); err != nil {
		t.Fatalf("second finalize failed: %v", err)
	}

	if len(subs.subs) != 1 {
		t.Errorf("submissions = %d, want 1", len(subs.subs))
	}
	sub2, _ := subs.FindByAssignmentAndMember(ctx, "assignment-1", "member-1")
	if sub2.Status != consts.SubmissionSubmitted {
		t.Errorf("status = %d, want %d", sub2.Status, consts.SubmissionSubmitted)
	}
	if !sub2.SubmittedAt.Equal(firstSubmittedAt) {
		t.Error("submittedAt must be written once, on the first transition into submitted")
	}
}

// 并发提交 第二个调用观察到进行中 不产生第二次插入
func TestFinalizeCoalescesConcurrentCalls(t *testing.T) {
	svc, store, essays, _ := newTestFinalizer()
	ctx := context.Background()
	d, _ := store.Create(ctx, "user-1", consts.ExamKindTask1, "prompt", "")
	setText(t, store, d.LocalId, "racing text")

	locks := newMemoryLocks()
	svc.LockFactory = locks.factory

	// 模拟已有提交在途
	inflight := locks.factory(ctx, "finalize:"+d.LocalId)
	if err := inflight.Lock(); err != nil {
		t.Fatalf("setup lock failed: %v", err)
	}

	if _, err := svc.Finalize(ctx, d.LocalId, "user-1"); err != consts.ErrFinalizeInFlight {
		t.Fatalf("expected ErrFinalizeInFlight, got %v", err)
	}
	if essays.inserts != 0 {
		t.Error("coalesced call must not insert")
	}

	inflight.Unlock()
	if _, err := svc.Finalize(ctx, d.LocalId, "user-1"); err != nil {
		t.Fatalf("finalize after release failed: %v", err)
	}
	if essays.inserts != 1 {
		t.Errorf("inserts = %d, want 1", essays.inserts)
	}
}

func TestFinalizeDraftNotFound(t *testing.T) {
	svc, _, _, _ := newTestFinalizer()
	if _, err := svc.Finalize(context.Background(), "no-such-draft", "user-1"); err != consts.ErrDraftNotFound {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}
}
