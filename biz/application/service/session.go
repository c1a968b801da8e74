package service

import (
	"context"
	"scorewise/biz/adaptor"
	"scorewise/biz/application/dto/practice"
	"scorewise/biz/infrastructure/config"
	"scorewise/biz/infrastructure/consts"
	"scorewise/biz/infrastructure/repository/draft"
	"scorewise/biz/infrastructure/repository/prompt"
	"scorewise/biz/infrastructure/util"
	"scorewise/biz/infrastructure/util/log"
	"sync"
	"time"

	"github.com/google/wire"
)

type ISessionService interface {
	CreateSession(ctx context.Context, req *practice.CreateSessionReq) (*practice.CreateSessionResp, error)
	GetState(ctx context.Context, req *practice.SessionReq) (*practice.SessionStateResp, error)
	Start(ctx context.Context, req *practice.SessionReq) (*practice.Response, error)
	Pause(ctx context.Context, req *practice.SessionReq) (*practice.Response, error)
	Reset(ctx context.Context, req *practice.SessionReq) (*practice.Response, error)
	Finalize(ctx context.Context, req *practice.FinalizeReq) (*practice.FinalizeResp, error)
	StreamState(ctx context.Context, req *practice.SessionReq, resultChan chan<- string) error
	Shutdown()
}

// PracticeSession 单次写作会话的计时状态
// 每个编辑会话构造一个显式对象 所有控制器通过它协作 不依赖全局状态
type PracticeSession struct {
	LocalId       string
	AuthorId      string
	ExamKind      string
	DurationTotal int64

	mu        sync.Mutex
	state     string
	remaining int64
	startedAt time.Time
	finalized bool
	done      chan struct{}
	closeOnce sync.Once
}

func newPracticeSession(d *draft.Draft, durationTotal int64) *PracticeSession {
	return &PracticeSession{
		LocalId:       d.LocalId,
		AuthorId:      d.AuthorId,
		ExamKind:      d.ExamKind,
		DurationTotal: durationTotal,
		state:         consts.SessionIdle,
		remaining:     durationTotal,
		done:          make(chan struct{}),
	}
}

// Start 仅允许从idle或paused进入running 首次启动记录开始时间
func (p *PracticeSession) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == consts.SessionExpired {
		return consts.ErrSessionExpired
	}
	if p.DurationTotal <= 0 {
		return consts.ErrSessionState
	}
	if p.state != consts.SessionIdle && p.state != consts.SessionPaused {
		return consts.ErrSessionState
	}
	if p.state == consts.SessionIdle {
		p.startedAt = time.Now()
	}
	p.state = consts.SessionRunning
	return nil
}

// Pause 仅允许从running进入paused remaining保持不变
func (p *PracticeSession) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == consts.SessionExpired {
		return consts.ErrSessionExpired
	}
	if p.state != consts.SessionRunning {
		return consts.ErrSessionState
	}
	p.state = consts.SessionPaused
	return nil
}

// Reset 恢复remaining到总时长并停止计时 永不清空正文
func (p *PracticeSession) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == consts.SessionExpired {
		return consts.ErrSessionExpired
	}
	p.remaining = p.DurationTotal
	p.state = consts.SessionIdle
	return nil
}

// Tick 每秒推进一次 remaining不会为负
// 归零时进入expired并返回true 该返回值整个生命周期至多出现一次
func (p *PracticeSession) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != consts.SessionRunning {
		return false
	}
	if p.remaining > 0 {
		p.remaining--
	}
	if p.remaining == 0 {
		p.state = consts.SessionExpired
		if !p.finalized {
			p.finalized = true
			return true
		}
	}
	return false
}

// Snapshot 返回当前计时状态供宿主渲染
func (p *PracticeSession) Snapshot() (state string, remaining int64, running bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, p.remaining, p.state == consts.SessionRunning
}

// Close 会话拆除 停止计时 不触发提交
func (p *PracticeSession) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
}

type SessionService struct {
	Config       *config.Config
	DraftStore   draft.Store
	PromptMapper *prompt.MySQLMapper
	Autosave     *AutosaveScheduler
	Finalizer    IFinalizeService

	mu       sync.Mutex
	sessions map[string]*PracticeSession
}

func NewSessionService(c *config.Config, store draft.Store, promptMapper *prompt.MySQLMapper,
	autosave *AutosaveScheduler, finalizer IFinalizeService) *SessionService {
	return &SessionService{
		Config:       c,
		DraftStore:   store,
		PromptMapper: promptMapper,
		Autosave:     autosave,
		Finalizer:    finalizer,
		sessions:     make(map[string]*PracticeSession),
	}
}

var SessionServiceSet = wire.NewSet(
	NewSessionService,
	wire.Bind(new(ISessionService), new(*SessionService)),
)

// CreateSession 创建练习会话 新草稿使用新localId 放弃重开不会复用
func (s *SessionService) CreateSession(ctx context.Context, req *practice.CreateSessionReq) (*practice.CreateSessionResp, error) {
	userMeta := adaptor.ExtractUserMeta(ctx)
	if userMeta.GetUserId() == "" {
		return nil, consts.ErrNotAuthentication
	}

	switch req.ExamKind {
	case consts.ExamKindTask1, consts.ExamKindTask2, consts.ExamKindFreeEssay:
	default:
		return nil, consts.ErrInvalidExamKind
	}

	// 题目来自题库或自定义
	promptRef := ""
	if req.PromptId != nil {
		p, err := s.PromptMapper.FindOne(ctx, *req.PromptId)
		if err != nil {
			log.CtxError(ctx, "查询题目失败: %v", err)
			return nil, consts.ErrNotFound
		}
		promptRef = prompt.SafeString(p.Title)
	} else if req.PromptRef != nil {
		promptRef = *req.PromptRef
	}

	assignmentRef := ""
	if req.AssignmentId != nil {
		assignmentRef = *req.AssignmentId
	}

	d, err := s.DraftStore.Create(ctx, userMeta.GetUserId(), req.ExamKind, promptRef, assignmentRef)
	if err != nil {
		log.CtxError(ctx, "创建草稿失败: %v", err)
		return nil, consts.ErrCreateSession
	}

	duration := s.Config.DurationFor(req.ExamKind)
	if req.DurationOverride != nil && *req.DurationOverride > 0 {
		duration = *req.DurationOverride
	}

	// 生效时长随草稿持久化 服务重启后重建会话不回退到配置默认值
	if _, err := s.DraftStore.Update(ctx, d.LocalId, &draft.Patch{DurationTotal: &duration}); err != nil {
		log.CtxError(ctx, "持久化会话时长失败 [localId: %s]: %v", d.LocalId, err)
	}

	sess := newPracticeSession(d, duration)
	s.mu.Lock()
	s.sessions[d.LocalId] = sess
	s.mu.Unlock()

	go s.runTicker(sess)

	log.CtxInfo(ctx, "练习会话已创建 [localId: %s, examKind: %s, duration: %d]", d.LocalId, req.ExamKind, duration)
	return &practice.CreateSessionResp{
		LocalId:       d.LocalId,
		PromptRef:     promptRef,
		DurationTotal: duration,
	}, nil
}

// GetState 会话快照 也用于continue editing流程的状态重建
func (s *SessionService) GetState(ctx context.Context, req *practice.SessionReq) (*practice.SessionStateResp, error) {
	userMeta := adaptor.ExtractUserMeta(ctx)
	if userMeta.GetUserId() == "" {
		return nil, consts.ErrNotAuthentication
	}

	d, err := s.DraftStore.Get(ctx, req.LocalId)
	if err != nil {
		return nil, consts.ErrDraftNotFound
	}
	if d.AuthorId != userMeta.GetUserId() {
		return nil, consts.ErrForbidden
	}

	sess := s.resume(ctx, d)
	state, remaining, running := sess.Snapshot()

	return &practice.SessionStateResp{
		LocalId:        d.LocalId,
		ExamKind:       d.ExamKind,
		PromptRef:      d.PromptRef,
		Text:           d.Text,
		WordCount:      util.WordCount(d.Text),
		RemoteId:       d.RemoteId,
		State:          state,
		Remaining:      remaining,
		Running:        running,
		DurationTotal:  sess.DurationTotal,
		AutosaveStatus: s.Autosave.Status(d.LocalId),
	}, nil
}

func (s *SessionService) Start(ctx context.Context, req *practice.SessionReq) (*practice.Response, error) {
	sess, err := s.session(ctx, req.LocalId)
	if err != nil {
		return nil, err
	}
	if err := sess.Start(); err != nil {
		return nil, err
	}
	return &practice.Response{Code: 0, Msg: "计时已开始"}, nil
}

func (s *SessionService) Pause(ctx context.Context, req *practice.SessionReq) (*practice.Response, error) {
	sess, err := s.session(ctx, req.LocalId)
	if err != nil {
		return nil, err
	}
	if err := sess.Pause(); err != nil {
		return nil, err
	}
	return &practice.Response{Code: 0, Msg: "计时已暂停"}, nil
}

func (s *SessionService) Reset(ctx context.Context, req *practice.SessionReq) (*practice.Response, error) {
	sess, err := s.session(ctx, req.LocalId)
	if err != nil {
		return nil, err
	}
	if err := sess.Reset(); err != nil {
		return nil, err
	}
	return &practice.Response{Code: 0, Msg: "计时已重置"}, nil
}

// Finalize 用户主动提交(提前交卷或free-essay提交)
func (s *SessionService) Finalize(ctx context.Context, req *practice.FinalizeReq) (*practice.FinalizeResp, error) {
	userMeta := adaptor.ExtractUserMeta(ctx)
	if userMeta.GetUserId() == "" {
		return nil, consts.ErrNotAuthentication
	}

	// 提交前强制落盘 确保终结器看到最新文本
	if err := s.Autosave.ForceSave(ctx, req.LocalId); err != nil {
		log.CtxError(ctx, "提交前落盘失败 [localId: %s]: %v", req.LocalId, err)
	}

	resp, err := s.Finalizer.Finalize(ctx, req.LocalId, userMeta.GetUserId())
	if err != nil {
		return nil, err
	}

	// 提交成功后回收会话 草稿带remoteId留在存储中 再次访问时重建
	s.evict(ctx, req.LocalId)
	return resp, nil
}

// StreamState 以SSE推送倒计时状态 每秒一条 过期或连接断开时结束
func (s *SessionService) StreamState(ctx context.Context, req *practice.SessionReq, resultChan chan<- string) error {
	sess, err := s.session(ctx, req.LocalId)
	if err != nil {
		util.SendStreamMessage(resultChan, util.STError, "练习会话不存在", nil)
		return err
	}

	state, remaining, running := sess.Snapshot()
	util.SendStreamMessage(resultChan, util.STInit, "", map[string]any{
		"state":         state,
		"remaining":     remaining,
		"running":       running,
		"durationTotal": sess.DurationTotal,
	})

	ticker := time.NewTicker(consts.DefaultTickSeconds * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sess.done:
			// 会话被回收 到期的会话补发最后一帧
			if state, remaining, _ := sess.Snapshot(); state == consts.SessionExpired {
				util.SendStreamMessage(resultChan, util.STComplete, "计时已结束", map[string]any{
					"state":     state,
					"remaining": remaining,
					"running":   false,
				})
			}
			return nil
		case <-ticker.C:
			state, remaining, running := sess.Snapshot()
			payload := map[string]any{
				"state":          state,
				"remaining":      remaining,
				"running":        running,
				"autosaveStatus": s.Autosave.Status(req.LocalId),
			}
			if state == consts.SessionExpired {
				util.SendStreamMessage(resultChan, util.STComplete, "计时已结束", payload)
				return nil
			}
			util.SendStreamMessage(resultChan, util.STPart, "", payload)
		}
	}
}

// Shutdown 停止所有计时循环 拆除不触发提交
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		sess.Close()
	}
}

// session 查找会话 必要时从草稿重建(服务重启后continue editing)
func (s *SessionService) session(ctx context.Context, localId string) (*PracticeSession, error) {
	userMeta := adaptor.ExtractUserMeta(ctx)
	if userMeta.GetUserId() == "" {
		return nil, consts.ErrNotAuthentication
	}

	s.mu.Lock()
	sess, ok := s.sessions[localId]
	s.mu.Unlock()
	if ok {
		if sess.AuthorId != userMeta.GetUserId() {
			return nil, consts.ErrForbidden
		}
		return sess, nil
	}

	d, err := s.DraftStore.Get(ctx, localId)
	if err != nil {
		return nil, consts.ErrSessionNotFound
	}
	if d.AuthorId != userMeta.GetUserId() {
		return nil, consts.ErrForbidden
	}
	return s.resume(ctx, d), nil
}

// resume 根据草稿重建会话对象 剩余时长重置为总时长
// 时长优先取草稿上持久化的值 覆盖时长在重启后仍然生效
func (s *SessionService) resume(ctx context.Context, d *draft.Draft) *PracticeSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[d.LocalId]; ok {
		return sess
	}

	duration := d.DurationTotal
	if duration <= 0 {
		duration = s.Config.DurationFor(d.ExamKind)
	}
	sess := newPracticeSession(d, duration)
	s.sessions[d.LocalId] = sess
	go s.runTicker(sess)
	log.CtxInfo(ctx, "练习会话已重建 [localId: %s]", d.LocalId)
	return sess
}

// evict 回收单个会话的资源 计时循环停止 未触发的自动保存先落盘再拆除
// 草稿本身留在存储中 下次访问通过resume重建
func (s *SessionService) evict(ctx context.Context, localId string) {
	s.mu.Lock()
	sess, ok := s.sessions[localId]
	if ok {
		delete(s.sessions, localId)
	}
	s.mu.Unlock()
	if ok {
		sess.Close()
	}

	if err := s.Autosave.ForceSave(ctx, localId); err != nil {
		log.CtxError(ctx, "会话回收时落盘失败 [localId: %s]: %v", localId, err)
	}
	s.Autosave.Detach(localId)
}

// runTicker 会话计时循环 到期时先落盘再提交 全程仅触发一次
// 长时间没有计时活动的会话(从未开始或一直暂停)按闲置TTL回收
func (s *SessionService) runTicker(sess *PracticeSession) {
	ticker := time.NewTicker(consts.DefaultTickSeconds * time.Second)
	defer ticker.Stop()

	idleTTL := s.Config.Practice.SessionIdleTTLSeconds
	if idleTTL <= 0 {
		idleTTL = consts.DefaultSessionIdleTTLSeconds
	}
	var idleSeconds int64

	for {
		select {
		case <-sess.done:
			return
		case <-ticker.C:
			if sess.Tick() {
				s.handleExpiry(context.Background(), sess)
				s.evict(context.Background(), sess.LocalId)
				return
			}
			if _, _, running := sess.Snapshot(); running {
				idleSeconds = 0
				continue
			}
			idleSeconds++
			if idleSeconds >= idleTTL {
				log.Info("闲置会话回收 [localId: %s]", sess.LocalId)
				s.evict(context.Background(), sess.LocalId)
				return
			}
		}
	}
}

// handleExpiry 到期自动提交 空文本同样拦截 内容保留在本地
func (s *SessionService) handleExpiry(ctx context.Context, sess *PracticeSession) {
	log.Info("计时到期 自动提交 [localId: %s]", sess.LocalId)

	// 等待落盘完成后再提交 避免与未完成的自动保存竞争
	if err := s.Autosave.ForceSave(ctx, sess.LocalId); err != nil {
		log.Error("到期落盘失败 [localId: %s]: %v", sess.LocalId, err)
	}

	if _, err := s.Finalizer.Finalize(ctx, sess.LocalId, sess.AuthorId); err != nil {
		// 提交失败不丢内容 草稿仍在本地 用户可手动重试
		log.Error("到期自动提交失败 [localId: %s]: %v", sess.LocalId, err)
	}
}
