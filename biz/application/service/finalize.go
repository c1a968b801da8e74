package service

import (
	"context"
	"errors"
	"net"
	"scorewise/biz/application/dto/practice"
	"scorewise/biz/infrastructure/consts"
	"scorewise/biz/infrastructure/lock"
	"scorewise/biz/infrastructure/repository/draft"
	"scorewise/biz/infrastructure/repository/essay"
	"scorewise/biz/infrastructure/repository/submission"
	"scorewise/biz/infrastructure/util/log"
	"strings"
	"time"

	"github.com/google/wire"
	"go.mongodb.org/mongo-driver/mongo"
)

type IFinalizeService interface {
	Finalize(ctx context.Context, localId, memberId string) (*practice.FinalizeResp, error)
}

// EssayStore 云端作文记录的写入口
type EssayStore interface {
	Insert(ctx context.Context, req *essay.InsertEssayRequest) (*essay.Essay, error)
	Update(ctx context.Context, id string, req *essay.UpdateEssayRequest) error
}

// SubmissionStore 作业提交记录的读写口
type SubmissionStore interface {
	Insert(ctx context.Context, submission *submission.Submission) error
	Update(ctx context.Context, submission *submission.Submission) error
	FindOne(ctx context.Context, id string) (*submission.Submission, error)
	FindByAssignmentAndMember(ctx context.Context, assignmentID, memberID string) (*submission.Submission, error)
}

// FinalizeService 提交终结器
// 按remoteId是否存在决定插入或更新 失败时本地草稿保持原样 可由用户重试
type FinalizeService struct {
	DraftStore       draft.Store
	EssayMapper      EssayStore
	SubmissionMapper SubmissionStore
	LockFactory      lock.Factory
}

var FinalizeServiceSet = wire.NewSet(
	wire.Struct(new(FinalizeService), "*"),
	wire.Bind(new(IFinalizeService), new(*FinalizeService)),
)

// Finalize 将草稿持久化到云端 并在关联作业时维护提交记录
func (s *FinalizeService) Finalize(ctx context.Context, localId, memberId string) (*practice.FinalizeResp, error) {
	if memberId == "" {
		return nil, consts.ErrNotAuthentication
	}

	// 同一草稿同一时刻仅允许一次提交 并发提交方观察到进行中直接返回
	distributedLock := s.LockFactory(ctx, "finalize:"+localId)
	if err := distributedLock.Lock(); err != nil {
		return nil, consts.ErrFinalizeInFlight
	}
	defer func() {
		if err := distributedLock.Unlock(); err != nil || distributedLock.Expired() {
			log.Error("unlock error: %v, lock expired: %v", err, distributedLock.Expired())
		}
	}()

	d, err := s.DraftStore.Get(ctx, localId)
	if err != nil {
		return nil, consts.ErrDraftNotFound
	}

	// 只有草稿作者可以提交
	if d.AuthorId != memberId {
		return nil, consts.ErrForbidden
	}

	// 空文本不发起任何网络调用
	if strings.TrimSpace(d.Text) == "" {
		return nil, consts.ErrEmptyContent
	}

	remoteId := d.RemoteId
	if remoteId == "" {
		// 首次提交 插入 原文快照仅在此时写入
		e, err := s.EssayMapper.Insert(ctx, &essay.InsertEssayRequest{
			AuthorID:  memberId,
			ExamKind:  d.ExamKind,
			PromptRef: d.PromptRef,
			Text:      d.Text,
			WordCount: d.WordCount,
		})
		if err != nil {
			// 插入失败 remoteId保持缺失 后续重试仍走插入
			log.CtxError(ctx, "作文插入失败 [localId: %s]: %v", localId, err)
			return nil, classifyRemoteError(err)
		}
		remoteId = e.ID.Hex()

		// remoteId至多赋值一次 写回草稿后不再变化
		if _, err := s.DraftStore.Update(ctx, localId, &draft.Patch{RemoteId: &remoteId}); err != nil {
			log.CtxError(ctx, "回写remoteId失败 [localId: %s]: %v", localId, err)
		}
	} else {
		// 再次提交 更新既有记录 相同载荷写相同行 天然幂等
		err := s.EssayMapper.Update(ctx, remoteId, &essay.UpdateEssayRequest{
			Text:      d.Text,
			WordCount: d.WordCount,
		})
		if err != nil {
			log.CtxError(ctx, "作文更新失败 [remoteId: %s]: %v", remoteId, err)
			return nil, classifyRemoteError(err)
		}
	}

	// 关联作业时维护提交记录 每人每份作业至多一条
	if d.AssignmentRef != "" {
		if err := s.upsertSubmission(ctx, &submission.UpsertSubmissionRequest{
			AssignmentID: d.AssignmentRef,
			MemberID:     memberId,
			EssayID:      remoteId,
		}); err != nil {
			log.CtxError(ctx, "提交记录维护失败 [assignment: %s, member: %s]: %v", d.AssignmentRef, memberId, err)
			return nil, classifyRemoteError(err)
		}
	}

	log.CtxInfo(ctx, "作文提交成功 [localId: %s, remoteId: %s, words: %d]", localId, remoteId, d.WordCount)
	return &practice.FinalizeResp{
		RemoteId:  remoteId,
		WordCount: d.WordCount,
	}, nil
}

// upsertSubmission 不存在则创建 存在则重新关联作文
// SubmittedAt仅在首次进入submitted时写入 已批阅的记录只换关联不回退状态
func (s *FinalizeService) upsertSubmission(ctx context.Context, req *submission.UpsertSubmissionRequest) error {
	sub, err := s.SubmissionMapper.FindByAssignmentAndMember(ctx, req.AssignmentID, req.MemberID)
	switch {
	case err == consts.ErrNotFound:
		now := time.Now()
		return s.SubmissionMapper.Insert(ctx, &submission.Submission{
			AssignmentID: req.AssignmentID,
			MemberID:     req.MemberID,
			EssayID:      req.EssayID,
			Status:       consts.SubmissionSubmitted,
			SubmittedAt:  now,
		})
	case err != nil:
		return err
	}

	sub.EssayID = req.EssayID
	if sub.Status < consts.SubmissionSubmitted {
		sub.Status = consts.SubmissionSubmitted
		sub.SubmittedAt = time.Now()
	}
	return s.SubmissionMapper.Update(ctx, sub)
}

// classifyRemoteError 将云端错误映射到错误分类
// 网关侧已分类的错误(如配额)原样透传
func classifyRemoteError(err error) error {
	var en *consts.Errno
	if errors.As(err, &en) {
		return en
	}
	var ne net.Error
	if errors.As(err, &ne) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, mongo.ErrClientDisconnected) {
		return consts.ErrOffline
	}
	return consts.ErrRemoteRejected
}
