package service

import (
	"context"
	"scorewise/biz/application/dto/practice"
	"scorewise/biz/infrastructure/consts"
	"scorewise/biz/infrastructure/util/log"
	"time"

	"github.com/google/wire"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

type IReviewService interface {
	ReviewCallback(ctx context.Context, req *practice.ReviewCallbackReq) (*practice.Response, error)
}

// ReviewService 外部批阅方回调入口
// reviewed仅能由submitted进入 状态不回退
type ReviewService struct {
	SubmissionMapper SubmissionStore
}

var ReviewServiceSet = wire.NewSet(
	wire.Struct(new(ReviewService), "*"),
	wire.Bind(new(IReviewService), new(*ReviewService)),
)

// reviewResult 批阅方回调负载 宽松JSON按字段名解码
type reviewResult struct {
	Score   any    `mapstructure:"score"`
	Comment string `mapstructure:"comment"`
}

// ReviewCallback 记录批阅结果并推进提交状态
func (s *ReviewService) ReviewCallback(ctx context.Context, req *practice.ReviewCallbackReq) (*practice.Response, error) {
	sub, err := s.SubmissionMapper.FindOne(ctx, req.SubmissionId)
	if err != nil {
		return nil, consts.ErrNotFound
	}

	if sub.Status != consts.SubmissionSubmitted {
		return nil, consts.ErrReviewState
	}

	var result reviewResult
	if err := mapstructure.Decode(req.Result, &result); err != nil {
		log.CtxError(ctx, "解析批阅结果失败: %v", err)
		return nil, consts.ErrInvalidParams
	}

	sub.Status = consts.SubmissionReviewed
	sub.Score = cast.ToString(result.Score)
	sub.Comment = result.Comment
	sub.ReviewedAt = time.Now()
	if err := s.SubmissionMapper.Update(ctx, sub); err != nil {
		log.CtxError(ctx, "更新提交记录失败: %v", err)
		return nil, consts.ErrUpdate
	}

	log.CtxInfo(ctx, "批阅完成 [submissionId: %s]", req.SubmissionId)
	return &practice.Response{Code: 0, Msg: "批阅结果已记录"}, nil
}
