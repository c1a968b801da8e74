package service

import (
	"context"
	"scorewise/biz/application/dto/practice"
	"scorewise/biz/infrastructure/consts"
	"scorewise/biz/infrastructure/repository/prompt"
	"scorewise/biz/infrastructure/util/log"
	"scorewise/biz/infrastructure/util/page"

	"github.com/google/wire"
	"github.com/samber/lo"
	"github.com/spf13/cast"
)

type IPromptService interface {
	ListPrompts(ctx context.Context, req *practice.ListPromptsReq) (*practice.ListPromptsResp, error)
}

type PromptService struct {
	PromptMapper *prompt.MySQLMapper
}

var PromptServiceSet = wire.NewSet(
	wire.Struct(new(PromptService), "*"),
	wire.Bind(new(IPromptService), new(*PromptService)),
)

// ListPrompts 获取题目列表
func (s *PromptService) ListPrompts(ctx context.Context, req *practice.ListPromptsReq) (*practice.ListPromptsResp, error) {
	p, limit := page.ParsePageOpt(req.PaginationOptions)

	prompts, total, err := s.PromptMapper.ListPrompts(ctx, req.ExamKind, p, limit)
	if err != nil {
		log.CtxError(ctx, "获取题目列表失败: %v", err)
		return nil, consts.ErrGetPromptList
	}

	infos := lo.Map(prompts, func(val *prompt.Prompt, _ int) *practice.PromptInfo {
		return &practice.PromptInfo{
			Id:          cast.ToInt64(val.ID),
			ExamKind:    val.ExamKind,
			Title:       prompt.SafeString(val.Title),
			Description: prompt.SafeString(val.Description),
			Genre:       prompt.SafeString(val.Genre),
		}
	})

	return &practice.ListPromptsResp{
		Prompts: infos,
		Total:   total,
	}, nil
}
