package service

import (
	"context"
	"scorewise/biz/adaptor"
	"scorewise/biz/application/dto/practice"
	"scorewise/biz/infrastructure/consts"
	"scorewise/biz/infrastructure/repository/draft"
	"scorewise/biz/infrastructure/repository/essay"
	"scorewise/biz/infrastructure/util"
	"scorewise/biz/infrastructure/util/log"
	"scorewise/biz/infrastructure/util/page"

	"github.com/google/wire"
	"github.com/jinzhu/copier"
	"github.com/samber/lo"
)

type IDraftService interface {
	SaveDraft(ctx context.Context, req *practice.SaveDraftReq) (*practice.SaveDraftResp, error)
	ForceSave(ctx context.Context, req *practice.SessionReq) (*practice.SaveDraftResp, error)
	ListEssays(ctx context.Context, req *practice.ListEssaysReq) (*practice.ListEssaysResp, error)
}

type DraftService struct {
	DraftStore  draft.Store
	EssayMapper *essay.MongoMapper
	Autosave    *AutosaveScheduler
}

var DraftServiceSet = wire.NewSet(
	wire.Struct(new(DraftService), "*"),
	wire.Bind(new(IDraftService), new(*DraftService)),
)

// SaveDraft 接收一次文本变更 进入自动保存调度 立即返回pending
func (s *DraftService) SaveDraft(ctx context.Context, req *practice.SaveDraftReq) (*practice.SaveDraftResp, error) {
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

	s.Autosave.Observe(req.LocalId, req.Text)
	return &practice.SaveDraftResp{
		AutosaveStatus: s.Autosave.Status(req.LocalId),
		WordCount:      util.WordCount(req.Text),
	}, nil
}

// ForceSave 立即落盘 不等待静默期
func (s *DraftService) ForceSave(ctx context.Context, req *practice.SessionReq) (*practice.SaveDraftResp, error) {
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

	if err := s.Autosave.ForceSave(ctx, req.LocalId); err != nil {
		log.CtxError(ctx, "强制落盘失败 [localId: %s]: %v", req.LocalId, err)
		return nil, consts.ErrUpdate
	}

	d, err = s.DraftStore.Get(ctx, req.LocalId)
	if err != nil {
		return nil, consts.ErrDraftNotFound
	}
	return &practice.SaveDraftResp{
		AutosaveStatus: s.Autosave.Status(req.LocalId),
		WordCount:      d.WordCount,
	}, nil
}

// ListEssays 分页获取当前用户已提交的作文记录
func (s *DraftService) ListEssays(ctx context.Context, req *practice.ListEssaysReq) (*practice.ListEssaysResp, error) {
	userMeta := adaptor.ExtractUserMeta(ctx)
	if userMeta.GetUserId() == "" {
		return nil, consts.ErrNotAuthentication
	}

	p, limit := page.ParsePageOpt(req.PaginationOptions)
	data, total, err := s.EssayMapper.FindByAuthor(ctx, userMeta.GetUserId(), p, limit)
	if err != nil {
		log.CtxError(ctx, "获取练习记录失败: %v", err)
		return nil, consts.ErrGetEssayList
	}

	essays := lo.Map(data, func(val *essay.Essay, _ int) *practice.EssayInfo {
		info := &practice.EssayInfo{}
		if err := copier.Copy(info, val); err != nil {
			log.CtxError(ctx, "转换作文记录失败: %v", err)
		}
		info.Id = val.ID.Hex()
		info.CreateTime = val.CreateTime.Unix()
		info.UpdateTime = val.UpdateTime.Unix()
		return info
	})

	return &practice.ListEssaysResp{
		Essays: essays,
		Total:  total,
	}, nil
}
