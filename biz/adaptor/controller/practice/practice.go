package practice

import (
	"context"
	"encoding/json"
	"net/http"
	"scorewise/biz/adaptor"
	"scorewise/biz/adaptor/controller"
	dto "scorewise/biz/application/dto/practice"
	"scorewise/biz/infrastructure/util"
	"scorewise/biz/infrastructure/util/log"
	"scorewise/provider"

	"github.com/cloudwego/hertz/pkg/app"
	hconsts "github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/protocol/sse"
)

// CreateSession 创建练习会话
func CreateSession(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateSessionReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(hconsts.StatusBadRequest, err.Error())
		return
	}

	ctx = adaptor.InjectContext(ctx, c)
	p := provider.Get()
	resp, err := p.SessionService.CreateSession(ctx, &req)
	controller.PostProcess(ctx, c, &req, resp, err)
}

// GetSessionState 获取会话快照 continue editing流程从这里重建状态
func GetSessionState(ctx context.Context, c *app.RequestContext) {
	var req dto.SessionReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(hconsts.StatusBadRequest, err.Error())
		return
	}

	ctx = adaptor.InjectContext(ctx, c)
	p := provider.Get()
	resp, err := p.SessionService.GetState(ctx, &req)
	controller.PostProcess(ctx, c, &req, resp, err)
}

// StartSession 开始或恢复计时
func StartSession(ctx context.Context, c *app.RequestContext) {
	var req dto.SessionReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(hconsts.StatusBadRequest, err.Error())
		return
	}

	ctx = adaptor.InjectContext(ctx, c)
	p := provider.Get()
	resp, err := p.SessionService.Start(ctx, &req)
	controller.PostProcess(ctx, c, &req, resp, err)
}

// PauseSession 暂停计时
func PauseSession(ctx context.Context, c *app.RequestContext) {
	var req dto.SessionReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(hconsts.StatusBadRequest, err.Error())
		return
	}

	ctx = adaptor.InjectContext(ctx, c)
	p := provider.Get()
	resp, err := p.SessionService.Pause(ctx, &req)
	controller.PostProcess(ctx, c, &req, resp, err)
}

// ResetSession 重置计时 正文不受影响
func ResetSession(ctx context.Context, c *app.RequestContext) {
	var req dto.SessionReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(hconsts.StatusBadRequest, err.Error())
		return
	}

	ctx = adaptor.InjectContext(ctx, c)
	p := provider.Get()
	resp, err := p.SessionService.Reset(ctx, &req)
	controller.PostProcess(ctx, c, &req, resp, err)
}

// SaveDraft 草稿自动保存入口
func SaveDraft(ctx context.Context, c *app.RequestContext) {
	var req dto.SaveDraftReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(hconsts.StatusBadRequest, err.Error())
		return
	}

	ctx = adaptor.InjectContext(ctx, c)
	p := provider.Get()
	resp, err := p.DraftService.SaveDraft(ctx, &req)
	controller.PostProcess(ctx, c, &req, resp, err)
}

// ForceSaveDraft 立即落盘
func ForceSaveDraft(ctx context.Context, c *app.RequestContext) {
	var req dto.SessionReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(hconsts.StatusBadRequest, err.Error())
		return
	}

	ctx = adaptor.InjectContext(ctx, c)
	p := provider.Get()
	resp, err := p.DraftService.ForceSave(ctx, &req)
	controller.PostProcess(ctx, c, &req, resp, err)
}

// FinalizeSession 提交作文(提前交卷或free-essay提交)
func FinalizeSession(ctx context.Context, c *app.RequestContext) {
	var req dto.FinalizeReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(hconsts.StatusBadRequest, err.Error())
		return
	}

	ctx = adaptor.InjectContext(ctx, c)
	p := provider.Get()
	resp, err := p.SessionService.Finalize(ctx, &req)
	controller.PostProcess(ctx, c, &req, resp, err)
}

// StreamSession 以SSE推送倒计时状态
func StreamSession(ctx context.Context, c *app.RequestContext) {
	var req dto.SessionReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(hconsts.StatusBadRequest, err.Error())
		return
	}

	ctx = adaptor.InjectContext(ctx, c)
	log.CtxInfo(ctx, "[StreamSession] req=%s", util.JSONF(&req))

	c.SetStatusCode(http.StatusOK)
	w := sse.NewWriter(c)

	resultChan := make(chan string, 100)

	go func(ctx context.Context) {
		p := provider.Get()
		defer close(resultChan)
		p.SessionService.StreamState(ctx, &req, resultChan)
	}(ctx)

	for jsonMessage := range resultChan {
		err := w.WriteEvent("", "", []byte(jsonMessage))
		if err != nil {
			log.Error("发送SSE事件失败: %v", err)
			break
		}

		var msgData util.StreamMessage
		json.Unmarshal([]byte(jsonMessage), &msgData)
		if msgData.Type == util.STComplete {
			log.CtxInfo(ctx, "[StreamSession] 计时结束")
			break
		}
		if msgData.Type == util.STError {
			log.CtxInfo(ctx, "[StreamSession] 推送终止: %+v", msgData)
			break
		}
	}
}

// ListEssays 获取练习记录
func ListEssays(ctx context.Context, c *app.RequestContext) {
	var req dto.ListEssaysReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(hconsts.StatusBadRequest, err.Error())
		return
	}

	ctx = adaptor.InjectContext(ctx, c)
	p := provider.Get()
	resp, err := p.DraftService.ListEssays(ctx, &req)
	controller.PostProcess(ctx, c, &req, resp, err)
}

// ListPrompts 获取题目列表
func ListPrompts(ctx context.Context, c *app.RequestContext) {
	var req dto.ListPromptsReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(hconsts.StatusBadRequest, err.Error())
		return
	}

	ctx = adaptor.InjectContext(ctx, c)
	p := provider.Get()
	resp, err := p.PromptService.ListPrompts(ctx, &req)
	controller.PostProcess(ctx, c, &req, resp, err)
}

// ReviewCallback 外部批阅方回调
func ReviewCallback(ctx context.Context, c *app.RequestContext) {
	var req dto.ReviewCallbackReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(hconsts.StatusBadRequest, err.Error())
		return
	}

	ctx = adaptor.InjectContext(ctx, c)
	p := provider.Get()
	resp, err := p.ReviewService.ReviewCallback(ctx, &req)
	controller.PostProcess(ctx, c, &req, resp, err)
}
