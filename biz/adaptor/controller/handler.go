package controller

import (
	"context"
	"scorewise/biz/infrastructure/util"
	"scorewise/biz/infrastructure/util/log"

	"github.com/cloudwego/hertz/pkg/app"
	hconsts "github.com/cloudwego/hertz/pkg/protocol/consts"
	"google.golang.org/grpc/status"
)

// Ping .
func Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(hconsts.StatusOK, map[string]any{
		"msg": "pong",
	})
}

// PostProcess 统一的响应处理 业务错误通过Errno携带的码值返回
func PostProcess(ctx context.Context, c *app.RequestContext, req, resp any, err error) {
	log.CtxInfo(ctx, "[%s] req=%s, resp=%s, err=%v", c.Path(), util.JSONF(req), util.JSONF(resp), err)

	if err == nil {
		c.JSON(hconsts.StatusOK, resp)
		return
	}

	s, _ := status.FromError(err)
	c.JSON(hconsts.StatusOK, map[string]any{
		"code": int64(s.Code()),
		"msg":  s.Message(),
	})
}
