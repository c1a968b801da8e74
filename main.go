package main

import (
	"context"
	"scorewise/provider"

	"github.com/cloudwego/hertz/pkg/app/server"
	prometheus "github.com/hertz-contrib/monitor-prometheus"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
)

func main() {
	provider.Init()
	c := provider.Get().Config

	tracer, cfg := hertztracing.NewServerTracer()
	h := server.Default(
		server.WithHostPorts(c.ListenOn),
		server.WithTracer(prometheus.NewServerTracer(":9091", "/metrics")),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(cfg))

	// 进程退出时拆除所有计时会话 拆除不触发提交
	h.OnShutdown = append(h.OnShutdown, func(ctx context.Context) {
		provider.Get().SessionService.Shutdown()
	})

	customizedRegister(h)
	h.Spin()
}
