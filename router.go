package main

import (
	handler "scorewise/biz/adaptor/controller"
	"scorewise/biz/adaptor/controller/practice"

	"github.com/cloudwego/hertz/pkg/app/server"
)

// customizeRegister registers customize routers.
func customizedRegister(r *server.Hertz) {
	r.GET("/ping", handler.Ping)

	p := r.Group("/practice")
	{
		session := p.Group("/session")
		{
			session.POST("/create", practice.CreateSession)
			session.GET("/state", practice.GetSessionState)
			session.GET("/stream", practice.StreamSession)
			session.POST("/start", practice.StartSession)
			session.POST("/pause", practice.PauseSession)
			session.POST("/reset", practice.ResetSession)
			session.POST("/finalize", practice.FinalizeSession)
		}

		draft := p.Group("/draft")
		{
			draft.POST("/save", practice.SaveDraft)
			draft.POST("/force_save", practice.ForceSaveDraft)
		}

		p.GET("/essays", practice.ListEssays)
		p.GET("/prompts", practice.ListPrompts)

		review := p.Group("/review")
		{
			review.POST("/callback", practice.ReviewCallback)
		}
	}
}
