package practice

import "scorewise/biz/application/dto/basic"

type Response struct {
	Code int64  `form:"code" json:"code" query:"code"`
	Msg  string `form:"msg" json:"msg" query:"msg"`
}

// CreateSessionReq 创建练习会话 题目来自题库(promptId)或自定义(promptRef)
type CreateSessionReq struct {
	ExamKind         string  `form:"examKind" json:"examKind,required" query:"examKind"`
	PromptId         *int    `form:"promptId" json:"promptId" query:"promptId"`
	PromptRef        *string `form:"promptRef" json:"promptRef" query:"promptRef"`
	AssignmentId     *string `form:"assignmentId" json:"assignmentId" query:"assignmentId"`
	DurationOverride *int64  `form:"durationOverride" json:"durationOverride" query:"durationOverride"`
}

type CreateSessionResp struct {
	LocalId       string `form:"localId" json:"localId" query:"localId"`
	PromptRef     string `form:"promptRef" json:"promptRef" query:"promptRef"`
	DurationTotal int64  `form:"durationTotal" json:"durationTotal" query:"durationTotal"`
}

type SessionReq struct {
	LocalId string `form:"localId" json:"localId,required" query:"localId"`
}

// SessionStateResp 会话快照 供宿主渲染倒计时和草稿内容
type SessionStateResp struct {
	LocalId        string `form:"localId" json:"localId" query:"localId"`
	ExamKind       string `form:"examKind" json:"examKind" query:"examKind"`
	PromptRef      string `form:"promptRef" json:"promptRef" query:"promptRef"`
	Text           string `form:"text" json:"text" query:"text"`
	WordCount      int64  `form:"wordCount" json:"wordCount" query:"wordCount"`
	RemoteId       string `form:"remoteId" json:"remoteId,omitempty" query:"remoteId"`
	State          string `form:"state" json:"state" query:"state"`
	Remaining      int64  `form:"remaining" json:"remaining" query:"remaining"`
	Running        bool   `form:"running" json:"running" query:"running"`
	DurationTotal  int64  `form:"durationTotal" json:"durationTotal" query:"durationTotal"`
	AutosaveStatus string `form:"autosaveStatus" json:"autosaveStatus" query:"autosaveStatus"`
}

type SaveDraftReq struct {
	LocalId string `form:"localId" json:"localId,required" query:"localId"`
	Text    string `form:"text" json:"text" query:"text"`
}

type SaveDraftResp struct {
	AutosaveStatus string `form:"autosaveStatus" json:"autosaveStatus" query:"autosaveStatus"`
	WordCount      int64  `form:"wordCount" json:"wordCount" query:"wordCount"`
}

type FinalizeReq struct {
	LocalId string `form:"localId" json:"localId,required" query:"localId"`
}

type FinalizeResp struct {
	RemoteId  string `form:"remoteId" json:"remoteId" query:"remoteId"`
	WordCount int64  `form:"wordCount" json:"wordCount" query:"wordCount"`
}

type ListEssaysReq struct {
	PaginationOptions *basic.PaginationOptions `form:"paginationOptions" json:"paginationOptions" query:"paginationOptions"`
}

type EssayInfo struct {
	Id         string `form:"id" json:"id" query:"id"`
	ExamKind   string `form:"examKind" json:"examKind" query:"examKind"`
	PromptRef  string `form:"promptRef" json:"promptRef" query:"promptRef"`
	Text       string `form:"text" json:"text" query:"text"`
	WordCount  int64  `form:"wordCount" json:"wordCount" query:"wordCount"`
	CreateTime int64  `form:"createTime" json:"createTime" query:"createTime"`
	UpdateTime int64  `form:"updateTime" json:"updateTime" query:"updateTime"`
}

type ListEssaysResp struct {
	Essays []*EssayInfo `form:"essays" json:"essays" query:"essays"`
	Total  int64        `form:"total" json:"total" query:"total"`
}

type ListPromptsReq struct {
	ExamKind          string                   `form:"examKind" json:"examKind" query:"examKind"`
	PaginationOptions *basic.PaginationOptions `form:"paginationOptions" json:"paginationOptions" query:"paginationOptions"`
}

type PromptInfo struct {
	Id          int64  `form:"id" json:"id" query:"id"`
	ExamKind    string `form:"examKind" json:"examKind" query:"examKind"`
	Title       string `form:"title" json:"title" query:"title"`
	Description string `form:"description" json:"description" query:"description"`
	Genre       string `form:"genre" json:"genre" query:"genre"`
}

type ListPromptsResp struct {
	Prompts []*PromptInfo `form:"prompts" json:"prompts" query:"prompts"`
	Total   int64         `form:"total" json:"total" query:"total"`
}

// ReviewCallbackReq 外部批阅方回调 负载为宽松JSON 服务端用mapstructure解码
type ReviewCallbackReq struct {
	SubmissionId string         `form:"submissionId" json:"submissionId,required" query:"submissionId"`
	Result       map[string]any `form:"result" json:"result" query:"result"`
}
