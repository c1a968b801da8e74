package draft

import (
	"context"
	"time"
)

// Draft 本地草稿 localId在创建时生成且不复用
// remoteId至多被赋值一次 首次云端插入成功后写入 此后不再变化
type Draft struct {
	LocalId       string    `json:"localId"`
	AuthorId      string    `json:"authorId"`
	ExamKind      string    `json:"examKind"`
	PromptRef     string    `json:"promptRef"`
	AssignmentRef string    `json:"assignmentRef,omitempty"`
	Text          string    `json:"text"`
	WordCount     int64     `json:"wordCount"`
	RemoteId      string    `json:"remoteId,omitempty"`
	DurationTotal int64     `json:"durationTotal,omitempty"`
	CreateTime    time.Time `json:"createTime"`
	UpdateTime    time.Time `json:"updateTime"`
}

// Patch 草稿的部分更新 为nil的字段不修改
type Patch struct {
	Text          *string
	RemoteId      *string
	DurationTotal *int64
}

// Store 草稿存储
// Update在草稿不存在时静默空操作 返回(nil, nil) 调用方不得假定成功
type Store interface {
	Create(ctx context.Context, authorId, examKind, promptRef, assignmentRef string) (*Draft, error)
	Get(ctx context.Context, localId string) (*Draft, error)
	Update(ctx context.Context, localId string, patch *Patch) (*Draft, error)
}
