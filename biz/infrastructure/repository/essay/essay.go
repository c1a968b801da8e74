package essay

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Essay 云端作文记录
// OriginalText在插入时写入一次 供批阅方比对 后续更新不再改动
type Essay struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AuthorID     string             `bson:"author_id" json:"authorId"`
	ExamKind     string             `bson:"exam_kind" json:"examKind"`
	PromptRef    string             `bson:"prompt_ref" json:"promptRef"`
	Text         string             `bson:"text" json:"text"`
	OriginalText string             `bson:"original_text" json:"originalText"`
	WordCount    int64              `bson:"word_count" json:"wordCount"`
	CreateTime   time.Time          `bson:"create_time" json:"createTime"`
	UpdateTime   time.Time          `bson:"update_time" json:"updateTime"`
}

// InsertEssayRequest 首次提交 创建云端记录
type InsertEssayRequest struct {
	AuthorID  string
	ExamKind  string
	PromptRef string
	Text      string
	WordCount int64
}

// UpdateEssayRequest 再次提交 仅更新正文和字数
type UpdateEssayRequest struct {
	Text      string
	WordCount int64
}
