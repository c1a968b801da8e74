package submission

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Submission 作业提交记录 以(assignment_id, member_id)为键 每人每份作业至多一条
// 状态单向推进 SubmittedAt在首次进入submitted时写入一次
type Submission struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentID string             `bson:"assignment_id" json:"assignmentId"`
	MemberID     string             `bson:"member_id" json:"memberId"`
	EssayID      string             `bson:"essay_id" json:"essayId"`
	Status       int                `bson:"status" json:"status"`
	Score        string             `bson:"score,omitempty" json:"score,omitempty"`
	Comment      string             `bson:"comment,omitempty" json:"comment,omitempty"`
	SubmittedAt  time.Time          `bson:"submitted_at,omitempty" json:"submittedAt,omitempty"`
	ReviewedAt   time.Time          `bson:"reviewed_at,omitempty" json:"reviewedAt,omitempty"`
	CreateTime   time.Time          `bson:"create_time" json:"createTime"`
	UpdateTime   time.Time          `bson:"update_time" json:"updateTime"`
}

// UpsertSubmissionRequest 提交作业 不存在则创建 存在则重新关联作文
type UpsertSubmissionRequest struct {
	AssignmentID string
	MemberID     string
	EssayID      string
}
