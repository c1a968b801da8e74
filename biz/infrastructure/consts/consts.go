package consts

var PageSize int64 = 10

// 数据库相关
const (
	ID           = "_id"
	AuthorID     = "author_id"
	AssignmentID = "assignment_id"
	MemberID     = "member_id"
	Status       = "status"
	CreateTime   = "create_time"
	UpdateTime   = "update_time"
)

// 考试类型
const (
	ExamKindTask1     = "task1"
	ExamKindTask2     = "task2"
	ExamKindFreeEssay = "free-essay"
)

// 计时会话状态
const (
	SessionIdle    = "idle"
	SessionRunning = "running"
	SessionPaused  = "paused"
	SessionExpired = "expired"
)

// 自动保存状态
const (
	AutosaveIdle    = "idle"
	AutosavePending = "pending"
	AutosaveSaved   = "saved"
	AutosaveError   = "error"
)

// 作业提交状态 状态只能单向推进 reviewed 仅能由 submitted 进入
const (
	SubmissionNotStarted = 0
	SubmissionInProgress = 1
	SubmissionSubmitted  = 2
	SubmissionReviewed   = 3
)

// 默认值
const (
	DefaultTask1Seconds          = 1200
	DefaultTask2Seconds          = 2400
	DefaultDebounceMillis        = 1500
	DefaultDraftTTLSeconds       = 14 * 24 * 3600
	DefaultLockTTLSeconds        = 30
	DefaultLockWaitMillis        = 200
	DefaultTickSeconds           = 1
	DefaultSessionIdleTTLSeconds = 3600
)
