package consts

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Errno struct {
	err  error
	code codes.Code
}

// GRPCStatus 实现 GRPCStatus 方法
func (en *Errno) GRPCStatus() *status.Status {
	return status.New(en.code, en.err.Error())
}

// 实现 Error 方法
func (en *Errno) Error() string {
	return en.err.Error()
}

// NewErrno 创建自定义错误
func NewErrno(code codes.Code, err error) *Errno {
	return &Errno{
		err:  err,
		code: code,
	}
}

// 练习会话相关错误
var (
	ErrForbidden         = NewErrno(codes.PermissionDenied, errors.New("forbidden"))
	ErrNotAuthentication = NewErrno(codes.Code(1000), errors.New("not authentication"))
	ErrEmptyContent      = NewErrno(codes.Code(1001), errors.New("作文内容为空，请先输入内容再提交"))
	ErrOffline           = NewErrno(codes.Code(1002), errors.New("网络不可用，内容已保留在本地，请联网后重试"))
	ErrRemoteRejected    = NewErrno(codes.Code(1003), errors.New("保存到云端失败，内容已保留在本地，请重试"))
	ErrQuotaExceeded     = NewErrno(codes.Code(1004), errors.New("云端存储配额不足，请清理后重试"))
	ErrFinalizeInFlight  = NewErrno(codes.Code(1005), errors.New("该作文正在提交中，请勿重复提交"))
	ErrDraftNotFound     = NewErrno(codes.Code(1006), errors.New("草稿不存在或已过期"))
	ErrSessionNotFound   = NewErrno(codes.Code(1007), errors.New("练习会话不存在"))
	ErrSessionState      = NewErrno(codes.Code(1008), errors.New("当前计时状态不允许该操作"))
	ErrSessionExpired    = NewErrno(codes.Code(1009), errors.New("计时已结束，作文已自动提交"))
	ErrCreateSession     = NewErrno(codes.Code(1010), errors.New("创建练习会话失败"))
	ErrGetPromptList     = NewErrno(codes.Code(1011), errors.New("获取题目列表失败"))
	ErrGetEssayList      = NewErrno(codes.Code(1012), errors.New("获取练习记录失败"))
	ErrReviewState       = NewErrno(codes.Code(1013), errors.New("仅已提交的作文可以被批阅"))
	ErrInvalidExamKind   = NewErrno(codes.Code(1014), errors.New("不支持的考试类型"))
)

// ErrInvalidParams 调用时错误
var ErrInvalidParams = NewErrno(codes.InvalidArgument, errors.New("参数错误"))

// 数据库相关错误
var (
	ErrNotFound        = NewErrno(codes.NotFound, errors.New("not found"))
	ErrInvalidObjectId = NewErrno(codes.InvalidArgument, errors.New("无效的id "))
	ErrUpdate          = NewErrno(codes.Code(2001), errors.New("更新失败"))
)
