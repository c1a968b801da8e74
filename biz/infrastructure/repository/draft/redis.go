package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"scorewise/biz/infrastructure/config"
	"scorewise/biz/infrastructure/consts"
	"scorewise/biz/infrastructure/redis"
	"scorewise/biz/infrastructure/util"
	"time"

	"github.com/google/uuid"
	gozero_redis "github.com/zeromicro/go-zero/core/stores/redis"
)

const draftCachePrefix = "draft"

// RedisStore 草稿的Redis存储实现
// 每次写入刷新TTL 被放弃的草稿到期后由Redis自行清理
type RedisStore struct {
	rds *gozero_redis.Redis
	ttl int
}

func NewRedisStore(config *config.Config) *RedisStore {
	ttl := config.Practice.DraftTTLSeconds
	if ttl <= 0 {
		ttl = consts.DefaultDraftTTLSeconds
	}
	return &RedisStore{
		rds: redis.GetRedis(config),
		ttl: ttl,
	}
}

// Create 创建草稿 localId使用uuid生成 不会与已有草稿冲突
func (s *RedisStore) Create(ctx context.Context, authorId, examKind, promptRef, assignmentRef string) (*Draft, error) {
	now := time.Now()
	d := &Draft{
		LocalId:       uuid.NewString(),
		AuthorId:      authorId,
		ExamKind:      examKind,
		PromptRef:     promptRef,
		AssignmentRef: assignmentRef,
		CreateTime:    now,
		UpdateTime:    now,
	}
	if err := s.set(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *RedisStore) Get(ctx context.Context, localId string) (*Draft, error) {
	data, err := s.rds.GetCtx(ctx, s.buildKey(localId))
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, consts.ErrDraftNotFound
	}

	var d Draft
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return nil, fmt.Errorf("unmarshal draft failed: %w", err)
	}
	return &d, nil
}

// Update 合并更新草稿 草稿不存在时静默空操作
// remoteId只接受首次赋值 后续写入保持原值不变
func (s *RedisStore) Update(ctx context.Context, localId string, patch *Patch) (*Draft, error) {
	d, err := s.Get(ctx, localId)
	if err != nil {
		if err == consts.ErrDraftNotFound {
			return nil, nil
		}
		return nil, err
	}

	if patch.Text != nil {
		d.Text = *patch.Text
		d.WordCount = util.WordCount(d.Text)
	}
	if patch.RemoteId != nil && d.RemoteId == "" {
		d.RemoteId = *patch.RemoteId
	}
	if patch.DurationTotal != nil {
		d.DurationTotal = *patch.DurationTotal
	}
	d.UpdateTime = time.Now()

	if err := s.set(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *RedisStore) set(ctx context.Context, d *Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft failed: %w", err)
	}
	return s.rds.SetexCtx(ctx, s.buildKey(d.LocalId), string(data), s.ttl)
}

func (s *RedisStore) buildKey(localId string) string {
	return fmt.Sprintf("%s:%s", draftCachePrefix, localId)
}
