package lock

import (
	"context"
	"scorewise/biz/infrastructure/config"
	"scorewise/biz/infrastructure/consts"
	scoreredis "scorewise/biz/infrastructure/redis"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

// 基于Redis的互斥锁 用于保证同一草稿同一时刻仅有一次提交在进行

const unlockScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

type Mutex interface {
	Lock() error
	Unlock() error
	Expired() bool
}

// Factory 按key构造互斥锁 便于在测试中替换实现
type Factory func(ctx context.Context, key string) Mutex

type DraftMutex struct {
	ctx        context.Context
	rds        *redis.Redis
	key        string
	value      string
	ttl        int
	waitMillis int
	acquiredAt time.Time
}

func NewDraftMutex(ctx context.Context, rds *redis.Redis, key string, ttlSeconds, waitMillis int) *DraftMutex {
	return &DraftMutex{
		ctx:        ctx,
		rds:        rds,
		key:        key,
		value:      uuid.NewString(),
		ttl:        ttlSeconds,
		waitMillis: waitMillis,
	}
}

// NewRedisFactory 构造生产环境使用的锁工厂
func NewRedisFactory(rds *redis.Redis, ttlSeconds, waitMillis int) Factory {
	return func(ctx context.Context, key string) Mutex {
		return NewDraftMutex(ctx, rds, key, ttlSeconds, waitMillis)
	}
}

// NewFactoryFromConfig 按配置构造锁工厂
func NewFactoryFromConfig(c *config.Config) Factory {
	ttl := c.Practice.LockTTLSeconds
	if ttl <= 0 {
		ttl = consts.DefaultLockTTLSeconds
	}
	wait := c.Practice.LockWaitMillis
	if wait <= 0 {
		wait = consts.DefaultLockWaitMillis
	}
	return NewRedisFactory(scoreredis.GetRedis(c), ttl, wait)
}

// Lock 在等待窗口内尝试获取锁 超时返回 ErrFinalizeInFlight
func (m *DraftMutex) Lock() error {
	deadline := time.Now().Add(time.Duration(m.waitMillis) * time.Millisecond)
	for {
		ok, err := m.rds.SetnxExCtx(m.ctx, m.key, m.value, m.ttl)
		if err != nil {
			return err
		}
		if ok {
			m.acquiredAt = time.Now()
			return nil
		}
		if time.Now().After(deadline) {
			return consts.ErrFinalizeInFlight
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// Unlock 仅删除自己持有的锁
func (m *DraftMutex) Unlock() error {
	_, err := m.rds.EvalCtx(m.ctx, unlockScript, []string{m.key}, m.value)
	return err
}

// Expired 判断持有时间是否已超过TTL
func (m *DraftMutex) Expired() bool {
	if m.acquiredAt.IsZero() {
		return false
	}
	return time.Since(m.acquiredAt) > time.Duration(m.ttl)*time.Second
}
