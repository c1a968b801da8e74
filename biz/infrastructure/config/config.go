package config

import (
	_ "embed"
	"os"
	"scorewise/biz/infrastructure/consts"
	"scorewise/biz/infrastructure/util/log"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/service"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

// //go:embed config.local.yaml
var embeddedConfig []byte

var config *Config

type Auth struct {
	SecretKey    string
	PublicKey    string
	AccessExpire int64
}

// Practice 练习会话相关配置 未配置项取默认值
type Practice struct {
	Task1Seconds          int64 `json:",default=1200"`
	Task2Seconds          int64 `json:",default=2400"`
	DebounceMillis        int64 `json:",default=1500"`
	DraftTTLSeconds       int   `json:",default=1209600"`
	LockTTLSeconds        int   `json:",default=30"`
	LockWaitMillis        int   `json:",default=200"`
	SessionIdleTTLSeconds int64 `json:",default=3600"`
}

type Config struct {
	service.ServiceConf
	ListenOn string
	State    string
	Auth     Auth
	Mongo    struct {
		URL string
		DB  string
	}
	MySQL struct {
		DSN string
	}
	Cache    cache.CacheConf
	Redis    *redis.RedisConf
	Practice Practice
}

func NewConfig() (*Config, error) {
	c := new(Config)

	if len(embeddedConfig) == 0 {
		path := os.Getenv("CONFIG_PATH")
		log.Info("NewConfig load config from path: %s", path)
		err := conf.Load(path, c)
		if err != nil {
			return nil, err
		}
	} else {
		err := conf.LoadFromYamlBytes(embeddedConfig, c)
		if err != nil {
			return nil, err
		}
	}

	err := c.SetUp()
	if err != nil {
		return nil, err
	}
	config = c
	return c, nil
}

func GetConfig() *Config {
	return config
}

// DurationFor 根据考试类型返回计时时长 free-essay 不限时 返回0
func (c *Config) DurationFor(examKind string) int64 {
	switch examKind {
	case consts.ExamKindTask1:
		if c.Practice.Task1Seconds > 0 {
			return c.Practice.Task1Seconds
		}
		return consts.DefaultTask1Seconds
	case consts.ExamKindTask2:
		if c.Practice.Task2Seconds > 0 {
			return c.Practice.Task2Seconds
		}
		return consts.DefaultTask2Seconds
	default:
		return 0
	}
}
