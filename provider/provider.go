package provider

import (
	"scorewise/biz/application/service"
	"scorewise/biz/infrastructure/config"
	"scorewise/biz/infrastructure/lock"
	"scorewise/biz/infrastructure/repository/draft"
	"scorewise/biz/infrastructure/repository/essay"
	"scorewise/biz/infrastructure/repository/prompt"
	"scorewise/biz/infrastructure/repository/submission"

	"github.com/google/wire"
)

var provider *Provider

func Init() {
	var err error
	provider, err = NewProvider()
	if err != nil {
		panic(err)
	}
}

// Provider 提供controller依赖的对象
type Provider struct {
	Config          *config.Config
	SessionService  *service.SessionService
	DraftService    *service.DraftService
	PromptService   *service.PromptService
	ReviewService   *service.ReviewService
	FinalizeService *service.FinalizeService
}

func Get() *Provider {
	return provider
}

var ApplicationSet = wire.NewSet(
	service.SessionServiceSet,
	service.DraftServiceSet,
	service.PromptServiceSet,
	service.ReviewServiceSet,
	service.FinalizeServiceSet,
	service.NewAutosaveScheduler,
)

var InfrastructureSet = wire.NewSet(
	config.NewConfig,
	draft.NewRedisStore,
	wire.Bind(new(draft.Store), new(*draft.RedisStore)),
	essay.NewMongoMapper,
	wire.Bind(new(service.EssayStore), new(*essay.MongoMapper)),
	submission.NewMongoMapper,
	wire.Bind(new(service.SubmissionStore), new(*submission.MongoMapper)),
	prompt.NewMySQLMapperFromConfig,
	lock.NewFactoryFromConfig,
)

var AllProvider = wire.NewSet(
	ApplicationSet,
	InfrastructureSet,
)
