package app

import (
	"github.com/fintrack/fintrack/internal/cache"
	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/event_bus"
	"github.com/fintrack/fintrack/internal/utils"
	"github.com/fintrack/fintrack/pkg/auth"
	"github.com/fintrack/fintrack/pkg/google"
	"github.com/fintrack/fintrack/pkg/market"
	"github.com/fintrack/fintrack/pkg/monthly"
	"github.com/fintrack/fintrack/pkg/profile"
	"github.com/fintrack/fintrack/pkg/signup"
	"github.com/fintrack/fintrack/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock        utils.Clock
	EventBus     *event_bus.EventBus
	CacheManager *cache.Manager

	AuthTokenValidator auth.TokenValidator
	AuthClient         auth.Client
	SessionRefresher   *auth.SessionRefresher
	AuthHandler        *auth.Handler

	UserService user.Service
	UserHandler *user.Handler

	ProfileService profile.Service
	ProfileHandler *profile.Handler

	MonthlyService  monthly.Service
	MonthlyRenderer monthly.Renderer
	MonthlyHandler  *monthly.Handler

	SignupService *signup.ServiceImpl
	SignupHandler *signup.Handler

	MarketPublisher market.Publisher
	MarketService   *market.ServiceImpl
	MarketHandler   *market.Handler

	GoogleAuth    *google.GoogleAuth
	GoogleService google.Service
	GoogleHandler *google.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()
	deps.CacheManager = cache.NewManager()

	deps.AuthTokenValidator = auth.NewJwtValidator(cfg.Auth)
	deps.AuthClient = auth.NewHttpClient(cfg.Auth)
	deps.SessionRefresher = auth.NewSessionRefresher(deps.AuthClient, cfg.Session, cfg.Cache.Size, deps.Clock)
	for _, c := range deps.SessionRefresher.Caches() {
		deps.CacheManager.Register(c)
	}
	deps.AuthHandler = auth.NewHandler(deps.SessionRefresher, deps.AuthClient, deps.EventBus)

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	profileCache := cache.NewLRU[int, profile.UserProfile](cfg.Cache.Size, cfg.Cache.Ttl, deps.Clock)
	deps.CacheManager.Register(profileCache)
	deps.ProfileService = profile.NewCachedService(
		profile.NewService(profile.NewRepository(db), deps.EventBus),
		profileCache,
		deps.EventBus,
	)
	deps.ProfileHandler = profile.NewHandler(deps.ProfileService)

	deps.MonthlyService = monthly.NewService(monthly.NewRepository(db))
	deps.MonthlyRenderer = monthly.NewCsvRenderer()
	deps.MonthlyHandler = monthly.NewHandler(deps.MonthlyService, deps.MonthlyRenderer)

	deps.SignupService = signup.NewService(deps.AuthClient, deps.UserService, deps.ProfileService)
	deps.SignupHandler = signup.NewHandler(deps.SignupService)

	publisher, err := market.NewPublisher(cfg.Amqp)
	if err != nil {
		return nil, err
	}
	deps.MarketPublisher = publisher
	deps.MarketService = market.NewService(market.NewRepository(db), deps.MarketPublisher, deps.EventBus, deps.Clock)
	deps.MarketHandler = market.NewHandler(deps.MarketService, cfg.Market.WebhookSecret, cfg.Market.MaxBatchSize)

	deps.GoogleAuth = google.NewGoogleAuth(google.NewTokenRepository(db), cfg)
	deps.GoogleService = google.NewService(deps.GoogleAuth, deps.MonthlyService, nil)
	deps.GoogleHandler = google.NewHandler(deps.GoogleService)

	return deps, nil
}
