package router

import (
	"github.com/guruunoob/goobex-website/internal/application"
	"github.com/guruunoob/goobex-website/internal/container"
	pginfra "github.com/guruunoob/goobex-website/internal/infrastructure/postgres"
	"github.com/guruunoob/goobex-website/internal/infrastructure/redisstore"
	handlers "github.com/guruunoob/goobex-website/internal/interface/http"
	"github.com/guruunoob/goobex-website/internal/router/modules"
)

func buildService() *application.Service {
	cfg := container.GetConfig()

	repo := pginfra.NewAccountRepository(container.GetPGPool())
	sessions := redisstore.New(container.GetRedis())

	svc := application.NewService(
		repo,
		container.GetDirectory(),
		container.GetOAuth(),
		sessions,
		container.GetJWT(),
		container.GetLogger(),
		cfg.SessionTTL,
	)
	svc.ES = container.GetES()
	svc.ESIndex = cfg.ESAccountsIndex
	svc.GCS = container.GetGCS()
	svc.GCSBucket = cfg.GCSBucket
	if pub := container.GetRabbitPub(); pub != nil {
		svc.Pub = pub
	}
	svc.AppName = cfg.AppName
	svc.BaseURL = cfg.PublicBaseURL
	svc.MailEnabled = cfg.MailSendEnabled
	return svc
}

// InitModules wires all application modules into the router registry.
// Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	svc := buildService()

	authHandler := handlers.NewAuthHandler(svc, logger, cfg.CookieDomain, cfg.CookieSecure)
	accountHandler := handlers.NewAccountHandler(svc, logger)
	viewHandler := handlers.NewViewHandler(svc, logger)

	r.Add(modules.NewAuthModule(authHandler, svc))
	r.Add(modules.NewAccountModule(accountHandler, svc, cfg.UsersAPIRequireAuth, cfg.AccountAPIEnabled))
	r.Add(modules.NewViewModule(viewHandler, svc))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
