package container

import (
	"log/slog"

	"github.com/joshua-takyi/rentinout/internal/config"
	"github.com/joshua-takyi/rentinout/internal/helpers"
	"github.com/joshua-takyi/rentinout/internal/identity"
	"github.com/joshua-takyi/rentinout/internal/mailer"
	"github.com/joshua-takyi/rentinout/internal/metrics"
	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/joshua-takyi/rentinout/internal/policy"
	"github.com/joshua-takyi/rentinout/internal/realtime"
	"github.com/joshua-takyi/rentinout/internal/services"
	"github.com/prometheus/client_golang/prometheus"
)

// Store is everything the services need from persistence.
type Store interface {
	models.UserRepo
	models.PostRepo
	models.CategoryRepo
	models.MessageRepo
	models.TokenRepo
	models.Transactor
}

// Deps are the connected clients built in main. Google and Backplane are nil
// when not configured.
type Deps struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     Store
	Media     services.MediaDeleter
	Mail      mailer.Dispatcher
	Google    identity.Verifier
	Backplane realtime.Backplane
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
}

// Container holds all application dependencies
type Container struct {
	Logger   *slog.Logger
	Config   *config.Config
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Issuer   *helpers.TokenIssuer
	Hub      *realtime.Hub

	AuthService     *services.AuthService
	UserService     *services.UserService
	PostService     *services.PostService
	CategoryService *services.CategoryService
	ChatService     *services.ChatService
	MediaService    *services.MediaService
}

// NewContainer creates a new dependency injection container
func NewContainer(d Deps) *Container {
	cfg := d.Config
	pol := policy.New(cfg.SuperID)
	issuer := helpers.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)

	media := services.NewMediaService(d.Media, d.Metrics.MediaDeletes, d.Logger)
	auth := services.NewAuthService(d.Store, d.Store, issuer, d.Mail, d.Google, services.AuthOptions{
		Domain:    cfg.Domain,
		VerifyTTL: cfg.VerifyTTL,
		ResetTTL:  cfg.ResetTTL,
		Inbox:     cfg.MailUser,
	}, d.Logger)

	hub := realtime.NewHub(realtime.HubOptions{
		Authorize: policy.CanJoin,
		Backplane: d.Backplane,
		Logger:    d.Logger,
		Metrics:   d.Metrics,
	})

	return &Container{
		Logger:          d.Logger,
		Config:          cfg,
		Registry:        d.Registry,
		Metrics:         d.Metrics,
		Issuer:          issuer,
		Hub:             hub,
		AuthService:     auth,
		UserService:     services.NewUserService(d.Store, d.Store, pol, media),
		PostService:     services.NewPostService(d.Store, d.Store, d.Store, pol, media),
		CategoryService: services.NewCategoryService(d.Store),
		ChatService:     services.NewChatService(d.Store, d.Store, d.Store),
		MediaService:    media,
	}
}
