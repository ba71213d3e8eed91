package bootstrap

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/mgc/inscriptions/internal/app/controllers"
	appRepos "github.com/mgc/inscriptions/internal/app/repositories"
	appRoutes "github.com/mgc/inscriptions/internal/app/routes"
	appServices "github.com/mgc/inscriptions/internal/app/services"
	"github.com/mgc/inscriptions/internal/bot"
	"github.com/mgc/inscriptions/internal/config"
	"github.com/mgc/inscriptions/internal/db"
	appMiddleware "github.com/mgc/inscriptions/internal/middleware"
	"github.com/mgc/inscriptions/internal/pkg/logger"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	StudentService    appServices.StudentService
	StudentController *appControllers.StudentController
	StudentRepo       *appRepos.StudentRepository
	Bot               *bot.Bot
	Logger            zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the MongoDB connection and ensures indexes.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.MongoDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewMongoDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Str("database", cfg.Database.DBName).Msg("Database connection successfully established.")
	return database, nil
}

// SetupBot creates the Telegram bot when a token is configured. A missing
// token is not an error: the API then runs without the bot front door.
func SetupBot(cfg *config.Config, lgr zerolog.Logger) (*bot.Bot, error) {
	if cfg.Telegram.BotToken == "" {
		lgr.Warn().Msg("No bot token configured, Telegram front door disabled")
		return nil, nil
	}

	tgBot, err := bot.New(cfg.Telegram.BotToken, cfg.Telegram.WebAppURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to create Telegram bot")
		return nil, err
	}
	return tgBot, nil
}

// BuildDependencies initializes repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.MongoDB, tgBot *bot.Bot, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr, Bot: tgBot}

	deps.StudentRepo = appRepos.NewStudentRepository(database.Database)

	// The *bot.Bot is passed through an interface; a nil bot must stay a
	// nil interface value inside the service.
	var notifier appServices.Notifier
	if tgBot != nil {
		notifier = tgBot
	}
	deps.StudentService = appServices.NewStudentService(deps.StudentRepo, notifier, cfg.Telegram.BotToken)

	deps.StudentController = appControllers.NewStudentController(deps.StudentService, appControllers.AdminCredentials{
		Password: cfg.Admin.Password,
		Hash:     cfg.Admin.PasswordHash,
	})

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestID())
	router.Use(cors.Default())

	appRoutes.SetupRouter(router, deps.StudentController)

	// The form UI lives in the public directory and is served at the site
	// root; registered API routes keep priority.
	router.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.Server.PublicDir))))
	lgr.Info().Str("path", cfg.Server.PublicDir).Msg("Static file serving configured")

	return router
}
