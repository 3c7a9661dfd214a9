package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/storage/redis/v3"
	"github.com/urfave/cli/v2"
	"github.com/w0nsdoof/diplomatch/internal/audit"
	"github.com/w0nsdoof/diplomatch/internal/auth"
	"github.com/w0nsdoof/diplomatch/internal/chat"
	"github.com/w0nsdoof/diplomatch/internal/common"
	"github.com/w0nsdoof/diplomatch/internal/config"
	"github.com/w0nsdoof/diplomatch/internal/handlers/api"
	"github.com/w0nsdoof/diplomatch/internal/handlers/ws"
	"github.com/w0nsdoof/diplomatch/internal/mail"
	"github.com/w0nsdoof/diplomatch/internal/middlewares"
	"github.com/w0nsdoof/diplomatch/internal/notifications"
	"github.com/w0nsdoof/diplomatch/internal/presence"
	"github.com/w0nsdoof/diplomatch/internal/realtime"
	"github.com/w0nsdoof/diplomatch/internal/store"
	"github.com/w0nsdoof/diplomatch/internal/users"
	"github.com/w0nsdoof/diplomatch/model"
	"github.com/w0nsdoof/diplomatch/params"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "diplomatch - diploma thesis matching backend"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
	}
	app.Action = run
}

func mustInitLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func mustInitDatabase(dbConfig config.MySQLConfig) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dbConfig.Dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   dbConfig.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Failed to obtain database handle", "error", err)
		os.Exit(1)
	}
	if dbConfig.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	}
	if dbConfig.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	}
	if dbConfig.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(dbConfig.ConnMaxIdleTime) * time.Second)
	}
	if dbConfig.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Second)
	}

	if err := db.AutoMigrate(model.Models...); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	return db
}

func mustInitMailSender(mailCfg config.MailConfig) mail.MailSender {
	switch mailCfg.Backend {
	case "", "log":
		return mail.LogMailSender{}
	case "smtp":
		return mail.NewSMTPMailSender(mail.SMTPConfig{
			Host:     mailCfg.SMTP.Host,
			Port:     mailCfg.SMTP.Port,
			Username: mailCfg.SMTP.Username,
			Password: mailCfg.SMTP.Password,
			SSL:      mailCfg.SMTP.SSL,
		}, mailCfg.From)
	}
	log.Fatalf("Unsupported mail sender backend %s", mailCfg.Backend)
	return nil
}

func mustInitRedisStorage(redisCfg config.RedisConfig) *redis.Storage {
	return redis.New(redis.Config{
		URL:           redisCfg.URL,
		PoolSize:      redisCfg.PoolSize,
		IsClusterMode: redisCfg.ClusterMode,
	})
}

func setupAPIRoutes(
	router fiber.Router,
	tokenService *auth.TokenService,
	authHandler *api.AuthHandler,
	chatHandler *api.ChatHandler,
	notificationHandler *api.NotificationHandler,
	statusHandler *api.StatusHandler) {

	router.Post("/auth/register", authHandler.PostRegister)
	router.Post("/auth/login", authHandler.PostLogin)
	router.Post("/auth/token/refresh", authHandler.PostRefresh)
	router.Post("/auth/forgot-password", authHandler.PostForgotPassword)
	router.Put("/auth/reset-password/:token", authHandler.PutResetPassword)

	router.Use(middlewares.RequireAuth(tokenService))
	router.Get("/auth/me", authHandler.GetMe)
	router.Post("/auth/me/complete-profile", authHandler.PostCompleteProfile)
	router.Post("/chats", chatHandler.PostStartChat)
	router.Get("/chats", chatHandler.GetChats)
	router.Get("/chats/:id", chatHandler.GetChat)
	router.Get("/chats/:id/messages", chatHandler.GetMessages)
	router.Post("/chats/:id/messages", chatHandler.PostMessage)
	router.Post("/messages/:id/read", chatHandler.PostMarkMessageRead)
	router.Get("/notifications", notificationHandler.GetNotifications)
	router.Get("/notifications/unread-count", notificationHandler.GetUnreadCount)
	router.Post("/notifications/read-all", notificationHandler.PostMarkAllRead)
	router.Delete("/notifications/:id", notificationHandler.DeleteNotification)
	router.Get("/users/:id/status", statusHandler.GetUserStatus)
}

func setupSocketRoutes(
	router fiber.Router,
	chatSocketHandler *ws.ChatHandler,
	notificationSocketHandler *ws.NotificationHandler) {

	router.Use(ws.UpgradeRequired)
	router.Get("/chat/:id", websocket.New(chatSocketHandler.Handle))
	router.Get("/notifications", websocket.New(notificationSocketHandler.Handle))
}

func run(ctx *cli.Context) error {
	config, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}

	mustInitLogger(config.Debug || ctx.IsSet(debugFlag.Name))

	mailSender := mustInitMailSender(config.Mail)
	db := mustInitDatabase(config.MySQL)
	redisStorage := mustInitRedisStorage(config.Redis)
	cacheStorage := store.NewRedisStorage(redisStorage.Conn())
	clock := common.RealClock{}
	audit.Initialize(audit.NewAuditEventRepository(db))

	// repositories
	var (
		userRepo         = users.NewUserRepository(db)
		chatRepo         = chat.NewChatRepository(db)
		notificationRepo = notifications.NewNotificationRepository(db)
		statusRepo       = presence.NewStatusRepository(db)
	)

	// services
	var (
		bus                 = realtime.NewBus()
		userService         = users.NewUserService(db, userRepo, cacheStorage)
		ipLimiter           = auth.NewIPRateLimiter(cacheStorage)
		loginGuard          = auth.NewLoginGuard(userService, ipLimiter, clock)
		tokenService        = auth.NewTokenService(config.JWT.Secret, config.JWT.Issuer, config.JWT.AccessExpires, config.JWT.RefreshExpires, clock)
		tracker             = presence.NewTracker(statusRepo, clock)
		chatService         = chat.NewChatService(chatRepo, userService, bus)
		notificationService = notifications.NewNotificationService(notificationRepo, bus)
	)

	// handlers
	var (
		authHandler               = api.NewAuthHandler(loginGuard, tokenService, userService, mailSender, config.FrontendURL)
		chatHandler               = api.NewChatHandler(chatService)
		notificationHandler       = api.NewNotificationHandler(notificationService)
		statusHandler             = api.NewStatusHandler(tracker)
		chatSocketHandler         = ws.NewChatHandler(tokenService, chatService, tracker, bus)
		notificationSocketHandler = ws.NewNotificationHandler(tokenService, tracker, bus)
	)

	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		BodyLimit:     params.ServerBodyLimit,
		IdleTimeout:   params.ServerIdleTimeout,
		ReadTimeout:   params.ServerReadTimeout,
		WriteTimeout:  params.ServerWriteTimeout,
		ErrorHandler:  middlewares.ErrorHandler,
	})

	router.Use(recover.New())
	router.Use(logger.New())
	router.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(config.AllowOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	setupAPIRoutes(router.Group("/api"), tokenService, authHandler, chatHandler, notificationHandler, statusHandler)
	setupSocketRoutes(router.Group("/ws"), chatSocketHandler, notificationSocketHandler)

	healthCheckCtx, term := context.WithCancel(ctx.Context)
	done := make(chan struct{})
	go common.StartHealthCheckServer(healthCheckCtx, done, redisStorage.Conn(), db)
	defer func() {
		term()
		<-done
	}()
	return router.Listen(config.ListenAddr)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
