package main

import (
	"net/http"

	"go.uber.org/zap"

	"elibro/config"
	"elibro/crypto"
	"elibro/db"
	"elibro/db/mongo"
	"elibro/db/postgres"
	"elibro/handlers"
	"elibro/repository"
	"elibro/routes"
	"elibro/token"
	"elibro/utils"
)

func main() {
	// Load config from .env or system environment
	cfg := config.LoadConfig()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	cipher, err := crypto.NewFieldCipher(cfg.EncryptionSecretKey)
	if err != nil {
		logger.Fatal("field cipher init", zap.Error(err))
	}

	var userRepo repository.UserRepository
	var bookRepo repository.BookRepository

	switch db.DBType(cfg.DBType) {
	case db.Postgres:
		if err := db.RunMigrations(cfg.PostgresURL); err != nil {
			logger.Fatal("migrations", zap.Error(err))
		}

		pg := postgres.NewPostgresDB(cfg.PostgresURL)
		if err := pg.Connect(); err != nil {
			logger.Fatal("postgres connect", zap.Error(err))
		}
		defer pg.Disconnect()

		userRepo = repository.NewPostgresUserRepo(pg.Conn, cipher)
		bookRepo = repository.NewPostgresBookRepo(pg.Conn)

	case db.Mongo:
		mg := mongo.NewMongoDB(cfg.MongoURL, cfg.MongoDB)
		if err := mg.Connect(); err != nil {
			logger.Fatal("mongo connect", zap.Error(err))
		}
		defer mg.Disconnect()

		userRepo = repository.NewMongoUserRepo(mg.Client, cfg.MongoDB, cipher)
		bookRepo = repository.NewMongoBookRepo(mg.Client, cfg.MongoDB)

	default:
		logger.Fatal("DB_TYPE not supported", zap.String("dbType", cfg.DBType))
	}

	tokens := token.NewService(
		userRepo,
		cipher,
		[]byte(cfg.AccessTokenSecret),
		[]byte(cfg.RefreshTokenSecret),
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	guard := &handlers.Auth{Tokens: tokens, Users: userRepo, Logger: logger}

	authHandler := &handlers.AuthHandler{Users: userRepo, Tokens: tokens, Logger: logger}
	userHandler := &handlers.UserHandler{Repo: userRepo, Logger: logger}
	bookHandler := &handlers.BookHandler{Repo: bookRepo, Logger: logger}
	reportHandler := &handlers.ReportHandler{
		Repo:     repository.NewReportRepository(bookRepo, userRepo),
		SavePath: cfg.PDFSavePath,
		Logger:   logger,
	}
	r2cfg := utils.R2Config{
		Bucket:          cfg.R2Bucket,
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		PublicURL:       cfg.R2PublicURL,
	}
	if r2cfg.Configured() {
		uploader, err := utils.NewR2Uploader(r2cfg)
		if err != nil {
			logger.Fatal("r2 init", zap.Error(err))
		}
		reportHandler.R2 = uploader
	}

	handler := routes.SetupRoutes(authHandler, userHandler, bookHandler, reportHandler, guard, cfg.CORSOrigin, logger)

	logger.Info("server running", zap.String("port", cfg.Port), zap.String("dbType", cfg.DBType))
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
