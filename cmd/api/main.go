package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"finledger/internal/config"
	"finledger/internal/database"
	"finledger/internal/domain"
	"finledger/internal/middleware"
	"finledger/internal/modules/admin"
	"finledger/internal/modules/auth"
	jwtsvc "finledger/internal/pkg/jwt"
	"finledger/internal/repository"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.RefreshToken{},
		&domain.PasswordResetCode{},
	); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)
	resetCodeRepo := repository.NewResetCodeRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	var mailer auth.Mailer
	if cfg.SMTPHost != "" {
		mailer = auth.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, cfg.MailTimeout)
	} else {
		mailer = auth.NewDevConsoleMailer(true)
	}

	authService := auth.NewService(
		userRepo,
		refreshRepo,
		resetCodeRepo,
		j,
		mailer,
		cfg.RefreshTokenPepper,
		cfg.RefreshTTL,
		cfg.ResetCodePepper,
		cfg.ResetCodeTTL,
		cfg.MailTimeout,
	)
	authHandler := auth.NewHandler(authService)

	adminService := admin.NewService(db, admin.DevLogApprover{})
	adminHandler := admin.NewHandler(adminService)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)

			superuser := protected.Group("/admin")
			superuser.Use(middleware.RequireSuperuser())
			adminHandler.RegisterRoutes(superuser)
		}
	}

	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
