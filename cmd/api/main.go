package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/peoplecore/leave-backend-go/internal/config"
	appHTTP "github.com/peoplecore/leave-backend-go/internal/handler/http"
	"github.com/peoplecore/leave-backend-go/internal/pkg/cron"
	"github.com/peoplecore/leave-backend-go/internal/pkg/database"
	"github.com/peoplecore/leave-backend-go/internal/pkg/jwt"
	"github.com/peoplecore/leave-backend-go/internal/pkg/oauth"
	"github.com/peoplecore/leave-backend-go/internal/pkg/sse"
	"github.com/peoplecore/leave-backend-go/internal/pkg/storage"
	"github.com/peoplecore/leave-backend-go/internal/repository/postgresql"
	serviceAuth "github.com/peoplecore/leave-backend-go/internal/service/auth"
	"github.com/peoplecore/leave-backend-go/internal/service/file"
	serviceLeave "github.com/peoplecore/leave-backend-go/internal/service/leave"
	serviceNotification "github.com/peoplecore/leave-backend-go/internal/service/notification"
	serviceReport "github.com/peoplecore/leave-backend-go/internal/service/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	userRepo := postgresql.NewUserRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	balanceRepo := postgresql.NewBalanceRepository(db)
	approvalRepo := postgresql.NewApprovalRepository(db)
	versionRepo := postgresql.NewVersionRepository(db)
	commentRepo := postgresql.NewCommentRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	googleService := oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(
			cfg.Storage.BasePath,
			cfg.Storage.BaseURL,
		)
		if err != nil {
			log.Fatal("Failed to initialize local storage:", err)
		}
	default:
		log.Fatal("Unsupported storage type: ", cfg.Storage.Type)
	}

	hub := sse.NewHub()
	notificationService := serviceNotification.NewNotificationService(notificationRepo, hub, serviceNotification.Config{})
	defer notificationService.Stop()

	fileService := file.NewFileService(fileStorage)
	authService := serviceAuth.NewAuthService(userRepo, jwtService)
	leaveService := serviceLeave.NewLeaveService(
		db,
		cfg.LeavePolicy,
		leaveRequestRepo,
		balanceRepo,
		approvalRepo,
		versionRepo,
		commentRepo,
		holidayRepo,
		auditRepo,
		userRepo,
		notificationService,
	)
	reportService := serviceReport.NewReportService(leaveRequestRepo, balanceRepo, userRepo)

	scheduler := cron.NewScheduler()
	cron.RegisterBalanceAccrual(scheduler, leaveService)
	scheduler.Start()
	defer scheduler.Stop()

	authHandler := appHTTP.NewAuthHandler(authService, jwtService, googleService)
	leaveHandler := appHTTP.NewLeaveHandler(leaveService, fileService)
	notificationHandler := appHTTP.NewNotificationHandler(notificationService, jwtService, hub)
	reportHandler := appHTTP.NewReportHandler(reportService)

	router := appHTTP.NewRouter(
		cfg,
		jwtService,
		authHandler,
		leaveHandler,
		notificationHandler,
		reportHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
