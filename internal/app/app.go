package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/ttahub/ttahub/internal/config"
	"github.com/ttahub/ttahub/internal/db"
	"github.com/ttahub/ttahub/internal/metrics"
	"github.com/ttahub/ttahub/internal/repository"
	"github.com/ttahub/ttahub/internal/service"
	"github.com/ttahub/ttahub/internal/storage"
)

type App struct {
	Cfg                *config.Config
	DB                 *sqlx.DB
	Metrics            *metrics.Metrics
	EmailService       *service.EmailService
	FileService        *service.FileService
	GoalService        *service.GoalService
	ObjectiveService   *service.ObjectiveService
	MaintenanceService *service.MaintenanceService
	ExportService      *service.ExportService
}

func New(cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return Wire(cfg, database)
}

// Wire builds the services on an already migrated database.
func Wire(cfg *config.Config, database *sqlx.DB) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Repositories
	grantRepository := repository.NewGrantRepository(database)
	goalRepository := repository.NewGoalRepository(database)
	goalTemplateRepository := repository.NewGoalTemplateRepository(database)
	objectiveRepository := repository.NewObjectiveRepository(database)
	objectiveTemplateRepository := repository.NewObjectiveTemplateRepository(database)
	fileRepository := repository.NewFileRepository(database)
	templateMergeRepository := repository.NewTemplateMergeRepository(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.NotifyEmail,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	fileService := service.NewFileService(fileRepository, fileStorage)
	goalService := service.NewGoalService(
		database,
		grantRepository,
		goalRepository,
		goalTemplateRepository,
		emailService,
		m,
		cfg.TemplateNameCheck,
	)
	objectiveService := service.NewObjectiveService(
		database,
		grantRepository,
		goalRepository,
		objectiveRepository,
		objectiveTemplateRepository,
		fileRepository,
		fileService,
		m,
	)
	maintenanceService := service.NewMaintenanceService(database, templateMergeRepository, m)
	exportService := service.NewExportService(grantRepository, goalRepository)

	return &App{
		Cfg:                cfg,
		DB:                 database,
		Metrics:            m,
		EmailService:       emailService,
		FileService:        fileService,
		GoalService:        goalService,
		ObjectiveService:   objectiveService,
		MaintenanceService: maintenanceService,
		ExportService:      exportService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
