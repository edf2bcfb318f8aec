package app

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/campusflow/course-scheduling-backend/internal/api"
	"github.com/campusflow/course-scheduling-backend/internal/enrollment"
	"github.com/campusflow/course-scheduling-backend/internal/notify"
	"github.com/campusflow/course-scheduling-backend/internal/pkg/clock"
	"github.com/campusflow/course-scheduling-backend/internal/report"
	"github.com/campusflow/course-scheduling-backend/internal/resource"
	"github.com/campusflow/course-scheduling-backend/internal/roster"
	"github.com/campusflow/course-scheduling-backend/internal/schedule"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Logger       *zap.Logger
	Clock        clock.Clock // defaults to the system clock
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router *gin.Engine
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.System()
	}

	// Resource Module
	resRepo := resource.NewPgxRepository(cfg.DBPool)
	resService := resource.NewService(resRepo)

	// Schedule Module
	schRepo := schedule.NewPgxRepository(cfg.DBPool)
	schService := schedule.NewService(schRepo, resService)

	// Roster Module
	rosRepo := roster.NewPgxRepository(cfg.DBPool)
	rosService := roster.NewService(rosRepo)
	ledger := roster.NewLedger(cfg.Logger)

	// Enrollment Module
	notifier := notify.NewLogNotifier(cfg.Logger)
	enrRepo := enrollment.NewPgxRepository(cfg.DBPool, ledger)
	enrService := enrollment.NewService(enrRepo, rosService, schService, notifier, clk, cfg.Logger)

	// Report Module
	repService := report.NewService(schRepo, resService, rosService)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:      cfg.IsProduction,
		ProdOrigins:       cfg.ProdOrigins,
		ResourceService:   resService,
		ScheduleService:   schService,
		RosterService:     rosService,
		EnrollmentService: enrService,
		ReportService:     repService,
	})

	return &Container{
		Router: router,
	}
}
