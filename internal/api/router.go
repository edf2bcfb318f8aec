package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/campusflow/course-scheduling-backend/internal/enrollment"
	enrHttp "github.com/campusflow/course-scheduling-backend/internal/enrollment/http"
	"github.com/campusflow/course-scheduling-backend/internal/report"
	repHttp "github.com/campusflow/course-scheduling-backend/internal/report/http"
	"github.com/campusflow/course-scheduling-backend/internal/resource"
	resHttp "github.com/campusflow/course-scheduling-backend/internal/resource/http"
	"github.com/campusflow/course-scheduling-backend/internal/roster"
	rosHttp "github.com/campusflow/course-scheduling-backend/internal/roster/http"
	"github.com/campusflow/course-scheduling-backend/internal/schedule"
	schHttp "github.com/campusflow/course-scheduling-backend/internal/schedule/http"
)

// Config carries the services and settings the router needs.
type Config struct {
	IsProduction bool
	ProdOrigins  string // comma-separated list of allowed origins

	ResourceService   resource.Service
	ScheduleService   schedule.Service
	RosterService     roster.Service
	EnrollmentService enrollment.Service
	ReportService     report.Service
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Recovery) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	resourceHandler := resHttp.NewHandler(cfg.ResourceService)
	scheduleHandler := schHttp.NewHandler(cfg.ScheduleService)
	rosterHandler := rosHttp.NewHandler(cfg.RosterService)
	enrollmentHandler := enrHttp.NewHandler(cfg.EnrollmentService)
	reportHandler := repHttp.NewHandler(cfg.ReportService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		resHttp.RegisterRoutes(v1, resourceHandler)
		schHttp.RegisterRoutes(v1, scheduleHandler)
		rosHttp.RegisterRoutes(v1, rosterHandler)
		enrHttp.RegisterRoutes(v1, enrollmentHandler)
		repHttp.RegisterRoutes(v1, reportHandler)
	}

	return r
}

func splitOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
