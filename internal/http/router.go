package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/coursecatalog/internal/logger"
)

const defaultPageLimit = 10

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	limit := cfg.DefaultLimit
	if limit < 1 {
		limit = defaultPageLimit
	}

	// Request bodies with keys outside the schema are rejected.
	binding.EnableDecoderDisallowUnknownFields = true
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(OperationID())
	router.Use(AccessLog(log.Named("http")))
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("Route [%s] not found", c.Request.URL.RequestURI())})
	})

	health := NewHealthController(cfg.DataFiles, cfg.Database, cfg.Version)
	router.GET("/health", health.Status)

	api := router.Group("/api")

	courses := NewCoursesController(cfg.Catalog.Courses, limit)
	api.GET("/courses", courses.List)
	api.GET("/courses/:courseId", courses.Get)
	api.POST("/courses", courses.Create)
	api.PUT("/courses/:courseId", courses.Update)
	api.DELETE("/courses/:courseId", courses.Delete)

	modules := NewModulesController(cfg.Catalog.Modules, limit)
	api.GET("/modules", modules.List)
	api.GET("/modules/:moduleId", modules.Get)
	api.GET("/courses/:courseId/modules", modules.List)
	api.GET("/courses/:courseId/modules/:moduleId", modules.Get)
	api.POST("/courses/:courseId/modules", modules.Create)
	api.PUT("/courses/:courseId/modules/:moduleId", modules.Update)
	api.DELETE("/courses/:courseId/modules/:moduleId", modules.Delete)

	lessons := NewLessonsController(cfg.Catalog.Lessons, limit)
	nested := "/courses/:courseId/modules/:moduleId/lessons"
	api.GET("/lessons", lessons.List)
	api.GET("/lessons/:lessonId", lessons.Get)
	api.GET(nested, lessons.List)
	api.GET(nested+"/:lessonId", lessons.Get)
	api.POST(nested, lessons.Create)
	api.PUT(nested+"/:lessonId", lessons.Update)
	api.DELETE(nested+"/:lessonId", lessons.Delete)

	if cfg.Checker != nil {
		consistency := NewConsistencyController(cfg.Checker, cfg.Queue, cfg.Journal)
		api.GET("/consistency", consistency.Check)
		api.POST("/consistency/repair", consistency.Repair)
		if cfg.Queue != nil {
			api.POST("/consistency/check", consistency.Enqueue)
		}
	}

	if cfg.Journal != nil {
		audit := NewAuditController(cfg.Journal, limit)
		api.GET("/audit", audit.GetAuditEvents)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", headerRequestID},
		ExposeHeaders: []string{headerRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
