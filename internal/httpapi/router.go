package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"campus-attendance/internal/auth"
	"campus-attendance/internal/httpmiddleware"
	"campus-attendance/internal/logging"
)

// Deps wires the router to its services.
type Deps struct {
	Log         *zap.Logger
	Production  bool
	Issuer      auth.Issuer
	Limiter     httpmiddleware.Limiter
	CORSOrigins []string
	Health      map[string]HealthCheck

	Departments Departments
	Faculty     Faculty
	Subjects    Subjects
	Students    Students
	Timetables  Timetables
	Attendance  Attendance
	Approvals   Approvals
	Institute   Institute
	Dashboard   Dashboard
}

type Handler struct {
	Deps
	log        *zap.Logger
	production bool
}

// POST routes that only read.
var readOnlyRoutes = []string{
	"/auth/login",
	"/auth/refresh",
	"/timetable/get",
	"/attendance/sheets",
	"/attendance/report/monthly",
	"/attendance/report/overall",
	"/attendance/report/class",
	"/attendance/report/schedule",
	"/attendance/report/unmarked",
	"/attendance/report/strength",
	"/attendance/report/average",
}

// NewRouter mounts every route on a gin engine.
func NewRouter(d Deps) *gin.Engine {
	registerValidators()
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	h := &Handler{Deps: d, log: d.Log, production: d.Production}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestID())
	r.Use(logging.Gin(d.Log, "/healthz", "/metrics"))
	r.Use(httpmiddleware.Metrics())
	r.Use(cors.New(corsConfig(d.CORSOrigins)))
	r.Use(httpmiddleware.SecurityHeaders())
	if d.Limiter != nil {
		r.Use(httpmiddleware.RateLimit(d.Limiter, d.Log))
	}
	if d.Dashboard != nil {
		r.Use(httpmiddleware.InvalidateOnWrite(d.Dashboard, d.Log, readOnlyRoutes...))
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.health)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, envelope{Status: "err", Message: "route not found", Code: http.StatusNotFound, Data: gin.H{}})
	})

	r.POST("/auth/login", h.login)
	r.POST("/auth/refresh", h.refresh)

	api := r.Group("/", auth.RequireAuth(d.Issuer))
	admin := auth.RequireRole(auth.RoleAdmin)
	staff := auth.RequireRole(auth.RoleAdmin, auth.RoleDeptAdmin)

	api.GET("/departments", h.listDepartments)
	api.GET("/departments/:id", h.getDepartment)
	api.GET("/departments/:id/courses", h.listCourses)
	api.POST("/departments", admin, h.createDepartment)
	api.DELETE("/departments/:id", admin, h.deleteDepartment)
	api.POST("/departments/:id/branches", admin, h.addBranch)
	api.DELETE("/departments/:id/branches/:shortForm", admin, h.removeBranch)
	api.POST("/departments/:id/branches/:shortForm/sessions", admin, h.addSession)
	api.DELETE("/departments/:id/branches/:shortForm/sessions/:session", admin, h.removeSession)

	api.GET("/faculty", h.listFaculty)
	api.GET("/faculty/:id", h.getFaculty)
	api.POST("/faculty", staff, h.createFaculty)
	api.DELETE("/faculty/:id", staff, h.deleteFaculty)

	api.GET("/subjects", h.listSubjects)
	api.GET("/subjects/:id", h.getSubject)
	api.POST("/subjects", staff, h.createSubject)
	api.DELETE("/subjects/:id", staff, h.deleteSubject)

	api.GET("/students", h.listStudents)
	api.GET("/students/classes", h.studentClasses)
	api.POST("/students", staff, h.createStudent)
	api.DELETE("/students/:scholarNo", staff, h.deleteStudent)

	api.POST("/timetable/get", h.getTimetable)
	api.POST("/timetable/update", h.updateTimetable)
	api.DELETE("/timetable/delete", h.deleteTimetableSlot)

	api.POST("/attendance/mark", h.markAttendance)
	api.POST("/attendance/sheets", h.attendanceSheets)
	api.POST("/attendance/report/monthly", h.monthlyReport)
	api.POST("/attendance/report/overall", h.overallReport)
	api.POST("/attendance/report/class", h.classReport)
	api.POST("/attendance/report/schedule", h.scheduleReport)
	api.POST("/attendance/report/unmarked", h.unmarkedDates)
	api.POST("/attendance/report/strength", h.classStrength)
	api.POST("/attendance/report/average", h.averageMarked)

	api.GET("/approvals", staff, h.listApprovals)
	api.GET("/approvals/pending", staff, h.pendingApprovals)
	api.POST("/approvals/sessions", staff, h.submitSession)
	api.POST("/approvals/branches", staff, h.submitBranch)
	api.POST("/approvals/:id/approve", admin, h.approve)
	api.POST("/approvals/:id/reject", admin, h.reject)
	api.PATCH("/approvals/read-status", staff, h.markRead)

	api.GET("/institute", h.getInstitute)
	api.PUT("/institute", admin, h.upsertInstitute)
	api.POST("/institute/sessions", admin, h.addInstituteSession)
	api.PUT("/institute/sessions/active", admin, h.activateInstituteSession)
	api.DELETE("/institute/sessions/:name", admin, h.removeInstituteSession)

	api.GET("/dashboard/stats", h.dashboardStats)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", httpmiddleware.RequestIDHeader},
		ExposeHeaders:    []string{httpmiddleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func (h *Handler) health(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{}
	for name, check := range h.Health {
		healthy := check(c.Request.Context())
		checks[name] = healthy
		if !healthy {
			status = http.StatusServiceUnavailable
		}
	}
	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
