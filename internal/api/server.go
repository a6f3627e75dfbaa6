package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/felicity-events/eventops-api/docs"
	v1 "github.com/felicity-events/eventops-api/internal/api/handler/v1"
	"github.com/felicity-events/eventops-api/internal/api/middleware"
	"github.com/felicity-events/eventops-api/internal/config"
	"github.com/felicity-events/eventops-api/internal/repository"
	"github.com/felicity-events/eventops-api/internal/repository/dao"
	"github.com/felicity-events/eventops-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	regRepo := repository.NewRegistrationRepository(dao.NewRegistrationDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	ledger := service.NewCapacityLedger(eventRepo)
	uSvc := service.NewUserService(userRepo)

	authHandler := v1.NewAuthHandler(s.Config.API, service.NewAuthService(userRepo))
	userHandler := v1.NewUserHandler(uSvc)
	eventHandler := v1.NewEventHandler(
		service.NewEventService(eventRepo),
		service.NewFormService(eventRepo),
		uSvc,
	)
	regHandler := v1.NewRegistrationHandler(
		service.NewRegistrationService(eventRepo, regRepo, ledger),
		uSvc,
	)
	orderHandler := v1.NewOrderHandler(
		service.NewMerchOrderService(eventRepo, regRepo, ledger),
		uSvc,
	)
	attendanceHandler := v1.NewAttendanceHandler(
		service.NewAttendanceService(regRepo, userRepo),
		uSvc,
	)

	s.MountHandlers(authHandler, userHandler, eventHandler, regHandler, orderHandler, attendanceHandler)

	return s
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	eventHandler *v1.EventHandler,
	regHandler *v1.RegistrationHandler,
	orderHandler *v1.OrderHandler,
	attendanceHandler *v1.AttendanceHandler,
) {
	const basePath = "/api/v1"

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/signup", authHandler.HandleSignup)
		public.POST("/auth/login", authHandler.HandleLogin)
		public.GET("/events", eventHandler.HandleListEvents)
		public.GET("/events/:eventID", eventHandler.HandleGetEvent)
	}

	protected := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		protected.GET("/users/:userID", userHandler.HandleGetUser)

		protected.POST("/events", eventHandler.HandleCreateEvent)
		protected.GET("/events/mine", eventHandler.HandleListMyEvents)
		protected.PATCH("/events/:eventID/status", eventHandler.HandleTransitionEvent)
		protected.PUT("/events/:eventID", eventHandler.HandleEditEvent)
		protected.POST("/events/:eventID/form/fields", eventHandler.HandleAddFormField)
		protected.DELETE("/events/:eventID/form/fields/:fieldID", eventHandler.HandleRemoveFormField)
		protected.PATCH("/events/:eventID/form/fields/:fieldID", eventHandler.HandleUpdateFormField)

		protected.POST("/events/:eventID/register", regHandler.HandleRegister)
		protected.DELETE("/events/:eventID/register", regHandler.HandleCancelRegistration)
		protected.GET("/events/my-registrations", regHandler.HandleListMyRegistrations)
		protected.GET("/events/:eventID/registrations", regHandler.HandleListEventRegistrations)
		protected.GET("/events/tickets/:ticketID", regHandler.HandleGetTicket)

		protected.POST("/events/:eventID/purchase", orderHandler.HandlePurchase)
		protected.GET("/events/:eventID/orders", orderHandler.HandleListOrders)
		protected.PATCH("/events/:eventID/orders/:orderID/approve", orderHandler.HandleApproveOrder)
		protected.PATCH("/events/:eventID/orders/:orderID/reject", orderHandler.HandleRejectOrder)

		protected.POST("/events/:eventID/attendance/scan", attendanceHandler.HandleScan)
		protected.POST("/events/attendance/mark", attendanceHandler.HandleMark)
		protected.POST("/events/:eventID/attendance/manual", attendanceHandler.HandleManualOverride)
		protected.GET("/events/registrations/:registrationID/audit", attendanceHandler.HandleAuditTrail)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Event Operations API"
	docs.SwaggerInfo.Description = "Event lifecycle, registration, merchandise and attendance API."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
