package routes

import (
    "github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/controllers"
    "github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/middlewares"
    "github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/services"

    "github.com/gin-gonic/gin"
    "gorm.io/gorm"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
    r := gin.Default()

    // shared services
    rt := services.NewRealtimeHub()
    services.InitAlertDeps(db, rt)

    assessSvc := services.NewAssessmentService(db)
    trendSvc := services.NewTrendService(assessSvc)
    genSvc := services.NewGenerationService(db, assessSvc, services.NewGroqClient())
    authSvc := services.NewAuthService(db)

    authCtl := controllers.NewAuthController(authSvc)
    assessCtl := controllers.NewAssessmentController(assessSvc, trendSvc)
    trendCtl := controllers.NewTrendController(trendSvc)
    genCtl := controllers.NewGenerationController(genSvc)
    alertCtl := controllers.NewAlertController(db)
    rtCtl := controllers.NewRealtimeController(rt)

    api := r.Group("/api")

    // Public auth routes
    auth := api.Group("/auth")
    {
        auth.POST("/register", authCtl.Register)
        auth.POST("/login", authCtl.Login)
        auth.GET("/me", middlewares.AuthMiddleware(), authCtl.Me)
    }

    // Document parsing (no account needed to try it)
    api.POST("/ocr/parse", controllers.ParseDocument)

    // Protected routes
    protected := api.Group("/")
    protected.Use(middlewares.AuthMiddleware())
    {
        protected.POST("/assessments", assessCtl.Create)
        protected.GET("/assessments", assessCtl.List)
        protected.GET("/trends", trendCtl.GetTrends)
        protected.GET("/debug/assessments-count", assessCtl.DebugCount)

        protected.POST("/diet-plans/generate", genCtl.GenerateDietPlan)
        protected.GET("/diet-plans/latest", genCtl.GetLatest(services.GenerationDiet))
        protected.POST("/lifestyle-analyses/generate", genCtl.GenerateLifestyleAnalysis)
        protected.GET("/lifestyle-analyses/latest", genCtl.GetLatest(services.GenerationLifestyle))

        protected.GET("/alerts", alertCtl.ListAlerts)
    }

    r.GET("/ws/alerts", middlewares.AuthMiddleware(), rtCtl.AlertsWS)

    return r
}
