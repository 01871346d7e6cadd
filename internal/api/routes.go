package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"unimeal-backend-go/internal/core"
	"unimeal-backend-go/internal/middleware"
)

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (logging, recovery, CORS) is expected to be applied to router first.
func SetupRoutes(
	router *gin.Engine,
	authMW *middleware.AuthMiddleware,
	sessions core.SessionService,
	logger *zap.Logger,
) {
	base := baseHandler{sessions: sessions, logger: logger.Named("api")}
	dashboardHandler := NewDashboardHandler(base)
	budgetHandler := NewBudgetHandler(base)
	ingredientHandler := NewIngredientHandler(base)
	mealHandler := NewMealHandler(base)
	onboardingHandler := NewOnboardingHandler(base)

	apiV1 := router.Group("/api/v1", authMW.VerifyToken())
	{
		dashboardGroup := apiV1.Group("/dashboard")
		{
			dashboardGroup.GET("", dashboardHandler.GetDashboard)
			dashboardGroup.GET("/stream", dashboardHandler.StreamDashboard)
			dashboardGroup.PUT("/budget", dashboardHandler.SaveBudget)
		}

		apiV1.GET("/budget", budgetHandler.GetBudget)
		apiV1.PUT("/budget", budgetHandler.SaveLimit)

		ingredientsGroup := apiV1.Group("/ingredients")
		{
			ingredientsGroup.GET("", ingredientHandler.ListIngredients)
			ingredientsGroup.POST("", ingredientHandler.AddIngredient)
			ingredientsGroup.DELETE("/:ingredientId", ingredientHandler.DeleteIngredient)
		}

		mealsGroup := apiV1.Group("/meals")
		{
			mealsGroup.GET("", mealHandler.ListMeals)
			mealsGroup.POST("", mealHandler.AddMeal)
			mealsGroup.GET("/export", mealHandler.ExportMeals)
			mealsGroup.PUT("/view-mode", mealHandler.SetViewMode)
			mealsGroup.DELETE("/:mealId", mealHandler.DeleteMeal)
		}

		templatesGroup := apiV1.Group("/templates")
		{
			templatesGroup.GET("", mealHandler.ListTemplates)
			templatesGroup.POST("", mealHandler.SaveTemplate)
			templatesGroup.POST("/:templateId/meals", mealHandler.AddFromTemplate)
			templatesGroup.DELETE("/:templateId", mealHandler.DeleteTemplate)
		}

		onboardingGroup := apiV1.Group("/onboarding")
		{
			onboardingGroup.GET("", onboardingHandler.GetOnboarding)
			onboardingGroup.POST("/skip", onboardingHandler.SkipOnboarding)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "UP",
			"message":  "UniMeal backend is healthy.",
			"sessions": sessions.Len(),
		})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
