package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/recipe-costing/config"
	"github.com/yeremiapane/recipe-costing/controllers"
	"github.com/yeremiapane/recipe-costing/middlewares"
	"github.com/yeremiapane/recipe-costing/models"
	"github.com/yeremiapane/recipe-costing/services"
	"github.com/yeremiapane/recipe-costing/utils"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigins))
	r.Use(middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).RateLimit())
	r.MaxMultipartMemory = int64(cfg.MaxImportMB) << 20

	// Services
	ingredientSvc := services.NewIngredientService(db)
	recipeSvc := services.NewRecipeService(db)
	analyticsSvc := services.NewAnalyticsService(db, cfg.TargetMarkup)
	spreadsheetSvc := services.NewSpreadsheetService(ingredientSvc, recipeSvc)
	authSvc := services.NewAuthService(db, utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), utils.NewTokenBlacklist())

	// Controllers
	healthCtrl := controllers.NewHealthController(db)
	ingredientCtrl := controllers.NewIngredientController(ingredientSvc)
	recipeCtrl := controllers.NewRecipeController(recipeSvc)
	analyticsCtrl := controllers.NewAnalyticsController(analyticsSvc)
	spreadsheetCtrl := controllers.NewSpreadsheetController(spreadsheetSvc, int64(cfg.MaxImportMB)<<20)
	authCtrl := controllers.NewAuthController(authSvc)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/api/health", healthCtrl.Check)

	// Five login attempts, then one every twelve seconds.
	login := r.Group("/api/auth")
	login.Use(middlewares.NewRateLimiter(1.0/12, 5).RateLimit())
	{
		login.POST("/login", authCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      API ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	adminOnly := []gin.HandlerFunc{}
	if cfg.AuthEnabled {
		api.Use(middlewares.AuthMiddleware(authSvc))
		adminOnly = append(adminOnly, middlewares.RoleCheck(models.RoleAdmin))
	} else {
		utils.InfoLogger.Warn("AUTH_ENABLED is false: the API is open to anyone who can reach it")
	}

	api.POST("/auth/logout", authCtrl.Logout)
	api.GET("/auth/me", authCtrl.Me)

	// INGREDIENTS
	api.GET("/ingredients", ingredientCtrl.GetAllIngredients)
	api.GET("/ingredients/:id", ingredientCtrl.GetIngredientByID)
	api.POST("/ingredients", ingredientCtrl.CreateIngredient)
	api.PUT("/ingredients/:id", ingredientCtrl.UpdateIngredient)
	api.DELETE("/ingredients/:id", ingredientCtrl.DeleteIngredient)

	// RECIPES
	api.GET("/recipes", recipeCtrl.GetAllRecipes)
	api.POST("/recipes/recompute", append(adminOnly, recipeCtrl.RecomputeAll)...)
	api.GET("/recipes/:id", recipeCtrl.GetRecipeByID)
	api.POST("/recipes", recipeCtrl.CreateRecipe)
	api.PUT("/recipes/:id", recipeCtrl.UpdateRecipe)
	api.PATCH("/recipes/:id/availability", recipeCtrl.UpdateAvailability)
	api.DELETE("/recipes/:id", recipeCtrl.DeleteRecipe)
	api.GET("/menu/:channel", recipeCtrl.GetMenu)

	// ANALYTICS
	api.GET("/analytics", analyticsCtrl.GetReport)
	api.GET("/analytics/priorities", analyticsCtrl.GetPriorities)

	// SPREADSHEETS
	api.GET("/export", spreadsheetCtrl.Export)
	api.POST("/import", append(adminOnly, spreadsheetCtrl.Import)...)

	return r
}
