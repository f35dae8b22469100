package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/fusionmeals/internal/aichef"
	"github.com/dukerupert/fusionmeals/internal/amazon"
	"github.com/dukerupert/fusionmeals/internal/backup"
	"github.com/dukerupert/fusionmeals/internal/billing/stripe"
	"github.com/dukerupert/fusionmeals/internal/cuisine"
	"github.com/dukerupert/fusionmeals/internal/email"
	"github.com/dukerupert/fusionmeals/internal/grocery"
	"github.com/dukerupert/fusionmeals/internal/handler"
	"github.com/dukerupert/fusionmeals/internal/llm"
	"github.com/dukerupert/fusionmeals/internal/mealplan"
	"github.com/dukerupert/fusionmeals/internal/metrics"
	"github.com/dukerupert/fusionmeals/internal/middleware"
	"github.com/dukerupert/fusionmeals/internal/pantry"
	"github.com/dukerupert/fusionmeals/internal/push"
	"github.com/dukerupert/fusionmeals/internal/recipe"
	"github.com/dukerupert/fusionmeals/internal/store"
	ws "github.com/dukerupert/fusionmeals/internal/websocket"
)

// Rate limit applied per client IP to endpoints that call the language model.
const (
	llmRequestsPerMinute = 20
	llmBurst             = 5
)

// Config carries the integrations and HTTP settings the server is built
// from. Nil clients disable their features.
type Config struct {
	Completions   llm.Completions
	Images        llm.Images
	Email         *email.Client
	Stripe        *stripe.Client
	AmazonOAuth   *amazon.OAuth
	Push          push.Config
	Backup        backup.Config
	Metrics       *metrics.Metrics
	CORSOrigins   []string
	FrontendURL   string
	SecureCookies bool
	AdminToken    string

	// TrustedProxies lists CIDRs or IPs whose forwarding headers name the
	// client. Empty means the rate limiter keys on the peer address.
	TrustedProxies []string
}

type Server struct {
	hub           *ws.Hub
	groceryH      *handler.GroceryHandler
	pantryH       *handler.PantryHandler
	recipeH       *handler.RecipeHandler
	mealPlanH     *handler.MealPlanHandler
	cuisineH      *handler.CuisineHandler
	aiChefH       *handler.AIChefHandler
	billingH      *handler.BillingHandler
	authH         *handler.AuthHandler
	ratingH       *handler.RatingHandler
	pushH         *handler.PushHandler
	backupH       *handler.BackupHandler
	sessionStore  *store.SessionStore
	pushStore     *store.PushStore
	rateLimiter   *middleware.RateLimiter
	proxies       *middleware.TrustedProxies
	backupManager *backup.Manager
	pushScheduler *push.Scheduler
	metrics       *metrics.Metrics
	corsOrigins   []string
	adminToken    string
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) (*Server, error) {
	catalog, err := cuisine.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("load cuisine catalog: %w", err)
	}
	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.AmazonOAuth == nil {
		cfg.AmazonOAuth = amazon.NewOAuth(amazon.OAuthConfig{})
	}

	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	pantryStore := store.NewPantryStore(db)
	subStore := store.NewSubscriptionStore(db)
	ratingStore := store.NewRatingStore(db)
	pushSt := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	pantrySvc := pantry.NewService(pantryStore)

	// Push notification service + scheduler
	var pushSvc *push.Service
	var pushSched *push.Scheduler
	if cfg.Push.Configured() {
		pushSvc = push.NewService(cfg.Push)
		pushSched = push.NewScheduler(pushSvc, pushSt, pantrySvc, logger)
	}

	backupMgr := backup.NewManager(cfg.Backup, db, backupStore, logger)

	return &Server{
		hub:           hub,
		groceryH:      handler.NewGroceryHandler(grocery.NewCategorizer(cfg.Completions, logger), amazon.NewClient(logger), cfg.Email, logger.With("component", "grocery")),
		pantryH:       handler.NewPantryHandler(pantrySvc, userStore, hub, logger.With("component", "pantry")),
		recipeH:       handler.NewRecipeHandler(recipe.NewService(cfg.Completions, cfg.Images, logger), cfg.Email, logger.With("component", "recipe_handler")),
		mealPlanH:     handler.NewMealPlanHandler(mealplan.NewService(cfg.Completions, logger), logger.With("component", "mealplan_handler")),
		cuisineH:      handler.NewCuisineHandler(cuisine.NewService(cfg.Completions, logger), catalog, logger.With("component", "cuisine_handler")),
		aiChefH:       handler.NewAIChefHandler(aichef.NewService(cfg.Completions, logger), subStore, logger.With("component", "aichef_handler")),
		billingH:      handler.NewBillingHandler(cfg.Stripe, subStore, userStore, logger.With("component", "billing")),
		authH:         handler.NewAuthHandler(sessionStore, userStore, cfg.AmazonOAuth, cfg.FrontendURL, cfg.SecureCookies, logger.With("component", "auth")),
		ratingH:       handler.NewRatingHandler(ratingStore, logger.With("component", "rating")),
		pushH:         handler.NewPushHandler(pushSt, pushSvc, pushSched, logger.With("component", "push_handler")),
		backupH:       handler.NewBackupHandler(backupMgr, backupStore, logger.With("component", "backup_handler")),
		sessionStore:  sessionStore,
		pushStore:     pushSt,
		rateLimiter:   middleware.NewRateLimiter(llmRequestsPerMinute, llmBurst),
		proxies:       proxies,
		backupManager: backupMgr,
		pushScheduler: pushSched,
		metrics:       cfg.Metrics,
		corsOrigins:   cfg.CORSOrigins,
		adminToken:    cfg.AdminToken,
		logger:        logger,
	}, nil
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// PushScheduler returns the pantry reminder scheduler, or nil when push is
// not configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

// PushStore returns the push store for cleanup tasks.
func (s *Server) PushStore() *store.PushStore {
	return s.pushStore
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.Handle("GET /ws", ws.HandleWebSocket(s.hub, s.corsOrigins))

	s.registerRoutes(mux)

	var h http.Handler = mux
	h = middleware.Instrument(s.metrics)(h)
	h = middleware.LoadSession(s.sessionStore)(h)
	h = middleware.CORS(s.corsOrigins)(h)
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

// limited wraps a language-model endpoint with the per-IP rate limiter.
func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return middleware.RateLimit(s.rateLimiter, s.proxies.RealIP)(h)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	session := middleware.RequireSession
	admin := middleware.RequireAdminToken(s.adminToken)

	// Grocery
	mux.Handle("POST /grocery/parse-recipe", s.limited(s.groceryH.ParseRecipe))
	mux.HandleFunc("POST /grocery/add-to-cart", s.groceryH.AddToCart)
	mux.HandleFunc("POST /grocery/amazon-checkout", s.groceryH.AmazonCheckout)
	mux.HandleFunc("POST /grocery/shopping-list/email", s.groceryH.EmailList)

	// Pantry
	mux.HandleFunc("GET /pantry/inventory", s.pantryH.Inventory)
	mux.HandleFunc("POST /pantry/items", s.pantryH.AddItem)
	mux.HandleFunc("PUT /pantry/items", s.pantryH.UpdateItem)
	mux.HandleFunc("DELETE /pantry/items/{id}", s.pantryH.RemoveItem)
	mux.HandleFunc("GET /pantry/expired", s.pantryH.Expired)
	mux.HandleFunc("GET /pantry/low-stock", s.pantryH.LowStock)
	mux.HandleFunc("POST /pantry/check-recipe", s.pantryH.NotImplemented)
	mux.HandleFunc("GET /pantry/recipe-suggestions", s.pantryH.NotImplemented)
	mux.HandleFunc("POST /pantry/update-from-grocery", s.pantryH.UpdateFromGrocery)

	// Meal plans and meal prep
	mux.Handle("POST /meal-plans/generate", s.limited(s.mealPlanH.Generate))
	mux.Handle("POST /meal-prep/batch-cooking-plan", s.limited(s.mealPlanH.BatchCookingPlan))
	mux.Handle("POST /meal-prep/time-optimized-recipes", s.limited(s.mealPlanH.QuickRecipes))
	mux.Handle("POST /meal-prep/transform-leftovers", s.limited(s.mealPlanH.TransformLeftovers))

	// Recipes and recipe tools
	mux.HandleFunc("GET /recipes/{$}", s.recipeH.Info)
	mux.Handle("POST /recipes/generate", s.limited(s.recipeH.Generate))
	mux.Handle("GET /recipes/recipe-of-the-day", s.limited(s.recipeH.RecipeOfTheDay))
	mux.Handle("POST /ingredient-substitution/find", s.limited(s.recipeH.Substitute))
	mux.Handle("POST /recipe-scaling/scale", s.limited(s.recipeH.Scale))
	mux.Handle("POST /recipe-scaling/convert-units", s.limited(s.recipeH.ConvertUnits))
	mux.Handle("POST /recipe-sharing/generate", s.limited(s.recipeH.Share))
	mux.HandleFunc("POST /recipe-sharing/email", s.recipeH.EmailRecipe)
	mux.Handle("POST /recipe-analysis/analyze", s.limited(s.recipeH.Analyze))

	// Global cuisine
	mux.Handle("POST /global-cuisine/explore", s.limited(s.cuisineH.Explore))
	mux.HandleFunc("GET /global-cuisine/regions", s.cuisineH.Regions)
	mux.HandleFunc("GET /global-cuisine/techniques", s.cuisineH.Techniques)
	mux.HandleFunc("GET /global-cuisine/ingredient-map", s.cuisineH.IngredientMap)

	// AI chef and subscriptions
	mux.Handle("POST /ai-chef/premium/ai-chef", s.limited(s.aiChefH.Chef))
	mux.Handle("POST /ai-chef/subscription/update", session(http.HandlerFunc(s.aiChefH.UpdateSubscription)))
	mux.Handle("GET /ai-chef/subscription/status", session(http.HandlerFunc(s.aiChefH.SubscriptionStatus)))
	mux.Handle("POST /ai-chef/subscription/checkout", session(http.HandlerFunc(s.billingH.Checkout)))
	mux.HandleFunc("POST /billing/webhook", s.billingH.Webhook)

	// Auth
	mux.HandleFunc("GET /auth/session", s.authH.Session)
	mux.HandleFunc("POST /auth/amazon/auth", s.authH.AmazonAuth)
	mux.HandleFunc("GET /auth/amazon/callback", s.authH.AmazonCallback)
	mux.HandleFunc("POST /auth/amazon/callback", s.authH.AmazonCallbackPost)
	mux.HandleFunc("POST /auth/amazon/mock-auth", s.authH.AmazonMockAuth)

	// Ratings
	mux.HandleFunc("POST /recipe-ratings/rate", s.ratingH.Rate)
	mux.HandleFunc("GET /recipe-ratings/{recipe_id}/reviews", s.ratingH.Reviews)
	mux.HandleFunc("GET /recipe-ratings/{recipe_id}/similar", s.ratingH.Similar)
	mux.HandleFunc("POST /recipe-ratings/{recipe_id}/similar", s.ratingH.AddSimilar)

	// Push
	mux.HandleFunc("GET /push/vapid-key", s.pushH.VAPIDKey)
	mux.Handle("POST /push/subscribe", session(http.HandlerFunc(s.pushH.Subscribe)))
	mux.Handle("GET /push/subscriptions", session(http.HandlerFunc(s.pushH.ListSubscriptions)))
	mux.Handle("DELETE /push/subscriptions/{id}", session(http.HandlerFunc(s.pushH.Unsubscribe)))
	mux.Handle("GET /push/preferences", session(http.HandlerFunc(s.pushH.Preferences)))
	mux.Handle("PUT /push/preferences", session(http.HandlerFunc(s.pushH.UpdatePreferences)))
	mux.Handle("POST /push/test", session(http.HandlerFunc(s.pushH.TestNotification)))

	// Admin
	mux.Handle("GET /admin/backups", admin(http.HandlerFunc(s.backupH.List)))
	mux.Handle("POST /admin/backups", admin(http.HandlerFunc(s.backupH.Run)))
	mux.Handle("GET /admin/backups/status", admin(http.HandlerFunc(s.backupH.Status)))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
