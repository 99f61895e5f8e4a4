package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"engagement/internal/handler"
	"engagement/internal/httputil"
	authmw "engagement/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	ReactionHandler *handler.ReactionHandler
	LikeHandler     *handler.LikeHandler
	ShareHandler    *handler.ShareHandler
	CommentHandler  *handler.CommentHandler
	FeedHandler     *handler.FeedHandler
	UIStateHandler  *handler.UIStateHandler

	// MetricsHandler serves /metrics. Optional.
	MetricsHandler http.Handler
	// RateLimiter is applied to every /api/v1 route. Optional.
	RateLimiter *authmw.RateLimiter

	JWTSecret          string
	CORSAllowedOrigins []string
	// TrustProxyHeaders enables chi's RealIP, which rewrites RemoteAddr from
	// forwarding headers.
	TrustProxyHeaders bool
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{httputil.InvalidateKeysHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Identify the caller first so the limiter can key by user
		r.Use(authmw.OptionalAuthMiddleware(cfg.JWTSecret))
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}

		r.Get("/cache/rules", handler.CacheRules)
		r.Get("/feed", cfg.FeedHandler.GetFeed)

		reactions, likes, shares, comments := cfg.ReactionHandler, cfg.LikeHandler, cfg.ShareHandler, cfg.CommentHandler

		// Public reads
		r.Get("/likes/posts/{postId}", likes.GetPostLikes)
		r.Get("/likes/users/{userId}", likes.GetUserLikedPosts)

		r.Get("/reactions/{postId}", reactions.List(handler.PostTarget))
		r.Get("/reactions/{postId}/counts", reactions.Counts(handler.PostTarget))

		r.Get("/shares/post/{postId}", shares.ListForPost)
		r.Get("/shares/user/{userId}", shares.ListForUser)
		r.Get("/shares/{shareId}", shares.Get)
		r.Get("/shares/{shareId}/reactions", reactions.List(handler.ShareTarget))
		r.Get("/shares/{shareId}/reactions/counts", reactions.Counts(handler.ShareTarget))

		r.Get("/comments/posts/{postId}", comments.List(handler.PostTarget))
		r.Get("/share-comments/{shareId}/comments", comments.List(handler.ShareTarget))

		// Protected routes - require authentication
		r.Group(func(r chi.Router) {
			r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

			r.Post("/likes/posts/{postId}", likes.Toggle)
			r.Get("/likes/posts/{postId}/check", likes.CheckUserLiked)

			r.Post("/reactions/{postId}", reactions.Set(handler.PostTarget))
			r.Delete("/reactions/{postId}", reactions.Remove(handler.PostTarget))
			r.Get("/reactions/{postId}/me", reactions.Mine(handler.PostTarget))

			r.Post("/shares/post/{postId}", shares.Create)
			r.Delete("/shares/{shareId}", shares.Delete)
			r.Post("/shares/{shareId}/reactions", reactions.Set(handler.ShareTarget))
			r.Delete("/shares/{shareId}/reactions", reactions.Remove(handler.ShareTarget))
			r.Get("/shares/{shareId}/reactions/me", reactions.Mine(handler.ShareTarget))

			r.Post("/comments/posts/{postId}", comments.Add(handler.PostTarget))
			r.Put("/comments/{commentId}", comments.Update)
			r.Delete("/comments/{commentId}", comments.Delete)
			r.Post("/share-comments/{shareId}/comments", comments.Add(handler.ShareTarget))

			r.Get("/me/ui-state", cfg.UIStateHandler.Get)
			r.Put("/me/ui-state", cfg.UIStateHandler.Update)
		})
	})

	return r
}
