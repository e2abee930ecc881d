package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/divinestore/storefront-backend/api/controllers"
	"github.com/divinestore/storefront-backend/api/middleware"
	"github.com/divinestore/storefront-backend/internal/auth"
	"github.com/divinestore/storefront-backend/internal/blog"
	"github.com/divinestore/storefront-backend/internal/contact"
	"github.com/divinestore/storefront-backend/internal/customers"
	"github.com/divinestore/storefront-backend/internal/payments"
	product "github.com/divinestore/storefront-backend/internal/products"
	"github.com/divinestore/storefront-backend/internal/profiles"
	"github.com/divinestore/storefront-backend/internal/recommendations"
	"github.com/divinestore/storefront-backend/internal/serviceability"
	"github.com/divinestore/storefront-backend/pkg/auth/session"
	"github.com/divinestore/storefront-backend/pkg/config"
	"github.com/divinestore/storefront-backend/pkg/enums"
	"github.com/divinestore/storefront-backend/pkg/logger"
	pkgredis "github.com/divinestore/storefront-backend/pkg/redis"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth            auth.Service
	Profiles        profiles.Service
	Products        product.Service
	Customers       customers.Service
	Serviceability  serviceability.Service
	Payments        payments.Service
	Recommendations recommendations.Service
	Contact         contact.Service
	Blog            blog.Service
}

// Dependencies are the infrastructure handles the router needs directly.
type Dependencies struct {
	Sessions    session.AccessSessionChecker
	Idempotency pkgredis.IdempotencyStore
	Readiness   map[string]controllers.Pinger
	Gatherer    prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies, svcs Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	requireSession := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	idempotent := func(window time.Duration) func(http.Handler) http.Handler {
		return middleware.Idempotent(deps.Idempotency, window, logg)
	}
	standard := idempotent(middleware.StandardReplayWindow)

	r.Route("/api/public", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// not replayable: the response carries live session tokens
			r.Post("/register", controllers.AuthRegister(svcs.Auth, logg))
			r.Post("/login/reseller", controllers.AuthLogin(svcs.Auth, enums.RoleReseller, logg))
			r.Post("/login/admin", controllers.AuthLogin(svcs.Auth, enums.RoleAdmin, logg))
			r.Post("/google/admin", controllers.AuthGoogleAdmin(svcs.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		})

		r.Get("/products", controllers.ProductList(svcs.Products, logg))
		r.Get("/products/{id}", controllers.ProductDetail(svcs.Products, logg))
		r.Get("/categories", controllers.ProductCategories(svcs.Products, logg))
		r.Get("/serviceability/{pincode}", controllers.Serviceability(svcs.Serviceability, logg))
		r.With(idempotent(middleware.PaymentReplayWindow)).
			Post("/payments/orders", controllers.PaymentOrderCreate(svcs.Payments, logg))
		r.Post("/recommendations", controllers.Recommendations(svcs.Recommendations, logg))
		r.Post("/contact", controllers.ContactSubmit(svcs.Contact, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(requireSession)
		r.Post("/auth/logout", controllers.AuthLogout(svcs.Auth, logg))

		// any signed-in account may read the blog
		r.Get("/blog", controllers.BlogList(svcs.Blog, logg))
		r.Get("/blog/{slug}", controllers.BlogPost(svcs.Blog, logg))

		r.Route("/account", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleReseller, logg))
			r.Use(middleware.RequireProfileRole(enums.RoleReseller, svcs.Auth, logg))

			r.Get("/profile", controllers.AccountProfile(logg))
			r.Patch("/profile", controllers.AccountUpdateProfile(svcs.Profiles, logg))

			r.Get("/customers", controllers.CustomerList(svcs.Customers, logg))
			r.With(standard).Post("/customers", controllers.CustomerCreate(svcs.Customers, logg))
			r.Get("/customers/{id}", controllers.CustomerDetail(svcs.Customers, logg))
			r.Patch("/customers/{id}", controllers.CustomerUpdate(svcs.Customers, logg))
			r.Delete("/customers/{id}", controllers.CustomerDelete(svcs.Customers, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.Post("/bootstrap", controllers.AdminBootstrap(svcs.Auth, logg))
		}

		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
			r.Use(middleware.RequireProfileRole(enums.RoleAdmin, svcs.Auth, logg))

			r.Get("/products", controllers.ProductList(svcs.Products, logg))
			r.With(standard).Post("/products", controllers.AdminCreateProduct(svcs.Products, logg))
			r.Put("/products/{id}", controllers.AdminUpdateProduct(svcs.Products, logg))
			r.Delete("/products/{id}", controllers.AdminDeleteProduct(svcs.Products, logg))

			r.With(standard).Post("/blog", controllers.AdminCreateBlogPost(svcs.Blog, logg))
			r.Delete("/blog/{slug}", controllers.AdminDeleteBlogPost(svcs.Blog, logg))

			r.Get("/users", controllers.AdminListUsers(svcs.Profiles, logg))
			r.With(standard).Patch("/users/{id}/role", controllers.AdminUpdateUserRole(svcs.Profiles, logg))
		})
	})

	return r
}
