package main

import (
	"context"
	"fmt"

	"github.com/divinestore/storefront-backend/api/routes"
	"github.com/divinestore/storefront-backend/internal/auth"
	"github.com/divinestore/storefront-backend/internal/blog"
	"github.com/divinestore/storefront-backend/internal/contact"
	"github.com/divinestore/storefront-backend/internal/customers"
	"github.com/divinestore/storefront-backend/internal/identity"
	"github.com/divinestore/storefront-backend/internal/payments"
	product "github.com/divinestore/storefront-backend/internal/products"
	"github.com/divinestore/storefront-backend/internal/profiles"
	"github.com/divinestore/storefront-backend/internal/recommendations"
	"github.com/divinestore/storefront-backend/internal/serviceability"
	"github.com/divinestore/storefront-backend/pkg/auth/session"
	"github.com/divinestore/storefront-backend/pkg/config"
	"github.com/divinestore/storefront-backend/pkg/db"
	"github.com/divinestore/storefront-backend/pkg/delhivery"
	"github.com/divinestore/storefront-backend/pkg/enums"
	"github.com/divinestore/storefront-backend/pkg/google"
	"github.com/divinestore/storefront-backend/pkg/logger"
	"github.com/divinestore/storefront-backend/pkg/metrics"
	"github.com/divinestore/storefront-backend/pkg/openai"
	"github.com/divinestore/storefront-backend/pkg/razorpay"
	"github.com/divinestore/storefront-backend/pkg/redis"
	"github.com/divinestore/storefront-backend/pkg/square"
	"gorm.io/gorm"
)

type wiring struct {
	db         *db.Client
	redis      *redis.Client
	sessions   *session.Manager
	authM      *metrics.AuthMetrics
	dependency *metrics.DependencyMetrics
}

// buildServices constructs every domain service. Optional upstreams without
// credentials are left nil so their endpoints fail with a typed error instead
// of blocking startup.
func buildServices(ctx context.Context, cfg *config.Config, logg *logger.Logger, w wiring) (routes.Services, error) {
	var svcs routes.Services
	conn := w.db.DB()

	profileRepo := profiles.NewRepository(conn)
	profileSvc, err := profiles.NewService(profileRepo, cfg.Admin.Email)
	if err != nil {
		return svcs, err
	}

	provider, err := newIdentityProvider(ctx, cfg, logg, conn, w.sessions)
	if err != nil {
		return svcs, err
	}

	authSvc, err := auth.NewService(auth.ServiceParams{
		Identity:    provider,
		Profiles:    profileRepo,
		TxRunner:    w.db,
		AdminConfig: cfg.Admin,
		JWTConfig:   cfg.JWT,
		Metrics:     w.authM,
		Logger:      logg,
	})
	if err != nil {
		return svcs, fmt.Errorf("auth service: %w", err)
	}

	productSvc, err := product.NewService(product.NewRepository(conn))
	if err != nil {
		return svcs, err
	}

	customerSvc, err := customers.NewService(customers.NewRepository(conn), logg)
	if err != nil {
		return svcs, err
	}

	serviceabilitySvc, err := serviceability.NewService(serviceability.ServiceParams{
		Oracle:  newPincodeOracle(ctx, cfg, logg),
		Cache:   w.redis,
		Metrics: w.dependency,
		Logger:  logg,
	})
	if err != nil {
		return svcs, err
	}

	gateway, err := newPaymentGateway(ctx, cfg, logg)
	if err != nil {
		return svcs, err
	}
	paymentSvc, err := payments.NewService(payments.ServiceParams{
		Gateway:  gateway,
		Products: productSvc,
		Metrics:  w.dependency,
		Logger:   logg,
	})
	if err != nil {
		return svcs, err
	}

	recommendationSvc, err := recommendations.NewService(newCompleter(ctx, cfg, logg), w.dependency, logg)
	if err != nil {
		return svcs, err
	}

	contactSvc, err := contact.NewService(logg)
	if err != nil {
		return svcs, err
	}

	blogSvc, err := blog.NewService(blog.NewRepository(conn), nil)
	if err != nil {
		return svcs, err
	}

	return routes.Services{
		Auth:            authSvc,
		Profiles:        profileSvc,
		Products:        productSvc,
		Customers:       customerSvc,
		Serviceability:  serviceabilitySvc,
		Payments:        paymentSvc,
		Recommendations: recommendationSvc,
		Contact:         contactSvc,
		Blog:            blogSvc,
	}, nil
}

func newIdentityProvider(ctx context.Context, cfg *config.Config, logg *logger.Logger, conn *gorm.DB, sessions *session.Manager) (*identity.Provider, error) {
	params := identity.ProviderParams{
		Store:          identity.NewRepository(conn),
		Sessions:       sessions,
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	}
	if cfg.Google.ClientID != "" {
		verifier, err := google.NewVerifier(ctx, cfg.Google.ClientID)
		if err != nil {
			return nil, fmt.Errorf("google verifier: %w", err)
		}
		params.Google = verifier
	} else {
		logg.Warn(ctx, "google client id not configured; google admin sign-in disabled")
	}
	return identity.NewProvider(params)
}

func newPincodeOracle(ctx context.Context, cfg *config.Config, logg *logger.Logger) serviceability.Oracle {
	client, err := delhivery.NewClient(cfg.Delhivery.Token,
		delhivery.WithBaseURL(cfg.Delhivery.BaseURL),
		delhivery.WithTimeout(cfg.Delhivery.Timeout),
	)
	if err != nil {
		logg.Warn(ctx, "delhivery token not configured; serviceability checks will fail")
		return nil
	}
	return client
}

func newPaymentGateway(ctx context.Context, cfg *config.Config, logg *logger.Logger) (payments.Gateway, error) {
	provider, err := enums.ParsePaymentProvider(cfg.Payments.Provider)
	if err != nil {
		return nil, err
	}

	switch provider {
	case enums.PaymentProviderSquare:
		if cfg.Square.AccessToken == "" {
			logg.Warn(ctx, "square access token not configured; payment orders will fail")
			return nil, nil
		}
		client, err := square.NewClient(ctx, cfg.Square, logg)
		if err != nil {
			return nil, fmt.Errorf("square client: %w", err)
		}
		return payments.NewSquareGateway(client, cfg.Square.AppID), nil
	default:
		client, err := razorpay.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, razorpay.WithBaseURL(cfg.Razorpay.BaseURL))
		if err != nil {
			logg.Warn(ctx, "razorpay credentials not configured; payment orders will fail")
			return nil, nil
		}
		return payments.NewRazorpayGateway(client), nil
	}
}

func newCompleter(ctx context.Context, cfg *config.Config, logg *logger.Logger) recommendations.Completer {
	client, err := openai.NewClient(cfg.OpenAI.APIKey,
		openai.WithModel(cfg.OpenAI.Model),
		openai.WithBaseURL(cfg.OpenAI.BaseURL),
	)
	if err != nil {
		logg.Warn(ctx, "openai api key not configured; recommendations disabled")
		return nil
	}
	return client
}
