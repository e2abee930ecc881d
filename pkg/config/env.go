package config

// EnvPrefix is handed to envconfig; every field also carries its full variable name.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "STOREFRONT_APP_ENV"
	EnvPort         = "STOREFRONT_APP_PORT"
	EnvLogLevel     = "STOREFRONT_LOG_LEVEL"
	EnvLogWarnStack = "STOREFRONT_LOG_WARN_STACK"
	EnvLogFormat    = "STOREFRONT_LOG_FORMAT"

	EnvDBDSN      = "STOREFRONT_DB_DSN"
	EnvDBDriver   = "STOREFRONT_DB_DRIVER"
	EnvDBHost     = "STOREFRONT_DB_HOST"
	EnvDBPort     = "STOREFRONT_DB_PORT"
	EnvDBUser     = "STOREFRONT_DB_USER"
	EnvDBPassword = "STOREFRONT_DB_PASSWORD"
	EnvDBName     = "STOREFRONT_DB_NAME"
	EnvDBSSLMode  = "STOREFRONT_DB_SSLMODE"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvJWTSecret              = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer              = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins             = "STOREFRONT_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "STOREFRONT_REFRESH_TOKEN_TTL_MINUTES"

	EnvAdminEmail           = "STOREFRONT_ADMIN_EMAIL"
	EnvAdminBootstrapSecret = "STOREFRONT_ADMIN_BOOTSTRAP_SECRET"

	EnvUseSQLite   = "STOREFRONT_USE_SQLITE"
	EnvAutoMigrate = "STOREFRONT_AUTO_MIGRATE"

	EnvDelhiveryToken   = "STOREFRONT_DELHIVERY_TOKEN"
	EnvDelhiveryBaseURL = "STOREFRONT_DELHIVERY_BASE_URL"

	EnvPaymentsProvider  = "STOREFRONT_PAYMENTS_PROVIDER"
	EnvRazorpayKeyID     = "STOREFRONT_RAZORPAY_KEY_ID"
	EnvRazorpayKeySecret = "STOREFRONT_RAZORPAY_KEY_SECRET"
	EnvSquareAccessToken = "STOREFRONT_SQUARE_ACCESS_TOKEN"
	EnvSquareEnv         = "STOREFRONT_SQUARE_ENV"
	EnvSquareLocationID  = "STOREFRONT_SQUARE_LOCATION_ID"
	EnvSquareAppID       = "STOREFRONT_SQUARE_APPLICATION_ID"

	EnvOpenAIAPIKey = "STOREFRONT_OPENAI_API_KEY"
	EnvOpenAIModel  = "STOREFRONT_OPENAI_MODEL"

	EnvGoogleClientID = "STOREFRONT_GOOGLE_CLIENT_ID"

	EnvCORSAllowedOrigins = "STOREFRONT_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
