package types

import "time"

// Config is a struct to hold the configuration data
type Config struct {
	Logging struct {
		OutputLevel  string `yaml:"outputLevel" envconfig:"LOGGING_OUTPUT_LEVEL"`
		OutputStderr bool   `yaml:"outputStderr" envconfig:"LOGGING_OUTPUT_STDERR"`

		FilePath  string `yaml:"filePath" envconfig:"LOGGING_FILE_PATH"`
		FileLevel string `yaml:"fileLevel" envconfig:"LOGGING_FILE_LEVEL"`
	} `yaml:"logging"`

	Server struct {
		Port string `yaml:"port" envconfig:"FRONTEND_SERVER_PORT"`
		Host string `yaml:"host" envconfig:"FRONTEND_SERVER_HOST"`
	} `yaml:"server"`

	Frontend struct {
		Enabled bool `yaml:"enabled" envconfig:"FRONTEND_ENABLED"`
		Debug   bool `yaml:"debug" envconfig:"FRONTEND_DEBUG"`
		Pprof   bool `yaml:"pprof" envconfig:"FRONTEND_PPROF"`
		Minify  bool `yaml:"minify" envconfig:"FRONTEND_MINIFY"`

		SiteDomain      string `yaml:"siteDomain" envconfig:"FRONTEND_SITE_DOMAIN"`
		SiteName        string `yaml:"siteName" envconfig:"FRONTEND_SITE_NAME"`
		SiteSubtitle    string `yaml:"siteSubtitle" envconfig:"FRONTEND_SITE_SUBTITLE"`
		SiteDescription string `yaml:"siteDescription" envconfig:"FRONTEND_SITE_DESCRIPTION"`
		ExampleAddress  string `yaml:"exampleAddress" envconfig:"FRONTEND_EXAMPLE_ADDRESS"`
		TokenSymbol     string `yaml:"tokenSymbol" envconfig:"FRONTEND_TOKEN_SYMBOL"`

		DefaultClaimTimezone  string `yaml:"defaultClaimTimezone" envconfig:"FRONTEND_DEFAULT_CLAIM_TIMEZONE"`
		DefaultPayoutTimezone string `yaml:"defaultPayoutTimezone" envconfig:"FRONTEND_DEFAULT_PAYOUT_TIMEZONE"`

		PageCallTimeout  time.Duration `yaml:"pageCallTimeout" envconfig:"FRONTEND_PAGE_CALL_TIMEOUT"`
		PageCacheTimeout time.Duration `yaml:"pageCacheTimeout" envconfig:"FRONTEND_PAGE_CACHE_TIMEOUT"`
		LocalCacheSize   int           `yaml:"localCacheSize" envconfig:"FRONTEND_LOCAL_CACHE_SIZE"`
		RedisCacheAddr   string        `yaml:"redisCacheAddr" envconfig:"FRONTEND_REDIS_CACHE_ADDR"`
		RedisCachePrefix string        `yaml:"redisCachePrefix" envconfig:"FRONTEND_REDIS_CACHE_PREFIX"`

		HttpReadTimeout  time.Duration `yaml:"httpReadTimeout" envconfig:"FRONTEND_HTTP_READ_TIMEOUT"`
		HttpWriteTimeout time.Duration `yaml:"httpWriteTimeout" envconfig:"FRONTEND_HTTP_WRITE_TIMEOUT"`
		HttpIdleTimeout  time.Duration `yaml:"httpIdleTimeout" envconfig:"FRONTEND_HTTP_IDLE_TIMEOUT"`
	} `yaml:"frontend"`

	Endpoints struct {
		NodeApi        string        `yaml:"nodeApi" envconfig:"ENDPOINTS_NODE_API"`
		AccRewardsApi  string        `yaml:"accRewardsApi" envconfig:"ENDPOINTS_ACC_REWARDS_API"`
		ClaimedRewards string        `yaml:"claimedRewardsApi" envconfig:"ENDPOINTS_CLAIMED_REWARDS_API"`
		AprApyApi      string        `yaml:"aprApyApi" envconfig:"ENDPOINTS_APR_APY_API"`
		RequestTimeout time.Duration `yaml:"requestTimeout" envconfig:"ENDPOINTS_REQUEST_TIMEOUT"`
		UserAgent      string        `yaml:"userAgent" envconfig:"ENDPOINTS_USER_AGENT"`
	} `yaml:"endpoints"`

	Api struct {
		Enabled     bool     `yaml:"enabled" envconfig:"API_ENABLED"`
		CorsOrigins []string `yaml:"corsOrigins" envconfig:"API_CORS_ORIGINS"`

		// Rate limiting and authentication
		AuthSecret              string   `yaml:"authSecret" envconfig:"API_AUTH_SECRET"`
		RequireAuth             bool     `yaml:"requireAuth" envconfig:"API_REQUIRE_AUTH"`
		DefaultRateLimit        uint     `yaml:"defaultRateLimit" envconfig:"API_DEFAULT_RATE_LIMIT"`
		DefaultRateLimitBurst   uint     `yaml:"defaultRateLimitBurst" envconfig:"API_DEFAULT_RATE_LIMIT_BURST"`
		DisableDefaultRateLimit bool     `yaml:"disableDefaultRateLimit" envconfig:"API_DISABLE_DEFAULT_RATE_LIMIT"`
		WhitelistedIPs          []string `yaml:"whitelistedIPs" envconfig:"API_WHITELISTED_IPS"`
	} `yaml:"api"`

	RateLimit struct {
		Enabled    bool `yaml:"enabled" envconfig:"RATELIMIT_ENABLED"`
		ProxyCount uint `yaml:"proxyCount" envconfig:"RATELIMIT_PROXY_COUNT"`
		Rate       uint `yaml:"rate" envconfig:"RATELIMIT_RATE"`
		Burst      uint `yaml:"burst" envconfig:"RATELIMIT_BURST"`
	} `yaml:"rateLimit"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" envconfig:"METRICS_ENABLED"`
		Public  bool   `yaml:"public" envconfig:"METRICS_PUBLIC"`
		Host    string `yaml:"host" envconfig:"METRICS_HOST"`
		Port    string `yaml:"port" envconfig:"METRICS_PORT"`
	} `yaml:"metrics"`
}
