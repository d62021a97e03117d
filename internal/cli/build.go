package cli

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/uradori/uradori/internal/cache"
	"github.com/uradori/uradori/internal/model"
	"github.com/uradori/uradori/internal/oracle"
	"github.com/uradori/uradori/internal/pipeline"
	"github.com/uradori/uradori/internal/validate"
	"github.com/uradori/uradori/internal/verify"
	"github.com/uradori/uradori/internal/worker"
)

// loadConfig builds the effective configuration: defaults, overlaid
// with the config file and URADORI_* environment variables. API keys
// come from their dedicated environment variables only.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()
	_ = viper.Unmarshal(cfg)

	cfg.Oracle.APIKey = os.Getenv("GEMINI_API_KEY")
	if cfg.Oracle.Provider == "openai" {
		cfg.Oracle.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.Transit.APIKey = os.Getenv("NAVITIME_API_KEY")
	cfg.Output.Verbose = verbose
	return cfg
}

// buildOracle constructs the retry-wrapped oracle client from config
func buildOracle(cfg *model.Config) (oracle.Client, error) {
	client, err := oracle.NewClient(cfg.Oracle)
	if err != nil {
		return nil, err
	}
	limiter := worker.NewLimiter(cfg.Oracle.RequestsPerSecond, cfg.Oracle.Burst)
	return oracle.NewRetrier(client, limiter,
		cfg.Oracle.InitialOutputTokens, cfg.Oracle.MaxOutputTokens, cfg.Oracle.MaxAttempts), nil
}

// buildPipeline assembles the full check pipeline from config
func buildPipeline(cfg *model.Config, client oracle.Client) *pipeline.Pipeline {
	var verdicts *cache.VerdictCache
	if cfg.Cache.Enabled {
		backend := cache.NewMemoryCache(cfg.Cache.TTL, 2*cfg.Cache.TTL)
		verdicts = cache.NewVerdictCache(backend, client.Model(), cfg.Cache.TTL)
	}

	verifier := verify.NewVerifier(client, verdicts, cfg.Oracle.Temperature)

	var transit *verify.TransitClient
	if cfg.Transit.APIKey != "" {
		transit = verify.NewTransitClient(cfg.Transit)
	}

	var links *validate.LinkChecker
	if cfg.Links.Enabled {
		links = validate.NewLinkChecker(cfg.Links)
	}

	return pipeline.New(verifier, transit, links, cfg.Concurrency.VerifyWorkers)
}

// buildFetcher constructs the page fetcher for URL checks
func buildFetcher(cfg *model.Config) *pipeline.Fetcher {
	return pipeline.NewFetcher(time.Duration(cfg.Links.Timeout)*time.Second, cfg.Links.UserAgent, 2<<20)
}
