package cli

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/uradori/uradori/internal/prompt"
	"github.com/uradori/uradori/internal/server"
)

var (
	serveAddr       string
	servePromptsDir string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fact-check HTTP service",
	Long: `Serve exposes the checker over HTTP:

  POST /factcheck      {"text": ...}                     fact-check report
  POST /text/evaluate  {"text", "criteria", "threshold"} score and correction
  POST /api/chat       {"message", "persona", "evaluate"} chat with optional judging

Prompt assets (personas.yaml, rules_prompt.md, judge_prompt.md) load
from the prompts directory.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&servePromptsDir, "prompts", "", "prompts directory (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Local development keeps keys in .env
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	cfg := loadConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if servePromptsDir != "" {
		cfg.Server.PromptsDir = servePromptsDir
	}

	client, err := buildOracle(cfg)
	if err != nil {
		return err
	}

	prompts, err := prompt.Load(cfg.Server.PromptsDir)
	if err != nil {
		return err
	}

	p := buildPipeline(cfg, client)
	return server.New(p, client, prompts, cfg.Evaluate, cfg.Server).ListenAndServe()
}
