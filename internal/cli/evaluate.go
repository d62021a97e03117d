package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/uradori/uradori/internal/evaluate"
)

var (
	evalCriteria  string
	evalThreshold float64
	evalFile      string
	evalTimeout   time.Duration
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate [text]",
	Short: "Score text against criteria, with a correction when it falls short",
	Long: `Evaluate scores text against the given criteria via the judgment
oracle. When the correctness score falls below the threshold, a second
pass asks for a corrected version with an explanation.

Example:
  uradori evaluate "所要時間は30分です。" --criteria "公式時刻表と一致すること"
  uradori evaluate --file draft.txt --criteria "事実に基づくこと" --threshold 9`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evalCriteria, "criteria", "", "evaluation criteria (required)")
	evaluateCmd.Flags().Float64Var(&evalThreshold, "threshold", 0, "correctness threshold triggering a fix pass (default from config)")
	evaluateCmd.Flags().StringVar(&evalFile, "file", "", "read input text from file")
	evaluateCmd.Flags().DurationVar(&evalTimeout, "timeout", 2*time.Minute, "overall evaluation timeout")
	_ = evaluateCmd.MarkFlagRequired("criteria")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	var text string
	switch {
	case evalFile != "":
		data, err := os.ReadFile(evalFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", evalFile, err)
		}
		text = string(data)
	case len(args) == 1:
		text = args[0]
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no input: pass text or --file")
	}

	cfg := loadConfig()
	if evalThreshold > 0 {
		cfg.Evaluate.Threshold = evalThreshold
	}

	client, err := buildOracle(cfg)
	if err != nil {
		return err
	}

	result, err := evaluate.NewEvaluator(client, cfg.Evaluate).Evaluate(ctx, text, evalCriteria)
	if err != nil {
		return err
	}

	fmt.Printf("スコア: %.1f/10\n", result.Correctness)
	for _, src := range result.Sources {
		fmt.Printf("根拠: %s\n", src)
	}
	if result.Corrected() {
		fmt.Printf("\n修正案:\n%s\n", result.Correction)
		if result.Explanation != "" {
			fmt.Printf("\n理由: %s\n", result.Explanation)
		}
	}
	return nil
}
