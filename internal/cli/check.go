package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/uradori/uradori/internal/model"
	"github.com/uradori/uradori/internal/report"
)

var (
	checkFile    string
	checkURL     string
	checkHTML    bool
	checkRoute   bool
	checkTimeout time.Duration
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [text]",
	Short: "Extract claims from text and fact-check them",
	Long: `Check extracts factual claims from Japanese text and verifies each
one. Generic claims are checked against the judgment oracle with cited
evidence; with --route, route claims (A→B 所要時間 運賃) are checked
against the official transit source instead.

Input comes from the argument, --file, or --url.

Example:
  uradori check "宇佐八幡から大分空港まで直通バスがある。所要時間は66分です。"
  uradori check --file article.txt
  uradori check --url https://example.com/timetable --html
  uradori check --route "宇佐八幡→大分空港 所要時間:66分 運賃:¥1,550"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkFile, "file", "", "read input text from file")
	checkCmd.Flags().StringVar(&checkURL, "url", "", "fetch input from URL")
	checkCmd.Flags().BoolVar(&checkHTML, "html", false, "treat input as HTML, extract visible text first")
	checkCmd.Flags().BoolVar(&checkRoute, "route", false, "check route claims against the official transit source")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 5*time.Minute, "overall check timeout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	cfg := loadConfig()

	text, isHTML, err := readInput(ctx, cfg, args)
	if err != nil {
		return err
	}

	client, err := buildOracle(cfg)
	if err != nil {
		return err
	}
	p := buildPipeline(cfg, client)

	if checkRoute {
		verifications, err := p.CheckRoutes(ctx, text)
		fmt.Println(report.RenderRoute(verifications))
		return err
	}

	var results []report.Result
	if isHTML {
		results, err = p.CheckHTML(ctx, text)
	} else {
		results, err = p.CheckText(ctx, text)
	}
	if err != nil {
		return err
	}

	fmt.Println(report.Render(results))

	if statuses := p.CheckLinks(ctx, results); len(statuses) > 0 {
		fmt.Println("リンク確認:")
		for _, s := range statuses {
			switch {
			case s.Skipped:
				fmt.Printf("  - %s (robots.txtによりスキップ)\n", s.URL)
			case s.Accessible:
				fmt.Printf("  - %s OK\n", s.URL)
			default:
				fmt.Printf("  - %s 到達不可 (%d %s)\n", s.URL, s.StatusCode, s.Error)
			}
		}
	}
	return nil
}

// readInput resolves the check input from argument, file or URL.
// Returns the text and whether it should be treated as HTML.
func readInput(ctx context.Context, cfg *model.Config, args []string) (string, bool, error) {
	switch {
	case checkURL != "":
		body, err := buildFetcher(cfg).Fetch(ctx, checkURL)
		if err != nil {
			return "", false, err
		}
		return body, true, nil
	case checkFile != "":
		data, err := os.ReadFile(checkFile)
		if err != nil {
			return "", false, fmt.Errorf("read %s: %w", checkFile, err)
		}
		return string(data), checkHTML, nil
	case len(args) == 1 && strings.TrimSpace(args[0]) != "":
		return args[0], checkHTML, nil
	}
	return "", false, fmt.Errorf("no input: pass text, --file or --url")
}
