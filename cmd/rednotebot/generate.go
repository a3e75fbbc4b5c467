package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/abdulachik/rednotebot/internal/app"
	"github.com/abdulachik/rednotebot/internal/config"
	"github.com/abdulachik/rednotebot/internal/sink"
	"github.com/abdulachik/rednotebot/internal/workflow"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate posts for one or all accounts",
	Long: `Generate a batch of posts for an account using its assigned persona.

Single mode drafts one post from a randomly chosen brief. Daily mode drafts
one post for every brief in the bank. Failed generator calls are replaced
with fallback posts, so a batch always completes.`,
	RunE: runGenerate,
}

var (
	generateAccount string
	generateMode    string
	generateQuiet   bool
)

var (
	previewTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FF2442"))

	previewNumberStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7D56F4"))

	previewFallbackStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFA500")).
				Italic(true)

	previewBodyStyle = lipgloss.NewStyle().
				PaddingLeft(4).
				Width(80)

	previewDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

func init() {
	generateCmd.Flags().StringVarP(&generateAccount, "account", "a", "A", "Account ID, or 'all' for every account")
	generateCmd.Flags().StringVarP(&generateMode, "mode", "m", "", "Generation mode: single or daily (default: GENERATION_MODE)")
	generateCmd.Flags().BoolVarP(&generateQuiet, "quiet", "q", false, "Skip the post preview")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForGeneration(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	var mode workflow.Mode
	if generateMode != "" {
		if mode, err = workflow.ParseMode(generateMode); err != nil {
			return err
		}
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}
	defer a.Close()

	accounts := []string{strings.ToUpper(generateAccount)}
	if strings.EqualFold(generateAccount, "all") {
		accounts = a.AccountIDs()
	}

	var failed int
	for _, id := range accounts {
		res, err := a.Generate(ctx, id, mode)
		if err != nil && !errors.Is(err, sink.ErrRenderFailure) {
			return fmt.Errorf("generate account %s: %w", id, err)
		}
		if err != nil {
			failed++
			slog.Error("batch generated but not rendered", "account", id, "error", err)
		}

		if !generateQuiet {
			printBatch(res)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d batches failed to render", failed, len(accounts))
	}
	return nil
}

func printBatch(res *sink.Result) {
	b := res.Batch
	fmt.Println(previewTitleStyle.Render(fmt.Sprintf("Account %s · %s · %s", b.AccountID, b.Persona.Name, b.Mode)))
	fmt.Println(previewDimStyle.Render(fmt.Sprintf("batch %s at %s", b.ID, b.CreatedAt.Format("2006-01-02 15:04:05"))))
	fmt.Println()

	for _, p := range b.Posts {
		label := previewNumberStyle.Render(fmt.Sprintf("#%d", p.Number))
		if p.Fallback {
			label += " " + previewFallbackStyle.Render("(fallback)")
		}
		fmt.Println(label)
		fmt.Println(previewBodyStyle.Render(p.Content))
		fmt.Println()
	}

	for _, art := range res.Artifacts {
		fmt.Println(previewDimStyle.Render(fmt.Sprintf("wrote %s (%d bytes)", art.Path, art.Size)))
	}
	if len(res.Artifacts) > 0 {
		fmt.Println()
	}
}
