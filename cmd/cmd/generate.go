package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"microlearn/internal/config"
	"microlearn/internal/core"
	"microlearn/internal/llm"
	"microlearn/internal/logger"
	"microlearn/internal/pipeline"
	"microlearn/internal/render"
	"microlearn/internal/sources"
)

var (
	generateOutput  string
	generateOffline bool
	generateTopic   string
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

var generateCmd = &cobra.Command{
	Use:   "generate [source file]",
	Short: "Generate a full micro-learning journey from a source file",
	Long: `Generate runs the full pipeline on one source file: insight
extraction, tier selection, content and quiz generation, mobile
compliance, validation, enhancement, sequence assembly and narrative
threading. The packaged journey is written as a JSON file.

With --offline (or without a Gemini API key) every stage uses its
deterministic fallback templates instead of the model.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "output directory (default from config)")
	generateCmd.Flags().BoolVar(&generateOffline, "offline", false, "skip the model and use deterministic fallbacks only")
	generateCmd.Flags().StringVar(&generateTopic, "topic", "", "override the journey topic derived from the source")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	material, err := sources.Load(args[0])
	if err != nil {
		return err
	}
	if generateTopic != "" {
		material.Title = generateTopic
	}

	client := buildClient(cfg)
	journey, err := pipeline.NewContext(cfg, client).Run(cmd.Context(), material)
	if err != nil {
		return err
	}

	outputDir := generateOutput
	if outputDir == "" {
		outputDir = cfg.Output.Directory
	}
	path, err := render.WriteJourney(journey, outputDir, cfg.Output.Pretty)
	if err != nil {
		return err
	}

	printSummary(journey, path)
	return nil
}

// buildClient creates the Gemini client, or returns nil for the
// fallback-only pipeline when offline was requested or no key is set.
func buildClient(cfg *config.Config) pipeline.LLMClient {
	if generateOffline {
		logger.Info("Offline mode requested, using deterministic fallbacks")
		return nil
	}
	client, err := llm.NewClient(cfg.AI.Gemini.Model)
	if err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render("No Gemini client available, generating with deterministic fallbacks."))
		logger.Warn("LLM client unavailable", "error", err.Error())
		return nil
	}
	return client
}

// printSummary renders the journey overview to stdout.
func printSummary(journey *pipeline.Journey, path string) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Journey: %s", journey.Topic)))
	fmt.Printf("%s %s\n", labelStyle.Render("Insights:"), valueStyle.Render(fmt.Sprintf("%d", len(journey.Insights))))
	for _, unit := range journey.Units {
		counts := itemCounts(unit)
		fmt.Printf("%s %s\n", labelStyle.Render("  •"), valueStyle.Render(fmt.Sprintf(
			"%s — %d items (%s), %ds, %d coins",
			unit.Title, len(unit.FlexibleItems), counts, unit.EstimatedDuration, unit.CoinsReward)))
	}
	if journey.Provenance == core.ProvenanceFallback {
		fmt.Println(warnStyle.Render("Some content came from fallback templates."))
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("Package written to %s", path)))
}

// itemCounts summarizes a unit's item mix, e.g. "4 content, 2 quiz, 1 quote".
func itemCounts(unit core.LearningUnit) string {
	counts := map[core.ItemType]int{}
	for _, item := range unit.FlexibleItems {
		counts[item.Kind]++
	}
	parts := make([]string, 0, 3)
	for _, kind := range []core.ItemType{core.ItemTypeContent, core.ItemTypeQuiz, core.ItemTypeQuote} {
		if counts[kind] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[kind], kind))
		}
	}
	return strings.Join(parts, ", ")
}
