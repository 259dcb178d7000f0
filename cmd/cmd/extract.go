package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"microlearn/internal/config"
	"microlearn/internal/extract"
	"microlearn/internal/sources"
)

var extractOffline bool

var extractCmd = &cobra.Command{
	Use:   "extract [source file]",
	Short: "Extract insights from a source file and print them as JSON",
	Long: `Extract runs only the first pipeline stage: it loads the source
file, sends it to the model (unless --offline) and prints the extracted
insights as JSON. Useful for inspecting what the generation stages will
work with.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractOffline, "offline", false, "skip the model and print the fallback insight")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	material, err := sources.Load(args[0])
	if err != nil {
		return err
	}

	var client extract.LLMClient
	if !extractOffline {
		if c := buildClient(cfg); c != nil {
			client = c
		}
	}

	chunks := sources.Chunk(material.Content, cfg.Content.ChunkSize, cfg.Content.ChunkOverlap)
	insights, provenance := extract.New(client).Extract(cmd.Context(), material.Title, chunks[0])

	payload := struct {
		Title      string      `json:"title"`
		Provenance string      `json:"provenance"`
		Insights   interface{} `json:"insights"`
	}{material.Title, string(provenance), insights}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
