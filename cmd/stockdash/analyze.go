package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/models"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <value|tao|masters> <code>",
	Short: "Run an LLM analysis track and print the JSON result",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyze,
}

var (
	analyzeForce bool
	analyzeModel string
)

func init() {
	analyzeCmd.Flags().BoolVarP(&analyzeForce, "force", "f", false, "Ignore the cached analysis and regenerate")
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "Model override, e.g. gemini/gemini-2.5-pro or claude/claude-sonnet-4-5")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	track, ok := models.ParseTrack(args[0])
	if !ok {
		return fmt.Errorf("unknown analysis track %q (want value, tao or masters)", args[0])
	}

	application, err := openApp()
	if err != nil {
		return err
	}
	defer application.Close()

	if analyzeModel != "" {
		application.AnalysisService.SetModel(analyzeModel)
	}

	result, err := application.AnalysisService.Analyze(context.Background(), track, common.NormalizeStockCode(args[1]), analyzeForce)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, result.Payload, "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(os.Stdout)
	if result.Malformed {
		logger.Warn().Str("track", string(track)).Msg("Generator reply was not valid JSON; nothing was cached")
	}
	return err
}
