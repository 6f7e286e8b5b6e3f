package common

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs where the service will listen
func PrintBanner(config *Config, logger arbor.ILogger) {
	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorRed).
		SetTextColor(banner.ColorWhite).
		SetBold(true).
		SetWidth(60)

	b.PrintTopLine()
	b.PrintCenteredText("STOCKDASH")
	b.PrintCenteredText("A-share dashboard and analysis service")
	b.PrintSeparatorLine()
	b.PrintKeyValue("Version", GetFullVersion(), 12)
	b.PrintKeyValue("Listen", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port), 12)
	b.PrintKeyValue("Generator", string(config.LLM.DefaultProvider), 12)
	b.PrintBottomLine()
	fmt.Println()

	logger.Info().
		Str("version", GetFullVersion()).
		Str("host", config.Server.Host).
		Int("port", config.Server.Port).
		Str("llm_provider", string(config.LLM.DefaultProvider)).
		Str("log_file", GetLogFilePath(logger)).
		Msg("StockDash starting")
}
