package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mikeboe/deep-researcher/pkg/clients"
	"github.com/mikeboe/deep-researcher/pkg/config"
	"github.com/mikeboe/deep-researcher/pkg/research"
	"github.com/mikeboe/deep-researcher/pkg/search"
	"github.com/spf13/cobra"
)

var (
	topic      string
	maxLoops   int
	outputPath string
)

func main() {
	// Setup structured logging
	handler := slog.NewTextHandler(os.Stdout, nil)
	slog.SetDefault(slog.New(handler))

	// Missing .env is fine, env vars may be set directly.
	_ = godotenv.Load()

	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "deep-researcher",
		Short: "A terminal-based web research agent",
		Long:  `deep-researcher is an autonomous agent that researches a topic by iterating through a search-summarize-reflect loop against local or hosted LLMs, then emits a cited Markdown report.`,
		Run: func(cmd *cobra.Command, args []string) {

			topicFlagChanged := cmd.Flags().Changed("topic")

			if !topicFlagChanged {
				// Interactive Mode
				reader := bufio.NewReader(os.Stdin)

				fmt.Print("Enter research topic: ")
				input, _ := reader.ReadString('\n')
				topic = strings.TrimSpace(input)
				if topic == "" {
					slog.Error("Topic cannot be empty")
					os.Exit(1)
				}
			} else if topic == "" {
				slog.Error("--topic flag provided but empty")
				os.Exit(1)
			}

			if maxLoops > 0 {
				cfg.MaxLoops = maxLoops
			}

			slog.Info("Starting research", "topic", topic, "provider", cfg.LLMProvider, "search", cfg.SearchAPI, "max_loops", cfg.MaxLoops)

			llm, err := clients.New(cfg)
			if err != nil {
				slog.Error("Error initializing LLM client", "error", err)
				os.Exit(1)
			}

			searcher, err := search.New(cfg)
			if err != nil {
				slog.Error("Error initializing search provider", "error", err)
				os.Exit(1)
			}

			ctrl := research.NewController(research.Config{
				MaxLoops:            cfg.MaxLoops,
				FetchFullPage:       cfg.FetchFullPage,
				StripThinkingTokens: cfg.StripThinkingTokens,
			}, llm, searcher)

			ctrl.OnIteration = func(state research.ResearchState) {
				slog.Info("Iteration complete",
					"loop", state.LoopCount,
					"sources", len(state.Sources),
					"summary_chars", len(state.RunningSummary))
			}

			// Ctrl-C finalizes with whatever has been gathered so far.
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := ctrl.Run(ctx, topic)
			if err != nil {
				slog.Error("Error running research", "error", err)
				os.Exit(1)
			}

			markdown := report.Markdown()
			fmt.Println()
			fmt.Println(markdown)

			path := outputPath
			if path == "" {
				path = fmt.Sprintf("report_%d.md", time.Now().Unix())
			}
			if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
				slog.Warn("Failed to save report", "path", path, "error", err)
			} else {
				slog.Info("Report saved", "path", path)
			}
		},
	}

	rootCmd.Flags().StringVarP(&topic, "topic", "t", "", "The research topic")
	rootCmd.Flags().IntVarP(&maxLoops, "max-loops", "l", 0, "Override the research loop budget")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Report output path (default report_<timestamp>.md)")

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
