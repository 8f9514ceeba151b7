package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"taalquest/internal/cli/scheme/colours"
	"taalquest/internal/config"
	"taalquest/internal/quest"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "taalquest",
		Short: "🇳🇱 Practice everyday Dutch through generated dialogues",
		Long: `
┌─────────────────────────────────────┐
│  🇳🇱 Welcome to TaalQuest!          │
│  Everyday Dutch, one scene at a     │
│  time: listen, read, answer 🎧      │
└─────────────────────────────────────┘

TaalQuest generates short A1-level Dutch dialogues set in everyday
locations, reads them aloud and quizzes you on what you heard.
		`,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file path")

	var app *quest.App
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		config.SetupLogging(cfg.Logging)

		app, err = quest.NewApp(cfg)
		if err != nil {
			return err
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			app.Close()
			fmt.Println("\n" + colours.Warning.Sprint("👋 Tot ziens!"))
			os.Exit(0)
		}()
		return nil
	}
	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		app.ShowWelcome()
	}

	playCmd := &cobra.Command{
		Use:   "play [location-id]",
		Short: "🎧 Generate and play a scenario",
		Long:  "Generate a dialogue for a location (random when omitted), play its audio and take the quiz",
		Run: func(cmd *cobra.Command, args []string) {
			app.PlayScenario(cmd, args)
		},
	}
	playCmd.Flags().StringP("location", "l", "", "Location ID to practice at")

	locationsCmd := &cobra.Command{
		Use:   "locations",
		Short: "📍 List the practice locations",
		Run: func(cmd *cobra.Command, args []string) {
			app.ListLocations(cmd, args)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "🌐 Run the HTTP API",
		Long:  "Serve the scenario, audio and location endpoints over HTTP",
		Run: func(cmd *cobra.Command, args []string) {
			app.Serve(cmd, args)
		},
	}
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (overrides config)")

	pregenerateCmd := &cobra.Command{
		Use:   "pregenerate",
		Short: "📦 Generate a scenario and save it to a file",
		Run: func(cmd *cobra.Command, args []string) {
			app.Pregenerate(cmd, args)
		},
	}
	pregenerateCmd.Flags().StringP("location", "l", "", "Location ID to generate for")
	pregenerateCmd.Flags().StringP("out", "o", "scenario.json", "Output file")

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "🗄️ Inspect the audio cache",
		Run: func(cmd *cobra.Command, args []string) {
			app.CacheStatus(cmd, args)
		},
	}
	cacheClearCmd := &cobra.Command{
		Use:   "clear",
		Short: "🧹 Remove all cached audio",
		Run: func(cmd *cobra.Command, args []string) {
			app.CacheClear(cmd, args)
		},
	}
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(playCmd, locationsCmd, serveCmd, pregenerateCmd, cacheCmd)

	if err := rootCmd.Execute(); err != nil {
		colours.Error.Printf("❌ Error: %v\n", err)
		logrus.WithError(err).Debug("command failed")
		os.Exit(1)
	}
}
