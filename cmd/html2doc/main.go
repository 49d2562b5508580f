// Утилита html2doc: преобразование HTML в документ редактора из командной строки и HTTP сервис.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aisa-it/html2doc/internal/html2doc/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var version string = "DEV"

var (
	trace      bool
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "html2doc",
	Short: "HTML to rich-text document converter",
	Long: `html2doc converts HTML markup into the editor document model (JSON, YAML or msgpack).

Usage:
  html2doc convert [files...] [flags]
  html2doc serve`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger(trace || config.GetBoolEnv("TRACE"))
	},
}

func main() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "Verbose logs")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "TOML config file (default $CONFIG_FILE)")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(serveCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetLogLoggerLevel(level)

	// Set prod log format
	if version != "DEV" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}
}

// readConfig конфигурация из --config или CONFIG_FILE с переменными окружения поверх.
// trace из файла включает отладочные логи так же, как --trace.
func readConfig() *config.Config {
	var cfg *config.Config
	if configFile != "" {
		cfg = config.ReadConfigFile(configFile)
	} else {
		cfg = config.ReadConfig()
	}

	if trace {
		cfg.Trace = true
	}
	if cfg.Trace {
		setupLogger(true)
	}
	return cfg
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// PrintBanner выводит заголовок сервиса с версией.
func PrintBanner() {
	banner := `
 _    _             _ ___     _
| |_ | |_  _ __  _ | |_  )  __| | ___  __
| ' \|  _|| '  \| || |/ /  / _  |/ _ \/ _|
|_||_|\__||_|_|_|_||_/___| \__,_|\___/\__| %s
HTML to rich-text document converter
----------------------------------------------------
`
	formattedVersion := version
	if version == "DEV" {
		formattedVersion = color.New(color.FgYellow, color.Bold).Sprint(version)
	}

	fmt.Printf(banner, formattedVersion)
}
