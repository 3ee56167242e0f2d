// Command cvanalyze runs CV analyses from the terminal and hosts the queue
// worker.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/muhammadolammi/musecareer/internal/app"
	"github.com/muhammadolammi/musecareer/internal/config"
	"github.com/muhammadolammi/musecareer/internal/logger"
)

var verbose bool

// replaced in tests
var (
	loadConfig    = config.Load
	buildAnalyzer = app.NewAnalyzer
)

var rootCmd = &cobra.Command{
	Use:           "cvanalyze",
	Short:         "Analyze CVs with a generative model",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress to stderr")
}

func newLogger(cfg config.Config) (*logger.Logger, error) {
	if !verbose {
		return logger.Nop(), nil
	}
	return logger.New(cfg.Env)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
