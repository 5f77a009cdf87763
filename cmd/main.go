package main

import (
	goflag "flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"sigscan/internal/config"
)

var (
	ConfigFile string
	LogLevel   string

	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "sigscan",
	Short: "sigscan, recover function selectors, arguments and state mutability from evm bytecode",
	Long:  "",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "yaml config file")
	rootCmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "log level, overrides config")
}

// setup 加载配置，命令行参数覆盖配置文件
func setup() error {
	if ConfigFile != "" {
		loaded, err := config.Load(ConfigFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if LogLevel != "" {
		cfg.LogLevel = LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log.SetOutput(os.Stderr)
	log.SetLevel(cfg.Level())
	return nil
}

func main() {
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)

	rootCmd.AddCommand(versionCommand)
	rootCmd.AddCommand(selectorsCommand)
	rootCmd.AddCommand(argumentsCommand)
	rootCmd.AddCommand(mutabilityCommand)
	rootCmd.AddCommand(analyzeCommand)
	rootCmd.AddCommand(disassembleCommand)
	rootCmd.AddCommand(verifyCommand)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// exit 与各命令共用的错误出口
func exit(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "service err: %v\n", err)
		os.Exit(1)
	}
}
