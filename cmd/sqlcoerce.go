package cmd

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/leftmike/sqlcoerce/coerce"
	"github.com/leftmike/sqlcoerce/config"
)

var (
	rootCmd = &cobra.Command{
		Use:   "sqlcoerce",
		Short: "Coerce values into SQL expression roles",
		Long: "Sqlcoerce checks that values satisfy the role required of them in a SQL " +
			"expression, and coerces those that don't.",
		PersistentPostRun: rootPostRun,
		SilenceUsage:      true,
	}

	cfg       *config.Config
	coercer   *coerce.Coercer
	logFile   *string
	logLevel  *string
	logStderr = false
	logWriter io.WriteCloser

	configFile = "sqlcoerce.hcl"
	noConfig   = false
)

func init() {
	rootCmd.PersistentPreRunE = rootPreRun

	log.SetFormatter(&log.TextFormatter{
		DisableLevelTruncation: true,
	})

	fs := rootCmd.PersistentFlags()
	cfg = config.NewConfig(fs)

	logFile = cfg.Var(new(string), "log-file").Usage("`file` to use for logging").
		Env("SQLCOERCE_LOG_FILE").String("sqlcoerce.log")
	logLevel = cfg.Var(new(string), "log-level").
		Usage("log level: trace, debug, info, warn, error, fatal, or panic").
		Env("SQLCOERCE_LOG_LEVEL").String("info")
	coercer = coerce.Config(cfg)

	fs.BoolVarP(&logStderr, "log-stderr", "s", logStderr, "log to standard error")
	fs.StringVar(&configFile, "config-file", configFile, "`file` to load config from")
	fs.BoolVar(&noConfig, "no-config", noConfig, "don't load config file")
}

func Execute() error {
	return rootCmd.Execute()
}

func rootPreRun(cmd *cobra.Command, args []string) error {
	err := cfg.Env()
	if err != nil {
		return fmt.Errorf("sqlcoerce: %s", err)
	}

	if configFile != "" && !noConfig {
		err := cfg.LoadFile(configFile)
		// A missing config file is only an error if it was asked for.
		if err != nil &&
			!(os.IsNotExist(err) && !rootCmd.PersistentFlags().Changed("config-file")) {

			return fmt.Errorf("sqlcoerce: %s", err)
		}
	}

	if !logStderr && *logFile != "" {
		logWriter, err = os.OpenFile(*logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			logWriter = nil
			return fmt.Errorf("sqlcoerce: %s", err)
		}
		log.SetOutput(logWriter)
	}

	ll, err := log.ParseLevel(*logLevel)
	if err != nil {
		return fmt.Errorf("sqlcoerce: %s", err)
	}
	log.SetLevel(ll)

	log.WithField("pid", os.Getpid()).Info("sqlcoerce starting")
	return nil
}

func rootPostRun(cmd *cobra.Command, args []string) {
	log.WithField("pid", os.Getpid()).Info("sqlcoerce done")

	if logWriter != nil {
		log.SetOutput(os.Stderr)
		logWriter.Close()
		logWriter = nil
	}
}
