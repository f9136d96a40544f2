package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/telekom/smtp-mail-adapter/pkg/config"
	"github.com/telekom/smtp-mail-adapter/pkg/version"
)

const (
	EnvConfigPath = "SMTP_ADAPTER_CONFIG"
	EnvDebug      = "SMTP_ADAPTER_DEBUG"
)

type Config struct {
	ConfigPath   string
	OutputWriter io.Writer
	// Logger overrides the logger built from --debug.
	Logger *zap.Logger
}

type runtimeState struct {
	configPath string
	debug      bool
	cfg        *config.Config
	log        *zap.Logger
	writer     io.Writer
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{
		ConfigPath:   getEnvString(EnvConfigPath, config.DefaultConfigPath),
		OutputWriter: os.Stdout,
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{configPath: cfg.ConfigPath, writer: cfg.OutputWriter, log: cfg.Logger}

	root := &cobra.Command{
		Use:           version.Name,
		Short:         "Send verification, password reset and plain mail over SMTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.configPath == "" {
				rt.configPath = getEnvString(EnvConfigPath, config.DefaultConfigPath)
			}
			if !rt.debug {
				rt.debug = getEnvBool(EnvDebug, false)
			}
			if rt.log == nil {
				log, err := setupLogger(rt.debug)
				if err != nil {
					return err
				}
				rt.log = log
			}

			if cmd.Name() == "version" {
				return nil
			}
			return rt.EnsureConfigLoaded()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if rt.log != nil {
				_ = rt.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to the adapter config file (env "+EnvConfigPath+")")
	root.PersistentFlags().BoolVar(&rt.debug, "debug", false, "Enable debug logging (env "+EnvDebug+")")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		NewCheckCommand(),
		NewRenderCommand(),
		NewSendCommand(),
		NewSendVerificationCommand(),
		NewSendPasswordResetCommand(),
		NewServeCommand(),
		NewVersionCommand(),
	)

	return root
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}

func (rt *runtimeState) Logger() *zap.Logger {
	if rt.log != nil {
		return rt.log
	}
	return zap.NewNop()
}

func (rt *runtimeState) EnsureConfigLoaded() error {
	if rt.cfg != nil {
		return nil
	}
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return err
	}
	rt.cfg = &cfg
	return nil
}

// getEnvString returns the value of an environment variable or the provided default if not set.
func getEnvString(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvBool returns the value of an environment variable as a bool, or the provided default if not set.
// Valid true values are "true", "1", "yes" (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}
