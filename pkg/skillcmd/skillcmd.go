// Package skillcmd is the scaffolding every skill binary shares: viper
// env/config wiring, logging and quiet flags, opt-in tracing, and the
// version subcommand. Binaries build their root command here and register
// their own subcommands on top.
package skillcmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/anvil-ai/cacheforge-skills/pkg/logger"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/telemetry"
	"github.com/anvil-ai/cacheforge-skills/pkg/version"
)

// NewRoot builds a skill binary's root command with the shared global flags
// registered and bound to viper. Environment variables use the CACHEFORGE
// prefix; an optional config.yaml is read from ~/.cacheforge or the working
// directory.
func NewRoot(name, short, long string) *cobra.Command {
	viper.SetEnvPrefix("CACHEFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.cacheforge")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()

	root := &cobra.Command{
		Use:   name,
		Short: short,
		Long:  long,
	}

	root.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "fmt", "Log format (fmt, json)")
	root.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")
	root.PersistentFlags().Bool("tracing-enabled", false, "Enable OpenTelemetry tracing")
	root.PersistentFlags().String("tracing-sampler", "ratio", "Tracing sampler type (always, never, ratio)")
	root.PersistentFlags().Float64("tracing-ratio", 1, "Sampling ratio when using ratio sampler")

	viper.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", root.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("tracing.enabled", root.PersistentFlags().Lookup("tracing-enabled"))
	viper.BindPFlag("tracing.sampler", root.PersistentFlags().Lookup("tracing-sampler"))
	viper.BindPFlag("tracing.ratio", root.PersistentFlags().Lookup("tracing-ratio"))

	state := &runState{name: name}
	root.PersistentPreRun = state.before
	root.PersistentPostRun = state.after

	root.AddCommand(versionCmd)
	return root
}

// Execute runs the root command with a skill-tagged logger on the context.
// It is the last call in every binary's main.
func Execute(root *cobra.Command) {
	ctx := logger.WithSkill(context.Background(), root.Name())
	if err := root.ExecuteContext(ctx); err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}

// runState carries the tracer handles between the pre and post run hooks.
type runState struct {
	name     string
	span     trace.Span
	shutdown func(context.Context) error
}

func (s *runState) before(cmd *cobra.Command, args []string) {
	level := viper.GetString("log.level")
	if err := logger.SetLogLevel(level); err != nil {
		presenter.Warning(fmt.Sprintf("Invalid log level %q, using info", level))
	}
	logger.SetLogFormat(viper.GetString("log.format"))
	if quiet, err := cmd.Flags().GetBool("quiet"); err == nil && quiet {
		presenter.SetQuiet(true)
	}

	if !viper.GetBool("tracing.enabled") {
		return
	}

	ctx := cmd.Context()
	shutdown, err := telemetry.InitTracer(ctx, telemetry.Config{
		Enabled:        true,
		ServiceName:    s.name,
		ServiceVersion: version.Get().Version,
		SamplerType:    viper.GetString("tracing.sampler"),
		SamplerRatio:   viper.GetFloat64("tracing.ratio"),
	})
	if err != nil {
		logger.G(ctx).WithError(err).Warn("failed to initialize tracing")
		return
	}
	s.shutdown = shutdown

	attrs := []attribute.KeyValue{
		attribute.String("command.name", cmd.Name()),
		attribute.String("command.path", cmd.CommandPath()),
		attribute.Int("args.count", len(args)),
	}
	cmd.Flags().Visit(func(flag *pflag.Flag) {
		// Skip flags that may carry secrets.
		if flag.Name == "password" || strings.Contains(flag.Name, "key") {
			return
		}
		attrs = append(attrs, attribute.String("flag."+flag.Name, flag.Value.String()))
	})

	ctx, s.span = telemetry.Tracer(s.name+".cli").Start(ctx, "cli.command", trace.WithAttributes(attrs...))
	cmd.SetContext(ctx)
}

func (s *runState) after(cmd *cobra.Command, args []string) {
	if s.span != nil {
		s.span.SetStatus(codes.Ok, "")
		s.span.End()
	}
	if s.shutdown != nil {
		if err := s.shutdown(context.Background()); err != nil {
			logger.G(cmd.Context()).WithError(err).Debug("tracer shutdown failed")
		}
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the toolkit version information in JSON format.`,
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		json, err := info.JSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting version info: %s\n", err)
			os.Exit(1)
		}
		fmt.Println(json)
	},
}
