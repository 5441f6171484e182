package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/acronis/go-filecompressor/internal/app/command"
	"github.com/acronis/go-filecompressor/internal/app/commands/compresscmd"
	"github.com/acronis/go-stacktrace"
	slogex "github.com/acronis/go-stacktrace/slogex"
	"github.com/dusted-go/logging/prettylog"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	slogformatter "github.com/samber/slog-formatter"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

const (
	verboseFlag = "verbose"
	logFileFlag = "log-file"

	logFileMaxSizeMB  = 10
	logFileMaxBackups = 3
)

// initLogging installs the default logger. The returned closer is non-nil
// when logs are also written to a file.
func initLogging(verbose bool, logFile string) io.Closer {
	logLvl := func() slog.Level {
		if verbose {
			return slog.LevelDebug
		}
		return slog.LevelInfo
	}()
	w := os.Stderr

	var handler slog.Handler = prettylog.New(&slog.HandlerOptions{Level: logLvl},
		prettylog.WithDestinationWriter(w),
		func() prettylog.Option {
			if isatty.IsTerminal(w.Fd()) {
				return prettylog.WithColor()
			}
			return func(_ *prettylog.Handler) {}
		}(),
	)

	var closer io.Closer
	if logFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
		}
		handler = slogmulti.Fanout(handler, slog.NewJSONHandler(rotated, &slog.HandlerOptions{Level: logLvl}))
		closer = rotated
	}

	logger := slog.New(
		slogformatter.NewFormatterHandler(
			slogformatter.FormatByType(func(s []string) slog.Value {
				return slog.StringValue(strings.Join(s, ","))
			}),
			slogformatter.FormatByKey("size", func(v slog.Value) slog.Value {
				if v.Kind() != slog.KindInt64 || v.Int64() < 0 {
					return v
				}
				return slog.StringValue(humanize.IBytes(uint64(v.Int64())))
			}),
		)(handler),
	)
	slog.SetDefault(logger)
	return closer
}

func main() {
	os.Exit(mainFn())
}

func mainFn() int {
	var ensureDuplicates bool
	var logCloser io.Closer
	defer func() {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := func() *cobra.Command {
		cmd := compresscmd.New(ctx)
		cmd.Version = version
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		cmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				fmt.Printf("Failed to get verbosity flag: %v\n", err)
				os.Exit(command.ExitFailure)
			}
			logFile, err := cmd.Flags().GetString(logFileFlag)
			if err != nil {
				fmt.Printf("Failed to get log file flag: %v\n", err)
				os.Exit(command.ExitFailure)
			}

			logCloser = initLogging(verbose, logFile)
		}
		cmd.CompletionOptions = cobra.CompletionOptions{
			DisableDefaultCmd: true,
		}

		command.AddWorkDirFlag(cmd)

		cmd.PersistentFlags().BoolP(verboseFlag, "v", false, "verbose output")
		cmd.PersistentFlags().String(logFileFlag, "", "additionally write JSON logs to this file")
		cmd.Flags().BoolVarP(&ensureDuplicates, "ensure-duplicates", "d", false, "ensure that there are no duplicates in tracebacks")
		return cmd
	}()

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, command.ErrUsage) {
			fmt.Println(command.UsageLine(compresscmd.Use))
			return command.ExitFailure
		}

		var cmdErr *command.Error
		if errors.As(err, &cmdErr) && cmdErr.Inner != nil {
			stOpts := func() []stacktrace.TracesOpt {
				if ensureDuplicates {
					return []stacktrace.TracesOpt{stacktrace.WithEnsureDuplicates()}
				}
				return []stacktrace.TracesOpt{}
			}()

			slog.Error("Command failed", slogex.ErrToSlogAttr(cmdErr.Inner, stOpts...))
			return cmdErr.Code
		}

		_ = rootCmd.Usage()
		return command.ExitFailure
	}

	return command.ExitOK
}
