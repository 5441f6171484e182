package compresscmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/acronis/go-filecompressor/internal/app/command"
	"github.com/acronis/go-filecompressor/pkg/archiver"
	"github.com/acronis/go-filecompressor/pkg/compressor"
	"github.com/acronis/go-stacktrace"
	"github.com/spf13/cobra"
)

const Use = "filecompressor <output_zip_file> <file1> <file2> ..."

type CompressOptions struct {
	Format archiver.Format
}

func New(ctx context.Context) *cobra.Command {
	compressOpts := CompressOptions{Format: archiver.FormatZip}
	cmd := &cobra.Command{
		Use:   Use,
		Short: "bundle files and directories into a single archive",
		Args: func(_ *cobra.Command, args []string) error {
			// the output path and at least one input
			if len(args) < 2 {
				return command.ErrUsage
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDir, err := command.GetWorkingDir(cmd)
			if err != nil {
				return command.WrapError(fmt.Errorf("get base directory: %w", err))
			}

			return execute(ctx, cmd.OutOrStdout(), baseDir, args[0], args[1:], compressOpts)
		},
	}

	cmd.Flags().VarP(&compressOpts.Format, "format", "f", "archive format, one of "+strings.Join(archiver.ListFormats, ","))
	return cmd
}

func execute(_ context.Context, stdout io.Writer, baseDir string, output string, inputs []string, opts CompressOptions) error {
	slog.Debug("Compressing inputs",
		slog.String("output", output),
		slog.Any("inputs", inputs),
		slog.String("format", string(opts.Format)),
		slog.String("working-dir", baseDir))

	c, err := compressor.New(
		compressor.WithFormat(opts.Format),
		compressor.WithBaseDir(baseDir),
		compressor.WithReporter(compressor.NewConsoleReporter(stdout)),
	)
	if err != nil {
		return command.WrapError(fmt.Errorf("create compressor: %w", err))
	}

	summary, err := c.Compress(output, inputs)
	if err != nil {
		var ioErr *compressor.IOFailure
		if errors.As(err, &ioErr) {
			return command.WrapErrorWithCode(stacktrace.NewWrapped("compression failed", err,
				stacktrace.WithType("io"),
				stacktrace.WithInfo("op", ioErr.Op),
				stacktrace.WithInfo("path", ioErr.Path),
			), command.ExitIOFailure)
		}
		return command.WrapError(fmt.Errorf("compress: %w", err))
	}

	slog.Debug("Compression has been completed",
		slog.String("output", output),
		slog.Int("processed", summary.Processed),
		slog.Int("total", summary.Total),
		slog.Any("not-found", summary.NotFound),
		slog.Int("entries", summary.Entries),
		slog.Int64("size", summary.Bytes))
	return nil
}
