package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/mogud/snowlog/core/logging"
	"github.com/mogud/snowlog/core/logging/handler/compound"
	"github.com/mogud/snowlog/core/logging/handler/console"
	"github.com/mogud/snowlog/core/logging/levelhttp"
	"github.com/mogud/snowlog/core/logging/slog"
	"github.com/mogud/snowlog/core/option"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "snowlog",
		Short:         "Inspect log level masks and drive the console log handler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newDescribeCommand(),
		newParseCommand(),
		newEmitCommand(),
		newServeCommand(),
	)
	return root
}

func newDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <raw>",
		Short: "Describe a raw level value (decimal or 0x hex)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseUint(args[0], 0, 32)
			if err != nil {
				return fmt.Errorf("invalid raw value %q: %w", args[0], err)
			}
			describe(cmd.OutOrStdout(), logging.FromRawValue(uint32(v)))
			return nil
		},
	}
}

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <expr>",
		Short: "Parse a level expression such as Debug|Error or >=Warn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.ParseLevel(args[0])
			if err != nil {
				return err
			}
			describe(cmd.OutOrStdout(), l)
			return nil
		},
	}
}

func describe(w io.Writer, l logging.LogLevel) {
	_, _ = fmt.Fprintf(w, "raw:         %d (0x%08x)\n", l.RawValue(), l.RawValue())
	_, _ = fmt.Fprintf(w, "description: %s\n", l)
	_, _ = fmt.Fprintf(w, "expr:        %s\n", l.Expr())
	_, _ = fmt.Fprintf(w, "hash:        %d\n", l.Hash())
}

func newEmitCommand() *cobra.Command {
	var levelsExpr, enabledExpr, formatter, path string

	cmd := &cobra.Command{
		Use:   "emit <message>",
		Short: "Write a message at each requested level through the console handler",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			levels, err := logging.ParseLevel(levelsExpr)
			if err != nil {
				return err
			}
			enabled, err := logging.ParseLevel(enabledExpr)
			if err != nil {
				return err
			}

			opt := &console.Option{}
			console.DefaultOption(opt)
			opt.Formatter = formatter
			opt.DefaultLevels = enabled
			opt.ErrorLevels = logging.Off

			h := console.NewHandler()
			h.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
			h.Construct(option.Value(opt), logging.NewLogFormatterRepository())

			runID := uuid.NewString()
			logger := logging.NewDefaultLogger(path, h, func(d *logging.LogData) {
				d.ID = runID
				d.Name = "snowlog"
			})
			for _, l := range levels.Flags() {
				logger.Log(l, "%s", args[0])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&levelsExpr, "levels", "All", "levels to emit the message at")
	cmd.Flags().StringVar(&enabledExpr, "enabled", ">=Info", "levels the handler lets through")
	cmd.Flags().StringVar(&formatter, "formatter", "Default", "formatter name: Default, Color or JSON")
	cmd.Flags().StringVar(&path, "path", "snowlog/emit", "logger path used for prefix filters")
	return cmd
}

func newServeCommand() *cobra.Command {
	var configPath, section, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the level admin endpoint for a console handler configured from a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, configPath, section, addr)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "option file (json, yaml or toml)")
	cmd.Flags().StringVar(&section, "section", "Logging.Console", "option path of the console handler")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides Logging.Admin.Addr")
	return cmd
}

func serve(ctx context.Context, configPath, section, addr string) error {
	repo := option.NewRepository()
	if len(configPath) > 0 {
		if err := repo.AddFile(configPath); err != nil {
			return err
		}
	}

	opt, err := option.Bind(repo, section, console.DefaultOption)
	if err != nil {
		return err
	}

	admin, err := adminOptionOf(repo, addr)
	if err != nil {
		return err
	}

	h := console.NewHandler()
	h.Construct(opt, logging.NewLogFormatterRepository())
	slog.BindGlobalHandler(compound.NewHandler(h))
	repo.OnError = func(err error) {
		slog.Errorf("option reload: %v", err)
	}

	if err = repo.Watch(ctx); err != nil {
		return err
	}

	logger := logging.NewDefaultLogger("snowlog/serve", slog.Handler(), nil)
	srv := &fasthttp.Server{
		Handler: levelhttp.NewServer(admin.Path, h, logger).Handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(admin.Addr)
	}()
	slog.Eventf("level admin listening at %s%s, levels %s", admin.Addr, admin.Path, h.Levels().Expr())

	select {
	case <-ctx.Done():
		slog.Infof("shutting down")
		return srv.Shutdown()
	case err = <-errCh:
		return err
	}
}

const adminSection = "Logging.Admin"

type adminOption struct {
	Addr string `koanf:"Addr"`
	Path string `koanf:"Path"`
}

// adminOptionOf 读取 Logging.Admin 配置，命令行地址优先
func adminOptionOf(repo *option.Repository, addr string) (adminOption, error) {
	admin := adminOption{
		Addr: "127.0.0.1:8089",
		Path: "/level",
	}
	if repo.Exists(adminSection) {
		if err := repo.GetByKey(adminSection, &admin); err != nil {
			return admin, fmt.Errorf("read %s: %w", adminSection, err)
		}
	}
	if len(addr) > 0 {
		admin.Addr = addr
	}
	return admin, nil
}
