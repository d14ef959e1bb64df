package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/abczzz13/ipmatch"
	"github.com/urfave/cli/v3"
)

// exitError carries a non-zero exit code for a command that has already
// written its output.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// usageError reports invalid arguments; run maps it to exit code 2.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func createCommands() []*cli.Command {
	return []*cli.Command{
		createCheckCommand(),
		createValidateCommand(),
		createDescribeCommand(),
		createResolveCommand(),
	}
}

func createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "report whether each address is in the configured ranges",
		ArgsUsage: "<ip>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "ranges",
				Aliases: []string{"r"},
				Usage:   "comma-separated range list, added to ranges from the config file",
			},
			&cli.StringFlag{
				Name:    "preset",
				Aliases: []string{"p"},
				Usage:   "named range preset: loopback, private or local",
			},
			&cli.BoolFlag{
				Name:  "strict-netmasks",
				Usage: "reject netmasks that are not a contiguous run of leading ones",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := commandConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.IsSet("ranges") {
				cfg.Ranges = append(cfg.Ranges, cmd.String("ranges"))
			}
			if cmd.IsSet("preset") {
				cfg.Preset = cmd.String("preset")
			}
			if cmd.IsSet("strict-netmasks") {
				cfg.StrictNetmasks = cmd.Bool("strict-netmasks")
			}

			ranges, err := cfg.rangeTokens()
			if err != nil {
				return &usageError{msg: err.Error()}
			}

			logger := newLogger(cmd.Root().ErrWriter, cmd.Bool("verbose"))
			logger.DebugContext(ctx, "checking addresses",
				"ranges", len(ranges),
				"strict_netmasks", cfg.StrictNetmasks,
			)

			matcher, err := ipmatch.NewMatcher(cfg.options(logger)...)
			if err != nil {
				return err
			}

			return cmdCheck(ctx, cmd.Root().Writer, matcher, ranges, cmd.Args().Slice())
		},
	}
}

func createValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "print the IP version of each value, or \"invalid\"",
		ArgsUsage: "<text>...",
		Action: func(_ context.Context, cmd *cli.Command) error {
			return cmdValidate(cmd.Root().Writer, cmd.Args().Slice())
		},
	}
}

func createDescribeCommand() *cli.Command {
	return &cli.Command{
		Name:      "describe",
		Usage:     "print the kind and canonical form of each range",
		ArgsUsage: "<range>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict-netmasks",
				Usage: "reject netmasks that are not a contiguous run of leading ones",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := commandConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.IsSet("strict-netmasks") {
				cfg.StrictNetmasks = cmd.Bool("strict-netmasks")
			}

			return cmdDescribe(cmd.Root().Writer, cfg.StrictNetmasks, cmd.Args().Slice())
		},
	}
}

func createResolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "resolve the client address from connection and header values",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "remote-addr",
				Usage: "direct-connection address",
			},
			&cli.StringFlag{
				Name:  "client-ip",
				Usage: "Client-Ip header value",
			},
			&cli.StringFlag{
				Name:  "forwarded-for",
				Usage: "X-Forwarded-For header value",
			},
			&cli.BoolFlag{
				Name:  "allow-override",
				Usage: "let proxy headers override the direct-connection address",
			},
			&cli.BoolFlag{
				Name:  "no-env",
				Usage: "do not fall back to the REMOTE_ADDR environment variable",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := commandConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.IsSet("allow-override") {
				cfg.AllowOverride = cmd.Bool("allow-override")
			}

			logger := newLogger(cmd.Root().ErrWriter, cmd.Bool("verbose"))
			opts := cfg.options(logger)
			if cmd.Bool("no-env") {
				opts = append(opts, ipmatch.WithoutEnvFallback())
			}

			resolver, err := ipmatch.NewResolver(opts...)
			if err != nil {
				return err
			}

			var candidates []ipmatch.Candidate
			for _, source := range []struct{ flag, name string }{
				{flag: "remote-addr", name: ipmatch.SourceRemoteAddr},
				{flag: "client-ip", name: ipmatch.SourceClientIP},
				{flag: "forwarded-for", name: ipmatch.SourceXForwardedFor},
			} {
				if cmd.IsSet(source.flag) {
					candidates = append(candidates, ipmatch.Candidate{Source: source.name, Value: cmd.String(source.flag)})
				}
			}

			logger.DebugContext(ctx, "resolving client address",
				"candidates", len(candidates),
				"allow_override", cfg.AllowOverride,
			)

			return cmdResolve(ctx, cmd.Root().Writer, resolver, candidates, cfg.AllowOverride)
		},
	}
}

func commandConfig(cmd *cli.Command) (fileConfig, error) {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return cfg, &usageError{msg: err.Error()}
	}
	return cfg, nil
}

// newLogger logs warnings to w, and debug records as well when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func cmdCheck(ctx context.Context, w io.Writer, matcher *ipmatch.Matcher, ranges, ips []string) error {
	if len(ips) == 0 {
		return &usageError{msg: "check requires at least one address"}
	}
	if len(ranges) == 0 {
		return &usageError{msg: "no ranges configured: use --ranges, --preset or a config file"}
	}
	if len(matcher.Compile(ctx, ranges)) == 0 {
		return &usageError{msg: "none of the configured ranges is valid"}
	}

	allMatched := true
	for _, ip := range ips {
		ok := matcher.ContainsList(ctx, ip, ranges)
		if !ok {
			allMatched = false
		}
		fmt.Fprintf(w, "%s\t%t\n", ip, ok)
	}

	if !allMatched {
		return &exitError{code: 1}
	}
	return nil
}

func cmdValidate(w io.Writer, texts []string) error {
	if len(texts) == 0 {
		return &usageError{msg: "validate requires at least one value"}
	}

	valid := true
	for _, text := range texts {
		addr, err := ipmatch.ParseAddress(text)
		if err != nil {
			valid = false
			fmt.Fprintf(w, "%s\tinvalid\n", text)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", text, addr.Version())
	}

	if !valid {
		return &exitError{code: 1}
	}
	return nil
}

func cmdDescribe(w io.Writer, strictNetmasks bool, ranges []string) error {
	if len(ranges) == 0 {
		return &usageError{msg: "describe requires at least one range"}
	}

	parse := ipmatch.ParseRange
	if strictNetmasks {
		parse = ipmatch.ParseRangeStrict
	}

	valid := true
	for _, text := range ranges {
		spec, err := parse(text)
		if err != nil {
			valid = false
			fmt.Fprintf(w, "%s\tinvalid\t%v\n", text, err)
			continue
		}

		line := fmt.Sprintf("%s\t%s\t%s\t%s", text, spec.Kind(), spec.Version(), spec)
		if spec.Kind() == ipmatch.RangeNetmask {
			line += fmt.Sprintf("\tprefix=%d", spec.Bits())
		}
		fmt.Fprintln(w, line)
	}

	if !valid {
		return &exitError{code: 1}
	}
	return nil
}

func cmdResolve(ctx context.Context, w io.Writer, resolver *ipmatch.Resolver, candidates []ipmatch.Candidate, allowOverride bool) error {
	ip := resolver.Resolve(ctx, candidates, allowOverride)
	if ip == "" {
		return &exitError{code: 1}
	}

	fmt.Fprintln(w, ip)
	return nil
}
