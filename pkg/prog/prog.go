// Package prog provides the entry point to loam. It builds the command line
// and maps errors returned by subcommands to exit codes.
package prog

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"loam.dev/pkg/buildinfo"
	"loam.dev/pkg/cmd"
	"loam.dev/pkg/config"
	"loam.dev/pkg/demo"
	"loam.dev/pkg/errutil"
	"loam.dev/pkg/logutil"
	"loam.dev/pkg/pprof"
	"loam.dev/pkg/shell"
)

var logger = logutil.GetLogger("[prog] ")

// Flags keeps command-line flags.
type Flags struct {
	Config, Log, CPUProfile, AllocsProfile string

	Debug bool

	StartURL, Store, DB, Inspector string

	JSON, Verbose bool

	stopProfiles func()
}

// Run parses command-line flags and runs the requested subcommand. It returns
// the exit status of the program.
func Run(fds [3]*os.File, args []string) int {
	f := &Flags{}
	root := newRootCommand(fds, f)
	root.SetArgs(args[1:])
	root.SetIn(fds[0])
	root.SetOut(fds[1])
	root.SetErr(fds[2])

	c, err := root.ExecuteC()
	if f.stopProfiles != nil {
		f.stopProfiles()
	}
	return exitCode(fds[2], err, c.UsageString)
}

func exitCode(stderr *os.File, err error, usage func() string) int {
	if err == nil {
		return 0
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(stderr, msg)
	}
	var badUsage badUsageError
	var exit exitError
	switch {
	case errors.As(err, &badUsage):
		fmt.Fprint(stderr, usage())
	case errors.As(err, &exit):
		return exit.exit
	}
	return 2
}

func newRootCommand(fds [3]*os.File, f *Flags) *cobra.Command {
	root := &cobra.Command{
		Use:   "loam",
		Short: "Run effect-driven terminal applications",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return BadUsage(fmt.Sprintf("unknown command %q", args[0]))
			}
			return nil
		},
		RunE:          func(c *cobra.Command, _ []string) error { return c.Help() },
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			// Handle flags common to all subcommands.
			f.stopProfiles = pprof.Profiles{CPU: f.CPUProfile, Allocs: f.AllocsProfile}.Start(fds[2])
			if f.Log != "" {
				if err := logutil.SetOutputFile(f.Log); err != nil {
					fmt.Fprintln(fds[2], err)
				}
			}
			logutil.SetDebug(f.Debug)
			return nil
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return BadUsage(err.Error())
	})

	pf := root.PersistentFlags()
	pf.StringVar(&f.Config, "config", "", "path to the configuration file")
	pf.StringVar(&f.Log, "log", "", "a file to write the debug log to")
	pf.StringVar(&f.CPUProfile, "cpuprofile", "", "write cpu profile to file")
	pf.StringVar(&f.AllocsProfile, "allocsprofile", "", "write memory allocation profile to file")
	pf.BoolVar(&f.Debug, "debug", false, "log every message and run the inspector")

	root.AddCommand(
		newRunCommand(fds, f),
		newConfigCommand(fds, f),
		newVersionCommand(fds, f),
	)
	return root
}

// Flags shared by the commands that need a configuration.
func addConfigFlags(c *cobra.Command, f *Flags) {
	c.Flags().StringVar(&f.StartURL, "start-url", "", "URL of the first page")
	c.Flags().StringVar(&f.Store, "store", "", "storage backend: memory, bolt or redis")
	c.Flags().StringVar(&f.DB, "db", "", "path to the database of the bolt backend")
	c.Flags().StringVar(&f.Inspector, "inspector", "", "address of the inspector")
}

// Loads the configuration file and applies the flags given on the command
// line on top of it.
func loadConfig(c *cobra.Command, f *Flags) (config.Config, error) {
	path := f.Config
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			logger.Warn().Err(err).Msg("no default config path")
		}
	}
	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return cfg, err
		}
	}
	flags := c.Flags()
	if flags.Changed("debug") {
		cfg.Debug = f.Debug
	}
	if flags.Changed("log") {
		cfg.Log = f.Log
	}
	if flags.Changed("start-url") {
		cfg.StartURL = f.StartURL
	}
	if flags.Changed("store") {
		cfg.Storage.Backend = f.Store
	}
	if flags.Changed("db") {
		cfg.Storage.Path = f.DB
	}
	if flags.Changed("inspector") {
		cfg.Inspector.Addr = f.Inspector
	}
	if err := cfg.Validate(); err != nil {
		return cfg, BadUsage(err.Error())
	}
	return cfg, nil
}

func newRunCommand(fds [3]*os.File, f *Flags) *cobra.Command {
	c := &cobra.Command{
		Use:   "run [url]",
		Short: "Run the demo app in the terminal",
		Args: func(c *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(c, args); err != nil {
				return BadUsage(err.Error())
			}
			return nil
		},
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig(c, f)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.StartURL = args[0]
			}
			if cfg.Log != "" && !c.Flags().Changed("log") {
				if err := logutil.SetOutputFile(cfg.Log); err != nil {
					fmt.Fprintln(fds[2], "Warning:", err)
				}
			}
			logutil.SetDebug(cfg.Debug)
			return runDemo(c, fds, cfg)
		},
	}
	addConfigFlags(c, f)
	return c
}

func runDemo(c *cobra.Command, fds [3]*os.File, cfg config.Config) (err error) {
	ctx := c.Context()
	st, err := cfg.OpenStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			err = errutil.Multi(err, fmt.Errorf("close store: %w", cerr))
		}
	}()

	app, err := demo.New(demo.Shared{
		Greeting:     cfg.Demo.Greeting,
		GreetingURL:  cfg.Demo.GreetingURL,
		Latency:      cfg.Demo.Latency,
		ToastTimeout: cfg.Demo.ToastTimeout,
	})
	if err != nil {
		return err
	}
	logger.Info().Str("backend", cfg.Storage.Backend).Str("url", cfg.StartURL).Msg("running demo")
	return shell.Run(ctx, fds, shell.Config[demo.Route, demo.Shared]{
		App:      app,
		StartURL: cfg.StartURL,
		Executor: cmd.Executor{
			Store:   st,
			Client:  &http.Client{},
			Limiter: cfg.Limiter(),
			Timeout: cfg.HTTP.Timeout,
		},
		Debug:        cfg.Debug,
		Inspector:    cfg.Inspector.Addr,
		ToastTimeout: cfg.Demo.ToastTimeout,
	})
}

func newConfigCommand(fds [3]*os.File, f *Flags) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := loadConfig(c, f)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = fds[1].Write(data)
			return err
		},
	}
	addConfigFlags(c, f)
	return c
}

func newVersionCommand(fds [3]*os.File, f *Flags) *cobra.Command {
	c := &cobra.Command{
		Use:   "version",
		Short: "Show the version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			v := buildinfo.Value
			switch {
			case f.JSON:
				data, err := json.Marshal(v)
				if err != nil {
					return err
				}
				fmt.Fprintf(fds[1], "%s\n", data)
			case f.Verbose:
				fmt.Fprintln(fds[1], "Version:", v.Version)
				fmt.Fprintln(fds[1], "Go version:", v.GoVersion)
				fmt.Fprintln(fds[1], "Reproducible build:", v.Reproducible)
			default:
				fmt.Fprintln(fds[1], v.Version)
			}
			return nil
		},
	}
	c.Flags().BoolVar(&f.JSON, "json", false, "show output in JSON")
	c.Flags().BoolVar(&f.Verbose, "verbose", false, "show the full build information")
	return c
}

// BadUsage returns a special error that may be returned by a subcommand. It
// causes Run to print out a message, the usage information and exit with 2.
func BadUsage(msg string) error { return badUsageError{msg} }

type badUsageError struct{ msg string }

func (e badUsageError) Error() string { return e.msg }

// Exit returns a special error that may be returned by a subcommand. It
// causes Run to exit with the given code without printing any error
// messages. Exit(0) returns nil.
func Exit(exit int) error {
	if exit == 0 {
		return nil
	}
	return exitError{exit}
}

type exitError struct{ exit int }

func (e exitError) Error() string { return "" }
