package main

import (
	"context"
	"encoding/json"
	"flag"
	"github.com/joho/godotenv"
	"github.com/zhouchenh/rdapct/internal/cache"
	"github.com/zhouchenh/rdapct/internal/common"
	"github.com/zhouchenh/rdapct/internal/config"
	"github.com/zhouchenh/rdapct/internal/core"
	"github.com/zhouchenh/rdapct/internal/dataset"
	_ "github.com/zhouchenh/rdapct/internal/features"
	"github.com/zhouchenh/rdapct/internal/listeners/servers/http/api/server"
	"github.com/zhouchenh/rdapct/internal/logger"
	"github.com/zhouchenh/rdapct/internal/metrics"
	"github.com/zhouchenh/rdapct/internal/network/resolver"
	"github.com/zhouchenh/rdapct/internal/querycontext"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

const (
	exitOK = iota
	exitBadInput
	exitNonConformant
)

var (
	configFilePath = flag.String("config", "", "Specify a config file")
	version        = flag.Bool("version", false, "Print version information and exit")
	test           = flag.Bool("test", false, "Test the config file and exit")
	uri            = flag.String("uri", "", "Override the query URI of the config file")
	logLevel       = flag.String("log", "", "Log level: trace, debug, info, warning, error")
	logFormat      = flag.String("log-format", "", "Log format: console, json")
	listen         = flag.String("listen", "", "Serve the validation API on ip[:port] instead of running once")
	apiPath        = flag.String("path", "/api", "Path prefix of the validation API")
)

func printVersion() {
	version := core.VersionStatement()
	for _, s := range version {
		common.Output(s)
	}
}

func open(filePath string) (*os.File, error) {
	switch filePath {
	case "":
		if env := os.Getenv(core.EnvKey("config", "file", "path")); env != "" {
			if file, err := os.Open(env); err == nil {
				return file, err
			}
		}
		if env := os.Getenv(core.EnvKey("config", "dir", "path")); env != "" {
			if file, err := os.Open(filepath.Join(env, "config.json")); err == nil {
				return file, err
			}
		}
		return os.Open("config.json")
	case "-":
		return os.Stdin, nil
	default:
		return core.OpenFile(filePath)
	}
}

// env resolves configuration overrides: the -uri flag first, then the
// environment.
func env(key string) string {
	if key == config.EnvURI && *uri != "" {
		return *uri
	}
	return os.Getenv(core.EnvKey(key))
}

func setLogLevel() {
	name := *logLevel
	if name == "" {
		name = os.Getenv(core.EnvKey("log", "level"))
	}
	if name == "" {
		return
	}
	level, ok := logger.ParseLevel(name)
	if !ok {
		common.ErrOutput(common.Concatenate("logger: Unknown log level: ", name))
		os.Exit(exitBadInput)
	}
	logger.SetLogLevel(level)
}

func setLogFormat() {
	name := *logFormat
	if name == "" {
		name = os.Getenv(core.EnvKey("log", "format"))
	}
	if name == "" {
		return
	}
	format, ok := logger.ParseFormat(name)
	if !ok {
		common.ErrOutput(common.Concatenate("logger: Unknown log format: ", name))
		os.Exit(exitBadInput)
	}
	logger.SetFormat(format)
}

func loadConfig() *config.Config {
	var reader io.Reader
	file, err := open(*configFilePath)
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		reader = file
	case *configFilePath == "" && env(config.EnvURI) != "":
		reader = strings.NewReader("{}")
	default:
		common.ErrOutput(common.Concatenate("config: Failed to open file: ", err))
		os.Exit(exitBadInput)
	}
	cfg, err := config.LoadConfig(reader, env)
	if err != nil {
		common.ErrOutput(common.Concatenate("config: Failed to load config: ", err))
		os.Exit(exitBadInput)
	}
	return cfg
}

func newValidator(ds dataset.Service) *core.Validator {
	r, err := resolver.New(resolver.Options{})
	if err != nil {
		common.ErrOutput(err)
		os.Exit(exitBadInput)
	}
	return &core.Validator{
		Shared: querycontext.Shared{
			Cache:    cache.New(cache.DefaultMaxEntries, cache.DefaultMaxEntries),
			Resolver: r,
			Dataset:  ds,
		},
	}
}

func serve(ctx context.Context) {
	s, err := server.ParseListen(*listen)
	if err != nil {
		common.ErrOutput(err)
		os.Exit(exitBadInput)
	}
	s.Path = *apiPath
	v := newValidator(dataset.NewStatic(nil))
	v.Metrics = metrics.New()
	v.Metrics.WatchCache(v.Shared.Cache)
	v.Sessions = querycontext.NewSessions()
	s.Serve(ctx, v, common.ErrOutputErrorHandler)
}

// run validates the config URI, or every URI given as argument with the
// config as template, and prints the reports.
func run(ctx context.Context, cfg *config.Config) int {
	cfgs := []*config.Config{cfg}
	if flag.NArg() > 0 {
		cfgs = cfgs[:0]
		for _, arg := range flag.Args() {
			target := arg
			cfgs = append(cfgs, cfg.Clone(func(c *config.Config) {
				c.URI = target
			}))
		}
	}
	v := newValidator(dataset.NewStatic(cfg.Datasets))
	outcomes := v.RunBatch(ctx, cfgs, cfg.Parallelism)

	code := exitOK
	reports := make([]core.Report, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Context == nil {
			common.ErrOutput(o.Err)
			code = exitBadInput
			continue
		}
		if o.Err != nil {
			common.ErrOutput(o.Err)
		}
		report := core.NewReport(o.Context)
		if !report.OK() && code == exitOK {
			code = exitNonConformant
		}
		reports = append(reports, report)
	}

	encoder := json.NewEncoder(logger.Output())
	encoder.SetIndent("", "  ")
	var document interface{} = reports
	if len(cfgs) == 1 && len(reports) == 1 {
		document = reports[0]
	}
	if len(reports) > 0 {
		if err := encoder.Encode(document); err != nil {
			common.ErrOutput(err)
		}
	}
	return code
}

func main() {
	flag.Parse()
	if *version {
		printVersion()
		return
	}
	if err := godotenv.Load(); err == nil {
		logger.Debug().Msg("loaded .env")
	}
	setLogLevel()
	setLogFormat()
	for _, s := range core.VersionStatement() {
		logger.Info().Msg(s)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *listen != "" {
		serve(ctx)
		return
	}

	envConfigDirPath := core.EnvKey("config", "dir", "path")
	if _, isSet := os.LookupEnv(envConfigDirPath); !isSet {
		if executablePath, err := os.Executable(); err == nil {
			_ = os.Setenv(envConfigDirPath, filepath.Dir(executablePath))
		}
	}
	cfg := loadConfig()
	if *test {
		common.Output("config: Syntax is OK")
		os.Exit(exitOK)
	}
	code := run(ctx, cfg)
	stop()
	os.Exit(code)
}
