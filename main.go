package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/nstehr/ares/ares-core/agent"
	"github.com/nstehr/ares/ares-core/config"
	"github.com/nstehr/ares/ares-core/focus"
	"github.com/nstehr/ares/ares-core/ipc"
	"github.com/nstehr/ares/ares-core/journal"
	"github.com/nstehr/ares/ares-core/posture"
	"github.com/nstehr/ares/ares-core/rules"
	"github.com/nstehr/ares/ares-core/typetable"
)

const banner = `
 █████╗ ██████╗ ███████╗███████╗
██╔══██╗██╔══██╗██╔════╝██╔════╝
███████║██████╔╝█████╗  ███████╗
██╔══██║██╔══██╗██╔══╝  ╚════██║
██║  ██║██║  ██║███████╗███████║
╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚══════╝

Focus-Fire Target Assignment`

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	slog.Info("starting ares", "advisor", cfg.Advisor.Kind)

	opts, closeJournal, err := buildOptions(cfg)
	if err != nil {
		slog.Error("failed to initialise", "error", err)
		os.Exit(1)
	}
	defer closeJournal()

	socketPath := cfg.SocketPath

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(socketPath); err != nil {
		slog.Error("failed to clean up socket", "path", socketPath, "error", err)
		os.Exit(1)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		slog.Error("failed to listen on socket", "path", socketPath, "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	defer os.Remove(socketPath)

	slog.Info("listening on domain socket", "path", socketPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RulesFile != "" {
		go reloadRules(ctx, make(chan os.Signal, 1), cfg.RulesFile, opts.Rules)
	}

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			slog.Info("new connection accepted")
			go handleConn(ctx, conn, opts)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
}

// buildOptions assembles the shared, read-only collaborators every
// connection's agent uses. The returned func flushes the journal.
func buildOptions(cfg config.Config) (agent.Options, func(), error) {
	noop := func() {}

	table, err := typetable.Default()
	if cfg.TypeTable != "" {
		table, err = typetable.Load(cfg.TypeTable)
	}
	if err != nil {
		return agent.Options{}, noop, fmt.Errorf("type table: %w", err)
	}
	slog.Info("type table loaded", "version", table.Version(), "kinds", table.Len())

	fe, err := focus.New(table, cfg.Focus)
	if err != nil {
		return agent.Options{}, noop, err
	}

	ruleSet := rules.DefaultRules()
	if cfg.RulesFile != "" {
		if ruleSet, err = rules.LoadFile(cfg.RulesFile); err != nil {
			return agent.Options{}, noop, err
		}
	}
	re, err := rules.NewEngine(ruleSet)
	if err != nil {
		return agent.Options{}, noop, err
	}
	slog.Info("rules loaded", "rules", re.Names())

	opts := agent.Options{
		Table:      table,
		Focus:      fe,
		Rules:      re,
		Interval:   cfg.Advisor.Interval,
		BaseRadius: cfg.Engage.BaseRadius,
	}

	switch cfg.Advisor.Kind {
	case config.AdvisorModel:
		adv, err := posture.NewOllamaAdvisor(cfg.Advisor.Host, cfg.Advisor.Model, cfg.Advisor.Timeout)
		if err != nil {
			return agent.Options{}, noop, err
		}
		opts.Advisor = adv
		slog.Info("model advisor enabled", "model", cfg.Advisor.Model, "interval", cfg.Advisor.Interval)
	default:
		opts.Advisor = rules.NewAdvisor(re)
		opts.Inline = true
	}

	if !cfg.Journal.Enabled {
		return opts, noop, nil
	}
	j, err := journal.Open(cfg.Journal.Path, cfg.Journal.Buffer)
	if err != nil {
		return agent.Options{}, noop, err
	}
	opts.Journal = j
	slog.Info("journal enabled", "path", cfg.Journal.Path)
	return opts, func() {
		if err := j.Close(); err != nil {
			slog.Error("failed to close journal", "error", err)
		}
		if n := j.Dropped(); n > 0 {
			slog.Warn("journal dropped records", "count", n)
		}
	}, nil
}

// reloadRules swaps in the rules file on every SIGHUP delivered to hup until
// ctx ends. A file that fails to load or compile leaves the running rules in
// place.
func reloadRules(ctx context.Context, hup chan os.Signal, path string, re *rules.Engine) {
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			ruleSet, err := rules.LoadFile(path)
			if err == nil {
				err = re.Swap(ruleSet)
			}
			if err != nil {
				slog.Error("rules reload failed", "path", path, "error", err)
			}
		}
	}
}

func handleConn(ctx context.Context, conn net.Conn, opts agent.Options) {
	c := ipc.NewConnection(conn)
	a, err := agent.New(c, opts)
	if err != nil {
		slog.Error("failed to create agent", "error", err)
		conn.Close()
		return
	}
	a.Run(ctx)
}
