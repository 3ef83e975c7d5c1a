package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/compresr/gateway-hooks/internal/alerting"
	"github.com/compresr/gateway-hooks/internal/config"
	"github.com/compresr/gateway-hooks/internal/directive"
	"github.com/compresr/gateway-hooks/internal/gatewaystatus"
	"github.com/compresr/gateway-hooks/internal/hooks"
	"github.com/compresr/gateway-hooks/internal/monitoring"
	"github.com/compresr/gateway-hooks/internal/server"
	"github.com/compresr/gateway-hooks/internal/transport"
	"github.com/compresr/gateway-hooks/internal/utils"
)

// app holds everything serve wires together.
type app struct {
	cfg       *config.Config
	pool      *transport.Pool
	precall   *hooks.PreCall
	failure   *hooks.FailureHook
	telemetry *monitoring.Tracker
	status    *gatewaystatus.Client
	channels  []string
}

// buildApp wires hooks, channels and telemetry from cfg.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	telemetry, err := monitoring.NewTracker(monitoring.AlertLogConfig{
		Path:        cfg.Monitoring.AlertLogPath,
		LogToStdout: cfg.Monitoring.LogToStdout,
	})
	if err != nil {
		return nil, fmt.Errorf("alert log: %w", err)
	}

	attacher, err := hooks.NewAttacher(cfg.Proxy.AttachMode)
	if err != nil {
		return nil, err
	}

	pool := transport.NewPool(transport.NewFactory(transport.OptionsFromConfig(cfg.Proxy)))
	precall := hooks.NewPreCall(
		directive.NewResolver(cfg.Proxy.DirectiveKey),
		pool,
		hooks.WithAttacher(attacher),
		hooks.WithPreCallTelemetry(telemetry),
		hooks.WithMaintenance(cfg.Gateway.Maintenance),
	)

	httpClient := &http.Client{Timeout: cfg.Alerting.NotifyTimeout}
	opts := []hooks.FailureHookOption{
		hooks.WithNotifyTimeout(cfg.Alerting.NotifyTimeout),
		hooks.WithFailureTelemetry(telemetry),
	}
	var (
		channels []string
		status   *gatewaystatus.Client
	)

	webhook := alerting.NewWebhookNotifier(cfg.Alerting.Webhook.URL, httpClient)
	if cfg.WebhookEnabled() {
		opts = append(opts, hooks.WithNotifier(webhook))
		channels = append(channels, webhook.Name())
	}
	if cfg.EnrichmentEnabled() {
		// The health route checks every deployment, so it gets its own
		// client without the notify timeout.
		status = gatewaystatus.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.MasterKey,
			gatewaystatus.WithStatusPath(cfg.Gateway.StatusPath),
		)
		opts = append(opts, hooks.WithEnricher(alerting.NewEnricher(status, webhook, cfg.Alerting.StatusDelay)))
		channels = append(channels, "webhook_status_report")
	}
	if cfg.EmailEnabled() {
		email := alerting.NewEmailNotifier(
			cfg.Alerting.Email.APIURL,
			cfg.Alerting.Email.APIKey,
			cfg.Alerting.Email.From,
			cfg.Alerting.Email.To,
			httpClient,
		)
		opts = append(opts, hooks.WithNotifier(email))
		channels = append(channels, email.Name())
	}

	failure := hooks.NewFailureHook(cfg.Alerting.Cooldown, alerting.NewRunner(ctx), opts...)

	return &app{
		cfg:       cfg,
		pool:      pool,
		precall:   precall,
		failure:   failure,
		telemetry: telemetry,
		status:    status,
		channels:  channels,
	}, nil
}

func runServeCommand(args []string) int {
	var (
		configFlag string
		addrFlag   string
		debugFlag  bool
	)

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h", "--help":
			printServeHelp()
			return 0
		case "-c", "--config":
			if i+1 >= len(args) {
				printError("--config requires a value")
				return 1
			}
			configFlag = args[i+1]
			i++
		case "-a", "--addr":
			if i+1 >= len(args) {
				printError("--addr requires a value")
				return 1
			}
			addrFlag = args[i+1]
			i++
		case "-d", "--debug":
			debugFlag = true
		default:
			printError(fmt.Sprintf("unknown option: %s", args[i]))
			return 1
		}
	}

	loadEnvFiles()

	cfg, err := config.Load(configFlag)
	if err != nil {
		printError(err.Error())
		return 1
	}
	if addrFlag != "" {
		cfg.Server.Addr = addrFlag
	}
	setupLogging(cfg.Logging, debugFlag)
	for _, w := range cfg.Warnings() {
		log.Warn().Str("detail", w).Msg("config: alert channel partially configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		printError(err.Error())
		return 1
	}
	defer func() { _ = a.telemetry.Close() }()

	log.Info().
		Str("addr", cfg.Server.Addr).
		Str("attach_mode", cfg.Proxy.AttachMode).
		Str("directive_key", cfg.Proxy.DirectiveKey).
		Bool("maintenance", cfg.Gateway.Maintenance).
		Str("webhook_mode", cfg.Alerting.Webhook.Mode).
		Strs("alert_channels", a.channels).
		Dur("alert_cooldown", cfg.Alerting.Cooldown).
		Str("master_key", utils.MaskKey(cfg.Gateway.MasterKey)).
		Msg("serve: starting hook sidecar")

	srv := server.New(a.precall, a.failure,
		server.WithTransports(a.pool),
		server.WithVersion(Version),
	)
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("serve: server failed")
		return 1
	}
	return 0
}

func printServeHelp() {
	fmt.Println("Run the hook sidecar")
	fmt.Println()
	fmt.Println("Usage: gateway-hooks serve [OPTIONS]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -c, --config FILE    YAML config (optional, env overrides apply)")
	fmt.Printf("  -a, --addr ADDR      Listen address (default: %s)\n", config.DefaultListenAddr)
	fmt.Println("  -d, --debug          Enable debug logging")
	fmt.Println("  -h, --help           Show this help")
	fmt.Println()
	fmt.Println("Environment:")
	for _, env := range []string{
		config.EnvSlackWebhookURL, config.EnvMasterKey, config.EnvGatewayBaseURL,
		config.EnvEmailAPIKey, config.EnvEmailFrom, config.EnvEmailTo,
		config.EnvMaintenanceMode, config.EnvLogLevel,
	} {
		fmt.Fprintf(os.Stdout, "  %s\n", env)
	}
}
