package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/bodega/internal/api"
	"github.com/five82/bodega/internal/config"
	"github.com/five82/bodega/internal/domain"
	"github.com/five82/bodega/internal/fallback"
	"github.com/five82/bodega/internal/logging"
	"github.com/five82/bodega/internal/prefs"
	"github.com/five82/bodega/internal/probe"
	"github.com/five82/bodega/internal/service"
	"github.com/five82/bodega/internal/session"
	"github.com/five82/bodega/internal/state"
	"github.com/five82/bodega/internal/ui"
)

// Options configure the Bodega application. Zero values defer to the config
// file and its defaults.
type Options struct {
	ConfigPath   string
	PrefsPath    string // empty uses default ~/.config/bodega/prefs.toml
	BaseURL      string
	PollInterval time.Duration
	LogLevel     string
	// LogOutput replaces the log file, mainly for tests.
	LogOutput io.Writer
}

// LoadConfig reads the config file and applies the command-line overrides.
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); v != "" {
		cfg.BaseURL = v
		cfg.AltURL = config.OriginOf(v)
	}
	if opts.PollInterval > 0 {
		cfg.PollInterval = opts.PollInterval
	}
	if v := strings.TrimSpace(opts.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	return cfg, nil
}

// Services is the wired object graph shared by the TUI and the subcommands.
type Services struct {
	Config   config.Config
	Log      zerolog.Logger
	Client   *api.Client
	Sessions *session.Store
	Auth     *service.Auth
	Dataset  fallback.Dataset
	Prober   *probe.Prober

	Clientes  *service.Clientes
	Productos *service.Productos
	Usuarios  *service.Usuarios

	ClientesView  *fallback.Controller[domain.Cliente]
	ProductosView *fallback.Controller[domain.Producto]
	UsuariosView  *fallback.Controller[domain.Usuario]

	closeLog func() error
}

// Build wires every component from cfg. Callers must Close the result.
func Build(cfg config.Config, logOutput io.Writer) (*Services, error) {
	log, closeLog, err := openLogger(cfg, logOutput)
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(cfg.SessionPath)
	client, err := api.NewClient(cfg.BaseURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithTokenSource(sessions),
		api.WithLogger(log),
	)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("init api client: %w", err)
	}

	dataset := fallback.Bundled()
	clientes := service.NewClientes(client, log)
	productos := service.NewProductos(client, log)
	usuarios := service.NewUsuarios(client, log)

	s := &Services{
		Config:    cfg,
		Log:       log,
		Client:    client,
		Sessions:  sessions,
		Auth:      service.NewAuth(client, sessions, log),
		Dataset:   dataset,
		Clientes:  clientes,
		Productos: productos,
		Usuarios:  usuarios,
		Prober: probe.New(client, probe.Targets{
			Primary:    cfg.PrimaryURL(),
			Alternate:  cfg.AltURL,
			Diagnostic: cfg.PrimaryURL(),
		}, cfg.ProbeTimeout, log),
		closeLog: closeLog,
	}
	s.ClientesView = fallback.NewController[domain.Cliente]("clientes", clientes, clientes.FromDataset(dataset.Records("clientes")), log)
	s.ProductosView = fallback.NewController[domain.Producto]("productos", productos, productos.FromDataset(dataset.Records("productos")), log)
	s.UsuariosView = fallback.NewController[domain.Usuario]("usuarios", usuarios, usuarios.FromDataset(dataset.Records("usuarios")), log)

	log.Info().
		Str("base_url", cfg.BaseURL).
		Str("dataset_version", dataset.Version).
		Dur("poll_interval", cfg.PollInterval).
		Msg("bodega initialized")
	return s, nil
}

// Close releases the log file.
func (s *Services) Close() error {
	if s == nil || s.closeLog == nil {
		return nil
	}
	return s.closeLog()
}

// openLogger writes JSON logs to the configured file; the terminal belongs
// to the UI or to command output.
func openLogger(cfg config.Config, out io.Writer) (zerolog.Logger, func() error, error) {
	noop := func() error { return nil }
	if out != nil {
		return logging.New(logging.Config{Level: cfg.LogLevel, Output: out}), noop, nil
	}
	if cfg.LogFile == "" {
		return zerolog.Nop(), noop, nil
	}
	file, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return zerolog.Nop(), noop, err
	}
	return logging.New(logging.Config{Level: cfg.LogLevel, Output: file}), file.Close, nil
}

// Run boots the Bodega TUI until the context is cancelled or the operator
// quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}
	svc, err := Build(cfg, opts.LogOutput)
	if err != nil {
		return err
	}
	defer svc.Close()

	userPrefs := prefs.Load(opts.PrefsPath)

	store := &state.Store{}
	poller := NewPoller(svc.Prober, store, cfg.PollInterval, svc.Log)
	poller.Start(ctx)
	defer poller.Stop()

	err = ui.Run(ui.Options{
		Context:   ctx,
		Store:     store,
		Refresher: poller,
		Resources: []ui.Resource{
			ui.ClientesResource(svc.ClientesView),
			ui.ProductosResource(svc.ProductosView),
			ui.UsuariosResource(svc.UsuariosView),
		},
		BaseURL:        cfg.BaseURL,
		DatasetVersion: svc.Dataset.Version,
		LogPath:        cfg.LogFile,
		ThemeName:      userPrefs.Theme,
		PrefsPath:      opts.PrefsPath,
		Tab:            userPrefs.Tab,
	})
	if err != nil {
		svc.Log.Error().Err(err).Msg("ui exited")
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
