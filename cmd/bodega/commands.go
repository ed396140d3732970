package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	uitable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/five82/bodega/internal/app"
	"github.com/five82/bodega/internal/domain"
	"github.com/five82/bodega/internal/fallback"
	"github.com/five82/bodega/internal/probe"
	"github.com/five82/bodega/internal/service"
	"github.com/five82/bodega/internal/ui"
)

// errDisconnected makes the probe command exit 1 after it printed its report.
var errDisconnected = errors.New("sin conexión")

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	configPath string
	prefsPath  string
	baseURL    string
	poll       time.Duration
	logLevel   string
}

func (f *rootFlags) options() app.Options {
	return app.Options{
		ConfigPath:   f.configPath,
		PrefsPath:    f.prefsPath,
		BaseURL:      f.baseURL,
		PollInterval: f.poll,
		LogLevel:     f.logLevel,
	}
}

// services loads config and wires the object graph for a subcommand.
func (f *rootFlags) services() (*app.Services, error) {
	opts := f.options()
	cfg, err := app.LoadConfig(opts)
	if err != nil {
		return nil, err
	}
	return app.Build(cfg, opts.LogOutput)
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "bodega",
		Short: "Terminal dashboard for the distributor administration API",
		Long: `Bodega is a terminal dashboard for the distributor's administration API.

Without a subcommand it starts the TUI. The subcommands run one operation and
exit, degrading to the bundled dataset exactly like the dashboard does.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), flags.options())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.config/bodega/config.toml)")
	pf.StringVar(&flags.prefsPath, "prefs", "", "preferences file (default ~/.config/bodega/prefs.toml)")
	pf.StringVar(&flags.baseURL, "base-url", "", "API base URL, overrides base_url")
	pf.DurationVar(&flags.poll, "poll", 0, "connectivity poll interval, overrides poll_interval")
	pf.StringVar(&flags.logLevel, "log-level", "", "trace, debug, info, warn or error")

	root.AddCommand(
		newProbeCmd(flags),
		newResourceCmd(flags, "clientes", "Customers",
			func(s *app.Services) *fallback.Controller[domain.Cliente] { return s.ClientesView },
			ui.ClienteColumns(), ui.ClienteCells),
		newResourceCmd(flags, "productos", "Product catalog",
			func(s *app.Services) *fallback.Controller[domain.Producto] { return s.ProductosView },
			ui.ProductoColumns(), ui.ProductoCells),
		newResourceCmd(flags, "usuarios", "Dashboard users",
			func(s *app.Services) *fallback.Controller[domain.Usuario] { return s.UsuariosView },
			ui.UsuarioColumns(), ui.UsuarioCells),
		newLoginCmd(flags),
		newLogoutCmd(flags),
	)
	return root
}

func newProbeCmd(flags *rootFlags) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check connectivity with the API once",
		Long: `Probe the primary endpoint and the bare domain concurrently, timing the
primary endpoint once more as a diagnostic.

Exits 1 when none of them answered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := flags.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			res := svc.Prober.Probe(cmd.Context())
			printProbe(cmd.OutOrStdout(), res, verbose)
			if !res.Connected {
				return errDisconnected
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every check")
	return cmd
}

func printProbe(w io.Writer, res probe.Result, verbose bool) {
	fmt.Fprintln(w, res.Detail)
	if !verbose {
		return
	}
	for _, c := range res.Checks {
		line := fmt.Sprintf("  %-10s %-11s", c.Name, c.Outcome)
		if c.Status > 0 {
			line += fmt.Sprintf(" HTTP %d", c.Status)
		}
		if c.URL != "" {
			line += " " + c.URL
		}
		if c.Elapsed > 0 {
			line += " (" + c.Elapsed.Round(time.Millisecond).String() + ")"
		}
		fmt.Fprintln(w, line)
	}
}

func newResourceCmd[T fallback.Keyed](
	flags *rootFlags,
	name, short string,
	view func(*app.Services) *fallback.Controller[T],
	columns []uitable.Column,
	cells func(T) []string,
) *cobra.Command {
	parent := &cobra.Command{
		Use:   name,
		Short: short,
	}

	var page int
	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List " + name + ", falling back to the bundled dataset when the API is unreachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := flags.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			ctrl := view(svc)
			res, err := loadPages(cmd, ctrl, page, all)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSource(out, res.Decision, svc.Dataset.Version)
			if res.Warning != "" {
				fmt.Fprintln(out, res.Warning)
			}

			headers := make([]string, 0, len(columns)+1)
			headers = append(headers, " ")
			for _, c := range columns {
				headers = append(headers, c.Title)
			}
			t := table.New().Border(lipgloss.NormalBorder()).Headers(headers...)
			entries := ctrl.List().Visible()
			for _, e := range entries {
				mark := ""
				if e.State.Pending() {
					mark = "●"
				}
				t.Row(append([]string{mark}, cells(e.Value)...)...)
			}
			fmt.Fprintln(out, t.String())
			fmt.Fprintf(out, "%d registros", len(entries))
			if meta := res.Page.Meta; !all && meta.LastPage > 1 {
				fmt.Fprintf(out, " (página %d de %d)", meta.CurrentPage, meta.LastPage)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page to fetch")
	list.Flags().BoolVar(&all, "all", false, "walk every page")
	parent.AddCommand(list)
	return parent
}

// loadPages reads one page, or every page with all. A full read that fails
// anywhere falls back as a whole so live and bundled rows are never mixed.
func loadPages[T fallback.Keyed](cmd *cobra.Command, ctrl *fallback.Controller[T], page int, all bool) (fallback.ReadResult[T], error) {
	var res fallback.ReadResult[T]
	if all {
		res = ctrl.LoadAll(cmd.Context())
	} else {
		res = ctrl.Load(cmd.Context(), max(page, 1))
	}
	if res.Err != nil {
		return res, errors.New(service.UserMessage(res.Err))
	}
	return res, nil
}

func printSource(w io.Writer, d fallback.Decision, version string) {
	if d.Source == fallback.SourceFallback {
		fmt.Fprintf(w, "Origen: %s (%s). Datos locales versión %s\n", d.Source, d.Reason, version)
		return
	}
	fmt.Fprintf(w, "Origen: %s\n", d.Source)
}

func newLoginCmd(flags *rootFlags) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := flags.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			res := svc.Auth.Login(cmd.Context(), strings.TrimSpace(email), password)
			if !res.Success {
				return errors.New(res.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Close the session and forget the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := flags.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.Auth.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sesión cerrada.")
			return nil
		},
	}
}
