package main

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/debemdeboas/session-editor/internal/auth"
	"github.com/debemdeboas/session-editor/internal/autosave"
	"github.com/debemdeboas/session-editor/internal/cli"
	"github.com/debemdeboas/session-editor/internal/client"
	"github.com/debemdeboas/session-editor/internal/config"
	"github.com/debemdeboas/session-editor/internal/fakeapi"
	"github.com/debemdeboas/session-editor/internal/logger"
	"github.com/debemdeboas/session-editor/internal/model"
)

func main() {
	envErr := godotenv.Load()

	root := newRootCmd()
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
			fmt.Fprintln(os.Stderr, "Error loading .env file:", envErr)
		}
	}

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "session-editor",
		Short: "Edit sessions with background auto-save",
		Long: `session-editor opens a session from the persistence API in a line editor.
Edits are saved as drafts in the background once typing pauses; submit
publishes or saves the session right away.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("config", "c", config.DefaultConfigFile, "config file")

	root.AddCommand(newEditCmd(), newConfigCmd(), newSignCmd())
	return root
}

func newEditCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a session, or create one when no id is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, _ := cmd.Flags().GetString("config")
			cfg, err := loadConfig(cfgFile)
			if err != nil {
				return err
			}

			var id model.SessionID
			if len(args) == 1 {
				id = model.SessionID(strings.TrimSpace(args[0]))
			}
			return runEdit(cmd, cfg, id, offline)
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "edit against an in-memory API instead of the configured one")
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf(config.ErrLoadConfigFmt, err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(config.ErrLoadConfigFmt, err)
	}
	return cfg, nil
}

func setLoggers(l zerolog.Logger) {
	config.SetLogger(l)
	auth.SetLogger(l)
	autosave.SetLogger(l)
	cli.SetLogger(l)
	fakeapi.SetLogger(l)
}

func runEdit(cmd *cobra.Command, cfg *config.Config, id model.SessionID, offline bool) error {
	log := logger.New(cfg.Logging.Level)
	setLoggers(log)

	baseURL := cfg.API.BaseURL
	if offline {
		url, shutdown, err := startOfflineAPI(cfg.API.ResourcePath)
		if err != nil {
			return err
		}
		defer shutdown()
		baseURL = url
		cfg.Auth.Mode = config.AuthModeNone
		log.Info().Str("base_url", baseURL).Msg("Using in-memory API")
	}

	httpClient := &http.Client{}
	authorizer, err := newAuthorizer(cfg, baseURL, httpClient)
	if err != nil {
		return fmt.Errorf(config.ErrCreateAuthorizerFmt, err)
	}

	c := client.New(baseURL, cfg.API.ResourcePath,
		client.WithHTTPClient(httpClient),
		client.WithTimeout(cfg.API.Timeout),
		client.WithAuthorizer(authorizer),
		client.WithLogger(log),
	)

	editor := autosave.NewEditor(c, nil,
		autosave.WithDelay(cfg.AutoSave.Delay),
		autosave.WithAutoSave(cfg.AutoSave.Enabled),
		autosave.WithLogger(log),
	)
	defer editor.CloseAll()

	sub := editor.Hub().Subscribe("")
	defer editor.Hub().Unsubscribe(sub)

	session, err := editor.Open(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf(config.ErrOpenSessionFmt, err)
	}

	term := cli.NewTerminal(session, sub, cmd.InOrStdin(), cmd.OutOrStdout(), cli.NewStyles(cfg.UI.Theme))
	if err := term.Run(cmd.Context()); err != nil {
		if client.IsUnauthenticated(err) {
			return errors.New(config.ErrNotAuthenticated)
		}
		return err
	}
	return nil
}

func newAuthorizer(cfg *config.Config, baseURL string, httpClient *http.Client) (auth.Authorizer, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeToken:
		return auth.NewStaticToken(cfg.Auth.Header, cfg.Auth.Token), nil
	case config.AuthModeEd25519:
		pemBytes, err := auth.LoadPrivateKey(cfg.Auth.PrivateKeyPath)
		if err != nil {
			return nil, err
		}
		challengeURL := strings.TrimRight(baseURL, "/") + cfg.Auth.ChallengePath
		return auth.NewEd25519Signer(pemBytes, cfg.Auth.Header, challengeURL, httpClient)
	default:
		return auth.None{}, nil
	}
}

// startOfflineAPI serves a fakeapi.Server on a loopback port.
func startOfflineAPI(resourcePath string) (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to start offline API: %w", err)
	}

	srv := &http.Server{Handler: fakeapi.New(resourcePath).Handler()}
	go srv.Serve(ln)

	return "http://" + ln.Addr().String(), func() { srv.Close() }, nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with the default values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			return writeConfig(cmd, path, force)
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

func writeConfig(cmd *cobra.Command, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
	}

	data, err := config.ExampleYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
