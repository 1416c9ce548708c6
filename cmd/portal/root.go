package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/denisok6893-rgb/realestate-portal/internal/config"
	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
	"github.com/denisok6893-rgb/realestate-portal/internal/listing"
	"github.com/denisok6893-rgb/realestate-portal/internal/storage"
)

// cli owns the app built for the running command. close must run after
// Execute even when the command failed, since cobra skips post-run hooks then.
type cli struct {
	cfgFile string
	app     *app
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}
	root := &cobra.Command{
		Use:           "portal",
		Short:         "Real-estate portal: listing pages, session and admin console",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.cfgFile)
			if err != nil {
				return err
			}
			c.app, err = newApp(cfg, cmd.ErrOrStderr())
			return err
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (yaml, json or toml)")

	get := func() *app { return c.app }
	root.AddCommand(
		newServeCmd(get),
		newLoginCmd(get),
		newLogoutCmd(get),
		newWhoamiCmd(get),
		newSearchCmd(get),
		newAdminCmd(get),
	)
	return root, c
}

// run executes one command line and always releases the app.
func run(root *cobra.Command, c *cli) error {
	err := root.Execute()
	if cerr := c.close(); err == nil {
		err = cerr
	}
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newServeCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the portal HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, closeCache := a.listingCache(ctx)
			defer closeCache()

			srv := &http.Server{
				Addr:              a.cfg.Server.Address,
				Handler:           a.server(c).Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errc := make(chan error, 1)
			go func() {
				a.log.Info().Str("addr", srv.Addr).Str("api", a.cfg.API.BaseURL).Msg("portal listening")
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				return fmt.Errorf("serve: %w", err)
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("shutdown: %w", err)
			}
			a.log.Info().Msg("portal stopped")
			return nil
		},
	}
}

func newLoginCmd(get func() *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if !a.sess.Login(cmd.Context(), email, password) {
				return fmt.Errorf("login failed: %w", a.sess.LastError())
			}
			return printJSON(cmd.OutOrStdout(), a.sess.User())
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(get func() *app) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if remote {
				a.sess.RemoteLogout(cmd.Context())
			} else {
				a.sess.Logout()
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.sess.State())
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "also invalidate the token on the server")
	return cmd
}

func newWhoamiCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user decoded from the stored token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := get().sess.User()
			if u == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
				return nil
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
}

// newSearchCmd runs the listing pipeline from the command line. The query
// uses the same parameters as the /search page, e.g. "location=lekki&sortBy=price_low".
func newSearchCmd(get func() *app) *cobra.Command {
	var (
		query string
		file  string
		home  bool
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Filter, sort and paginate listings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			values, err := url.ParseQuery(query)
			if err != nil {
				return fmt.Errorf("parse query: %w", err)
			}
			params := listing.ParseParams(values)

			var props []domain.Property
			if file != "" {
				props, err = storage.LoadPropertiesFromFile(file)
			} else {
				props, err = a.api.ListProperties(cmd.Context())
			}
			if err != nil {
				return err
			}

			res := a.pipeline.Search(props, params)
			if home {
				res = a.pipeline.HomeFeed(props, params)
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "listing parameters in URL query form")
	cmd.Flags().StringVar(&file, "file", "", "read listings from a JSON file instead of the API")
	cmd.Flags().BoolVar(&home, "home", false, "use home feed rules (no visibility check, fallback to all)")
	return cmd
}
