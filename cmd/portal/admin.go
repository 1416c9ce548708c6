package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/denisok6893-rgb/realestate-portal/internal/admin"
	"github.com/denisok6893-rgb/realestate-portal/internal/apiclient"
	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

func newAdminCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin console (requires an ADMIN session)",
	}
	cmd.AddCommand(
		newAdminPropertiesCmd(get),
		newAdminRequestsCmd(get),
		newAdminReviewsCmd(get),
		newAdminAnalyticsCmd(get),
		newAdminAPIKeyCmd(get),
	)
	return cmd
}

// adminRun wraps a command body with the admin guard.
func adminRun(get func() *app, run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a := get()
		if err := a.requireAdmin(); err != nil {
			return err
		}
		return run(cmd, a, args)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid property id %q", s)
	}
	return id, nil
}

func loadedTable(cmd *cobra.Command, a *app) (*admin.Table, error) {
	t := admin.NewTable(a.api, a.log)
	if err := t.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return t, nil
}

func newAdminPropertiesCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{Use: "properties", Short: "Manage listings"}

	var term string
	list := &cobra.Command{
		Use:   "list",
		Short: "List properties, optionally filtered by address or city",
		RunE: adminRun(get, func(cmd *cobra.Command, a *app, _ []string) error {
			t, err := loadedTable(cmd, a)
			if err != nil {
				return err
			}
			rows := t.Search(term)
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), admin.EmptyMessage(term))
				return nil
			}
			return printJSON(cmd.OutOrStdout(), rows)
		}),
	}
	list.Flags().StringVar(&term, "search", "", "address or city substring")

	toggle := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a listing's visibility",
		Args:  cobra.ExactArgs(1),
		RunE: adminRun(get, func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := loadedTable(cmd, a)
			if err != nil {
				return err
			}
			p, err := t.ToggleVisibility(cmd.Context(), id)
			if err != nil {
				return err
			}
			a.invalidateListings(cmd.Context())
			return printJSON(cmd.OutOrStdout(), p)
		}),
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a listing (needs --yes)",
		Args:  cobra.ExactArgs(1),
		RunE: adminRun(get, func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := loadedTable(cmd, a)
			if err != nil {
				return err
			}
			if err := t.Delete(cmd.Context(), id, yes); err != nil {
				return err
			}
			a.invalidateListings(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", id)
			return nil
		}),
	}
	del.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")

	var urls []string
	images := &cobra.Command{
		Use:   "images <id> [file...]",
		Short: "Upload image files and attach them, with any --url values, to a listing",
		Args:  cobra.MinimumNArgs(1),
		RunE: adminRun(get, func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			files := make([]apiclient.File, 0, len(args)-1)
			for _, path := range args[1:] {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
				files = append(files, apiclient.File{Name: filepath.Base(path), Data: data})
			}
			t, err := loadedTable(cmd, a)
			if err != nil {
				return err
			}
			p, err := t.AttachImages(cmd.Context(), a.api, id, urls, files)
			if err != nil {
				return err
			}
			a.invalidateListings(cmd.Context())
			return printJSON(cmd.OutOrStdout(), p)
		}),
	}
	images.Flags().StringSliceVar(&urls, "url", nil, "image URL to attach as is (repeatable)")

	cmd.AddCommand(list, toggle, del, images)
	return cmd
}

func newAdminRequestsCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{Use: "requests", Short: "Viewing requests inbox"}

	var (
		status   string
		property int64
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List viewing requests",
		RunE: adminRun(get, func(cmd *cobra.Command, a *app, _ []string) error {
			f := apiclient.RequestFilter{PropertyID: property, Status: domain.RequestStatus(strings.ToLower(status))}
			reqs, err := admin.NewInbox(a.api, a.log).Requests(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), reqs)
		}),
	}
	list.Flags().StringVar(&status, "status", "", "only requests in this status")
	list.Flags().Int64Var(&property, "property", 0, "only requests for this property id")

	set := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move a request forward (contacted, scheduled, completed, cancelled)",
		Args:  cobra.ExactArgs(2),
		RunE: adminRun(get, func(cmd *cobra.Command, a *app, args []string) error {
			to := domain.RequestStatus(strings.ToLower(args[1]))
			out, err := admin.NewInbox(a.api, a.log).SetRequestStatus(cmd.Context(), args[0], to)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		}),
	}

	cmd.AddCommand(list, set)
	return cmd
}

func newAdminReviewsCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{Use: "reviews", Short: "Review moderation"}

	var (
		status   string
		property int64
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List reviews",
		RunE: adminRun(get, func(cmd *cobra.Command, a *app, _ []string) error {
			f := apiclient.ReviewFilter{PropertyID: property, Status: domain.ReviewStatus(strings.ToLower(status))}
			revs, err := admin.NewInbox(a.api, a.log).Reviews(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), revs)
		}),
	}
	list.Flags().StringVar(&status, "status", "", "only reviews in this status")
	list.Flags().Int64Var(&property, "property", 0, "only reviews for this property id")

	set := &cobra.Command{
		Use:   "status <id> <approved|rejected>",
		Short: "Approve or reject a pending review",
		Args:  cobra.ExactArgs(2),
		RunE: adminRun(get, func(cmd *cobra.Command, a *app, args []string) error {
			to := domain.ReviewStatus(strings.ToLower(args[1]))
			out, err := admin.NewInbox(a.api, a.log).SetReviewStatus(cmd.Context(), args[0], to)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		}),
	}

	reply := &cobra.Command{
		Use:   "reply <id> <text...>",
		Short: "Reply to a review",
		Args:  cobra.MinimumNArgs(2),
		RunE: adminRun(get, func(cmd *cobra.Command, a *app, args []string) error {
			out, err := admin.NewInbox(a.api, a.log).Reply(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		}),
	}

	cmd.AddCommand(list, set, reply)
	return cmd
}

func newAdminAnalyticsCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Dashboard summary",
		RunE: adminRun(get, func(cmd *cobra.Command, a *app, _ []string) error {
			sum, err := admin.Dashboard(cmd.Context(), a.api)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sum)
		}),
	}
}

// newAdminAPIKeyCmd stores the x-api-key sent with every request. An empty
// key removes the stored one, so the configured key applies again.
func newAdminAPIKeyCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "apikey [key]",
		Short: "Save or clear the admin API key",
		Args:  cobra.MaximumNArgs(1),
		RunE: adminRun(get, func(cmd *cobra.Command, a *app, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			return a.sess.SetAPIKey(key)
		}),
	}
}
