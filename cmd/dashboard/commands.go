package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ridersklan/preorderflow/internal/dashboard"
	"github.com/ridersklan/preorderflow/internal/orders"
)

func newOrdersCmd(a *app) *cobra.Command {
	var status, search string
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List server and locally cached orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.dash.Load(cmd.Context())
			if err != nil {
				return err
			}
			printView(cmd.OutOrStdout(), view, orders.Filter(view.Orders, status, search))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "all", "only orders with this status (preordered, added, paid or all)")
	cmd.Flags().StringVar(&search, "search", "", "match customer, email, phone, id or item name")
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Count ordered items by product, gender and size",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.dash.Load(cmd.Context())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload the order list periodically",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			dashboard.Watch(cmd.Context(), interval, func(ctx context.Context) {
				view, err := a.dash.Load(ctx)
				if err != nil {
					a.log.Error("reload failed", zap.Error(err))
					return
				}
				printView(out, view, view.Orders)
			})
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", dashboard.DefaultRefresh, "time between reloads")
	return cmd
}

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Upload locally cached orders to the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.dash.SyncLocalOrders(cmd.Context())
			if err != nil {
				return err
			}
			printSync(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newClearDeletedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-deleted",
		Short: "Show previously hidden server orders again",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.dash.ClearDeletedServerOrders(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted server orders cleared.")
			return nil
		},
	}
}

func newTokenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print the bearer token sent to the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.client.Token())
			return nil
		},
	}
}

func newSetStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <order-id> <status>",
		Short: "Change the status of an order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.dash.UpdateStatus(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s is now %s.\n", args[0], args[1])
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <order-id>",
		Short: "Delete an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.dash.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s deleted.\n", args[0])
			return nil
		},
	}
}

func newAddLocalCmd(a *app) *cobra.Command {
	var o orders.Order
	var items []string
	cmd := &cobra.Command{
		Use:   "add-local",
		Short: "Record an order in the local cache only",
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.Customer == "" || o.Email == "" {
				return errors.New("--customer and --email are required")
			}
			parsed, err := parseItems(items)
			if err != nil {
				return err
			}
			o.Items = parsed
			saved, err := a.dash.AddLocal(o)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved local order %s.\n", saved.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&o.Customer, "customer", "", "customer name")
	cmd.Flags().StringVar(&o.Email, "email", "", "customer email")
	cmd.Flags().StringVar(&o.Phone, "phone", "", "customer phone")
	cmd.Flags().StringArrayVar(&items, "item", nil, "item as name/gender/size, repeatable")
	return cmd
}
