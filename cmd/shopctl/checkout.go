package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/Skotchmaster/storefront/internal/orders"
)

func runCheckout(ctx context.Context, a *app, _ []string) error {
	sess, err := a.sf.Checkout.Start(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Session: %s\n", sess.ID)
	return nil
}

func runComplete(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("complete")
	pay := fs.Bool("pay", false, "confirm payment on the simulator first")
	id, err := oneArg(fs, args, "SESSION_ID")
	if err != nil {
		return err
	}
	if *pay {
		if _, err := a.sf.API.PaySession(ctx, id); err != nil {
			return err
		}
	}
	order, err := a.sf.Checkout.Complete(ctx, id)
	if order != nil {
		fmt.Fprintf(a.out, "Order %s placed: %s, total %s\n", order.ID, order.Status, order.Total.StringFixed(2))
	}
	return err
}

func runCancel(ctx context.Context, a *app, args []string) error {
	id, err := oneArg(newFlagSet("cancel"), args, "SESSION_ID")
	if err != nil {
		return err
	}
	if _, err := a.sf.Checkout.Cancel(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Checkout cancelled; your cart was kept")
	return nil
}

func runOrders(ctx context.Context, a *app, _ []string) error {
	list, err := a.sf.Orders.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTOTAL\tCREATED")
	for _, o := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", o.ID, o.Status, o.Total.StringFixed(2), o.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func runTrack(ctx context.Context, a *app, args []string) error {
	id, err := oneArg(newFlagSet("track"), args, "ORDER_ID")
	if err != nil {
		return err
	}
	tr, err := a.sf.Orders.Status(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Order %s: %s\n", tr.OrderID, tr.Status)
	for _, h := range tr.History {
		fmt.Fprintf(a.out, "  %s  %s\n", h.At.Format("2006-01-02 15:04"), h.Status)
	}
	return nil
}

func runAdvance(ctx context.Context, a *app, args []string) error {
	id, err := oneArg(newFlagSet("advance"), args, "ORDER_ID")
	if err != nil {
		return err
	}
	cur, err := a.sf.Orders.Status(ctx, id)
	if err != nil {
		return err
	}
	next := orders.Next(cur.Status)
	if next == "" {
		return fmt.Errorf("order %s is already %s", id, cur.Status)
	}
	tr, err := a.sf.Orders.Advance(ctx, id, next)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Order %s: %s\n", tr.OrderID, tr.Status)
	return nil
}
