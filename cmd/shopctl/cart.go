package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/model"
)

func (a *app) printCart(c model.Cart) {
	if c.Empty() {
		fmt.Fprintln(a.out, "Cart is empty")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tLINE")
	for _, l := range c.Products {
		line := l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			l.Product.ID, l.Product.Name, l.Quantity, l.Product.Price.StringFixed(2), line.StringFixed(2))
	}
	tw.Flush()

	t := a.sf.Cart.Totals()
	fmt.Fprintf(a.out, "Subtotal: %s\n", t.Subtotal.StringFixed(2))
	if !t.Tax.IsZero() {
		fmt.Fprintf(a.out, "Tax: %s\n", t.Tax.StringFixed(2))
	}
	fmt.Fprintf(a.out, "Total: %s\n", t.Total.StringFixed(2))
}

func runCart(ctx context.Context, a *app, _ []string) error {
	c, err := a.sf.Cart.Get(ctx)
	if err != nil {
		return err
	}
	a.printCart(c)
	return nil
}

func runAdd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("add")
	qty := fs.Int("qty", 1, "quantity to add")
	id, err := oneArg(fs, args, "PRODUCT_ID")
	if err != nil {
		return err
	}
	c, err := a.sf.Cart.Add(ctx, id, *qty)
	if err != nil {
		return err
	}
	a.printCart(c)
	return nil
}

func lineCommand(name string, op func(a *app) func(context.Context, string) (model.Cart, error)) func(context.Context, *app, []string) error {
	return func(ctx context.Context, a *app, args []string) error {
		id, err := oneArg(newFlagSet(name), args, "PRODUCT_ID")
		if err != nil {
			return err
		}
		c, err := op(a)(ctx, id)
		if err != nil {
			return err
		}
		a.printCart(c)
		return nil
	}
}

var (
	runRemove   = lineCommand("remove", func(a *app) func(context.Context, string) (model.Cart, error) { return a.sf.Cart.Remove })
	runIncrease = lineCommand("inc", func(a *app) func(context.Context, string) (model.Cart, error) { return a.sf.Cart.Increase })
	runDecrease = lineCommand("dec", func(a *app) func(context.Context, string) (model.Cart, error) { return a.sf.Cart.Decrease })
)

func runClear(ctx context.Context, a *app, _ []string) error {
	c, err := a.sf.Cart.Clear(ctx)
	if err != nil {
		return err
	}
	a.printCart(c)
	return nil
}
