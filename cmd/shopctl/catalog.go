package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Skotchmaster/storefront/internal/model"
)

func printProducts(w io.Writer, items []model.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category, p.Price.StringFixed(2), p.Stock)
	}
	tw.Flush()
}

func runProducts(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("products")
	category := fs.String("category", "", "only show this category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list, err := a.sf.Catalog.List(ctx)
	if err != nil {
		return err
	}
	items := list.All()
	if *category != "" {
		items = list.ByCategory(*category)
	}
	printProducts(a.out, items)
	return nil
}

func runProduct(ctx context.Context, a *app, args []string) error {
	id, err := oneArg(newFlagSet("product"), args, "ID")
	if err != nil {
		return err
	}
	p, err := a.sf.Catalog.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s\n%s\n\nPrice: %s\nStock: %d\nCategory: %s\n",
		p.Name, p.Description, p.Price.StringFixed(2), p.Stock, p.Category)
	for _, img := range p.Images {
		fmt.Fprintf(a.out, "Image: %s\n", img)
	}
	if a.sf.Wishlist.Contains(p.ID) {
		fmt.Fprintln(a.out, "In your wishlist")
	}
	return nil
}

func runSearch(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("search")
	if err := fs.Parse(args); err != nil {
		return err
	}
	items, err := a.sf.Catalog.Search(ctx, strings.Join(fs.Args(), " "))
	if err != nil {
		return err
	}
	printProducts(a.out, items)
	return nil
}
