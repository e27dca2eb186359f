package main

import (
	"context"
	"fmt"
)

func runWishlist(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("wishlist")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	items := a.sf.Wishlist
	switch sub := fs.Arg(0); sub {
	case "":
		list, err := items.Get(ctx)
		if err != nil {
			return err
		}
		printProducts(a.out, list)
		return nil
	case "add", "remove":
		if fs.NArg() != 2 {
			return fmt.Errorf("wishlist %s: expected PRODUCT_ID", sub)
		}
		if sub == "add" {
			_, err = items.Add(ctx, fs.Arg(1))
		} else {
			_, err = items.Remove(ctx, fs.Arg(1))
		}
	case "clear":
		_, err = items.Clear(ctx)
	default:
		return fmt.Errorf("wishlist: unknown action %q: %w", sub, errUsage)
	}
	if err != nil {
		return err
	}
	list, err := items.Get(ctx)
	if err != nil {
		return err
	}
	printProducts(a.out, list)
	return nil
}
