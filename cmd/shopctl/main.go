package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/storefront"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"register": {"register -u NAME -p PASSWORD", runRegister},
	"login":    {"login -u NAME -p PASSWORD", runLogin},
	"logout":   {"logout", runLogout},
	"verify":   {"verify CODE", runVerify},
	"whoami":   {"whoami", runWhoami},
	"products": {"products [-category NAME]", runProducts},
	"product":  {"product ID", runProduct},
	"search":   {"search QUERY", runSearch},
	"cart":     {"cart", runCart},
	"add":      {"add [-qty N] PRODUCT_ID", runAdd},
	"remove":   {"remove PRODUCT_ID", runRemove},
	"inc":      {"inc PRODUCT_ID", runIncrease},
	"dec":      {"dec PRODUCT_ID", runDecrease},
	"clear":    {"clear", runClear},
	"checkout": {"checkout", runCheckout},
	"complete": {"complete [-pay] SESSION_ID", runComplete},
	"cancel":   {"cancel SESSION_ID", runCancel},
	"orders":   {"orders", runOrders},
	"track":    {"track ORDER_ID", runTrack},
	"advance":  {"advance ORDER_ID (admin)", runAdvance},
	"wishlist": {"wishlist [add|remove|clear] [PRODUCT_ID]", runWishlist},
}

// app is what every command runs against.
type app struct {
	sf  *storefront.Storefront
	out io.Writer
}

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := storefront.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)
	ctx = logging.IntoContext(ctx, logger)

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *storefront.Config, args []string, out io.Writer, opts ...storefront.Option) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}

	opts = append([]storefront.Option{storefront.WithNavigator(printNavigator(out))}, opts...)
	sf, err := storefront.New(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer sf.Close()

	return cmd.run(ctx, &app{sf: sf, out: out}, args[1:])
}

// printNavigator shows the payment page instead of opening a browser.
func printNavigator(out io.Writer) checkout.Navigator {
	return checkout.NavigatorFunc(func(_ context.Context, url string) error {
		_, err := fmt.Fprintf(out, "Complete payment at: %s\n", url)
		return err
	})
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: shopctl <command> [flags]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// oneArg parses fs and requires exactly one positional argument.
func oneArg(fs *flag.FlagSet, args []string, what string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%s: expected %s", fs.Name(), what)
	}
	return fs.Arg(0), nil
}
