package main

import (
	"context"
	"fmt"
	"os"
)

func credentialFlags(name string, args []string) (string, string, error) {
	fs := newFlagSet(name)
	user := fs.String("u", "", "username")
	pass := fs.String("p", os.Getenv("SHOP_PASSWORD"), "password (or SHOP_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return "", "", err
	}
	if *user == "" || *pass == "" {
		return "", "", fmt.Errorf("%s: -u and -p are required", name)
	}
	return *user, *pass, nil
}

func runRegister(ctx context.Context, a *app, args []string) error {
	user, pass, err := credentialFlags("register", args)
	if err != nil {
		return err
	}
	reg, err := a.sf.Session.Register(ctx, user, pass)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s. Log in, then verify your account.\n", reg.User.Username)
	if reg.VerificationCode != "" {
		fmt.Fprintf(a.out, "Verification code: %s\n", reg.VerificationCode)
	}
	return nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	user, pass, err := credentialFlags("login", args)
	if err != nil {
		return err
	}
	res, err := a.sf.Session.Login(ctx, user, pass)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", res.User.Username, res.User.Role)
	switch {
	case res.MergeErr != nil:
		fmt.Fprintf(a.out, "Warning: guest cart was not merged: %v\n", res.MergeErr)
	case res.Merged > 0:
		fmt.Fprintf(a.out, "Merged %d item(s) from your guest cart\n", res.Merged)
	}
	if !res.User.Verified {
		fmt.Fprintln(a.out, "Account not verified: run `shopctl verify CODE` before checkout")
	}
	return nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	a.sf.Session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func runVerify(ctx context.Context, a *app, args []string) error {
	code, err := oneArg(newFlagSet("verify"), args, "CODE")
	if err != nil {
		return err
	}
	u, err := a.sf.Session.Verify(ctx, code)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Verified %s\n", u.Username)
	return nil
}

func runWhoami(_ context.Context, a *app, _ []string) error {
	u, ok := a.sf.Session.Current()
	if !ok {
		fmt.Fprintf(a.out, "guest %s\n", a.sf.Store.GuestID())
		return nil
	}
	fmt.Fprintf(a.out, "%s role=%s verified=%t\n", u.Username, u.Role, u.Verified)
	return nil
}
