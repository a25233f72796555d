package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophtasks/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errPasswordMismatch = errors.New("passwords do not match")

func (a *App) credentials() (string, []byte, error) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}

// Register prompts for a username and a password (typed twice) and creates
// the account. It does not log the user in.
func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.out, "Repeat password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(password, confirm) {
		return errPasswordMismatch
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	u, err := a.authService.Register(ctx, userName, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s (id %d). Use 'login' to sign in.\n", u.Username, u.ID)
	return nil
}

// Login prompts for credentials and stores the session on success.
func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.Login(ctx, userName, password); err != nil {
		return err
	}

	a.userName = userName
	fmt.Fprintln(a.out, "Success!")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	u, err := a.authService.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (id %d)\n", u.Username, u.ID)
	return nil
}
