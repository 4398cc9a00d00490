package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fmdata/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login obtains a fresh session. Without a configured credential it
// prompts for a username and password; a prompted credential is kept
// until logout.
func (a *App) Login(ctx context.Context) error {
	credential := a.configCredential
	if credential == "" {
		userName, err := getSimpleText(a.reader, "Enter username", a.out)
		if err != nil {
			return err
		}
		password, err := getPassword(a.out)
		if err != nil {
			return err
		}
		credential = models.EncodeCredential(userName, password)
		clear(password)
	}

	res, err := a.auth.Login(ctx, credential)
	if err != nil {
		return err
	}
	a.credential = credential

	fmt.Fprintf(a.out, "Logged in, session valid until %s (code %s)\n", res.ExpiresAt.Local().Format(time.RFC3339), res.Code)
	return nil
}

// Status prints the stored session without contacting the server.
func (a *App) Status(ctx context.Context) error {
	st, err := a.auth.Status(ctx)
	if err != nil {
		return err
	}
	switch {
	case st.Active:
		fmt.Fprintf(a.out, "Session active until %s\n", st.Session.ExpiresAt.Local().Format(time.RFC3339))
	case st.Session.Token != "":
		fmt.Fprintf(a.out, "Session expired at %s\n", st.Session.ExpiresAt.Local().Format(time.RFC3339))
	default:
		fmt.Fprintln(a.out, "No session")
	}
	return nil
}

// Logout closes the session and forgets a prompted credential.
func (a *App) Logout(ctx context.Context) error {
	code, err := a.auth.Logout(ctx)
	a.credential = a.configCredential
	if err != nil {
		return err
	}
	if code == "" {
		fmt.Fprintln(a.out, "No session to close")
		return nil
	}
	fmt.Fprintf(a.out, "Logged out (code %s)\n", code)
	return nil
}
