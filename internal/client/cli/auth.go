package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mithaimart/internal/client/form"
	"github.com/dmitrijs2005/mithaimart/internal/client/ui"
	"github.com/dmitrijs2005/mithaimart/internal/credentials"
	"github.com/dmitrijs2005/mithaimart/internal/shared"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for name, email and password and submits the form in
// register mode.
func (a *App) Register(ctx context.Context) error {
	return a.submit(ctx, form.ModeRegister)
}

// Login prompts for email and password and submits the form in login mode.
func (a *App) Login(ctx context.Context) error {
	return a.submit(ctx, form.ModeLogin)
}

func (a *App) submit(ctx context.Context, mode form.Mode) error {
	if a.form.Mode() != mode {
		if err := a.form.ToggleMode(); err != nil {
			return err
		}
	}
	defer func() {
		if a.form.Status() != form.StatusSuccess {
			_ = a.form.Close()
		}
	}()

	if mode == form.ModeRegister {
		name, err := getSimpleText(a.reader, "Enter name", a.out)
		if err != nil {
			return err
		}
		if err := a.form.Set(credentials.FieldName, name); err != nil {
			return err
		}
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.form.Set(credentials.FieldEmail, email); err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	err = a.form.Set(credentials.FieldPassword, string(password))
	shared.WipeByteArray(password)
	if err != nil {
		return err
	}

	err = a.form.Submit(ctx)
	if err != nil {
		a.printFormErrors()
	}
	return err
}

func (a *App) printFormErrors() {
	errs := a.form.Errors()
	for _, key := range []string{credentials.FieldName, credentials.FieldEmail, credentials.FieldPassword, form.FieldSubmit} {
		if msg, ok := errs[key]; ok {
			fmt.Fprintf(a.out, "  %s: %s\n", key, msg)
		}
	}
}

// Logout ends the session and removes the saved record, including one
// that has already expired.
func (a *App) Logout(ctx context.Context) error {
	wasSignedIn := a.session.IsAuthenticated()

	if err := a.session.Logout(ctx); err != nil {
		fmt.Fprintf(a.out, "Logged out, but the saved session could not be removed: %v\n", err)
		return err
	}

	if !wasSignedIn {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	a.notifier.ShowNotification("Logged out", ui.KindInfo)
	return nil
}
