package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskboard/internal/client/client"
	"github.com/dmitrijs2005/taskboard/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts for email, name and password and creates an account. It
// does not log in.
func (a *App) Signup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	firstName, err := getSimpleText(a.reader, "First name (optional)", a.out)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Last name (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	err = a.authService.Signup(ctx, client.SignupRequest{
		Email:     email,
		Password:  string(password),
		FirstName: firstName,
		LastName:  lastName,
	})
	switch {
	case err == nil:
		fmt.Fprintln(a.out, "Account created. Use 'login' to sign in.")
	case errors.Is(err, client.ErrConflict):
		fmt.Fprintln(a.out, "An account with this email already exists")
	case errors.Is(err, client.ErrValidation):
		fmt.Fprintln(a.out, "Email and a password of at least 8 characters are required")
	default:
		fmt.Fprintln(a.out, "Signup failed:", err)
	}
	return err
}

// Login prompts for credentials, signs in and loads the board.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.authService.Login(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			fmt.Fprintln(a.out, "Invalid email or password")
		} else {
			fmt.Fprintln(a.out, "Login failed:", err)
		}
		return err
	}

	fmt.Fprintf(a.out, "Signed in as %s\n", sess.Email)
	return a.List(ctx)
}

func (a *App) Logout(ctx context.Context) error {
	err := a.authService.Logout(ctx)
	a.boardService.Reset()
	if err != nil {
		a.logger.Warn(ctx, "logout", "error", err)
	}
	fmt.Fprintln(a.out, "Signed out")
	return err
}
