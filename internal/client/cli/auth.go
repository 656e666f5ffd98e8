package cli

import (
	"bytes"
	"context"
	"errors"
	"os"

	"github.com/dmitrijs2005/recruitme/internal/client/models"
	"github.com/dmitrijs2005/recruitme/internal/common"
)

// getSimpleText and getPassword point to the interactive input helpers and
// are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

const (
	msgEmailRequired       = "Email is required."
	msgPasswordRequired    = "Password is required."
	msgConfirmRequired     = "Confirm password is required."
	msgPasswordMismatch    = "Passwords do not match."
	msgRegistered          = "User registered successfully! You can now log in."
	msgDuplicateEmail      = "An account with this email already exists."
	msgInvalidCredentials  = "Invalid email or password."
	msgInvalidInput        = "Password contains characters that cannot be stored."
	msgStorageUnavailable  = "Local storage is unavailable. Please try again."
	msgRegistrationFailed  = "Failed to register user."
	msgAlreadyLoggedIn     = "Already logged in. Log out first."
	msgNotLoggedIn         = "Not logged in."
	msgLoggedOut           = "Logged out."
	msgUnexpectedAuthError = "Login failed. Please try again."
)

// errValidation marks input rejected before the store was called.
var errValidation = errors.New("validation failed")

// userMessage maps store errors onto text that is safe to show. Driver
// messages never reach the terminal.
func userMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrDuplicateEmail):
		return msgDuplicateEmail
	case errors.Is(err, common.ErrUserNotFound), errors.Is(err, common.ErrInvalidCredentials):
		return msgInvalidCredentials
	case errors.Is(err, common.ErrInvalidInput):
		return msgInvalidInput
	case errors.Is(err, common.ErrConnection), errors.Is(err, common.ErrSchema), errors.Is(err, common.ErrStorage):
		return msgStorageUnavailable
	case errors.Is(err, common.ErrRegistration):
		return msgRegistrationFailed
	default:
		return msgUnexpectedAuthError
	}
}

// Register prompts for email, password and confirmation, validates them and
// creates the account. The email is trimmed; the password is stored as
// typed. Password buffers are wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeBytes(password)

	confirm, err := getConfirmPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeBytes(confirm)

	if msg := validateRegistration(email, password, confirm); msg != "" {
		printlnFn(msg)
		return errValidation
	}

	user, err := a.store.Register(ctx, email, string(password))
	if err != nil {
		a.logger.Warn(ctx, "registration failed", "email", email, "error", err)
		printlnFn(userMessage(err))
		return err
	}

	a.logger.Info(ctx, "registered", "user_id", user.ID)
	printlnFn(msgRegistered)
	return nil
}

func validateRegistration(email string, password, confirm []byte) string {
	p, c := bytes.TrimSpace(password), bytes.TrimSpace(confirm)
	switch {
	case email == "":
		return msgEmailRequired
	case len(p) == 0:
		return msgPasswordRequired
	case len(c) == 0:
		return msgConfirmRequired
	case !bytes.Equal(p, c):
		return msgPasswordMismatch
	}
	return ""
}

// Login prompts for credentials and, on success, marks the session as
// authenticated for the current email.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn(msgAlreadyLoggedIn)
		return nil
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeBytes(password)

	switch {
	case email == "":
		printlnFn(msgEmailRequired)
		return errValidation
	case len(password) == 0:
		printlnFn(msgPasswordRequired)
		return errValidation
	}

	user, err := a.store.Authenticate(ctx, email, string(password))
	if err != nil {
		a.logger.Info(ctx, "login failed", "email", email, "error", err)
		printlnFn(userMessage(err))
		return err
	}

	a.user = user
	a.authenticated = true
	printlnFn("Welcome, " + user.Email + "!")
	return nil
}

// Logout clears the authenticated flag.
func (a *App) Logout(_ context.Context) error {
	if !a.isLoggedIn() {
		printlnFn(msgNotLoggedIn)
		return nil
	}
	a.user = models.User{}
	a.authenticated = false
	printlnFn(msgLoggedOut)
	return nil
}

// Whoami prints the current user.
func (a *App) Whoami(_ context.Context) error {
	if !a.isLoggedIn() {
		printlnFn(msgNotLoggedIn)
		return nil
	}
	printlnFn(a.user.Email)
	return nil
}
