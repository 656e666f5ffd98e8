// Package cli provides the interactive RecruitMe terminal client.
//
// It stands in for the register and login screens: it prompts for
// credentials, validates them, calls the credential store and keeps an
// in-memory authenticated flag for the rest of the session.
//
// Commands:
//   - register / login / logout
//   - whoami
//   - help, exit | quit
//
// The loop is started via App.Run(ctx), which blocks until the user exits,
// stdin is closed or ctx is cancelled.
package cli
