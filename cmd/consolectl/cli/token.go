// Package cli implements the consolectl operator commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/credential"
)

// Exit codes shared by the commands.
const (
	ExitOK      = 0
	ExitError   = 1
	ExitExpired = 10
)

// TokenInspectOptions defines the flags for token inspect.
type TokenInspectOptions struct {
	Token      string
	JSONOutput bool
	Now        func() time.Time
	Stdout     io.Writer
	Stderr     io.Writer
}

// TokenSummary is the JSON shape printed by token inspect.
type TokenSummary struct {
	Valid     bool      `json:"valid"`
	Subject   string    `json:"subject,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// TokenInspectCommand decodes a credential and reports whether the console
// would accept it. Expired credentials exit with ExitExpired.
func TokenInspectCommand(opts TokenInspectOptions) int {
	opts = withWriters(opts)
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		_, _ = fmt.Fprintln(opts.Stderr, "token inspect: a credential argument is required")
		return ExitError
	}
	validator := credential.NewValidator(credential.WithClock(opts.Now))
	claims, err := validator.Inspect(token)
	summary := TokenSummary{Valid: err == nil, Subject: claims.Subject, ExpiresAt: claims.ExpiresAt}
	if err != nil {
		summary.Reason = err.Error()
	}
	if opts.JSONOutput {
		if encErr := json.NewEncoder(opts.Stdout).Encode(summary); encErr != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "token inspect: encode json: %v\n", encErr)
			return ExitError
		}
	} else {
		renderTokenHuman(opts.Stdout, summary)
	}
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, credential.ErrExpired):
		return ExitExpired
	default:
		return ExitError
	}
}

func renderTokenHuman(w io.Writer, s TokenSummary) {
	if s.Valid {
		_, _ = fmt.Fprintln(w, "credential valid")
	} else {
		_, _ = fmt.Fprintf(w, "credential rejected: %s\n", s.Reason)
	}
	if s.Subject != "" {
		_, _ = fmt.Fprintf(w, "  subject: %s\n", s.Subject)
	}
	if !s.ExpiresAt.IsZero() {
		_, _ = fmt.Fprintf(w, "  expires: %s\n", s.ExpiresAt.UTC().Format(time.RFC3339))
	}
}

func withWriters(opts TokenInspectOptions) TokenInspectOptions {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return opts
}
