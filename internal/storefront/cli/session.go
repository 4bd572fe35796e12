package cli

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"strawbeary/internal/domain"
	"strawbeary/internal/storefront"
)

const flushTimeout = 5 * time.Second

// session is one CLI invocation's view of the local cart.
type session struct {
	*storefront.Reconciler
	out *OutputFormatter
}

func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	local, err := storefront.NewLocalStore(opts.StateDir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open state directory", err)
	}
	sessionID, err := local.SessionID()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load session id", err)
	}
	client, err := storefront.NewClient(opts.APIURL, nil)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "configure api client", err)
	}

	r := storefront.NewReconciler(sessionID, local, client, storefront.Options{
		Logger: newLogger(cmd.ErrOrStderr(), opts.Verbose),
	})
	return &session{
		Reconciler: r,
		out:        &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()},
	}, nil
}

// close waits briefly for the background cart push before the process exits.
func (s *session) close() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	_ = s.Close(ctx)
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}

// apiError maps client failures onto exit codes.
func apiError(message string, err error) error {
	switch {
	case errors.Is(err, storefront.ErrUnknownDish), errors.Is(err, storefront.ErrEmptyCart):
		return WrapExitError(ExitCommandError, message, err)
	case errors.Is(err, domain.ErrDuplicateRequest):
		return WrapExitError(ExitFailure, message+" (already submitted)", err)
	}
	return WrapExitError(ExitFailure, message, err)
}
