package errors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/julianstephens/weekgrid/internal/logger"
)

// Swapped in tests.
var (
	stderr io.Writer = os.Stderr
	exit             = os.Exit
)

const offlineHint = "Pass --offline to work from the local cache."

// Format renders err for the terminal as "Error: <err>".
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Action renders a failed user action as a one-line notice, e.g.
// "Could not move: remote rejected request".
func Action(action string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Could not %s: %v", action, err)
}

// Hint suggests a next step for failures the user can route around.
// It returns "" when there is nothing useful to say.
func Hint(err error) string {
	var netErr net.Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr):
		return offlineHint
	}
	return ""
}

// Fatal logs err, prints it with any hint to stderr and exits with status 1.
// A nil err is ignored.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("Command failed", "error", err)
	fmt.Fprintln(stderr, Format(err))
	if hint := Hint(err); hint != "" {
		fmt.Fprintln(stderr, hint)
	}
	exit(1)
}
