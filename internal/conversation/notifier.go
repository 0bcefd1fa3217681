package conversation

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/ottoweb/internal/domain"
	"github.com/hammamikhairi/ottoweb/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*CLINotifier)(nil)

// ANSI escape codes for terminal formatting.
const (
	reset = "\033[0m"
	bold  = "\033[1m"
	red   = "\033[31m"
	cyan  = "\033[36m"
)

// PrintFunc prints one formatted line.
type PrintFunc func(format string, a ...any)

// CLINotifier writes notifications as terminal lines.
type CLINotifier struct {
	log     *logger.Logger
	printFn PrintFunc
	plain   bool
}

// NewCLINotifier creates a terminal notifier. If printFn is nil, lines go
// to stdout with ANSI colors. A non-nil printFn receives uncolored text;
// the caller owns styling.
func NewCLINotifier(log *logger.Logger, printFn PrintFunc) *CLINotifier {
	n := &CLINotifier{log: log, printFn: printFn, plain: printFn != nil}
	if n.printFn == nil {
		n.printFn = func(format string, a ...any) {
			fmt.Printf(format+"\n", a...)
		}
	}
	return n
}

// Notify prints a normal notification.
func (n *CLINotifier) Notify(ctx context.Context, message string) error {
	n.log.Debug("notify: %s", message)
	if n.plain {
		n.printFn("%s", message)
		return nil
	}
	n.printFn("%s%s%s%s", cyan, bold, message, reset)
	return nil
}

// NotifyUrgent prints an urgent notification.
func (n *CLINotifier) NotifyUrgent(ctx context.Context, message string) error {
	n.log.Debug("notify-urgent: %s", message)
	if n.plain {
		n.printFn("! %s", message)
		return nil
	}
	n.printFn("%s%s%s%s", red, bold, message, reset)
	return nil
}
