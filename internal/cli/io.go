package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// IO handles command output with warnings that stay visible.
type IO struct {
	out        io.Writer
	errOut     io.Writer
	warnings   []string
	started    bool
	warnPrefix string
	errPrefix  string
}

// NewIO creates a new IO instance. With colored set, the warning and error
// prefixes on errOut are colored.
func NewIO(out, errOut io.Writer, colored bool) *IO {
	warn := color.New(color.FgYellow, color.Bold)
	fail := color.New(color.FgRed, color.Bold)

	if colored {
		warn.EnableColor()
		fail.EnableColor()
	} else {
		warn.DisableColor()
		fail.DisableColor()
	}

	return &IO{
		out:        out,
		errOut:     errOut,
		warnPrefix: warn.Sprint("warning:"),
		errPrefix:  fail.Sprint("error:"),
	}
}

// Warn adds an actionable warning.
//
// Parameters:
//   - issue: what went wrong
//   - action: what the user should do about it
//
// Warnings are printed to stderr at both the START and END of output,
// so they survive truncation (head/tail). Any warning makes the exit code 1.
//
// Output to stdout still occurs; warnings don't suppress normal output.
func (o *IO) Warn(issue string, action string) {
	o.warnings = append(o.warnings, fmt.Sprintf("%s: %s", issue, action))
}

// Println writes to stdout. On first call, any collected warnings
// are printed to stderr first.
func (o *IO) Println(a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout. On first call, any collected
// warnings are printed to stderr first.
func (o *IO) Printf(format string, a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// ErrPrintf writes formatted output to stderr.
func (o *IO) ErrPrintf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.errOut, format, a...)
}

// Error prints err with the error prefix.
func (o *IO) Error(err error) {
	_, _ = fmt.Fprintln(o.errOut, o.errPrefix, err)
}

// Finish prints warnings to stderr and returns exit code.
// Returns 1 if any warnings, 0 otherwise.
func (o *IO) Finish() int {
	// No output happened but we have warnings: print them at "start" position.
	o.flushWarningsStart()

	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, o.warnPrefix, w)
	}

	if len(o.warnings) > 0 {
		return 1
	}

	return 0
}

func (o *IO) flushWarningsStart() {
	if !o.started && len(o.warnings) > 0 {
		for _, w := range o.warnings {
			_, _ = fmt.Fprintln(o.errOut, o.warnPrefix, w)
		}

		o.started = true
	}
}
