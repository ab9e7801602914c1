package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/idfpatch/internal/config"
	"github.com/calvinalkan/idfpatch/internal/fs"
	"github.com/calvinalkan/idfpatch/internal/plan"
)

var errInvalidVar = errors.New("invalid --var, want key=value")

// ApplyCmd returns the apply command.
func ApplyCmd(cfg *config.Config) *Command {
	flags := flag.NewFlagSet("apply", flag.ContinueOnError)
	flags.StringP("output", "o", "", "Write the result to `path` instead of the input document")
	flags.Bool("dry-run", false, "Print the patched document to stdout and write nothing")
	flags.Bool("no-backup", false, "Do not back up the document before replacing it")
	flags.BoolP("verbose", "v", false, "Log every step to stderr")
	flags.StringArray("var", nil, "Set a plan variable (`key=value`, repeatable)")

	return &Command{
		Flags: flags,
		Usage: "apply <plan> <idf> [flags]",
		Short: "Apply a patch plan to a document",
		Long: `Apply every step of a patch plan (.json, .jsonc, .hujson or .toml) to a
document. The steps run as one unit: when any step fails, nothing is written.

The document is locked for the duration of the run and replaced atomically.
Unless disabled, the previous content is kept as <idf>.<uuid>.bak.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execApply(ctx, io, cfg, flags, args)
		},
	}
}

func execApply(ctx context.Context, io *IO, cfg *config.Config, flags *flag.FlagSet, args []string) (err error) {
	if len(args) < 1 {
		return errPlanRequired
	}

	if len(args) < 2 {
		return errIDFRequired
	}

	planPath, idfPath := args[0], args[1]

	output, _ := flags.GetString("output")
	dryRun, _ := flags.GetBool("dry-run")
	noBackup, _ := flags.GetBool("no-backup")
	verbose, _ := flags.GetBool("verbose")
	rawVars, _ := flags.GetStringArray("var")

	vars, err := parseVars(rawVars)
	if err != nil {
		return err
	}

	target := idfPath
	if output != "" {
		target = output
	}

	if !dryRun {
		// The input is locked too when writing elsewhere, so it cannot change
		// between the read and the write. Paths are locked in sorted order.
		paths := []string{target}
		if in, out := absPath(cfg, idfPath), absPath(cfg, target); in != out {
			paths = append(paths, idfPath)
		}

		slices.SortFunc(paths, func(a, b string) int {
			return strings.Compare(absPath(cfg, a), absPath(cfg, b))
		})

		for _, path := range paths {
			lock, lockErr := fs.LockFile(absPath(cfg, path), cfg.LockTimeoutDur)
			if lockErr != nil {
				return fmt.Errorf("lock %s: %w", path, lockErr)
			}

			defer func() {
				if closeErr := lock.Close(); closeErr != nil {
					err = errors.Join(err, fmt.Errorf("unlock %s: %w", path, closeErr))
				}
			}()
		}
	}

	p, err := plan.Load(absPath(cfg, planPath))
	if err != nil {
		return err
	}

	store, err := readDocument(cfg, idfPath)
	if err != nil {
		return err
	}

	opts := plan.Options{Vars: vars}
	if verbose {
		opts.Logf = func(format string, a ...any) {
			io.ErrPrintf(format+"\n", a...)
		}
	}

	report, err := plan.Apply(ctx, store, p, opts)
	if err != nil {
		return err
	}

	warnDuplicates(io, store)

	for _, st := range report.Steps {
		if st.Skipped {
			io.ErrPrintf("skipped step %d (%s) %s: %s\n", st.Index, st.Op, st.Target, st.Detail)
		}
	}

	if dryRun {
		io.Printf("%s", store.Marshal(marshalOptions(cfg, false)...))

		return nil
	}

	backupPath, err := writeDocument(cfg, target, store, cfg.BackupEnabled && !noBackup)
	if err != nil {
		return err
	}

	name := report.Plan
	if name == "" {
		name = planPath
	}

	io.Printf("applied %d of %d steps from %s (run %s)\n", report.Applied(), len(report.Steps), name, report.RunID)
	io.Println("wrote", target)

	if backupPath != "" {
		io.Println("backup", backupPath)
	}

	return nil
}

func parseVars(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	vars := make(map[string]string, len(raw))

	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q", errInvalidVar, kv)
		}

		vars[k] = v
	}

	return vars, nil
}
