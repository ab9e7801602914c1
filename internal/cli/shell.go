package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/idfpatch/internal/config"
	"github.com/calvinalkan/idfpatch/internal/fs"
	"github.com/calvinalkan/idfpatch/pkg/graft"
	"github.com/calvinalkan/idfpatch/pkg/idf"
)

var errUnterminatedQuote = errors.New("unterminated quote")

// ShellCmd returns the shell command.
func ShellCmd(cfg *config.Config, in io.Reader, env map[string]string) *Command {
	return &Command{
		Flags: flag.NewFlagSet("shell", flag.ContinueOnError),
		Usage: "shell <idf>",
		Short: "Edit a document interactively",
		Long: `Open a document in an interactive shell. The document stays locked until
the shell exits; edits are kept in memory until 'write'.

Type 'help' in the shell for its commands. Arguments with spaces need
double quotes.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execShell(ctx, o, cfg, in, env, args)
		},
	}
}

// prompter reads one command line.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
}

// scanPrompter reads lines from a non-terminal input without echoing
// prompts.
type scanPrompter struct {
	sc *bufio.Scanner
}

func (p *scanPrompter) Prompt(string) (string, error) {
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}

		return "", io.EOF
	}

	return p.sc.Text(), nil
}

func (p *scanPrompter) AppendHistory(string) {}

type shell struct {
	ctx   context.Context
	o     *IO
	cfg   *config.Config
	path  string
	store *idf.Store
	dirty bool
}

func execShell(ctx context.Context, o *IO, cfg *config.Config, in io.Reader, env map[string]string, args []string) (err error) {
	if len(args) == 0 {
		return errIDFRequired
	}

	path := args[0]

	lock, err := fs.LockFile(absPath(cfg, path), cfg.LockTimeoutDur)
	if err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}

	defer func() {
		if closeErr := lock.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("unlock %s: %w", path, closeErr))
		}
	}()

	store, err := readDocument(cfg, path)
	if err != nil {
		return err
	}

	sh := &shell{ctx: ctx, o: o, cfg: cfg, path: path, store: store}

	if f, ok := in.(*os.File); ok && f == os.Stdin && liner.TerminalSupported() {
		line := liner.NewLiner()
		defer line.Close()

		line.SetCtrlCAborts(true)
		line.SetCompleter(completeShell)

		history := historyFile(env)
		if hf, err := os.Open(history); err == nil {
			_, _ = line.ReadHistory(hf)
			_ = hf.Close()
		}

		defer func() {
			if history == "" {
				return
			}

			if hf, err := os.Create(history); err == nil {
				_, _ = line.WriteHistory(hf)
				_ = hf.Close()
			}
		}()

		o.Printf("idfpatch shell - %s (%d records)\n", path, store.Len())
		o.Println("Type 'help' for available commands.")

		return sh.loop(line)
	}

	if in == nil {
		in = strings.NewReader("")
	}

	return sh.loop(&scanPrompter{sc: bufio.NewScanner(in)})
}

// historyFile returns the path to the history file.
func historyFile(env map[string]string) string {
	home := env["HOME"]
	if home == "" {
		return ""
	}

	return filepath.Join(home, ".idfpatch_history")
}

var shellCommands = []string{"help", "ls", "show", "set", "refs", "rename", "write", "quit", "exit"}

func completeShell(line string) []string {
	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range shellCommands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

func (sh *shell) loop(p prompter) error {
	for {
		if err := sh.ctx.Err(); err != nil {
			return err
		}

		line, err := p.Prompt("idfpatch> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p.AppendHistory(line)

		words, err := splitArgs(line)
		if err != nil {
			sh.o.Error(err)

			continue
		}

		cmd := strings.ToLower(words[0])
		args := words[1:]

		if cmd == "quit" || cmd == "exit" || cmd == "q" {
			break
		}

		if err := sh.dispatch(cmd, args); err != nil {
			sh.o.Error(err)
		}
	}

	if sh.dirty {
		sh.o.Warn("unsaved changes discarded", "run 'write' before 'quit'")
	}

	return nil
}

func (sh *shell) dispatch(cmd string, args []string) error {
	switch cmd {
	case "help", "?":
		sh.printHelp()

		return nil
	case "ls":
		return sh.cmdLs(args)
	case "show":
		return sh.cmdShow(args)
	case "set":
		return sh.cmdSet(args)
	case "refs":
		return sh.cmdRefs(args)
	case "rename":
		return sh.cmdRename(args)
	case "write":
		return sh.cmdWrite(args)
	default:
		return fmt.Errorf("%w: %s (type 'help' for commands)", errUnknownCommand, cmd)
	}
}

func (sh *shell) printHelp() {
	sh.o.Println("Commands:")
	sh.o.Println("  ls [type]                       List types, or the keys of one type")
	sh.o.Println("  show <type> <key>               Print one record")
	sh.o.Println("  set <type> <key> <field> <value> Set a field by name or index")
	sh.o.Println("  refs <value>                    List every field holding a value")
	sh.o.Println("  rename <node> <new>             Rename a node everywhere")
	sh.o.Println("  write [path]                    Write the document")
	sh.o.Println("  help                            Show this help")
	sh.o.Println("  quit / exit / q                 Exit")
}

func (sh *shell) cmdLs(args []string) error {
	if len(args) == 0 {
		for _, typ := range sh.store.Types() {
			sh.o.Printf("%s\t%d\n", typ, len(sh.store.AllOfType(typ)))
		}

		return nil
	}

	for _, rec := range sh.store.AllOfType(args[0]) {
		sh.o.Println(rec.Key())
	}

	return nil
}

func (sh *shell) cmdShow(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: show <type> <key>")
	}

	rec, err := sh.store.FindByKey(args[0], args[1])
	if err != nil {
		return err
	}

	sh.o.Println(sh.store.MarshalRecord(rec, marshalOptions(sh.cfg, true)...))

	return nil
}

func (sh *shell) cmdSet(args []string) error {
	if len(args) != 4 {
		return errors.New("usage: set <type> <key> <field> <value>")
	}

	rec, err := sh.store.FindByKey(args[0], args[1])
	if err != nil {
		return err
	}

	if i, convErr := strconv.Atoi(args[2]); convErr == nil {
		err = rec.Set(i, args[3])
	} else {
		err = rec.SetField(args[2], args[3])
	}

	if err != nil {
		return err
	}

	sh.dirty = true
	sh.o.Printf("set %s %q %s = %q\n", rec.Type(), rec.Key(), args[2], args[3])

	return nil
}

func (sh *shell) cmdRefs(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: refs <value>")
	}

	ix, err := buildIndex(sh.ctx, sh.cfg, "", sh.store)
	if err != nil {
		return err
	}
	defer func() { _ = ix.Close() }()

	refs, err := ix.Refs(sh.ctx, args[0])
	if err != nil {
		return err
	}

	if len(refs) == 0 {
		sh.o.Println("(no references)")

		return nil
	}

	for _, ref := range refs {
		sh.o.Println(ref.String())
	}

	return nil
}

func (sh *shell) cmdRename(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: rename <node> <new>")
	}

	n, err := graft.RenameNode(sh.store, nil, args[0], args[1])
	if err != nil {
		return err
	}

	sh.dirty = true
	sh.o.Printf("renamed %q to %q in %d fields\n", args[0], args[1], n)

	return nil
}

func (sh *shell) cmdWrite(args []string) error {
	target := sh.path
	if len(args) > 0 {
		target = args[0]
	}

	backupPath, err := writeDocument(sh.cfg, target, sh.store, sh.cfg.BackupEnabled)
	if err != nil {
		return err
	}

	if target == sh.path {
		sh.dirty = false
	}

	sh.o.Println("wrote", target)

	if backupPath != "" {
		sh.o.Println("backup", backupPath)
	}

	return nil
}

// splitArgs splits a command line on whitespace. Double quotes group words;
// a backslash escapes the next character inside quotes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		inWord  bool
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
			inWord = true
		case !inQuote && (r == ' ' || r == '\t'):
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}

	if inQuote {
		return nil, errUnterminatedQuote
	}

	if inWord {
		args = append(args, cur.String())
	}

	return args, nil
}
