package rewind

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Runner drives a Machine from line commands read from Input.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	// MaxInputSize bounds a command line; zero means DefaultMaxInputSize.
	MaxInputSize int

	// Apply, when set, runs every command against the machine it supplies
	// (typically the latest stored one) instead of the machine given to Run,
	// and is expected to persist it unless the callback fails.
	Apply func(fn func(*Machine) error) (*Machine, error)
}

// errUnchanged aborts an Apply for commands that only read the machine.
var errUnchanged = errors.New("machine unchanged")

// ContentRenderer is a function that transforms help text (markdown) before
// outputting it. This allows for TUI rendering without coupling the core package.
type ContentRenderer func(string) (string, error)

// ErrRunnerIO is returned when Input or Output is missing.
var ErrRunnerIO = errors.New("runner input and output must be set")

// HelpText lists the runner commands, in markdown.
const HelpText = `# Commands

| Command | Effect |
|---|---|
| ` + "`trigger <event>`" + ` or ` + "`<event>`" + ` | follow the transition for event |
| ` + "`go <state>`" + ` | change directly to state |
| ` + "`undo`" + ` / ` + "`redo`" + ` | navigate the history |
| ` + "`reset`" + ` | back to the initial state |
| ` + "`clear`" + ` | clear the history |
| ` + "`states [event]`" + ` | list states, optionally only those handling event |
| ` + "`history`" + ` | show history and redo stack |
| ` + "`help`" + ` | this text |
| ` + "`exit`" + ` | quit |
`

// NewRunner creates a Runner over the given streams.
func NewRunner(in io.Reader, out io.Writer) *Runner {
	return &Runner{Input: in, Output: out}
}

// Run reads commands until EOF or exit. Rejected commands are reported and
// the loop continues; only IO and persistence failures stop it.
func (r *Runner) Run(m *Machine) error {
	if r.Input == nil || r.Output == nil {
		return ErrRunnerIO
	}
	scanner := bufio.NewScanner(r.Input)
	w := r.Output

	if !r.Headless {
		fmt.Fprintf(w, "--- %s (type 'help' for commands) ---\n", r.title(m))
		fmt.Fprintf(w, "[%s]\n", m.State())
	}

	for {
		if !r.Headless {
			fmt.Fprint(w, "> ")
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			return nil
		}

		line, err := SanitizeInput(scanner.Text(), r.MaxInputSize)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		if cmd == "exit" || cmd == "quit" {
			if !r.Headless {
				fmt.Fprintln(w, "Bye!")
			}
			return nil
		}

		next, changed, cmdErr, err := r.step(m, cmd, args)
		if err != nil {
			return err
		}
		if cmdErr != nil {
			fmt.Fprintf(w, "error: %v\n", cmdErr)
			continue
		}
		m = next
		if changed {
			fmt.Fprintf(w, "[%s]\n", m.State())
		}
	}
}

// step runs one command, through Apply when set. cmdErr reports a rejected
// command; err is a failure of Apply itself and stops the loop.
func (r *Runner) step(m *Machine, cmd string, args []string) (next *Machine, changed bool, cmdErr, err error) {
	if r.Apply == nil {
		changed, cmdErr = r.execute(m, cmd, args)
		return m, changed, cmdErr, nil
	}

	next, err = r.Apply(func(fresh *Machine) error {
		changed, cmdErr = r.execute(fresh, cmd, args)
		if cmdErr != nil {
			return cmdErr
		}
		if !changed {
			return errUnchanged
		}
		return nil
	})
	switch {
	case cmdErr != nil:
		return m, false, cmdErr, nil
	case errors.Is(err, errUnchanged):
		return m, false, nil, nil
	case err != nil:
		return m, false, nil, fmt.Errorf("apply: %w", err)
	}
	return next, changed, nil, nil
}

func (r *Runner) title(m *Machine) string {
	if m.Name != "" {
		return m.Name
	}
	return "rewind"
}

// execute runs one command and reports whether the machine changed.
func (r *Runner) execute(m *Machine, cmd string, args []string) (bool, error) {
	w := r.Output
	switch cmd {
	case "trigger":
		if len(args) != 1 {
			return false, errors.New("usage: trigger <event>")
		}
		return true, m.Trigger(args[0])
	case "go":
		if len(args) != 1 {
			return false, errors.New("usage: go <state>")
		}
		return true, m.ChangeState(args[0])
	case "undo":
		if !m.Undo() {
			fmt.Fprintln(w, "nothing to undo")
			return false, nil
		}
		return true, nil
	case "redo":
		if !m.Redo() {
			fmt.Fprintln(w, "nothing to redo")
			return false, nil
		}
		return true, nil
	case "reset":
		m.Reset()
		return true, nil
	case "clear":
		m.ClearHistory()
		return true, nil
	case "states":
		fmt.Fprintln(w, strings.Join(m.StatesForEvent(args...), " "))
		return false, nil
	case "history":
		fmt.Fprintf(w, "history: %s\n", strings.Join(m.History(), " > "))
		fmt.Fprintf(w, "redo:    %s\n", strings.Join(m.RedoStack(), " "))
		return false, nil
	case "help":
		r.printHelp()
		return false, nil
	}
	if len(args) == 0 {
		return true, m.Trigger(cmd)
	}
	return false, fmt.Errorf("unknown command %q", cmd)
}

func (r *Runner) printHelp() {
	output := HelpText
	if r.Renderer != nil {
		if rendered, err := r.Renderer(HelpText); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(output))
}
