package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/internal/logging"
	"github.com/aretw0/rewind/internal/presentation/tui"
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/observability"
	"github.com/aretw0/rewind/pkg/session"
)

// RunOptions configures an interactive session.
type RunOptions struct {
	Config    *domain.Config
	Name      string
	SessionID string // empty runs an ephemeral machine
	Backend   *Backend
	Logger    *slog.Logger

	Input        io.Reader
	Output       io.Writer
	Interactive  bool // banner and markdown help
	Headless     bool
	MaxInputSize int
}

// RunREPL drives a machine from line commands. With a session id every
// command is applied to the stored session under its lock, so changes made
// by other processes are picked up, and the result is saved after every change.
func RunREPL(ctx context.Context, opts RunOptions) error {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	machineOpts := []rewind.Option{
		rewind.WithName(opts.Name),
		rewind.WithLogger(opts.Logger),
		rewind.WithLifecycleHooks(observability.LoggingHooks(opts.Logger)),
	}

	r := rewind.NewRunner(opts.Input, opts.Output)
	r.Headless = opts.Headless
	r.MaxInputSize = opts.MaxInputSize
	if opts.Interactive {
		r.Renderer = tui.NewRenderer()
		tui.PrintBanner(opts.Output)
	}

	if opts.SessionID == "" {
		m, err := rewind.New(opts.Config, machineOpts...)
		if err != nil {
			return err
		}
		return r.Run(m)
	}

	mgr := session.NewManager(opts.Config, opts.Backend.Store,
		session.WithLocker(opts.Backend.Locker),
		session.WithLogger(opts.Logger),
		session.WithMachineOptions(machineOpts...),
	)
	m, err := mgr.LoadOrStart(ctx, opts.SessionID)
	if err != nil {
		return err
	}
	opts.Logger.Info("session active", "session_id", opts.SessionID, "state", m.State())

	r.Apply = func(fn func(*rewind.Machine) error) (*rewind.Machine, error) {
		return mgr.Apply(ctx, opts.SessionID, fn)
	}
	return r.Run(m)
}
