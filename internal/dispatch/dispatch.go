// Package dispatch implements the fan-out engine for sshfan: it expands
// (command x host) pairs into sessions, starts them all, and drives a
// single loop over the shared event channel until every session is done.
package dispatch

import (
	"context"
	"time"

	"sshfan/internal/errors"
	"sshfan/internal/hostdir"
	"sshfan/internal/logging"
	"sshfan/internal/output"
	"sshfan/internal/progress"
	"sshfan/internal/session"
	"sshfan/internal/template"
)

// Summary reports what happened during one run.
type Summary struct {
	Hosts     int           // Resolved hosts
	Sessions  int           // Sessions attempted (commands x hosts)
	Completed int           // Sessions that ran to channel close
	Failed    int           // Sessions that failed at startup
	Duration  time.Duration // Wall time for the whole run
}

// Dispatcher coordinates all sessions of one run. The active-session set is
// mutated only here: inserts during startup, removals in the drive loop.
type Dispatcher struct {
	dir     *hostdir.Directory
	dialer  session.Dialer
	printer *output.Printer
	logger  *logging.Logger
	tracker *progress.Tracker
}

// New creates a dispatcher. The directory and dialer are shared across all
// sessions of a run; each session still gets its own connection.
func New(dir *hostdir.Directory, dialer session.Dialer, printer *output.Printer, logger *logging.Logger) *Dispatcher {
	return &Dispatcher{
		dir:     dir,
		dialer:  dialer,
		printer: printer,
		logger:  logger,
	}
}

// SetProgress attaches an optional progress tracker, updated as sessions
// finish or fail.
func (d *Dispatcher) SetProgress(tracker *progress.Tracker) {
	d.tracker = tracker
}

// Run executes every command on every resolved host and blocks until all
// sessions have completed or failed. Per-session failures are reported and
// isolated; they never abort the run. Run returns early only when ctx is
// canceled.
func (d *Dispatcher) Run(ctx context.Context, hostIdentifiers, commands []string) (Summary, error) {
	start := time.Now()
	summary := Summary{}

	hosts := d.resolveHosts(hostIdentifiers)
	summary.Hosts = len(hosts)
	summary.Sessions = len(hosts) * len(commands)

	if d.logger != nil {
		d.logger.LogRunStart(len(hosts), len(commands), summary.Sessions)
	}

	events := make(chan session.Event, 4*summary.Sessions+16)
	collector := errors.NewCollector()

	// Startup phase: every pair is attempted before the drive loop begins,
	// in command-major, host-minor order.
	active := make(map[*session.Session]struct{})
	for _, command := range commands {
		for _, host := range hosts {
			s := d.startSession(ctx, host, command, events, collector)
			if s != nil {
				active[s] = struct{}{}
			} else {
				summary.Failed++
				if d.tracker != nil {
					d.tracker.Update(false)
				}
			}
		}
	}

	// Drive loop: consume events until the active set is empty. Each event
	// is handled by its own session; a Closed event removes the session.
	for len(active) > 0 {
		select {
		case ev := <-events:
			if _, ok := active[ev.Session]; !ok {
				continue
			}
			if ev.Session.Handle(ev) {
				delete(active, ev.Session)
				summary.Completed++
				if d.tracker != nil {
					d.tracker.Update(true)
				}
			}
		case <-ctx.Done():
			summary.Duration = time.Since(start)
			return summary, ctx.Err()
		}
	}

	summary.Duration = time.Since(start)
	if d.logger != nil {
		d.logger.LogRunComplete(summary.Completed, summary.Failed, summary.Duration)
		if collector.Count() > 0 {
			d.logger.Error("run finished with startup failures", "summary", collector.Summary())
		}
	}

	return summary, nil
}

// resolveHosts expands every requested identifier through the directory and
// flattens the groups into one host list. Duplicates are allowed and order
// is preserved.
func (d *Dispatcher) resolveHosts(identifiers []string) []string {
	var hosts []string
	for _, identifier := range identifiers {
		resolved := d.dir.Resolve(identifier)
		if d.logger != nil {
			d.logger.LogResolve(identifier, len(resolved))
		}
		hosts = append(hosts, resolved...)
	}
	return hosts
}

// startSession creates and starts one session. Startup failures are logged
// and collected; the session is excluded from the active set and nil is
// returned, leaving every other pair to proceed.
func (d *Dispatcher) startSession(ctx context.Context, host, command string, events chan<- session.Event, collector *errors.Collector) *session.Session {
	user, _ := d.dir.UserFor(host)

	s := session.New(host, user, d.dialer, events, d.printer, d.logger)

	expanded, err := d.expandCommand(command, host, user)
	if err == nil {
		err = s.Start(ctx, expanded)
	} else {
		d.printer.ErrorLine(host, err.Error())
	}
	if err != nil {
		collector.Add(err)
		if d.logger != nil {
			d.logger.LogSessionError(host, err, errors.Classify(err).Type.String())
		}
		return nil
	}

	return s
}

// expandCommand runs the per-target template pass when the command carries
// template syntax; plain commands pass through verbatim.
func (d *Dispatcher) expandCommand(command, host, user string) (string, error) {
	if !template.IsTemplate(command) {
		return command, nil
	}
	return template.Expand(command, template.Context{Host: host, User: user})
}
