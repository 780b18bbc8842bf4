// Package session implements the per-host remote execution session for
// sshfan. A session owns one transport connection running exactly one
// command on one host and translates the connection's raw stdout/stderr
// chunks into prefixed, line-buffered output events.
package session

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"sshfan/internal/logging"
	"sshfan/internal/output"
)

// EventKind tags the three kinds of transport events a session produces.
type EventKind int

const (
	// Data carries a chunk of remote stdout.
	Data EventKind = iota

	// ExtendedData carries a chunk of remote stderr.
	ExtendedData

	// Closed marks the end of the session's channel.
	Closed
)

// Event is one transport event, tagged with the session that produced it.
// Events from one session arrive on the channel in the order the transport
// produced them; there is no ordering across sessions.
type Event struct {
	Session *Session
	Kind    EventKind
	Payload []byte
	Err     error // wait/exit error accompanying Closed, nil otherwise
}

// Dialer opens transport connections to remote hosts. user may be empty,
// in which case the transport's default username applies.
type Dialer interface {
	Dial(ctx context.Context, host, user string) (Conn, error)
}

// Conn is one remote connection executing at most one command. Connections
// are never shared across sessions, even to the same host.
type Conn interface {
	// Start requests execution of command and returns the remote stdout
	// and stderr streams.
	Start(command string) (stdout, stderr io.Reader, err error)

	// Wait blocks until the remote command finishes.
	Wait() error

	// Close tears down the connection.
	Close() error
}

// Session represents one in-flight (host, command, user) execution.
type Session struct {
	host    string
	user    string
	command string

	dialer Dialer
	conn   Conn

	events  chan<- Event
	printer *output.Printer
	logger  *logging.Logger

	// Partial-line buffers per stream, indexed by Data/ExtendedData.
	// Chunk boundaries do not align with line boundaries, so lines are
	// only flushed once complete; the remainder waits for the next chunk.
	partial [2][]byte

	busy    bool
	started time.Time
}

// New creates a session for one (host, command) pair. The connection is
// established lazily by Start.
func New(host, user string, dialer Dialer, events chan<- Event, printer *output.Printer, logger *logging.Logger) *Session {
	return &Session{
		host:    host,
		user:    user,
		dialer:  dialer,
		events:  events,
		printer: printer,
		logger:  logger,
	}
}

// Host returns the host alias this session executes on.
func (s *Session) Host() string {
	return s.host
}

// Command returns the command this session executes.
func (s *Session) Command() string {
	return s.command
}

// Busy reports whether the session still has work pending.
func (s *Session) Busy() bool {
	return s.busy
}

// Start dials the host and requests execution of command. A failure here is
// fatal for this session only: it is reported on the output stream and the
// session stays out of the active set, leaving sibling sessions untouched.
// Once Start succeeds the session pumps transport events into the shared
// event channel until the channel closes.
func (s *Session) Start(ctx context.Context, command string) error {
	s.command = command
	s.started = time.Now()

	conn, err := s.dialer.Dial(ctx, s.host, s.user)
	if err != nil {
		err = fmt.Errorf("connect failed: %w", err)
		s.printer.ErrorLine(s.host, err.Error())
		return err
	}
	s.conn = conn

	stdout, stderr, err := conn.Start(command)
	if err != nil {
		_ = conn.Close()
		err = fmt.Errorf("exec failed: %w", err)
		s.printer.ErrorLine(s.host, err.Error())
		return err
	}

	s.busy = true
	if s.logger != nil {
		s.logger.LogSessionStart(s.host, s.user, command)
	}

	var pumps sync.WaitGroup
	pumps.Add(2)
	go s.pump(stdout, Data, &pumps)
	go s.pump(stderr, ExtendedData, &pumps)

	go func() {
		pumps.Wait()
		waitErr := s.conn.Wait()
		_ = s.conn.Close()
		s.events <- Event{Session: s, Kind: Closed, Err: waitErr}
	}()

	return nil
}

// pump forwards raw chunks from one remote stream into the event channel.
func (s *Session) pump(r io.Reader, kind EventKind, wg *sync.WaitGroup) {
	defer wg.Done()

	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.events <- Event{Session: s, Kind: kind, Payload: chunk}
		}
		if err != nil {
			return
		}
	}
}

// Handle processes one event for this session. It must be called from the
// single control loop only; the session keeps no locks of its own. It
// returns true once the session is done and can leave the active set.
func (s *Session) Handle(ev Event) (done bool) {
	switch ev.Kind {
	case Data:
		s.consume(Data, ev.Payload, s.printer.Line)
	case ExtendedData:
		s.consume(ExtendedData, ev.Payload, s.printer.ErrorLine)
	case Closed:
		s.flush(Data, s.printer.Line)
		s.flush(ExtendedData, s.printer.ErrorLine)
		s.printer.Done(s.host)
		s.busy = false
		if s.logger != nil {
			s.logger.LogSessionDone(s.host, time.Since(s.started), ev.Err)
		}
		return true
	}
	return false
}

// consume appends a chunk to the stream's partial-line buffer and emits
// every complete line it now holds.
func (s *Session) consume(kind EventKind, chunk []byte, emit func(host, text string)) {
	buf := append(s.partial[kind], chunk...)

	for {
		i := indexNewline(buf)
		if i < 0 {
			break
		}
		emit(s.host, trimCR(string(buf[:i])))
		buf = buf[i+1:]
	}

	s.partial[kind] = buf
}

// flush emits a trailing partial line left over when the channel closes.
func (s *Session) flush(kind EventKind, emit func(host, text string)) {
	if len(s.partial[kind]) == 0 {
		return
	}
	emit(s.host, trimCR(string(s.partial[kind])))
	s.partial[kind] = nil
}

func indexNewline(b []byte) int {
	for i, c := range b {
		if c == '\n' {
			return i
		}
	}
	return -1
}

func trimCR(line string) string {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}
	return line
}
