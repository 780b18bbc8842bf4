// Package hostdir provides the host-alias directory for sshfan.
package hostdir

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Entry represents a single alias registered in the directory.
type Entry struct {
	Alias string // Alias naming the remote endpoint
	User  string // Login user, empty if the source never assigned one
}

// Directory maps host aliases to login users. It is built once, passed by
// reference to the dispatcher, and immutable afterwards.
type Directory struct {
	order []string
	users map[string]string
}

// New creates an empty directory.
func New() *Directory {
	return &Directory{
		users: make(map[string]string),
	}
}

// Load builds a directory from the file at path. A missing or unreadable
// file yields an empty directory, never an error: every identifier then
// falls back to the literal-hostname case.
func Load(path string) *Directory {
	d := New()

	file, err := os.Open(path)
	if err != nil {
		return d
	}
	defer file.Close()

	d.Parse(file)
	return d
}

// parser state: either between aliases, or inside an alias scope awaiting
// its User line.
type parseState int

const (
	stateIdle parseState = iota
	stateAwaitingUser
)

// Parse reads an ssh_config style source line by line and registers the
// Host/User pairs it finds. Unknown directives are ignored. An alias whose
// scope ends without a User line is retained with an empty user, so it still
// resolves and connects with the transport's default username.
func (d *Directory) Parse(r io.Reader) {
	state := stateIdle
	current := ""

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := splitDirective(scanner.Text())
		if !ok {
			continue
		}

		switch key {
		case "Host":
			d.Add(value, "")
			state = stateAwaitingUser
			current = value
		case "User":
			if state == stateAwaitingUser {
				d.users[current] = value
				state = stateIdle
				current = ""
			}
		}
	}
}

// splitDirective strips comments and whitespace from a configuration line
// and splits it into a key and a value. ok is false for lines that carry
// no directive (blank, comment-only, or missing a value).
func splitDirective(line string) (key, value string, ok bool) {
	line = stripComment(line)

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", "", false
	}

	return fields[0], strings.Join(fields[1:], " "), true
}

// stripComment removes everything from the first unescaped '#' onward and
// unescapes any '\#' sequences before it.
func stripComment(line string) string {
	var b strings.Builder
	escaped := false

	for _, r := range line {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '#':
			return b.String()
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// Add registers an alias. A user assignment overwrites an earlier one for
// the same alias; the alias keeps its original position in the directory
// order. Used by Parse and by inventory merging.
func (d *Directory) Add(alias, user string) {
	if alias == "" {
		return
	}
	if _, known := d.users[alias]; !known {
		d.order = append(d.order, alias)
		d.users[alias] = user
		return
	}
	if user != "" {
		d.users[alias] = user
	}
}

// Resolve expands a host identifier into the aliases it names. An
// identifier matches an alias exactly, or as a host group: the identifier
// followed by exactly one digit, optionally separated by an underscore.
// Matches come back in directory order. An identifier matching nothing
// resolves to itself, treated as a literal hostname.
func (d *Directory) Resolve(identifier string) []string {
	var matches []string
	for _, alias := range d.order {
		if groupMember(identifier, alias) {
			matches = append(matches, alias)
		}
	}

	if len(matches) == 0 {
		return []string{identifier}
	}
	return matches
}

// groupMember reports whether alias belongs to the host group named by base.
func groupMember(base, alias string) bool {
	if alias == base {
		return true
	}
	if !strings.HasPrefix(alias, base) {
		return false
	}

	suffix := strings.TrimPrefix(alias, base)
	if len(suffix) == 2 && suffix[0] == '_' {
		suffix = suffix[1:]
	}
	return len(suffix) == 1 && suffix[0] >= '0' && suffix[0] <= '9'
}

// UserFor returns the login user recorded for alias. ok is false when the
// alias is unknown or was registered without a user; the session then
// defers to the transport's default username.
func (d *Directory) UserFor(alias string) (user string, ok bool) {
	user, known := d.users[alias]
	return user, known && user != ""
}

// Entries returns the directory contents in registration order.
func (d *Directory) Entries() []Entry {
	entries := make([]Entry, 0, len(d.order))
	for _, alias := range d.order {
		entries = append(entries, Entry{Alias: alias, User: d.users[alias]})
	}
	return entries
}

// Len returns the number of registered aliases.
func (d *Directory) Len() int {
	return len(d.order)
}
