// Package sshx implements the transport collaborator over
// golang.org/x/crypto/ssh. The engine only consumes the Dial/Start/Wait
// primitives; the protocol itself lives in the library.
package sshx

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/user"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"sshfan/internal/logging"
	"sshfan/internal/session"
)

// Dialer opens SSH connections. It implements session.Dialer.
type Dialer struct {
	logger         *logging.Logger
	connectTimeout time.Duration
	identityFile   string
}

// NewDialer creates a dialer. identityFile may be empty; agent
// authentication is always tried first.
func NewDialer(logger *logging.Logger, connectTimeout time.Duration, identityFile string) *Dialer {
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}
	return &Dialer{
		logger:         logger,
		connectTimeout: connectTimeout,
		identityFile:   identityFile,
	}
}

// Dial establishes one SSH connection to host as user. An empty user
// defers to the local username, matching ssh's default behavior.
func (d *Dialer) Dial(ctx context.Context, host, userName string) (session.Conn, error) {
	config, err := d.buildConfig(userName)
	if err != nil {
		return nil, fmt.Errorf("failed to build SSH config: %w", err)
	}

	address := host
	if !strings.Contains(address, ":") {
		address = net.JoinHostPort(host, "22")
	}

	dialer := &net.Dialer{Timeout: d.connectTimeout}
	netConn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, address, config)
	if err != nil {
		netConn.Close()
		return nil, fmt.Errorf("SSH handshake failed for %s: %w", address, err)
	}

	return &conn{client: ssh.NewClient(sshConn, chans, reqs)}, nil
}

// conn is one SSH connection running at most one command.
type conn struct {
	client *ssh.Client
	sess   *ssh.Session
}

// Start opens the exec channel and requests execution of command.
func (c *conn) Start(command string) (stdout, stderr io.Reader, err error) {
	sess, err := c.client.NewSession()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	stdout, err = sess.StdoutPipe()
	if err != nil {
		sess.Close()
		return nil, nil, fmt.Errorf("failed to open stdout: %w", err)
	}
	stderr, err = sess.StderrPipe()
	if err != nil {
		sess.Close()
		return nil, nil, fmt.Errorf("failed to open stderr: %w", err)
	}

	if err := sess.Start(command); err != nil {
		sess.Close()
		return nil, nil, fmt.Errorf("failed to start command: %w", err)
	}

	c.sess = sess
	return stdout, stderr, nil
}

// Wait blocks until the remote command finishes. A non-nil return carries
// the exit status or the disconnect that ended the channel.
func (c *conn) Wait() error {
	if c.sess == nil {
		return nil
	}
	return c.sess.Wait()
}

// Close tears down the channel and the connection.
func (c *conn) Close() error {
	if c.sess != nil {
		_ = c.sess.Close()
		c.sess = nil
	}
	return c.client.Close()
}

// buildConfig creates an SSH client configuration with the available
// authentication methods.
func (d *Dialer) buildConfig(userName string) (*ssh.ClientConfig, error) {
	if userName == "" {
		current, err := user.Current()
		if err != nil {
			return nil, fmt.Errorf("no user given and local user unknown: %w", err)
		}
		userName = current.Username
	}

	authMethods, err := d.authMethods()
	if err != nil {
		return nil, err
	}

	return &ssh.ClientConfig{
		User:            userName,
		Auth:            authMethods,
		HostKeyCallback: d.hostKeyCallback(),
		Timeout:         d.connectTimeout,
	}, nil
}

// authMethods returns authentication methods in order of preference:
// agent first, then an explicit identity file.
func (d *Dialer) authMethods() ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if agentAuth := agentAuth(); agentAuth != nil {
		methods = append(methods, agentAuth)
	}

	if d.identityFile != "" {
		keyAuth, err := keyAuth(d.identityFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load identity file %s: %w", d.identityFile, err)
		}
		methods = append(methods, keyAuth)
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("no authentication methods available")
	}

	return methods, nil
}

// agentAuth returns SSH agent authentication if an agent is reachable.
func agentAuth() ssh.AuthMethod {
	if agentConn, err := net.Dial("unix", os.Getenv("SSH_AUTH_SOCK")); err == nil {
		return ssh.PublicKeysCallback(agent.NewClient(agentConn).Signers)
	}
	return nil
}

// keyAuth returns public key authentication from a private key file.
func keyAuth(keyPath string) (ssh.AuthMethod, error) {
	keyBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return ssh.PublicKeys(signer), nil
}

// hostKeyCallback tries known_hosts files and falls back to accepting
// unknown keys with a logged warning, since a fan-out tool routinely
// reaches hosts the operator has never connected to.
func (d *Dialer) hostKeyCallback() ssh.HostKeyCallback {
	if homeDir, err := os.UserHomeDir(); err == nil {
		knownHostsFile := homeDir + "/.ssh/known_hosts"
		if _, err := os.Stat(knownHostsFile); err == nil {
			if callback, err := knownhosts.New(knownHostsFile); err == nil {
				return callback
			}
		}
	}

	if callback, err := knownhosts.New("/etc/ssh/ssh_known_hosts"); err == nil {
		return callback
	}

	return ssh.HostKeyCallback(func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		if d.logger != nil {
			d.logger.Info("host key verification disabled", "host", hostname)
		}
		return nil
	})
}
