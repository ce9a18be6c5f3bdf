package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// SSHConfig holds SSH connection details for reaching a remote gateway
type SSHConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	KeyPath  string
}

// SSHTunnel is an SSH connection that dials the gateway on the remote side
type SSHTunnel struct {
	client *ssh.Client
}

// NewSSHTunnel establishes an SSH connection
func NewSSHTunnel(cfg SSHConfig) (*SSHTunnel, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SSH host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 22
	}

	auth := authMethods(cfg)
	if len(auth) == 0 {
		return nil, fmt.Errorf("no valid SSH authentication methods found")
	}

	clientConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	address := net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port))
	slog.Debug("ssh: dialing", "addr", address, "user", cfg.User, "methods", len(auth))
	client, err := ssh.Dial("tcp", address, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to dial SSH %s: %w", address, err)
	}
	slog.Info("ssh: tunnel established", "addr", address)

	return &SSHTunnel{client: client}, nil
}

func authMethods(cfg SSHConfig) []ssh.AuthMethod {
	var methods []ssh.AuthMethod

	// Explicit key file first
	if cfg.KeyPath != "" {
		keyPath := cfg.KeyPath
		if strings.HasPrefix(keyPath, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				keyPath = filepath.Join(home, keyPath[2:])
			}
		}
		if signer, err := loadSigner(keyPath, cfg.Password); err == nil {
			methods = append(methods, ssh.PublicKeys(signer))
		} else {
			slog.Warn("ssh: skipping private key", "path", keyPath, "err", err)
		}
	}

	if socket := os.Getenv("SSH_AUTH_SOCK"); socket != "" {
		if conn, err := net.Dial("unix", socket); err == nil {
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		} else {
			slog.Warn("ssh: agent unavailable", "err", err)
		}
	}

	if cfg.Password != "" {
		methods = append(methods,
			ssh.Password(cfg.Password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = cfg.Password
				}
				return answers, nil
			}),
		)
	}
	return methods
}

func loadSigner(path, passphrase string) (ssh.Signer, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil && passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(key, []byte(passphrase))
	}
	return signer, err
}

// DialContext connects to addr from the remote end of the tunnel
func (t *SSHTunnel) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		conn, err := t.client.Dial(network, addr)
		ch <- result{conn, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			// Dial may still succeed after the caller gave up
			if res := <-ch; res.conn != nil {
				res.conn.Close()
			}
		}()
		return nil, ctx.Err()
	case res := <-ch:
		return res.conn, res.err
	}
}

// Close closes the SSH connection
func (t *SSHTunnel) Close() error {
	return t.client.Close()
}
