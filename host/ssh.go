package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"al.essio.dev/pkg/shellescape"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
	"golang.org/x/term"

	"github.com/fornellas/slogxt/log"
)

// Ssh interacts with a remote machine connecting to it via SSH protocol.
type Ssh struct {
	cmdHost
	Hostname string
	client   *ssh.Client
	envPath  string
}

func sshGetSigners(ctx context.Context) ([]ssh.Signer, error) {
	logger := log.MustLogger(ctx)

	signers := []ssh.Signer{}
	home, err := os.UserHomeDir()
	if err != nil {
		return signers, err
	}

	for _, privateKeySuffix := range []string{
		".ssh/id_rsa",
		".ssh/id_ecdsa",
		".ssh/id_ecdsa_sk",
		".ssh/id_ed25519",
		".ssh/id_ed25519_sk",
	} {
		privateKeyPath := filepath.Join(home, privateKeySuffix)
		privateKeyBytes, err := os.ReadFile(privateKeyPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return signers, fmt.Errorf("unable to read %s: %w", privateKeyPath, err)
			}
			logger.Debug("No private key found", "path", privateKeyPath)
			continue
		}
		signer, err := ssh.ParsePrivateKey(privateKeyBytes)
		if err != nil {
			if errors.Is(err, &ssh.PassphraseMissingError{}) {
				state, err := term.MakeRaw(int(os.Stdin.Fd()))
				if err != nil {
					return nil, err
				}
				defer term.Restore(int(os.Stdin.Fd()), state)

				fmt.Printf("Passphrase for %s: ", privateKeyPath)
				passphrase, err := term.ReadPassword(int(os.Stdin.Fd()))
				if err != nil {
					return nil, err
				}
				fmt.Print("\n\r")

				signer, err = ssh.ParsePrivateKeyWithPassphrase(privateKeyBytes, passphrase)
				if err != nil {
					return signers, fmt.Errorf("unable to parse %s: %w", privateKeyPath, err)
				}
			} else {
				return signers, fmt.Errorf("unable to parse %s: %w", privateKeyPath, err)
			}
		}
		logger.Debug("Using private key", "path", privateKeyPath)
		signers = append(signers, signer)
	}
	return signers, nil
}

func sshGetHostKeyCallback(ctx context.Context, fingerprint string) (ssh.HostKeyCallback, error) {
	logger := log.MustLogger(ctx)

	var fingerprintHostKeyCallback ssh.HostKeyCallback
	if fingerprint != "" {
		if !strings.HasPrefix(fingerprint, "SHA256:") {
			return nil, fmt.Errorf(
				"fingerprint must be an unpadded base64 encoded sha256 hash as introduced by https://www.openssh.com/txt/release-6.8, eg: %s",
				"SHA256:uwhOoCVTS7b3wlX1popZs5k609OaD1vQurHU34cCWPk",
			)
		}
		logger.Debug("Using fingerprint")
		fingerprintHostKeyCallback = func(hostname string, remote net.Addr, hostPublicKey ssh.PublicKey) error {
			hostFingerprint := ssh.FingerprintSHA256(hostPublicKey)
			if fingerprint != hostFingerprint {
				return fmt.Errorf("expected host fingerprint %s, got %s", fingerprint, hostFingerprint)
			}
			return nil
		}
	}

	files := []string{}
	systemKnownHosts := "/etc/ssh/ssh_known_hosts"
	if _, err := os.Stat(systemKnownHosts); err == nil {
		files = append(files, systemKnownHosts)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	userKnownHosts := filepath.Join(home, ".ssh/known_hosts")
	if _, err := os.Stat(userKnownHosts); err == nil {
		files = append(files, userKnownHosts)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	knownHostsHostKeyCallback, err := knownhosts.New(files...)
	if err != nil {
		return nil, err
	}

	hostKeyCallback := func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		if fingerprintHostKeyCallback != nil {
			if err := fingerprintHostKeyCallback(hostname, remote, key); err == nil {
				logger.Debug("Server key verified by fingerprint")
				return nil
			}
		}
		err := knownHostsHostKeyCallback(hostname, remote, key)
		if err == nil {
			logger.Debug("Server key verified by known_hosts")
		}
		return err
	}

	return hostKeyCallback, nil
}

func sshGetPasswordCallbackPromptFn() func() (secret string, err error) {
	return func() (secret string, err error) {
		state, err := term.MakeRaw(int(os.Stdin.Fd()))
		if err != nil {
			return "", err
		}
		defer term.Restore(int(os.Stdin.Fd()), state)

		fmt.Printf("Password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return "", err
		}
		fmt.Print("\n\r")
		return string(password), nil
	}
}

// NewSsh creates a new Ssh host.
// The connection is authenticated with the local ssh keys, or interactively with a
// password. The configuration resolution phase is the only moment prompting may
// happen; once the host is constructed, no interaction ever occurs.
func NewSsh(
	ctx context.Context,
	usr,
	fingerprint,
	hostname string,
	port int,
	timeout time.Duration,
) (*Ssh, error) {
	ctx, _ = log.MustWithGroupAttrs(ctx, "🖧 SSH",
		"user", usr,
		"host", hostname,
		"port", port,
	)

	signers, err := sshGetSigners(ctx)
	if err != nil {
		return nil, err
	}
	hostKeyCallback, err := sshGetHostKeyCallback(ctx, fingerprint)
	if err != nil {
		return nil, err
	}

	retries := 3
	client, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", hostname, port), &ssh.ClientConfig{
		User: usr,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signers...),
			ssh.RetryableAuthMethod(ssh.PasswordCallback(sshGetPasswordCallbackPromptFn()), retries),
		},
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	sshHost := &Ssh{
		Hostname: hostname,
		client:   client,
	}
	sshHost.cmdHost.BaseHost = sshHost

	if err := sshHost.setEnvPath(ctx); err != nil {
		return nil, err
	}

	return sshHost, nil
}

var authorityRegexp = regexp.MustCompile(`(|((?P<user>[^;@]+)(|;fingerprint=(?P<fingerprint>[^@]+))@))(?P<host>[^:|@]+)(|:(?P<port>[0-9]+))$`)

func parseAuthority(authority string) (string, string, string, int, error) {
	matches := authorityRegexp.FindStringSubmatch(authority)
	if matches == nil {
		return "", "", "", 0, errors.New(
			"invalid URI format, it must match [<user>[;fingerprint=<host-key fingerprint>]@]<host>[:<port>]",
		)
	}
	usr := matches[authorityRegexp.SubexpIndex("user")]
	if usr == "" {
		currentUser, err := user.Current()
		if err != nil {
			return "", "", "", 0, err
		}
		usr = currentUser.Username
	}
	fingerprint := matches[authorityRegexp.SubexpIndex("fingerprint")]
	hostname := matches[authorityRegexp.SubexpIndex("host")]
	port := 22
	portStr := matches[authorityRegexp.SubexpIndex("port")]
	if portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			return "", "", "", 0, fmt.Errorf("invalid port number: %w", err)
		}
	}

	return usr, fingerprint, hostname, port, nil
}

// DefaultSshTCPConnectTimeout is the maximum amount of time for the TCP connection
// to establish.
var DefaultSshTCPConnectTimeout = time.Second * 30

// NewSshAuthority creates a new Ssh from given authority in the format
// [<user>[;fingerprint=<host-key fingerprint>]@]<host>[:<port>]
// based on https://www.iana.org/assignments/uri-schemes/prov/ssh
func NewSshAuthority(ctx context.Context, authority string) (*Ssh, error) {
	usr, fingerprint, hostname, port, err := parseAuthority(authority)
	if err != nil {
		return nil, err
	}
	return NewSsh(ctx, usr, fingerprint, hostname, port, DefaultSshTCPConnectTimeout)
}

func (s *Ssh) runEnv(ctx context.Context, cmd Cmd, ignoreCmdEnv bool) (WaitStatus, string, string, error) {
	session, err := s.client.NewSession()
	if err != nil {
		return WaitStatus{}, "", "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	if cmd.Dir == "" {
		cmd.Dir = "/tmp"
	}
	if !filepath.IsAbs(cmd.Dir) {
		return WaitStatus{}, "", "", &fs.PathError{
			Op:   "Run",
			Path: cmd.Dir,
			Err:  errors.New("path must be absolute"),
		}
	}

	shellCmdArgs := []string{shellescape.Quote(cmd.Path)}
	for _, arg := range cmd.Args {
		shellCmdArgs = append(shellCmdArgs, shellescape.Quote(arg))
	}
	shellCmdStr := strings.Join(shellCmdArgs, " ")

	var remoteCmdStr string
	if ignoreCmdEnv {
		remoteCmdStr = fmt.Sprintf(
			"cd %s && exec %s", shellescape.Quote(cmd.Dir), shellCmdStr,
		)
	} else {
		if len(cmd.Env) == 0 {
			cmd.Env = []string{"LANG=en_US.UTF-8"}
			if s.envPath != "" {
				cmd.Env = append(cmd.Env, s.envPath)
			}
		}
		envStrs := []string{}
		for _, nameValue := range cmd.Env {
			envStrs = append(envStrs, shellescape.Quote(nameValue))
		}
		remoteCmdStr = fmt.Sprintf(
			"cd %s && exec env --ignore-environment %s %s",
			shellescape.Quote(cmd.Dir), strings.Join(envStrs, " "), shellCmdStr,
		)
	}

	session.Stdin = bytes.NewReader(cmd.Stdin)
	var stdoutBuffer, stderrBuffer bytes.Buffer
	session.Stdout = &stdoutBuffer
	session.Stderr = &stderrBuffer

	doneCh := make(chan struct{})
	defer close(doneCh)
	go func() {
		select {
		case <-ctx.Done():
			session.Close()
		case <-doneCh:
		}
	}()

	args := []string{"sh", "-c", remoteCmdStr}
	var cmdStrBdr strings.Builder
	fmt.Fprintf(&cmdStrBdr, "%s", shellescape.Quote(args[0]))
	for _, arg := range args[1:] {
		fmt.Fprintf(&cmdStrBdr, " %s", shellescape.Quote(arg))
	}

	var exitCode int
	var exited bool
	var signal string
	if err := session.Run(cmdStrBdr.String()); err == nil {
		exitCode = 0
		exited = true
	} else {
		var exitError *ssh.ExitError
		if errors.As(err, &exitError) {
			exitCode = exitError.ExitStatus()
			exited = exitError.Signal() == ""
			signal = exitError.Signal()
		} else {
			return WaitStatus{}, stdoutBuffer.String(), stderrBuffer.String(),
				fmt.Errorf("failed to run %s: %w", cmd, err)
		}
	}

	return WaitStatus{
		ExitCode: exitCode,
		Exited:   exited,
		Signal:   signal,
	}, stdoutBuffer.String(), stderrBuffer.String(), nil
}

func (s *Ssh) Run(ctx context.Context, cmd Cmd) (WaitStatus, string, string, error) {
	return s.runEnv(ctx, cmd, false)
}

// setEnvPath fetches the default PATH from the remote shell, so commands run
// without explicit Env still resolve binaries the same way a login shell would.
func (s *Ssh) setEnvPath(ctx context.Context) error {
	cmd := Cmd{Path: "env"}
	waitStatus, stdout, stderr, err := s.runEnv(ctx, cmd, true)
	if err != nil {
		return err
	}
	if !waitStatus.Success() {
		return fmt.Errorf(
			"failed to run %s: %s\nstdout:\n%s\nstderr:\n%s",
			cmd, waitStatus.String(), stdout, stderr,
		)
	}
	for _, line := range strings.Split(stdout, "\n") {
		if strings.HasPrefix(line, "PATH=") {
			s.envPath = line
			break
		}
	}
	return nil
}

func (s *Ssh) String() string {
	return s.Hostname
}

func (s *Ssh) Type() string {
	return "ssh"
}

func (s *Ssh) Close(ctx context.Context) error {
	return s.client.Close()
}
