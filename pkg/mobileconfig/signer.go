package mobileconfig

import (
	"betblocker/pkg/logger"
	"betblocker/pkg/metrics"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// SignedHeader tells clients whether the served document is signed.
	SignedHeader = "X-Profile-Signed"

	defaultSignCommand = "openssl"
	defaultSignTimeout = 15 * time.Second
	maxDiagnosticBytes = 4096
	signWaitDelay      = time.Second
)

// Document is the result of signing: Body is the signed artifact when Signed
// is true and the untouched input otherwise.
type Document struct {
	Body   []byte
	Signed bool
}

// SignerOptions locate the signing material and the signing tool.
type SignerOptions struct {
	CertPath  string
	KeyPath   string
	ChainPath string
	// Command is the openssl-compatible binary used for "smime -sign".
	Command string
	Timeout time.Duration
}

// Signer signs configuration documents with an external tool. Signing is
// best-effort: every failure degrades to returning the unsigned input.
type Signer struct {
	opts SignerOptions
}

// NewSigner constructs a Signer.
func NewSigner(opts SignerOptions) *Signer {
	if opts.Command == "" {
		opts.Command = defaultSignCommand
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultSignTimeout
	}

	return &Signer{opts: opts}
}

// Configured reports whether certificate and key paths are both set.
func (s *Signer) Configured() bool {
	return s.opts.CertPath != "" && s.opts.KeyPath != ""
}

type material struct {
	cert, key, chain []byte
}

// Sign never fails. It returns Document{Signed: false} with the input
// unchanged when material is missing or unreadable, or the tool fails.
func (s *Signer) Sign(ctx context.Context, unsigned []byte) Document {
	fallback := Document{Body: unsigned}
	ctx = logger.Named(ctx, "signer")

	if !s.Configured() {
		metrics.ObserveSign(metrics.SignOutcomeSkipped)

		return fallback
	}

	m, err := s.loadMaterial()
	if err != nil {
		logger.Warn(ctx, "could not load signing material, serving unsigned profile", zap.Error(err))
		metrics.ObserveSign(metrics.SignOutcomeFallback)

		return fallback
	}

	signed, err := s.invoke(ctx, m, unsigned)
	if err != nil {
		logger.Warn(ctx, "profile signing failed, serving unsigned profile", zap.Error(err))
		metrics.ObserveSign(metrics.SignOutcomeFallback)

		return fallback
	}
	metrics.ObserveSign(metrics.SignOutcomeSigned)

	return Document{Body: signed, Signed: true}
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", filepath.Base(path))
	}
	defer func() {
		_ = f.Close()
	}()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filepath.Base(path))
	}

	return b, nil
}

func (s *Signer) loadMaterial() (material, error) {
	var m material
	var err error

	if m.cert, err = readFile(s.opts.CertPath); err != nil {
		return material{}, err
	}
	if m.key, err = readFile(s.opts.KeyPath); err != nil {
		return material{}, err
	}
	if s.opts.ChainPath != "" {
		if m.chain, err = readFile(s.opts.ChainPath); err != nil {
			return material{}, err
		}
	}

	return m, nil
}

// writeMaterial stores a snapshot of the material in dir and returns the tool arguments.
func writeMaterial(dir string, m material) ([]string, error) {
	certPath := filepath.Join(dir, "signer.pem")
	keyPath := filepath.Join(dir, "signer.key")
	if err := os.WriteFile(certPath, m.cert, 0o600); err != nil {
		return nil, errors.Wrap(err, "write certificate")
	}
	if err := os.WriteFile(keyPath, m.key, 0o600); err != nil {
		return nil, errors.Wrap(err, "write key")
	}

	args := []string{"smime", "-sign", "-signer", certPath, "-inkey", keyPath}
	if len(m.chain) > 0 {
		chainPath := filepath.Join(dir, "chain.pem")
		if err := os.WriteFile(chainPath, m.chain, 0o600); err != nil {
			return nil, errors.Wrap(err, "write chain")
		}
		args = append(args, "-certfile", chainPath)
	}

	return append(args, "-nodetach", "-outform", "der"), nil
}

// invoke runs the tool with the input on stdin. stdin, stdout and stderr are
// serviced concurrently; Wait runs only after both readers reach EOF.
func (s *Signer) invoke(ctx context.Context, m material, unsigned []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "betblocker-sign-*")
	if err != nil {
		return nil, errors.Wrap(err, "create temp dir")
	}
	defer func() {
		_ = os.RemoveAll(dir)
	}()

	args, err := writeMaterial(dir, m)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var out, diag bytes.Buffer
	cmd := exec.CommandContext(ctx, s.opts.Command, args...) //nolint: gosec
	cmd.Stdout = &out
	cmd.Stderr = &diag
	// Children of a wrapper script may keep the output pipes open after the
	// tool is killed; WaitDelay bounds how long Wait drains them.
	cmd.WaitDelay = signWaitDelay

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "stdin pipe")
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "start signing tool")
	}

	var g errgroup.Group
	g.Go(func() error {
		defer func() {
			_ = stdin.Close()
		}()
		_, err := stdin.Write(unsigned)

		return errors.Wrap(err, "write stdin")
	})
	// Wait closes the stdin pipe once the tool is gone, which unblocks a
	// writer stuck on a tool that stopped reading.
	waitErr := cmd.Wait()
	streamErr := g.Wait()

	var result error
	switch {
	case waitErr != nil:
		result = errors.Wrap(waitErr, "signing tool exited")
	case streamErr != nil:
		result = streamErr
	case out.Len() == 0:
		result = errors.New("signing tool produced no output")
	}

	if diag.Len() > 0 {
		d := diag.Bytes()
		if len(d) > maxDiagnosticBytes {
			d = d[:maxDiagnosticBytes]
		}
		if result != nil {
			logger.Warn(ctx, "signing tool diagnostics", zap.ByteString("stderr", d))
		} else {
			logger.Debug(ctx, "signing tool diagnostics", zap.ByteString("stderr", d))
		}
	}

	if result != nil {
		return nil, result
	}

	return out.Bytes(), nil
}
