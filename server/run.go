package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/abiiranathan/html6-lsp/config"
)

// Stdio joins a reader and a writer into the stream Run expects. Close is a
// no-op so the process's standard streams stay open.
func Stdio(r io.Reader, w io.Writer) io.ReadWriteCloser {
	return &stdioReadWriteCloser{read: r, write: w}
}

type stdioReadWriteCloser struct {
	read  io.Reader
	write io.Writer
}

func (s *stdioReadWriteCloser) Read(p []byte) (n int, err error) {
	return s.read.Read(p)
}

func (s *stdioReadWriteCloser) Write(p []byte) (n int, err error) {
	return s.write.Write(p)
}

func (s *stdioReadWriteCloser) Close() error {
	return nil
}

// Run serves the language server protocol over rwc until the client sends
// exit, the stream ends, or ctx is cancelled.
//
// Parameters:
//   - ctx: cancels the session
//   - rwc: the framed JSON-RPC stream, usually Stdio(os.Stdin, os.Stdout)
//   - cfg: diagnostics, completion and logging settings
//   - logger: receives server logs; must not write to rwc
//
// Returns: nil on a clean exit or end of input, otherwise the stream error.
func Run(ctx context.Context, rwc io.ReadWriteCloser, cfg config.Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(rwc))
	client := protocol.ClientDispatcher(conn, logger.Named("client"))

	srv, err := New(client, cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	exited := make(chan struct{})
	var once sync.Once
	srv.onExit = func() {
		once.Do(func() { close(exited) })
		_ = conn.Close()
	}

	conn.Go(ctx, protocol.Handlers(protocol.ServerHandler(srv, jsonrpc2.MethodNotFoundHandler)))
	logger.Info("language server started", zap.String("version", Version))

	// Closing a Stdio stream does not interrupt a pending read, so exit and
	// cancellation return without waiting for the read loop.
	select {
	case <-conn.Done():
	case <-exited:
		logger.Info("language server stopped")
		return nil
	case <-ctx.Done():
		_ = conn.Close()
		return ctx.Err()
	}

	err = conn.Err()
	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, os.ErrClosed):
		logger.Info("language server stopped")
		return nil
	default:
		return fmt.Errorf("server: %w", err)
	}
}
