// Package server hosts the HTML6 diagnostics engine, tag completion and
// directive hover behind the Language Server Protocol.
package server

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fortio.org/safecast"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/abiiranathan/html6-lsp/completion"
	"github.com/abiiranathan/html6-lsp/config"
	"github.com/abiiranathan/html6-lsp/hover"
	"github.com/abiiranathan/html6-lsp/validator"
)

// Name is reported to clients in the initialize result.
const Name = "html6-lsp"

// Version is reported to clients in the initialize result.
var Version = "0.1.0"

// Server implements protocol.Server. Requests arrive one at a time from the
// connection; validations run on timers and may overlap with them.
type Server struct {
	client protocol.Client
	logger *zap.Logger
	cfg    config.Config
	engine *validator.Engine
	hover  *hover.Provider
	docs   *documentStore

	// publishMu orders the stale check and the publish of a result.
	publishMu sync.Mutex

	mu      sync.RWMutex
	root    string
	index   *completion.Index
	watcher *completion.Watcher

	// onExit is called when the client sends exit.
	onExit func()
}

// New returns a server that publishes to client. A nil logger disables
// logging.
func New(client protocol.Client, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine, err := cfg.Diagnostics.Engine()
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	return &Server{
		client: client,
		logger: logger,
		cfg:    cfg,
		engine: engine,
		hover:  hover.NewProvider(),
		docs:   newDocumentStore(),
	}, nil
}

// Close stops the file watcher and cancels pending validations.
func (s *Server) Close() error {
	s.docs.clear()
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w != nil {
		return w.Close()
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ═══════════════════════════════════════════════════════════════════════════

// Initialize resolves the workspace root, builds the component index and
// advertises full-text sync, hover and completion.
func (s *Server) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	if root := workspaceRoot(params); root != "" {
		s.mu.Lock()
		s.root = root
		s.mu.Unlock()
		s.refreshIndex()
		if s.cfg.Completion.Watch {
			s.startWatcher(root)
		}
	} else {
		s.logger.Info("no workspace root; tag completion disabled")
	}

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save:      &protocol.SaveOptions{IncludeText: false},
			},
			HoverProvider: true,
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{"<"},
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    Name,
			Version: Version,
		},
	}, nil
}

func (s *Server) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Close()
}

func (s *Server) Exit(ctx context.Context) error {
	if s.onExit != nil {
		s.onExit()
	}
	return nil
}

// workspaceRoot picks the first file-scheme workspace folder, then the
// root URI, then the deprecated root path.
func workspaceRoot(params *protocol.InitializeParams) string {
	if params == nil {
		return ""
	}
	for _, folder := range params.WorkspaceFolders {
		if path, ok := filename(uri.URI(folder.URI)); ok {
			return path
		}
	}
	if path, ok := filename(params.RootURI); ok {
		return path
	}
	return params.RootPath
}

// filename converts a file URI to a path. Other schemes are rejected since
// uri.URI.Filename panics on them.
func filename(u uri.URI) (string, bool) {
	if !strings.HasPrefix(string(u), uri.FileScheme+"://") {
		return "", false
	}
	return u.Filename(), true
}

// ═══════════════════════════════════════════════════════════════════════════
// TEXT SYNCHRONIZATION AND DIAGNOSTICS
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	doc := params.TextDocument
	s.docs.set(doc.URI, doc.Text, doc.Version)
	s.scheduleValidation(ctx, doc.URI)
	return nil
}

// DidChange applies a full-text change. With full sync the last change
// event carries the whole document.
func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	s.docs.set(params.TextDocument.URI, text, params.TextDocument.Version)
	s.scheduleValidation(ctx, params.TextDocument.URI)
	return nil
}

func (s *Server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != "" {
		if _, version, ok := s.docs.get(params.TextDocument.URI); ok {
			s.docs.set(params.TextDocument.URI, params.Text, version)
		}
	}
	s.scheduleValidation(ctx, params.TextDocument.URI)
	return nil
}

// DidClose forgets the document and clears its diagnostics in the client.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	u := params.TextDocument.URI
	s.docs.remove(u)

	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	return s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         u,
		Diagnostics: []protocol.Diagnostic{},
	})
}

// scheduleValidation validates uri after the configured debounce, or
// immediately when the debounce is zero. A newer edit replaces a pending
// validation; a validation already running finishes but its result is
// dropped if the document moved on.
func (s *Server) scheduleValidation(ctx context.Context, u protocol.DocumentURI) {
	delay := s.cfg.Diagnostics.Debounce()
	if delay <= 0 {
		s.validate(ctx, u)
		return
	}
	// The request context ends with the notification; timers use their own.
	s.docs.schedule(u, delay, func() { s.validate(context.Background(), u) })
}

// validate checks the current text of u and publishes the result.
//
// Parameters:
//   - ctx: context for the publish notification
//   - u: the document to validate
//
// A parse failure is logged and published as an empty list, so the client
// never keeps diagnostics for text that no longer exists.
//
// Thread-safety: Safe for concurrent use; results for versions that are no
// longer current are discarded.
func (s *Server) validate(ctx context.Context, u protocol.DocumentURI) {
	text, version, ok := s.docs.get(u)
	if !ok {
		return
	}

	diags, err := s.engine.Validate(text)
	if err != nil {
		s.logger.Warn("validation failed", zap.String("uri", string(u)), zap.Error(err))
		diags = []protocol.Diagnostic{}
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if !s.docs.current(u, version) {
		s.logger.Debug("dropping stale diagnostics",
			zap.String("uri", string(u)), zap.Int32("version", version))
		return
	}

	published, err := safecast.Conv[uint32](version)
	if err != nil {
		published = 0
	}
	if err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         u,
		Version:     published,
		Diagnostics: diags,
	}); err != nil {
		s.logger.Warn("publish diagnostics failed", zap.String("uri", string(u)), zap.Error(err))
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// HOVER AND COMPLETION
// ═══════════════════════════════════════════════════════════════════════════

// Hover returns directive documentation for the attribute under the cursor.
func (s *Server) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, _, ok := s.docs.get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	offset := validator.OffsetOf(text, params.Position)
	doc, span, ok := s.hover.At(text, offset)
	if !ok {
		return nil, nil
	}
	rng := validator.RangeOf(text, span.Start, span.End)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: doc},
		Range:    &rng,
	}, nil
}

// Completion offers every component declared in the workspace.
func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	s.mu.RLock()
	names := s.index.Names()
	s.mu.RUnlock()
	return &protocol.CompletionList{Items: completion.Items(names)}, nil
}

// DidChangeWatchedFiles re-scans the workspace for component declarations.
func (s *Server) DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error {
	s.refreshIndex()
	return nil
}

func (s *Server) refreshIndex() {
	s.mu.RLock()
	root := s.root
	s.mu.RUnlock()
	if root == "" {
		return
	}

	ix, err := completion.Scan(root, s.cfg.Completion.ScanOptions(s.logger))
	if err != nil {
		s.logger.Warn("component scan failed", zap.String("root", root), zap.Error(err))
		return
	}
	s.setIndex(ix)
}

func (s *Server) setIndex(ix *completion.Index) {
	s.mu.Lock()
	s.index = ix
	s.mu.Unlock()
	for _, dup := range ix.Duplicates() {
		s.logger.Info(dup.Message, zap.String("component", dup.Name))
	}
	s.logger.Debug("component index updated", zap.Int("components", ix.Len()))
}

func (s *Server) startWatcher(root string) {
	w, err := completion.Watch(root, s.cfg.Completion.ScanOptions(s.logger), s.cfg.Completion.Debounce(), s.setIndex)
	if err != nil {
		s.logger.Warn("file watcher unavailable", zap.String("root", root), zap.Error(err))
		return
	}
	s.mu.Lock()
	old := s.watcher
	s.watcher = w
	s.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
}
