// Package app wires the document engine, renderer, scripting, and
// configuration into a runnable editor host.
//
// The host owns the document and the selection. The selection model is
// deliberately simple: one whole top-level block is selected at a time,
// and the arrow keys move it. Key chords from the keymap dispatch
// toggle commands against that selection.
package app

import (
	"fmt"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/richdoc/internal/config"
	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/doc/docjson"
	"github.com/dshills/richdoc/internal/engine/command"
	"github.com/dshills/richdoc/internal/engine/selection"
	"github.com/dshills/richdoc/internal/event"
	"github.com/dshills/richdoc/internal/plugin/lua"
	"github.com/dshills/richdoc/internal/renderer"
	"github.com/dshills/richdoc/internal/renderer/backend"
	"github.com/dshills/richdoc/internal/renderer/style"
)

// Options configures a new Application.
type Options struct {
	// ConfigPath is the TOML configuration file. Empty uses defaults.
	ConfigPath string
	// DocumentPath is the JSON document to open and save. Empty starts
	// an unsaved empty document.
	DocumentPath string
	// LogLevel overrides the configured log level when non-empty.
	LogLevel string
}

// Application coordinates the engine, renderer, and scripting runtime.
type Application struct {
	mu sync.Mutex

	cfg      config.Config
	logger   *Logger
	docPath  string
	document *doc.Document
	engine   *command.Engine
	bus      *event.Bus
	backend  backend.Backend
	renderer *renderer.Renderer
	scripts  *lua.Runner
	watcher  *config.Watcher

	sel   *selection.Range
	block int
	dirty bool

	shutdownOnce sync.Once
}

// New creates an application from options: configuration is loaded,
// the document is opened (or created empty), and the engine, event bus,
// and script runtime are wired together. The render backend is attached
// separately with SetBackend.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logCfg := DefaultLoggerConfig()
	logCfg.Level = ParseLogLevel(cfg.LogLevel)
	if opts.LogLevel != "" {
		logCfg.Level = ParseLogLevel(opts.LogLevel)
	}
	logger := NewLogger(logCfg)

	theme := style.Default()
	if cfg.ThemePath != "" {
		theme, err = style.LoadFile(cfg.ThemePath)
		if err != nil {
			return nil, fmt.Errorf("loading theme: %w", err)
		}
	}

	document, err := openDocument(opts.DocumentPath, cfg)
	if err != nil {
		return nil, err
	}

	bus := event.NewBus()
	app := &Application{
		cfg:      cfg,
		logger:   logger,
		docPath:  opts.DocumentPath,
		document: document,
		bus:      bus,
		renderer: renderer.New(nil, theme),
	}
	app.engine = command.New(document, command.WithBus(bus))
	app.selectBlock(0)
	app.scripts = lua.NewRunner(app.engine, app.currentSelection)

	if _, err := bus.SubscribeFunc(command.TopicDocumentChanged, app.onDocumentChanged); err != nil {
		return nil, err
	}

	if opts.ConfigPath != "" {
		w, werr := config.Watch(opts.ConfigPath, app.reloadConfig)
		if werr != nil {
			logger.Warn("config watch unavailable: %v", werr)
		} else {
			app.watcher = w
		}
	}

	return app, nil
}

// openDocument loads the JSON document at path. A missing or empty path
// yields a fresh document with one block of the configured default type.
func openDocument(path string, cfg config.Config) (*doc.Document, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// New file; start empty and create it on first save.
		case err != nil:
			return nil, fmt.Errorf("opening document %s: %w", path, err)
		default:
			d, derr := docjson.Decode(data)
			if derr != nil {
				return nil, fmt.Errorf("decoding document %s: %w", path, derr)
			}
			return d, nil
		}
	}
	block := doc.NewElement(doc.BlockType(cfg.DefaultBlockType), doc.NewLeaf(""))
	return doc.New(block), nil
}

// SetBackend attaches the render surface. Must be called before Run.
func (a *Application) SetBackend(b backend.Backend) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.backend = b
	a.renderer = renderer.New(b, a.themeLocked())
}

// themeLocked resolves the current theme; callers hold a.mu.
func (a *Application) themeLocked() *style.Theme {
	if a.cfg.ThemePath == "" {
		return style.Default()
	}
	t, err := style.LoadFile(a.cfg.ThemePath)
	if err != nil {
		a.logger.Warn("theme %s unavailable: %v", a.cfg.ThemePath, err)
		return style.Default()
	}
	return t
}

// Engine returns the command engine, for scripting hosts and tests.
func (a *Application) Engine() *command.Engine {
	return a.engine
}

// Scripts returns the Lua script runner.
func (a *Application) Scripts() *lua.Runner {
	return a.scripts
}

// Run drives the event loop until the user quits or the backend fails.
// A normal quit returns ErrQuit.
func (a *Application) Run() error {
	a.mu.Lock()
	b := a.backend
	a.mu.Unlock()
	if b == nil {
		return ErrNoBackend
	}

	if err := b.Init(); err != nil {
		return fmt.Errorf("initializing backend: %w", err)
	}
	defer b.Fini()

	a.logger.Info("editor started")
	a.render()

	for {
		ev := b.PollEvent()
		if ev == nil {
			return nil
		}
		switch e := ev.(type) {
		case *tcell.EventKey:
			if err := a.handleKey(e); err != nil {
				return err
			}
		case *tcell.EventResize:
			// Repainted below.
		}
		a.render()
	}
}

// Shutdown releases the watcher and the script runtime. Safe to call
// more than once and on any exit path.
func (a *Application) Shutdown() {
	a.shutdownOnce.Do(func() {
		if a.watcher != nil {
			if err := a.watcher.Close(); err != nil {
				a.logger.Warn("closing config watcher: %v", err)
			}
		}
		if a.scripts != nil {
			a.scripts.Close()
		}
		a.logger.Info("editor stopped")
	})
}

// handleKey dispatches one key event.
func (a *Application) handleKey(ev *tcell.EventKey) error {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlQ:
		return ErrQuit
	case tcell.KeyCtrlS:
		if err := a.save(); err != nil {
			a.logger.Error("save failed: %v", err)
		}
		return nil
	case tcell.KeyUp:
		a.moveSelection(-1)
		return nil
	case tcell.KeyDown:
		a.moveSelection(1)
		return nil
	}

	chord := chordFor(ev)
	if chord == "" {
		return nil
	}

	a.mu.Lock()
	token, ok := a.cfg.Keymap[chord]
	a.mu.Unlock()
	if !ok {
		return nil
	}
	return a.dispatch(token)
}

// dispatch runs the toggle bound to a keymap token.
func (a *Application) dispatch(token string) error {
	a.mu.Lock()
	sel := a.sel
	a.mu.Unlock()

	if m, err := doc.ParseMark(token); err == nil {
		if terr := a.engine.ToggleMark(sel, m); terr != nil {
			return terr
		}
		a.logger.Debug("toggled mark %s", m)
		return nil
	}

	f, err := doc.ParseFormat(token)
	if err != nil {
		a.logger.Warn("keymap token %q: %v", token, err)
		return nil
	}
	if terr := a.engine.ToggleBlock(sel, f); terr != nil {
		return terr
	}
	a.logger.Debug("toggled block %s", f)

	// Block toggles restructure the top level; reselect by index.
	a.mu.Lock()
	a.selectBlock(a.block)
	a.mu.Unlock()
	return nil
}

// moveSelection moves the selected block up or down.
func (a *Application) moveSelection(delta int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.selectBlock(a.block + delta)
}

// selectBlock selects the whole top-level block at index i, clamped to
// the document. Callers hold a.mu (or, during New, have sole access).
func (a *Application) selectBlock(i int) {
	children := a.document.Root().Children
	if len(children) == 0 {
		a.sel = nil
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(children) {
		i = len(children) - 1
	}
	a.block = i

	start, _, err := a.document.FirstLeaf(doc.Path{i})
	if err != nil {
		a.sel = nil
		return
	}
	end, last, err := a.document.LastLeaf(doc.Path{i})
	if err != nil {
		a.sel = nil
		return
	}
	r := selection.NewRange(
		selection.NewPoint(start, 0),
		selection.NewPoint(end, len(last.Text)),
	)
	a.sel = &r
}

// currentSelection is the SelectionFunc handed to the script runtime.
func (a *Application) currentSelection() *selection.Range {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sel
}

// save writes the document back to its JSON file.
func (a *Application) save() error {
	if a.docPath == "" {
		a.logger.Warn("no document path; nothing saved")
		return nil
	}
	data, err := docjson.Encode(a.document)
	if err != nil {
		return err
	}
	if err := os.WriteFile(a.docPath, data, 0o644); err != nil {
		return err
	}
	a.mu.Lock()
	a.dirty = false
	a.mu.Unlock()
	a.logger.Info("saved %s", a.docPath)
	return nil
}

// render repaints the document and status line. The lock also orders
// repaints against theme swaps from the config watcher.
func (a *Application) render() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.renderer.Render(a.document, a.sel)
}

// onDocumentChanged marks the document dirty after every mutation.
func (a *Application) onDocumentChanged(_ event.Topic, payload any) error {
	a.mu.Lock()
	a.dirty = true
	a.mu.Unlock()
	if ch, ok := payload.(command.DocumentChanged); ok {
		a.logger.WithComponent("engine").Debug("document changed, revision %s", ch.Revision)
	}
	return nil
}

// reloadConfig applies a changed config file; it runs on the watcher
// goroutine.
func (a *Application) reloadConfig(cfg config.Config, err error) {
	if err != nil {
		a.logger.Warn("config reload failed: %v", err)
		return
	}
	a.mu.Lock()
	a.cfg = cfg
	a.renderer.SetTheme(a.themeLocked())
	a.mu.Unlock()

	a.logger.Info("configuration reloaded")
}

// chordFor maps a key event to a keymap chord string. Unmapped keys
// return the empty string.
func chordFor(ev *tcell.EventKey) string {
	k := ev.Key()
	switch {
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return "Ctrl+" + string(rune('A'+int(k-tcell.KeyCtrlA)))
	case k >= tcell.KeyF1 && k <= tcell.KeyF12:
		return fmt.Sprintf("F%d", int(k-tcell.KeyF1)+1)
	}
	return ""
}
