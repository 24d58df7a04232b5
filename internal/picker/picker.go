// Package picker implements the interactive terminal picker.
//
// The picker draws a query prompt, a match counter, and the ranked
// matches for the current query. Typing narrows the list, arrow keys
// move the selection, Enter accepts, and Escape cancels. When a watch
// path is configured the input reloads automatically on file changes.
package picker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/matchsort"
	"github.com/dshills/matchsort/internal/log"
)

// ErrCanceled is returned by Run when the user dismisses the picker.
var ErrCanceled = errors.New("picker: canceled")

// Config configures a picker session.
type Config struct {
	// Load returns the current set of input lines. Required.
	Load func() ([]string, error)

	// Rank orders lines against a query. Required.
	Rank func(lines []string, query string) []matchsort.RankedItem[string]

	// Watch is a file path watched for changes. Empty disables reload.
	Watch string

	// Query prefills the query line.
	Query string

	// Prompt is drawn before the query. Defaults to "> ".
	Prompt string

	// Logger receives picker events. Defaults to log.Null.
	Logger *log.Logger

	// Screen overrides the terminal screen, for tests.
	Screen tcell.Screen
}

const (
	headerRows   = 2
	pointerWidth = 2
)

var (
	stylePrompt   = tcell.StyleDefault.Foreground(tcell.ColorTeal).Bold(true)
	styleDim      = tcell.StyleDefault.Dim(true)
	styleSelected = tcell.StyleDefault.Reverse(true)
)

// Run displays the picker and blocks until the user accepts a match or
// cancels. Returns the accepted line, or ErrCanceled.
func Run(cfg Config) (string, error) {
	if cfg.Load == nil {
		panic("picker: Config.Load is required")
	}
	if cfg.Rank == nil {
		panic("picker: Config.Rank is required")
	}
	if cfg.Prompt == "" {
		cfg.Prompt = "> "
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Null
	}

	// Load before touching the terminal so a bad input path fails plainly.
	lines, err := cfg.Load()
	if err != nil {
		return "", fmt.Errorf("picker: loading input: %w", err)
	}

	screen := cfg.Screen
	if screen == nil {
		screen, err = tcell.NewScreen()
		if err != nil {
			return "", fmt.Errorf("picker: creating screen: %w", err)
		}
	}
	if err := screen.Init(); err != nil {
		return "", fmt.Errorf("picker: initializing screen: %w", err)
	}
	defer screen.Fini()

	p := &picker{cfg: cfg, screen: screen, lines: lines, query: []rune(cfg.Query)}
	p.rerank()

	stop, err := p.watch()
	if err != nil {
		cfg.Logger.Warn("watch %s: %v", cfg.Watch, err)
	}
	if stop != nil {
		defer stop()
	}

	return p.run()
}

// picker holds the state of one interactive session.
type picker struct {
	cfg    Config
	screen tcell.Screen

	lines   []string
	matches []matchsort.RankedItem[string]
	query   []rune
	sel     int
	offset  int
	rows    int
	status  string

	picked string
	err    error
}

func (p *picker) run() (string, error) {
	for {
		p.draw()

		switch ev := p.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if p.handleKey(ev) {
				return p.picked, p.err
			}
		case *tcell.EventResize:
			p.screen.Sync()
		case *reloadEvent:
			p.reload()
		}
	}
}

// handleKey applies one key event. Returns true when the session is done.
func (p *picker) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		p.err = ErrCanceled
		return true
	case tcell.KeyEnter:
		if len(p.matches) == 0 {
			return false
		}
		p.picked = p.matches[p.sel].Item
		return true
	case tcell.KeyUp, tcell.KeyCtrlP:
		p.move(-1)
	case tcell.KeyDown, tcell.KeyCtrlN:
		p.move(1)
	case tcell.KeyPgUp:
		p.move(-p.pageSize())
	case tcell.KeyPgDn:
		p.move(p.pageSize())
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(p.query) > 0 {
			p.setQuery(p.query[:len(p.query)-1])
		}
	case tcell.KeyCtrlU:
		p.setQuery(nil)
	case tcell.KeyCtrlW:
		p.setQuery(deleteWord(p.query))
	case tcell.KeyCtrlR:
		p.reload()
	case tcell.KeyRune:
		p.setQuery(append(p.query, ev.Rune()))
	}
	return false
}

func (p *picker) move(delta int) {
	if len(p.matches) == 0 {
		p.sel = 0
		return
	}
	p.sel += delta
	if p.sel < 0 {
		p.sel = 0
	} else if p.sel >= len(p.matches) {
		p.sel = len(p.matches) - 1
	}
}

func (p *picker) pageSize() int {
	if p.rows > 1 {
		return p.rows - 1
	}
	return 10
}

func (p *picker) setQuery(q []rune) {
	p.query = q
	p.sel = 0
	p.offset = 0
	p.status = ""
	p.rerank()
}

func (p *picker) rerank() {
	p.matches = p.cfg.Rank(p.lines, string(p.query))
	if p.sel >= len(p.matches) {
		p.sel = 0
	}
}

// reload re-reads the input. A failing load keeps the current lines.
func (p *picker) reload() {
	lines, err := p.cfg.Load()
	if err != nil {
		p.status = err.Error()
		p.cfg.Logger.Warn("reload: %v", err)
		return
	}
	p.lines = lines
	p.status = fmt.Sprintf("reloaded %d lines", len(lines))
	p.cfg.Logger.Debug("reloaded %d lines", len(lines))
	p.rerank()
}

// watch posts a reload event to the screen whenever the watched file
// changes. Returns a cleanup function, or nil when watching is off.
func (p *picker) watch() (func(), error) {
	if p.cfg.Watch == "" {
		return nil, nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(p.cfg.Watch); err != nil {
		w.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
					_ = p.screen.PostEvent(newReloadEvent()) // best-effort; event queue may be full
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				p.cfg.Logger.Warn("watch error: %v", err)
			}
		}
	}()

	return func() { w.Close() }, nil
}

func (p *picker) draw() {
	w, h := p.screen.Size()
	p.screen.Clear()

	x := drawString(p.screen, 0, 0, stylePrompt, p.cfg.Prompt)
	x = drawString(p.screen, x, 0, tcell.StyleDefault, string(p.query))
	p.screen.ShowCursor(x, 0)

	count := fmt.Sprintf("%d/%d", len(p.matches), len(p.lines))
	if p.status != "" {
		count += "  " + p.status
	}
	drawString(p.screen, 0, 1, styleDim, runewidth.Truncate(count, w, ""))

	p.rows = h - headerRows
	p.offset = scrollOffset(p.offset, p.sel, p.rows)

	y := headerRows
	for i := p.offset; i < len(p.matches) && y < h; i++ {
		line := runewidth.Truncate(p.matches[i].Item, w-pointerWidth, "…")

		style := tcell.StyleDefault
		pointer := "  "
		if i == p.sel {
			style = styleSelected
			pointer = "> "
			for cx := 0; cx < w; cx++ {
				p.screen.SetContent(cx, y, ' ', nil, style)
			}
		}
		cx := drawString(p.screen, 0, y, style, pointer)
		p.drawMatch(cx, y, line, style)
		y++
	}

	p.screen.Show()
}

// drawMatch draws one match line, brightening the matched substring.
func (p *picker) drawMatch(x, y int, line string, base tcell.Style) {
	start, end := highlightRange(line, string(p.query))
	for i, r := range line {
		style := base
		if start >= 0 && i >= start && i < end {
			style = base.Foreground(tcell.ColorYellow).Bold(true)
		}
		p.screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}

func drawString(s tcell.Screen, x, y int, style tcell.Style, text string) int {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
	return x
}

// highlightRange returns the byte range of the first case-insensitive
// occurrence of query in line, or (-1, -1). Offsets assume lowering
// preserves byte widths; exotic case pairs may shift the highlight.
func highlightRange(line, query string) (int, int) {
	if query == "" {
		return -1, -1
	}
	idx := strings.Index(strings.ToLower(line), strings.ToLower(query))
	if idx < 0 {
		return -1, -1
	}
	return idx, idx + len(query)
}

// scrollOffset keeps sel inside a window of rows lines starting at offset.
func scrollOffset(offset, sel, rows int) int {
	if rows <= 0 {
		return 0
	}
	if sel < offset {
		return sel
	}
	if sel >= offset+rows {
		return sel - rows + 1
	}
	return offset
}

// deleteWord removes the trailing word and any spaces before it.
func deleteWord(q []rune) []rune {
	i := len(q)
	for i > 0 && q[i-1] == ' ' {
		i--
	}
	for i > 0 && q[i-1] != ' ' {
		i--
	}
	return q[:i]
}

// reloadEvent signals that the watched input file changed.
type reloadEvent struct {
	tcell.EventTime
}

func newReloadEvent() *reloadEvent {
	ev := &reloadEvent{}
	ev.SetEventTime(time.Now())
	return ev
}
