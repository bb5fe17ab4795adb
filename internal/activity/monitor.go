package activity

import (
	"log/slog"
	"sync"
	"time"

	"tally/internal/logging"
)

// Kind names one category of editor event.
type Kind string

const (
	KindTextChange        Kind = "textChange"
	KindTextSelection     Kind = "textSelection"
	KindEditorFocus       Kind = "editorFocus"
	KindDocumentOpen      Kind = "documentOpen"
	KindDocumentClose     Kind = "documentClose"
	KindDocumentSave      Kind = "documentSave"
	KindCursorMove        Kind = "cursorMove"
	KindScrollChange      Kind = "scrollChange"
	KindTerminalActivity  Kind = "terminalActivity"
	KindDebuggerActivity  Kind = "debuggerActivity"
	KindGitActivity       Kind = "gitActivity"
	KindExtensionActivity Kind = "extensionActivity"
)

// weights ranks event kinds by how strongly they signal real work.
var weights = map[Kind]int{
	KindTextChange:        10,
	KindTextSelection:     3,
	KindEditorFocus:       8,
	KindDocumentOpen:      5,
	KindDocumentClose:     2,
	KindDocumentSave:      7,
	KindCursorMove:        1,
	KindScrollChange:      1,
	KindTerminalActivity:  6,
	KindDebuggerActivity:  7,
	KindGitActivity:       4,
	KindExtensionActivity: 2,
}

// Weight returns the score contribution of kind, zero for unknown kinds.
func Weight(kind Kind) int {
	return weights[kind]
}

// Summary describes one flushed batch of activity.
type Summary struct {
	Score  int
	Events int
	Start  time.Time
	End    time.Time
}

// Options configures a Monitor. Zero values select the defaults.
type Options struct {
	// Threshold is the minimum batch score worth flushing.
	Threshold int
	// MaxBatch forces a flush once this many events accumulate.
	MaxBatch int
	// FlushEvery bounds how long a batch may sit before flushing.
	FlushEvery time.Duration
	// IdleAfter is the quiet period that counts as idle.
	IdleAfter time.Duration
	// Tick overrides the internal poll interval. Tests shorten it.
	Tick time.Duration

	OnFlush  func(Summary)
	OnIdle   func(idleFor time.Duration)
	OnResume func()
	Logger   *slog.Logger
}

// Monitor accumulates weighted events and detects idle stretches.
type Monitor struct {
	opts   Options
	logger *slog.Logger

	mu         sync.Mutex
	score      int
	events     int
	batchStart time.Time
	lastEvent  time.Time
	idle       bool
	running    bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewMonitor builds a monitor without starting it.
func NewMonitor(opts Options) *Monitor {
	if opts.Threshold <= 0 {
		opts.Threshold = 5
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = 10
	}
	if opts.FlushEvery <= 0 {
		opts.FlushEvery = 30 * time.Second
	}
	if opts.IdleAfter <= 0 {
		opts.IdleAfter = 5 * time.Minute
	}
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Monitor{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "activity"),
		done:   make(chan struct{}),
	}
}

// Start launches the poll loop. Calling Start twice is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.lastEvent = time.Now()
	m.mu.Unlock()

	m.wg.Add(1)
	go m.loop()
}

// Close stops the poll loop and flushes any pending batch.
func (m *Monitor) Close() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	close(m.done)
	m.wg.Wait()
	m.flush(time.Now())
}

// Record scores one event. Activity while idle fires the resume callback.
func (m *Monitor) Record(kind Kind) {
	now := time.Now()

	m.mu.Lock()
	if m.events == 0 {
		m.batchStart = now
	}
	m.score += Weight(kind)
	m.events++
	m.lastEvent = now
	wasIdle := m.idle
	m.idle = false
	forceFlush := m.events >= m.opts.MaxBatch
	m.mu.Unlock()

	if wasIdle && m.opts.OnResume != nil {
		m.opts.OnResume()
	}
	if forceFlush {
		m.flush(now)
	}
}

// Idle reports whether the monitor currently considers the user idle.
func (m *Monitor) Idle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.idle
}

func (m *Monitor) loop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.opts.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.step(now)
		}
	}
}

// step runs one poll: flush a ripe batch, then check the idle threshold.
func (m *Monitor) step(now time.Time) {
	m.mu.Lock()
	ripe := m.events > 0 && m.score >= m.opts.Threshold &&
		now.Sub(m.batchStart) >= m.opts.FlushEvery
	quiet := now.Sub(m.lastEvent)
	goingIdle := !m.idle && quiet >= m.opts.IdleAfter
	if goingIdle {
		m.idle = true
	}
	m.mu.Unlock()

	if ripe {
		m.flush(now)
	}
	if goingIdle {
		m.logger.Info("idle detected", logging.Duration("quiet", quiet))
		if m.opts.OnIdle != nil {
			m.opts.OnIdle(quiet)
		}
	}
}

func (m *Monitor) flush(now time.Time) {
	m.mu.Lock()
	if m.events == 0 {
		m.mu.Unlock()
		return
	}
	summary := Summary{
		Score:  m.score,
		Events: m.events,
		Start:  m.batchStart,
		End:    now,
	}
	m.score = 0
	m.events = 0
	m.mu.Unlock()

	if m.opts.OnFlush != nil {
		m.opts.OnFlush(summary)
	}
}
