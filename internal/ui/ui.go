// Package ui is the terminal front end: a Bubble Tea model whose update
// loop is the single consumer of the event queue and the sole owner of the
// vote ledger and wheel state.
package ui

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tui "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"
	plot "github.com/chriskim06/drawille-go"
	"github.com/google/uuid"
	"github.com/keilerkonzept/topk/sliding"

	"chatwheel/internal/config"
	"chatwheel/internal/event"
	"chatwheel/internal/irc"
	"chatwheel/internal/ledger"
	"chatwheel/internal/wheel"
)

// Options are the tuning knobs passed down from the CLI.
type Options struct {
	TopK         int
	VoteDuration time.Duration
	TickPeriod   time.Duration
	SegmentsFile string
	ConfigPath   string
	IRCAddr      string
	ViewSplit    int
}

const (
	chatterTickPeriod = time.Second
	chatterWindow     = 60 // ticks
	chatterTopN       = 5
	chartTickPeriod   = 500 * time.Millisecond
	chartPoints       = 120
	maxChartSeries    = 10
	maxFeedLines      = 500
	stopWait          = 2 * time.Second
)

type inputMode int

const (
	modeNone inputMode = iota
	modeAdd
	modeRename
	modeSetCount
	modeTopK
)

// Model is the application state. All mutation happens on the Bubble Tea
// update loop; the ingestion gateway only ever touches the event queue.
type Model struct {
	opts   Options
	creds  config.Credentials
	logger *slog.Logger

	width, height  int
	leftPaneWidth  int
	rightPaneWidth int

	queue  *event.Queue
	votes  *ledger.Ledger
	engine *wheel.Engine
	client *irc.Client

	connecting bool
	connected  bool

	topK    int
	view    []ledger.Segment
	pick    wheel.Pick
	hasPick bool
	dirty   bool

	votingActive bool
	voteEndAt    time.Time
	timerLabel   string
	status       string

	table       table.Model
	input       textinput.Model
	inputMode   inputMode
	inputTarget string
	feed        []string
	feedView    viewport.Model
	connSpin    spinner.Model
	help        help.Model

	chart       *plot.Canvas
	chartData   [][]float64
	chartColors []plot.Color
	chatters    *sliding.Sketch

	spinID      string
	wasSpinning bool
}

// New wires the model. logger and engine may be nil; tests pass an engine
// with a fixed seed.
func New(opts Options, creds config.Credentials, logger *slog.Logger, engine *wheel.Engine) *Model {
	const (
		defaultWidth  = 100
		defaultHeight = 30
	)
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = wheel.NewEngine(wheel.DefaultSpinConfig(), nil)
	}

	t := table.New(
		table.WithColumns(segmentColumns(defaultWidth/2)),
		table.WithFocused(true),
		table.WithHeight(defaultHeight/2),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(styles.NormalBorder()).
		BorderForeground(borderColor).
		BorderBottom(true).
		Bold(false)
	ts.Selected = ts.Selected.
		Foreground(selectedColor).
		Bold(false)
	t.SetStyles(ts)

	in := textinput.New()
	in.CharLimit = 200

	fv := viewport.New(defaultWidth/2, defaultHeight/2)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	canvas := plot.NewCanvas(defaultWidth/2, 8)
	canvas.NumDataPoints = chartPoints
	canvas.ShowAxis = false
	canvas.LineColors = make([]plot.Color, maxChartSeries)

	m := &Model{
		opts:        opts,
		creds:       creds,
		logger:      logger,
		queue:       event.NewQueue(),
		votes:       ledger.New(),
		engine:      engine,
		topK:        opts.TopK,
		timerLabel:  "Voting idle",
		status:      "Disconnected",
		table:       t,
		input:       in,
		feedView:    fv,
		connSpin:    sp,
		help:        help.New(),
		chart:       &canvas,
		chartData:   make([][]float64, maxChartSeries),
		chartColors: make([]plot.Color, maxChartSeries),
		chatters:    sliding.New(chatterTopN, chatterWindow),
	}
	for i := range m.chartData {
		m.chartData[i] = make([]float64, chartPoints)
	}
	m.leftPaneWidth, m.rightPaneWidth = computePaneWidths(defaultWidth, opts.ViewSplit)
	m.view = m.votes.TopK(m.topK)
	return m
}

type (
	tickMsg        time.Time
	chatterTickMsg time.Time
	chartTickMsg   time.Time
	reconnectMsg   struct{}
	stoppedMsg     struct{}
)

func (m *Model) tickCmd() tui.Cmd {
	return tui.Every(m.opts.TickPeriod, func(t time.Time) tui.Msg { return tickMsg(t) })
}

func chatterTickCmd() tui.Cmd {
	return tui.Every(chatterTickPeriod, func(t time.Time) tui.Msg { return chatterTickMsg(t) })
}

func chartTickCmd() tui.Cmd {
	return tui.Every(chartTickPeriod, func(t time.Time) tui.Msg { return chartTickMsg(t) })
}

func (m *Model) Init() tui.Cmd {
	m.connect()
	return tui.Batch(m.tickCmd(), chatterTickCmd(), chartTickCmd(), m.connSpin.Tick)
}

func (m *Model) connect() {
	if m.creds.Incomplete() {
		m.status = fmt.Sprintf("Config missing nickname/oauth_token. Update %s.", m.opts.ConfigPath)
		return
	}
	cb := irc.Callbacks{
		OnChat: func(sender, text string) {
			m.queue.Enqueue(event.Event{Type: event.TypeChat, Chat: event.Chat{Sender: sender, Text: text}})
		},
		OnStatus: func(msg string) {
			m.queue.Enqueue(event.Event{Type: event.TypeStatus, Message: msg})
		},
		OnError: func(msg string) {
			m.queue.Enqueue(event.Event{Type: event.TypeError, Message: msg})
		},
	}
	m.client = irc.NewClient(m.opts.IRCAddr, m.creds.Channel, m.creds.Nickname, m.creds.OAuthToken, cb)
	m.connecting = true
	m.connected = false
	m.client.Start()
	m.logger.Info("gateway_started", "channel", m.client.Channel(), "nickname", m.creds.Nickname)
}

func (m *Model) Update(msg tui.Msg) (tui.Model, tui.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.consumeTick(time.Time(msg))
		return m, m.tickCmd()

	case chatterTickMsg:
		m.chatters.Ticks(1)
		return m, chatterTickCmd()

	case chartTickMsg:
		m.sampleChart()
		return m, chartTickCmd()

	case spinner.TickMsg:
		var cmd tui.Cmd
		m.connSpin, cmd = m.connSpin.Update(msg)
		return m, cmd

	case reconnectMsg:
		m.connect()
		return m, nil

	case stoppedMsg:
		// Apply whatever the gateway managed to enqueue before teardown.
		m.applyEvents(m.queue.Drain())
		return m, tui.Quit

	case tui.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tui.KeyMsg:
		if m.inputMode != modeNone {
			return m.updateInput(msg)
		}
		return m.handleKey(msg)
	}

	var cmd tui.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// consumeTick is one turn of the single consumer: drain all queued events
// in FIFO order, expire the voting window, advance the spin engine exactly
// one tick, then recompute the top-K view and the pointer readout.
func (m *Model) consumeTick(now time.Time) {
	m.applyEvents(m.queue.Drain())

	if m.votingActive {
		remaining := m.voteEndAt.Sub(now)
		if remaining <= 0 {
			m.votingActive = false
			m.timerLabel = "Voting ended"
			m.logger.Info("vote_window_expired")
		} else {
			m.timerLabel = fmt.Sprintf("Voting active: %ds", int(remaining.Seconds()))
		}
	}

	m.engine.Tick()

	m.view = m.votes.TopK(m.topK)
	m.pick, m.hasPick = wheel.Resolve(m.view, m.votes.VotersOf, m.engine.Rotation())

	if m.wasSpinning && !m.engine.Spinning() {
		m.logger.Info("spin_settled",
			"spin_id", m.spinID,
			"phrase", m.pick.Phrase,
			"voter", m.pick.Voter,
			"rotation", m.engine.Rotation())
	}
	m.wasSpinning = m.engine.Spinning()

	if m.dirty {
		m.refreshTable()
		m.dirty = false
	}
}

func (m *Model) applyEvents(events []event.Event) {
	for _, ev := range events {
		switch ev.Type {
		case event.TypeChat:
			m.appendFeed(fmt.Sprintf("[%s] %s", ev.Chat.Sender, ev.Chat.Text))
			m.chatters.Incr(strings.ToLower(ev.Chat.Sender))
			if m.votingActive {
				if m.votes.ApplyVote(ev.Chat.Sender, ev.Chat.Text) {
					m.dirty = true
				}
			}
		case event.TypeStatus:
			m.status = ev.Message
			if strings.HasPrefix(ev.Message, "Connected to") {
				m.connecting = false
				m.connected = true
			}
		case event.TypeError:
			m.status = ev.Message
			m.appendFeed("[ERROR] " + ev.Message)
			m.connecting = false
			m.connected = false
			m.logger.Warn("gateway_error", "message", ev.Message)
		}
	}
}

func (m *Model) appendFeed(line string) {
	m.feed = append(m.feed, line)
	if len(m.feed) > maxFeedLines {
		m.feed = m.feed[len(m.feed)-maxFeedLines:]
	}
	m.feedView.SetContent(strings.Join(m.feed, "\n"))
	m.feedView.GotoBottom()
}

func (m *Model) handleKey(msg tui.KeyMsg) (tui.Model, tui.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.queue.Close()
		client := m.client
		return m, func() tui.Msg {
			if client != nil {
				client.Stop(stopWait)
			}
			return stoppedMsg{}
		}

	case key.Matches(msg, keys.Spin):
		total := ledger.TotalWeight(m.view)
		if !m.engine.Spin(total) {
			m.status = "Add at least one phrase with votes before spinning."
			return m, nil
		}
		m.spinID = uuid.NewString()
		m.logger.Info("spin_launched",
			"spin_id", m.spinID,
			"velocity", m.engine.Velocity(),
			"total_weight", total)
		return m, nil

	case key.Matches(msg, keys.StartVote):
		m.votingActive = true
		m.voteEndAt = time.Now().Add(m.opts.VoteDuration)
		m.timerLabel = fmt.Sprintf("Voting active: %ds", int(m.opts.VoteDuration.Seconds()))
		m.logger.Info("vote_window_started", "duration", m.opts.VoteDuration)
		return m, nil

	case key.Matches(msg, keys.StopVote):
		if m.votingActive {
			m.votingActive = false
			m.timerLabel = "Voting stopped early"
			m.logger.Info("vote_window_stopped")
		}
		return m, nil

	case key.Matches(msg, keys.ClearVote):
		m.votingActive = false
		m.votes.Clear()
		m.dirty = true
		m.timerLabel = "Voting idle"
		m.logger.Info("vote_state_cleared")
		return m, nil

	case key.Matches(msg, keys.Add):
		return m.openInput(modeAdd, "phrase = count", "")

	case key.Matches(msg, keys.Rename):
		p, ok := m.selectedPhrase()
		if !ok {
			return m, nil
		}
		return m.openInput(modeRename, "new phrase", p)

	case key.Matches(msg, keys.SetCount):
		p, ok := m.selectedPhrase()
		if !ok {
			return m, nil
		}
		return m.openInput(modeSetCount, "votes", p)

	case key.Matches(msg, keys.Remove):
		if p, ok := m.selectedPhrase(); ok {
			m.votes.RemoveSegment(p)
			m.dirty = true
			m.status = fmt.Sprintf("Removed %q", p)
		}
		return m, nil

	case key.Matches(msg, keys.TopK):
		return m.openInput(modeTopK, "top phrases on wheel", "")

	case key.Matches(msg, keys.Export):
		if err := m.votes.ExportFile(m.opts.SegmentsFile, m.topK); err != nil {
			m.status = err.Error()
			m.logger.Warn("export_failed", "error", err)
			return m, nil
		}
		m.status = fmt.Sprintf("Exported %d segments (+ user votes) to %s", len(m.view), m.opts.SegmentsFile)
		m.logger.Info("segments_exported", "path", m.opts.SegmentsFile, "segments", len(m.view))
		return m, nil

	case key.Matches(msg, keys.Import):
		imported, err := ledger.ImportFile(m.opts.SegmentsFile)
		if err != nil {
			m.status = err.Error()
			m.logger.Warn("import_failed", "error", err)
			return m, nil
		}
		m.votes = imported
		m.dirty = true
		m.status = fmt.Sprintf("Imported %d segments and %d user votes from %s",
			len(imported.Phrases()), imported.Senders(), m.opts.SegmentsFile)
		m.logger.Info("segments_imported", "path", m.opts.SegmentsFile,
			"segments", len(imported.Phrases()), "user_votes", imported.Senders())
		return m, nil

	case key.Matches(msg, keys.Reconnect):
		client := m.client
		m.client = nil
		m.status = "Reconnecting..."
		return m, func() tui.Msg {
			if client != nil {
				client.Stop(stopWait)
			}
			return reconnectMsg{}
		}

	case key.Matches(msg, keys.Up):
		m.table.MoveUp(1)
		return m, nil

	case key.Matches(msg, keys.Down):
		m.table.MoveDown(1)
		return m, nil

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tui.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) openInput(mode inputMode, placeholder, target string) (tui.Model, tui.Cmd) {
	m.inputMode = mode
	m.inputTarget = target
	m.input.Placeholder = placeholder
	m.input.Reset()
	return m, m.input.Focus()
}

func (m *Model) updateInput(msg tui.KeyMsg) (tui.Model, tui.Cmd) {
	switch msg.String() {
	case "enter":
		m.commitInput(m.input.Value())
		m.closeInput()
		return m, nil
	case "esc":
		m.closeInput()
		return m, nil
	}
	var cmd tui.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.inputMode = modeNone
	m.inputTarget = ""
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) commitInput(value string) {
	value = strings.TrimSpace(value)
	switch m.inputMode {
	case modeAdd:
		raw, count := value, 1
		if i := strings.LastIndex(value, "="); i >= 0 {
			raw = strings.TrimSpace(value[:i])
			count = ledger.ParseCount(strings.TrimSpace(value[i+1:]), 1)
		}
		if target, ok := m.votes.AddVotes(raw, count); ok {
			m.dirty = true
			m.status = fmt.Sprintf("Segment %q now at %d", target, m.votes.Count(target))
		}
	case modeRename:
		if target, ok := m.votes.RenamePhrase(m.inputTarget, value); ok {
			m.dirty = true
			m.status = fmt.Sprintf("Renamed %q to %q", m.inputTarget, target)
		}
	case modeSetCount:
		m.votes.SetCount(m.inputTarget, ledger.ParseCount(value, m.votes.Count(m.inputTarget)))
		m.dirty = true
	case modeTopK:
		k := ledger.ParseCount(value, m.topK)
		if k < 1 {
			k = 1
		}
		m.topK = k
		m.dirty = true
	}
}

func (m *Model) selectedPhrase() (string, bool) {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return "", false
	}
	return row[0], true
}

func (m *Model) refreshTable() {
	all := ledger.SelectTopK(m.votes.Counts(), len(m.votes.Phrases()))
	rows := make([]table.Row, len(all))
	for i, s := range all {
		rows[i] = table.Row{s.Phrase, strconv.Itoa(s.Count)}
	}
	m.table.SetRows(rows)
}
