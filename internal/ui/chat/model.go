// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/avoicu/librarian-tui/internal/api"
	"github.com/avoicu/librarian-tui/internal/model"
	"github.com/avoicu/librarian-tui/internal/ui/components"
	"github.com/avoicu/librarian-tui/internal/ui/styles"
)

// errorPrefix marks a transcript entry that records a failed turn.
const errorPrefix = "⚠️ "

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures the chat view.
type Options struct {
	Sender          Sender
	ConversationRef ConversationRef
	History         History
	Theme           *styles.Theme

	// Greeting is the librarian's opening line on an empty transcript.
	Greeting string

	// Streaming enables the SSE endpoint for follow-up turns.
	Streaming bool

	// Markdown enables glamour rendering of answers.
	Markdown bool

	// HistoryLimit caps /history output.
	HistoryLimit int

	// UserEmail is shown in the header.
	UserEmail string

	// ConversationID resumes a previous conversation when set.
	ConversationID string
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	theme     *styles.Theme
	header    *components.Header
	statusBar *components.StatusBar
	spinner   components.Spinner
	viewport  viewport.Model
	input     textinput.Model
	keyMap    KeyMap

	sender  Sender
	convRef ConversationRef
	history History

	transcript *model.Transcript
	turn       model.Turn
	nextSeq    int

	conversationID    string
	conversationTitle string
	where             map[string]any

	// In-flight streamed answer
	streamingEnabled bool
	streamCh         chan streamEvent
	streamBuf        strings.Builder
	pendingQuestion  string

	markdown     *markdownRenderer
	useMarkdown  bool
	greeting     string
	historyLimit int

	statusMsg string
	showHelp  bool
	ready     bool
	width     int
	height    int
}

// New creates the chat view. A non-empty Options.ConversationID resumes
// that conversation; the transcript still starts empty apart from the
// greeting, per the append-only contract.
func New(opts Options) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Ask for a book..."
	input.CharLimit = 4096
	input.Width = 60
	input.Focus()

	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}

	header := components.NewHeader(theme)
	header.SetUser(opts.UserEmail)

	statusBar := components.NewStatusBar(theme, []components.Shortcut{
		{Key: "Enter", Desc: "send"},
		{Key: "C-h", Desc: "help"},
		{Key: "C-c", Desc: "quit"},
	})

	m := Model{
		theme:            theme,
		header:           header,
		statusBar:        statusBar,
		spinner:          components.NewSpinner(theme),
		viewport:         viewport.New(80, 20),
		input:            input,
		keyMap:           DefaultKeyMap(),
		sender:           opts.Sender,
		convRef:          opts.ConversationRef,
		history:          opts.History,
		transcript:       model.NewTranscript(),
		nextSeq:          1,
		conversationID:   opts.ConversationID,
		streamingEnabled: opts.Streaming,
		markdown:         newMarkdownRenderer(78),
		useMarkdown:      opts.Markdown,
		greeting:         opts.Greeting,
		historyLimit:     opts.HistoryLimit,
	}

	if m.greeting != "" {
		m.transcript.Append(model.NewAssistantMessage(m.greeting))
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// ConversationID returns the active conversation id, empty before the
// first resolved turn of a fresh conversation.
func (m Model) ConversationID() string {
	return m.conversationID
}

// Busy reports whether a turn is in flight.
func (m Model) Busy() bool {
	return m.turn.Busy()
}

// Transcript exposes the append-only transcript, for export and tests.
func (m Model) Transcript() *model.Transcript {
	return m.transcript
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TurnResolvedMsg:
		return m.handleResolved(msg)

	case TurnFailedMsg:
		return m.handleFailed(msg)

	case StreamTokenMsg:
		return m.handleStreamToken(msg)

	case StreamDoneMsg:
		return m.handleStreamDone(msg)

	case HistoryLoadedMsg:
		return m.handleHistoryLoaded(msg)

	case ExportDoneMsg:
		if msg.Err != nil {
			m.statusMsg = "export failed: " + msg.Err.Error()
		} else {
			m.statusMsg = "exported to " + msg.Path
		}
		return m, nil

	case exchangeRecordedMsg:
		if msg.err != nil {
			m.statusMsg = "history not recorded: " + msg.err.Error()
		}
		return m, nil
	}

	var cmd tea.Cmd
	if c := m.spinner.Update(msg); c != nil {
		return m, c
	}
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.header.SetWidth(msg.Width)
	m.statusBar.SetWidth(msg.Width)

	// Header, input box and status bar take fixed rows.
	viewportHeight := msg.Height - 6
	if viewportHeight < 3 {
		viewportHeight = 3
	}
	m.viewport.Width = msg.Width
	m.viewport.Height = viewportHeight
	m.input.Width = msg.Width - 6
	m.markdown = newMarkdownRenderer(msg.Width - 4)
	m.ready = true
	m.refreshViewport()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil
	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil
	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil
	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil
	case key.Matches(msg, m.keyMap.Home):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keyMap.End):
		m.viewport.GotoBottom()
		return m, nil
	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()
	}

	if m.turn.Busy() {
		// Input is locked while a turn is in flight.
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// TURN LIFECYCLE
// =============================================================================

func (m Model) submit() (Model, tea.Cmd) {
	if m.turn.Busy() {
		return m, nil
	}

	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if strings.HasPrefix(text, "/") {
		m.input.Reset()
		return m.handleCommand(text)
	}

	seq := m.nextSeq
	m.nextSeq++

	// Optimistic append: the user entry lands before the request goes
	// out and is never removed.
	idx := m.transcript.Append(model.NewUserMessage(text))
	m.turn = model.Turn{Seq: seq, State: model.TurnSending, UserIndex: idx}
	m.pendingQuestion = text
	m.statusMsg = ""
	m.input.Reset()
	m.input.Blur()
	m.refreshViewport()

	req := api.ChatRequest{
		Message:        text,
		ConversationID: m.conversationID,
		Where:          m.where,
	}

	spin := m.spinner.Start()

	// The streaming endpoint carries no conversation id, so the first
	// turn of a conversation always uses the blocking endpoint.
	if m.streamingEnabled && m.conversationID != "" {
		m.streamBuf.Reset()
		ch, cmd := openStream(m.sender, seq, req)
		m.streamCh = ch
		return m, tea.Batch(spin, cmd)
	}

	return m, tea.Batch(spin, sendTurnCmd(m.sender, seq, req))
}

// stale reports whether a completion belongs to a superseded turn.
func (m Model) stale(seq int) bool {
	return !m.turn.Busy() || seq != m.turn.Seq
}

func (m Model) handleResolved(msg TurnResolvedMsg) (Model, tea.Cmd) {
	if m.stale(msg.Seq) {
		return m, nil
	}
	return m.resolveTurn(msg.Resp.Answer, msg.Resp.ConversationID, msg.Resp.Title)
}

func (m Model) handleFailed(msg TurnFailedMsg) (Model, tea.Cmd) {
	if m.stale(msg.Seq) {
		return m, nil
	}

	// The user entry stays; the failure becomes its own entry.
	m.transcript.Append(model.NewAssistantMessage(errorPrefix + api.Reason(msg.Err)))
	if m.streamCh != nil {
		// Nothing re-issues the wait after a failure; the producer
		// still needs a consumer until it closes the channel.
		go drainStream(m.streamCh)
		m.streamCh = nil
	}
	m.streamBuf.Reset()
	m.spinner.Stop()
	m.turn.State = model.TurnFailed
	m.input.Focus()
	m.refreshViewport()

	// A rejected credential is a session problem, not a turn problem.
	if errors.Is(msg.Err, api.ErrNotAuthenticated) {
		return m, func() tea.Msg { return SessionExpiredMsg{} }
	}
	return m, textinput.Blink
}

func (m Model) handleStreamToken(msg StreamTokenMsg) (Model, tea.Cmd) {
	if m.stale(msg.Seq) {
		return m, nil
	}
	// Chunks are raw answer deltas; they concatenate without separators.
	m.streamBuf.WriteString(msg.Content)
	m.refreshViewport()
	return m, waitStreamCmd(m.streamCh, msg.Seq)
}

func (m Model) handleStreamDone(msg StreamDoneMsg) (Model, tea.Cmd) {
	if m.stale(msg.Seq) {
		return m, nil
	}
	answer := m.streamBuf.String()
	m.streamBuf.Reset()
	m.streamCh = nil
	if answer == "" {
		return m.handleFailed(TurnFailedMsg{Seq: msg.Seq, Err: fmt.Errorf("the stream ended without an answer")})
	}
	// The streaming endpoint echoes no conversation id or title.
	return m.resolveTurn(answer, "", "")
}

// resolveTurn appends the answer, updates conversation identity and
// clears the busy state last.
func (m Model) resolveTurn(answer, conversationID, title string) (Model, tea.Cmd) {
	m.transcript.Append(model.NewAssistantMessage(answer))

	if conversationID != "" {
		m.conversationID = conversationID
	}
	if m.convRef != nil && m.conversationID != "" {
		if err := m.convRef.Save(m.conversationID); err != nil {
			m.statusMsg = "conversation not saved: " + err.Error()
		}
	}
	if title != "" {
		m.conversationTitle = title
		m.header.SetSubtitle(title)
	}

	var cmds []tea.Cmd
	if m.history != nil {
		cmds = append(cmds, recordExchangeCmd(m.history, m.conversationID, m.pendingQuestion, answer))
	}

	m.spinner.Stop()
	m.turn.State = model.TurnResolved
	m.input.Focus()
	m.refreshViewport()
	cmds = append(cmds, textinput.Blink)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func (m Model) handleCommand(text string) (Model, tea.Cmd) {
	fields := strings.Fields(strings.TrimPrefix(text, "/"))
	if len(fields) == 0 {
		return m, nil
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "help":
		m.showHelp = !m.showHelp
		return m, nil

	case "new":
		return m.startNewConversation()

	case "logout":
		return m, func() tea.Msg { return LogoutMsg{} }

	case "quit":
		return m, tea.Quit

	case "history":
		if m.history == nil {
			m.statusMsg = "history is not available"
			return m, nil
		}
		term := strings.Join(args, " ")
		return m, loadHistoryCmd(m.history, term, m.historyLimit)

	case "export":
		path := fmt.Sprintf("librarian-%s.md", time.Now().Format("2006-01-02"))
		if len(args) > 0 {
			path = args[0]
		}
		title := m.conversationTitle
		if title == "" {
			title = "Conversation"
		}
		return m, exportCmd(path, m.transcript.ExportMarkdown(title))

	case "filter":
		return m.handleFilter(args)

	default:
		m.statusMsg = "unknown command: /" + name
		return m, nil
	}
}

func (m Model) startNewConversation() (Model, tea.Cmd) {
	m.conversationID = ""
	m.conversationTitle = ""
	m.header.SetSubtitle("")
	if m.convRef != nil {
		if err := m.convRef.Clear(); err != nil {
			m.statusMsg = "conversation not cleared: " + err.Error()
			return m, nil
		}
	}
	m.transcript = model.NewTranscript()
	if m.greeting != "" {
		m.transcript.Append(model.NewAssistantMessage(m.greeting))
	}
	m.statusMsg = "started a new conversation"
	m.refreshViewport()
	return m, nil
}

// handleFilter sets, shows or clears the retrieval filter forwarded
// with every question, e.g. "/filter genre=fantasy".
func (m Model) handleFilter(args []string) (Model, tea.Cmd) {
	if len(args) == 0 {
		if len(m.where) == 0 {
			m.statusMsg = "no filter active"
		} else {
			m.statusMsg = "filter: " + formatWhere(m.where)
		}
		return m, nil
	}

	if len(args) == 1 && (args[0] == "clear" || args[0] == "off") {
		m.where = nil
		m.statusMsg = "filter cleared"
		return m, nil
	}

	where := make(map[string]any, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" || v == "" {
			m.statusMsg = "usage: /filter key=value ... | /filter clear"
			return m, nil
		}
		where[k] = v
	}
	m.where = where
	m.statusMsg = "filter: " + formatWhere(m.where)
	return m, nil
}

func formatWhere(where map[string]any) string {
	parts := make([]string, 0, len(where))
	for k, v := range where {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, " ")
}

func (m Model) handleHistoryLoaded(msg HistoryLoadedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.statusMsg = "history lookup failed: " + msg.Err.Error()
		return m, nil
	}
	if len(msg.Exchanges) == 0 {
		if msg.Term == "" {
			m.statusMsg = "no past exchanges yet"
		} else {
			m.statusMsg = "no exchanges matching " + msg.Term
		}
		return m, nil
	}

	var b strings.Builder
	if msg.Term == "" {
		b.WriteString("Recent exchanges:\n")
	} else {
		fmt.Fprintf(&b, "Exchanges matching %q:\n", msg.Term)
	}
	for _, e := range msg.Exchanges {
		fmt.Fprintf(&b, "\n- %s — %s\n  %s\n",
			e.CreatedAt.Format("Jan 2 15:04"),
			e.Question,
			firstLine(e.Answer))
	}
	m.transcript.Append(model.NewAssistantMessage(b.String()))
	m.refreshViewport()
	return m, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
