// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

// librarian is a terminal client for the Smart Librarian book
// recommendation service. It signs the user in, resumes the previous
// conversation and runs an interactive chat view.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avoicu/librarian-tui/internal/api"
	"github.com/avoicu/librarian-tui/internal/config"
	"github.com/avoicu/librarian-tui/internal/session"
	"github.com/avoicu/librarian-tui/internal/storage"
	"github.com/avoicu/librarian-tui/internal/ui/auth"
	"github.com/avoicu/librarian-tui/internal/ui/chat"
	"github.com/avoicu/librarian-tui/internal/ui/styles"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version", "-v":
			fmt.Printf("librarian %s\n", Version)
			return
		case "--help", "-h":
			printUsage()
			return
		case "--server":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "error: --server requires a URL")
				os.Exit(2)
			}
			i++
			os.Setenv("LIBRARIAN_SERVER_URL", args[i])
		case "--no-stream":
			os.Setenv("LIBRARIAN_STREAMING", "false")
		default:
			fmt.Fprintf(os.Stderr, "error: unknown flag %s\n", args[i])
			printUsage()
			os.Exit(2)
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: librarian [flags]

Flags:
  --server URL   backend base URL (overrides config)
  --no-stream    disable the streaming endpoint
  --version      print the version
  --help         show this help`)
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	tokens, err := config.NewTokenStore()
	if err != nil {
		return err
	}
	convRef, err := config.NewConversationRef()
	if err != nil {
		return err
	}

	client := api.New(cfg.Server.BaseURL, tokens).
		WithTimeout(time.Duration(cfg.Server.TimeoutSecs) * time.Second).
		WithTrace(cfg.Logging.HTTPTrace)

	dir, err := config.Dir()
	if err != nil {
		return err
	}
	history, err := storage.Open(context.Background(), filepath.Join(dir, "history.db"))
	if err != nil {
		// The chat works without local history; log and continue.
		log.Printf("history store unavailable: %v", err)
		history = nil
	}
	if history != nil {
		defer history.Close()
	}

	m := newModel(cfg, client, convRef, history)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// =============================================================================
// APPLICATION STATES
// =============================================================================

// State selects which view the root model renders.
type State int

const (
	StateLoading  State = iota // Validating the stored token
	StateLogin                 // Login form
	StateRegister              // Registration form
	StateChat                  // Conversation view
)

// =============================================================================
// ROOT MODEL
// =============================================================================

// Model is the top-level Bubble Tea model. It routes between the
// loading screen, the auth forms and the chat view based on the
// session gate.
type Model struct {
	state State
	theme *styles.Theme

	cfg     *config.Config
	client  *api.Client
	session *session.Session
	convRef *config.ConversationRef
	history *storage.HistoryStore

	login    auth.LoginModel
	register auth.RegisterModel
	chat     chat.Model

	width  int
	height int
}

func newModel(cfg *config.Config, client *api.Client, convRef *config.ConversationRef, history *storage.HistoryStore) *Model {
	theme := styles.NewTheme()
	return &Model{
		state:    StateLoading,
		theme:    theme,
		cfg:      cfg,
		client:   client,
		session:  session.New(client),
		convRef:  convRef,
		history:  history,
		login:    auth.NewLogin(client, theme),
		register: auth.NewRegister(client, theme),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		session.RefreshCmd(context.Background(), m.session),
		m.login.Init(),
	)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.login.SetSize(msg.Width, msg.Height)
		m.register.SetSize(msg.Width, msg.Height)
		if m.state == StateChat {
			var cmd tea.Cmd
			m.chat, cmd = m.chat.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		// Global quit outside the chat view (the chat binds it itself).
		if msg.String() == "ctrl+c" && m.state != StateChat {
			return m, tea.Quit
		}

	case session.RefreshedMsg:
		switch msg.Gate {
		case session.GateAdmitted:
			return m.enterChat()
		case session.GateDenied:
			m.state = StateLogin
			return m, m.login.Init()
		}
		return m, nil

	case auth.LoggedInMsg:
		// The token is stored; re-validate it to populate the session.
		m.state = StateLoading
		return m, session.RefreshCmd(context.Background(), m.session)

	case auth.RegisteredMsg:
		m.state = StateLogin
		m.login = auth.NewLogin(m.client, m.theme)
		m.login.SetEmail(msg.Email)
		m.login.SetSize(m.width, m.height)
		return m, m.login.Init()

	case auth.SwitchToRegisterMsg:
		m.state = StateRegister
		m.register = auth.NewRegister(m.client, m.theme)
		m.register.SetSize(m.width, m.height)
		return m, m.register.Init()

	case auth.SwitchToLoginMsg:
		m.state = StateLogin
		m.login = auth.NewLogin(m.client, m.theme)
		m.login.SetSize(m.width, m.height)
		return m, m.login.Init()

	case chat.SessionExpiredMsg:
		m.state = StateLoading
		return m, session.RefreshCmd(context.Background(), m.session)

	case chat.LogoutMsg:
		if err := m.client.Logout(); err != nil {
			log.Printf("logout: %v", err)
		}
		m.session.Clear()
		m.state = StateLogin
		m.login = auth.NewLogin(m.client, m.theme)
		m.login.SetSize(m.width, m.height)
		return m, m.login.Init()
	}

	return m.updateActiveView(msg)
}

func (m *Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case StateLogin:
		m.login, cmd = m.login.Update(msg)
	case StateRegister:
		m.register, cmd = m.register.Update(msg)
	case StateChat:
		m.chat, cmd = m.chat.Update(msg)
	}
	return m, cmd
}

// enterChat builds the chat view for the validated user and resumes
// the persisted conversation if one exists.
func (m *Model) enterChat() (tea.Model, tea.Cmd) {
	conversationID, err := m.convRef.Load()
	if err != nil {
		log.Printf("conversation ref: %v", err)
		conversationID = ""
	}

	email := ""
	if user := m.session.User(); user != nil {
		email = user.Email
	}

	opts := chat.Options{
		Sender:          m.client,
		ConversationRef: m.convRef,
		Theme:           m.theme,
		Greeting:        m.cfg.Chat.Greeting,
		Streaming:       m.cfg.Chat.Streaming,
		Markdown:        m.cfg.UI.Markdown,
		HistoryLimit:    m.cfg.Chat.HistoryLimit,
		UserEmail:       email,
		ConversationID:  conversationID,
	}
	if m.history != nil {
		opts.History = m.history
	}

	m.chat = chat.New(opts)
	m.state = StateChat

	cmds := []tea.Cmd{m.chat.Init()}
	if m.width > 0 {
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m *Model) View() string {
	switch m.state {
	case StateLoading:
		return m.theme.Container.Render("checking your session...")
	case StateLogin:
		return m.login.View()
	case StateRegister:
		return m.register.View()
	case StateChat:
		return m.chat.View()
	default:
		return ""
	}
}
