package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ai-rag-weather/server/internal/bot/graph"
	"github.com/ai-rag-weather/server/internal/bot/model"
	logx "github.com/ai-rag-weather/server/pkg/logger"
)

const contextSnippetLen = 200

// Model is the Bubble Tea model for the chat surface.
type Model struct {
	runner    graph.Runner
	history   model.ChatHistoryRepository
	sessionID string

	input    textinput.Model
	viewport viewport.Model
	messages []model.ChatMessage

	forceWeather bool
	status       string
	ready        bool
}

// New creates the chat model and loads the session transcript so a
// reconnecting session picks up where it left off.
func New(runner graph.Runner, history model.ChatHistoryRepository, sessionID string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the weather or your document"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)

	m := Model{
		runner:    runner,
		history:   history,
		sessionID: sessionID,
		input:     ti,
		viewport:  vp,
		status:    "Ready. Enter to send, ctrl+w toggles weather mode, ctrl+l clears history.",
	}
	msgs, err := history.LoadHistory(context.Background(), sessionID)
	if err != nil {
		logx.Error().Err(err).Str("sessionID", sessionID).Msg("failed to load chat history")
		m.status = "Could not load previous history; starting fresh."
	} else {
		m.messages = msgs
	}
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, qh := inputBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header + status + input frame + spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-th)
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			return m.submit()
		case "ctrl+w":
			m.forceWeather = !m.forceWeather
			if m.forceWeather {
				m.status = "Weather mode ON: every query goes to the weather path."
			} else {
				m.status = "Weather mode off: queries are classified automatically."
			}
			return m, nil
		case "ctrl+l":
			if err := m.history.ClearHistory(context.Background(), m.sessionID); err != nil {
				m.status = "Could not clear history: " + err.Error()
				return m, nil
			}
			m.messages = nil
			m.status = "History cleared."
			m.viewport.SetContent(m.renderTranscript())
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs the query through the graph. The run blocks the UI loop
// on purpose: one question, one answer, no interleaving.
func (m Model) submit() (tea.Model, tea.Cmd) {
	q := strings.TrimSpace(m.input.Value())
	if q == "" {
		return m, nil
	}
	ctx := context.Background()

	userMsg := model.ChatMessage{Role: model.RoleUser, Content: q}
	m.appendMessage(ctx, userMsg)

	in := model.QueryInput{UserInput: q}
	if m.forceWeather {
		in.Intent = model.IntentWeather
	}
	state := m.runner.Invoke(ctx, in)

	botMsg := model.ChatMessage{
		Role:    model.RoleAssistant,
		Content: state.Answer,
		Weather: state.Weather,
	}
	if state.Retrieval != nil {
		botMsg.Contexts = state.Retrieval.Contexts
	}
	m.appendMessage(ctx, botMsg)

	m.input.SetValue("")
	m.status = fmt.Sprintf("Answered via %s path.", state.Intent)
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
	return m, nil
}

func (m *Model) appendMessage(ctx context.Context, msg model.ChatMessage) {
	m.messages = append(m.messages, msg)
	if err := m.history.AddMessage(ctx, m.sessionID, msg); err != nil {
		logx.Error().Err(err).Str("sessionID", m.sessionID).Msg("failed to persist chat message")
	}
}

// View renders the TUI layout and transcript.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("AI RAG WeatherBot")
	if m.forceWeather {
		header += "  " + modeStyle.Render("[weather mode]")
	}
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.messages) == 0 {
		return "No messages yet. Ask something."
	}
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch msg.Role {
		case model.RoleUser:
			b.WriteString(userStyle.Render("You: ") + msg.Content)
		default:
			b.WriteString(botStyle.Render("Bot: ") + msg.Content)
			if ev := renderEvidence(msg); ev != "" {
				b.WriteString("\n" + evidenceStyle.Render(ev))
			}
		}
	}
	return b.String()
}

// renderEvidence shows where an assistant answer came from: the weather
// reading behind the templated sentence, or the retrieved chunks behind
// a document answer.
func renderEvidence(msg model.ChatMessage) string {
	if msg.Weather != nil {
		w := msg.Weather
		return fmt.Sprintf("Weather — %s, %s\n%s, temp %.2f° (feels like %.2f°), humidity %d%%, wind %.2f m/s",
			w.City, w.Country, w.Description, w.Temp, w.FeelsLike, w.Humidity, w.WindSpeed)
	}
	if len(msg.Contexts) > 0 {
		parts := make([]string, len(msg.Contexts))
		for i, c := range msg.Contexts {
			parts[i] = fmt.Sprintf("Ctx %d — Page %d: %s", i+1, c.Page, snippet(c.Text))
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= contextSnippetLen {
		return text
	}
	return string(runes[:contextSnippetLen]) + "…"
}

var (
	headerStyle        = lipgloss.NewStyle().Bold(true)
	modeStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	evidenceStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
