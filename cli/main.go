package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#E8590C")).
			Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0a84ff"))

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#30d158"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

var userID = flag.Int("user", 1, "User ID to chat as")

// Model defines the application state
type Model struct {
	transcript viewport.Model
	inputField textinput.Model
	spinner    spinner.Model
	client     *ApiClient
	session    *Session
	lines      []string
	loading    bool
	error      string
	ready      bool
}

// Custom message types for the tea.Model
type sessionMsg struct {
	session *Session
}

type replyMsg struct {
	text string
}

type errorMsg struct {
	err string
}

func initialModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Ask for recommendations, add items, or /help"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60

	return Model{
		inputField: ti,
		spinner:    s,
		client:     NewApiClient(),
		loading:    true,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, openSession(m.client, *userID))
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.transcript = viewport.New(msg.Width-4, msg.Height-7)
			m.ready = true
		} else {
			m.transcript.Width = msg.Width - 4
			m.transcript.Height = msg.Height - 7
		}
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			input := strings.TrimSpace(m.inputField.Value())
			if input == "" || m.loading || m.session == nil {
				return m, nil
			}
			m.inputField.SetValue("")

			if input == "/quit" {
				return m, tea.Quit
			}
			if input == "/help" {
				m.appendLine(helpStyle.Render("Commands: /cart  /checkout  /summary  /quit"))
				return m, nil
			}

			m.appendLine(userStyle.Render("You: ") + input)
			m.loading = true
			return m, m.dispatch(input)
		}

	case sessionMsg:
		m.session = msg.session
		m.loading = false
		m.appendLine(assistantStyle.Render("Assistant: ") + msg.session.Message)
		return m, nil

	case replyMsg:
		m.loading = false
		m.error = ""
		m.appendLine(assistantStyle.Render("Assistant: ") + msg.text)
		return m, nil

	case errorMsg:
		m.loading = false
		m.error = msg.err
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.inputField, cmd = m.inputField.Update(msg)
	cmds = append(cmds, cmd)
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)
	if m.ready {
		m.transcript, cmd = m.transcript.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// dispatch routes slash commands and plain chat to the API.
func (m *Model) dispatch(input string) tea.Cmd {
	switch input {
	case "/cart":
		return fetchCart(m.client, m.session.SessionID)
	case "/checkout":
		return doCheckout(m.client, m.session.SessionID)
	case "/summary":
		return fetchSummary(m.client, m.session.UserID)
	default:
		return sendChat(m.client, m.session.SessionID, input)
	}
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line, "")
	m.refreshTranscript()
}

func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.transcript.SetContent(strings.Join(m.lines, "\n"))
	m.transcript.GotoBottom()
}

// View renders the UI
func (m Model) View() string {
	header := titleStyle.Render("Tiffin - personalized food ordering")

	body := "Connecting..."
	if m.ready {
		body = m.transcript.View()
	}

	status := ""
	if m.loading {
		status = m.spinner.View() + " thinking..."
	}
	if m.error != "" {
		status = errorStyle.Render(m.error)
	}

	help := helpStyle.Render("/cart /checkout /summary /quit  •  esc to exit")

	return docStyle.Render(header + "\n\n" + body + "\n" + status + "\n" + m.inputField.View() + "\n" + help)
}

// openSession initializes a conversation with the server
func openSession(client *ApiClient, userID int) tea.Cmd {
	return func() tea.Msg {
		if !client.Ping() {
			return errorMsg{err: fmt.Sprintf("Server at %s is not reachable", client.BaseURL)}
		}
		session, err := client.InitSession(userID)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Failed to open session: %v", err)}
		}
		return sessionMsg{session: session}
	}
}

// sendChat sends one chat message
func sendChat(client *ApiClient, sessionID, message string) tea.Cmd {
	return func() tea.Msg {
		reply, err := client.Chat(sessionID, message)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Chat failed: %v", err)}
		}
		return replyMsg{text: reply.Message}
	}
}

// fetchCart renders the current cart
func fetchCart(client *ApiClient, sessionID string) tea.Cmd {
	return func() tea.Msg {
		cart, err := client.GetCart(sessionID)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Failed to fetch cart: %v", err)}
		}

		if len(cart.Items) == 0 {
			return replyMsg{text: "Your cart is empty."}
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Cart from %s:\n", cart.RestaurantName)
		for _, line := range cart.Items {
			fmt.Fprintf(&b, "  %dx %s - ₹%.0f\n", line.Quantity, line.ItemName, line.TotalPrice)
		}
		fmt.Fprintf(&b, "Subtotal ₹%.0f + delivery ₹%.0f = ₹%.0f", cart.Subtotal, cart.DeliveryFee, cart.Total)
		if !cart.MinimumOrderMet {
			fmt.Fprintf(&b, "\nAdd ₹%.0f more to reach the minimum order.", cart.MinimumOrder-cart.Subtotal)
		}
		return replyMsg{text: b.String()}
	}
}

// doCheckout completes the order
func doCheckout(client *ApiClient, sessionID string) tea.Cmd {
	return func() tea.Msg {
		result, err := client.Checkout(sessionID)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Checkout failed: %v", err)}
		}
		if !result.Success {
			return replyMsg{text: result.Message}
		}
		return replyMsg{text: fmt.Sprintf("%s\nTotal ₹%.0f, reward applied: %.2f", result.Message, result.Total, result.Reward)}
	}
}

// fetchSummary shows what the engine has learned about the user
func fetchSummary(client *ApiClient, userID int) tea.Cmd {
	return func() tea.Msg {
		summary, err := client.GetSummary(userID)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Failed to fetch summary: %v", err)}
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Learned preferences for user %d:\n", summary.UserID)
		fmt.Fprintf(&b, "  items learned: %d, batches shown: %d\n", summary.LearnedItems, summary.TotalInteractions)
		for i, item := range summary.TopItems {
			fmt.Fprintf(&b, "  %d. item #%d (weight %.2f)\n", i+1, item.ItemID, item.PreferenceScore)
		}
		return replyMsg{text: strings.TrimRight(b.String(), "\n")}
	}
}

func main() {
	flag.Parse()

	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
