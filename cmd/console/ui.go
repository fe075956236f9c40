package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const AppTitle = "DUNGEON RUN"

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	logViewport  viewport.Model
	metaViewport viewport.Model
	ready        bool
	width        int
	height       int

	lines  []lineMsg
	status statusMsg

	options []string
	choice  chan int
	ack     chan struct{}

	notice string
	ended  *runEndedMsg

	showQuitModal bool
	cancel        func() // stops the engine goroutine
}

var (
	logPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	importantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")). // green
			Bold(true)

	mediaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")). // dark grey
			Italic(true)

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

var titleCaser = cases.Title(language.English)

func NewConsoleUI(cancel func()) ConsoleUI {
	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	return ConsoleUI{
		logViewport:  logVp,
		metaViewport: viewport.New(20, 20),
		cancel:       cancel,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return nil
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		logWidth := int(float64(m.width)*0.72) - 4
		metaWidth := m.width - logWidth - 6

		m.logViewport.Width = logWidth - 2
		m.logViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.ready = true
		m.writeLogContent()
		m.metaViewport.SetContent(writeMetadata(m.status))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			if err := clipboard.WriteAll(m.plainLog()); err != nil {
				m.notice = errorStyle.Render("Copy failed: " + err.Error())
			} else {
				m.notice = noticeStyle.Render(fmt.Sprintf("Copied %d lines to the clipboard.", len(m.lines)))
			}
			return m, nil
		case tea.KeyEnter:
			if m.ack != nil {
				m.ack <- struct{}{}
				m.ack = nil
				m.notice = ""
				m.writeLogContent()
				return m, nil
			}
			if m.ended != nil {
				return m, tea.Quit
			}
		case tea.KeyRunes:
			if pick, ok := m.pick(msg.Runes); ok {
				m.choice <- pick
				m.lines = append(m.lines, lineMsg{kind: kindText, text: "> " + m.options[pick-1]})
				m.choice = nil
				m.options = nil
				m.notice = ""
				m.writeLogContent()
				return m, nil
			}
		}

	case lineMsg:
		m.lines = append(m.lines, msg)
		m.writeLogContent()

	case choiceMsg:
		m.options = msg.options
		m.choice = msg.reply
		m.writeLogContent()

	case ackMsg:
		m.ack = msg.reply
		m.writeLogContent()

	case statusMsg:
		m.status = msg
		m.metaViewport.SetContent(writeMetadata(m.status))

	case runEndedMsg:
		m.ended = &msg
		m.writeLogContent()
	}

	m.logViewport, vpCmd = m.logViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(vpCmd, mvCmd)
}

// pick turns a digit key into a 1-based option index when a choice is pending.
func (m ConsoleUI) pick(runes []rune) (int, bool) {
	if m.choice == nil || len(runes) != 1 {
		return 0, false
	}
	r := runes[0]
	if r < '1' || r > '9' {
		return 0, false
	}
	n := int(r - '0')
	if n > len(m.options) {
		return 0, false
	}
	return n, true
}

func (m ConsoleUI) plainLog() string {
	var b strings.Builder
	for _, l := range m.lines {
		b.WriteString(l.text)
		b.WriteString("\n")
	}
	return b.String()
}

// writeLogContent rebuilds the run log for the current viewport width.
func (m *ConsoleUI) writeLogContent() {
	width := max(m.logViewport.Width-6, 20)

	var content strings.Builder
	content.WriteString(titleStyle.Render(AppTitle) + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, l := range m.lines {
		wrapped := wordwrap.String(l.text, width)
		switch l.kind {
		case kindImportant:
			content.WriteString(importantStyle.Render(wrapped))
		case kindMedia:
			content.WriteString(mediaStyle.Render(wrapped))
		default:
			content.WriteString(wrapped)
		}
		content.WriteString("\n")
	}

	if len(m.options) > 0 {
		content.WriteString("\n")
		for i, opt := range m.options {
			content.WriteString(optionStyle.Render(wordwrap.String(fmt.Sprintf("%d. %s", i+1, opt), width)) + "\n")
		}
	}

	if m.ended != nil {
		content.WriteString("\n" + titleStyle.Render(m.ended.reason) + "\n")
		if m.ended.err != nil {
			content.WriteString(errorStyle.Render(m.ended.err.Error()) + "\n")
		}
	}

	m.logViewport.SetContent(content.String())
	m.logViewport.GotoBottom()
}

func writeMetadata(s statusMsg) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("CHARACTER") + "\n\n")

	content.WriteString(s.Name + "\n")
	if s.FatedOne {
		content.WriteString("Fated one\n")
	}
	if s.CruelWorld {
		content.WriteString("Cruel world\n")
	}
	content.WriteString("\n")

	content.WriteString(fmt.Sprintf("HP:    %d/%d\n", s.HP, s.MaxHP))
	content.WriteString(fmt.Sprintf("AP:    %d/%d\n", s.AP, s.MaxAP))
	content.WriteString(fmt.Sprintf("Money: %d\n\n", s.Money))

	content.WriteString("Location:\n")
	content.WriteString(fmt.Sprintf("Floor %d, %s\n", s.Floor, titleCaser.String(s.Area)))
	content.WriteString(fmt.Sprintf("%d events\n\n", s.Events))

	writeList(&content, "Inventory", s.Inventory)
	writeList(&content, "Skills", s.Skills)
	writeList(&content, "Status", s.Statuses)
	return content.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	b.WriteString(title + ":\n")
	if len(items) == 0 {
		b.WriteString("None\n\n")
		return
	}
	for _, it := range items {
		b.WriteString("• " + it + "\n")
	}
	b.WriteString("\n")
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		// Engine output keeps arriving behind the modal.
		m.showQuitModal = false
		model, cmd := m.Update(msg)
		next := model.(ConsoleUI)
		next.showQuitModal = true
		return next, cmd
	}
	switch keyMsg.Type {
	case tea.KeyCtrlC:
		m.cancel()
		return m, tea.Quit
	case tea.KeyEsc:
		m.showQuitModal = false
		return m, nil
	}
	switch strings.ToLower(keyMsg.String()) {
	case "y":
		m.cancel()
		return m, tea.Quit
	case "n":
		m.showQuitModal = false
	}
	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?") + "\n\n")
	content.WriteString("The run is saved after every event when a store is configured.\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modalStyle.Render(content.String()))
}

func (m ConsoleUI) footer() string {
	switch {
	case m.notice != "":
		return m.notice
	case m.choice != nil:
		return promptStyle.Render(fmt.Sprintf("Press 1-%d to choose • Ctrl+Y copy log • Esc quit", len(m.options)))
	case m.ack != nil:
		return promptStyle.Render("Press Enter to continue • Ctrl+Y copy log • Esc quit")
	case m.ended != nil:
		return promptStyle.Render("Press Enter to exit • Ctrl+Y copy log")
	default:
		return promptStyle.Render("...")
	}
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.logViewport.View(),
		"",
		m.footer(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		logPanelStyle.Render(left),
		metaPanelStyle.Render(m.metaViewport.View()),
	)
}
