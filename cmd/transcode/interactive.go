package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/compenguy/encodingbuf/charset"
	"github.com/compenguy/encodingbuf/recoder"
)

// previewLimit bounds how much of the file the preview decodes.
const previewLimit = 64 * 1024

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	confidenceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectEncoding modelState = iota
	stateShowPreview
)

type interactiveModel struct {
	err      error
	filename string
	raw      []byte
	guesses  []charset.Guess
	selected int
	state    modelState
	view     viewport.Model
	preview  string
	ready    bool
}

type loadedMsg struct {
	err     error
	raw     []byte
	guesses []charset.Guess
}

type previewMsg struct {
	err  error
	text string
}

func newInteractiveModel(filename string) *interactiveModel {
	return &interactiveModel{
		filename: filename,
		state:    stateSelectEncoding,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadFile
}

func (m *interactiveModel) loadFile() tea.Msg {
	f, err := os.Open(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	defer f.Close()

	raw := make([]byte, previewLimit)
	n, err := f.Read(raw)
	if err != nil && n == 0 {
		return loadedMsg{err: err}
	}
	raw = raw[:n]

	guesses, err := charset.DetectAll(raw)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{raw: raw, guesses: guesses}
}

func (m *interactiveModel) decodePreview() tea.Msg {
	label := m.guesses[m.selected].Label
	r, err := recoder.New(bytes.NewReader(m.raw), label)
	if err != nil {
		return previewMsg{err: err}
	}
	text, err := r.ReadToEnd()
	if err != nil {
		return previewMsg{err: err, text: string(text)}
	}
	return previewMsg{text: string(text)}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectEncoding && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectEncoding && m.selected < len(m.guesses)-1 {
				m.selected++
			}

		case "enter":
			if m.state == stateSelectEncoding && len(m.guesses) > 0 {
				return m, m.decodePreview
			}

		case "esc":
			if m.state == stateShowPreview {
				m.state = stateSelectEncoding
				m.preview = ""
				m.err = nil
			}
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.view = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.view.Width = msg.Width
			m.view.Height = msg.Height - 6
		}
		m.view.SetContent(m.preview)

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.raw = msg.raw
		m.guesses = msg.guesses

	case previewMsg:
		m.err = msg.err
		m.preview = msg.text
		m.view.SetContent(m.preview)
		m.view.GotoTop()
		m.state = stateShowPreview
	}

	if m.state == stateShowPreview {
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	var b bytes.Buffer

	b.WriteString(titleStyle.Render("transcode: " + m.filename))
	b.WriteString("\n\n")

	if m.err != nil && m.state == stateSelectEncoding {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("q: quit"))
		return b.String()
	}

	switch m.state {
	case stateSelectEncoding:
		b.WriteString("Detected encodings:\n\n")
		for i, g := range m.guesses {
			line := fmt.Sprintf("  %-16s %s", labelStyle.Render(g.Label),
				confidenceStyle.Render(fmt.Sprintf("%3d%%", g.Confidence)))
			if i == m.selected {
				line = selectedStyle.Render(fmt.Sprintf("> %-16s %3d%%", g.Label, g.Confidence))
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("up/down: select  enter: preview  q: quit"))

	case stateShowPreview:
		label := m.guesses[m.selected].Label
		b.WriteString(labelStyle.Render("Preview as " + label))
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Decoding failed: %v", m.err)))
			b.WriteString("\n\n")
		}
		if m.ready {
			b.WriteString(m.view.View())
		} else {
			b.WriteString(m.preview)
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc: back  q: quit"))
	}

	return b.String()
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newInteractiveModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
