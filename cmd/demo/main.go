// Command demo is an interactive walkthrough of the ingestion API: it pulls
// a feed, submits every item to a running articlevault server and shows how
// many landed as new articles versus duplicates.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"articlevault/rssfeeds"
	"articlevault/store"
	"articlevault/types"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			MarginTop(1).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2)

	highlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
)

// Messages for the tea program
type fetchCompleteMsg struct {
	subs []types.Submission
	err  error
}

type submitResult struct {
	title  string
	status string
	err    error
}

type submitCompleteMsg struct {
	results []submitResult
	err     error
}

type statsMsg struct {
	stats *store.Stats
	err   error
}

// Model represents the application state
type model struct {
	state   string // "idle", "fetching", "submitting", "stats", "complete", "error"
	apiBase string
	feed    string
	count   int

	subs    []types.Submission
	results []submitResult
	stats   *store.Stats
	err     error
	logs    []string
}

func initialModel(apiBase, feed string, count int) model {
	return model{
		state:   "idle",
		apiBase: apiBase,
		feed:    feed,
		count:   count,
		logs:    []string{},
	}
}

func (m model) Init() tea.Cmd {
	// Don't start automatically - wait for user input
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "d", "D":
			if m.state == "idle" || m.state == "complete" || m.state == "error" {
				m.state = "fetching"
				m.results = nil
				m.stats = nil
				m.addLog(fmt.Sprintf("Fetching feed %q...", m.feed))
				return m, fetchFeed(m.feed, m.count)
			}
		}

	case fetchCompleteMsg:
		if msg.err != nil {
			m.state = "error"
			m.err = msg.err
			return m, nil
		}
		m.subs = msg.subs
		m.state = "submitting"
		m.addLog(fmt.Sprintf("Fetched %d items", len(msg.subs)))
		return m, submitAll(m.apiBase, msg.subs)

	case submitCompleteMsg:
		if msg.err != nil {
			m.state = "error"
			m.err = msg.err
			return m, nil
		}
		m.results = msg.results
		m.state = "stats"
		m.addLog(fmt.Sprintf("Submitted %d items", len(msg.results)))
		return m, fetchStats(m.apiBase)

	case statsMsg:
		if msg.err != nil {
			m.state = "error"
			m.err = msg.err
			return m, nil
		}
		m.stats = msg.stats
		m.state = "complete"
		m.addLog("Stats loaded")
		return m, nil
	}

	return m, nil
}

func (m *model) addLog(logMsg string) {
	m.logs = append(m.logs, fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), logMsg))
	if len(m.logs) > 10 {
		m.logs = m.logs[len(m.logs)-10:]
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("📚 ArticleVault Demo"))
	b.WriteString("\n\n")

	stateText := ""
	switch m.state {
	case "idle":
		stateText = highlightStyle.Render("👋 Ready!") + "\n\n" +
			infoStyle.Render("Press 'd' to fetch and ingest a feed, 'q' to quit")
	case "fetching":
		stateText = statusStyle.Render("⏳ Fetching RSS feed...")
	case "submitting":
		stateText = statusStyle.Render(fmt.Sprintf("📤 Submitting %d items to %s...", len(m.subs), m.apiBase))
	case "stats":
		stateText = statusStyle.Render("📈 Loading stats...")
	case "complete":
		stateText = highlightStyle.Render("✅ COMPLETE") + "\n\n" +
			infoStyle.Render("Press 'd' to run again, 'q' to quit")
	case "error":
		stateText = errorStyle.Render(fmt.Sprintf("❌ Error: %v", m.err))
	}
	b.WriteString(stateText)
	b.WriteString("\n\n")

	if len(m.results) > 0 {
		persisted, duplicates, failed := 0, 0, 0
		for _, r := range m.results {
			switch {
			case r.err != nil:
				failed++
			case r.status == "duplicate":
				duplicates++
			default:
				persisted++
			}
		}
		b.WriteString(infoStyle.Render(fmt.Sprintf("📊 New: %d | Duplicates: %d | Failed: %d", persisted, duplicates, failed)))
		b.WriteString("\n\n")
	}

	if len(m.logs) > 0 {
		b.WriteString(infoStyle.Render("📝 Recent Activity:"))
		b.WriteString("\n")
		for _, logMsg := range m.logs {
			b.WriteString(infoStyle.Render("   " + logMsg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.state == "complete" && m.stats != nil {
		b.WriteString(boxStyle.Render(formatStats(m.stats)))
		b.WriteString("\n\n")
	}

	b.WriteString(infoStyle.Render("Press q to quit"))
	b.WriteString("\n")
	return b.String()
}

func formatStats(s *store.Stats) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Stored articles: %d (with AI categories: %d)\n", s.Total, s.WithAdvanced))
	if len(s.ByCategory) > 0 {
		b.WriteString("By category:\n")
		for category, count := range s.ByCategory {
			b.WriteString(fmt.Sprintf("  %-14s %d\n", category, count))
		}
	}
	if len(s.ByLanguage) > 0 {
		b.WriteString("By language:\n")
		for lang, count := range s.ByLanguage {
			b.WriteString(fmt.Sprintf("  %-14s %d\n", lang, count))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func fetchFeed(feed string, count int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		subs, err := rssfeeds.FetchFeed(ctx, rssfeeds.ResolveFeedURL(feed), count)
		return fetchCompleteMsg{subs: subs, err: err}
	}
}

func submitAll(apiBase string, subs []types.Submission) tea.Cmd {
	return func() tea.Msg {
		client := &http.Client{Timeout: 60 * time.Second}
		results := make([]submitResult, 0, len(subs))

		for _, sub := range subs {
			status, err := submitOne(client, apiBase, sub)
			results = append(results, submitResult{title: sub.Title, status: status, err: err})
		}
		return submitCompleteMsg{results: results}
	}
}

func submitOne(client *http.Client, apiBase string, sub types.Submission) (string, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return "", err
	}

	resp, err := client.Post(apiBase+"/api/articles", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("submit failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	return parsed.Status, nil
}

func fetchStats(apiBase string) tea.Cmd {
	return func() tea.Msg {
		resp, err := http.Get(apiBase + "/api/stats")
		if err != nil {
			return statsMsg{err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return statsMsg{err: fmt.Errorf("stats request failed: %s", resp.Status)}
		}

		var stats store.Stats
		if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
			return statsMsg{err: err}
		}
		return statsMsg{stats: &stats}
	}
}

func main() {
	apiBase := flag.String("api", "", "Base URL of the articlevault API (default http://localhost:$PORT)")
	feed := flag.String("feed", rssfeeds.DefaultFeedPreset, "RSS feed preset name or URL")
	count := flag.Int("count", 5, "Number of feed items to submit")
	flag.Parse()

	_ = godotenv.Load()

	base := *apiBase
	if base == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		base = "http://localhost:" + port
	}

	p := tea.NewProgram(initialModel(base, *feed, *count))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "demo error: %v\n", err)
		os.Exit(1)
	}
}
