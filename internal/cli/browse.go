package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/museum/pkg/collection"
	"github.com/matzehuels/museum/pkg/museum"
	"github.com/matzehuels/museum/pkg/pipeline"
)

// browseCommand creates the browse command: an interactive list of the
// items a build would hang.
func (c *CLI) browseCommand() *cobra.Command {
	var token, timeRange string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse your top artists, tracks and albums",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			credential, err := c.credential(ctx, token)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.defaultOptions()
			if timeRange != "" {
				opts.TimeRange = timeRange
			}
			if err := opts.ValidateForCollect(); err != nil {
				return err
			}

			m := newBrowseModel(collectCmd(ctx, runner, credential, opts))
			final, err := tea.NewProgram(m).Run()
			if err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			if bm, ok := final.(browseModel); ok && bm.err != nil {
				return bm.err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Spotify access token (default: $SPOTIFY_TOKEN or the stored login)")
	cmd.Flags().StringVar(&timeRange, "time-range", "", "listening window: short, medium (default), long")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the cache")
	return cmd
}

// collectionMsg delivers the fetched collection to the model.
type collectionMsg struct {
	coll *collection.Collection
	err  error
}

func collectCmd(ctx context.Context, runner *pipeline.Runner, credential string, opts pipeline.Options) tea.Cmd {
	return func() tea.Msg {
		coll, err := runner.Collect(ctx, credential, opts)
		return collectionMsg{coll: coll, err: err}
	}
}

// Browse styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	tabActiveStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
)

// browseFilters are the tabs; the empty category shows everything.
var browseFilters = append([]museum.Category{""}, museum.Categories...)

// =============================================================================
// browseModel - Interactive collection list
// =============================================================================

type browseModel struct {
	load    tea.Cmd
	spinner spinner.Model
	loading bool
	err     error

	items    []museum.DisplayItem
	failures []collection.Failure

	filter int
	cursor int
	offset int
	height int
	detail bool
}

func newBrowseModel(load tea.Cmd) browseModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleIconSpinner
	return browseModel{
		load:    load,
		spinner: sp,
		loading: true,
		height:  15,
	}
}

func (m browseModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load)
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case collectionMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.items = msg.coll.Items
		m.failures = msg.coll.Failures
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc":
		if m.detail {
			m.detail = false
			return m, nil
		}
		return m, tea.Quit
	}
	if m.loading {
		return m, nil
	}

	switch msg.String() {
	case "tab", "right", "l":
		m.setFilter((m.filter + 1) % len(browseFilters))
	case "shift+tab", "left", "h":
		m.setFilter((m.filter + len(browseFilters) - 1) % len(browseFilters))
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.offset = min(m.offset, m.cursor)
		}
	case "down", "j":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}
	case "enter":
		if len(m.visible()) > 0 {
			m.detail = !m.detail
		}
	}
	return m, nil
}

func (m *browseModel) setFilter(i int) {
	m.filter = i
	m.cursor, m.offset = 0, 0
	m.detail = false
}

// visible returns the items shown under the current tab.
func (m browseModel) visible() []museum.DisplayItem {
	cat := browseFilters[m.filter]
	if cat == "" {
		return m.items
	}
	var out []museum.DisplayItem
	for _, it := range m.items {
		if it.Category == cat {
			out = append(out, it)
		}
	}
	return out
}

// selected returns the item under the cursor.
func (m browseModel) selected() (museum.DisplayItem, bool) {
	items := m.visible()
	if m.cursor >= len(items) {
		return museum.DisplayItem{}, false
	}
	return items[m.cursor], true
}

func (m browseModel) View() string {
	if m.loading {
		return fmt.Sprintf("%s Fetching your top artists, tracks and albums...\n", m.spinner.View())
	}
	if m.err != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Your Collection"))
	b.WriteString("\n")
	b.WriteString(m.tabs())
	b.WriteString("\n\n")

	if m.detail {
		b.WriteString(m.detailView())
	} else {
		b.WriteString(m.tableView())
	}

	for _, f := range m.failures {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(fmt.Sprintf("  Top %s unavailable: %v", plural(f.Category, 2), f.Err)))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("⇥ filter  ↑/↓ navigate  ⏎ details  q quit"))
	return b.String()
}

func (m browseModel) tabs() string {
	counts := make(map[museum.Category]int)
	for _, it := range m.items {
		counts[it.Category]++
	}
	parts := make([]string, len(browseFilters))
	for i, cat := range browseFilters {
		label := fmt.Sprintf("All %d", len(m.items))
		if cat != "" {
			label = fmt.Sprintf("%ss %d", cat.Label(), counts[cat])
		}
		if i == m.filter {
			parts[i] = tabActiveStyle.Render(label)
		} else {
			parts[i] = listDimStyle.Render(label)
		}
	}
	return strings.Join(parts, "  ")
}

func (m browseModel) tableView() string {
	items := m.visible()
	if len(items) == 0 {
		return listDimStyle.Render("  Nothing here")
	}
	end := min(m.offset+m.height, len(items))

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		it := items[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, fmt.Sprintf("%d", i+1), it.Name, strings.Join(it.Artists, ", "), string(it.Category)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Name", "By", "Kind").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			idx := m.offset + row
			if idx >= len(items) {
				return lipgloss.NewStyle()
			}
			if col == 4 {
				return categoryStyles[items[idx].Category]
			}
			if idx == m.cursor {
				return listSelectedStyle
			}
			if col == 1 || col == 3 {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})

	return t.Render() + "\n" + listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(items)))
}

func (m browseModel) detailView() string {
	it, ok := m.selected()
	if !ok {
		return ""
	}
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(10)
	line := func(k, v string) string {
		return "  " + keyStyle.Render(k) + StyleValue.Render(v) + "\n"
	}

	var b strings.Builder
	b.WriteString(categoryStyles[it.Category].Bold(true).Render("  " + it.Name))
	b.WriteString("\n\n")
	b.WriteString(line("Kind", it.Category.Label()))
	if len(it.Artists) > 0 {
		b.WriteString(line("By", strings.Join(it.Artists, ", ")))
	}
	if it.ID != "" {
		b.WriteString(line("ID", it.ID))
	}
	b.WriteString(line("Artwork", StyleLink.Render(it.ImageURL)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("  esc back"))
	b.WriteString("\n")
	return b.String()
}
