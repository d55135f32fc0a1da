package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// imageExtensions mirrors the loader's accepted formats for candidate
// directory scanning.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
}

// sourceCandidate is a directory that contains at least one source image.
type sourceCandidate struct {
	Path  string
	Count int
}

// DirListModel is the bubbletea model for interactive source directory
// selection.
type DirListModel struct {
	Candidates []sourceCandidate
	Cursor     int
	Selected   string
}

// NewDirListModel creates a new directory list model.
func NewDirListModel(candidates []sourceCandidate) DirListModel {
	return DirListModel{Candidates: candidates}
}

func (m DirListModel) Init() tea.Cmd {
	return nil
}

func (m DirListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Candidates)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = m.Candidates[m.Cursor].Path
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m DirListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Source Directory"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, cand := range m.Candidates {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%-30s  %s", cursor, cand.Path,
			listDimStyle.Render(fmt.Sprintf("%d images", cand.Count)))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Candidates))))

	return b.String()
}

// pickSourceDir scans root and its immediate subdirectories for image files
// and lets the user choose one interactively. It returns an empty string
// when the selection is cancelled.
func pickSourceDir(root string) (string, error) {
	candidates, err := findSourceCandidates(root)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no directories with images found under %s", root)
	}

	final, err := tea.NewProgram(NewDirListModel(candidates)).Run()
	if err != nil {
		return "", err
	}

	model, ok := final.(DirListModel)
	if !ok {
		return "", fmt.Errorf("unexpected model type %T", final)
	}
	return model.Selected, nil
}

// findSourceCandidates lists root and its direct subdirectories that hold
// at least one supported image, sorted by path.
func findSourceCandidates(root string) ([]sourceCandidate, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	dirs := []string{root}
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			dirs = append(dirs, filepath.Join(root, entry.Name()))
		}
	}

	var candidates []sourceCandidate
	for _, dir := range dirs {
		count := countImages(dir)
		if count > 0 {
			candidates = append(candidates, sourceCandidate{Path: dir, Count: count})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Path < candidates[j].Path })
	return candidates, nil
}

// countImages counts supported image files directly inside dir.
func countImages(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			count++
		}
	}
	return count
}
