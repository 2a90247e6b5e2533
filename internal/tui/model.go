// Package tui provides the Bubbletea interface for mtodo: the todo list
// window, the new/edit form, the delete confirmation and a markdown preview
// of a todo's description.
package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/mtodo/mtodo/internal/action"
	"github.com/mtodo/mtodo/internal/debug"
	"github.com/mtodo/mtodo/internal/types"
	"github.com/mtodo/mtodo/internal/ui"
	"github.com/mtodo/mtodo/internal/widget"
)

const (
	// AppTitle is the main window title.
	AppTitle = "MTodo"

	emptyTitle   = "No Todo Found."
	emptyMessage = "Click on 'Add New' button on your top-left side."

	// cardHeight is a bordered title line plus a description line.
	cardHeight = 4
	// chromeHeight covers the title, header, header margin, status and help lines.
	chromeHeight = 5
)

type viewMode int

const (
	modeList viewMode = iota
	modeEdit
	modeConfirm
	modePreview
)

// Options configures a Model.
type Options struct {
	Actions *action.Actions
	Theme   *widget.Theme
	Icon    string
	// Width and Height are the initial window size; non-positive values fall
	// back to widget.DefaultWidth and widget.DefaultHeight.
	Width  int
	Height int
	// Watcher, if set, triggers a refresh when the database changes on disk.
	Watcher *Watcher
}

// Model is the Bubbletea model for the todo window.
type Model struct {
	ctx     context.Context
	actions *action.Actions
	theme   *widget.Theme
	watcher *Watcher

	window widget.Window
	keys   KeyMap
	help   help.Model

	mode     viewMode
	snapshot action.Snapshot
	selected int
	offset   int
	sized    bool

	// editor state
	form      *huh.Form
	editing   *types.Todo
	fields    *editFields
	confirmed bool
	// returnTo is where the confirm dialog goes back to on cancel.
	returnTo viewMode
	target   *types.Todo

	preview viewport.Model

	status string
	err    error
}

type editFields struct {
	Title       string
	Description string
	IsImportant bool
	IsDone      bool
}

// New creates the todo window model.
func New(ctx context.Context, opts Options) *Model {
	m := &Model{
		ctx:     ctx,
		actions: opts.Actions,
		theme:   opts.Theme,
		watcher: opts.Watcher,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		preview: viewport.New(0, 0),
	}
	if m.theme == nil {
		m.theme = widget.DefaultTheme()
	}
	m.window = widget.Window{
		Title:  AppTitle,
		Icon:   opts.Icon,
		Width:  opts.Width,
		Height: opts.Height,
	}
	return m
}

// snapshotMsg carries a refresh result, optionally after a mutation.
type snapshotMsg struct {
	snap   action.Snapshot
	status string
	err    error
}

// resizedMsg reports the outcome of persisting the window size.
type resizedMsg struct{ err error }

// dbChangedMsg is sent when the watcher sees the database change.
type dbChangedMsg struct{}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.refresh(),
		m.waitForChange(),
		tea.SetWindowTitle(AppTitle),
	)
}

func (m *Model) refresh() tea.Cmd {
	return m.mutate("", nil)
}

// mutate runs fn, then refreshes the snapshot. A failed mutation still
// refreshes so the list reflects what the store holds.
func (m *Model) mutate(status string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		var opErr error
		if fn != nil {
			opErr = fn(m.ctx)
		}
		snap, err := m.actions.Snapshot(m.ctx)
		if opErr != nil {
			return snapshotMsg{snap: snap, err: opErr}
		}
		return snapshotMsg{snap: snap, status: status, err: err}
	}
}

func (m *Model) waitForChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	changes := m.watcher.Changes()
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return dbChangedMsg{}
	}
}

func (m *Model) persistSize(width, height int) tea.Cmd {
	return func() tea.Msg {
		return resizedMsg{err: m.actions.Resize(width, height)}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m, m.resize(msg)

	case snapshotMsg:
		m.applySnapshot(msg)
		return m, nil

	case resizedMsg:
		if msg.err != nil {
			debug.Logf("persist window size: %v", msg.err)
		}
		return m, nil

	case dbChangedMsg:
		debug.Logf("database changed on disk, refreshing")
		return m, tea.Batch(m.refresh(), m.waitForChange())

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch m.mode {
	case modeEdit:
		return m.updateEditor(msg)
	case modeConfirm:
		return m.updateConfirm(msg)
	case modePreview:
		return m.updatePreview(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m, m.handleListKey(msg)
	}
	return m, nil
}

func (m *Model) resize(msg tea.WindowSizeMsg) tea.Cmd {
	m.window.Width = msg.Width
	m.window.Height = msg.Height
	m.help.Width = msg.Width
	m.preview.Width = msg.Width
	m.preview.Height = max(1, msg.Height-chromeHeight)
	if m.form != nil {
		m.form = m.form.WithWidth(msg.Width)
	}
	m.clampSelection()

	// The first size message reports the terminal we started in, not a
	// user resize.
	if !m.sized {
		m.sized = true
		return nil
	}
	return m.persistSize(msg.Width, msg.Height)
}

func (m *Model) applySnapshot(msg snapshotMsg) {
	m.snapshot = msg.snap
	m.err = msg.err
	if msg.err != nil {
		m.status = ""
		debug.Logf("refresh: %v", msg.err)
	} else if msg.status != "" {
		m.status = msg.status
	}
	m.clampSelection()
}

func (m *Model) clampSelection() {
	n := len(m.snapshot.Items)
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	per := m.perPage()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+per {
		m.offset = m.selected - per + 1
	}
	if m.offset > max(0, n-per) {
		m.offset = max(0, n-per)
	}
}

func (m *Model) perPage() int {
	_, height := m.window.Size()
	return max(1, (height-chromeHeight)/cardHeight)
}

func (m *Model) current() *types.Todo {
	if m.selected < 0 || m.selected >= len(m.snapshot.Items) {
		return nil
	}
	return m.snapshot.Items[m.selected]
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.selected--
		m.clampSelection()
	case key.Matches(msg, m.keys.Down):
		m.selected++
		m.clampSelection()
	case key.Matches(msg, m.keys.Refresh):
		return m.refresh()
	case key.Matches(msg, m.keys.ShowAll):
		on := m.actions.ToggleShowAll()
		status := "Hiding done items"
		if on {
			status = "Showing all items"
		}
		return m.mutate(status, nil)
	case key.Matches(msg, m.keys.New):
		return m.openEditor(nil)
	}

	todo := m.current()
	if todo == nil {
		return nil
	}
	id := todo.ID
	switch {
	case key.Matches(msg, m.keys.Edit):
		return m.openEditor(todo)
	case key.Matches(msg, m.keys.Done):
		return m.mutate(fmt.Sprintf("Toggled done on #%d", id), func(ctx context.Context) error {
			_, err := m.actions.ToggleDone(ctx, id)
			return err
		})
	case key.Matches(msg, m.keys.Important):
		return m.mutate(fmt.Sprintf("Toggled important on #%d", id), func(ctx context.Context) error {
			_, err := m.actions.ToggleImportant(ctx, id)
			return err
		})
	case key.Matches(msg, m.keys.Delete):
		return m.openConfirm(todo, modeList)
	case key.Matches(msg, m.keys.Preview):
		m.openPreview(todo)
	}
	return nil
}

// openEditor shows the new/edit form. todo is nil for a new item.
func (m *Model) openEditor(todo *types.Todo) tea.Cmd {
	fields := &editFields{}
	if todo != nil {
		fields = &editFields{
			Title:       todo.Title,
			Description: todo.Description,
			IsImportant: todo.IsImportant,
			IsDone:      todo.IsDone,
		}
	}
	return m.showEditor(todo, fields)
}

func (m *Model) showEditor(todo *types.Todo, fields *editFields) tea.Cmd {
	m.editing = todo
	m.fields = fields

	width, _ := m.window.Size()
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs doing?").
				CharLimit(types.MaxTitleLength).
				Value(&m.fields.Title).
				Validate(func(s string) error {
					return types.Draft{Title: s}.Validate()
				}),
			huh.NewText().
				Title("Description").
				Placeholder("Details (markdown)").
				CharLimit(types.MaxDescriptionLength).
				Value(&m.fields.Description),
			huh.NewConfirm().
				Title("Is Important").
				Affirmative("Yes").
				Negative("No").
				Value(&m.fields.IsImportant),
			huh.NewConfirm().
				Title("Is done").
				Affirmative("Yes").
				Negative("No").
				Value(&m.fields.IsDone),
		),
	).WithShowHelp(true).WithWidth(width)

	m.mode = modeEdit
	return m.form.Init()
}

func (m *Model) closeEditor() {
	m.form = nil
	m.editing = nil
	m.fields = nil
	m.mode = modeList
}

func (m *Model) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, m.keys.Cancel):
			m.closeEditor()
			return m, nil
		case key.Matches(k, m.keys.DeleteItem) && m.editing != nil:
			return m, m.openConfirm(m.editing, modeEdit)
		}
	}

	f, cmd := m.form.Update(msg)
	if form, ok := f.(*huh.Form); ok {
		m.form = form
	}

	switch m.form.State {
	case huh.StateCompleted:
		save := m.saveCmd()
		m.closeEditor()
		return m, save
	case huh.StateAborted:
		m.closeEditor()
		return m, nil
	}
	return m, cmd
}

// saveCmd stores the form fields: AddItem for a new item, EditItem otherwise.
func (m *Model) saveCmd() tea.Cmd {
	d := types.Draft{
		Title:       m.fields.Title,
		Description: m.fields.Description,
		IsDone:      m.fields.IsDone,
		IsImportant: m.fields.IsImportant,
	}
	if m.editing == nil {
		return m.mutate("Added "+strconv.Quote(d.Normalize().Title), func(ctx context.Context) error {
			_, err := m.actions.AddItem(ctx, d)
			return err
		})
	}
	id := m.editing.ID
	return m.mutate(fmt.Sprintf("Saved #%d", id), func(ctx context.Context) error {
		return m.actions.EditItem(ctx, id, d)
	})
}

func (m *Model) openConfirm(todo *types.Todo, from viewMode) tea.Cmd {
	m.target = todo
	m.returnTo = from
	m.confirmed = false

	width, _ := m.window.Size()
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", todo.Title)).
				Description("This cannot be undone.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&m.confirmed),
		),
	).WithShowHelp(false).WithWidth(width)

	m.mode = modeConfirm
	return m.form.Init()
}

func (m *Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Cancel) {
		return m, m.cancelConfirm()
	}

	f, cmd := m.form.Update(msg)
	if form, ok := f.(*huh.Form); ok {
		m.form = form
	}

	switch m.form.State {
	case huh.StateCompleted:
		if !m.confirmed {
			return m, m.cancelConfirm()
		}
		del := m.deleteCmd(m.target.ID)
		m.target = nil
		m.closeEditor()
		return m, del
	case huh.StateAborted:
		return m, m.cancelConfirm()
	}
	return m, cmd
}

// cancelConfirm returns to the list, or reopens the editor the delete was
// started from. The returned command initialises the reopened form.
func (m *Model) cancelConfirm() tea.Cmd {
	target, from := m.target, m.returnTo
	m.target = nil
	m.form = nil
	m.mode = modeList
	if from == modeEdit && target != nil && m.fields != nil {
		return m.showEditor(target, m.fields)
	}
	return nil
}

func (m *Model) deleteCmd(id int64) tea.Cmd {
	return m.mutate(fmt.Sprintf("Deleted #%d", id), func(ctx context.Context) error {
		return m.actions.DeleteItem(ctx, id)
	})
}

func (m *Model) openPreview(todo *types.Todo) {
	width, height := m.window.Size()
	m.preview.Width = width
	m.preview.Height = max(1, height-chromeHeight)
	m.preview.SetContent(m.renderMarkdown(todo, width))
	m.preview.GotoTop()
	m.target = todo
	m.mode = modePreview
}

func (m *Model) updatePreview(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(k, m.keys.Cancel, m.keys.Preview, m.keys.Quit) {
			m.target = nil
			m.mode = modeList
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

func (m *Model) renderMarkdown(todo *types.Todo, width int) string {
	style := "light"
	if m.theme.Dark {
		style = "dark"
	}
	return ui.RenderMarkdownWidth("# "+todo.Title+"\n\n"+todo.Description, width, style)
}

// View implements tea.Model.
func (m *Model) View() string {
	m.window.Cleanup()
	m.window.Subtitle = ""

	switch m.mode {
	case modeEdit:
		m.buildEditor()
	case modeConfirm:
		m.window.Subtitle = "Delete Item"
		m.window.Body.Append(widget.Label{Text: m.form.View()})
	case modePreview:
		m.buildPreview()
	default:
		m.buildList()
	}
	return m.window.Render(m.theme)
}

func (m *Model) buildList() {
	m.window.HeaderStart = []widget.Widget{
		widget.Button{Style: "button_normal", Label: "New"},
	}
	m.window.HeaderEnd = []widget.Widget{
		widget.Button{Style: "button_light", Label: strconv.Itoa(m.snapshot.DoneCount), Focused: m.snapshot.ShowAll},
	}

	width, _ := m.window.Size()
	items := m.snapshot.Items
	if len(items) == 0 {
		m.window.Body.Append(widget.Alert{Style: "alert_normal", Title: emptyTitle, Message: emptyMessage})
	}
	end := min(len(items), m.offset+m.perPage())
	for i := m.offset; i < end; i++ {
		todo := items[i]
		m.window.Body.Append(widget.BigButton{
			Style:       todo.StyleName(),
			Title:       todo.Title,
			Description: widget.TruncateDescription(todo.Description, width),
			Selected:    i == m.selected,
		})
	}
	m.window.Footer = m.footer(m.keys)
}

func (m *Model) buildEditor() {
	if m.editing == nil {
		m.window.Subtitle = "New Item"
	} else {
		m.window.Subtitle = "Edit Item"
	}
	m.window.HeaderStart = []widget.Widget{
		widget.Button{Style: "button_blue", Label: "Save"},
	}
	if m.editing != nil {
		m.window.HeaderEnd = []widget.Widget{
			widget.Button{Style: "button_red", Label: "Delete"},
		}
	}
	m.window.Body.Append(widget.Label{Text: m.form.View()})
	m.window.Footer = m.footer(editorKeys{KeyMap: m.keys, editing: m.editing != nil})
}

func (m *Model) buildPreview() {
	if m.target != nil {
		m.window.Subtitle = fmt.Sprintf("#%d", m.target.ID)
		m.window.HeaderStart = []widget.Widget{
			widget.Switch{Label: "Is Important", On: m.target.IsImportant},
			widget.Switch{Label: "Is done", On: m.target.IsDone},
		}
	}
	m.window.Body.Append(widget.Label{Text: m.preview.View()})
	m.window.Footer = m.theme.Style("help").Render("esc/p close • ↑/↓ scroll")
}

func (m *Model) footer(keys help.KeyMap) string {
	var line string
	switch {
	case m.err != nil:
		line = m.theme.Style("status_error").Render("Error: " + m.err.Error())
	case m.status != "":
		line = m.theme.Style("status").Render(m.status)
	}
	return line + "\n" + m.help.View(keys)
}
