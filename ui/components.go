package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/yhkl-dev/PreviewCLI/store"
)

const (
	volumeStep = 0.1
	seekStep   = 5.0
)

// createHomepage sets up the UI layout
func (a *App) createHomepage() {
	a.header = tview.NewTextView().
		SetDynamicColors(true)

	a.searchInput = tview.NewInputField().
		SetLabel("[yellow]Search: ").
		SetFieldWidth(0).
		SetPlaceholder("Type to search albums, ESC or Tab to leave...").
		SetFieldBackgroundColor(tcell.ColorBlack)

	a.banner = tview.NewTextView().
		SetDynamicColors(true)

	a.progressBar = tview.NewTextView().
		SetDynamicColors(true)

	a.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false).
		SetWrap(true)

	a.albumTable = newListTable(" Albums ")
	a.singerTable = newListTable(" Singers ")
	a.contactView = tview.NewTextView().
		SetDynamicColors(true).
		SetText(FormatContactPage())

	lists := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.albumTable, 0, 2, true).
		AddItem(a.singerTable, 0, 1, false)

	a.content = tview.NewPages().
		AddPage("lists", lists, true, true).
		AddPage("contact", a.contactView, true, false)

	a.detailView = NewDetailView(a)
	a.queueView = NewQueueView(a)
	a.helpView = NewHelpView(a)
	a.formView = NewFormView(a)

	a.setupSearchInput()
	a.setupTables()

	rightPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.searchInput, 1, 0, false).
		AddItem(a.banner, 1, 0, false).
		AddItem(a.content, 0, 1, true)

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.statusBar, 0, 1, false).
		AddItem(rightPanel, 0, 2, true)

	a.rootFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.header, 1, 0, false).
		AddItem(mainLayout, 0, 1, true).
		AddItem(a.progressBar, 3, 0, false)

	a.tviewApp.SetInputCapture(a.handleGlobalKey)
	a.tviewApp.SetRoot(a.rootFlex, true)
}

func newListTable(title string) *tview.Table {
	table := tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)
	table.SetBorder(true).SetTitle(title)
	table.SetSelectedStyle(tcell.StyleDefault.
		Background(tcell.ColorDarkGreen).
		Foreground(tcell.ColorWhite))
	return table
}

// setupSearchInput wires search-as-you-type into the store
func (a *App) setupSearchInput() {
	a.searchInput.SetChangedFunc(func(text string) {
		a.do(func() { a.store.SetSearchText(text) })
	})

	a.searchInput.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape, tcell.KeyDown, tcell.KeyTab, tcell.KeyEnter:
			a.tviewApp.SetFocus(a.albumTable)
			return nil
		}
		return event
	})
}

// setupTables sets up selection handlers for the album and singer lists
func (a *App) setupTables() {
	a.albumTable.SetSelectedFunc(func(row, _ int) {
		if row < 1 || row-1 >= len(a.shownAlbums) {
			return
		}
		album := a.shownAlbums[row-1]
		a.do(func() { a.store.OpenAlbum(a.ctx, album) })
	})

	a.singerTable.SetSelectedFunc(func(row, _ int) {
		a.toggleSelectedFavorite()
	})
}

// renderContent fills the current page
func (a *App) renderContent() {
	if a.state.Page == store.PageContact {
		a.content.SwitchToPage("contact")
		return
	}
	a.content.SwitchToPage("lists")

	a.shownAlbums = a.state.Albums()
	a.shownSingers = a.state.VisibleSingers()
	a.renderAlbumTable()
	a.renderSingerTable()
}

func (a *App) renderAlbumTable() {
	row, _ := a.albumTable.GetSelection()
	a.albumTable.Clear()

	headerStyle := tcell.StyleDefault.Foreground(tcell.ColorGray).Attributes(tcell.AttrBold)
	for col, title := range []string{"#", "♥", "Title", "Artist"} {
		a.albumTable.SetCell(0, col, tview.NewTableCell(title).SetStyle(headerStyle).SetSelectable(false))
	}

	title := fmt.Sprintf(" %s (%d) ", albumsTitle(a.state), len(a.shownAlbums))
	a.albumTable.SetTitle(title)

	if len(a.shownAlbums) == 0 {
		a.albumTable.SetCell(1, 2, tview.NewTableCell(emptyAlbumsText(a.state)).
			SetTextColor(tcell.ColorGray).
			SetSelectable(false))
		return
	}

	rowStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDefault)
	for i, album := range a.shownAlbums {
		r := i + 1
		a.albumTable.SetCell(r, 0, tview.NewTableCell(fmt.Sprintf("%d:", r)).
			SetStyle(rowStyle.Foreground(tcell.ColorLightGreen)).
			SetAlign(tview.AlignRight))
		a.albumTable.SetCell(r, 1, tview.NewTableCell(FavoriteMark(a.state.FavoriteAlbums[album.ID])).
			SetStyle(rowStyle.Foreground(tcell.ColorRed)))
		a.albumTable.SetCell(r, 2, tview.NewTableCell(album.Title).
			SetStyle(rowStyle).
			SetExpansion(2))
		a.albumTable.SetCell(r, 3, tview.NewTableCell(album.Artist).
			SetStyle(rowStyle.Foreground(tcell.ColorGray)).
			SetExpansion(1).
			SetMaxWidth(30))
	}
	a.albumTable.Select(clampRow(row, len(a.shownAlbums)), 0)
}

func (a *App) renderSingerTable() {
	row, _ := a.singerTable.GetSelection()
	a.singerTable.Clear()
	a.singerTable.SetTitle(fmt.Sprintf(" Singers (%d) ", len(a.shownSingers)))

	rowStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDefault)
	a.singerTable.SetCell(0, 0, tview.NewTableCell("♥").
		SetStyle(tcell.StyleDefault.Foreground(tcell.ColorGray).Attributes(tcell.AttrBold)).
		SetSelectable(false))
	a.singerTable.SetCell(0, 1, tview.NewTableCell("Name").
		SetStyle(tcell.StyleDefault.Foreground(tcell.ColorGray).Attributes(tcell.AttrBold)).
		SetSelectable(false))

	for i, singer := range a.shownSingers {
		a.singerTable.SetCell(i+1, 0, tview.NewTableCell(FavoriteMark(a.state.FavoriteSingers[singer.ID])).
			SetStyle(rowStyle.Foreground(tcell.ColorRed)))
		a.singerTable.SetCell(i+1, 1, tview.NewTableCell(singer.Name).
			SetStyle(rowStyle).
			SetExpansion(1))
	}
	if len(a.shownSingers) > 0 {
		a.singerTable.Select(clampRow(row, len(a.shownSingers)), 0)
	}
}

func albumsTitle(st store.State) string {
	switch {
	case st.Page == store.PageCharts:
		return "Top Charts"
	case st.Page == store.PageHome && st.SearchQuery != "":
		return fmt.Sprintf("Results for %q", st.SearchQuery)
	case st.Page == store.PageBrowse:
		return "Browse"
	default:
		return "Featured & New Releases"
	}
}

func emptyAlbumsText(st store.State) string {
	switch {
	case st.LoadingTop:
		return "Loading..."
	case st.SearchQuery != "" && st.Page == store.PageHome:
		return "No albums found."
	default:
		return "No albums to show."
	}
}

// clampRow keeps a table selection inside rows 1..n
func clampRow(row, n int) int {
	if row < 1 {
		return 1
	}
	if row > n {
		return n
	}
	return row
}

// handleGlobalKey routes keys to the open modal, then to the key bindings
func (a *App) handleGlobalKey(event *tcell.EventKey) *tcell.EventKey {
	switch {
	case a.helpView.IsActive():
		if event.Key() == tcell.KeyEscape || event.Rune() == '?' {
			a.helpView.Close()
			return nil
		}
		return event
	case a.formView.IsActive():
		if event.Key() == tcell.KeyEscape {
			a.formView.Close()
			return nil
		}
		return event
	case a.detailView.IsActive():
		return a.detailView.HandleKey(event)
	case a.queueView.IsActive():
		return a.queueView.HandleKey(event)
	}

	if event.Key() == tcell.KeyCtrlC {
		a.quit()
		return nil
	}
	if a.tviewApp.GetFocus() == a.searchInput {
		return event
	}
	if a.keys.HandleKey(event) {
		return nil
	}
	return event
}

// registerKeyBindings registers the main screen shortcuts
func (a *App) registerKeyBindings() {
	km := a.keys
	km.RegisterKeyBinding(NewKeyAction("toggle", "Play/Pause", func() {
		a.do(a.engine.TogglePlayPause)
	}), nil, []rune{' '})
	km.RegisterKeyBinding(NewKeyAction("next", "Next song", func() {
		a.do(a.engine.Next)
	}), []tcell.Key{tcell.KeyRight}, []rune{'n', 'N'})
	km.RegisterKeyBinding(NewKeyAction("previous", "Previous song", func() {
		a.do(a.engine.Previous)
	}), []tcell.Key{tcell.KeyLeft}, []rune{'p', 'P'})
	km.RegisterKeyBinding(NewKeyAction("seekForward", "Seek forward 5s", func() {
		pos := a.player.Position
		a.do(func() { a.engine.Seek(pos + seekStep) })
	}), nil, []rune{'.'})
	km.RegisterKeyBinding(NewKeyAction("seekBack", "Seek back 5s", func() {
		pos := a.player.Position
		a.do(func() { a.engine.Seek(pos - seekStep) })
	}), nil, []rune{','})
	km.RegisterKeyBinding(NewKeyAction("volumeUp", "Volume up", func() {
		v := a.player.Volume
		a.do(func() { a.engine.SetVolume(v + volumeStep) })
	}), nil, []rune{'+', '='})
	km.RegisterKeyBinding(NewKeyAction("volumeDown", "Volume down", func() {
		v := a.player.Volume
		a.do(func() { a.engine.SetVolume(v - volumeStep) })
	}), nil, []rune{'-', '_'})
	km.RegisterKeyBinding(NewKeyAction("mute", "Mute/Unmute", func() {
		a.do(a.engine.ToggleMute)
	}), nil, []rune{'m'})
	km.RegisterKeyBinding(NewKeyAction("upNext", "Show up next", func() {
		a.do(a.engine.TogglePlaylist)
	}), nil, []rune{'u', 'U'})
	km.RegisterKeyBinding(NewKeyAction("closePlayer", "Close player", func() {
		a.do(a.engine.Close)
	}), nil, []rune{'x'})
	km.RegisterKeyBinding(NewKeyAction("fullSong", "Find the full song (AI)", func() {
		a.do(func() { a.store.FindFullSong(a.ctx) })
	}), nil, []rune{'F'})
	km.RegisterKeyBinding(NewKeyAction("favorite", "Toggle favorite", a.toggleSelectedFavorite), nil, []rune{'f'})
	km.RegisterKeyBinding(NewKeyAction("search", "Search", func() {
		a.tviewApp.SetFocus(a.searchInput)
	}), nil, []rune{'/'})
	km.RegisterKeyBinding(NewKeyAction("switchList", "Switch albums/singers", a.switchList), []tcell.Key{tcell.KeyTab}, nil)
	for i, page := range store.Pages {
		page := page
		km.RegisterKeyBinding(NewKeyAction("page"+page.String(), "Go to "+page.String(), func() {
			a.do(func() { a.store.Navigate(page) })
		}), nil, []rune{rune('1' + i)})
	}
	km.RegisterSequence(NewKeyAction("goStart", "Jump to first row", func() {
		a.focusedTable().Select(1, 0).ScrollToBeginning()
	}), "gg")
	km.RegisterKeyBinding(NewKeyAction("goEnd", "Jump to last row", func() {
		table := a.focusedTable()
		table.Select(table.GetRowCount()-1, 0).ScrollToEnd()
	}), nil, []rune{'G'})
	km.RegisterKeyBinding(NewKeyAction("addAlbum", "Add an album", func() {
		a.formView.ShowAddAlbum()
	}), nil, []rune{'a'})
	km.RegisterKeyBinding(NewKeyAction("addSinger", "Add a singer", func() {
		a.formView.ShowAddSinger()
	}), nil, []rune{'A'})
	km.RegisterKeyBinding(NewKeyAction("dismiss", "Dismiss notice", func() {
		a.do(a.store.DismissNotice)
	}), nil, []rune{'d'})
	km.RegisterKeyBinding(NewKeyAction("help", "Show this help panel", a.showHelp), nil, []rune{'?'})
	km.RegisterKeyBinding(NewKeyAction("quit", "Exit program", a.quit), []tcell.Key{tcell.KeyEscape}, []rune{'q'})
}

func (a *App) focusedTable() *tview.Table {
	if a.tviewApp.GetFocus() == a.singerTable {
		return a.singerTable
	}
	return a.albumTable
}

func (a *App) switchList() {
	if a.focusedTable() == a.albumTable {
		a.tviewApp.SetFocus(a.singerTable)
	} else {
		a.tviewApp.SetFocus(a.albumTable)
	}
}

func (a *App) toggleSelectedFavorite() {
	table := a.focusedTable()
	row, _ := table.GetSelection()
	if table == a.singerTable {
		if row >= 1 && row-1 < len(a.shownSingers) {
			id := a.shownSingers[row-1].ID
			a.do(func() { a.store.ToggleSingerFavorite(id) })
		}
		return
	}
	if row >= 1 && row-1 < len(a.shownAlbums) {
		id := a.shownAlbums[row-1].ID
		a.do(func() { a.store.ToggleAlbumFavorite(id) })
	}
}

// showModal puts content centered over the main layout
func (a *App) showModal(content tview.Primitive, width, height int) {
	modal := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexColumn).
			AddItem(nil, 0, 1, false).
			AddItem(content, width, 0, true).
			AddItem(nil, 0, 1, false), height, 0, true).
		AddItem(nil, 0, 1, false)

	a.tviewApp.SetRoot(modal, true)
}

// closeModal returns to the main layout
func (a *App) closeModal() {
	a.tviewApp.SetRoot(a.rootFlex, true)
	a.tviewApp.SetFocus(a.albumTable)
}

func (a *App) showHelp() {
	a.showModal(a.helpView.GetContainer(), 60, 30)
	a.helpView.Show()
}
