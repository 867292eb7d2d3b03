package ui

import (
	"fmt"
	"log"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/yhkl-dev/PreviewCLI/domain"
	"github.com/yhkl-dev/PreviewCLI/playback"
)

// QueueView lists the active playlist as "up next"
type QueueView struct {
	app       *App
	container *tview.Flex
	table     *tview.Table
	songs     []domain.Song
	albumID   int64
	isActive  bool
}

// NewQueueView creates a new up next view
func NewQueueView(app *App) *QueueView {
	qv := &QueueView{
		app: app,
	}

	qv.table = tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)
	qv.table.SetSelectedStyle(tcell.StyleDefault.
		Background(tcell.ColorDarkCyan).
		Foreground(tcell.ColorWhite))
	qv.table.SetSelectedFunc(func(row, _ int) {
		if row < 1 || row-1 >= len(qv.songs) {
			return
		}
		song := qv.songs[row-1]
		qv.app.do(func() {
			if err := qv.app.engine.SelectTrackFromPlaylist(song); err != nil {
				log.Printf("[ui] cannot play %q: %v", song.Title, err)
			}
		})
	})

	qv.container = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(qv.table, 0, 1, true)

	qv.container.SetBorder(true).
		SetTitle(" Up Next (ESC/u to close) ").
		SetBorderColor(tcell.NewHexColor(0x00bcd4))

	return qv
}

// Sync shows, refreshes or hides the view to match the engine
func (qv *QueueView) Sync(snap playback.Snapshot) {
	visible := snap.PlaylistVisible && snap.Playlist != nil
	if !visible {
		if qv.isActive {
			qv.isActive = false
			qv.app.closeModal()
		}
		return
	}

	qv.refresh(snap)
	if !qv.isActive && !qv.app.detailView.IsActive() {
		qv.isActive = true
		qv.app.showModal(qv.container, 80, 20)
		qv.app.tviewApp.SetFocus(qv.table)
	}
}

// IsActive returns whether the up next view is open
func (qv *QueueView) IsActive() bool {
	return qv.isActive
}

// HandleKey handles keys while the view is open
func (qv *QueueView) HandleKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyEscape || event.Rune() == 'u' || event.Rune() == 'U' {
		qv.app.do(qv.app.engine.TogglePlaylist)
		return nil
	}
	if event.Rune() == ' ' {
		qv.app.do(qv.app.engine.TogglePlayPause)
		return nil
	}
	return event
}

// refresh rebuilds the table, keeping the selection while the playlist
// stays the same
func (qv *QueueView) refresh(snap playback.Snapshot) {
	row, _ := qv.table.GetSelection()
	samePlaylist := qv.albumID == snap.Playlist.Album.ID
	qv.songs = snap.Playlist.Songs
	qv.albumID = snap.Playlist.Album.ID

	qv.table.Clear()
	headerStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Attributes(tcell.AttrBold)
	for col, title := range []string{"#", "Title", "Album", "Duration"} {
		qv.table.SetCell(0, col, tview.NewTableCell(title).SetStyle(headerStyle).SetSelectable(false))
	}

	current := -1
	if snap.Track != nil {
		current = snap.Playlist.IndexOf(snap.Track.ID)
	}

	rowStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for i, song := range qv.songs {
		r := i + 1
		style := rowStyle
		marker := fmt.Sprintf("%d", r)
		if i == current {
			style = style.Foreground(tcell.ColorLightGreen).Attributes(tcell.AttrBold)
			marker = "▶"
		} else if !song.Playable() {
			style = style.Foreground(tcell.ColorDarkGray)
		}

		qv.table.SetCell(r, 0,
			tview.NewTableCell(marker).
				SetStyle(style.Foreground(tcell.ColorLightGreen)).
				SetAlign(tview.AlignRight))
		qv.table.SetCell(r, 1,
			tview.NewTableCell(song.Title).
				SetStyle(style).
				SetExpansion(2))
		qv.table.SetCell(r, 2,
			tview.NewTableCell(snap.Playlist.Album.Title).
				SetStyle(rowStyle.Foreground(tcell.ColorGray)).
				SetMaxWidth(20))
		qv.table.SetCell(r, 3,
			tview.NewTableCell(song.Duration).
				SetStyle(rowStyle.Foreground(tcell.ColorGray)).
				SetAlign(tview.AlignRight))
	}

	switch {
	case samePlaylist && row >= 1:
		qv.table.Select(clampRow(row, len(qv.songs)), 0)
	case current >= 0:
		qv.table.Select(current+1, 0)
	default:
		qv.table.Select(1, 0)
	}
}
