package ui

import (
	"errors"
	"fmt"
	"log"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/yhkl-dev/PreviewCLI/coverart"
	"github.com/yhkl-dev/PreviewCLI/playback"
	"github.com/yhkl-dev/PreviewCLI/store"
)

// DetailView shows an album's tracklist next to its cover
type DetailView struct {
	app       *App
	container *tview.Flex
	cover     *tview.TextView
	table     *tview.Table
	detail    *store.Detail
	coverFor  int64
	isActive  bool
}

// NewDetailView creates the album detail view
func NewDetailView(app *App) *DetailView {
	dv := &DetailView{app: app}

	dv.cover = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	dv.table = tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)
	dv.table.SetSelectedStyle(tcell.StyleDefault.
		Background(tcell.ColorDarkCyan).
		Foreground(tcell.ColorWhite))
	dv.table.SetSelectedFunc(func(row, _ int) {
		dv.play(row)
	})

	dv.container = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(dv.cover, coverart.DefaultWidth+2, 0, false).
		AddItem(dv.table, 0, 1, true)

	dv.container.SetBorder(true).
		SetBorderColor(tcell.ColorLightGreen)

	return dv
}

// Sync shows, refreshes or hides the view to match the store
func (dv *DetailView) Sync(detail *store.Detail) {
	if detail == nil {
		if dv.isActive {
			dv.isActive = false
			dv.detail = nil
			dv.app.closeModal()
		}
		return
	}

	dv.detail = detail
	dv.container.SetTitle(fmt.Sprintf(" %s - %s (ESC to close, Enter to play) ", detail.Album.Title, detail.Album.Artist))
	dv.renderTracks()
	if dv.coverFor != detail.Album.ID {
		dv.coverFor = detail.Album.ID
		dv.loadCover(detail.Album.ID, detail.Album.CoverURL)
	}

	if !dv.isActive {
		dv.isActive = true
		dv.app.showModal(dv.container, 90, 24)
		dv.app.tviewApp.SetFocus(dv.table)
	}
}

// IsActive returns whether the detail view is open
func (dv *DetailView) IsActive() bool {
	return dv.isActive
}

// HandleKey handles keys while the view is open
func (dv *DetailView) HandleKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyEscape || event.Rune() == 'q' {
		dv.app.do(dv.app.store.CloseAlbum)
		return nil
	}
	if event.Rune() == 'f' && dv.detail != nil {
		id := dv.detail.Album.ID
		dv.app.do(func() { dv.app.store.ToggleAlbumFavorite(id) })
		return nil
	}
	return event
}

func (dv *DetailView) renderTracks() {
	dv.table.Clear()
	headerStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Attributes(tcell.AttrBold)
	for col, title := range []string{"#", "Title", "Duration"} {
		dv.table.SetCell(0, col, tview.NewTableCell(title).SetStyle(headerStyle).SetSelectable(false))
	}

	d := dv.detail
	switch {
	case d.Loading:
		dv.table.SetCell(1, 1, tview.NewTableCell("Loading tracks...").
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
		return
	case d.Message != "":
		dv.table.SetCell(1, 1, tview.NewTableCell(d.Message).
			SetTextColor(tcell.ColorGray).
			SetSelectable(false))
		return
	}

	for i, song := range d.Tracks {
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
		title := song.Title
		if !song.Playable() {
			style = style.Foreground(tcell.ColorDarkGray)
			title += " (no preview)"
		}
		dv.table.SetCell(i+1, 0, tview.NewTableCell(fmt.Sprintf("%d", i+1)).
			SetStyle(style.Foreground(tcell.ColorLightGreen)).
			SetAlign(tview.AlignRight))
		dv.table.SetCell(i+1, 1, tview.NewTableCell(title).
			SetStyle(style).
			SetExpansion(1))
		dv.table.SetCell(i+1, 2, tview.NewTableCell(song.Duration).
			SetStyle(style.Foreground(tcell.ColorGray)).
			SetAlign(tview.AlignRight))
	}
	dv.table.Select(1, 0)
}

func (dv *DetailView) play(row int) {
	d := dv.detail
	if d == nil || row < 1 || row-1 >= len(d.Tracks) {
		return
	}
	track, album, tracks := d.Tracks[row-1], d.Album, d.Tracks
	dv.app.do(func() {
		if err := dv.app.store.PlayTrack(track, album, tracks); err != nil && !errors.Is(err, playback.ErrNotPlayable) {
			log.Printf("[ui] failed to play %q: %v", track.Title, err)
		}
	})
}

func (dv *DetailView) loadCover(albumID int64, url string) {
	dv.cover.SetText(coverart.Placeholder())
	if !dv.app.cfg.UI.CoverArt {
		return
	}
	go func() {
		art, err := dv.app.covers.Render(dv.app.ctx, url)
		if err != nil {
			log.Printf("[ui] failed to load cover for album %d: %v", albumID, err)
		}
		dv.app.tviewApp.QueueUpdateDraw(func() {
			if dv.coverFor == albumID {
				dv.cover.SetText(tview.TranslateANSI(art))
			}
		})
	}()
}
