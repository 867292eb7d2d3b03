package ui

import (
	"context"
	"log"

	"github.com/rivo/tview"
	"github.com/yhkl-dev/PreviewCLI/config"
	"github.com/yhkl-dev/PreviewCLI/coverart"
	"github.com/yhkl-dev/PreviewCLI/domain"
	"github.com/yhkl-dev/PreviewCLI/playback"
	"github.com/yhkl-dev/PreviewCLI/store"
)

// App represents the TUI application
type App struct {
	tviewApp *tview.Application
	cfg      *config.Config
	store    *store.Store
	engine   *playback.Engine
	covers   *coverart.Converter
	ctx      context.Context
	keys     *KeyBindingManager

	// latest snapshots, only touched on the UI goroutine
	state  store.State
	player playback.Snapshot

	rootFlex    *tview.Flex
	header      *tview.TextView
	searchInput *tview.InputField
	banner      *tview.TextView
	content     *tview.Pages
	albumTable  *tview.Table
	singerTable *tview.Table
	contactView *tview.TextView
	statusBar   *tview.TextView
	progressBar *tview.TextView

	detailView *DetailView
	queueView  *QueueView
	helpView   *HelpView
	formView   *FormView

	shownAlbums  []domain.Album
	shownSingers []domain.Singer

	nowPlayingCover string
	coverAlbumID    int64
}

// NewApp creates a new TUI application with dependency injection
func NewApp(ctx context.Context, cfg *config.Config, st *store.Store, covers *coverart.Converter) *App {
	return &App{
		tviewApp: tview.NewApplication(),
		cfg:      cfg,
		store:    st,
		engine:   st.Engine(),
		covers:   covers,
		ctx:      ctx,
		keys:     NewKeyBindingManager(),
		state:    st.State(),
		player:   st.Engine().Snapshot(),
	}
}

// Run starts the application and blocks until it exits
func (a *App) Run() error {
	a.createHomepage()
	a.registerKeyBindings()

	unsubscribeStore := a.store.Subscribe(func(st store.State) {
		a.tviewApp.QueueUpdateDraw(func() {
			a.state = st
			a.render()
		})
	})
	defer unsubscribeStore()

	unsubscribeEngine := a.engine.Subscribe(func(snap playback.Snapshot) {
		a.tviewApp.QueueUpdateDraw(func() {
			a.player = snap
			a.renderPlayer()
		})
	})
	defer unsubscribeEngine()

	go func() {
		if err := a.store.LoadTopAlbums(a.ctx); err != nil {
			log.Printf("[ui] initial load failed: %v", err)
		}
	}()

	a.render()
	a.renderPlayer()

	log.Println("[ui] start previewcli...")
	return a.tviewApp.Run()
}

// Stop stops the application
func (a *App) Stop() {
	if a.tviewApp != nil {
		a.tviewApp.Stop()
	}
}

// render brings every widget in line with the latest store state
func (a *App) render() {
	a.header.SetText(FormatHeader(a.state.Page))
	a.renderBanner()
	a.renderContent()
	a.detailView.Sync(a.state.Detail)
	if a.player.Track == nil {
		a.statusBar.SetText(CreateWelcomeMessage(len(a.state.Featured) + len(a.state.NewReleases)))
	}
}

func (a *App) renderBanner() {
	switch {
	case a.state.Banner != "":
		a.banner.SetText("[white:red] " + a.state.Banner + " [-:-]")
	case a.state.Notice != "":
		a.banner.SetText("[black:yellow] " + a.state.Notice + " [-:-] [darkgray](d to dismiss)")
	case a.state.LoadingTop:
		a.banner.SetText("[yellow]Loading top albums...")
	case a.state.FindingFullSong:
		a.banner.SetText("[yellow]Searching for the full song...")
	case a.state.Searching:
		a.banner.SetText("[yellow]Searching...")
	default:
		a.banner.SetText("")
	}
}

// renderPlayer refreshes the now playing panel, the progress bar and the
// up next list
func (a *App) renderPlayer() {
	snap := a.player
	a.progressBar.SetText(FormatPlayerBar(snap, a.cfg.UI.ProgressBarWidth))

	if snap.Track == nil {
		a.nowPlayingCover = ""
		a.coverAlbumID = 0
		a.statusBar.SetText(CreateWelcomeMessage(len(a.state.Featured) + len(a.state.NewReleases)))
		a.queueView.Sync(snap)
		return
	}

	if snap.Playlist != nil && snap.Playlist.Album.ID != a.coverAlbumID {
		a.coverAlbumID = snap.Playlist.Album.ID
		a.nowPlayingCover = ""
		a.loadNowPlayingCover(snap.Playlist.Album)
	}
	a.statusBar.SetText(FormatNowPlaying(snap, a.nowPlayingCover))
	a.queueView.Sync(snap)
}

func (a *App) loadNowPlayingCover(album domain.Album) {
	if !a.cfg.UI.CoverArt {
		return
	}
	go func() {
		art, err := a.covers.Render(a.ctx, album.CoverURL)
		if err != nil {
			log.Printf("[ui] failed to load cover art: %v", err)
		}
		a.tviewApp.QueueUpdateDraw(func() {
			if a.coverAlbumID != album.ID {
				return
			}
			a.nowPlayingCover = art
			a.renderPlayer()
		})
	}()
}

// do runs a store or engine call off the UI goroutine; their subscribers
// queue redraws and must not run inside an event handler
func (a *App) do(fn func()) {
	go fn()
}

func (a *App) quit() {
	a.do(func() {
		a.engine.Close()
		a.Stop()
	})
}
