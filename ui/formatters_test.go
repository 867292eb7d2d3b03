package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yhkl-dev/PreviewCLI/domain"
	"github.com/yhkl-dev/PreviewCLI/playback"
	"github.com/yhkl-dev/PreviewCLI/store"
)

func TestCreateProgressBar(t *testing.T) {
	bar := CreateProgressBar(15, 30, 10)
	assert.Equal(t, 5, strings.Count(bar, "▓"))
	assert.Equal(t, 5, strings.Count(bar, "░"))
	assert.True(t, strings.HasSuffix(bar, "50.0%"))

	assert.Equal(t, 0, strings.Count(CreateProgressBar(3, 0, 10), "▓"), "unknown duration")
	assert.Equal(t, 10, strings.Count(CreateProgressBar(40, 30, 10), "▓"), "clamped")
}

func TestFormatVolume(t *testing.T) {
	assert.Equal(t, "muted", FormatVolume(0))
	assert.Equal(t, "60%", FormatVolume(0.6))
	assert.Equal(t, "100%", FormatVolume(1))
}

func TestFormatPlayerBar(t *testing.T) {
	assert.Contains(t, FormatPlayerBar(playback.Snapshot{}, 10), "Nothing playing")

	song := domain.Song{ID: 1, Title: "Petals", Duration: "0:30", PreviewURL: "https://audio.test/1.m4a"}
	bar := FormatPlayerBar(playback.Snapshot{
		State:    playback.Paused,
		Track:    &song,
		Position: 12.7,
		Duration: 29.9,
		Volume:   0.5,
	}, 10)
	assert.Contains(t, bar, "0:12/0:29")
	assert.Contains(t, bar, "50%")
	assert.Contains(t, bar, "paused")
}

func TestFormatNowPlaying(t *testing.T) {
	assert.Empty(t, FormatNowPlaying(playback.Snapshot{}, ""))

	album := domain.Album{ID: 1, Title: "Midnight Bloom", Artist: "Luna"}
	songs := []domain.Song{{ID: 11, Title: "Petals"}, {ID: 12, Title: "Stems", Duration: "0:30"}}
	snap := playback.Snapshot{
		State:    playback.Playing,
		Track:    &songs[1],
		Playlist: domain.NewPlaylist(album, songs),
	}
	text := FormatNowPlaying(snap, "COVER")
	assert.Contains(t, text, "Now playing 2/2")
	assert.Contains(t, text, "Stems")
	assert.Contains(t, text, "Luna")
	assert.Contains(t, text, "Midnight Bloom")
	assert.True(t, strings.HasSuffix(text, "COVER"))
}

func TestFormatHeader(t *testing.T) {
	header := FormatHeader(store.PageCharts)
	assert.Contains(t, header, "[black:lightgreen] 3 Charts ")
	assert.Contains(t, header, "[gray]1 Home")
}

func TestHelpText(t *testing.T) {
	text := HelpText([]KeyHelp{{Keys: "Space", Description: "Play/Pause"}})
	assert.Contains(t, text, "Space")
	assert.Contains(t, text, "Play/Pause")
	assert.Contains(t, text, "Up next")
}
