package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type step struct {
	load  string
	stop  bool
	event *fileEvent
}

func loadStep(url string) step { return step{load: url} }

func started(path string) step {
	return step{event: &fileEvent{kind: fileStarted, path: path}}
}

func loaded() step { return step{event: &fileEvent{kind: fileLoaded}} }

func ended(eof bool) step { return step{event: &fileEvent{kind: fileEnded, eof: eof}} }

func TestFileTrackerTranslate(t *testing.T) {
	tests := []struct {
		name  string
		steps []step
		want  []Event
	}{
		{
			name:  "load then play to the end",
			steps: []step{loadStep("a"), started("a"), loaded(), ended(true)},
			want:  []Event{{Kind: EventReady, Source: "a"}, {Kind: EventEnded, Source: "a"}},
		},
		{
			name:  "replaced file ends with stop",
			steps: []step{loadStep("a"), started("a"), loaded(), loadStep("b"), ended(false), started("b"), loaded()},
			want:  []Event{{Kind: EventReady, Source: "a"}, {Kind: EventReady, Source: "b"}},
		},
		{
			name: "replaced before it loaded",
			steps: []step{
				loadStep("a"), started("a"), loaded(), ended(true),
				loadStep("b"), loadStep("c"),
				started("b"), ended(false),
				started("c"), loaded(),
			},
			want: []Event{
				{Kind: EventReady, Source: "a"},
				{Kind: EventEnded, Source: "a"},
				{Kind: EventReady, Source: "c"},
			},
		},
		{
			name:  "replaced file never started",
			steps: []step{loadStep("b"), loadStep("c"), started("c"), loaded()},
			want:  []Event{{Kind: EventReady, Source: "c"}},
		},
		{
			name:  "late load of a superseded file",
			steps: []step{loadStep("a"), started("a"), loadStep("b"), loaded(), ended(true), started("b"), loaded()},
			want:  []Event{{Kind: EventReady, Source: "b"}},
		},
		{
			name:  "failed file does not end",
			steps: []step{loadStep("a"), started("a"), ended(false)},
			want:  nil,
		},
		{
			name:  "stop drops pending loads",
			steps: []step{loadStep("a"), started("a"), loaded(), loadStep("b"), step{stop: true}, ended(false)},
			want:  []Event{{Kind: EventReady, Source: "a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tr fileTracker
			var got []Event
			for _, s := range tt.steps {
				switch {
				case s.load != "":
					tr.load(s.load)
				case s.stop:
					tr.stop()
				case s.event != nil:
					if ev, ok := tr.translate(*s.event); ok {
						got = append(got, ev)
					}
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileTrackerSource(t *testing.T) {
	var tr fileTracker
	tr.load("a")
	assert.Empty(t, tr.source())

	tr.translate(fileEvent{kind: fileStarted, path: "a"})
	assert.Equal(t, "a", tr.source())

	tr.translate(fileEvent{kind: fileEnded, eof: true})
	assert.Empty(t, tr.source())
}
