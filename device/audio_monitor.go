package device

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Kind classifies an audio output
type Kind int

const (
	KindUnknown    Kind = iota
	KindBuiltIn         // Built-in speakers
	KindBluetooth       // Bluetooth audio device
	KindUSB             // USB audio device
	KindHDMI            // HDMI or DisplayPort audio
	KindHeadphones      // Wired headphones
)

// External reports whether the output can be unplugged or walk away
func (k Kind) External() bool {
	return k == KindBluetooth || k == KindUSB || k == KindHDMI || k == KindHeadphones
}

// Output is one audio output reported by the system
type Output struct {
	Name      string
	Transport string
	Kind      Kind
	Default   bool
	Connected bool
}

// Probe lists the audio outputs currently known to the system
type Probe func(ctx context.Context) ([]Output, error)

// AudioMonitor watches the default audio output and calls onDisconnect when
// an external output stops being the one in use.
type AudioMonitor struct {
	probe        Probe
	interval     time.Duration
	onDisconnect func(Output)
}

// NewAudioMonitor returns a monitor using system_profiler. It is only
// supported on macOS.
func NewAudioMonitor(onDisconnect func(Output)) *AudioMonitor {
	m := &AudioMonitor{
		interval:     500 * time.Millisecond,
		onDisconnect: onDisconnect,
	}
	if runtime.GOOS == "darwin" {
		m.probe = systemProfilerProbe
	}
	return m
}

// NewAudioMonitorWithProbe returns a monitor driven by a custom probe
func NewAudioMonitorWithProbe(probe Probe, interval time.Duration, onDisconnect func(Output)) *AudioMonitor {
	return &AudioMonitor{probe: probe, interval: interval, onDisconnect: onDisconnect}
}

// Supported reports whether the monitor can observe outputs on this platform
func (m *AudioMonitor) Supported() bool {
	return m.probe != nil
}

// Run polls until ctx is done
func (m *AudioMonitor) Run(ctx context.Context) {
	if !m.Supported() {
		log.Println("[device] audio monitor disabled: unsupported platform")
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	last := m.current(ctx)
	if last != nil {
		log.Printf("[device] initial audio output: %s (external: %v)", last.Name, last.Kind.External())
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("[device] audio monitor stopped")
			return
		case <-ticker.C:
			now := m.current(ctx)
			if now == nil {
				continue
			}
			if disconnected(last, now) {
				log.Printf("[device] audio output %q went away, now %q", last.Name, now.Name)
				if m.onDisconnect != nil {
					m.onDisconnect(*last)
				}
			}
			last = now
		}
	}
}

func (m *AudioMonitor) current(ctx context.Context) *Output {
	outputs, err := m.probe(ctx)
	if err != nil {
		log.Printf("[device] failed to list audio outputs: %v", err)
		return nil
	}
	return selectCurrent(outputs)
}

// disconnected reports whether an external output in use was replaced by a
// different one
func disconnected(last, now *Output) bool {
	if last == nil || !last.Kind.External() {
		return false
	}
	return !nameMatches(last.Name, now.Name)
}

// selectCurrent picks the connected default output, falling back to any
// default and then to any connected output
func selectCurrent(outputs []Output) *Output {
	var fallback *Output
	for i := range outputs {
		o := &outputs[i]
		if o.Default && o.Connected {
			return o
		}
		if o.Default && (fallback == nil || !fallback.Default) {
			fallback = o
			continue
		}
		if fallback == nil && o.Connected {
			fallback = o
		}
	}
	return fallback
}

func nameMatches(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

var transportKinds = map[string]Kind{
	"bluetooth":   KindBluetooth,
	"wireless":    KindBluetooth,
	"ble":         KindBluetooth,
	"usb":         KindUSB,
	"usb audio":   KindUSB,
	"usbaudio":    KindUSB,
	"hdmi":        KindHDMI,
	"displayport": KindHDMI,
	"thunderbolt": KindHDMI,
	"built-in":    KindBuiltIn,
	"internal":    KindBuiltIn,
	"headphone":   KindHeadphones,
	"headset":     KindHeadphones,
	"line out":    KindHeadphones,
	"analog":      KindHeadphones,
}

// name keywords, checked in order
var nameKinds = []struct {
	kind     Kind
	keywords []string
}{
	{KindBluetooth, []string{"bluetooth", "airpods", "beats", "sony wh", "sony wf", "bose", "jabra", "sennheiser", "jbl", "marshall"}},
	{KindBuiltIn, []string{"built-in", "internal", "macbook", "imac", "mac mini", "mac pro", "speakers"}},
	{KindUSB, []string{"usb", "dac", "audio interface"}},
	{KindHDMI, []string{"hdmi", "displayport", "display audio"}},
	{KindHeadphones, []string{"headphone", "headset"}},
}

// Classify derives the output kind from its transport, then its name
func Classify(name, transport string) Kind {
	if kind, ok := transportKinds[strings.ToLower(strings.TrimSpace(transport))]; ok {
		return kind
	}
	lower := strings.ToLower(name)
	for _, nk := range nameKinds {
		for _, kw := range nk.keywords {
			if strings.Contains(lower, kw) {
				return nk.kind
			}
		}
	}
	return KindUnknown
}

func systemProfilerProbe(ctx context.Context) ([]Output, error) {
	out, err := exec.CommandContext(ctx, "system_profiler", "SPAudioDataType", "-json").Output()
	if err != nil {
		return nil, fmt.Errorf("system_profiler: %w", err)
	}
	return parseSystemProfiler(out)
}

type profilerReport struct {
	Audio []struct {
		Items []map[string]interface{} `json:"_items"`
	} `json:"SPAudioDataType"`
}

func parseSystemProfiler(data []byte) ([]Output, error) {
	var report profilerReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse audio report: %w", err)
	}

	var outputs []Output
	for _, entry := range report.Audio {
		for _, item := range entry.Items {
			name := stringField(item, "_name", "name")
			if name == "" {
				continue
			}
			transport := stringField(item, "coreaudio_device_transport", "coreaudio_transport", "transport")
			_, isDefault := boolField(item, "coreaudio_default_audio_output_device", "coreaudio_device_is_default_output", "default_output_device")
			found, connected := boolField(item, "coreaudio_device_is_alive", "device_is_connected", "connected")
			if !found {
				connected = true
			}
			outputs = append(outputs, Output{
				Name:      name,
				Transport: transport,
				Kind:      Classify(name, transport),
				Default:   isDefault,
				Connected: connected,
			})
		}
	}
	return outputs, nil
}

func stringField(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// boolField returns whether any key was present and its truth value.
// system_profiler reports flags as "spaudio_yes" style strings.
func boolField(m map[string]interface{}, keys ...string) (bool, bool) {
	for _, key := range keys {
		switch v := m[key].(type) {
		case bool:
			return true, v
		case float64:
			return true, v != 0
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "yes", "true", "1", "on", "spaudio_yes", "enabled":
				return true, true
			case "no", "false", "0", "off", "spaudio_no", "disabled":
				return true, false
			}
		}
	}
	return false, false
}
