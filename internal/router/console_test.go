package router

import (
	"context"
	"strings"
	"testing"

	"github.com/GreenLED99/PlasmaBot/internal/message"
	"github.com/GreenLED99/PlasmaBot/internal/plugin"
)

type recordedWriter struct {
	responses []string
	warnings  []string
}

func (w *recordedWriter) Respond(text string) { w.responses = append(w.responses, text) }
func (w *recordedWriter) Warn(text string)    { w.warnings = append(w.warnings, text) }

func consolePlugin(run plugin.HandlerFunc, params ...plugin.Param) *testPlugin {
	return &testPlugin{manifest: plugin.Manifest{
		Name: "test", Enabled: true,
		Commands: []plugin.CommandSpec{{
			Handler:     "status",
			Surface:     plugin.SurfaceConsole,
			Permissions: []string{"owner"},
			Params:      params,
			Run:         run,
		}},
	}}
}

func TestConsoleInvalidCommand(t *testing.T) {
	h := newHarness(t, true)
	w := &recordedWriter{}

	h.router.DispatchConsole(context.Background(), "nonsense", message.Location{}, w)
	if len(w.warnings) != 1 || w.warnings[0] != "Invalid Terminal Command." {
		t.Errorf("warnings = %v", w.warnings)
	}
}

func TestConsoleBypassesPermissions(t *testing.T) {
	// The command demands owner, which the console operator is not in the
	// permission store's terms; the console skips the check entirely.
	p := consolePlugin(func(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
		return plugin.Send("all good"), nil
	})
	h := newHarness(t, true, p)
	w := &recordedWriter{}

	h.router.DispatchConsole(context.Background(), "status", message.Location{}, w)
	if len(w.responses) != 1 || w.responses[0] != "all good" {
		t.Errorf("responses = %v", w.responses)
	}
	if len(w.warnings) != 0 {
		t.Errorf("warnings = %v", w.warnings)
	}
}

func TestConsoleUsageOnMissingArgument(t *testing.T) {
	invoked := false
	p := consolePlugin(func(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
		invoked = true
		return nil, nil
	}, plugin.P("target"))
	h := newHarness(t, true, p)
	w := &recordedWriter{}

	h.router.DispatchConsole(context.Background(), "status", message.Location{}, w)
	if invoked {
		t.Fatal("handler must not run with a missing argument")
	}
	if len(w.warnings) != 1 || !strings.HasPrefix(w.warnings[0], "Usage: /status <target>") {
		t.Errorf("warnings = %v", w.warnings)
	}
}

func TestConsoleDisabledPluginHidden(t *testing.T) {
	p := &testPlugin{manifest: plugin.Manifest{
		Name: "test", Enabled: false,
		Commands: []plugin.CommandSpec{{
			Handler: "status",
			Surface: plugin.SurfaceConsole,
			Run: func(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
				return plugin.Send("ran"), nil
			},
		}},
	}}
	h := newHarness(t, true, p)
	w := &recordedWriter{}

	h.router.DispatchConsole(context.Background(), "status", message.Location{}, w)
	if len(w.warnings) != 1 || w.warnings[0] != "Invalid Terminal Command." {
		t.Errorf("disabled plugin's console command should read as invalid, got %v", w.warnings)
	}
}

func TestConsoleControlSignal(t *testing.T) {
	p := consolePlugin(func(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
		return plugin.Send("stopping"), plugin.ErrShutdown
	})
	h := newHarness(t, true, p)
	w := &recordedWriter{}

	h.router.DispatchConsole(context.Background(), "status", message.Location{}, w)
	select {
	case err := <-h.router.Signals():
		if err != plugin.ErrShutdown {
			t.Errorf("signal = %v", err)
		}
	default:
		t.Fatal("expected a control signal")
	}
	if len(w.responses) != 1 || w.responses[0] != "stopping" {
		t.Errorf("farewell missing, responses = %v", w.responses)
	}
}

func TestConsoleEmbedRendersAsText(t *testing.T) {
	p := consolePlugin(func(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
		return plugin.SendEmbed(&plugin.Embed{
			Title:  "Report",
			Fields: []plugin.EmbedField{{Name: "Guilds", Value: "3"}},
		}), nil
	})
	h := newHarness(t, true, p)
	w := &recordedWriter{}

	h.router.DispatchConsole(context.Background(), "status", message.Location{}, w)
	if len(w.responses) != 1 {
		t.Fatalf("responses = %v", w.responses)
	}
	if !strings.Contains(w.responses[0], "Report") || !strings.Contains(w.responses[0], "Guilds: 3") {
		t.Errorf("embed text = %q", w.responses[0])
	}
}
