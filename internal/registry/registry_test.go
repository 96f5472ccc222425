package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/GreenLED99/PlasmaBot/internal/plugin"
)

type fakePlugin struct {
	manifest plugin.Manifest
	initErr  error
	inited   bool
}

func (f *fakePlugin) Manifest() plugin.Manifest { return f.manifest }

func (f *fakePlugin) Init(rt *plugin.Runtime) error {
	f.inited = true
	return f.initErr
}

func noopHandler(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	return nil, nil
}

func noopHook(ctx context.Context, ev *plugin.Event) error { return nil }

func chatCommand(handler string) plugin.CommandSpec {
	return plugin.CommandSpec{Handler: handler, Surface: plugin.SurfaceChat, Run: noopHandler}
}

func TestLoadAllBasics(t *testing.T) {
	r := New()
	p := &fakePlugin{manifest: plugin.Manifest{
		Name:     "music",
		Enabled:  true,
		Commands: []plugin.CommandSpec{chatCommand("play"), {Handler: "play", Surface: plugin.SurfaceConsole, Run: noopHandler}},
		Hooks:    []plugin.HookSpec{{Event: "Message_Create", Run: noopHook}},
	}}
	r.LoadAll(nil, []plugin.Plugin{p})

	if !p.inited {
		t.Fatal("contributing plugin should be initialized")
	}
	if _, ok := r.Lookup("play", plugin.SurfaceChat); !ok {
		t.Error("chat command should be registered")
	}
	if _, ok := r.Lookup("PLAY", plugin.SurfaceConsole); !ok {
		t.Error("lookup should be case-insensitive and per-surface")
	}
	if got := len(r.Hooks("message_create")); got != 1 {
		t.Errorf("hooks = %d, want 1 (event names normalize to lowercase)", got)
	}
	if !r.HasInstance("music") {
		t.Error("music should have an instance")
	}
}

func TestDuplicatePluginSkipped(t *testing.T) {
	r := New()
	first := &fakePlugin{manifest: plugin.Manifest{
		Name: "music", Enabled: true,
		Commands: []plugin.CommandSpec{chatCommand("play")},
	}}
	second := &fakePlugin{manifest: plugin.Manifest{
		Name: "music", Enabled: false,
		Commands: []plugin.CommandSpec{chatCommand("stop")},
	}}
	r.LoadAll(nil, []plugin.Plugin{first, second})

	if second.inited {
		t.Error("duplicate plugin should not be initialized")
	}
	if _, ok := r.Lookup("stop", plugin.SurfaceChat); ok {
		t.Error("duplicate plugin's commands should not register")
	}
	m, _ := r.Descriptor("music")
	if !m.Enabled {
		t.Error("first manifest should win")
	}
}

func TestCommandConflictFirstWins(t *testing.T) {
	r := New()
	a := &fakePlugin{manifest: plugin.Manifest{
		Name: "a", Commands: []plugin.CommandSpec{chatCommand("play")},
	}}
	b := &fakePlugin{manifest: plugin.Manifest{
		Name: "b", Commands: []plugin.CommandSpec{chatCommand("play"), chatCommand("stop")},
	}}
	r.LoadAll(nil, []plugin.Plugin{a, b})

	cmd, ok := r.Lookup("play", plugin.SurfaceChat)
	if !ok || cmd.Plugin != "a" {
		t.Errorf("conflicting handler should stay with the first plugin, got %+v", cmd)
	}
	if _, ok := r.Lookup("stop", plugin.SurfaceChat); !ok {
		t.Error("the losing plugin's other commands should still register")
	}
}

func TestMalformedMembersDropped(t *testing.T) {
	r := New()
	p := &fakePlugin{manifest: plugin.Manifest{
		Name: "odd",
		Commands: []plugin.CommandSpec{
			{Handler: "", Surface: plugin.SurfaceChat, Run: noopHandler},
			{Handler: "ok", Surface: plugin.Surface(99), Run: noopHandler},
			chatCommand("good"),
		},
		Hooks: []plugin.HookSpec{
			{Event: "", Run: noopHook},
			{Event: "message_create", Run: nil},
		},
	}}
	r.LoadAll(nil, []plugin.Plugin{p})

	if _, ok := r.Lookup("good", plugin.SurfaceChat); !ok {
		t.Error("well-formed command should survive its malformed siblings")
	}
	if _, ok := r.Lookup("ok", plugin.SurfaceChat); ok {
		t.Error("invalid surface should drop the member")
	}
	if got := len(r.Hooks("message_create")); got != 0 {
		t.Errorf("hooks = %d, want 0", got)
	}
}

func TestInitFailureDropsWholePlugin(t *testing.T) {
	r := New()
	bad := &fakePlugin{
		manifest: plugin.Manifest{Name: "bad", Commands: []plugin.CommandSpec{chatCommand("boom")}},
		initErr:  errors.New("no database"),
	}
	good := &fakePlugin{manifest: plugin.Manifest{Name: "good", Commands: []plugin.CommandSpec{chatCommand("fine")}}}
	r.LoadAll(nil, []plugin.Plugin{bad, good})

	if _, ok := r.Lookup("boom", plugin.SurfaceChat); ok {
		t.Error("failing plugin's commands should not register")
	}
	if r.HasInstance("bad") {
		t.Error("failing plugin should have no instance")
	}
	if _, ok := r.Lookup("fine", plugin.SurfaceChat); !ok {
		t.Error("later plugins should load despite an earlier failure")
	}
}

func TestDescriptorOnlyPlugin(t *testing.T) {
	r := New()
	p := &fakePlugin{manifest: plugin.Manifest{Name: "stub", Enabled: true}}
	r.LoadAll(nil, []plugin.Plugin{p})

	if p.inited {
		t.Error("descriptor-only plugin should not be initialized")
	}
	if _, ok := r.Descriptor("stub"); !ok {
		t.Error("descriptor-only plugin should still be listed")
	}
	if r.HasInstance("stub") {
		t.Error("descriptor-only plugin has no instance")
	}
}

func TestCommandsSorted(t *testing.T) {
	r := New()
	p := &fakePlugin{manifest: plugin.Manifest{
		Name:     "music",
		Commands: []plugin.CommandSpec{chatCommand("stop"), chatCommand("play"), chatCommand("queue")},
	}}
	r.LoadAll(nil, []plugin.Plugin{p})

	cmds := r.Commands(plugin.SurfaceChat)
	var got []string
	for _, c := range cmds {
		got = append(got, c.Handler)
	}
	want := []string{"play", "queue", "stop"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Commands order = %v, want %v", got, want)
		}
	}
}
