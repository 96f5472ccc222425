// Package plugin defines the contract between the dispatch core and the
// plugins that extend it: a declarative manifest of commands and event
// hooks, the invocation call record, the response variants a handler may
// return, and the control signals that pass through the dispatch boundary.
package plugin

import (
	"context"
	"errors"
	"strings"
)

// Surface is where a command can be invoked from.
type Surface int

const (
	// SurfaceChat commands are typed after the chat prefix in a channel.
	SurfaceChat Surface = iota
	// SurfaceConsole commands are typed at the local operator console.
	SurfaceConsole
)

func (s Surface) String() string {
	switch s {
	case SurfaceChat:
		return "chat"
	case SurfaceConsole:
		return "console"
	default:
		return "unknown"
	}
}

// Valid reports whether the surface is one of the recognized values.
func (s Surface) Valid() bool {
	return s == SurfaceChat || s == SurfaceConsole
}

// Param declares one handler parameter by name. Names matching the context
// vocabulary (message, content, channel, author, guild, guild_member,
// user_mentions, channel_mentions, role_mentions, args, datetime) are bound
// from the invocation context; any other name is bound positionally from
// the user-supplied arguments, left to right.
type Param struct {
	Name       string
	Default    string
	HasDefault bool
}

// P declares a required parameter.
func P(name string) Param {
	return Param{Name: name}
}

// Opt declares a parameter with a default, skipped once arguments run out.
func Opt(name, def string) Param {
	return Param{Name: name, Default: def, HasDefault: true}
}

// HandlerFunc executes a command invocation.
type HandlerFunc func(ctx context.Context, call *Call) (*Response, error)

// HookFunc handles a dispatched gateway event.
type HookFunc func(ctx context.Context, ev *Event) error

// CommandSpec is one command contributed by a plugin. Records are built at
// load time and never mutated afterwards.
type CommandSpec struct {
	Handler     string
	Surface     Surface
	Description string
	Usage       string
	Hidden      bool
	AllowDM     bool
	Permissions []string
	Params      []Param
	Run         HandlerFunc
}

// HookSpec binds a handler to a named gateway event.
type HookSpec struct {
	Event string
	Run   HookFunc
}

// Manifest describes a plugin: its identity, enablement defaults, and the
// commands and hooks it contributes.
type Manifest struct {
	// Name is the unique catalog key.
	Name        string
	DisplayName string

	Enabled          bool
	GuildWhitelist   []string
	GuildBlacklist   []string
	ChannelWhitelist []string
	ChannelBlacklist []string

	Commands []CommandSpec
	Hooks    []HookSpec
}

// Plugin is implemented by every loadable plugin. Manifest must be cheap
// and side-effect free; Init is called once, only for plugins that
// contribute at least one command or hook.
type Plugin interface {
	Manifest() Manifest
	Init(rt *Runtime) error
}

// Control signals. These are not errors: a handler returning one asks the
// process to stop or restart, and every layer of the dispatch path must let
// them pass through untouched.
var (
	ErrShutdown = errors.New("shutdown requested")
	ErrRestart  = errors.New("restart requested")
)

// IsControlSignal reports whether err is a shutdown or restart request.
func IsControlSignal(err error) bool {
	return errors.Is(err, ErrShutdown) || errors.Is(err, ErrRestart)
}

// NeutralizeMentions defuses raw mass-mention tokens by inserting a
// zero-width space after the @.
func NeutralizeMentions(s string) string {
	s = strings.ReplaceAll(s, "@everyone", "@\u200beveryone")
	return strings.ReplaceAll(s, "@here", "@\u200bhere")
}
