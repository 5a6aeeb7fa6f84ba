package command

import (
	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/pkg/resp"
)

var connectionCommands = []Descriptor{
	{Name: "ping", MinArgs: 0, MaxArgs: 1, Flags: FlagFast, Handler: ping},
	{Name: "echo", MinArgs: 1, MaxArgs: 1, Flags: FlagFast, Handler: echo},
	{Name: "quit", MinArgs: 0, MaxArgs: -1, Flags: FlagNoAuth | FlagFast, Handler: quit},
	{Name: "auth", MinArgs: 1, MaxArgs: 2, Flags: FlagNoAuth | FlagFast, Handler: auth},
	{Name: "select", MinArgs: 1, MaxArgs: 1, Flags: FlagFast, Handler: selectDB},
}

func ping(_ *Context, args [][]byte) (resp.Reply, error) {
	if len(args) == 1 {
		return resp.Bulk(clone(args[0])), nil
	}
	return resp.Pong, nil
}

func echo(_ *Context, args [][]byte) (resp.Reply, error) {
	return resp.Bulk(clone(args[0])), nil
}

func quit(ctx *Context, _ [][]byte) (resp.Reply, error) {
	ctx.Session.Quit = true
	return resp.OK, nil
}

// auth accepts AUTH password and AUTH default password.
func auth(ctx *Context, args [][]byte) (resp.Reply, error) {
	if ctx.Auth == nil {
		return nil, domain.ErrNoPassword
	}
	password := args[len(args)-1]
	if len(args) == 2 && string(args[0]) != "default" {
		return nil, domain.ErrWrongPass
	}
	if !ctx.Auth.Verify(password) {
		return nil, domain.ErrWrongPass
	}
	ctx.Session.Authenticated = true
	return resp.OK, nil
}

// selectDB accepts only database 0.
func selectDB(_ *Context, args [][]byte) (resp.Reply, error) {
	n, err := parseInt(args[0])
	if err != nil {
		return nil, err
	}
	if n != 0 {
		return nil, domain.ErrDBIndex
	}
	return resp.OK, nil
}
