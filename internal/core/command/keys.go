package command

import (
	"strconv"

	"github.com/samber/lo"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/pkg/resp"
)

var keyCommands = []Descriptor{
	{Name: "del", MinArgs: 1, MaxArgs: -1, Flags: FlagWrite, FirstKey: 1, LastKey: -1, KeyStep: 1, Handler: del},
	{Name: "unlink", MinArgs: 1, MaxArgs: -1, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: -1, KeyStep: 1, Handler: del},
	{Name: "exists", MinArgs: 1, MaxArgs: -1, Flags: FlagReadOnly | FlagFast, FirstKey: 1, LastKey: -1, KeyStep: 1, Handler: exists},
	{Name: "expire", MinArgs: 2, MaxArgs: 2, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: expireHandler(1000, false, "expire")},
	{Name: "pexpire", MinArgs: 2, MaxArgs: 2, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: expireHandler(1, false, "pexpire")},
	{Name: "expireat", MinArgs: 2, MaxArgs: 2, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: expireHandler(1000, true, "expireat")},
	{Name: "pexpireat", MinArgs: 2, MaxArgs: 2, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: expireHandler(1, true, "pexpireat")},
	{Name: "ttl", MinArgs: 1, MaxArgs: 1, Flags: FlagReadOnly | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: ttl},
	{Name: "pttl", MinArgs: 1, MaxArgs: 1, Flags: FlagReadOnly | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: pttl},
	{Name: "expiretime", MinArgs: 1, MaxArgs: 1, Flags: FlagReadOnly | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: expireTime(1000)},
	{Name: "pexpiretime", MinArgs: 1, MaxArgs: 1, Flags: FlagReadOnly | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: expireTime(1)},
	{Name: "persist", MinArgs: 1, MaxArgs: 1, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: persist},
	{Name: "type", MinArgs: 1, MaxArgs: 1, Flags: FlagReadOnly | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: typeCmd},
	{Name: "keys", MinArgs: 1, MaxArgs: 1, Flags: FlagReadOnly, Handler: keysCmd},
	{Name: "scan", MinArgs: 1, MaxArgs: -1, Flags: FlagReadOnly, Handler: scan},
	{Name: "rename", MinArgs: 2, MaxArgs: 2, Flags: FlagWrite, FirstKey: 1, LastKey: 2, KeyStep: 1, Handler: rename},
}

var errInvalidCursor = domain.NewCommandError(domain.KindSyntax, "invalid cursor")

func del(ctx *Context, args [][]byte) (resp.Reply, error) {
	return resp.Integer(ctx.Store.Delete(keys(args)...)), nil
}

func exists(ctx *Context, args [][]byte) (resp.Reply, error) {
	return resp.Integer(ctx.Store.Exists(keys(args)...)), nil
}

// expireHandler builds EXPIRE and its variants. unit is milliseconds per
// argument unit; absolute selects the *AT forms. A zero TTL or a past
// timestamp deletes the key; a negative TTL is rejected.
func expireHandler(unit int64, absolute bool, name string) Handler {
	return func(ctx *Context, args [][]byte) (resp.Reply, error) {
		n, err := parseExpiry(args[1], absolute, name)
		if err != nil {
			return nil, err
		}
		at, err := absoluteExpiry(ctx.Store.Now(), n, unit, absolute, name)
		if err != nil {
			return nil, err
		}
		return resp.Integer(lo.Ternary(ctx.Store.SetExpiry(string(args[0]), at), 1, 0)), nil
	}
}

func ttl(ctx *Context, args [][]byte) (resp.Reply, error) {
	ms := ctx.Store.PTTL(string(args[0]))
	if ms < 0 {
		return resp.Integer(ms), nil
	}
	return resp.Integer((ms + 500) / 1000), nil
}

func pttl(ctx *Context, args [][]byte) (resp.Reply, error) {
	return resp.Integer(ctx.Store.PTTL(string(args[0]))), nil
}

func expireTime(unit int64) Handler {
	return func(ctx *Context, args [][]byte) (resp.Reply, error) {
		at := ctx.Store.ExpireAt(string(args[0]))
		if at < 0 {
			return resp.Integer(at), nil
		}
		return resp.Integer(at / unit), nil
	}
}

func persist(ctx *Context, args [][]byte) (resp.Reply, error) {
	return resp.Integer(lo.Ternary(ctx.Store.Persist(string(args[0])), 1, 0)), nil
}

func typeCmd(ctx *Context, args [][]byte) (resp.Reply, error) {
	return resp.SimpleString(ctx.Store.Type(string(args[0])).String()), nil
}

func keysCmd(ctx *Context, args [][]byte) (resp.Reply, error) {
	return keyArray(ctx.Store.Keys(string(args[0]))), nil
}

func keyArray(ks []string) resp.Array {
	return lo.Map(ks, func(k string, _ int) resp.Reply {
		return resp.BulkString(k)
	})
}

// SCAN cursor [MATCH pattern] [COUNT count]
func scan(ctx *Context, args [][]byte) (resp.Reply, error) {
	cursor, err := strconv.ParseUint(string(args[0]), 10, 64)
	if err != nil {
		return nil, errInvalidCursor
	}
	pattern, count := "*", memory.DefaultScanCount
	rest := args[1:]
	for len(rest) > 0 {
		if len(rest) < 2 {
			return nil, domain.ErrSyntax
		}
		switch {
		case isOpt(rest[0], "MATCH"):
			pattern = string(rest[1])
		case isOpt(rest[0], "COUNT"):
			n, err := parseInt(rest[1])
			if err != nil {
				return nil, err
			}
			if n < 1 {
				return nil, domain.ErrSyntax
			}
			count = int(min(n, 1<<20))
		default:
			return nil, domain.ErrSyntax
		}
		rest = rest[2:]
	}
	next, found := ctx.Store.Scan(cursor, pattern, count)
	return resp.Array{
		resp.BulkString(strconv.FormatUint(next, 10)),
		keyArray(found),
	}, nil
}

func rename(ctx *Context, args [][]byte) (resp.Reply, error) {
	if err := ctx.Store.Rename(string(args[0]), string(args[1])); err != nil {
		return nil, err
	}
	return resp.OK, nil
}
