package command

import (
	"math"

	"github.com/samber/lo"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/pkg/resp"
)

var stringCommands = []Descriptor{
	{Name: "get", MinArgs: 1, MaxArgs: 1, Flags: FlagReadOnly | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: get},
	{Name: "set", MinArgs: 2, MaxArgs: -1, Flags: FlagWrite, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: set},
	{Name: "setnx", MinArgs: 2, MaxArgs: 2, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: setnx},
	{Name: "getset", MinArgs: 2, MaxArgs: 2, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: getset},
	{Name: "getdel", MinArgs: 1, MaxArgs: 1, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: getdel},
	{Name: "mget", MinArgs: 1, MaxArgs: -1, Flags: FlagReadOnly | FlagFast, FirstKey: 1, LastKey: -1, KeyStep: 1, Handler: mget},
	{Name: "mset", MinArgs: 2, MaxArgs: -1, Flags: FlagWrite, FirstKey: 1, LastKey: -1, KeyStep: 2, Handler: mset},
	{Name: "append", MinArgs: 2, MaxArgs: 2, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: appendCmd},
	{Name: "strlen", MinArgs: 1, MaxArgs: 1, Flags: FlagReadOnly | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: strlen},
	{Name: "incr", MinArgs: 1, MaxArgs: 1, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: incr},
	{Name: "decr", MinArgs: 1, MaxArgs: 1, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: decr},
	{Name: "incrby", MinArgs: 2, MaxArgs: 2, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: incrby},
	{Name: "decrby", MinArgs: 2, MaxArgs: 2, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: decrby},
}

func get(ctx *Context, args [][]byte) (resp.Reply, error) {
	var (
		reply resp.Reply = resp.NullBulk
		err   error
	)
	ctx.Store.View(string(args[0]), func(v domain.Value) {
		reply, err = stringReply(v)
	})
	return reply, err
}

// setFlags records which mutually exclusive SET options were seen.
type setFlags struct {
	expiry, cond bool
}

// parseSetOptions parses the options after SET key value.
func parseSetOptions(now int64, args [][]byte) (memory.SetOptions, error) {
	var (
		opts memory.SetOptions
		seen setFlags
	)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case isOpt(arg, "NX") || isOpt(arg, "XX"):
			if seen.cond {
				return opts, domain.ErrSyntax
			}
			seen.cond = true
			opts.Condition = memory.IfAbsent
			if isOpt(arg, "XX") {
				opts.Condition = memory.IfPresent
			}
		case isOpt(arg, "GET"):
			opts.ReturnOld = true
		case isOpt(arg, "KEEPTTL"):
			if seen.expiry {
				return opts, domain.ErrSyntax
			}
			seen.expiry = true
			opts.KeepTTL = true
		case isOpt(arg, "EX") || isOpt(arg, "PX") || isOpt(arg, "EXAT") || isOpt(arg, "PXAT"):
			if seen.expiry || i+1 >= len(args) {
				return opts, domain.ErrSyntax
			}
			seen.expiry = true
			absolute := isOpt(arg, "EXAT") || isOpt(arg, "PXAT")
			n, err := parseExpiry(args[i+1], absolute, "set")
			if err != nil {
				return opts, err
			}
			if n <= 0 {
				return opts, domain.InvalidExpiry("set")
			}
			unit := int64(1)
			if isOpt(arg, "EX") || isOpt(arg, "EXAT") {
				unit = 1000
			}
			at, err := absoluteExpiry(now, n, unit, absolute, "set")
			if err != nil {
				return opts, err
			}
			opts.ExpireAt = at
			i++
		default:
			return opts, domain.ErrSyntax
		}
	}
	return opts, nil
}

// SET key value [NX | XX] [GET] [EX s | PX ms | EXAT ts | PXAT ms | KEEPTTL]
func set(ctx *Context, args [][]byte) (resp.Reply, error) {
	opts, err := parseSetOptions(ctx.Store.Now(), args[2:])
	if err != nil {
		return nil, err
	}
	res, err := ctx.Store.Set(string(args[0]), domain.String(clone(args[1])), opts)
	if err != nil {
		return nil, err
	}
	switch {
	case opts.ReturnOld && res.HadOld:
		return resp.Bulk(res.Old), nil
	case opts.ReturnOld:
		return resp.NullBulk, nil
	case res.Applied:
		return resp.OK, nil
	default:
		return resp.NullBulk, nil
	}
}

func setnx(ctx *Context, args [][]byte) (resp.Reply, error) {
	res, err := ctx.Store.Set(string(args[0]), domain.String(clone(args[1])), memory.SetOptions{Condition: memory.IfAbsent})
	if err != nil {
		return nil, err
	}
	return resp.Integer(lo.Ternary(res.Applied, 1, 0)), nil
}

func getset(ctx *Context, args [][]byte) (resp.Reply, error) {
	res, err := ctx.Store.Set(string(args[0]), domain.String(clone(args[1])), memory.SetOptions{ReturnOld: true})
	if err != nil {
		return nil, err
	}
	if !res.HadOld {
		return resp.NullBulk, nil
	}
	return resp.Bulk(res.Old), nil
}

func requireString(v domain.Value) error {
	if v.Type() != domain.TypeString {
		return domain.ErrWrongType
	}
	return nil
}

func getdel(ctx *Context, args [][]byte) (resp.Reply, error) {
	v, ok, err := ctx.Store.Take(string(args[0]), requireString)
	if err != nil {
		return nil, err
	}
	if !ok {
		return resp.NullBulk, nil
	}
	return stringReply(v)
}

// mget replies null for missing keys and for keys that do not hold strings.
func mget(ctx *Context, args [][]byte) (resp.Reply, error) {
	out := make(resp.Array, len(args))
	for i, key := range args {
		out[i] = resp.NullBulk
		ctx.Store.View(string(key), func(v domain.Value) {
			if r, err := stringReply(v); err == nil {
				out[i] = r
			}
		})
	}
	return out, nil
}

// mset applies each pair atomically; the pairs as a group are not.
func mset(ctx *Context, args [][]byte) (resp.Reply, error) {
	if len(args)%2 != 0 {
		return nil, domain.WrongArity("mset")
	}
	for _, pair := range lo.Chunk(args, 2) {
		if _, err := ctx.Store.Set(string(pair[0]), domain.String(clone(pair[1])), memory.SetOptions{}); err != nil {
			return nil, err
		}
	}
	return resp.OK, nil
}

func appendCmd(ctx *Context, args [][]byte) (resp.Reply, error) {
	var length int
	err := ctx.Store.Update(string(args[0]), func(cur domain.Value) (domain.Value, error) {
		var next domain.String
		switch v := cur.(type) {
		case nil:
			next = clone(args[1])
		case domain.String:
			next = append(v, args[1]...)
		case domain.Int:
			b, _ := domain.AppendBytes(nil, v)
			next = append(b, args[1]...)
		default:
			return nil, domain.ErrWrongType
		}
		length = len(next)
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return resp.Integer(length), nil
}

func strlen(ctx *Context, args [][]byte) (resp.Reply, error) {
	var (
		n   int
		err error
	)
	ctx.Store.View(string(args[0]), func(v domain.Value) {
		var ok bool
		if n, ok = domain.StrLen(v); !ok {
			err = domain.ErrWrongType
		}
	})
	return resp.Integer(n), err
}

func incrBy(ctx *Context, key []byte, delta int64) (resp.Reply, error) {
	n, err := ctx.Store.MutateNumeric(string(key), delta)
	if err != nil {
		return nil, err
	}
	return resp.Integer(n), nil
}

func incr(ctx *Context, args [][]byte) (resp.Reply, error) {
	return incrBy(ctx, args[0], 1)
}

func decr(ctx *Context, args [][]byte) (resp.Reply, error) {
	return incrBy(ctx, args[0], -1)
}

func incrby(ctx *Context, args [][]byte) (resp.Reply, error) {
	delta, err := parseInt(args[1])
	if err != nil {
		return nil, err
	}
	return incrBy(ctx, args[0], delta)
}

func decrby(ctx *Context, args [][]byte) (resp.Reply, error) {
	delta, err := parseInt(args[1])
	if err != nil {
		return nil, err
	}
	if delta == math.MinInt64 {
		return nil, domain.NewCommandError(domain.KindOverflow, "decrement would overflow")
	}
	return incrBy(ctx, args[0], -delta)
}
