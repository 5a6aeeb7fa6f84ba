package command

import (
	"bytes"
	"maps"
	"slices"

	"github.com/samber/lo"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/pkg/resp"
)

var hashCommands = []Descriptor{
	{Name: "hset", MinArgs: 3, MaxArgs: -1, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: hset},
	{Name: "hget", MinArgs: 2, MaxArgs: 2, Flags: FlagReadOnly | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: hget},
	{Name: "hdel", MinArgs: 2, MaxArgs: -1, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: hdel},
	{Name: "hlen", MinArgs: 1, MaxArgs: 1, Flags: FlagReadOnly | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: hlen},
	{Name: "hgetall", MinArgs: 1, MaxArgs: 1, Flags: FlagReadOnly, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: hgetall},
	{Name: "hexists", MinArgs: 2, MaxArgs: 2, Flags: FlagReadOnly | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: hexists},
}

func asHash(v domain.Value) (domain.Hash, error) {
	if v == nil {
		return nil, nil
	}
	h, ok := v.(domain.Hash)
	if !ok {
		return nil, domain.ErrWrongType
	}
	return h, nil
}

// HSET key field value [field value ...]
func hset(ctx *Context, args [][]byte) (resp.Reply, error) {
	if len(args)%2 != 1 {
		return nil, domain.WrongArity("hset")
	}
	added := 0
	err := ctx.Store.Update(string(args[0]), func(cur domain.Value) (domain.Value, error) {
		h, err := asHash(cur)
		if err != nil {
			return nil, err
		}
		if h == nil {
			h = make(domain.Hash, len(args)/2)
		}
		for _, pair := range lo.Chunk(args[1:], 2) {
			field := string(pair[0])
			if _, ok := h[field]; !ok {
				added++
			}
			h[field] = clone(pair[1])
		}
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return resp.Integer(added), nil
}

func hget(ctx *Context, args [][]byte) (resp.Reply, error) {
	var (
		reply resp.Reply = resp.NullBulk
		err   error
	)
	ctx.Store.View(string(args[0]), func(v domain.Value) {
		var h domain.Hash
		if h, err = asHash(v); err != nil {
			return
		}
		if val, ok := h[string(args[1])]; ok {
			reply = resp.Bulk(bytes.Clone(val))
		}
	})
	return reply, err
}

func hdel(ctx *Context, args [][]byte) (resp.Reply, error) {
	removed := 0
	err := ctx.Store.Update(string(args[0]), func(cur domain.Value) (domain.Value, error) {
		h, err := asHash(cur)
		if err != nil || h == nil {
			return nil, err
		}
		for _, f := range args[1:] {
			if _, ok := h[string(f)]; ok {
				delete(h, string(f))
				removed++
			}
		}
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return resp.Integer(removed), nil
}

func hlen(ctx *Context, args [][]byte) (resp.Reply, error) {
	var (
		n   int
		err error
	)
	ctx.Store.View(string(args[0]), func(v domain.Value) {
		var h domain.Hash
		h, err = asHash(v)
		n = len(h)
	})
	return resp.Integer(n), err
}

// hgetall replies field value pairs ordered by field.
func hgetall(ctx *Context, args [][]byte) (resp.Reply, error) {
	out := resp.Array{}
	var err error
	ctx.Store.View(string(args[0]), func(v domain.Value) {
		var h domain.Hash
		if h, err = asHash(v); err != nil {
			return
		}
		fields := slices.Sorted(maps.Keys(h))
		out = make(resp.Array, 0, 2*len(fields))
		for _, f := range fields {
			out = append(out, resp.BulkString(f), resp.Bulk(bytes.Clone(h[f])))
		}
	})
	return out, err
}

func hexists(ctx *Context, args [][]byte) (resp.Reply, error) {
	found := false
	var err error
	ctx.Store.View(string(args[0]), func(v domain.Value) {
		var h domain.Hash
		if h, err = asHash(v); err != nil {
			return
		}
		_, found = h[string(args[1])]
	})
	return resp.Integer(lo.Ternary(found, 1, 0)), err
}
