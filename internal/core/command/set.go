package command

import (
	"maps"
	"slices"

	"github.com/samber/lo"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/pkg/resp"
)

var setCommands = []Descriptor{
	{Name: "sadd", MinArgs: 2, MaxArgs: -1, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: sadd},
	{Name: "srem", MinArgs: 2, MaxArgs: -1, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: srem},
	{Name: "sismember", MinArgs: 2, MaxArgs: 2, Flags: FlagReadOnly | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: sismember},
	{Name: "smembers", MinArgs: 1, MaxArgs: 1, Flags: FlagReadOnly, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: smembers},
	{Name: "scard", MinArgs: 1, MaxArgs: 1, Flags: FlagReadOnly | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: scard},
}

func asSet(v domain.Value) (domain.Set, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(domain.Set)
	if !ok {
		return nil, domain.ErrWrongType
	}
	return s, nil
}

func sadd(ctx *Context, args [][]byte) (resp.Reply, error) {
	added := 0
	err := ctx.Store.Update(string(args[0]), func(cur domain.Value) (domain.Value, error) {
		s, err := asSet(cur)
		if err != nil {
			return nil, err
		}
		if s == nil {
			s = make(domain.Set, len(args)-1)
		}
		for _, m := range args[1:] {
			if _, ok := s[string(m)]; !ok {
				s[string(m)] = struct{}{}
				added++
			}
		}
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return resp.Integer(added), nil
}

func srem(ctx *Context, args [][]byte) (resp.Reply, error) {
	removed := 0
	err := ctx.Store.Update(string(args[0]), func(cur domain.Value) (domain.Value, error) {
		s, err := asSet(cur)
		if err != nil || s == nil {
			return nil, err
		}
		for _, m := range args[1:] {
			if _, ok := s[string(m)]; ok {
				delete(s, string(m))
				removed++
			}
		}
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return resp.Integer(removed), nil
}

func sismember(ctx *Context, args [][]byte) (resp.Reply, error) {
	found := false
	var err error
	ctx.Store.View(string(args[0]), func(v domain.Value) {
		var s domain.Set
		if s, err = asSet(v); err != nil {
			return
		}
		_, found = s[string(args[1])]
	})
	return resp.Integer(lo.Ternary(found, 1, 0)), err
}

// smembers replies the members in byte order.
func smembers(ctx *Context, args [][]byte) (resp.Reply, error) {
	var (
		members []string
		err     error
	)
	ctx.Store.View(string(args[0]), func(v domain.Value) {
		var s domain.Set
		if s, err = asSet(v); err != nil {
			return
		}
		members = slices.Sorted(maps.Keys(s))
	})
	if err != nil {
		return nil, err
	}
	return keyArray(members), nil
}

func scard(ctx *Context, args [][]byte) (resp.Reply, error) {
	var (
		n   int
		err error
	)
	ctx.Store.View(string(args[0]), func(v domain.Value) {
		var s domain.Set
		s, err = asSet(v)
		n = len(s)
	})
	return resp.Integer(n), err
}
