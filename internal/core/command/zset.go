package command

import (
	"cmp"
	"maps"
	"slices"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/pkg/resp"
)

var zsetCommands = []Descriptor{
	{Name: "zadd", MinArgs: 3, MaxArgs: -1, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: zadd},
	{Name: "zscore", MinArgs: 2, MaxArgs: 2, Flags: FlagReadOnly | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: zscore},
	{Name: "zcard", MinArgs: 1, MaxArgs: 1, Flags: FlagReadOnly | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: zcard},
	{Name: "zrem", MinArgs: 2, MaxArgs: -1, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: zrem},
	{Name: "zrange", MinArgs: 3, MaxArgs: 4, Flags: FlagReadOnly, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: zrange},
}

var errZAddConflict = domain.NewCommandError(domain.KindSyntax, "XX and NX options at the same time are not compatible")

func asZSet(v domain.Value) (domain.ZSet, error) {
	if v == nil {
		return nil, nil
	}
	z, ok := v.(domain.ZSet)
	if !ok {
		return nil, domain.ErrWrongType
	}
	return z, nil
}

type scoredMember struct {
	member string
	score  float64
}

// ZADD key [NX | XX] [CH] score member [score member ...]
func zadd(ctx *Context, args [][]byte) (resp.Reply, error) {
	var nx, xx, ch bool
	rest := args[1:]
options:
	for len(rest) > 0 {
		switch {
		case isOpt(rest[0], "NX"):
			nx = true
		case isOpt(rest[0], "XX"):
			xx = true
		case isOpt(rest[0], "CH"):
			ch = true
		default:
			break options
		}
		rest = rest[1:]
	}
	if nx && xx {
		return nil, errZAddConflict
	}
	if len(rest) == 0 || len(rest)%2 != 0 {
		return nil, domain.ErrSyntax
	}
	items := make([]scoredMember, 0, len(rest)/2)
	for i := 0; i < len(rest); i += 2 {
		score, err := parseFloat(rest[i])
		if err != nil {
			return nil, err
		}
		items = append(items, scoredMember{member: string(rest[i+1]), score: score})
	}

	added, changed := 0, 0
	err := ctx.Store.Update(string(args[0]), func(cur domain.Value) (domain.Value, error) {
		z, err := asZSet(cur)
		if err != nil {
			return nil, err
		}
		if z == nil {
			if xx {
				return nil, nil
			}
			z = make(domain.ZSet, len(items))
		}
		for _, it := range items {
			old, exists := z[it.member]
			switch {
			case exists && !nx:
				if old != it.score {
					z[it.member] = it.score
					changed++
				}
			case !exists && !xx:
				z[it.member] = it.score
				added++
			}
		}
		return z, nil
	})
	if err != nil {
		return nil, err
	}
	if ch {
		return resp.Integer(added + changed), nil
	}
	return resp.Integer(added), nil
}

func zscore(ctx *Context, args [][]byte) (resp.Reply, error) {
	var (
		reply resp.Reply = resp.NullBulk
		err   error
	)
	ctx.Store.View(string(args[0]), func(v domain.Value) {
		var z domain.ZSet
		if z, err = asZSet(v); err != nil {
			return
		}
		if score, ok := z[string(args[1])]; ok {
			reply = resp.BulkString(formatScore(score))
		}
	})
	return reply, err
}

func zcard(ctx *Context, args [][]byte) (resp.Reply, error) {
	var (
		n   int
		err error
	)
	ctx.Store.View(string(args[0]), func(v domain.Value) {
		var z domain.ZSet
		z, err = asZSet(v)
		n = len(z)
	})
	return resp.Integer(n), err
}

func zrem(ctx *Context, args [][]byte) (resp.Reply, error) {
	removed := 0
	err := ctx.Store.Update(string(args[0]), func(cur domain.Value) (domain.Value, error) {
		z, err := asZSet(cur)
		if err != nil || z == nil {
			return nil, err
		}
		for _, m := range args[1:] {
			if _, ok := z[string(m)]; ok {
				delete(z, string(m))
				removed++
			}
		}
		return z, nil
	})
	if err != nil {
		return nil, err
	}
	return resp.Integer(removed), nil
}

// sortedMembers orders by score, then by member bytes.
func sortedMembers(z domain.ZSet) []scoredMember {
	members := make([]scoredMember, 0, len(z))
	for _, m := range slices.Collect(maps.Keys(z)) {
		members = append(members, scoredMember{member: m, score: z[m]})
	}
	slices.SortFunc(members, func(a, b scoredMember) int {
		if c := cmp.Compare(a.score, b.score); c != 0 {
			return c
		}
		return cmp.Compare(a.member, b.member)
	})
	return members
}

// ZRANGE key start stop [WITHSCORES]
func zrange(ctx *Context, args [][]byte) (resp.Reply, error) {
	withScores := len(args) == 4
	if withScores && !isOpt(args[3], "WITHSCORES") {
		return nil, domain.ErrSyntax
	}
	start, err := parseInt(args[1])
	if err != nil {
		return nil, err
	}
	stop, err := parseInt(args[2])
	if err != nil {
		return nil, err
	}

	var members []scoredMember
	ctx.Store.View(string(args[0]), func(v domain.Value) {
		var z domain.ZSet
		if z, err = asZSet(v); err == nil {
			members = sortedMembers(z)
		}
	})
	if err != nil {
		return nil, err
	}

	out := resp.Array{}
	from, to, ok := normalizeRange(start, stop, len(members))
	if !ok {
		return out, nil
	}
	for _, m := range members[from:to] {
		out = append(out, resp.BulkString(m.member))
		if withScores {
			out = append(out, resp.BulkString(formatScore(m.score)))
		}
	}
	return out, nil
}
