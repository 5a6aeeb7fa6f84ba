package command

import (
	"slices"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/pkg/resp"
)

var listCommands = []Descriptor{
	{Name: "lpush", MinArgs: 2, MaxArgs: -1, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: push(true)},
	{Name: "rpush", MinArgs: 2, MaxArgs: -1, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: push(false)},
	{Name: "lpop", MinArgs: 1, MaxArgs: 2, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: pop(true)},
	{Name: "rpop", MinArgs: 1, MaxArgs: 2, Flags: FlagWrite | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: pop(false)},
	{Name: "llen", MinArgs: 1, MaxArgs: 1, Flags: FlagReadOnly | FlagFast, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: llen},
	{Name: "lrange", MinArgs: 3, MaxArgs: 3, Flags: FlagReadOnly, FirstKey: 1, LastKey: 1, KeyStep: 1, Handler: lrange},
}

var errNotPositive = domain.NewCommandError(domain.KindNotAnInteger, "value is out of range, must be positive")

func asList(v domain.Value) (domain.List, error) {
	if v == nil {
		return nil, nil
	}
	l, ok := v.(domain.List)
	if !ok {
		return nil, domain.ErrWrongType
	}
	return l, nil
}

// push builds LPUSH and RPUSH. LPUSH inserts the elements one after the
// other at the head, so they end up reversed.
func push(head bool) Handler {
	return func(ctx *Context, args [][]byte) (resp.Reply, error) {
		var length int
		err := ctx.Store.Update(string(args[0]), func(cur domain.Value) (domain.Value, error) {
			l, err := asList(cur)
			if err != nil {
				return nil, err
			}
			elems := make(domain.List, len(args)-1)
			for i, a := range args[1:] {
				elems[i] = clone(a)
			}
			if head {
				slices.Reverse(elems)
				l = append(elems, l...)
			} else {
				l = append(l, elems...)
			}
			length = len(l)
			return l, nil
		})
		if err != nil {
			return nil, err
		}
		return resp.Integer(length), nil
	}
}

// pop builds LPOP and RPOP. Without a count the reply is one bulk, with a
// count it is an array; a missing key is null in both forms.
func pop(head bool) Handler {
	return func(ctx *Context, args [][]byte) (resp.Reply, error) {
		count, withCount := int64(1), len(args) == 2
		if withCount {
			n, err := parseInt(args[1])
			if err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, errNotPositive
			}
			count = n
		}

		var popped [][]byte
		found := false
		err := ctx.Store.Update(string(args[0]), func(cur domain.Value) (domain.Value, error) {
			l, err := asList(cur)
			if err != nil || l == nil {
				return nil, err
			}
			found = true
			n := int(min(count, int64(len(l))))
			if head {
				popped = slices.Clone(l[:n])
				return l[n:], nil
			}
			popped = slices.Clone(l[len(l)-n:])
			slices.Reverse(popped)
			return l[:len(l)-n], nil
		})
		switch {
		case err != nil:
			return nil, err
		case !withCount && !found:
			return resp.NullBulk, nil
		case !withCount:
			return resp.Bulk(popped[0]), nil
		case !found:
			return resp.NullArray, nil
		default:
			return bulks(popped), nil
		}
	}
}

func llen(ctx *Context, args [][]byte) (resp.Reply, error) {
	var (
		n   int
		err error
	)
	ctx.Store.View(string(args[0]), func(v domain.Value) {
		var l domain.List
		l, err = asList(v)
		n = len(l)
	})
	return resp.Integer(n), err
}

func lrange(ctx *Context, args [][]byte) (resp.Reply, error) {
	start, err := parseInt(args[1])
	if err != nil {
		return nil, err
	}
	stop, err := parseInt(args[2])
	if err != nil {
		return nil, err
	}
	out := resp.Array{}
	ctx.Store.View(string(args[0]), func(v domain.Value) {
		var l domain.List
		if l, err = asList(v); err != nil {
			return
		}
		if from, to, ok := normalizeRange(start, stop, len(l)); ok {
			out = bulks(domain.List(l[from:to]).Clone().(domain.List))
		}
	})
	return out, err
}
