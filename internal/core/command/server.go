package command

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/infra/buildinfo"
	"github.com/yndnr/respkv/pkg/resp"
)

var serverCommands = []Descriptor{
	{Name: "flushall", MinArgs: 0, MaxArgs: 1, Flags: FlagWrite, Handler: flush},
	{Name: "flushdb", MinArgs: 0, MaxArgs: 1, Flags: FlagWrite, Handler: flush},
	{Name: "dbsize", MinArgs: 0, MaxArgs: 0, Flags: FlagReadOnly | FlagFast, Handler: dbsize},
	{Name: "info", MinArgs: 0, MaxArgs: -1, Handler: info},
	{Name: "command", MinArgs: 0, MaxArgs: -1, Handler: commandCmd},
	{Name: "time", MinArgs: 0, MaxArgs: 0, Flags: FlagFast, Handler: timeCmd},
}

// flush accepts the ASYNC and SYNC modifiers; both flush synchronously.
func flush(ctx *Context, args [][]byte) (resp.Reply, error) {
	if len(args) == 1 && !isOpt(args[0], "ASYNC") && !isOpt(args[0], "SYNC") {
		return nil, domain.ErrSyntax
	}
	ctx.Store.Flush()
	return resp.OK, nil
}

func dbsize(ctx *Context, _ [][]byte) (resp.Reply, error) {
	return resp.Integer(ctx.Store.Len()), nil
}

func timeCmd(_ *Context, _ [][]byte) (resp.Reply, error) {
	now := time.Now()
	return resp.Array{
		resp.BulkString(strconv.FormatInt(now.Unix(), 10)),
		resp.BulkString(strconv.Itoa(now.Nanosecond() / 1000)),
	}, nil
}

var infoSections = []string{"server", "clients", "stats", "keyspace"}

// INFO [section ...]
func info(ctx *Context, args [][]byte) (resp.Reply, error) {
	want := infoSections
	if len(args) > 0 {
		want = lo.Map(args, func(a []byte, _ int) string { return strings.ToLower(string(a)) })
		if lo.Contains(want, "all") || lo.Contains(want, "everything") || lo.Contains(want, "default") {
			want = infoSections
		}
	}

	var b strings.Builder
	for _, section := range infoSections {
		if !lo.Contains(want, section) {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\r\n")
		}
		writeInfoSection(&b, ctx, section)
	}
	return resp.BulkString(b.String()), nil
}

func writeInfoSection(b *strings.Builder, ctx *Context, section string) {
	field := func(name string, value any) {
		fmt.Fprintf(b, "%s:%v\r\n", name, value)
	}
	switch section {
	case "server":
		bi := buildinfo.Get()
		b.WriteString("# Server\r\n")
		field("respkv_version", bi.Version)
		field("respkv_git_sha1", bi.ShortCommit())
		field("go_version", bi.GoVersion)
		field("os", runtime.GOOS+" "+runtime.GOARCH)
		field("process_id", os.Getpid())
		field("uptime_in_seconds", int64(time.Since(ctx.Started).Seconds()))
	case "clients":
		b.WriteString("# Clients\r\n")
		if ctx.Stats != nil {
			field("connected_clients", ctx.Stats.ConnectedClients())
		}
	case "stats":
		st := ctx.Store.Stats()
		b.WriteString("# Stats\r\n")
		if ctx.Stats != nil {
			field("total_connections_received", ctx.Stats.TotalConnections())
		}
		field("total_commands_processed", ctx.commands.Load())
		field("expired_keys", st.Expired)
	case "keyspace":
		st := ctx.Store.Stats()
		b.WriteString("# Keyspace\r\n")
		if st.Keys > 0 {
			field("db0", fmt.Sprintf("keys=%d,expires=%d,avg_ttl=0", st.Keys, st.Volatile))
		}
	}
}

// COMMAND [COUNT | INFO name ... | DOCS [name ...] | LIST]
func commandCmd(_ *Context, args [][]byte) (resp.Reply, error) {
	if len(args) == 0 {
		return commandInfo(Names()), nil
	}
	sub := args[0]
	switch {
	case isOpt(sub, "COUNT") && len(args) == 1:
		return resp.Integer(Count()), nil
	case isOpt(sub, "LIST") && len(args) == 1:
		return keyArray(Names()), nil
	case isOpt(sub, "INFO"):
		if len(args) == 1 {
			return commandInfo(Names()), nil
		}
		return commandInfo(keys(args[1:])), nil
	case isOpt(sub, "DOCS"):
		return resp.Array{}, nil
	default:
		return nil, domain.NewCommandError(domain.KindSyntax,
			fmt.Sprintf("unknown subcommand '%s'. Try COMMAND HELP.", strings.ToLower(string(sub))))
	}
}

// commandInfo describes each named command as
// [name, arity, [flags], first key, last key, step]; unknown names are null.
func commandInfo(names []string) resp.Array {
	out := make(resp.Array, len(names))
	for i, name := range names {
		d, ok := Lookup([]byte(name))
		if !ok {
			out[i] = resp.NullArray
			continue
		}
		flags := lo.Map(d.Flags.Names(), func(f string, _ int) resp.Reply {
			return resp.SimpleString(f)
		})
		out[i] = resp.Array{
			resp.BulkString(d.Name),
			resp.Integer(d.Arity()),
			resp.Array(flags),
			resp.Integer(d.FirstKey),
			resp.Integer(d.LastKey),
			resp.Integer(d.KeyStep),
		}
	}
	return out
}
