package repl

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Commands lists the command names the server understands.
var Commands = []string{
	"APPEND", "AUTH", "COMMAND", "DBSIZE", "DECR", "DECRBY", "DEL", "ECHO",
	"EXISTS", "EXPIRE", "EXPIREAT", "EXPIRETIME", "FLUSHALL", "FLUSHDB",
	"GET", "GETDEL", "GETSET", "HDEL", "HEXISTS", "HGET", "HGETALL", "HLEN",
	"HSET", "INCR", "INCRBY", "INFO", "KEYS", "LLEN", "LPOP", "LPUSH",
	"LRANGE", "MGET", "MSET", "PERSIST", "PEXPIRE", "PEXPIREAT",
	"PEXPIRETIME", "PING", "PTTL", "QUIT", "RENAME", "RPOP", "RPUSH", "SADD",
	"SCAN", "SCARD", "SELECT", "SET", "SETNX", "SISMEMBER", "SMEMBERS",
	"SREM", "STRLEN", "TIME", "TTL", "TYPE", "UNLINK", "ZADD", "ZCARD",
	"ZRANGE", "ZREM", "ZSCORE",
}

// Completer looks up command names by prefix.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over names.
func NewCompleter(names []string) *Completer {
	cmds := lo.Uniq(lo.Map(names, func(n string, _ int) string { return strings.ToUpper(n) }))
	slices.Sort(cmds)
	return &Completer{commands: cmds}
}

// Complete returns the sorted command names starting with prefix,
// ignoring case.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.ToUpper(prefix)
	return lo.Filter(c.commands, func(cmd string, _ int) bool {
		return strings.HasPrefix(cmd, prefix)
	})
}
