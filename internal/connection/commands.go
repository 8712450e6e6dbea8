package connection

import (
	"strings"

	"redisd/internal/keyspace"
	"redisd/internal/resp"
)

// dispatch handles one parsed RESP term. A SimpleString term is the
// legacy inline form, recognized only as PING; everything else must be
// an Array whose first element names the command.
func (c *Connection) dispatch(term resp.Term) error {
	switch term.Kind {
	case resp.SimpleString:
		if strings.EqualFold(string(term.Bytes), "PING") {
			c.enc.SimpleString("PONG")
			return nil
		}
		return clientErrorf("unknown command '%s'", term.Bytes)
	case resp.Array:
		return c.dispatchArray(term.Elems)
	default:
		return clientErrorf("unknown command")
	}
}

func (c *Connection) dispatchArray(elems []resp.Term) error {
	if len(elems) == 0 {
		return clientErrorf("unknown command")
	}
	name, ok := bulkBytes(elems[0])
	if !ok {
		return clientErrorf("unknown command")
	}
	args := elems[1:]

	switch strings.ToUpper(string(name)) {
	case "PING":
		c.enc.SimpleString("PONG")
		return nil
	case "COMMAND":
		c.enc.SimpleString("OK")
		return nil
	case "ECHO":
		return c.handleEcho(args)
	case "CLIENT":
		c.enc.SimpleString("OK")
		return nil
	case "CONFIG":
		return c.handleConfig(args)
	case "SET":
		return c.handleSet(args)
	case "GET":
		return c.handleGet(args)
	default:
		return clientErrorf("unknown command '%s'", name)
	}
}

func (c *Connection) handleEcho(args []resp.Term) error {
	if len(args) != 1 {
		return clientErrorf("wrong number of arguments for 'echo' command")
	}
	v, ok := bulkBytes(args[0])
	if !ok {
		return clientErrorf("syntax error")
	}
	c.enc.SimpleString(string(v))
	return nil
}

func (c *Connection) handleConfig(args []resp.Term) error {
	if len(args) == 0 {
		return clientErrorf("wrong number of arguments for 'config' command")
	}
	sub, ok := bulkBytes(args[0])
	if !ok {
		return clientErrorf("syntax error")
	}

	switch strings.ToUpper(string(sub)) {
	case "GET":
		if len(args) != 2 {
			return clientErrorf("wrong number of arguments for 'config|get' command")
		}
		name, ok := bulkBytes(args[1])
		if !ok {
			return clientErrorf("syntax error")
		}
		switch strings.ToUpper(string(name)) {
		case "DBFILENAME":
			c.enc.BulkStringArray([]byte("dbfilename"), []byte(c.cfg.DBFilename))
		case "DIR":
			c.enc.BulkStringArray([]byte("dir"), []byte(c.cfg.Dir))
		default:
			c.enc.EmptyArray()
		}
		return nil
	case "SET":
		return clientErrorf("CONFIG SET is not supported")
	default:
		c.enc.SimpleString("OK")
		return nil
	}
}

func (c *Connection) handleGet(args []resp.Term) error {
	if len(args) != 1 {
		return clientErrorf("wrong number of arguments for 'get' command")
	}
	key, ok := bulkBytes(args[0])
	if !ok {
		return clientErrorf("syntax error")
	}
	val, found := c.store.Get(c.db, key, c.now)
	if !found {
		c.enc.NullBulk()
		return nil
	}
	c.enc.BulkString(val)
	return nil
}

func (c *Connection) handleSet(args []resp.Term) error {
	if len(args) < 2 {
		return clientErrorf("wrong number of arguments for 'set' command")
	}
	key, ok := bulkBytes(args[0])
	if !ok {
		return clientErrorf("syntax error")
	}
	value, ok := bulkBytes(args[1])
	if !ok {
		return clientErrorf("syntax error")
	}

	var opts keyspace.SetOptions
	var nx, xx, haveTimeOpt bool

	i := 2
	for i < len(args) {
		tok, ok := bulkBytes(args[i])
		if !ok {
			return clientErrorf("syntax error")
		}
		switch strings.ToUpper(string(tok)) {
		case "NX":
			nx = true
		case "XX":
			xx = true
		case "KEEPTTL":
			opts.KeepTTL = true
		case "EX", "PX", "EXAT", "PXAT":
			if haveTimeOpt {
				return clientErrorf("syntax error")
			}
			if i+1 >= len(args) {
				return clientErrorf("syntax error")
			}
			numTok, ok := bulkBytes(args[i+1])
			if !ok {
				return clientErrorf("syntax error")
			}
			n, err := parseNonNegativeInt(numTok)
			if err != nil {
				return clientErrorf("value is not an integer or out of range")
			}
			switch strings.ToUpper(string(tok)) {
			case "EX":
				opts.HasExpire, opts.ExpireMs = true, c.now()+n*1000
			case "PX":
				opts.HasExpire, opts.ExpireMs = true, c.now()+n
			case "EXAT":
				opts.HasExpire, opts.ExpireMs = true, n*1000
			case "PXAT":
				opts.HasExpire, opts.ExpireMs = true, n
			}
			haveTimeOpt = true
			i++
		default:
			return clientErrorf("syntax error")
		}
		i++
	}

	if nx && xx {
		return clientErrorf("syntax error")
	}
	opts.OnlyIfNotExists = nx
	opts.OnlyIfExists = xx

	if c.store.Set(c.db, key, value, opts, c.now) {
		c.enc.SimpleString("OK")
	} else {
		c.enc.NullBulk()
	}
	return nil
}

func bulkBytes(t resp.Term) ([]byte, bool) {
	if t.Kind != resp.BulkString {
		return nil, false
	}
	return t.Bytes, true
}

func parseNonNegativeInt(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, clientErrorf("value is not an integer or out of range")
	}
	var n int64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, clientErrorf("value is not an integer or out of range")
		}
		d := int64(c - '0')
		if n > (1<<62)/10 {
			return 0, clientErrorf("value is not an integer or out of range")
		}
		n = n*10 + d
	}
	return n, nil
}
