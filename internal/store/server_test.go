package store

import (
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/genc-murat/crystalstats/internal/core/models"
	"github.com/genc-murat/crystalstats/pkg/resp"
	util "github.com/genc-murat/crystalstats/pkg/utils"
)

// testServer serves a MemoryStore over RESP on a loopback listener.
type testServer struct {
	t        *testing.T
	ln       net.Listener
	store    *MemoryStore
	password string
	failing  map[string]string
	infoBody string

	mu       sync.Mutex
	commands []string
	wg       sync.WaitGroup
}

// newTestServer starts serving once every option has been applied.
func newTestServer(t *testing.T, store *MemoryStore, opts ...func(*testServer)) *testServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &testServer{t: t, ln: ln, store: store, failing: map[string]string{}}
	for _, opt := range opts {
		opt(s)
	}
	s.wg.Add(1)
	go s.serve()
	t.Cleanup(func() {
		ln.Close()
		s.wg.Wait()
	})
	return s
}

func (s *testServer) Addr() string {
	return s.ln.Addr().String()
}

func (s *testServer) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

func (s *testServer) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			s.handle(conn)
		}()
	}
}

func (s *testServer) handle(conn net.Conn) {
	rd := resp.NewReader(conn)
	wr := resp.NewWriter(conn)
	authed := s.password == ""

	for {
		cmd, err := rd.Read()
		if err != nil {
			return
		}
		if cmd.Type != "array" || len(cmd.Array) == 0 {
			return
		}

		name := strings.ToUpper(cmd.Array[0].Bulk)
		args := make([]string, len(cmd.Array)-1)
		for i, v := range cmd.Array[1:] {
			args[i] = v.Bulk
		}

		s.mu.Lock()
		s.commands = append(s.commands, strings.TrimSpace(name+" "+strings.Join(args, " ")))
		s.mu.Unlock()

		var reply models.Value
		switch {
		case name == "QUIT":
			wr.Write(models.Value{Type: "string", Str: "OK"})
			wr.Flush()
			return
		case s.failing[name] != "":
			reply = models.Value{Type: "error", Str: s.failing[name]}
		case name == "AUTH":
			if len(args) == 1 && args[0] == s.password {
				authed = true
				reply = models.Value{Type: "string", Str: "OK"}
			} else {
				reply = models.Value{Type: "error", Str: "WRONGPASS invalid password"}
			}
		case !authed:
			reply = models.Value{Type: "error", Str: "NOAUTH Authentication required."}
		default:
			reply = s.execute(name, args)
		}

		if err := wr.Write(reply); err != nil {
			return
		}
		if err := wr.Flush(); err != nil {
			return
		}
	}
}

func (s *testServer) execute(name string, args []string) models.Value {
	switch name {
	case "PING":
		return models.Value{Type: "string", Str: "PONG"}
	case "SELECT":
		return models.Value{Type: "string", Str: "OK"}
	case "KEYS":
		return bulkArray(s.store.Keys(args[0]))
	case "SCARD":
		return models.Value{Type: "integer", Num: int64(s.store.SCard(args[0]))}
	case "INFO":
		if s.infoBody != "" {
			return models.Value{Type: "bulk", Bulk: s.infoBody}
		}
		return models.Value{Type: "bulk", Bulk: "# Keyspace\r\n" + util.FormatInfoResponse(s.store.Info())}
	case "SCAN":
		cursor, _ := strconv.Atoi(args[0])
		glob, count := "*", 10
		for i := 1; i+1 < len(args); i += 2 {
			switch strings.ToUpper(args[i]) {
			case "MATCH":
				glob = args[i+1]
			case "COUNT":
				count, _ = strconv.Atoi(args[i+1])
			}
		}
		keys, next := s.store.Scan(cursor, glob, count)
		return models.Value{Type: "array", Array: []models.Value{
			{Type: "bulk", Bulk: strconv.Itoa(next)},
			bulkArray(keys),
		}}
	default:
		return models.Value{Type: "error", Str: "ERR unknown command '" + name + "'"}
	}
}

func bulkArray(items []string) models.Value {
	arr := make([]models.Value, len(items))
	for i, item := range items {
		arr[i] = models.Value{Type: "bulk", Bulk: item}
	}
	return models.Value{Type: "array", Array: arr}
}
