// Package store talks to the key-value store the report describes.
package store

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/genc-murat/crystalstats/internal/core/models"
	"github.com/genc-murat/crystalstats/internal/pool"
	"github.com/genc-murat/crystalstats/pkg/resp"
	util "github.com/genc-murat/crystalstats/pkg/utils"
)

type Options struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// ScanCount switches key counting from KEYS to SCAN with this COUNT hint.
	ScanCount int
	Logger    *zap.Logger
}

// Client is a RESP client over a single connection. Calls are sequential;
// a Client is not safe for concurrent use.
type Client struct {
	conn   net.Conn
	rd     *resp.Reader
	wr     *resp.Writer
	opts   Options
	log    *zap.Logger
	closed bool
}

// Dial connects to opts.Addr and prepares the connection.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	conn, err := pool.NewConnFactory(opts.Addr, opts.DialTimeout).CreateConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", opts.Addr, err)
	}

	c, err := NewClient(ctx, conn, opts)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// NewClient wraps an open connection, authenticating and selecting the
// database when configured.
func NewClient(ctx context.Context, conn net.Conn, opts Options) (*Client, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		conn: conn,
		rd:   resp.NewReader(conn),
		wr:   resp.NewWriter(conn),
		opts: opts,
		log:  log.With(zap.String("addr", opts.Addr)),
	}

	if opts.Password != "" {
		if _, err := c.Do(ctx, "AUTH", opts.Password); err != nil {
			return nil, err
		}
	}
	if opts.DB != 0 {
		if _, err := c.Do(ctx, "SELECT", strconv.Itoa(opts.DB)); err != nil {
			return nil, err
		}
	}

	c.log.Debug("connected", zap.Int("db", opts.DB))
	return c, nil
}

// Do sends one command and waits for its reply. Error replies are returned
// as *ReplyError.
func (c *Client) Do(ctx context.Context, name string, args ...string) (models.Value, error) {
	if c.closed {
		return models.Value{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return models.Value{}, err
	}

	if err := c.conn.SetWriteDeadline(c.deadline(ctx, c.opts.WriteTimeout)); err != nil {
		return models.Value{}, err
	}
	if err := c.wr.WriteCommand(name, args...); err != nil {
		return models.Value{}, fmt.Errorf("sending %s: %w", name, err)
	}

	if err := c.conn.SetReadDeadline(c.deadline(ctx, c.opts.ReadTimeout)); err != nil {
		return models.Value{}, err
	}
	reply, err := c.rd.Read()
	if err != nil {
		return models.Value{}, fmt.Errorf("reading %s reply: %w", name, err)
	}

	if reply.IsError() {
		return models.Value{}, &ReplyError{Command: name, Message: reply.Str}
	}
	return reply, nil
}

// deadline is the earlier of the context deadline and now+timeout; zero
// means none.
func (c *Client) deadline(ctx context.Context, timeout time.Duration) time.Time {
	var d time.Time
	if timeout > 0 {
		d = time.Now().Add(timeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok && (d.IsZero() || ctxDeadline.Before(d)) {
		d = ctxDeadline
	}
	return d
}

// CountKeysMatching counts keys matching a glob, with KEYS or, when
// ScanCount is set, a full SCAN iteration.
func (c *Client) CountKeysMatching(ctx context.Context, glob string) (int64, error) {
	if c.opts.ScanCount > 0 {
		return c.scanCount(ctx, glob)
	}

	reply, err := c.Do(ctx, "KEYS", glob)
	if err != nil {
		return 0, err
	}
	if reply.Type != "array" {
		return 0, fmt.Errorf("%w: KEYS returned %s", ErrUnexpectedReply, reply)
	}
	return int64(len(reply.Array)), nil
}

// scanCount iterates SCAN until the cursor returns to 0. SCAN may return a
// key more than once, so keys are deduplicated.
func (c *Client) scanCount(ctx context.Context, glob string) (int64, error) {
	seen := make(map[string]struct{})
	cursor := "0"
	count := strconv.Itoa(c.opts.ScanCount)

	for {
		reply, err := c.Do(ctx, "SCAN", cursor, "MATCH", glob, "COUNT", count)
		if err != nil {
			return 0, err
		}
		if reply.Type != "array" || len(reply.Array) != 2 || reply.Array[1].Type != "array" {
			return 0, fmt.Errorf("%w: SCAN returned %s", ErrUnexpectedReply, reply)
		}

		for _, key := range reply.Array[1].Array {
			seen[key.Text()] = struct{}{}
		}

		cursor = reply.Array[0].Text()
		if cursor == "0" {
			return int64(len(seen)), nil
		}
	}
}

// CountInstances is the cardinality of the model's instance set.
func (c *Client) CountInstances(ctx context.Context, model models.Model) (int64, error) {
	return c.integer(ctx, "SCARD", model.IndexKey())
}

// TotalKeyCount reads the selected database's line of INFO keyspace. A
// database without keys has no line and counts as 0.
func (c *Client) TotalKeyCount(ctx context.Context) (int64, error) {
	reply, err := c.Do(ctx, "INFO", "keyspace")
	if err != nil {
		return 0, err
	}
	if reply.Type != "bulk" && reply.Type != "string" {
		return 0, fmt.Errorf("%w: INFO returned %s", ErrUnexpectedReply, reply)
	}

	info := util.ParseInfoResponse(reply.Text())
	line, ok := info["db"+strconv.Itoa(c.opts.DB)]
	if !ok {
		return 0, nil
	}

	stats, err := util.ParseKeyspace(line)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnexpectedReply, err)
	}
	return stats.Keys, nil
}

func (c *Client) integer(ctx context.Context, name string, args ...string) (int64, error) {
	reply, err := c.Do(ctx, name, args...)
	if err != nil {
		return 0, err
	}
	if reply.Type != "integer" {
		return 0, fmt.Errorf("%w: %s returned %s", ErrUnexpectedReply, name, reply)
	}
	return reply.Num, nil
}

// Close sends QUIT and closes the connection. The QUIT reply is not
// required.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}

	_ = c.conn.SetDeadline(time.Now().Add(time.Second))
	_ = c.wr.WriteCommand("QUIT")
	c.closed = true

	c.log.Debug("closed")
	return c.conn.Close()
}
