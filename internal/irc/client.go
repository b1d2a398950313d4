// Package irc is the Twitch chat ingestion gateway. It owns the TCP
// transport on its own goroutine and reports chat lines, status changes and
// transport faults through callbacks; it never touches ledger or wheel
// state.
package irc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultAddr is the Twitch IRC endpoint.
const DefaultAddr = "irc.chat.twitch.tv:6667"

const (
	dialTimeout = 10 * time.Second
	readTimeout = time.Second
)

// Callbacks receive gateway notifications on the gateway goroutine. They
// must not block; the consumer side enqueues them onto its event queue.
type Callbacks struct {
	OnChat   func(sender, text string)
	OnStatus func(message string)
	OnError  func(message string)
}

// Client reads a single Twitch channel's chat. Start it once; after a
// transport fault it stays down until replaced (manual reconnect).
type Client struct {
	addr     string
	channel  string
	nickname string
	token    string
	cb       Callbacks

	mu      sync.Mutex
	conn    net.Conn
	stopped atomic.Bool
	done    chan struct{}
}

// NewClient prepares a gateway for the given channel. The channel name is
// lower-cased and stripped of any leading #. addr is the IRC endpoint;
// tests point it at a local listener.
func NewClient(addr, channel, nickname, token string, cb Callbacks) *Client {
	return &Client{
		addr:     addr,
		channel:  strings.TrimPrefix(strings.ToLower(channel), "#"),
		nickname: nickname,
		token:    token,
		cb:       cb,
		done:     make(chan struct{}),
	}
}

// Channel returns the joined channel name without the # prefix.
func (c *Client) Channel() string { return c.channel }

// Start launches the gateway goroutine.
func (c *Client) Start() {
	go c.run()
}

// Stop signals the goroutine and closes the socket to unblock any pending
// read, then waits for the goroutine to exit, up to the given bound.
// Errors raised by the teardown itself are suppressed. Safe to call more
// than once.
func (c *Client) Stop(wait time.Duration) {
	if c.stopped.Swap(true) {
		return
	}
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.mu.Unlock()
	select {
	case <-c.done:
	case <-time.After(wait):
	}
}

// Done is closed when the gateway goroutine has exited.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) run() {
	defer close(c.done)

	c.cb.OnStatus("Connecting to Twitch IRC...")
	conn, err := net.DialTimeout("tcp", c.addr, dialTimeout)
	if err != nil {
		c.reportError(fmt.Sprintf("Failed to connect to Twitch chat: %v", err))
		return
	}
	c.mu.Lock()
	c.conn = conn
	stopped := c.stopped.Load()
	c.mu.Unlock()
	if stopped {
		conn.Close()
		return
	}
	defer conn.Close()

	for _, line := range []string{
		"PASS " + c.token,
		"NICK " + c.nickname,
		"JOIN #" + c.channel,
	} {
		if _, err := fmt.Fprintf(conn, "%s\r\n", line); err != nil {
			c.reportError(fmt.Sprintf("Failed to connect to Twitch chat: %v", err))
			return
		}
	}
	c.cb.OnStatus(fmt.Sprintf("Connected to #%s as %s", c.channel, c.nickname))

	// Reads use a short deadline so the stop flag is re-polled about once
	// a second even on a silent connection. A deadline can split a line;
	// the partial data is kept and completed on the next read.
	r := bufio.NewReader(conn)
	var partial string
	for !c.stopped.Load() {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		chunk, err := r.ReadString('\n')
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				partial += chunk
				continue
			}
			if errors.Is(err, io.EOF) {
				c.reportError("Connection closed by server.")
			} else if !c.stopped.Load() {
				c.reportError(fmt.Sprintf("Socket error: %v", err))
			}
			return
		}
		line := strings.TrimRight(partial+chunk, "\r\n")
		partial = ""
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "PING") {
			fmt.Fprint(conn, "PONG :tmi.twitch.tv\r\n")
			continue
		}
		if sender, text, ok := parsePrivmsg(line); ok {
			c.cb.OnChat(sender, text)
		}
	}
}

func (c *Client) reportError(msg string) {
	if !c.stopped.Load() {
		c.cb.OnError(msg)
	}
}

// parsePrivmsg extracts the sender and message from a PRIVMSG line of the
// form ":nick!user@host PRIVMSG #channel :message". Malformed lines return
// ok=false and are skipped silently.
func parsePrivmsg(line string) (sender, text string, ok bool) {
	if !strings.Contains(line, "PRIVMSG") || !strings.Contains(line, "!") {
		return "", "", false
	}
	prefix, _, _ := strings.Cut(line, "!")
	sender = strings.TrimSpace(strings.TrimPrefix(prefix, ":"))
	_, tail, found := strings.Cut(line, " PRIVMSG ")
	if !found {
		return "", "", false
	}
	_, msg, found := strings.Cut(tail, " :")
	if !found {
		return "", "", false
	}
	text = strings.TrimSpace(msg)
	if sender == "" || text == "" {
		return "", "", false
	}
	return sender, text, true
}
