package ui

import (
	"math/rand"
	"testing"
	"time"

	tui "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatwheel/internal/config"
	"chatwheel/internal/event"
	"chatwheel/internal/wheel"
)

func newTestModel() *Model {
	opts := Options{
		TopK:         10,
		VoteDuration: 2 * time.Minute,
		TickPeriod:   16 * time.Millisecond,
		SegmentsFile: "segments.txt",
		ConfigPath:   "chatwheel.toml",
		ViewSplit:    50,
	}
	engine := wheel.NewEngine(wheel.DefaultSpinConfig(), rand.New(rand.NewSource(1)))
	return New(opts, config.Credentials{}, nil, engine)
}

func keyPress(r rune) tui.KeyMsg {
	return tui.KeyMsg{Type: tui.KeyRunes, Runes: []rune{r}}
}

func chat(sender, text string) event.Event {
	return event.Event{Type: event.TypeChat, Chat: event.Chat{Sender: sender, Text: text}}
}

func TestConsumeTick_AppliesQueuedVotesInOrder(t *testing.T) {
	m := newTestModel()
	m.votingActive = true
	m.voteEndAt = time.Now().Add(time.Minute)

	m.queue.Enqueue(chat("alice", "pizza"))
	m.queue.Enqueue(chat("alice", "dogs"))
	m.queue.Enqueue(chat("bob", "pizza"))
	m.consumeTick(time.Now())

	// Alice's later vote wins; the earlier one was applied then withdrawn.
	voted, ok := m.votes.Vote("alice")
	require.True(t, ok)
	assert.Equal(t, "dogs", voted)
	assert.Equal(t, 1, m.votes.Count("pizza"))
	assert.Equal(t, 1, m.votes.Count("dogs"))
	assert.Zero(t, m.queue.Len())
}

func TestConsumeTick_IgnoresChatOutsideVotingWindow(t *testing.T) {
	m := newTestModel()

	m.queue.Enqueue(chat("alice", "pizza"))
	m.consumeTick(time.Now())

	assert.Zero(t, m.votes.Total())
	// The message still lands in the feed.
	require.NotEmpty(t, m.feed)
	assert.Equal(t, "[alice] pizza", m.feed[len(m.feed)-1])
}

func TestConsumeTick_ExpiresVotingWindow(t *testing.T) {
	m := newTestModel()
	m.votingActive = true
	m.voteEndAt = time.Now().Add(-time.Second)

	m.consumeTick(time.Now())

	assert.False(t, m.votingActive)
	assert.Equal(t, "Voting ended", m.timerLabel)
}

func TestConsumeTick_StatusAndErrorEvents(t *testing.T) {
	m := newTestModel()
	m.queue.Enqueue(event.Event{Type: event.TypeStatus, Message: "Connected to #chan as bot"})
	m.consumeTick(time.Now())
	assert.True(t, m.connected)
	assert.Equal(t, "Connected to #chan as bot", m.status)

	m.queue.Enqueue(event.Event{Type: event.TypeError, Message: "Socket error: boom"})
	m.consumeTick(time.Now())
	assert.False(t, m.connected)
	assert.Equal(t, "[ERROR] Socket error: boom", m.feed[len(m.feed)-1])
}

func TestSpin_EmptyViewRejected(t *testing.T) {
	m := newTestModel()
	got, _ := m.handleKey(keyPress('s'))
	m = got.(*Model)
	assert.False(t, m.engine.Spinning())
	assert.Contains(t, m.status, "before spinning")
}

func TestSpin_ResolvesPointerWhileSettling(t *testing.T) {
	m := newTestModel()
	m.votingActive = true
	m.voteEndAt = time.Now().Add(time.Minute)
	m.queue.Enqueue(chat("alice", "pizza"))
	m.consumeTick(time.Now())

	got, _ := m.handleKey(keyPress('s'))
	m = got.(*Model)
	require.True(t, m.engine.Spinning())

	for m.engine.Spinning() {
		m.consumeTick(time.Now())
	}
	require.True(t, m.hasPick)
	assert.Equal(t, "pizza", m.pick.Phrase)
	assert.Equal(t, "alice", m.pick.Voter)
}
