// The hotseat game engine: a single moderator (admin) drives question
// flow and reveals, contestants answer, buzz for priority, and vote in
// audience polls, and a passive display renders poll results.

// Implementation details:
// - One websocket hub per process; the show runs a single live session,
//   so there is no per-game-ID fanout
// - Roles are resolved from the login session cookie at upgrade time;
//   connections without a session join as the passive display
// - Every accepted mutation is broadcast to all connections; only vote
//   acknowledgments and rejections are unicast to the sender

package main

import (
	"math/rand"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// Role is the capability class of a connected party.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleParticipant Role = "participant"
	RoleDisplay     Role = "display"
)

// ClientMessage is the envelope for every inbound event.
type ClientMessage struct {
	Type          string `json:"type"`
	QuestionIndex *int   `json:"question_index,omitempty"` // load_question
	Option        string `json:"option,omitempty"`         // select_answer, reveal_answer, submit_vote
	Lifeline      string `json:"lifeline,omitempty"`       // use_lifeline
}

// SnapshotMessage re-sends the authoritative state to a late joiner.
type SnapshotMessage struct {
	Type          string                `json:"type"` // "game_state"
	QuestionIndex int                   `json:"question_index"`
	Lifelines     map[LifelineKind]bool `json:"lifelines"`
	PollActive    bool                  `json:"poll_active"`
	FFFActive     bool                  `json:"fff_active"`
	FFFWinner     string                `json:"fff_winner,omitempty"`
}

// QuestionLoadedMessage carries a question to every screen. Options
// only; the correct answer never rides the broadcast channel.
type QuestionLoadedMessage struct {
	Type     string         `json:"type"` // "question_loaded"
	Question PublicQuestion `json:"question"`
}

// AnswerSelectedMessage relays a contestant's tentative choice.
type AnswerSelectedMessage struct {
	Type   string `json:"type"` // "answer_selected"
	Player string `json:"player,omitempty"`
	Option string `json:"option"`
}

// AnswerRevealedMessage marks the moderator's reveal.
type AnswerRevealedMessage struct {
	Type   string `json:"type"` // "answer_revealed"
	Option string `json:"option,omitempty"`
}

// LifelineUsedMessage announces a consumed lifeline by kind.
type LifelineUsedMessage struct {
	Type     string       `json:"type"` // "lifeline_used"
	Lifeline LifelineKind `json:"lifeline"`
}

// FiftyFiftyMessage names the two options struck by 50-50.
type FiftyFiftyMessage struct {
	Type   string        `json:"type"` // "lifeline_5050"
	Remove []OptionLabel `json:"remove"`
}

// PollStartedMessage opens the voting window on every screen.
type PollStartedMessage struct {
	Type          string `json:"type"` // "poll_started"
	QuestionIndex int    `json:"question_index"`
}

// PollResultsMessage carries the final percentage per option.
type PollResultsMessage struct {
	Type    string              `json:"type"` // "poll_results"
	Results map[OptionLabel]int `json:"results"`
}

// FFFWinnerMessage announces the buzzer round winner.
type FFFWinnerMessage struct {
	Type   string `json:"type"` // "fff_winner"
	Winner string `json:"winner"`
}

// LifelinesResetMessage carries the restored availability map.
type LifelinesResetMessage struct {
	Type      string                `json:"type"` // "lifelines_reset"
	Lifelines map[LifelineKind]bool `json:"lifelines"`
}

// SimpleMessage covers bare signals and private acknowledgments.
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	id       string
	role     Role
	username string
}

// identity names a connection for vote deduplication: participants by
// username (stable across reconnects), displays by connection ID.
func (c *Client) identity() string {
	if c.role == RoleParticipant && c.username != "" {
		return c.username
	}
	return c.id
}

type inboundEvent struct {
	client *Client
	msg    ClientMessage
}

// Hub is the connection registry and broadcast router. All inbound
// events funnel through one run loop, and all state mutations go
// through the Store, so every event is handled to completion before the
// next one lands.
type Hub struct {
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	events   chan inboundEvent

	store     *Store
	bank      *QuestionBank
	lifelines *LifelineEngine
	poll      *PollAggregator
	buzzer    *BuzzerArbiter
}

func newHub(bank *QuestionBank, rng *rand.Rand) *Hub {
	store := newStore()
	poll := newPollAggregator(store)

	return &Hub{
		clients:   make(map[*Client]bool),
		register:  make(chan *Client),
		unreg:     make(chan *Client),
		events:    make(chan inboundEvent),
		store:     store,
		bank:      bank,
		lifelines: newLifelineEngine(store, bank, poll, rng),
		poll:      poll,
		buzzer:    newBuzzerArbiter(store),
	}
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true

			logf(cfg, "GAMES: %s %q connected", c.role, c.identity())

			// Late joiners get the current snapshot and nothing
			// else; connects cause no state mutation.
			h.unicast(c, h.snapshotMessage())

		case c := <-h.unreg:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

			// A disconnecting contestant forfeits nothing: no
			// lifeline, poll, or buzzer state changes here.
			logf(cfg, "GAMES: %s %q disconnected", c.role, c.identity())

		case ev := <-h.events:
			h.handleEvent(cfg, ev.client, ev.msg)
		}
	}
}

func (h *Hub) snapshotMessage() SnapshotMessage {
	gs := h.store.Get()

	return SnapshotMessage{
		Type:          "game_state",
		QuestionIndex: gs.CurrentQuestion,
		Lifelines:     gs.Lifelines,
		PollActive:    gs.Poll.Active,
		FFFActive:     gs.FFF.Active,
		FFFWinner:     gs.FFF.Winner,
	}
}

// broadcast sends msg to every connected client, dropping clients whose
// send buffer is full.
func (h *Hub) broadcast(msg any) {
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// unicast sends msg to a single client only.
func (h *Hub) unicast(c *Client, msg any) {
	if !h.clients[c] {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

// handleEvent resolves the sender's role and dispatches one inbound
// event: validate, mutate, then broadcast. Rejected events are silent
// no-ops except where a private acknowledgment is warranted.
func (h *Hub) handleEvent(cfg *Config, c *Client, msg ClientMessage) {
	switch msg.Type {
	case "load_question":
		if c.role != RoleAdmin {
			return
		}
		h.handleLoadQuestion(cfg, c, msg)

	case "select_answer":
		if c.role != RoleParticipant {
			return
		}
		h.broadcast(AnswerSelectedMessage{
			Type:   "answer_selected",
			Player: c.username,
			Option: msg.Option,
		})

	case "reveal_answer":
		if c.role != RoleAdmin {
			return
		}
		h.broadcast(AnswerRevealedMessage{
			Type:   "answer_revealed",
			Option: msg.Option,
		})

	case "use_lifeline":
		if c.role != RoleAdmin {
			return
		}
		h.handleUseLifeline(cfg, c, msg)

	case "submit_vote":
		if c.role == RoleAdmin {
			return
		}
		h.handleSubmitVote(cfg, c, msg)

	case "end_poll":
		if c.role != RoleAdmin {
			return
		}
		results, err := h.poll.End()
		if err != nil {
			logf(cfg, "GAMES: end_poll rejected: %v", err)
			return
		}
		h.broadcast(PollResultsMessage{Type: "poll_results", Results: results})

	case "activate_fff":
		if c.role != RoleAdmin {
			return
		}
		h.buzzer.Activate()
		h.broadcast(SimpleMessage{Type: "fff_activated"})

	case "fff_buzz":
		if c.role != RoleParticipant || c.username == "" {
			return
		}
		winner, err := h.buzzer.Buzz(c.username)
		if err != nil {
			// Lost the race or buzzed out of turn; contestants
			// get no signal either way.
			return
		}
		logf(cfg, "GAMES: %q won the buzzer round", winner)
		h.broadcast(FFFWinnerMessage{Type: "fff_winner", Winner: winner})

	case "reset_lifelines":
		if c.role != RoleAdmin {
			return
		}
		lifelines := h.lifelines.ResetAll()
		h.broadcast(LifelinesResetMessage{Type: "lifelines_reset", Lifelines: lifelines})

	case "start_phone_timer":
		if c.role != RoleAdmin {
			return
		}
		h.broadcast(SimpleMessage{Type: "phone_timer_start"})

	case "pause_timer":
		if c.role != RoleAdmin {
			return
		}
		h.broadcast(SimpleMessage{Type: "timer_paused"})

	case "resume_timer":
		if c.role != RoleAdmin {
			return
		}
		h.broadcast(SimpleMessage{Type: "timer_resumed"})

	default:
		// ignore unknown types
	}
}

func (h *Hub) handleLoadQuestion(cfg *Config, c *Client, msg ClientMessage) {
	if msg.QuestionIndex == nil {
		return
	}
	index := *msg.QuestionIndex

	question, err := h.bank.Get(index)
	if err != nil {
		// Out-of-range index leaves the current question in place.
		h.unicast(c, SimpleMessage{
			Type:    "error",
			Message: "question not found",
		})
		return
	}

	h.store.Mutate(func(gs *GameState) {
		gs.CurrentQuestion = index
	})

	logf(cfg, "GAMES: Question %d loaded", index)

	h.broadcast(QuestionLoadedMessage{
		Type:     "question_loaded",
		Question: question.public(index),
	})
}

func (h *Hub) handleUseLifeline(cfg *Config, c *Client, msg ClientMessage) {
	kind := LifelineKind(msg.Lifeline)

	result, err := h.lifelines.Activate(kind)
	if err != nil {
		logf(cfg, "GAMES: lifeline %q rejected: %v", msg.Lifeline, err)
		return
	}

	switch kind {
	case LifelineFiftyFifty:
		h.broadcast(FiftyFiftyMessage{Type: "lifeline_5050", Remove: result.Removed})
	case LifelineAudiencePoll:
		h.broadcast(PollStartedMessage{Type: "poll_started", QuestionIndex: result.PollQuestion})
	case LifelinePhoneFriend:
		h.broadcast(SimpleMessage{Type: "phone_friend_started"})
	}

	h.broadcast(LifelineUsedMessage{Type: "lifeline_used", Lifeline: kind})
}

func (h *Hub) handleSubmitVote(cfg *Config, c *Client, msg ClientMessage) {
	err := h.poll.SubmitVote(c.identity(), OptionLabel(msg.Option))
	if err != nil {
		// Only the submitter learns the vote was ignored; live
		// tallies never leak to the room.
		h.unicast(c, SimpleMessage{
			Type:    "vote_rejected",
			Message: err.Error(),
		})
		return
	}

	h.unicast(c, SimpleMessage{Type: "vote_recorded"})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveWS upgrades a connection and attaches it to the hub with the
// role its session cookie resolves to.
func serveWS(cfg *Config, h *Hub, sessions *SessionStore) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		role := RoleDisplay
		username := ""

		if sess, ok := sessions.fromRequest(r); ok {
			role = sess.role
			username = sess.username
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: upgrade failed: %v", err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 8),
			id:       uuid.NewString(),
			role:     role,
			username: username,
		}

		h.register <- client

		go client.writePump()
		client.readPump(h)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		h.events <- inboundEvent{
			client: c,
			msg:    msg,
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
