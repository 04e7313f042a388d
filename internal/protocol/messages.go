// Package protocol holds the JSON payloads exchanged with the game server and
// the Engine.IO/Socket.IO framing they travel in.
package protocol

import "fmt"

// Server to client event names.
const (
	EventGameStart   = "game_start"
	EventGameUpdate  = "game_update"
	EventGameWon     = "game_won"
	EventGameLost    = "game_lost"
	EventChatMessage = "chat_message"
	EventUsernameErr = "error_set_username"
)

// Client to server event names.
const (
	EventSetUsername   = "set_username"
	EventJoin1v1       = "join_1v1"
	EventJoinFFA       = "play"
	EventJoinPrivate   = "join_private"
	EventSetForceStart = "set_force_start"
	EventAttack        = "attack"
	EventClearMoves    = "clear_moves"
	EventLeaveGame     = "leave_game"
)

// ReplayURLTemplate formats a replay id into a viewable URL.
const ReplayURLTemplate = "https://bot.generals.io/replays/%s"

// GameStart is the payload of game_start.
type GameStart struct {
	PlayerIndex int      `json:"playerIndex"`
	ReplayID    string   `json:"replay_id"`
	ChatRoom    string   `json:"chat_room"`
	Usernames   []string `json:"usernames"`
	Teams       []int    `json:"teams,omitempty"`
	GameType    string   `json:"game_type,omitempty"`
}

// ReplayURL returns where the replay of this game can be watched.
func (s GameStart) ReplayURL() string {
	return fmt.Sprintf(ReplayURLTemplate, s.ReplayID)
}

// Score is one player's entry in a game_update.
type Score struct {
	Total int  `json:"total"`
	Tiles int  `json:"tiles"`
	Index int  `json:"i"`
	Color int  `json:"color"`
	Dead  bool `json:"dead"`
}

// GameUpdate is the payload of game_update. Turn counts half-turns.
type GameUpdate struct {
	Scores      []Score `json:"scores"`
	Turn        int     `json:"turn"`
	AttackIndex int     `json:"attackIndex"`
	Generals    []int   `json:"generals"`
	MapDiff     []int   `json:"map_diff"`
	CitiesDiff  []int   `json:"cities_diff"`
}

// ChatMessage is the payload of chat_message. Messages without a username are
// sent by the server itself.
type ChatMessage struct {
	Room     string `json:"-"`
	Username string `json:"username,omitempty"`
	Text     string `json:"text"`
}

// Sender returns the display name of whoever sent the message.
func (m ChatMessage) Sender() string {
	if m.Username == "" {
		return "[System]"
	}
	return m.Username
}
