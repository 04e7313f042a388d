package client

import "github.com/mitchelldurbincs/GeneralsBot/internal/protocol"

// Listener receives game events. Callbacks run synchronously on the read loop,
// one at a time, in the order listeners were added.
type Listener interface {
	OnGameStart(start protocol.GameStart)
	OnBoardUpdate(update protocol.GameUpdate)
	OnGameOver(won bool, replayURL string)
	OnChat(msg protocol.ChatMessage)
}
