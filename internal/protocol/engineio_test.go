package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePacket(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		p, err := DecodePacket([]byte(`0{"sid":"abc","upgrades":[],"pingInterval":25000,"pingTimeout":60000}`))
		require.NoError(t, err)
		assert.Equal(t, PacketOpen, p.Type)
		require.NotNil(t, p.Handshake)
		assert.Equal(t, "abc", p.Handshake.SID)
		assert.Equal(t, 25000, p.Handshake.PingInterval)
		assert.Equal(t, 60000, p.Handshake.PingTimeout)
	})

	t.Run("ping and pong", func(t *testing.T) {
		p, err := DecodePacket([]byte("2"))
		require.NoError(t, err)
		assert.Equal(t, PacketPing, p.Type)

		p, err = DecodePacket([]byte("3"))
		require.NoError(t, err)
		assert.Equal(t, PacketPong, p.Type)
	})

	t.Run("connect", func(t *testing.T) {
		p, err := DecodePacket([]byte("40"))
		require.NoError(t, err)
		assert.Equal(t, PacketMessage, p.Type)
		assert.Equal(t, MessageConnect, p.Message)
	})

	t.Run("event", func(t *testing.T) {
		p, err := DecodePacket([]byte(`42["game_won",null,null]`))
		require.NoError(t, err)
		assert.Equal(t, MessageEvent, p.Message)
		assert.Equal(t, EventGameWon, p.Event)
		assert.Len(t, p.Args, 2)
	})

	t.Run("event with ack id", func(t *testing.T) {
		p, err := DecodePacket([]byte(`4217["chat_message","room",{"text":"hi"}]`))
		require.NoError(t, err)
		assert.Equal(t, EventChatMessage, p.Event)

		var msg ChatMessage
		require.NoError(t, p.DecodeArg(1, &msg))
		assert.Equal(t, "hi", msg.Text)
		assert.Equal(t, "[System]", msg.Sender())
	})

	t.Run("event with namespace", func(t *testing.T) {
		p, err := DecodePacket([]byte(`42/bots,["game_lost",{}]`))
		require.NoError(t, err)
		assert.Equal(t, EventGameLost, p.Event)
	})

	t.Run("game update", func(t *testing.T) {
		raw := `42["game_update",{"scores":[{"total":14,"tiles":7,"i":0,"color":0,"dead":false},{"total":3,"tiles":1,"i":1,"color":1,"dead":true}],"turn":27,"attackIndex":0,"generals":[-1,203],"map_diff":[189,1,8],"cities_diff":[1]},null]`
		p, err := DecodePacket([]byte(raw))
		require.NoError(t, err)

		var update GameUpdate
		require.NoError(t, p.DecodeArg(0, &update))
		assert.Equal(t, 27, update.Turn)
		assert.Equal(t, []int{-1, 203}, update.Generals)
		assert.Equal(t, []int{189, 1, 8}, update.MapDiff)
		assert.Equal(t, []int{1}, update.CitiesDiff)
		require.Len(t, update.Scores, 2)
		assert.Equal(t, Score{Total: 3, Tiles: 1, Index: 1, Color: 1, Dead: true}, update.Scores[1])
	})

	t.Run("game start", func(t *testing.T) {
		raw := `42["game_start",{"playerIndex":1,"replay_id":"Slxq8MkJj","chat_room":"game_1","usernames":["a","b"],"teams":[1,2]},null]`
		p, err := DecodePacket([]byte(raw))
		require.NoError(t, err)

		var start GameStart
		require.NoError(t, p.DecodeArg(0, &start))
		assert.Equal(t, 1, start.PlayerIndex)
		assert.Equal(t, "game_1", start.ChatRoom)
		assert.Equal(t, "https://bot.generals.io/replays/Slxq8MkJj", start.ReplayURL())
	})
}

func TestDecodePacket_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "", ErrEmptyPacket},
		{"empty message", "4", ErrEmptyPacket},
		{"unknown type", "9", ErrUnknownPacket},
		{"event not json", "42nope", ErrMalformedEvent},
		{"event empty array", "42[]", ErrMalformedEvent},
		{"event name not string", "42[1,2]", ErrMalformedEvent},
		{"namespace without payload", "42/bots", ErrMalformedEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePacket([]byte(tt.raw))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := DecodePacket([]byte("0{bad"))
	assert.Error(t, err)
}

func TestEncodeEvent(t *testing.T) {
	out, err := EncodeEvent(EventAttack, 5, 6, false)
	require.NoError(t, err)
	assert.Equal(t, `42["attack",5,6,false]`, string(out))

	out, err = EncodeEvent(EventClearMoves)
	require.NoError(t, err)
	assert.Equal(t, `42["clear_moves"]`, string(out))

	p, err := DecodePacket(out)
	require.NoError(t, err)
	assert.Equal(t, EventClearMoves, p.Event)
	assert.Empty(t, p.Args)

	_, err = EncodeEvent("bad", make(chan int))
	assert.Error(t, err)
}

func TestDecodeArg_OutOfRange(t *testing.T) {
	p, err := DecodePacket([]byte(`42["game_won"]`))
	require.NoError(t, err)

	var v any
	assert.ErrorIs(t, p.DecodeArg(0, &v), ErrMalformedEvent)
}

func TestEncodeFrames(t *testing.T) {
	assert.Equal(t, "2", string(EncodePing()))
	assert.Equal(t, "3", string(EncodePong()))
	assert.Equal(t, "40", string(EncodeConnect()))

	out, err := EncodeOpen(Handshake{SID: "x", PingInterval: 10, PingTimeout: 20})
	require.NoError(t, err)
	p, err := DecodePacket(out)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Handshake.PingInterval)
}
