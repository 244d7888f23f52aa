package player

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaguerunner/tournament/internal/protocol"
	"github.com/leaguerunner/tournament/internal/repository/memory"
	"github.com/leaguerunner/tournament/pkg/logger"
)

type fakeCaller struct {
	reply json.RawMessage
	err   error
}

func (f *fakeCaller) Send(ctx context.Context, endpoint, requestID string, message json.RawMessage) (json.RawMessage, error) {
	return f.reply, f.err
}

func newTestPlayer(t *testing.T, caller Caller, strategy Strategy) *Player {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)
	return New("http://lm.local/rpc", caller, strategy, memory.NewHistory(), log, nil)
}

func TestHandleGameInvitation_AlwaysAccepts(t *testing.T) {
	p := newTestPlayer(t, &fakeCaller{}, RandomStrategy{})

	inv := protocol.GameInvitation{
		Envelope: protocol.Envelope{
			Protocol:       protocol.ProtocolVersion,
			MessageType:    protocol.TypeGameInvitation,
			Sender:         "referee:REF01",
			Timestamp:      protocol.Now(),
			ConversationID: "conv-1",
		},
		MatchIDField: "R1M1",
		OpponentID:   "P02",
	}
	raw, err := json.Marshal(inv)
	require.NoError(t, err)

	result, appErr := p.HandleMessage(context.Background(), raw)
	require.Nil(t, appErr)

	var ack protocol.GameJoinAck
	require.NoError(t, json.Unmarshal(result, &ack))
	assert.True(t, ack.Accept)
	assert.Equal(t, "R1M1", ack.MatchIDField)
	assert.Equal(t, protocol.TypeGameJoinAck, ack.MessageType)
}

func TestHandleChooseParity_UsesStrategy(t *testing.T) {
	p := newTestPlayer(t, &fakeCaller{}, stubStrategy{choice: "even"})

	call := protocol.ChooseParityCall{
		Envelope: protocol.Envelope{
			Protocol:       protocol.ProtocolVersion,
			MessageType:    protocol.TypeChooseParityCall,
			Sender:         "referee:REF01",
			Timestamp:      protocol.Now(),
			ConversationID: "conv-2",
		},
		MatchIDField: "R1M1",
		Context:      protocol.ChooseParityContext{OpponentID: "P02"},
	}
	raw, err := json.Marshal(call)
	require.NoError(t, err)

	result, appErr := p.HandleMessage(context.Background(), raw)
	require.Nil(t, appErr)

	var resp protocol.ChooseParityResponse
	require.NoError(t, json.Unmarshal(result, &resp))
	assert.Equal(t, "even", resp.ParityChoice)
}

func TestHandleGameOver_AppendsHistory(t *testing.T) {
	history := memory.NewHistory()
	log, err := logger.New("error", "json")
	require.NoError(t, err)
	p := New("http://lm.local/rpc", &fakeCaller{}, RandomStrategy{}, history, log, nil)
	p.id = "P01"

	over := protocol.GameOver{
		Envelope: protocol.Envelope{
			Protocol:       protocol.ProtocolVersion,
			MessageType:    protocol.TypeGameOver,
			Sender:         "referee:REF01",
			Timestamp:      protocol.Now(),
			ConversationID: "conv-3",
		},
		MatchIDField: "R1M1",
		GameResult: protocol.GameResult{
			Status:         "WIN",
			WinnerPlayerID: "P01",
			DrawnNumber:    4,
			Choices:        map[string]string{"P01": "even", "P02": "odd"},
		},
	}
	raw, err := json.Marshal(over)
	require.NoError(t, err)

	_, appErr := p.HandleMessage(context.Background(), raw)
	require.Nil(t, appErr)

	entries, err := history.List(context.Background(), "P01")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "P02", entries[0].Opponent)
	assert.Equal(t, "even", entries[0].MyChoice)
	assert.Equal(t, "odd", entries[0].OpponentChoice)
	assert.True(t, entries[0].Won)
}

func TestHandleRoundAnnouncement_Acks(t *testing.T) {
	p := newTestPlayer(t, &fakeCaller{}, RandomStrategy{})

	ann := protocol.RoundAnnouncement{
		Envelope: protocol.Envelope{
			Protocol:       protocol.ProtocolVersion,
			MessageType:    protocol.TypeRoundAnnouncement,
			Sender:         "league_manager:LM",
			Timestamp:      protocol.Now(),
			ConversationID: "conv-4",
		},
	}
	raw, err := json.Marshal(ann)
	require.NoError(t, err)

	result, appErr := p.HandleMessage(context.Background(), raw)
	require.Nil(t, appErr)

	var ack protocol.Ack
	require.NoError(t, json.Unmarshal(result, &ack))
	assert.Equal(t, protocol.TypeAck, ack.MessageType)
	assert.Equal(t, "conv-4", ack.ConversationID)
}

type stubStrategy struct {
	choice string
}

func (s stubStrategy) Choose(ctx context.Context, opponentID string) (string, error) {
	return s.choice, nil
}
