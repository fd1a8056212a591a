package matchvendors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partyplnr/internal/catalog"
	"partyplnr/internal/chat"
	apperrors "partyplnr/internal/common/errors"
	"partyplnr/internal/common/logger"
	"partyplnr/internal/compose"
	"partyplnr/internal/intent"
	"partyplnr/internal/lexicon"
	"partyplnr/internal/models"
	"partyplnr/internal/ranking"
	"partyplnr/internal/responsecache"
	"partyplnr/internal/session"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 3 * time.Second}
}

func createTestService(t *testing.T) *chat.Service {
	lex := lexicon.Default()
	cat := catalog.New([]models.VendorRecord{
		{Title: "Sky High Balloons", Category: "balloons", Location: "Pearland, TX", BaseScore: 2},
		{Title: "Bayou Beats", Category: "dj", Location: "Houston, TX", BaseScore: 1},
	}, lex)
	return chat.NewService(
		intent.New(lex, cat),
		ranking.New(cat),
		session.NewMemoryStore(),
		responsecache.NewMemoryCache(time.Minute, 0),
		compose.New(compose.FixedPicker{}),
		chat.Policy{TopK: 3},
		logger.NewTestLogger(t),
	)
}

type failingResponder struct{ err error }

func (f failingResponder) Respond(context.Context, chat.Request) (*chat.Response, error) {
	return nil, f.err
}

// ==========================
// Execute
// ==========================

func TestExecute_Matches(t *testing.T) {
	h := NewHandler(createTestConfig(), createTestService(t), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Message: "need a dj", SessionID: "job-1"})
	require.NoError(t, err)
	assert.Contains(t, out.Reply, "Bayou Beats")
	assert.False(t, out.IsFollowUp)
	assert.Equal(t, "matches", out.Outcome)
	assert.Equal(t, "job-1", out.SessionID)
}

func TestExecute_FollowUp(t *testing.T) {
	h := NewHandler(createTestConfig(), createTestService(t), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Message: "hello", SessionID: "job-2"})
	require.NoError(t, err)
	assert.True(t, out.IsFollowUp)
	assert.Equal(t, "need_category", out.Outcome)
}

func TestExecute_NilInput(t *testing.T) {
	h := NewHandler(createTestConfig(), createTestService(t), logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidRequest))
}

func TestExecute_Timeout(t *testing.T) {
	h := NewHandler(createTestConfig(), failingResponder{err: context.DeadlineExceeded}, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Message: "dj", SessionID: "s"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeTimeout, apperrors.CodeOf(err))
}

// ==========================
// Input Parsing
// ==========================

func TestParseInput(t *testing.T) {
	input, err := parseInput(`{"message": "balloons in pearland", "sessionId": "abc", "extra": 1}`)
	require.NoError(t, err)
	assert.Equal(t, "balloons in pearland", input.Message)
	assert.Equal(t, "abc", input.SessionID)
}

func TestParseInput_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		variables string
	}{
		{"malformed", `{"message":`},
		{"missing session", `{"message": "dj"}`},
		{"empty session", `{"message": "dj", "sessionId": ""}`},
		{"wrong type", `{"message": 5, "sessionId": "a"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseInput(tt.variables)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeInvalidRequest, apperrors.CodeOf(err))
		})
	}
}
