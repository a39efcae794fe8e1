package extractor

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/monegment/monegment/pkg/config"
	"github.com/monegment/monegment/pkg/service/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanModelJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `[{"amount":1}]`, `[{"amount":1}]`},
		{"fenced", "```json\n[{\"amount\":1}]\n```", `[{"amount":1}]`},
		{"bare fence", "```\n[]\n```", `[]`},
		{"chatter", "Here you go: [{\"amount\":1}] hope it helps", `[{"amount":1}]`},
		{"object", "```json\n{\"amount\":1}\n```", `{"amount":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cleanModelJSON(tt.in))
		})
	}
}

func TestParseResponse(t *testing.T) {
	t.Parallel()
	got, err := ParseResponse("```json\n[{\"amount\": 50000, \"category\": \"Makanan\", \"wallet\": \"Cash\", \"description\": \"bakso\"}," +
		"{\"amount\": \"20.000\", \"category\": \"Transport\"}]\n```")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, json.Number("50000"), got[0].Amount)
	assert.Equal(t, "bakso", got[0].Description)
	assert.Equal(t, "20.000", got[1].Amount)

	got, err = ParseResponse(`Sure! {"amount": 7000, "category": "Lainnya"}`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Lainnya", got[0].Category)

	_, err = ParseResponse("I could not find any transaction.")
	assert.Error(t, err)
}

func TestParseResponse_FeedsSanitize(t *testing.T) {
	t.Parallel()
	raw, err := ParseResponse(`[{"amount": 1500000, "category": "pemasukan", "wallet": "mandiri"}]`)
	require.NoError(t, err)
	got := extract.Sanitize(raw, "gaji")
	require.Len(t, got, 1)
	assert.Equal(t, int64(1_500_000), got[0].Amount)
	assert.Equal(t, "Bank", got[0].Wallet)
	assert.Equal(t, "gaji", got[0].Description)
}

func TestPromptParts(t *testing.T) {
	t.Parallel()
	text := parts(extract.Input{Text: "kopi 15rb"})
	require.Len(t, text, 1)
	assert.Contains(t, text[0].Text, "Makanan, Transport, Tagihan")
	assert.Contains(t, text[0].Text, `"kopi 15rb"`)

	voice := parts(extract.Input{Media: []byte("ogg"), MIME: "audio/ogg"})
	require.Len(t, voice, 2)
	assert.Contains(t, voice[0].Text, "voice note")
	assert.Equal(t, "audio/ogg", voice[1].InlineData.MIMEType)
}

func TestNewGemini_RequiresKey(t *testing.T) {
	t.Parallel()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := NewGemini(context.Background(), &config.Extractor{}, quiet)
	assert.ErrorIs(t, err, extract.ErrUnavailable)
	_, err = NewGemini(context.Background(), nil, quiet)
	assert.ErrorIs(t, err, extract.ErrUnavailable)
}
