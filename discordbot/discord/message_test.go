package discord

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessageRef(t *testing.T) {
	tests := []struct {
		raw  string
		want MessageRef
	}{
		{
			raw:  "712345678901234567-812345678901234567",
			want: MessageRef{ChannelID: "712345678901234567", MessageID: "812345678901234567"},
		},
		{
			raw:  "812345678901234567",
			want: MessageRef{MessageID: "812345678901234567"},
		},
		{
			raw: "https://discord.com/channels/612345678901234567/712345678901234567/812345678901234567",
			want: MessageRef{
				GuildID:   "612345678901234567",
				ChannelID: "712345678901234567",
				MessageID: "812345678901234567",
			},
		},
		{
			raw: "https://canary.discordapp.com/channels/@me/712345678901234567/812345678901234567",
			want: MessageRef{
				ChannelID: "712345678901234567",
				MessageID: "812345678901234567",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ref, err := ParseMessageRef(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)
		})
	}
}

func TestParseMessageRefInvalid(t *testing.T) {
	for _, raw := range []string{"", "hello", "12", "https://example.com/channels/1/2/3"} {
		_, err := ParseMessageRef(raw)
		assert.ErrorIs(t, err, ErrInvalidReference, raw)
	}
}

func TestJumpURL(t *testing.T) {
	assert.Equal(t, "https://discord.com/channels/@me/2/3", JumpURL("", "2", "3"))

	u := MessageJumpURL(&discordgo.Message{
		GuildID:   "612345678901234567",
		ChannelID: "712345678901234567",
		ID:        "812345678901234567",
	})

	id, ok := MessageIDFromURL(u)
	require.True(t, ok)
	assert.Equal(t, "812345678901234567", id)
}

func TestIsForbidden(t *testing.T) {
	forbidden := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}
	coded := &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusBadRequest},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeCannotSendMessagesToThisUser},
	}
	missing := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}

	assert.True(t, IsForbidden(forbidden))
	assert.True(t, IsForbidden(fmt.Errorf("wrapped: %w", coded)))
	assert.False(t, IsForbidden(missing))
	assert.False(t, IsForbidden(fmt.Errorf("plain")))
	assert.True(t, IsNotFound(missing))
}

func TestDisplayName(t *testing.T) {
	user := &discordgo.User{Username: "user"}

	assert.Equal(t, "nick", DisplayName(&discordgo.Member{Nick: "nick"}, user))
	assert.Equal(t, "user", DisplayName(nil, user))
	assert.Equal(t, "global", DisplayName(nil, &discordgo.User{Username: "user", GlobalName: "global"}))
	assert.Equal(t, "", DisplayName(nil, nil))
}
