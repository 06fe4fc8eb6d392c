package roomchat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseFrame(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Frame
	}{
		{
			name: "roster",
			raw:  "👥 Online: alice, bob",
			want: Frame{Kind: KindRoster, Raw: "👥 Online: alice, bob", Text: "👥 Online: alice, bob", Users: []string{"alice", "bob"}},
		},
		{
			name: "roster portuguese prefix",
			raw:  "👥 Usuários online: carol",
			want: Frame{Kind: KindRoster, Raw: "👥 Usuários online: carol", Text: "👥 Usuários online: carol", Users: []string{"carol"}},
		},
		{
			name: "empty roster",
			raw:  "👥 Online:",
			want: Frame{Kind: KindRoster, Raw: "👥 Online:", Text: "👥 Online:", Users: []string{}},
		},
		{
			name: "private",
			raw:  "🔒 Privado de bob: oi",
			want: Frame{Kind: KindPrivate, Raw: "🔒 Privado de bob: oi", Text: "🔒 Privado de bob: oi"},
		},
		{
			name: "join notice",
			raw:  "🚀 alice entrou na sala!",
			want: Frame{Kind: KindSystem, Raw: "🚀 alice entrou na sala!", Text: "🚀 alice entrou na sala!"},
		},
		{
			name: "leave notice",
			raw:  "👋 bob saiu da sala",
			want: Frame{Kind: KindSystem, Raw: "👋 bob saiu da sala", Text: "👋 bob saiu da sala"},
		},
		{
			name: "warning",
			raw:  "⚠️ Formato inválido",
			want: Frame{Kind: KindSystem, Raw: "⚠️ Formato inválido", Text: "⚠️ Formato inválido"},
		},
		{
			name: "bare image",
			raw:  "img:/files/alice_1.png",
			want: Frame{Kind: KindImage, Raw: "img:/files/alice_1.png", Text: "/files/alice_1.png", URL: "/files/alice_1.png", Sender: "alice"},
		},
		{
			name: "image with sender",
			raw:  "bob: img:/files/x.png",
			want: Frame{Kind: KindImage, Raw: "bob: img:/files/x.png", Text: "/files/x.png", URL: "/files/x.png", Sender: "bob"},
		},
		{
			name: "chat",
			raw:  "alice: hello there",
			want: Frame{Kind: KindChat, Raw: "alice: hello there", Text: "hello there", Sender: "alice"},
		},
		{
			name: "chat without sender",
			raw:  "just a line",
			want: Frame{Kind: KindChat, Raw: "just a line", Text: "just a line"},
		},
		{
			name: "leading separator has no sender",
			raw:  ": odd",
			want: Frame{Kind: KindChat, Raw: ": odd", Text: ": odd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFrame(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseFrame(%q) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}

func TestFrameKindString(t *testing.T) {
	assert.Equal(t, "chat", KindChat.String())
	assert.Equal(t, "roster", KindRoster.String())
	assert.Equal(t, "private", KindPrivate.String())
	assert.Equal(t, "system", KindSystem.String())
	assert.Equal(t, "image", KindImage.String())
	assert.Equal(t, "unknown", FrameKind(42).String())
}

func TestOutboundEncoding(t *testing.T) {
	assert.Equal(t, "privado:bob:see you", FormatPrivate("bob", "see you"))
	assert.Equal(t, "img:/files/alice_1.png", FormatImage("/files/alice_1.png"))
}

func TestResolveURL(t *testing.T) {
	origin := "http://chat.local:10000"
	assert.Equal(t, "http://chat.local:10000/files/a_1.png", resolveURL(origin, "/files/a_1.png"))
	assert.Equal(t, "http://chat.local:10000/files/a_1.png", resolveURL(origin+"/", "files/a_1.png"))
	assert.Equal(t, "https://cdn.example/x.png", resolveURL(origin, "https://cdn.example/x.png"))
	assert.Equal(t, "", resolveURL(origin, ""))
}

func TestSenderFromFile(t *testing.T) {
	assert.Equal(t, "alice", senderFromFile("/files/alice_1.png"))
	assert.Equal(t, "mary_jane", senderFromFile("/files/mary_jane_12.jpg"))
	assert.Equal(t, "", senderFromFile("/files/noseparator.png"))
}
