package roomchat

import (
	"path"
	"strings"
)

// FrameKind tags an inbound line after classification.
type FrameKind int

const (
	KindChat FrameKind = iota
	KindRoster
	KindPrivate
	KindSystem
	KindImage
)

func (k FrameKind) String() string {
	switch k {
	case KindChat:
		return "chat"
	case KindRoster:
		return "roster"
	case KindPrivate:
		return "private"
	case KindSystem:
		return "system"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Wire prefixes. The server speaks plain text lines; these are the only
// structure it gives us.
const (
	privatePrefix = "🔒"
	imagePrefix   = "img:"
	privateVerb   = "privado:"
)

var (
	rosterPrefixes = []string{"👥 Online:", "👥 Usuários online:"}
	systemPrefixes = []string{"🚀", "👋", "⚠", "🚨"}
)

// Frame is a classified inbound line.
type Frame struct {
	Kind FrameKind
	Raw  string

	// Text is the display body. For chat and image frames with a
	// "<sender>: " prefix the prefix is stripped.
	Text string

	// Sender is set when the server names the author ("alice: hi") or,
	// for bare image paths, from the file name ("alice_1.png").
	Sender string

	// Users holds the roster snapshot for KindRoster.
	Users []string

	// URL is the image reference for KindImage. Client.Receive resolves it
	// against the server's HTTP origin.
	URL string

	// Own is filled by Client.Receive. For chat frames it is a substring
	// match of the local display name against the raw line, so a name that
	// is contained in another user's name is misclassified.
	Own bool
}

// ParseFrame classifies a raw line. Order matters: roster, private, system,
// image, then plain chat.
func ParseFrame(raw string) Frame {
	f := Frame{Raw: raw, Text: raw}

	for _, p := range rosterPrefixes {
		if strings.HasPrefix(raw, p) {
			f.Kind = KindRoster
			f.Users = splitRoster(strings.TrimPrefix(raw, p))
			return f
		}
	}
	if strings.HasPrefix(raw, privatePrefix) {
		f.Kind = KindPrivate
		return f
	}
	for _, p := range systemPrefixes {
		if strings.HasPrefix(raw, p) {
			f.Kind = KindSystem
			return f
		}
	}

	sender, body := splitSender(raw)
	if strings.HasPrefix(body, imagePrefix) {
		f.Kind = KindImage
		f.URL = strings.TrimSpace(strings.TrimPrefix(body, imagePrefix))
		f.Sender = sender
		if f.Sender == "" {
			f.Sender = senderFromFile(f.URL)
		}
		f.Text = f.URL
		return f
	}

	f.Kind = KindChat
	f.Sender = sender
	f.Text = body
	return f
}

func splitRoster(payload string) []string {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return []string{}
	}
	return strings.Split(payload, ", ")
}

// splitSender separates "<name>: <body>". Lines without the separator, or
// that start with it, have no sender.
func splitSender(raw string) (string, string) {
	if strings.HasPrefix(raw, imagePrefix) {
		return "", raw
	}
	i := strings.Index(raw, ": ")
	if i <= 0 {
		return "", raw
	}
	return raw[:i], raw[i+2:]
}

// senderFromFile derives the uploader from "<name>_<n>.<ext>".
func senderFromFile(ref string) string {
	base := path.Base(ref)
	i := strings.LastIndex(base, "_")
	if i <= 0 {
		return ""
	}
	return base[:i]
}

// FormatPrivate encodes a private message for the wire.
func FormatPrivate(recipient, text string) string {
	return privateVerb + recipient + ":" + text
}

// FormatImage encodes an uploaded image reference for the wire.
func FormatImage(url string) string {
	return imagePrefix + url
}

// resolveURL prefixes server-relative references with the HTTP origin.
func resolveURL(origin, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return strings.TrimSuffix(origin, "/") + ref
}
