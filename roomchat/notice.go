package roomchat

import "fmt"

// NoticeID identifies a client-originated system notice.
type NoticeID int

const (
	NoticeWelcome NoticeID = iota
	NoticeConnectError
	NoticeConnectionLost
	NoticeReconnectGaveUp
	NoticeSendFailed
	NoticeNotConnected
	NoticeUploadFailed
	NoticeClosed
)

// Notice is a system message produced by the client itself rather than
// received from the server.
type Notice struct {
	ID      NoticeID
	Text    string
	IsError bool
}

var catalogs = map[string]map[NoticeID]string{
	"en": {
		NoticeWelcome:         "Welcome to room %s, %s!",
		NoticeConnectError:    "Connection error. Reconnecting...",
		NoticeConnectionLost:  "Connection lost. Reconnecting...",
		NoticeReconnectGaveUp: "Could not reconnect after %d attempts.",
		NoticeSendFailed:      "Message send failed",
		NoticeNotConnected:    "Not connected. Message not sent.",
		NoticeUploadFailed:    "Image upload failed: %s",
		NoticeClosed:          "Connection closed by server.",
	},
	"pt": {
		NoticeWelcome:         "Bem-vindo à sala %s, %s!",
		NoticeConnectError:    "Erro na conexão. Reconectando...",
		NoticeConnectionLost:  "Conexão perdida. Reconectando...",
		NoticeReconnectGaveUp: "Não foi possível reconectar após %d tentativas.",
		NoticeSendFailed:      "Falha ao enviar a mensagem",
		NoticeNotConnected:    "Sem conexão. Mensagem não enviada.",
		NoticeUploadFailed:    "Falha ao enviar a imagem: %s",
		NoticeClosed:          "Conexão encerrada pelo servidor.",
	},
}

var errorNotices = map[NoticeID]bool{
	NoticeConnectError:    true,
	NoticeReconnectGaveUp: true,
	NoticeSendFailed:      true,
	NoticeNotConnected:    true,
	NoticeUploadFailed:    true,
}

// NewNotice renders a notice in the given locale, falling back to English.
func NewNotice(locale string, id NoticeID, args ...any) Notice {
	cat, ok := catalogs[locale]
	if !ok {
		cat = catalogs["en"]
	}
	text := cat[id]
	if len(args) > 0 {
		text = fmt.Sprintf(text, args...)
	}
	return Notice{ID: id, Text: text, IsError: errorNotices[id]}
}
