package discord

import (
	"io"
	"sync"

	"github.com/bwmarrin/discordgo"
)

type sentMessage struct {
	channelID string
	content   string
	replyTo   string
	files     map[string][]byte
	types     map[string]string
}

type fakeMessageSession struct {
	mu    sync.Mutex
	sent  []sentMessage
	edits []string
}

func (s *fakeMessageSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := sentMessage{channelID: channelID, content: data.Content, files: map[string][]byte{}, types: map[string]string{}}
	if data.Reference != nil {
		msg.replyTo = data.Reference.MessageID
	}
	for _, f := range data.Files {
		body, _ := io.ReadAll(f.Reader)
		msg.files[f.Name] = body
		msg.types[f.Name] = f.ContentType
	}
	s.sent = append(s.sent, msg)
	return &discordgo.Message{ID: "reply-1", ChannelID: channelID}, nil
}

func (s *fakeMessageSession) ChannelMessageEdit(_, _, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits = append(s.edits, content)
	return &discordgo.Message{}, nil
}

func (s *fakeMessageSession) Sent() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}
