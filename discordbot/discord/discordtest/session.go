// Package discordtest provides in-memory discord.Session for tests
package discordtest

import (
	"fmt"
	"net/http"
	"reflect"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// DefaultPermissions granted to users without explicit entry
const DefaultPermissions = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages

// Reaction records reaction add or remove call
type Reaction struct {
	ChannelID string
	MessageID string
	Emoji     string
	UserID    string
}

// Session records calls and serves messages from memory
type Session struct {
	User        *discordgo.User
	Guilds      map[string]*discordgo.Guild
	Channels    map[string]*discordgo.Channel
	Messages    map[string]*discordgo.Message
	Permissions map[string]int64
	DMClosed    map[string]bool
	Uncached    map[string]bool

	OpenErr    error
	CloseErr   error
	ChannelErr error

	Sent             []*discordgo.Message
	Deleted          []string
	ReactionsAdded   []Reaction
	ReactionsRemoved []Reaction
	Opened           int
	Closed           int

	m        sync.Mutex
	handlers map[int]interface{}
	handler  int
	seq      int64
}

// New returns empty session with bot user set
func New(botID string) *Session {
	return &Session{
		User:        &discordgo.User{ID: botID, Username: "bot", Bot: true},
		Guilds:      make(map[string]*discordgo.Guild),
		Channels:    make(map[string]*discordgo.Channel),
		Messages:    make(map[string]*discordgo.Message),
		Permissions: make(map[string]int64),
		DMClosed:    make(map[string]bool),
		Uncached:    make(map[string]bool),
		handlers:    make(map[int]interface{}),
		seq:         900000000000000000,
	}
}

// RESTError builds REST error with given status code
func RESTError(status int) *discordgo.RESTError {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status, Status: http.StatusText(status)},
		Message:  &discordgo.APIErrorMessage{Message: http.StatusText(status)},
	}
}

// AddMessage stores message in memory and returns it
func (s *Session) AddMessage(msg *discordgo.Message) *discordgo.Message {
	s.m.Lock()
	defer s.m.Unlock()

	if msg.ID == "" {
		msg.ID = s.nextID()
	}

	s.Messages[msg.ID] = msg

	return msg
}

// AddChannel stores channel in memory and returns it
func (s *Session) AddChannel(ch *discordgo.Channel) *discordgo.Channel {
	s.m.Lock()
	defer s.m.Unlock()

	s.Channels[ch.ID] = ch

	return ch
}

// SetPermissions sets permissions of the user in the channel
func (s *Session) SetPermissions(userID, channelID string, permissions int64) {
	s.m.Lock()
	defer s.m.Unlock()

	s.Permissions[userID+"/"+channelID] = permissions
}

// SentTo returns messages sent to given channel
func (s *Session) SentTo(channelID string) (res []*discordgo.Message) {
	s.m.Lock()
	defer s.m.Unlock()

	for _, m := range s.Sent {
		if m.ChannelID == channelID {
			res = append(res, m)
		}
	}

	return
}

// DeletedCount returns number of deletions of given message
func (s *Session) DeletedCount(messageID string) (n int) {
	s.m.Lock()
	defer s.m.Unlock()

	for _, id := range s.Deleted {
		if id == messageID {
			n++
		}
	}

	return
}

// Removed returns copy of removed reactions
func (s *Session) Removed() []Reaction {
	s.m.Lock()
	defer s.m.Unlock()

	return append([]Reaction(nil), s.ReactionsRemoved...)
}

// Added returns copy of added reactions
func (s *Session) Added() []Reaction {
	s.m.Lock()
	defer s.m.Unlock()

	return append([]Reaction(nil), s.ReactionsAdded...)
}

// HandlerCount returns number of registered handlers
func (s *Session) HandlerCount() int {
	s.m.Lock()
	defer s.m.Unlock()

	return len(s.handlers)
}

// Emit updates guild state like discordgo.State does, then calls every registered handler accepting event type
func (s *Session) Emit(event interface{}) {
	s.m.Lock()

	switch ev := event.(type) {
	case *discordgo.GuildCreate:
		s.guildAdd(ev.Guild)
	case *discordgo.GuildDelete:
		if ev.Guild != nil {
			delete(s.Guilds, ev.ID)
		}
	}

	hs := make([]interface{}, 0, len(s.handlers))
	for _, h := range s.handlers {
		hs = append(hs, h)
	}

	s.m.Unlock()

	ev := reflect.ValueOf(event)

	for _, h := range hs {
		hv := reflect.ValueOf(h)
		ht := hv.Type()

		if ht.Kind() != reflect.Func || ht.NumIn() != 2 || ht.In(1) != ev.Type() {
			continue
		}

		hv.Call([]reflect.Value{reflect.Zero(ht.In(0)), ev})
	}
}

func (s *Session) guildAdd(guild *discordgo.Guild) {
	if guild == nil {
		return
	}

	g := *guild

	if prev, ok := s.Guilds[g.ID]; ok {
		if g.Roles == nil {
			g.Roles = prev.Roles
		}

		if g.Members == nil {
			g.Members = prev.Members
		}

		if g.Channels == nil {
			g.Channels = prev.Channels
		}
	}

	s.Guilds[g.ID] = &g
}

func (s *Session) nextID() string {
	s.seq++

	return fmt.Sprint(s.seq)
}

// Open implements discord.Session
func (s *Session) Open() error {
	s.m.Lock()
	defer s.m.Unlock()

	s.Opened++

	return s.OpenErr
}

// Close implements discord.Session
func (s *Session) Close() error {
	s.m.Lock()
	defer s.m.Unlock()

	s.Closed++

	return s.CloseErr
}

// AddHandler implements discord.Session
func (s *Session) AddHandler(handler interface{}) func() {
	s.m.Lock()
	defer s.m.Unlock()

	s.handler++
	id := s.handler
	s.handlers[id] = handler

	return func() {
		s.m.Lock()
		defer s.m.Unlock()

		delete(s.handlers, id)
	}
}

func (s *Session) send(channelID string, msg *discordgo.Message) (*discordgo.Message, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if ch, ok := s.Channels[channelID]; ok && ch.Type == discordgo.ChannelTypeDM {
		for _, r := range ch.Recipients {
			if s.DMClosed[r.ID] {
				return nil, RESTError(http.StatusForbidden)
			}
		}
	}

	msg.ID = s.nextID()
	msg.ChannelID = channelID
	msg.Author = s.User

	if ch, ok := s.Channels[channelID]; ok {
		msg.GuildID = ch.GuildID
	}

	s.Messages[msg.ID] = msg
	s.Sent = append(s.Sent, msg)

	return msg, nil
}

// ChannelMessageSend implements discord.Session
func (s *Session) ChannelMessageSend(
	channelID, content string,
	_ ...discordgo.RequestOption,
) (*discordgo.Message, error) {
	return s.send(channelID, &discordgo.Message{Content: content})
}

// ChannelMessageSendEmbed implements discord.Session
func (s *Session) ChannelMessageSendEmbed(
	channelID string,
	embed *discordgo.MessageEmbed,
	_ ...discordgo.RequestOption,
) (*discordgo.Message, error) {
	return s.send(channelID, &discordgo.Message{Embeds: []*discordgo.MessageEmbed{embed}})
}

// ChannelMessage implements discord.Session
func (s *Session) ChannelMessage(
	channelID, messageID string,
	_ ...discordgo.RequestOption,
) (*discordgo.Message, error) {
	s.m.Lock()
	defer s.m.Unlock()

	msg, ok := s.Messages[messageID]
	if !ok || msg.ChannelID != channelID {
		return nil, RESTError(http.StatusNotFound)
	}

	return msg, nil
}

// ChannelMessageDelete implements discord.Session
func (s *Session) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	s.m.Lock()
	defer s.m.Unlock()

	s.Deleted = append(s.Deleted, messageID)

	if _, ok := s.Messages[messageID]; !ok {
		return RESTError(http.StatusNotFound)
	}

	delete(s.Messages, messageID)

	return nil
}

// Channel implements discord.Session
func (s *Session) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if s.ChannelErr != nil {
		return nil, s.ChannelErr
	}

	ch, ok := s.Channels[channelID]
	if !ok {
		return nil, RESTError(http.StatusNotFound)
	}

	return ch, nil
}

// UserChannelCreate implements discord.Session
func (s *Session) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	s.m.Lock()
	defer s.m.Unlock()

	id := "dm" + recipientID

	ch, ok := s.Channels[id]
	if !ok {
		ch = &discordgo.Channel{
			ID:         id,
			Type:       discordgo.ChannelTypeDM,
			Recipients: []*discordgo.User{{ID: recipientID}},
		}
		s.Channels[id] = ch
	}

	return ch, nil
}

// UserChannelPermissions implements discord.Session
func (s *Session) UserChannelPermissions(userID, channelID string, _ ...discordgo.RequestOption) (int64, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if p, ok := s.Permissions[userID+"/"+channelID]; ok {
		return p, nil
	}

	return DefaultPermissions, nil
}

// MessageReactionAdd implements discord.Session
func (s *Session) MessageReactionAdd(channelID, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	s.m.Lock()
	defer s.m.Unlock()

	s.ReactionsAdded = append(s.ReactionsAdded, Reaction{
		ChannelID: channelID,
		MessageID: messageID,
		Emoji:     emojiID,
		UserID:    s.User.ID,
	})

	return nil
}

// MessageReactionRemove implements discord.Session
func (s *Session) MessageReactionRemove(
	channelID, messageID, emojiID, userID string,
	_ ...discordgo.RequestOption,
) error {
	s.m.Lock()
	defer s.m.Unlock()

	s.ReactionsRemoved = append(s.ReactionsRemoved, Reaction{
		ChannelID: channelID,
		MessageID: messageID,
		Emoji:     emojiID,
		UserID:    userID,
	})

	return nil
}

// RequestGuildMembers implements discord.Session
func (s *Session) RequestGuildMembers(string, string, int, string, bool) error {
	return nil
}

// Me implements discord.Session
func (s *Session) Me() *discordgo.User {
	return s.User
}

// CachedGuild implements discord.Session
func (s *Session) CachedGuild(guildID string) (*discordgo.Guild, error) {
	s.m.Lock()
	defer s.m.Unlock()

	g, ok := s.Guilds[guildID]
	if !ok {
		return nil, discordgo.ErrStateNotFound
	}

	return g, nil
}

// CachedChannel implements discord.Session
func (s *Session) CachedChannel(channelID string) (*discordgo.Channel, error) {
	s.m.Lock()
	defer s.m.Unlock()

	ch, ok := s.Channels[channelID]
	if !ok || s.Uncached[channelID] {
		return nil, discordgo.ErrStateNotFound
	}

	return ch, nil
}

// CachedMessage implements discord.Session
func (s *Session) CachedMessage(guildID, _, messageID string) (*discordgo.Message, error) {
	s.m.Lock()
	defer s.m.Unlock()

	msg, ok := s.Messages[messageID]
	if !ok || msg.GuildID != guildID {
		return nil, discordgo.ErrStateNotFound
	}

	return msg, nil
}
