// Package router provides command router
package router

import (
	"context"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/seasonalbot/discordbot/discord"
)

// Args provide abstraction for getting arguments
type Args []string

// Get returns bound-safe argument by index
func (args Args) Get(i int) string {
	if len(args) <= i {
		return ""
	}

	return args[i]
}

// Join joins arguments starting with given index
func (args Args) Join(i int) string {
	if len(args) <= i {
		return ""
	}

	return strings.Join(args[i:], " ")
}

// GroupSorterFunc provides sorting for groups
type GroupSorterFunc func(a, b *Group) bool

// RouteSorterFunc provides sorting for routes
type RouteSorterFunc func(a, b *Route) bool

// MatcherFunc implements matching message
type MatcherFunc func(raw string) bool

// MiddlewareFunc implements command wrapping
type MiddlewareFunc func(handler HandlerFunc) HandlerFunc

// HandlerFunc implements command execution
type HandlerFunc func(ctx *Context) error

// Context simplifies request handling
type Context struct {
	Ctx     context.Context
	Session discord.Session
	Message *discordgo.Message
	Route   *Route
	Args    Args

	m       sync.Mutex
	replies []*Reply
}

// Reply keeps track of user requests and bot replies
type Reply struct {
	Request  *discordgo.Message
	Response *discordgo.Message
}

// IsPrivate returns true when command was issued in direct messages
func (ctx *Context) IsPrivate() bool {
	return ctx.Message.GuildID == ""
}

// Replies returns bot replies made during this invocation
func (ctx *Context) Replies() []*Reply {
	ctx.m.Lock()
	defer ctx.m.Unlock()

	return append([]*Reply(nil), ctx.replies...)
}

// Track records bot reply for this invocation
func (ctx *Context) Track(msg *discordgo.Message) {
	ctx.m.Lock()
	defer ctx.m.Unlock()

	ctx.replies = append(ctx.replies, &Reply{
		Request:  ctx.Message,
		Response: msg,
	})
}

// React reacts to original message with emoji
func (ctx *Context) React(emoji string) (err error) {
	err = ctx.Session.MessageReactionAdd(ctx.Message.ChannelID, ctx.Message.ID, emoji)

	return
}

// ReplyEmbed replies to original message with embed
func (ctx *Context) ReplyEmbed(desc string) (err error) {
	return ctx.ReplyEmbedCustom(&discordgo.MessageEmbed{
		Description: desc,
	})
}

// ReplyEmbedCustom replies to original message with custom embed
func (ctx *Context) ReplyEmbedCustom(embed *discordgo.MessageEmbed) (err error) {
	_, err = ctx.SendEmbed(embed)

	return
}

// SendEmbed sends custom embed to the channel of original message and returns it
func (ctx *Context) SendEmbed(embed *discordgo.MessageEmbed) (msg *discordgo.Message, err error) {
	msg, err = ctx.Session.ChannelMessageSendEmbed(ctx.Message.ChannelID, embed)
	if err != nil {
		return
	}

	ctx.Track(msg)

	return
}

// Reply replies to original message
func (ctx *Context) Reply(desc string) (msg *discordgo.Message, err error) {
	msg, err = ctx.Session.ChannelMessageSend(ctx.Message.ChannelID, desc)
	if err != nil {
		return
	}

	ctx.Track(msg)

	return
}

// NewRouter returns new router instance
func NewRouter() *Router {
	return &Router{
		Routes: make(map[string]*Route),
		GroupSorter: func(a, b *Group) bool {
			return a.Name >= b.Name
		},
		DefaultRouteSorter: func(a, b *Route) bool {
			return a.Name >= b.Name
		},
		m: &sync.Mutex{},
	}
}

// Route describes command route
type Route struct {
	Router      *Router
	Name        string
	Description string
	Matcher     MatcherFunc
	Handler     HandlerFunc
	Baked       HandlerFunc
	Cooldown    *Cooldown
	Data        map[string]interface{}
	Middleware  []MiddlewareFunc
	Groups      []*Group
	Alias       []string
	AliasHelp   bool
}

// Set sets route config value
func (route *Route) Set(k string, v interface{}) *Route {
	route.Data[k] = v

	return route
}

// SetCooldown limits route invocation per user
func (route *Route) SetCooldown(cooldown *Cooldown) *Route {
	route.Cooldown = cooldown

	return route
}

// Get returns route (or any of parent groups) config value
func (route *Route) Get(k string) interface{} {
	if v, ok := route.Data[k]; ok {
		return v
	}

	for _, g := range route.Groups {
		if v, ok := g.Data[k]; ok {
			return v
		}
	}

	return nil
}

// ResetCooldown forgets cooldown bucket of the invoking user
func (ctx *Context) ResetCooldown() {
	if ctx.Route == nil || ctx.Route.Cooldown == nil || ctx.Message.Author == nil {
		return
	}

	ctx.Route.Cooldown.Reset(ctx.Message.Author.ID)
}
