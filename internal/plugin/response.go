package plugin

import "time"

// ResponseKind selects which response variant a handler returned.
type ResponseKind int

const (
	// RespondSend sends content and/or an embed to the invoking surface.
	RespondSend ResponseKind = iota
	// RespondHelp renders the command's usage card instead of content.
	RespondHelp
)

// EmbedField is one name/value pair inside an embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a transport-neutral rich message body. The Discord adapter maps
// it onto a native embed; the console renders it as indented text.
type Embed struct {
	Title       string
	Description string
	Fields      []EmbedField
	Footer      string
}

// Response is what a command handler returns. A nil *Response means no
// reply. The two non-nil variants are a send (content, optional embed,
// auto-expiry) and a usage-card render.
type Response struct {
	Kind          ResponseKind
	Content       string
	Embed         *Embed
	Expire        time.Duration
	AllowMentions bool
}

// defaultExpire is how long bot replies live before the bot deletes them.
const defaultExpire = 30 * time.Second

// Send builds a plain-content response with the default expiry.
func Send(content string) *Response {
	return &Response{Kind: RespondSend, Content: content, Expire: defaultExpire}
}

// SendEmbed builds an embed response with the default expiry.
func SendEmbed(e *Embed) *Response {
	return &Response{Kind: RespondSend, Embed: e, Expire: defaultExpire}
}

// Help asks the router to render the command's usage card.
func Help() *Response {
	return &Response{Kind: RespondHelp, Expire: defaultExpire}
}

// WithExpire overrides the auto-delete duration; zero disables it.
func (r *Response) WithExpire(d time.Duration) *Response {
	r.Expire = d
	return r
}

// WithMentions opts the response into raw mass mentions.
func (r *Response) WithMentions() *Response {
	r.AllowMentions = true
	return r
}

// WithEmbed attaches an embed to a send response.
func (r *Response) WithEmbed(e *Embed) *Response {
	r.Embed = e
	return r
}
