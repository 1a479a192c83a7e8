package kit

// TextType selects the Block Kit text variant.
type TextType string

const (
	TextPlain  TextType = "plain_text"
	TextMrkdwn TextType = "mrkdwn"
)

// Text is a text component. The zero Type renders as plain, unformatted
// text. Parts holds additional text components whose content is concatenated
// into this one.
type Text struct {
	Content  string
	Type     TextType
	Emoji    bool
	Verbatim bool
	Parts    []Element
}

// Plain builds a plain_text component.
func Plain(content string) *Text { return &Text{Content: content} }

// Mrkdwn builds a mrkdwn text component.
func Mrkdwn(content string) *Text { return &Text{Content: content, Type: TextMrkdwn} }

func (t *Text) Build(Scope) (*Node, error) {
	typ := t.Type
	if typ == "" {
		typ = TextPlain
	}
	n := NewNode(string(typ))
	n.Set("text", t.Content)
	if typ == TextPlain && t.Emoji {
		n.Set("emoji", true)
	}
	if typ == TextMrkdwn && t.Verbatim {
		n.Set("verbatim", true)
	}
	return n, nil
}

func (t *Text) ChildElements() []Element { return t.Parts }
