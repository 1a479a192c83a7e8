package kit

// Section is a layout block holding text, a two-column field list and an
// optional accessory element.
type Section struct {
	// Text is the section's main text: a string (rendered plain) or a Text
	// element.
	Text any
	// Accessory is an element rendered alongside the text.
	Accessory Element
	// Fields are appended to the section's fields list.
	Fields []Element
}

func (b *Section) Build(s Scope) (*Node, error) {
	n := NewNode("section")
	if b.Text != nil {
		tn, err := asText(s, b.Text)
		if err != nil {
			return nil, err
		}
		n.Set("text", tn)
	}
	if b.Accessory != nil {
		an, err := s.Reconcile(b.Accessory)
		if err != nil {
			return nil, err
		}
		n.Set("accessory", an)
	}
	return n, nil
}

func (b *Section) ChildElements() []Element { return b.Fields }

// Actions is a block holding a row of interactive elements.
type Actions struct {
	Elements []Element
}

func (b *Actions) Build(Scope) (*Node, error) {
	n := NewNode("actions")
	n.Set("elements", []*Node{})
	return n, nil
}

func (b *Actions) ChildElements() []Element { return b.Elements }

// Context is a block holding small text and images.
type Context struct {
	Elements []Element
}

func (b *Context) Build(Scope) (*Node, error) {
	n := NewNode("context")
	n.Set("elements", []*Node{})
	return n, nil
}

func (b *Context) ChildElements() []Element { return b.Elements }

// Divider is a horizontal rule block.
type Divider struct{}

func (Divider) Build(Scope) (*Node, error) { return NewNode("divider"), nil }
func (Divider) ChildElements() []Element   { return nil }

// Image is an image element, usable as a section accessory or context
// element.
type Image struct {
	URL     string
	AltText string
}

func (b *Image) Build(Scope) (*Node, error) {
	n := NewNode("image")
	n.Set("image_url", b.URL)
	n.Set("alt_text", b.AltText)
	return n, nil
}

func (b *Image) ChildElements() []Element { return nil }

// ImageBlock is a top-level image block with an optional title.
type ImageBlock struct {
	URL     string
	AltText string
	Title   any
	Emoji   bool
}

func (b *ImageBlock) Build(s Scope) (*Node, error) {
	n := NewNode("image")
	n.Set("image_url", b.URL)
	n.Set("alt_text", b.AltText)
	if b.Title != nil {
		tn, err := asPlainText(s, b.Title)
		if err != nil {
			return nil, err
		}
		if b.Emoji {
			tn.Set("emoji", true)
		}
		n.Set("title", tn)
	}
	return n, nil
}

func (b *ImageBlock) ChildElements() []Element { return nil }
