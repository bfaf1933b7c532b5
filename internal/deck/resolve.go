package deck

import "regexp"

// ContentKind tags what a resolved element displays.
type ContentKind int

const (
	// KindNone is resolved for containers, which carry no content.
	KindNone ContentKind = iota
	// KindText carries the final display string.
	KindText
	// KindImage carries an image URL, possibly empty.
	KindImage
)

// ResolvedContent is the display form of one element after binding it to a
// profile. For KindImage an empty URL means "no image yet": the renderer
// shows a select-image affordance instead of a broken image.
type ResolvedContent struct {
	Kind     ContentKind
	Text     string
	ImageURL string
}

var tokenPattern = regexp.MustCompile(`\{([a-zA-Z][a-zA-Z0-9]*)\}`)

// Resolve computes an element's displayed content against a profile.
//
// Exactly one strategy applies per text element, in precedence order:
// binding-name lookup, then placeholder-token substitution, then literal
// pass-through. Freeform elements are always literal; they exist precisely
// to bypass binding. Image elements resolve to their own content first, then
// the profile photo assigned to their slide.
func Resolve(el Element, p Profile) ResolvedContent {
	switch el.Type {
	case ElementImage:
		url := el.Content
		if url == "" {
			url = p.PhotoForSlide(el.SlideNumber)
		}
		return ResolvedContent{Kind: KindImage, ImageURL: url}
	case ElementContainer:
		return ResolvedContent{Kind: KindNone}
	case ElementFreeform:
		return ResolvedContent{Kind: KindText, Text: el.Content}
	default:
		if name := el.BindingName(); name != "" {
			if value, ok := p.Field(name); ok {
				return ResolvedContent{Kind: KindText, Text: value}
			}
		}
		return ResolvedContent{Kind: KindText, Text: substitute(el.Content, p)}
	}
}

// substitute replaces every {fieldName} occurrence from the known field set
// in a single left-to-right pass. Unmatched tokens stay verbatim so that a
// typo in a template is visible in the output instead of silently dropped.
func substitute(content string, p Profile) string {
	if content == "" {
		return ""
	}
	return tokenPattern.ReplaceAllStringFunc(content, func(token string) string {
		name := token[1 : len(token)-1]
		if value, ok := p.Field(name); ok {
			return value
		}
		return token
	})
}
