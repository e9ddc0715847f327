package corpus

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax29"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Tokenizer selects how revision text is split into words.
type Tokenizer int

// Tokenizers.
const (
	TokenizeWhitespace Tokenizer = iota // words are runs of non-whitespace
	TokenizeUAX29                       // Unicode word boundaries (UAX #29)
)

func (tk Tokenizer) String() string {
	if tk == TokenizeUAX29 {
		return "uax29"
	}
	return "whitespace"
}

// ParseTokenizer returns the tokenizer for a name, as used in configuration.
func ParseTokenizer(name string) Tokenizer {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "uax29", "uax-29", "words":
		return TokenizeUAX29
	}
	return TokenizeWhitespace
}

// tokenizer splits texts into tokens. It is not safe for concurrent use.
type tokenizer struct {
	kind      Tokenizer
	segmenter *segment.Segmenter
}

func newTokenizer(kind Tokenizer) *tokenizer {
	tk := &tokenizer{kind: kind}
	if kind == TokenizeUAX29 {
		tk.segmenter = segment.NewSegmenter(uax29.NewWordBreaker(1))
		tk.segmenter.BreakOnZero(true, false)
	} else {
		tk.segmenter = segment.NewSegmenter() // breaks at whitespace
	}
	return tk
}

// tokens calls yield for every token of a text. Text is normalized to NFC
// first.
func (tk *tokenizer) tokens(text io.Reader, yield func(string)) {
	tk.segmenter.Init(bufio.NewReader(norm.NFC.Reader(text)))
	for tk.segmenter.Next() {
		token := tk.segmenter.Text()
		if !tk.isWord(token) {
			continue
		}
		yield(token)
	}
}

func (tk *tokenizer) isWord(token string) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	if tk.kind == TokenizeWhitespace {
		return !strings.ContainsFunc(token, unicode.IsSpace)
	}
	// UAX #29 segments punctuation and symbols on their own
	return strings.ContainsFunc(token, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
	})
}

// StripMarkup removes HTML tags and comments from wiki text and decodes
// character references. Text content of elements is kept.
func StripMarkup(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		switch z.Next() {
		case html.ErrorToken: // io.EOF, there are no other errors for string input
			return sb.String()
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			sb.WriteByte(' ') // tags separate words
		}
	}
}
