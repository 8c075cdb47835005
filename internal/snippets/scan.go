package snippets

import (
	"fmt"
	"strings"
)

const (
	expansionOpen = "$%%{"
	referenceOpen = "$%{"
)

// Scan returns every placeholder of the given kind in src, in order. A
// malformed placeholder yields a SyntaxError and is left in place; scanning
// resumes right after its opening delimiter.
func Scan(src string, kind Kind) ([]Token, []error) {
	open := expansionOpen
	if kind == Reference {
		open = referenceOpen
	}

	var (
		toks []Token
		errs []error
	)
	for i := 0; i < len(src); {
		j := strings.Index(src[i:], open)
		if j < 0 {
			break
		}
		start := i + j
		p := &parser{src: src, pos: start + len(open)}
		tok := Token{Kind: kind, Start: start, Line: lineOf(src, start)}

		var err error
		if kind == Reference {
			tok.Chain, err = p.reference()
		} else {
			tok.Invocation, err = p.expansion()
		}
		if err != nil {
			errs = append(errs, &SyntaxError{Line: tok.Line, Offset: start, Msg: err.Error()})
			i = start + len(open)
			continue
		}
		tok.End = p.pos
		tok.Raw = src[start:p.pos]
		toks = append(toks, tok)
		i = p.pos
	}
	return toks, errs
}

type parser struct {
	src string
	pos int
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// until consumes up to the next byte in stop, a newline, or the end of input.
func (p *parser) until(stop string) string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '\n' || strings.IndexByte(stop, c) >= 0 {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) expect(c byte) error {
	if p.peek() != c {
		if p.pos >= len(p.src) {
			return fmt.Errorf("expected %q, found end of input", c)
		}
		return fmt.Errorf("expected %q, found %q", c, p.src[p.pos])
	}
	p.pos++
	return nil
}

// expansion parses `[lookup:]name(args)[@metadata]}`.
func (p *parser) expansion() (Invocation, error) {
	var inv Invocation
	first := p.until(":(){}@")
	if p.peek() == ':' {
		p.pos++
		inv.Lookup = strings.TrimSpace(first)
		if inv.Lookup == "" {
			return inv, fmt.Errorf("empty lookup path")
		}
		first = p.until(":(){}@")
	}
	inv.Name = strings.TrimSpace(first)
	if inv.Name == "" {
		return inv, fmt.Errorf("snippet is missing a name")
	}
	if err := p.expect('('); err != nil {
		return inv, err
	}
	raw := p.until(")")
	if err := p.expect(')'); err != nil {
		return inv, err
	}
	args, err := parseArgs(raw)
	if err != nil {
		return inv, err
	}
	inv.Args = args
	if p.peek() == '@' {
		p.pos++
		inv.Metadata = strings.TrimSpace(p.until("}"))
		if inv.Metadata == "" {
			return inv, fmt.Errorf("empty metadata directory")
		}
	}
	if err := p.expect('}'); err != nil {
		return inv, err
	}
	return inv, nil
}

// reference parses `chain}`.
func (p *parser) reference() (string, error) {
	chain := strings.TrimSpace(p.until("{}"))
	if err := p.expect('}'); err != nil {
		return "", err
	}
	if chain == "" {
		return "", fmt.Errorf("empty key chain")
	}
	return chain, nil
}

func parseArgs(raw string) (Params, error) {
	params := Params{}
	if strings.TrimSpace(raw) == "" {
		return params, nil
	}
	for _, part := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("argument %q is not a key: value pair", strings.TrimSpace(part))
		}
		k = strings.TrimSpace(k)
		if k == "" {
			return nil, fmt.Errorf("argument %q has an empty key", strings.TrimSpace(part))
		}
		params[k] = strings.TrimSpace(v)
	}
	return params, nil
}

func lineOf(src string, off int) int {
	return strings.Count(src[:off], "\n") + 1
}

// mapTokens rebuilds src with every token replaced by the output of fn.
// Failing tokens are removed from the output; their errors are returned in
// token order and the pass always covers every token.
func mapTokens(src string, toks []Token, fn func(Token) (string, error)) (string, []error) {
	var (
		b    strings.Builder
		errs []error
		last int
	)
	for _, tok := range toks {
		b.WriteString(src[last:tok.Start])
		out, err := fn(tok)
		if err != nil {
			errs = append(errs, err)
		} else {
			b.WriteString(out)
		}
		last = tok.End
	}
	b.WriteString(src[last:])
	return b.String(), errs
}
