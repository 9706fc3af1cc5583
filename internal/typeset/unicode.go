package typeset

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var ErrMalformed = errors.New("malformed math markup")

// Unicode typesets a LaTeX subset as plain Unicode text for terminals.
type Unicode struct{}

var symbols = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ε",
	"theta": "θ", "lambda": "λ", "mu": "μ", "pi": "π", "sigma": "σ",
	"phi": "φ", "omega": "ω", "Delta": "Δ", "Sigma": "Σ", "Omega": "Ω",
	"infty": "∞", "cdot": "·", "times": "×", "div": "÷", "pm": "±",
	"le": "≤", "leq": "≤", "ge": "≥", "geq": "≥", "neq": "≠", "ne": "≠",
	"approx": "≈", "to": "→", "rightarrow": "→", "Rightarrow": "⇒",
	"int": "∫", "sum": "∑", "prod": "∏", "partial": "∂", "circ": "°",
	"degree": "°", "in": "∈", "cup": "∪", "cap": "∩",
	"sin": "sin", "cos": "cos", "tan": "tan", "log": "log", "ln": "ln", "exp": "exp",
	"left": "", "right": "", ",": " ", ";": " ", "quad": "  ", " ": " ",
	"{": "{", "}": "}", "%": "%", "$": "$", "_": "_", "\\": " ",
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴', '5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'+': '⁺', '-': '⁻', '=': '⁼', '(': '⁽', ')': '⁾', 'n': 'ⁿ', 'i': 'ⁱ', 'x': 'ˣ', 'y': 'ʸ',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄', '5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
	'+': '₊', '-': '₋', '=': '₌', '(': '₍', ')': '₎', 'a': 'ₐ', 'e': 'ₑ', 'i': 'ᵢ', 'n': 'ₙ', 'x': 'ₓ',
}

func (Unicode) Typeset(source string) (string, error) {
	p := &parser{src: []rune(strings.ReplaceAll(source, "$", ""))}
	out, err := p.sequence(false)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" && strings.TrimSpace(source) != "" {
		return "", fmt.Errorf("%q renders to nothing: %w", source, ErrMalformed)
	}
	return out, nil
}

type parser struct {
	src []rune
	pos int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

// sequence reads until the end of input, or until the closing brace when inGroup.
func (p *parser) sequence(inGroup bool) (string, error) {
	var sb strings.Builder
	for !p.eof() {
		r := p.src[p.pos]
		switch r {
		case '}':
			if !inGroup {
				return "", fmt.Errorf("unexpected } at %d: %w", p.pos, ErrMalformed)
			}
			p.pos++
			return sb.String(), nil
		case '{':
			p.pos++
			group, err := p.sequence(true)
			if err != nil {
				return "", err
			}
			sb.WriteString(group)
		case '^', '_':
			p.pos++
			arg, err := p.argument()
			if err != nil {
				return "", err
			}
			if r == '^' {
				sb.WriteString(script(arg, superscripts, "^"))
			} else {
				sb.WriteString(script(arg, subscripts, "_"))
			}
		case '\\':
			p.pos++
			text, err := p.command()
			if err != nil {
				return "", err
			}
			sb.WriteString(text)
		default:
			p.pos++
			sb.WriteRune(r)
		}
	}
	if inGroup {
		return "", fmt.Errorf("missing }: %w", ErrMalformed)
	}
	return sb.String(), nil
}

// argument reads a braced group, a command, or a single character.
func (p *parser) argument() (string, error) {
	for !p.eof() && p.src[p.pos] == ' ' {
		p.pos++
	}
	if p.eof() {
		return "", fmt.Errorf("missing argument: %w", ErrMalformed)
	}
	switch r := p.src[p.pos]; r {
	case '{':
		p.pos++
		return p.sequence(true)
	case '\\':
		p.pos++
		return p.command()
	case '}':
		return "", fmt.Errorf("unexpected } at %d: %w", p.pos, ErrMalformed)
	default:
		p.pos++
		return string(r), nil
	}
}

func (p *parser) command() (string, error) {
	if p.eof() {
		return "", fmt.Errorf("trailing backslash: %w", ErrMalformed)
	}

	start := p.pos
	if unicode.IsLetter(p.src[p.pos]) {
		for !p.eof() && unicode.IsLetter(p.src[p.pos]) {
			p.pos++
		}
	} else {
		p.pos++
	}
	name := string(p.src[start:p.pos])

	switch name {
	case "frac", "dfrac", "tfrac":
		numerator, err := p.argument()
		if err != nil {
			return "", err
		}
		denominator, err := p.argument()
		if err != nil {
			return "", err
		}
		return wrap(numerator) + "/" + wrap(denominator), nil
	case "sqrt":
		radicand, err := p.argument()
		if err != nil {
			return "", err
		}
		return "√" + wrap(radicand), nil
	case "text", "mathrm", "mathbf", "mathit", "operatorname":
		return p.argument()
	}

	if symbol, ok := symbols[name]; ok {
		return symbol, nil
	}
	return "", fmt.Errorf("unknown command \\%s: %w", name, ErrMalformed)
}

// script maps every rune to its raised or lowered form, or falls back to marker(text).
func script(text string, table map[rune]rune, marker string) string {
	var sb strings.Builder
	for _, r := range text {
		mapped, ok := table[r]
		if !ok {
			if len([]rune(text)) == 1 {
				return marker + text
			}
			return marker + "(" + text + ")"
		}
		sb.WriteRune(mapped)
	}
	return sb.String()
}

// wrap parenthesizes compound operands
func wrap(text string) string {
	if len([]rune(text)) <= 1 || isNumber(text) {
		return text
	}
	return "(" + text + ")"
}

func isNumber(text string) bool {
	for _, r := range text {
		if !unicode.IsDigit(r) && r != '.' {
			return false
		}
	}
	return text != ""
}
