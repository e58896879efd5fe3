package mathrender

import (
	"strings"
	"unicode"
)

var symbols = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ε", "varepsilon": "ε",
	"zeta": "ζ", "eta": "η", "theta": "θ", "vartheta": "ϑ", "iota": "ι", "kappa": "κ",
	"lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ", "pi": "π", "rho": "ρ", "sigma": "σ",
	"tau": "τ", "upsilon": "υ", "phi": "φ", "varphi": "φ", "chi": "χ", "psi": "ψ", "omega": "ω",
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ", "Xi": "Ξ", "Pi": "Π",
	"Sigma": "Σ", "Phi": "Φ", "Psi": "Ψ", "Omega": "Ω",

	"cdot": "·", "times": "×", "div": "÷", "pm": "±", "mp": "∓",
	"leq": "≤", "le": "≤", "geq": "≥", "ge": "≥", "neq": "≠", "ne": "≠",
	"approx": "≈", "equiv": "≡", "propto": "∝", "sim": "∼",
	"infty": "∞", "partial": "∂", "nabla": "∇", "hbar": "ħ",
	"sum": "∑", "prod": "∏", "int": "∫", "oint": "∮",
	"to": "→", "rightarrow": "→", "leftarrow": "←", "Rightarrow": "⇒", "leftrightarrow": "↔",
	"degree": "°", "circ": "∘", "prime": "′", "ldots": "…", "cdots": "⋯",

	",": " ", ";": " ", ":": " ", "!": "", "quad": "  ", "qquad": "    ", " ": " ", "\\": " ",
	"left": "", "right": "", "{": "{", "}": "}", "%": "%", "$": "$", "_": "_", "&": "&",
}

// accents maps accent commands to the combining mark appended to their argument.
var accents = map[string]rune{
	"vec":   '\u20d7',
	"hat":   '\u0302',
	"bar":   '\u0304',
	"dot":   '\u0307',
	"ddot":  '\u0308',
	"tilde": '\u0303',
}

var plainText = map[string]bool{
	"text": true, "mathrm": true, "mathbf": true, "mathit": true, "mathsf": true,
	"operatorname": true, "textrm": true, "boldsymbol": true,
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴', '5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'+': '⁺', '-': '⁻', '=': '⁼', '(': '⁽', ')': '⁾',
	'a': 'ᵃ', 'b': 'ᵇ', 'c': 'ᶜ', 'd': 'ᵈ', 'e': 'ᵉ', 'f': 'ᶠ', 'g': 'ᵍ', 'h': 'ʰ', 'i': 'ⁱ',
	'j': 'ʲ', 'k': 'ᵏ', 'l': 'ˡ', 'm': 'ᵐ', 'n': 'ⁿ', 'o': 'ᵒ', 'p': 'ᵖ', 'r': 'ʳ', 's': 'ˢ',
	't': 'ᵗ', 'u': 'ᵘ', 'v': 'ᵛ', 'w': 'ʷ', 'x': 'ˣ', 'y': 'ʸ', 'z': 'ᶻ', 'T': 'ᵀ',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄', '5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
	'+': '₊', '-': '₋', '=': '₌', '(': '₍', ')': '₎', ',': ',',
	'a': 'ₐ', 'e': 'ₑ', 'h': 'ₕ', 'i': 'ᵢ', 'j': 'ⱼ', 'k': 'ₖ', 'l': 'ₗ', 'm': 'ₘ', 'n': 'ₙ',
	'o': 'ₒ', 'p': 'ₚ', 'r': 'ᵣ', 's': 'ₛ', 't': 'ₜ', 'u': 'ᵤ', 'v': 'ᵥ', 'x': 'ₓ',
}

// Unicode approximates LaTeX math with Unicode text for terminal output.
// Markup it can't express degrades to a readable ASCII form; a missing macro
// argument shows as "?" and a dangling ^ or _ is kept. Only unbalanced braces
// are discarded.
type Unicode struct{}

func NewUnicode() Unicode { return Unicode{} }

func (Unicode) Render(expr string) string {
	p := &parser{src: []rune(StripInline(expr))}
	return collapseSpaces(p.sequence(false))
}

type parser struct {
	src []rune
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

// sequence renders until EOF, or until the closing brace when inGroup.
func (p *parser) sequence(inGroup bool) string {
	var b strings.Builder
	for !p.eof() {
		c := p.src[p.pos]
		switch c {
		case '}':
			p.pos++
			if inGroup {
				return b.String()
			}
		case '{':
			p.pos++
			b.WriteString(p.sequence(true))
		case '^':
			p.pos++
			b.WriteString(script(p.argument(), superscripts, "^"))
		case '_':
			p.pos++
			b.WriteString(script(p.argument(), subscripts, "_"))
		case '\\':
			b.WriteString(p.command())
		case '~':
			p.pos++
			b.WriteRune(' ')
		default:
			p.pos++
			b.WriteRune(c)
		}
	}
	return b.String()
}

// argument reads one macro argument: a braced group, a command or a single rune.
func (p *parser) argument() string {
	for !p.eof() && p.src[p.pos] == ' ' {
		p.pos++
	}
	if p.eof() {
		return ""
	}
	switch c := p.src[p.pos]; c {
	case '{':
		p.pos++
		return p.sequence(true)
	case '\\':
		return p.command()
	default:
		p.pos++
		return string(c)
	}
}

func (p *parser) command() string {
	p.pos++ // backslash
	if p.eof() {
		return ""
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

	if mark, ok := accents[name]; ok {
		return p.argument() + string(mark)
	}
	if plainText[name] {
		return p.argument()
	}
	switch name {
	case "frac", "dfrac", "tfrac":
		num, den := p.argument(), p.argument()
		if strings.TrimSpace(num) == "" && strings.TrimSpace(den) == "" {
			return name
		}
		return placeholder(operand(num)) + "/" + placeholder(operand(den))
	case "sqrt":
		return "√" + placeholder(operand(p.argument()))
	}
	if s, ok := symbols[name]; ok {
		return s
	}
	return name
}

// operand parenthesizes compound expressions so a/b and √x stay unambiguous.
func operand(s string) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) > 1 && strings.ContainsAny(s, " +-=·×/") {
		return "(" + s + ")"
	}
	return s
}

// placeholder stands in for a missing macro argument.
func placeholder(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

func script(s string, table map[rune]rune, marker string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return marker
	}
	var b strings.Builder
	for _, r := range s {
		m, ok := table[r]
		if !ok {
			if len([]rune(s)) == 1 {
				return marker + s
			}
			return marker + "(" + s + ")"
		}
		b.WriteRune(m)
	}
	return b.String()
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
