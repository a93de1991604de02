package arith

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultLexicon []byte

// ErrInvalidLexicon is returned for lexicon files that cannot be compiled.
var ErrInvalidLexicon = errors.New("invalid lexicon")

// LexEntry is a lexicon entry as written in YAML.
type LexEntry struct {
	Word      string  `yaml:"word"`
	Category  string  `yaml:"category"`
	Semantics string  `yaml:"semantics"`
	Prob      float64 `yaml:"prob"`
}

// UnaryRule rewrites a complete derivation of category From into To.
type UnaryRule struct {
	From string  `yaml:"from"`
	To   string  `yaml:"to"`
	Prob float64 `yaml:"prob"`
}

// Lexicon is the YAML form of a grammar and its variable domain.
type Lexicon struct {
	Entries []LexEntry  `yaml:"entries"`
	Unary   []UnaryRule `yaml:"unary,omitempty"`
	// Roots maps root categories to probabilities. Empty accepts every
	// category with probability one.
	Roots map[string]float64 `yaml:"roots,omitempty"`
	// Skip is the probability of skipping a word. Zero disables skipping.
	Skip float64 `yaml:"skip,omitempty"`
	// Domain is the prior over values of variables missing from the world.
	Domain []Choice `yaml:"domain,omitempty"`
}

// DefaultLexicon returns the built-in lexicon.
func DefaultLexicon() *Lexicon {
	lex, err := ParseLexicon(defaultLexicon)
	if err != nil {
		panic(err)
	}
	return lex
}

// ParseLexicon decodes a YAML lexicon.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLexicon, err)
	}
	return &lex, nil
}

// LoadLexicon reads a YAML lexicon file.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return ParseLexicon(data)
}

// Marshal encodes the lexicon as YAML.
func (l *Lexicon) Marshal() ([]byte, error) {
	return yaml.Marshal(l)
}

// Lexeme is a compiled lexicon entry. It is the lexicon payload of the
// chart entries a Grammar creates.
type Lexeme struct {
	Words     []string
	Category  *Category
	Semantics Expr
	Prob      float64
}

func (l *Lexeme) String() string {
	return strings.Join(l.Words, " ") + " := " + l.Category.String() + " : " + l.Semantics.String()
}

func (l *Lexicon) compile() ([]*Lexeme, error) {
	out := make([]*Lexeme, 0, len(l.Entries))
	for i, e := range l.Entries {
		words := strings.Fields(strings.ToLower(e.Word))
		if len(words) == 0 {
			return nil, fmt.Errorf("%w: entry %d has no word", ErrInvalidLexicon, i)
		}
		if e.Prob <= 0 {
			return nil, fmt.Errorf("%w: entry %q has probability %v", ErrInvalidLexicon, e.Word, e.Prob)
		}
		cat, err := ParseCategory(e.Category)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %q: %w", ErrInvalidLexicon, e.Word, err)
		}
		sem, err := ParseExpr(e.Semantics)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %q: %w", ErrInvalidLexicon, e.Word, err)
		}
		out = append(out, &Lexeme{Words: words, Category: cat, Semantics: sem, Prob: e.Prob})
	}
	return out, nil
}
