package classifier

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// FallbackCategory is assigned when no rule matches
const FallbackCategory = "Others"

// ErrUnknownAuthor is returned when classification is requested for an
// author absent from the watchlist
var ErrUnknownAuthor = errors.New("author not in watchlist")

// Rule is one ordered watchlist entry: first matching pattern wins
type Rule struct {
	Pattern *regexp.Regexp
	Label   string
}

// ruleEntry is the on-disk shape of a rule
type ruleEntry struct {
	CategoryRegex string `yaml:"category_regex"`
	CategoryName  string `yaml:"category_name"`
}

// Classifier maps (author, text) to a category label using per-author
// ordered regex rules. Immutable once loaded; safe to share.
type Classifier struct {
	rules   map[string][]Rule
	authors []string
}

// Load reads the watchlist file and compiles every rule. The yaml document
// is walked node by node so author order is preserved; a map decode would
// lose it.
func Load(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist: %w", err)
	}
	return Parse(data)
}

// Parse builds a classifier from raw watchlist yaml
func Parse(data []byte) (*Classifier, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse watchlist: %w", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("watchlist must be a mapping of author to rules")
	}

	root := doc.Content[0]
	c := &Classifier{rules: make(map[string][]Rule)}

	for i := 0; i < len(root.Content); i += 2 {
		author := root.Content[i].Value

		var entries []ruleEntry
		if err := root.Content[i+1].Decode(&entries); err != nil {
			return nil, fmt.Errorf("invalid rules for author %q: %w", author, err)
		}

		rules := make([]Rule, 0, len(entries))
		for _, entry := range entries {
			pattern, err := regexp.Compile("(?i)" + entry.CategoryRegex)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q for author %q: %w", entry.CategoryRegex, author, err)
			}
			rules = append(rules, Rule{Pattern: pattern, Label: entry.CategoryName})
		}

		c.rules[author] = rules
		c.authors = append(c.authors, author)
	}

	return c, nil
}

// Authors returns the configured author handles in watchlist order
func (c *Classifier) Authors() []string {
	out := make([]string, len(c.authors))
	copy(out, c.authors)
	return out
}

// Classify returns the label of the first rule whose pattern is found
// anywhere in text, or FallbackCategory when none match
func (c *Classifier) Classify(author, text string) (string, error) {
	rules, ok := c.rules[author]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAuthor, author)
	}

	for _, rule := range rules {
		if rule.Pattern.MatchString(text) {
			return rule.Label, nil
		}
	}
	return FallbackCategory, nil
}
