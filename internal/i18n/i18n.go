// Package i18n provides the translated labels of the articles view.
package i18n

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLanguage is used for unknown language codes.
const DefaultLanguage = "en"

//go:embed dictionaries.yaml
var dictionariesYAML []byte

// Dictionary holds the labels for one language.
type Dictionary struct {
	Code           string `yaml:"-"`
	Direction      string `yaml:"direction"`
	LatestArticles string `yaml:"latestArticles"`
	MarketNews     string `yaml:"marketNews"`
	DeepResearch   string `yaml:"deepResearch"`
}

// RTL reports whether the language is written right to left.
func (d Dictionary) RTL() bool {
	return d.Direction == "rtl"
}

var dictionaries map[string]Dictionary

func init() {
	d, err := parse(dictionariesYAML)
	if err != nil {
		panic(fmt.Sprintf("i18n: %v", err))
	}
	dictionaries = d
}

func parse(data []byte) (map[string]Dictionary, error) {
	var raw map[string]Dictionary
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse dictionaries: %w", err)
	}
	if _, ok := raw[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("missing %q dictionary", DefaultLanguage)
	}
	for code, d := range raw {
		d.Code = code
		raw[code] = d
	}
	return raw, nil
}

// Lookup returns the dictionary for code, falling back to English.
func Lookup(code string) Dictionary {
	if d, ok := dictionaries[strings.ToLower(code)]; ok {
		return d
	}
	return dictionaries[DefaultLanguage]
}

// Languages lists the supported language codes.
func Languages() []string {
	codes := make([]string, 0, len(dictionaries))
	for code := range dictionaries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
