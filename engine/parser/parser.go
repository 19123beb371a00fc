// Package parser converts console command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strconv"
	"strings"

	"github.com/nathoo/spellcore/types"
)

var verbAliases = map[string]string{
	// Cast
	"c":     "cast",
	"use":   "cast",
	"spell": "cast",

	// Time
	"t":       "tick",
	"advance": "tick",
	"z":       "wait",
	"idle":    "wait",

	// Cancel
	"stop":      "cancel",
	"interrupt": "cancel",
	"abort":     "cancel",

	// Movement
	"mv":       "move",
	"walk":     "move",
	"go":       "move",
	"teleport": "move",

	// Inspection
	"l":       "look",
	"units":   "look",
	"st":      "status",
	"inspect": "status",
	"x":       "status",
	"book":    "spells",
	"list":    "spells",
}

// prepositions split a cast into spell, unit target and destination.
var prepositions = map[string]bool{
	"on": true, "at": true, "to": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent.
//
//	cast fireball on wolf
//	as wolf cast bite on mage
//	cast blizzard at 10 4 0
//	tick 500
//	move mage 3 4
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// "as <actor> <command...>"
	var actor string
	if words[0] == "as" && len(words) > 2 {
		actor = words[1]
		words = words[2:]
	}

	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	intent := types.Intent{Verb: verb, Actor: actor}
	switch verb {
	case "cast":
		intent.Object, intent.Target, intent.Args = splitCast(rest)
	case "move":
		name, args := splitTrailingNumbers(rest)
		intent.Object = strings.Join(name, " ")
		intent.Args = nonEmpty(args)
	case "tick", "wait":
		intent.Args = nonEmpty(rest)
	default:
		intent.Object = strings.Join(rest, " ")
	}
	return intent
}

// splitCast splits "<spell> [on <unit>] [at x y z]". Coordinates may
// follow either preposition.
func splitCast(words []string) (spell, target string, args []string) {
	i := 0
	for i < len(words) && !prepositions[words[i]] {
		i++
	}
	spell = strings.Join(words[:i], " ")
	for i < len(words) {
		prep := words[i]
		j := i + 1
		for j < len(words) && !prepositions[words[j]] {
			j++
		}
		part := words[i+1 : j]
		name, nums := splitTrailingNumbers(part)
		switch {
		case prep == "at" && len(name) == 0 && len(nums) > 0:
			args = nums
		case len(name) > 0:
			target = strings.Join(name, " ")
			if len(nums) > 0 {
				args = nums
			}
		case len(nums) > 0:
			args = nums
		}
		i = j
	}
	return spell, target, nonEmpty(args)
}

func nonEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

// splitTrailingNumbers separates a name from the numbers that follow it.
func splitTrailingNumbers(words []string) (name, nums []string) {
	i := len(words)
	for i > 0 && isNumber(words[i-1]) {
		i--
	}
	return words[:i], words[i:]
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}
