package parser

import (
	"reflect"
	"testing"

	"github.com/nathoo/spellcore/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Intent
	}{
		// Empty / whitespace
		{
			name:  "empty string",
			input: "",
			want:  types.Intent{},
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  types.Intent{},
		},

		// Bare verbs
		{
			name:  "look",
			input: "look",
			want:  types.Intent{Verb: "look"},
		},
		{
			name:  "spells",
			input: "spells",
			want:  types.Intent{Verb: "spells"},
		},
		{
			name:  "wait",
			input: "wait",
			want:  types.Intent{Verb: "wait"},
		},

		// Aliases
		{
			name:  "l → look",
			input: "l",
			want:  types.Intent{Verb: "look"},
		},
		{
			name:  "z → wait",
			input: "z",
			want:  types.Intent{Verb: "wait"},
		},
		{
			name:  "stop → cancel",
			input: "stop",
			want:  types.Intent{Verb: "cancel"},
		},
		{
			name:  "x wolf → status wolf",
			input: "x wolf",
			want:  types.Intent{Verb: "status", Object: "wolf"},
		},

		// Cast
		{
			name:  "self cast",
			input: "cast frost armor",
			want:  types.Intent{Verb: "cast", Object: "frost armor"},
		},
		{
			name:  "cast on unit",
			input: "cast fireball on wolf",
			want:  types.Intent{Verb: "cast", Object: "fireball", Target: "wolf"},
		},
		{
			name:  "cast on the unit",
			input: "cast Fireball on the Dire Wolf",
			want:  types.Intent{Verb: "cast", Object: "fireball", Target: "dire wolf"},
		},
		{
			name:  "cast at point",
			input: "cast blizzard at 10 4 0",
			want:  types.Intent{Verb: "cast", Object: "blizzard", Args: []string{"10", "4", "0"}},
		},
		{
			name:  "cast on unit at point",
			input: "cast flamestrike on wolf at 3 -2",
			want:  types.Intent{Verb: "cast", Object: "flamestrike", Target: "wolf", Args: []string{"3", "-2"}},
		},
		{
			name:  "c alias",
			input: "c shadow bolt on imp",
			want:  types.Intent{Verb: "cast", Object: "shadow bolt", Target: "imp"},
		},
		{
			name:  "as actor",
			input: "as wolf cast bite on mage",
			want:  types.Intent{Verb: "cast", Actor: "wolf", Object: "bite", Target: "mage"},
		},

		// Time
		{
			name:  "tick ms",
			input: "tick 500",
			want:  types.Intent{Verb: "tick", Args: []string{"500"}},
		},
		{
			name:  "t alias",
			input: "t 100",
			want:  types.Intent{Verb: "tick", Args: []string{"100"}},
		},

		// Cancel
		{
			name:  "cancel slot",
			input: "cancel channeled",
			want:  types.Intent{Verb: "cancel", Object: "channeled"},
		},
		{
			name:  "as actor cancel",
			input: "as wolf cancel",
			want:  types.Intent{Verb: "cancel", Actor: "wolf"},
		},

		// Move
		{
			name:  "move unit",
			input: "move mage 3 4",
			want:  types.Intent{Verb: "move", Object: "mage", Args: []string{"3", "4"}},
		},
		{
			name:  "move multi word unit",
			input: "mv dire wolf 1.5 2 0",
			want:  types.Intent{Verb: "move", Object: "dire wolf", Args: []string{"1.5", "2", "0"}},
		},
		{
			name:  "move without coordinates",
			input: "move mage",
			want:  types.Intent{Verb: "move", Object: "mage"},
		},

		// Unknown verbs pass through.
		{
			name:  "unknown verb",
			input: "dance wildly",
			want:  types.Intent{Verb: "dance", Object: "wildly"},
		},
		{
			name:  "bare as is a verb",
			input: "as wolf",
			want:  types.Intent{Verb: "as", Object: "wolf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
