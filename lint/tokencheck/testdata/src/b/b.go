package b

import "github.com/SergeiSkv/NullGuard/jsr305"

func Parse(tokens []string) *jsr305.Policy { return jsr305.FromArgs(tokens) }

func use() {
	_ = Parse([]string{"strict", "loose"}) // want `token is skipped: unknown report level "loose"`
}
