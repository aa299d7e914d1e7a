package a

import "github.com/SergeiSkv/NullGuard/jsr305"

const misspelled = "warnn"

func policies(dynamic string) {
	_ = jsr305.FromArgs([]string{"strict", "under-migration:warn", "@org.example.Nullable:ignore"})
	_ = jsr305.FromArgs([]string{"stirct"})                 // want `token is skipped: unknown report level`
	_ = jsr305.FromArgs([]string{"@org.example.Nullable"})  // want `token is skipped: malformed jsr305 token`
	_ = jsr305.FromArgs([]string{"under-migration"})        // want `token is skipped: malformed jsr305 token`
	_ = jsr305.FromArgs([]string{"ignore", misspelled})     // want `token is skipped: unknown report level "warnn"`
	_ = jsr305.FromArgs([]string{dynamic, "@a.B:c:strict"}) // want `token is skipped: malformed jsr305 token`
	_ = jsr305.FromArgs(nil)
}

func FromArgs(args []string) []string { return args }

func notThePolicy() {
	_ = FromArgs([]string{"stirct"})
}
