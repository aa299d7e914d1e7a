// Package jsr305 holds the report-level policy applied to JSR-305 nullability
// annotations and the parser for its command-line tokens.
//
// Token grammar, one token per flag value:
//
//	ignore | warn | strict          sets the global level
//	under-migration:<level>         sets the level for annotations marked @UnderMigration
//	@<qualified.Name>:<level>       overrides the level for a single annotation
//
// Malformed tokens are skipped without an error. Use ValidateToken to find out
// why a token would be skipped.
package jsr305

import (
	"maps"
	"slices"
	"strings"

	"go.uber.org/atomic"

	"github.com/SergeiSkv/NullGuard/models"
)

const (
	userPrefix      = "@"
	migrationPrefix = "under-migration"
	separator       = ":"
)

// Policy is an immutable JSR-305 report-level state.
type Policy struct {
	global    models.ReportLevel
	migration *models.ReportLevel
	user      map[string]models.ReportLevel

	description atomic.Pointer[[]string]
}

var (
	// Default is the state used when no tokens are given.
	Default = New(models.ReportLevelWarn, nil, nil)

	// Disabled turns JSR-305 handling off. FromArgs returns this exact pointer
	// for any token list that folds to the same value.
	Disabled = New(models.ReportLevelIgnore, levelPtr(models.ReportLevelIgnore), nil)

	// Strict enforces every annotation, including the ones under migration.
	Strict = New(models.ReportLevelStrict, levelPtr(models.ReportLevelStrict), nil)
)

// New builds a policy. The user map is copied.
func New(global models.ReportLevel, migration *models.ReportLevel, user map[string]models.ReportLevel) *Policy {
	p := &Policy{global: global, user: make(map[string]models.ReportLevel, len(user))}
	if migration != nil {
		p.migration = levelPtr(*migration)
	}
	maps.Copy(p.user, user)
	return p
}

// FromArgs folds tokens left to right into a policy. For conflicting tokens of
// the same kind the last valid one wins.
func FromArgs(args []string) *Policy {
	global := models.ReportLevelWarn
	var migration *models.ReportLevel
	user := make(map[string]models.ReportLevel)

	for _, item := range args {
		switch {
		case strings.HasPrefix(item, userPrefix):
			parts := strings.Split(item[len(userPrefix):], separator)
			if len(parts) != 2 {
				continue
			}
			level, ok := models.FindReportLevel(parts[1])
			if !ok {
				continue
			}
			user[parts[0]] = level
		case strings.HasPrefix(item, migrationPrefix):
			parts := strings.Split(item, separator)
			if len(parts) != 2 {
				continue
			}
			level, ok := models.FindReportLevel(parts[1])
			if !ok {
				continue
			}
			migration = levelPtr(level)
		default:
			level, ok := models.FindReportLevel(item)
			if !ok {
				continue
			}
			global = level
		}
	}

	result := &Policy{global: global, migration: migration, user: user}
	if result.Equal(Disabled) {
		return Disabled
	}
	return result
}

// Global is the level used when no more specific rule matches.
func (p *Policy) Global() models.ReportLevel {
	return p.global
}

// Migration is the level forced on annotations marked @UnderMigration.
// ok is false when the annotation's own status applies.
func (p *Policy) Migration() (level models.ReportLevel, ok bool) {
	if p.migration == nil {
		return models.ReportLevelIgnore, false
	}
	return *p.migration, true
}

// Override returns the user level for a qualified annotation name.
func (p *Policy) Override(name string) (models.ReportLevel, bool) {
	level, ok := p.user[name]
	return level, ok
}

// Overrides returns a copy of the per-annotation levels.
func (p *Policy) Overrides() map[string]models.ReportLevel {
	return maps.Clone(p.user)
}

// IsDisabled reports whether p equals Disabled, whether or not it is the
// singleton itself.
func (p *Policy) IsDisabled() bool {
	return p == Disabled || p.Equal(Disabled)
}

// Equal compares policies by value.
func (p *Policy) Equal(other *Policy) bool {
	if p == other {
		return true
	}
	if p == nil || other == nil {
		return false
	}
	if p.global != other.global {
		return false
	}
	if (p.migration == nil) != (other.migration == nil) {
		return false
	}
	if p.migration != nil && *p.migration != *other.migration {
		return false
	}
	return maps.Equal(p.user, other.user)
}

// Describe returns canonical tokens that FromArgs turns back into an equal
// policy: the global code, the migration token if set, then one token per
// override sorted by annotation name. The result is computed once.
func (p *Policy) Describe() []string {
	if cached := p.description.Load(); cached != nil {
		return slices.Clone(*cached)
	}

	computed := p.describe()
	// Concurrent callers compute identical tokens, the first store wins.
	p.description.CompareAndSwap(nil, &computed)
	return slices.Clone(*p.description.Load())
}

func (p *Policy) describe() []string {
	result := make([]string, 0, 2+len(p.user))
	result = append(result, p.global.String())

	if p.migration != nil {
		result = append(result, migrationPrefix+separator+p.migration.String())
	}

	for _, name := range slices.Sorted(maps.Keys(p.user)) {
		result = append(result, userPrefix+name+separator+p.user[name].String())
	}
	return result
}

func (p *Policy) String() string {
	return strings.Join(p.Describe(), " ")
}

func levelPtr(level models.ReportLevel) *models.ReportLevel {
	return &level
}
