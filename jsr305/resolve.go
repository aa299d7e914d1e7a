package jsr305

import (
	"github.com/SergeiSkv/NullGuard/fqname"
	"github.com/SergeiSkv/NullGuard/models"
)

// Meta-annotations recognized on annotation classes.
var (
	UnderMigrationFqName  = fqname.New("kotlin.annotations.jvm.UnderMigration")
	MigrationStatusFqName = fqname.New("kotlin.annotations.jvm.MigrationStatus")
	NicknameFqName        = fqname.New("javax.annotation.meta.TypeQualifierNickname")
	TypeQualifierFqName   = fqname.New("javax.annotation.meta.TypeQualifier")
)

// BuiltInNullabilityAnnotations are the JSR-305 annotations the compiler
// understands without a nickname.
var BuiltInNullabilityAnnotations = []fqname.FqName{
	fqname.New("javax.annotation.Nonnull"),
	fqname.New("javax.annotation.Nullable"),
	fqname.New("javax.annotation.CheckForNull"),
	fqname.New("javax.annotation.ParametersAreNonnullByDefault"),
}

// Migration describes an @UnderMigration meta-annotation found on an
// annotation class. Known is false when the status entry was not recognized.
type Migration struct {
	Status models.ReportLevel
	Known  bool
}

// MigrationStatusFromEnum maps a MigrationStatus entry name onto a level.
func MigrationStatusFromEnum(entry string) (models.ReportLevel, bool) {
	switch entry {
	case "STRICT":
		return models.ReportLevelStrict, true
	case "WARN":
		return models.ReportLevelWarn, true
	case "IGNORE":
		return models.ReportLevelIgnore, true
	default:
		return models.ReportLevelIgnore, false
	}
}

// MigrationOf reads the @UnderMigration meta-annotation of an annotation
// class. It returns nil when the class is not under migration or the first
// argument is not an enum entry.
func MigrationOf(class *models.AnnotationClass) *Migration {
	if class == nil {
		return nil
	}
	ann, ok := class.FindAnnotation(UnderMigrationFqName)
	if !ok || len(ann.Arguments) == 0 {
		return nil
	}
	value, ok := ann.Arguments[0].Value.(models.EnumValue)
	if !ok {
		return nil
	}
	status, known := MigrationStatusFromEnum(value.Entry)
	return &Migration{Status: status, Known: known}
}

// ResolveCustom returns the level set specifically for an annotation: a user
// override for its name first, then the migration level when the annotation
// class is under migration. ok is false when only the global level applies.
func (p *Policy) ResolveCustom(annotation fqname.FqName, migration *Migration) (level models.ReportLevel, ok bool) {
	if level, ok := p.user[annotation.String()]; ok {
		return level, true
	}
	if migration == nil {
		return models.ReportLevelIgnore, false
	}
	if p.migration != nil {
		return *p.migration, true
	}
	if !migration.Known {
		return models.ReportLevelIgnore, false
	}
	return migration.Status, true
}

// Resolve returns the level applied to declarations carrying the annotation.
func (p *Policy) Resolve(annotation fqname.FqName, migration *Migration) models.ReportLevel {
	if level, ok := p.ResolveCustom(annotation, migration); ok {
		return level
	}
	return p.global
}
