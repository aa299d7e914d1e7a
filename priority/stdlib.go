// Package priority decides which kotlin-stdlib-jre7/8 extensions must lose
// overload resolution against their kotlin-stdlib counterparts.
package priority

import (
	"github.com/SergeiSkv/NullGuard/fqname"
	"github.com/SergeiSkv/NullGuard/models"
)

// sinceKotlin11 is the version string of language version 1.1.
const sinceKotlin11 = "1.1"

var (
	kotlin            = models.BuiltInFq
	kotlinText        = kotlin.Child("text")
	kotlinCollections = kotlin.Child("collections")
	kotlinStreams     = kotlin.Child("streams")

	autoCloseable        = fqname.New("java.lang.AutoCloseable")
	matchGroupCollection = fqname.New("kotlin.text.MatchGroupCollection")
	kotlinMap            = fqname.New("kotlin.collections.Map")
	kotlinMutableMap     = fqname.New("kotlin.collections.MutableMap")
)

const (
	nameUse          = "use"
	nameGet          = "get"
	nameGetOrDefault = "getOrDefault"
	nameRemove       = "remove"
)

// IsLowPriorityFromStdlibJre7Or8 reports whether c is one of the legacy jre7/8
// extensions introduced in Kotlin 1.1 that overload resolution must rank lower:
//
//	kotlin             T.use() where T's single bound is java.lang.AutoCloseable
//	kotlin.text        MatchGroupCollection.get(name: String)
//	kotlin.collections Map.getOrDefault, MutableMap.remove(key, value)
//	kotlin.streams     every extension
func IsLowPriorityFromStdlibJre7Or8(c *models.Callable) bool {
	if c == nil || c.Container.Kind != models.ContainerPackage {
		return false
	}
	packageFqName := c.Container.FqName
	if !packageFqName.StartsWith(kotlin.String()) {
		return false
	}

	if c.ExtensionReceiver == nil || c.ExtensionReceiver.Declaration == nil {
		return false
	}
	receiver := c.ExtensionReceiver.Declaration

	switch packageFqName {
	case kotlin:
		if c.Name != nameUse {
			return false
		}
		if !hasSingleBound(receiver, autoCloseable) {
			return false
		}
	case kotlinText:
		if c.Name != nameGet {
			return false
		}
		if !HasFqName(receiver, matchGroupCollection) {
			return false
		}
		if len(c.ValueParameters) != 1 || !models.IsStringOrNullableString(c.ValueParameters[0].Type) {
			return false
		}
	case kotlinCollections:
		if c.Name != nameGetOrDefault && !(c.Name == nameRemove && len(c.ValueParameters) == 2) {
			return false
		}
		if !HasFqName(receiver, kotlinMap) && !HasFqName(receiver, kotlinMutableMap) {
			return false
		}
	case kotlinStreams:
		// every extension in kotlin.streams shipped with jre8 only
	default:
		return false
	}

	version, ok := sinceKotlinVersion(c)
	if !ok {
		return false
	}
	return version == sinceKotlin11
}

// HasFqName checks both the short name and the full name of a classifier.
func HasFqName(c *models.Classifier, fq fqname.FqName) bool {
	if c == nil {
		return false
	}
	return c.Name == fq.ShortName() && c.FqName == fq
}

func hasSingleBound(receiver *models.Classifier, bound fqname.FqName) bool {
	if receiver.Kind != models.ClassifierTypeParameter || len(receiver.UpperBounds) != 1 {
		return false
	}
	return HasFqName(receiver.UpperBounds[0].Declaration, bound)
}

// sinceKotlinVersion extracts the single string argument of @SinceKotlin.
func sinceKotlinVersion(c *models.Callable) (string, bool) {
	ann, ok := c.FindAnnotation(models.FqSince)
	if !ok || len(ann.Arguments) != 1 {
		return "", false
	}
	version, ok := ann.Arguments[0].Value.(models.StringValue)
	if !ok {
		return "", false
	}
	return string(version), true
}
