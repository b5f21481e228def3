package layout

import (
	"fmt"
	"strings"
)

const (
	variantLegacyStringConstant          = "legacy"
	variantMigratedStringConstant        = "migrated"
	kindScriptsStringConstant            = "scripts"
	kindTemplatesStringConstant          = "templates"
	kindMemoryStringConstant             = "memory"
	unsupportedKindErrorTemplateConstant = "unsupported directory kind %q (expected one of %s)"
	kindListSeparatorConstant            = ", "
)

// Variant identifies which generation of the directory layout is on disk.
type Variant string

// Supported layout variants.
const (
	VariantLegacy   Variant = Variant(variantLegacyStringConstant)
	VariantMigrated Variant = Variant(variantMigratedStringConstant)
)

// VariantFor maps a migration status to a layout variant.
func VariantFor(migrated bool) Variant {
	if migrated {
		return VariantMigrated
	}
	return VariantLegacy
}

// DirectoryKind identifies a directory that exists in both layouts.
type DirectoryKind string

// Directory kinds with a legacy and a migrated location.
const (
	DirectoryKindScripts   DirectoryKind = DirectoryKind(kindScriptsStringConstant)
	DirectoryKindTemplates DirectoryKind = DirectoryKind(kindTemplatesStringConstant)
	DirectoryKindMemory    DirectoryKind = DirectoryKind(kindMemoryStringConstant)
)

// UnsupportedDirectoryKindError reports a kind outside the lookup table.
type UnsupportedDirectoryKindError struct {
	Kind string
}

// Error describes the unsupported kind.
func (kindError UnsupportedDirectoryKindError) Error() string {
	kindNames := make([]string, 0, len(directoryKinds))
	for _, kind := range directoryKinds {
		kindNames = append(kindNames, string(kind))
	}
	return fmt.Sprintf(unsupportedKindErrorTemplateConstant, kindError.Kind, strings.Join(kindNames, kindListSeparatorConstant))
}

type directorySelector func(Directories) string

var directoryKinds = []DirectoryKind{DirectoryKindScripts, DirectoryKindTemplates, DirectoryKindMemory}

var directoryLookup = map[Variant]map[DirectoryKind]directorySelector{
	VariantMigrated: {
		DirectoryKindScripts:   func(directories Directories) string { return directories.ScriptsDirectory },
		DirectoryKindTemplates: func(directories Directories) string { return directories.TemplatesDirectory },
		DirectoryKindMemory:    func(directories Directories) string { return directories.MemoryDirectory },
	},
	VariantLegacy: {
		DirectoryKindScripts:   func(directories Directories) string { return directories.LegacyScriptsDirectory },
		DirectoryKindTemplates: func(directories Directories) string { return directories.LegacyTemplatesDirectory },
		DirectoryKindMemory:    func(directories Directories) string { return directories.LegacyMemoryDirectory },
	},
}

// DirectoryKinds lists every supported directory kind.
func DirectoryKinds() []DirectoryKind {
	return append([]DirectoryKind{}, directoryKinds...)
}

// ParseDirectoryKind converts user input into a DirectoryKind.
func ParseDirectoryKind(value string) (DirectoryKind, error) {
	normalized := DirectoryKind(strings.ToLower(strings.TrimSpace(value)))
	for _, kind := range directoryKinds {
		if kind == normalized {
			return kind, nil
		}
	}
	return "", UnsupportedDirectoryKindError{Kind: value}
}

// Select returns the directory of the requested kind for the variant. Unknown
// variants are treated as legacy.
func (directories Directories) Select(variant Variant, kind DirectoryKind) (string, error) {
	selectors, variantKnown := directoryLookup[variant]
	if !variantKnown {
		selectors = directoryLookup[VariantLegacy]
	}
	selector, kindKnown := selectors[kind]
	if !kindKnown {
		return "", UnsupportedDirectoryKindError{Kind: string(kind)}
	}
	return selector(directories), nil
}
