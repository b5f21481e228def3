package layout

import "path/filepath"

// Directory suffixes relative to the repository root.
const (
	SpecKitDirectorySuffix         = ".spec-kit"
	ScriptsDirectorySuffix         = ".spec-kit/scripts"
	TemplatesDirectorySuffix       = ".spec-kit/templates"
	DocsDirectorySuffix            = "docs"
	MemoryDirectorySuffix          = "docs/memory"
	SpecsDirectorySuffix           = "specs"
	LegacyScriptsDirectorySuffix   = "scripts"
	LegacyTemplatesDirectorySuffix = "templates"
	LegacyMemoryDirectorySuffix    = "memory"
)

// Environment variable names published for shell consumers.
const (
	RepositoryRootEnvironmentName           = "REPO_ROOT"
	SpecKitDirectoryEnvironmentName         = "SPEC_KIT_DIR"
	ScriptsDirectoryEnvironmentName         = "SCRIPTS_DIR"
	TemplatesDirectoryEnvironmentName       = "TEMPLATES_DIR"
	DocsDirectoryEnvironmentName            = "DOCS_DIR"
	MemoryDirectoryEnvironmentName          = "MEMORY_DIR"
	SpecsDirectoryEnvironmentName           = "SPECS_DIR"
	LegacyScriptsDirectoryEnvironmentName   = "LEGACY_SCRIPTS_DIR"
	LegacyTemplatesDirectoryEnvironmentName = "LEGACY_TEMPLATES_DIR"
	LegacyMemoryDirectoryEnvironmentName    = "LEGACY_MEMORY_DIR"
)

// Directories holds the repository root and every path derived from it.
type Directories struct {
	RepositoryRoot           string `json:"repo_root" yaml:"repo_root" toml:"repo_root"`
	SpecKitDirectory         string `json:"spec_kit_dir" yaml:"spec_kit_dir" toml:"spec_kit_dir"`
	ScriptsDirectory         string `json:"scripts_dir" yaml:"scripts_dir" toml:"scripts_dir"`
	TemplatesDirectory       string `json:"templates_dir" yaml:"templates_dir" toml:"templates_dir"`
	DocsDirectory            string `json:"docs_dir" yaml:"docs_dir" toml:"docs_dir"`
	MemoryDirectory          string `json:"memory_dir" yaml:"memory_dir" toml:"memory_dir"`
	SpecsDirectory           string `json:"specs_dir" yaml:"specs_dir" toml:"specs_dir"`
	LegacyScriptsDirectory   string `json:"legacy_scripts_dir" yaml:"legacy_scripts_dir" toml:"legacy_scripts_dir"`
	LegacyTemplatesDirectory string `json:"legacy_templates_dir" yaml:"legacy_templates_dir" toml:"legacy_templates_dir"`
	LegacyMemoryDirectory    string `json:"legacy_memory_dir" yaml:"legacy_memory_dir" toml:"legacy_memory_dir"`
}

// EnvironmentEntry is a single published name/value pair.
type EnvironmentEntry struct {
	Name  string
	Value string
}

// DeriveDirectories joins the repository root with every fixed suffix. It
// never touches the filesystem.
func DeriveDirectories(repositoryRoot string) Directories {
	return Directories{
		RepositoryRoot:           repositoryRoot,
		SpecKitDirectory:         joinSuffix(repositoryRoot, SpecKitDirectorySuffix),
		ScriptsDirectory:         joinSuffix(repositoryRoot, ScriptsDirectorySuffix),
		TemplatesDirectory:       joinSuffix(repositoryRoot, TemplatesDirectorySuffix),
		DocsDirectory:            joinSuffix(repositoryRoot, DocsDirectorySuffix),
		MemoryDirectory:          joinSuffix(repositoryRoot, MemoryDirectorySuffix),
		SpecsDirectory:           joinSuffix(repositoryRoot, SpecsDirectorySuffix),
		LegacyScriptsDirectory:   joinSuffix(repositoryRoot, LegacyScriptsDirectorySuffix),
		LegacyTemplatesDirectory: joinSuffix(repositoryRoot, LegacyTemplatesDirectorySuffix),
		LegacyMemoryDirectory:    joinSuffix(repositoryRoot, LegacyMemoryDirectorySuffix),
	}
}

// MigratedDirectories lists the directories whose joint presence marks a
// migrated layout. The memory directory lives under docs and is not part of it.
func (directories Directories) MigratedDirectories() []string {
	return []string{
		directories.SpecKitDirectory,
		directories.ScriptsDirectory,
		directories.TemplatesDirectory,
	}
}

// Environment returns the published values in a stable order.
func (directories Directories) Environment() []EnvironmentEntry {
	return []EnvironmentEntry{
		{Name: RepositoryRootEnvironmentName, Value: directories.RepositoryRoot},
		{Name: SpecKitDirectoryEnvironmentName, Value: directories.SpecKitDirectory},
		{Name: ScriptsDirectoryEnvironmentName, Value: directories.ScriptsDirectory},
		{Name: TemplatesDirectoryEnvironmentName, Value: directories.TemplatesDirectory},
		{Name: DocsDirectoryEnvironmentName, Value: directories.DocsDirectory},
		{Name: MemoryDirectoryEnvironmentName, Value: directories.MemoryDirectory},
		{Name: SpecsDirectoryEnvironmentName, Value: directories.SpecsDirectory},
		{Name: LegacyScriptsDirectoryEnvironmentName, Value: directories.LegacyScriptsDirectory},
		{Name: LegacyTemplatesDirectoryEnvironmentName, Value: directories.LegacyTemplatesDirectory},
		{Name: LegacyMemoryDirectoryEnvironmentName, Value: directories.LegacyMemoryDirectory},
	}
}

func joinSuffix(repositoryRoot string, suffix string) string {
	return filepath.Join(repositoryRoot, filepath.FromSlash(suffix))
}
