package packagemanager

import (
	"fmt"
	"sort"
	"strings"
)

const (
	unsupportedEcosystemTemplateConstant = "unsupported ecosystem %q (expected one of: %s)"
	ecosystemListSeparatorConstant       = ", "
	packageManifestFileNameConstant      = "package.json"
)

// EcosystemName identifies a supported package manager family.
type EcosystemName string

// Supported ecosystems.
const (
	EcosystemNPM  EcosystemName = "npm"
	EcosystemYarn EcosystemName = "yarn"
	EcosystemPNPM EcosystemName = "pnpm"
	EcosystemGo   EcosystemName = "gomod"
)

// DefaultEcosystem is used when no ecosystem is configured.
const DefaultEcosystem = EcosystemNPM

// Ecosystem describes how to update dependencies for one package manager and which files record them.
type Ecosystem struct {
	Name          EcosystemName
	DisplayName   string
	Executable    string
	UpdateSteps   [][]string
	ManifestFiles []string
}

// Overrides replaces parts of a built-in ecosystem profile. Empty fields keep the built-in value.
type Overrides struct {
	Executable      string
	UpdateArguments []string
	ManifestFiles   []string
}

// UnsupportedEcosystemError reports an unknown ecosystem name.
type UnsupportedEcosystemError struct {
	Name string
}

// Error describes the unsupported ecosystem.
func (ecosystemError UnsupportedEcosystemError) Error() string {
	return fmt.Sprintf(unsupportedEcosystemTemplateConstant, ecosystemError.Name, strings.Join(SupportedEcosystems(), ecosystemListSeparatorConstant))
}

var builtInEcosystems = map[EcosystemName]Ecosystem{
	EcosystemNPM: {
		Name:          EcosystemNPM,
		DisplayName:   "NPM",
		Executable:    "npm",
		UpdateSteps:   [][]string{{"update"}},
		ManifestFiles: []string{packageManifestFileNameConstant, "package-lock.json"},
	},
	EcosystemYarn: {
		Name:          EcosystemYarn,
		DisplayName:   "Yarn",
		Executable:    "yarn",
		UpdateSteps:   [][]string{{"upgrade"}},
		ManifestFiles: []string{packageManifestFileNameConstant, "yarn.lock"},
	},
	EcosystemPNPM: {
		Name:          EcosystemPNPM,
		DisplayName:   "pnpm",
		Executable:    "pnpm",
		UpdateSteps:   [][]string{{"update"}},
		ManifestFiles: []string{packageManifestFileNameConstant, "pnpm-lock.yaml"},
	},
	EcosystemGo: {
		Name:          EcosystemGo,
		DisplayName:   "Go module",
		Executable:    "go",
		UpdateSteps:   [][]string{{"get", "-u", "./..."}, {"mod", "tidy"}},
		ManifestFiles: []string{"go.mod", "go.sum"},
	},
}

// SupportedEcosystems lists the built-in ecosystem names with the default first.
func SupportedEcosystems() []string {
	names := make([]string, 0, len(builtInEcosystems))
	for name := range builtInEcosystems {
		if name != DefaultEcosystem {
			names = append(names, string(name))
		}
	}
	sort.Strings(names)
	return append([]string{string(DefaultEcosystem)}, names...)
}

// LookupEcosystem returns a copy of the built-in profile for name. An empty name selects DefaultEcosystem.
func LookupEcosystem(name string) (Ecosystem, error) {
	normalizedName := EcosystemName(strings.ToLower(strings.TrimSpace(name)))
	if len(normalizedName) == 0 {
		normalizedName = DefaultEcosystem
	}

	ecosystem, exists := builtInEcosystems[normalizedName]
	if !exists {
		return Ecosystem{}, UnsupportedEcosystemError{Name: name}
	}
	return ecosystem.clone(), nil
}

// WithOverrides returns a copy of the ecosystem with the non-empty override fields applied.
// UpdateArguments replaces all built-in update steps with a single step.
func (ecosystem Ecosystem) WithOverrides(overrides Overrides) Ecosystem {
	overridden := ecosystem.clone()
	if executable := strings.TrimSpace(overrides.Executable); len(executable) > 0 {
		overridden.Executable = executable
	}
	if updateArguments := compactValues(overrides.UpdateArguments); len(updateArguments) > 0 {
		overridden.UpdateSteps = [][]string{updateArguments}
	}
	if manifestFiles := compactValues(overrides.ManifestFiles); len(manifestFiles) > 0 {
		overridden.ManifestFiles = manifestFiles
	}
	return overridden
}

func (ecosystem Ecosystem) clone() Ecosystem {
	cloned := ecosystem
	cloned.UpdateSteps = make([][]string, 0, len(ecosystem.UpdateSteps))
	for _, step := range ecosystem.UpdateSteps {
		cloned.UpdateSteps = append(cloned.UpdateSteps, append([]string{}, step...))
	}
	cloned.ManifestFiles = append([]string{}, ecosystem.ManifestFiles...)
	return cloned
}

func compactValues(values []string) []string {
	compacted := make([]string, 0, len(values))
	for _, value := range values {
		if trimmedValue := strings.TrimSpace(value); len(trimmedValue) > 0 {
			compacted = append(compacted, trimmedValue)
		}
	}
	return compacted
}
