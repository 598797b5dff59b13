package dependencyupdate

import (
	"strings"

	"github.com/temirov/depupdate/internal/packagemanager"
	"github.com/temirov/depupdate/internal/pullrequest"
)

const (
	configurationBaseBranchKeyConstant        = "base_branch"
	configurationHeadBranchKeyConstant        = "head_branch"
	configurationWorkingDirectoryKeyConstant  = "working_directory"
	configurationDebugKeyConstant             = "debug"
	configurationEcosystemKeyConstant         = "ecosystem"
	configurationExecutableKeyConstant        = "executable"
	configurationUpdateArgumentsKeyConstant   = "update_arguments"
	configurationManifestFilesKeyConstant     = "manifest_files"
	configurationRemoteKeyConstant            = "remote"
	configurationRepositoryKeyConstant        = "repository"
	configurationPullRequestClientKeyConstant = "pull_request_client"
	configurationAPIURLKeyConstant            = "api_url"
	configurationCommitterNameKeyConstant     = "committer_name"
	configurationCommitterEmailKeyConstant    = "committer_email"
	configurationKeySeparatorConstant         = "."
)

// CommandConfiguration captures configuration values for the update command.
// The token is never read from configuration files; it comes from flags or the environment.
type CommandConfiguration struct {
	BaseBranch        string   `mapstructure:"base_branch"`
	HeadBranch        string   `mapstructure:"head_branch"`
	WorkingDirectory  string   `mapstructure:"working_directory"`
	Debug             bool     `mapstructure:"debug"`
	Ecosystem         string   `mapstructure:"ecosystem"`
	Executable        string   `mapstructure:"executable"`
	UpdateArguments   []string `mapstructure:"update_arguments"`
	ManifestFiles     []string `mapstructure:"manifest_files"`
	RemoteName        string   `mapstructure:"remote"`
	Repository        string   `mapstructure:"repository"`
	PullRequestClient string   `mapstructure:"pull_request_client"`
	APIURL            string   `mapstructure:"api_url"`
	CommitterName     string   `mapstructure:"committer_name"`
	CommitterEmail    string   `mapstructure:"committer_email"`
}

// DefaultCommandConfiguration provides baseline configuration values for the update command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		BaseBranch:        "",
		HeadBranch:        "",
		WorkingDirectory:  "",
		Debug:             false,
		Ecosystem:         string(packagemanager.DefaultEcosystem),
		Executable:        "",
		UpdateArguments:   nil,
		ManifestFiles:     nil,
		RemoteName:        DefaultRemoteName,
		Repository:        "",
		PullRequestClient: string(pullrequest.BackendAPI),
		APIURL:            "",
		CommitterName:     DefaultCommitterName,
		CommitterEmail:    DefaultCommitterEmail,
	}
}

// DefaultConfigurationValues produces Viper defaults for the update command under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationBaseBranchKeyConstant:        defaults.BaseBranch,
		prefix + configurationHeadBranchKeyConstant:        defaults.HeadBranch,
		prefix + configurationWorkingDirectoryKeyConstant:  defaults.WorkingDirectory,
		prefix + configurationDebugKeyConstant:             defaults.Debug,
		prefix + configurationEcosystemKeyConstant:         defaults.Ecosystem,
		prefix + configurationExecutableKeyConstant:        defaults.Executable,
		prefix + configurationUpdateArgumentsKeyConstant:   defaults.UpdateArguments,
		prefix + configurationManifestFilesKeyConstant:     defaults.ManifestFiles,
		prefix + configurationRemoteKeyConstant:            defaults.RemoteName,
		prefix + configurationRepositoryKeyConstant:        defaults.Repository,
		prefix + configurationPullRequestClientKeyConstant: defaults.PullRequestClient,
		prefix + configurationAPIURLKeyConstant:            defaults.APIURL,
		prefix + configurationCommitterNameKeyConstant:     defaults.CommitterName,
		prefix + configurationCommitterEmailKeyConstant:    defaults.CommitterEmail,
	}
}

// Sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.BaseBranch = strings.TrimSpace(configuration.BaseBranch)
	sanitized.HeadBranch = strings.TrimSpace(configuration.HeadBranch)
	sanitized.WorkingDirectory = strings.TrimSpace(configuration.WorkingDirectory)
	sanitized.Ecosystem = strings.ToLower(strings.TrimSpace(configuration.Ecosystem))
	sanitized.Executable = strings.TrimSpace(configuration.Executable)
	sanitized.UpdateArguments = trimValues(configuration.UpdateArguments)
	sanitized.ManifestFiles = trimValues(configuration.ManifestFiles)
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.PullRequestClient = strings.ToLower(strings.TrimSpace(configuration.PullRequestClient))
	sanitized.APIURL = strings.TrimSpace(configuration.APIURL)
	sanitized.CommitterName = strings.TrimSpace(configuration.CommitterName)
	sanitized.CommitterEmail = strings.TrimSpace(configuration.CommitterEmail)
	return sanitized
}

func trimValues(rawValues []string) []string {
	if len(rawValues) == 0 {
		return nil
	}
	trimmedValues := make([]string, 0, len(rawValues))
	for _, rawValue := range rawValues {
		trimmedValue := strings.TrimSpace(rawValue)
		if len(trimmedValue) == 0 {
			continue
		}
		trimmedValues = append(trimmedValues, trimmedValue)
	}
	return trimmedValues
}
