package sync

import (
	"fmt"
	"strings"

	"github.com/localeforge/localeforge/internal/client/config"
	"github.com/localeforge/localeforge/internal/client/remote"
)

// ValidationResult accumulates blocking errors and non-blocking warnings
// so that all compatibility problems are reported together instead of
// first-failure-wins.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

func (r *ValidationResult) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// CanSync reports whether the operation may proceed. Warnings never block.
func (r *ValidationResult) CanSync() bool {
	return len(r.Errors) == 0
}

// Validator is the pre-flight compatibility gate for push, pull and
// link. When an operation could silently apply the wrong format or
// wrong source language it fails closed with a blocking error.
type Validator struct {
	// DetectFormat is injected so tests can substitute synthetic
	// detection without touching the filesystem.
	DetectFormat func(projectDir string) (string, error)
}

func NewValidator() *Validator {
	return &Validator{DetectFormat: DetectLocalFormat}
}

// ValidateForPush gates a push of local files to the remote project.
func (v *Validator) ValidateForPush(projectDir string, cfg *config.Config, project *remote.Project) *ValidationResult {
	result := &ValidationResult{}

	detected, err := v.DetectFormat(projectDir)
	if err != nil {
		result.AddWarning("could not auto-detect local resource format: %v", err)
		detected = ""
	}

	configured := ""
	if cfg != nil {
		configured = strings.ToLower(cfg.ResourceFormat)
	}

	effective := configured
	if effective == "" {
		effective = detected
	}

	switch {
	case configured != "" && detected != "" && configured != detected:
		// stale or incorrect configuration
		result.AddError("configuration specifies format '%s' but local files appear to be '%s'", configured, detected)
	case configured == "" && detected == "":
		// nothing to validate yet; does not block
		result.AddWarning("no resource format configured and none detected locally")
	}

	v.checkRemoteCompat(result, effective, cfg, project)
	return result
}

// ValidateForPull gates a pull. Local auto-detection is skipped because
// pull is expected to create or overwrite local files; an absent local
// configuration trivially validates.
func (v *Validator) ValidateForPull(cfg *config.Config, project *remote.Project) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	v.checkRemoteCompat(result, strings.ToLower(cfg.ResourceFormat), cfg, project)
	return result
}

// ValidateForLink gates attaching an existing folder to an existing
// remote project for the first time. A folder without resource files is
// always linkable.
func (v *Validator) ValidateForLink(projectDir string, project *remote.Project) *ValidationResult {
	result := &ValidationResult{}

	detected, err := v.DetectFormat(projectDir)
	if err != nil {
		result.AddWarning("could not auto-detect local resource format: %v", err)
		return result
	}
	if detected == "" {
		return result
	}

	remoteFormat := strings.ToLower(project.Format)
	if remoteFormat == "" {
		// unspecified remote projects default to json
		remoteFormat = FormatJSON
	}

	if detected != remoteFormat {
		result.AddError(
			"local files are '%s' but the remote project expects '%s'; create a new remote project with format %s instead",
			detected, remoteFormat, detected)
	}
	return result
}

// checkRemoteCompat applies the format and default-language checks shared
// by push and pull.
func (v *Validator) checkRemoteCompat(result *ValidationResult, effectiveFormat string, cfg *config.Config, project *remote.Project) {
	if project == nil {
		return
	}

	remoteFormat := strings.ToLower(project.Format)
	if remoteFormat == "" {
		// remote declares no format; the API is client-agnostic
		result.AddWarning("remote project declares no resource format, skipping format check")
	} else if effectiveFormat != "" && !strings.EqualFold(effectiveFormat, remoteFormat) {
		result.AddError("Format mismatch: local is '%s' but remote project is '%s'", effectiveFormat, remoteFormat)
	}

	if cfg == nil {
		return
	}
	localLang := cfg.DefaultLanguageCode
	remoteLang := project.DefaultLanguage
	if localLang != "" && remoteLang != "" && !strings.EqualFold(localLang, remoteLang) {
		// a mismatch here would misalign every existing translation baseline
		result.AddError("Default language mismatch: local is '%s' but remote project is '%s'", localLang, remoteLang)
	}
}
