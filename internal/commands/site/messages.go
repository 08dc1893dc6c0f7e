// Package sitecmd defines the site lifecycle commands and their handlers:
// scanning the content tree, applying single-document changes, and producing
// a full static build.
package sitecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	scanContentMessageType    = "lectern.site.scan_content"
	syncDocumentMessageType   = "lectern.site.sync_document"
	removeDocumentMessageType = "lectern.site.remove_document"
	buildSiteMessageType      = "lectern.site.build"
)

// ScanContentCommand triggers a full enumeration of the content root,
// replacing the published state of every discovered document.
type ScanContentCommand struct {
	// Root overrides the configured content root when non-empty.
	Root string `json:"root,omitempty"`
}

// Type implements command.Message.
func (ScanContentCommand) Type() string { return scanContentMessageType }

// Validate implements command.ValidableMessage. A scan has no required
// inputs; the root falls back to configuration.
func (cmd ScanContentCommand) Validate() error { return nil }

// SyncDocumentCommand re-ingests a single source file after a create or
// write.
type SyncDocumentCommand struct {
	// Path is the filesystem path of the changed source file.
	Path string `json:"path"`
}

// Type implements command.Message.
func (SyncDocumentCommand) Type() string { return syncDocumentMessageType }

// Validate ensures the target path is present before handlers execute.
func (cmd SyncDocumentCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(requireNonBlank(
			"lectern.site.sync_document.path_required", "path is required"))),
	)
}

// RemoveDocumentCommand drops the record derived from an unlinked source
// file.
type RemoveDocumentCommand struct {
	// Path is the filesystem path of the removed source file.
	Path string `json:"path"`
}

// Type implements command.Message.
func (RemoveDocumentCommand) Type() string { return removeDocumentMessageType }

// Validate ensures the target path is present before handlers execute.
func (cmd RemoveDocumentCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(requireNonBlank(
			"lectern.site.remove_document.path_required", "path is required"))),
	)
}

// BuildSiteCommand produces the static artifacts (collection data, feeds,
// preview images) under OutputDir.
type BuildSiteCommand struct {
	// OutputDir is the directory the build writes into.
	OutputDir string `json:"output_dir"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate ensures the output directory is present before handlers execute.
func (cmd BuildSiteCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.OutputDir, validation.Required, validation.By(requireNonBlank(
			"lectern.site.build.output_dir_required", "output directory is required"))),
	)
}

func requireNonBlank(code, message string) func(any) error {
	return func(value any) error {
		text, _ := value.(string)
		if strings.TrimSpace(text) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
