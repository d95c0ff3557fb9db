// ABOUTME: Local request validation before anything is sent to the Gateway
// ABOUTME: Uses go-playground/validator struct tags on request types

package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MinPoolSize = 1
	MaxPoolSize = 20

	defaultScriptVersion = "1.0"
	defaultScriptAuthor  = "Unknown"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// SaveScriptRequest is the body of POST /scripts/save
type SaveScriptRequest struct {
	Name        string `json:"name" validate:"required,max=255,excludesall=/\\"`
	Code        string `json:"code"`
	Description string `json:"description" validate:"max=4096"`
	Author      string `json:"author" validate:"max=255"`
	FolderPath  string `json:"folderPath" validate:"max=1024"`
	Version     string `json:"version" validate:"max=32"`
}

// withDefaults fills in the author and version the Gateway would otherwise store empty
func (r SaveScriptRequest) withDefaults() SaveScriptRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.FolderPath = strings.Trim(strings.TrimSpace(r.FolderPath), "/")
	if strings.TrimSpace(r.Author) == "" {
		r.Author = defaultScriptAuthor
	}
	if strings.TrimSpace(r.Version) == "" {
		r.Version = defaultScriptVersion
	}
	return r
}

type poolSizeRequest struct {
	Size int `json:"size" validate:"min=1,max=20"`
}

type shellCommandRequest struct {
	Command string `json:"command" validate:"required"`
}

type shellSessionRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Command   string `json:"command,omitempty"`
}

// validationError flattens validator output into one readable message
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", strings.ToLower(fe.Field()), fe.Param()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", strings.ToLower(fe.Field()), fe.Param()))
		case "excludesall":
			msgs = append(msgs, fmt.Sprintf("%s must not contain any of %q", strings.ToLower(fe.Field()), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
