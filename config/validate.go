package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/lukman83/wbops/internal/apperr"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report the environment variable instead of the Go field name.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
}

func missing(key string) error {
	return &apperr.ConfigurationError{Key: key}
}

// ValidateS3 checks that every bucket setting is present.
func (c *Config) ValidateS3() error {
	return validateStruct(c.Storage.S3)
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "local":
		if c.Storage.LocalRoot == "" {
			return missing("WBOPS_LOCAL_ROOT")
		}
	case "s3":
		if err := c.ValidateS3(); err != nil {
			return err
		}
	default:
		return &apperr.ConfigurationError{
			Key:    "WBOPS_STORAGE",
			Reason: fmt.Sprintf("unknown backend %q, want local or s3", c.Storage.Backend),
		}
	}
	if c.APIBaseURL == "" {
		return missing("WB_API_URL")
	}
	if c.Timeout <= 0 {
		return &apperr.ConfigurationError{Key: "WB_TIMEOUT", Reason: "must be positive"}
	}
	return nil
}

func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return missing(fe.Field())
		}
		return &apperr.ConfigurationError{Key: fe.Field(), Reason: "failed " + fe.Tag() + " check"}
	}
	return err
}
