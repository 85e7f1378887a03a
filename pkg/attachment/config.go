// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package attachment

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/LerianStudio/attachment-storage/pkg"
	"github.com/LerianStudio/attachment-storage/pkg/constant"
	"github.com/LerianStudio/attachment-storage/pkg/storage"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the bucket configuration for one environment.
// It is loaded once and never modified afterwards.
type Config struct {
	AccessKeyID        string `yaml:"access_key_id"`
	SecretAccessKey    string `yaml:"secret_access_key"`
	Server             string `yaml:"server"`
	Port               int    `yaml:"port" validate:"gte=0,lte=65535"`
	UseSSL             bool   `yaml:"use_ssl"`
	Persistent         *bool  `yaml:"persistent"`
	Proxy              string `yaml:"proxy" validate:"omitempty,url"`
	Region             string `yaml:"region"`
	BucketName         string `yaml:"bucket_name" validate:"required"`
	DistributionDomain string `yaml:"distribution_domain" validate:"omitempty,fqdn"`

	// Model defaults, used when the host leaves the matching Options field empty.
	PathPrefix string `yaml:"path_prefix"`
	S3Access   string `yaml:"s3_access"`
	Cloudfront bool   `yaml:"cloudfront"`
	BucketKey  string `yaml:"bucket_key"`

	// Extra holds the remaining keys, used as per-model bucket names.
	Extra map[string]string `yaml:",inline"`
}

// Options are the per-model attachment settings.
type Options struct {
	PathPrefix string `validate:"required"`
	// S3Access is the canned ACL applied on upload and rename.
	S3Access string `validate:"omitempty,oneof=private public-read public-read-write authenticated-read aws-exec-read bucket-owner-read bucket-owner-full-control"`
	// Cloudfront selects distribution URLs for PublicFilename.
	Cloudfront bool
	// BucketKey names a config key holding this model's bucket.
	BucketKey string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}

		return name
	})

	return v
}

// envReference matches ${NAME}; bare $ signs are left alone so secrets may contain them.
var envReference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${NAME} with the value of the environment variable NAME.
// References to unset variables are kept verbatim.
func expandEnv(data []byte) []byte {
	return envReference.ReplaceAllFunc(data, func(ref []byte) []byte {
		name := envReference.FindSubmatch(ref)[1]
		if value, ok := os.LookupEnv(string(name)); ok {
			return []byte(value)
		}

		return ref
	})
}

// LoadConfig reads the environment section env from the YAML file at path.
// ${VAR} references are expanded from the process environment before parsing.
func LoadConfig(path, env string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkg.NewConfigurationMissingError(path, "", err)
	}

	return ParseConfig(data, path, env)
}

// ParseConfig parses an environment-keyed YAML document; source is only used in errors.
func ParseConfig(data []byte, source, env string) (*Config, error) {
	sections := map[string]*Config{}
	if err := yaml.Unmarshal(expandEnv(data), &sections); err != nil {
		return nil, pkg.NewConfigurationMissingError(source, "", fmt.Errorf("parsing yaml: %w", err))
	}

	cfg, ok := sections[env]
	if !ok || cfg == nil {
		return nil, pkg.NewConfigurationMissingError(source, env, nil)
	}

	if err := cfg.Validate(source); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports the first invalid or missing key as a ConfigurationMissingError.
func (c *Config) Validate(source string) error {
	if err := validate.Struct(c); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			fieldErr := validationErrs[0]

			return pkg.ConfigurationMissingError{
				Source:  source,
				Key:     fieldErr.Field(),
				Code:    constant.ErrConfigurationMissing.Error(),
				Title:   "Configuration Missing",
				Message: fmt.Sprintf("configuration %s has invalid key %s (%s)", source, fieldErr.Field(), fieldErr.Tag()),
				Err:     err,
			}
		}

		return pkg.NewConfigurationMissingError(source, "", err)
	}

	return nil
}

// WithDefaults fills the empty fields of opts from the model defaults of the
// configuration. Cloudfront is enabled when either side enables it.
func (c *Config) WithDefaults(opts Options) Options {
	if opts.PathPrefix == "" {
		opts.PathPrefix = c.PathPrefix
	}

	if opts.S3Access == "" {
		opts.S3Access = c.S3Access
	}

	if opts.BucketKey == "" {
		opts.BucketKey = c.BucketKey
	}

	opts.Cloudfront = opts.Cloudfront || c.Cloudfront

	return opts
}

// Validate checks the per-model options.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return pkg.NewConfigurationMissingError("attachment options", "", err)
	}

	return nil
}

// ResolveBucket returns the bucket named by bucketKey when the configuration
// defines it, and bucket_name otherwise.
func (c *Config) ResolveBucket(bucketKey string) string {
	if bucketKey != "" {
		if bucket := c.Extra[bucketKey]; bucket != "" {
			return bucket
		}
	}

	return c.BucketName
}

// Hostname returns the configured server or the public S3 host.
func (c *Config) Hostname() string {
	if c.Server != "" {
		return c.Server
	}

	return constant.DefaultS3Hostname
}

// IsPersistent defaults to true when the key is absent.
func (c *Config) IsPersistent() bool {
	return c.Persistent == nil || *c.Persistent
}

// S3Config converts the configuration into client settings for bucket.
// A custom server is addressed path-style, which S3-compatible stores expect.
func (c *Config) S3Config(bucket string) storage.S3Config {
	cfg := storage.S3Config{
		Region:            c.Region,
		Bucket:            bucket,
		AccessKeyID:       c.AccessKeyID,
		SecretAccessKey:   c.SecretAccessKey,
		ProxyURL:          c.Proxy,
		DisableKeepAlives: !c.IsPersistent(),
	}

	if cfg.Region == "" {
		cfg.Region = constant.DefaultS3Region
	}

	if c.Server != "" {
		cfg.Endpoint = storage.Endpoint(c.Server, c.Port, c.UseSSL)
		cfg.UsePathStyle = true
	}

	return cfg
}

// LogFields renders the configuration for logging with credentials masked.
func (c *Config) LogFields() map[string]string {
	return pkg.RedactedFields(map[string]string{
		"access_key_id":       c.AccessKeyID,
		"secret_access_key":   c.SecretAccessKey,
		"server":              c.Hostname(),
		"port":                fmt.Sprint(c.Port),
		"use_ssl":             fmt.Sprint(c.UseSSL),
		"persistent":          fmt.Sprint(c.IsPersistent()),
		"proxy":               pkg.RedactConnectionString(c.Proxy),
		"region":              c.Region,
		"bucket_name":         c.BucketName,
		"distribution_domain": c.DistributionDomain,
	})
}
