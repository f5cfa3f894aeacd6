package archive

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/PremiumHook/internal/pkg/env"
)

const dateLayout = "2006-01-02"

// Config holds S3 archive configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Prefix          string
}

// LoadConfig loads S3 configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Prefix:          strings.Trim(env.GetEnv("S3_ARCHIVE_PREFIX", "ledger"), "/"),
	}

	if config.AccessKeyID == "" {
		return nil, errors.New("S3_ACCESS_KEY_ID is required for the ledger archive")
	}
	if config.SecretAccessKey == "" {
		return nil, errors.New("S3_SECRET_ACCESS_KEY is required for the ledger archive")
	}
	if config.BucketName == "" {
		return nil, errors.New("S3_BUCKET_NAME is required for the ledger archive")
	}

	return config, nil
}

// ObjectKey generates the object key for a ledger export covering [from, to).
// Format: <prefix>/YYYY/MM/DD/payment-orders-<from>_<to>.jsonl.gz
func (c *Config) ObjectKey(from, to time.Time) string {
	prefix := c.Prefix
	if prefix == "" {
		prefix = "ledger"
	}
	from, to = from.UTC(), to.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%02d/payment-orders-%s_%s.jsonl.gz",
		prefix, from.Year(), int(from.Month()), from.Day(),
		from.Format(dateLayout), to.Format(dateLayout))
}

// GetAppEnv returns the current application environment
func GetAppEnv() string {
	return env.GetEnv("APP_ENV", "dev")
}

// ParseDay parses a YYYY-MM-DD date as midnight UTC.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
}
