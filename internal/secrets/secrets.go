// Package secrets resolves the ledger HMAC salt from its configured source.
// Provisioning and rotation of the secret itself happen outside this service.
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/peteywee/fresh-schedules/internal/shared/apperror"
)

const saltEnvVar = "LEDGER_HASH_SALT"

// Source yields a secret value. Resolve is called once per reconciliation
// run so a rotated secret is picked up without a restart.
type Source interface {
	Resolve(ctx context.Context) (string, error)
}

// Static returns a fixed value. Used in tests and local tooling.
type Static string

func (s Static) Resolve(ctx context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", apperror.ErrMissingSalt
	}
	return string(s), nil
}

// EnvSource reads the salt from the LEDGER_HASH_SALT environment variable.
type EnvSource struct{}

func (EnvSource) Resolve(ctx context.Context) (string, error) {
	salt := strings.TrimSpace(os.Getenv(saltEnvVar))
	if salt == "" {
		return "", apperror.ErrMissingSalt
	}
	return salt, nil
}

// SSMSource reads the salt from an AWS SSM parameter (SecureString).
type SSMSource struct {
	client *ssm.Client
	name   string
}

func NewSSMSource(ctx context.Context, name string) (*SSMSource, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &SSMSource{client: ssm.NewFromConfig(cfg), name: name}, nil
}

func (s *SSMSource) Resolve(ctx context.Context) (string, error) {
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(s.name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeConfiguration,
			fmt.Sprintf("failed to get parameter %s", s.name), 500)
	}
	if out.Parameter == nil || out.Parameter.Value == nil || strings.TrimSpace(*out.Parameter.Value) == "" {
		return "", apperror.ErrMissingSalt
	}
	return *out.Parameter.Value, nil
}

// SaltSource picks the salt source: the environment variable wins when set,
// otherwise the named SSM parameter is used.
func SaltSource(ctx context.Context, ssmParam string) (Source, error) {
	if strings.TrimSpace(os.Getenv(saltEnvVar)) != "" || ssmParam == "" {
		return EnvSource{}, nil
	}
	return NewSSMSource(ctx, ssmParam)
}
