package secrets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// SecretsManagerProvider reads secrets from AWS Secrets Manager.
type SecretsManagerProvider struct {
	client *secretsmanager.Client
}

// NewSecretsManager builds a provider from the default AWS credential
// chain. An empty region defers to the environment/profile.
func NewSecretsManager(ctx context.Context, region string) (*SecretsManagerProvider, error) {
	cfg, err := loadAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return &SecretsManagerProvider{client: secretsmanager.NewFromConfig(cfg)}, nil
}

// GetSecret fetches and decodes one Secrets Manager entry.
func (p *SecretsManagerProvider) GetSecret(ctx context.Context, secretID string) (Payload, error) {
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("secrets manager get %q: %w", secretID, err)
	}
	if out.SecretString != nil {
		return maybeParseJSON(*out.SecretString), nil
	}
	return maybeParseJSON(string(out.SecretBinary)), nil
}

// ParameterStoreProvider reads SecureString parameters from AWS SSM.
type ParameterStoreProvider struct {
	client *ssm.Client
}

// NewParameterStore builds a provider from the default AWS credential
// chain.
func NewParameterStore(ctx context.Context, region string) (*ParameterStoreProvider, error) {
	cfg, err := loadAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return &ParameterStoreProvider{client: ssm.NewFromConfig(cfg)}, nil
}

// GetSecret fetches and decodes one parameter, decrypting SecureStrings.
func (p *ParameterStoreProvider) GetSecret(ctx context.Context, secretID string) (Payload, error) {
	out, err := p.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(secretID),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("parameter store get %q: %w", secretID, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return nil, fmt.Errorf("parameter %q has no value", secretID)
	}
	return maybeParseJSON(*out.Parameter.Value), nil
}

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return cfg, nil
}
