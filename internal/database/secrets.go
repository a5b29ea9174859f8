package database

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Secret is the credential document stored in the secret store. The JSON keys
// match the standard RDS secret layout.
type Secret struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	DBName   string `json:"dbname"`
	Engine   string `json:"engine"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// SecretFetcher retrieves database credentials by secret id.
type SecretFetcher interface {
	Fetch(ctx context.Context, secretID string) (Secret, error)
}

// SecretsManagerFetcher fetches credentials from AWS Secrets Manager.
type SecretsManagerFetcher struct {
	client *secretsmanager.Client
}

func NewSecretsManagerFetcher(ctx context.Context) (*SecretsManagerFetcher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}
	return &SecretsManagerFetcher{client: secretsmanager.NewFromConfig(awsCfg)}, nil
}

func (f *SecretsManagerFetcher) Fetch(ctx context.Context, secretID string) (Secret, error) {
	out, err := f.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &secretID,
	})
	if err != nil {
		return Secret{}, fmt.Errorf("getting secret value: %w", err)
	}
	if out.SecretString == nil {
		return Secret{}, fmt.Errorf("secret %s has no string payload", secretID)
	}

	var secret Secret
	if err := json.Unmarshal([]byte(*out.SecretString), &secret); err != nil {
		return Secret{}, fmt.Errorf("decoding secret payload: %w", err)
	}
	return secret, nil
}
