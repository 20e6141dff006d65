package pushtoken

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Registrar registers device tokens with a push provider so the backend can
// target the device. Registration is best effort: the Store never fails a
// Persist because a registrar call failed.
type Registrar interface {
	// Register creates or refreshes the provider endpoint for the token and
	// returns the provider's endpoint identifier.
	Register(ctx context.Context, token *Token) (string, error)
	// Deregister removes a previously registered endpoint.
	Deregister(ctx context.Context, endpointID string) error
}

// SNSConfig describes the AWS SNS platform application used for endpoint
// registration.
type SNSConfig struct {
	Region                 string `env:"SNS_REGION" envDefault:"us-east-1"`
	PlatformApplicationARN string `env:"SNS_PLATFORM_APPLICATION_ARN,required"`
	AccessKeyID            string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey        string `env:"AWS_SECRET_ACCESS_KEY"`
}

// SNSRegistrar registers device tokens as SNS platform endpoints.
type SNSRegistrar struct {
	client *sns.Client
	appARN string
}

// NewSNSRegistrar creates a Registrar backed by AWS SNS.
func NewSNSRegistrar(ctx context.Context, cfg SNSConfig) (*SNSRegistrar, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &SNSRegistrar{
		client: sns.NewFromConfig(awsCfg),
		appARN: cfg.PlatformApplicationARN,
	}, nil
}

// Register creates a platform endpoint for the token. SNS treats repeated
// calls with the same token as idempotent and returns the existing endpoint.
func (r *SNSRegistrar) Register(ctx context.Context, token *Token) (string, error) {
	out, err := r.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(r.appARN),
		Token:                  aws.String(token.Value),
		CustomUserData:         aws.String(token.UserID),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.EndpointArn), nil
}

// Deregister deletes the platform endpoint.
func (r *SNSRegistrar) Deregister(ctx context.Context, endpointID string) error {
	_, err := r.client.DeleteEndpoint(ctx, &sns.DeleteEndpointInput{
		EndpointArn: aws.String(endpointID),
	})
	return err
}
