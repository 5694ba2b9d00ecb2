// internal/engine/provider/sns.go
package provider

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	engerrors "license-alert-engine/internal/common/errors"
)

// SNSAPI is the slice of the SNS client the adapter needs; kept as an
// interface for mocking.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSProvider sends SMS through AWS SNS.
type SNSProvider struct {
	name     string
	client   SNSAPI
	senderID string
}

func NewSNSProvider(ctx context.Context, name, region, senderID string) (*SNSProvider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSProvider{
		name:     name,
		client:   sns.NewFromConfig(awsCfg),
		senderID: senderID,
	}, nil
}

// NewSNSProviderWithClient injects a client; used by tests.
func NewSNSProviderWithClient(name string, client SNSAPI, senderID string) *SNSProvider {
	return &SNSProvider{name: name, client: client, senderID: senderID}
}

func (p *SNSProvider) Name() string { return p.name }

func (p *SNSProvider) Send(ctx context.Context, destination, body string) (*Result, error) {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(destination),
		Message:     aws.String(body),
	}
	if p.senderID != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(p.senderID),
			},
		}
	}

	out, err := p.client.Publish(ctx, input)
	if err != nil {
		return nil, p.classify(err)
	}

	return &Result{
		Provider:  p.name,
		MessageID: aws.ToString(out.MessageId),
	}, nil
}

// classify maps SNS failures onto the engine's permanent/transient split.
func (p *SNSProvider) classify(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return engerrors.NewTransientProviderFailureError(p.name, err)
	}

	var invalidParam *types.InvalidParameterException
	if errors.As(err, &invalidParam) {
		return engerrors.NewPermanentProviderFailureError(p.name, err)
	}
	var optedOut *types.PlatformApplicationDisabledException
	if errors.As(err, &optedOut) {
		return engerrors.NewPermanentProviderFailureError(p.name, err)
	}
	var throttled *types.ThrottledException
	if errors.As(err, &throttled) {
		return engerrors.NewTransientProviderFailureError(p.name, err)
	}

	msg := err.Error()
	if strings.Contains(msg, "Throttl") || strings.Contains(msg, "ServiceUnavailable") ||
		strings.Contains(msg, "InternalError") || strings.Contains(msg, "timeout") {
		return engerrors.NewTransientProviderFailureError(p.name, err)
	}
	if strings.Contains(msg, "InvalidParameter") || strings.Contains(msg, "opted out") {
		return engerrors.NewPermanentProviderFailureError(p.name, err)
	}

	// unknown failures stay retryable
	return engerrors.NewTransientProviderFailureError(p.name, err)
}
