// internal/engine/provider/sns_test.go
package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engerrors "license-alert-engine/internal/common/errors"
)

type mockSNSClient struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	inputs      []*sns.PublishInput
}

func (m *mockSNSClient) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, params)
	return m.PublishFunc(ctx, params, optFns...)
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestSNSProvider_SendSuccess(t *testing.T) {
	client := &mockSNSClient{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return &sns.PublishOutput{MessageId: aws.String("sns-msg-7")}, nil
		},
	}
	p := NewSNSProviderWithClient("sns-primary", client, "BACKOFFICE")

	res, err := p.Send(context.Background(), "+15551234567", "hello")
	require.NoError(t, err)

	assert.Equal(t, "sns-primary", res.Provider)
	assert.Equal(t, "sns-msg-7", res.MessageID)

	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "+15551234567", aws.ToString(in.PhoneNumber))
	assert.Equal(t, "hello", aws.ToString(in.Message))
	require.Contains(t, in.MessageAttributes, "AWS.SNS.SMS.SenderID")
	assert.Equal(t, "BACKOFFICE", aws.ToString(in.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
}

func TestSNSProvider_SendOmitsSenderIDWhenUnset(t *testing.T) {
	client := &mockSNSClient{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return &sns.PublishOutput{MessageId: aws.String("sns-msg-8")}, nil
		},
	}
	p := NewSNSProviderWithClient("sns-primary", client, "")

	_, err := p.Send(context.Background(), "+15551234567", "hello")
	require.NoError(t, err)
	require.Len(t, client.inputs, 1)
	assert.Empty(t, client.inputs[0].MessageAttributes)
}

func TestSNSProvider_FailureClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{
			name:      "throttled exception",
			err:       &types.ThrottledException{Message: aws.String("Rate exceeded")},
			retryable: true,
		},
		{
			name:      "invalid parameter exception",
			err:       &types.InvalidParameterException{Message: aws.String("Invalid parameter: PhoneNumber")},
			retryable: false,
		},
		{
			name:      "platform application disabled",
			err:       &types.PlatformApplicationDisabledException{Message: aws.String("disabled")},
			retryable: false,
		},
		{
			name:      "network timeout",
			err:       fmt.Errorf("publish: %w", timeoutError{}),
			retryable: true,
		},
		{
			name:      "throttling by message text",
			err:       errors.New("api error Throttling: rate exceeded"),
			retryable: true,
		},
		{
			name:      "invalid parameter by message text",
			err:       errors.New("api error InvalidParameter: bad number"),
			retryable: false,
		},
		{
			name:      "opted out destination",
			err:       errors.New("destination has opted out"),
			retryable: false,
		},
		{
			name:      "unknown failure stays retryable",
			err:       errors.New("something unexpected"),
			retryable: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockSNSClient{
				PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
					return nil, tt.err
				},
			}
			p := NewSNSProviderWithClient("sns-primary", client, "")

			_, err := p.Send(context.Background(), "+15551234567", "hello")
			require.Error(t, err)
			assert.Equal(t, tt.retryable, engerrors.IsTransient(err))
		})
	}
}
