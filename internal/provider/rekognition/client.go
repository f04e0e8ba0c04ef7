package rekognition

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/smithy-go"

	"github.com/saturnino-fabrica-de-software/pea/internal/provider"
)

const (
	errCodeAccessDenied          = "AccessDeniedException"
	errCodeInvalidParameter      = "InvalidParameterException"
	errCodeInvalidImageFormat    = "InvalidImageFormatException"
	errCodeImageTooLarge         = "ImageTooLargeException"
	errCodeThrottling            = "ThrottlingException"
	errCodeThroughputExceeded    = "ProvisionedThroughputExceededException"
	errCodeServiceUnavailable    = "ServiceUnavailableException"
	errCodeInternalServerFailure = "InternalServerError"
)

// DetectFacesAPI is the subset of the Rekognition client the classifier uses
type DetectFacesAPI interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// NewAPI loads AWS SDK config using the default credential chain
func NewAPI(ctx context.Context, cfg Config) (DetectFacesAPI, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return rekognition.NewFromConfig(awsCfg), nil
}

// translateError maps AWS API error codes onto package and provider errors
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case errCodeAccessDenied:
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.ErrorMessage())
		case errCodeInvalidParameter, errCodeInvalidImageFormat, errCodeImageTooLarge:
			return fmt.Errorf("%w: %s", ErrInvalidImage, apiErr.ErrorMessage())
		case errCodeThrottling, errCodeThroughputExceeded:
			return fmt.Errorf("%w: %w", provider.ErrUnavailable, ErrThrottled)
		case errCodeServiceUnavailable, errCodeInternalServerFailure:
			return fmt.Errorf("%w: %s", provider.ErrUnavailable, apiErr.ErrorMessage())
		}
	}

	return fmt.Errorf("rekognition detect faces: %w", err)
}
