package handlers

import (
	"errors"

	"go-guildsync/pkg/swgoh"

	"github.com/danielgtaylor/huma/v2"
)

// UpstreamError maps client and transport failures onto API errors.
// Anything unrecognised becomes a 500 labelled with fallback.
func UpstreamError(err error, fallback string) error {
	var (
		validation   *swgoh.ValidationError
		incomplete   *swgoh.IncompleteBatchError
		apiErr       *swgoh.APIError
		deserializer *swgoh.DeserializationError
	)

	switch {
	case errors.As(err, &validation):
		return huma.Error422UnprocessableEntity(validation.Message, err)
	case errors.Is(err, swgoh.ErrUnauthenticated):
		return huma.Error401Unauthorized("Upstream session is not logged in", err)
	case errors.Is(err, swgoh.ErrInvalidState):
		return huma.Error409Conflict("Login information has not been provided", err)
	case errors.As(err, &incomplete):
		return huma.Error502BadGateway("Not every player could be fetched", err)
	case errors.As(err, &apiErr) && apiErr.Timeout:
		return huma.Error504GatewayTimeout(apiErr.Reason, err)
	case errors.As(err, &apiErr):
		return huma.Error502BadGateway(apiErr.Reason, err)
	case errors.As(err, &deserializer):
		return huma.Error502BadGateway("Unexpected response from upstream", err)
	default:
		return huma.Error500InternalServerError(fallback, err)
	}
}
