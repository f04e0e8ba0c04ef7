package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"

	"github.com/saturnino-fabrica-de-software/pea/internal/api/protocol"
)

// ImageInfoEntry documents one element of the Image-Info response header
type ImageInfoEntry struct {
	EntryID        string  `json:"Entry-Id" example:"550e8400-e29b-41d4-a716-446655440000"`
	PaintingID     string  `json:"Painting-Id" example:"munch-the-scream"`
	PaintingLength int     `json:"Painting-Length" example:"182044"`
	PortraitLength int     `json:"Portrait-Length" example:"20511"`
	Distance       float64 `json:"Distance" example:"0.83"`
}

// EmptyResponse represents a response without a body; errors are reported in the Error-Code header
type EmptyResponse struct{}

// HealthResponse mirrors handler.HealthResponse
type HealthResponse struct {
	Status   string            `json:"status" example:"ok"`
	Version  string            `json:"version,omitempty" example:"0.1.0"`
	Identity string            `json:"identity,omitempty" example:"PEAServer"`
	Checks   map[string]string `json:"checks,omitempty"`
}

var octetStream = mime.MIME("application/octet-stream")

func authParam() *parameter.Parameter {
	return parameter.StrParam(protocol.HeaderAuthentication, parameter.Header,
		parameter.WithRequired(),
		parameter.WithDescription("Shared secret"))
}

func tokenParam() *parameter.Parameter {
	return parameter.StrParam(protocol.HeaderPhotoTimestamp, parameter.Header,
		parameter.WithRequired(),
		parameter.WithDescription("Client-chosen session token, usually a timestamp"))
}

func protocolErrors(extra ...response.Response) []response.Response {
	errs := []response.Response{
		response.New(EmptyResponse{}, "400", "MISSING_OPERATION, UNKNOWN_OPERATION, MISSING_HEADER, MISSING_BODY or INVALID_IMAGE"),
		response.New(EmptyResponse{}, "401", "UNAUTHORIZED"),
		response.New(EmptyResponse{}, "429", "RATE_LIMIT_EXCEEDED"),
	}
	return append(errs, extra...)
}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "PEA Portrait Matching API",
		Version:     "v1.0.0",
		Description: "Matches a photographed face against painted portraits of the same emotion and redraws stored photos in a painting style. Every operation is a POST to / selected by the Operation header; errors have an empty body and an Error-Code header.",
		Host:        "localhost:8080",
		Path:        "/",
	})

	endpoints := []*endpoint.EndPoint{
		// POST / (also /v1/portraits)
		endpoint.New(
			endpoint.POST,
			"/",
			endpoint.WithTags("Portraits"),
			endpoint.WithSummary("Store, Retrieve, Transfer or Delete, selected by the Operation header"),
			endpoint.WithDescription("Store keeps the photo (longer side downscaled to 500px) under Photo-Timestamp; storing the same token again overwrites. " +
				"Retrieve answers with painting then portrait bytes per candidate in rank order; slice the body with the Image-Info header (JSON array of ImageInfoEntry), the Emotion header names the detected category. " +
				"Transfer renders the stored photo in the Style-Id style and sets Style-Name. " +
				"Delete always answers 200 with Delete-Status removed or absent. Also served at POST /v1/portraits."),
			endpoint.WithConsume([]mime.MIME{octetStream, mime.MIME("image/jpeg"), mime.MIME("image/png")}),
			endpoint.WithProduce([]mime.MIME{octetStream, mime.MIME("image/jpeg"), mime.MIME("image/png")}),
			endpoint.WithParams(
				authParam(),
				parameter.StrParam(protocol.HeaderOperation, parameter.Header,
					parameter.WithRequired(),
					parameter.WithDescription("Store, Retrieve, Transfer or Delete")),
				parameter.StrParam(protocol.HeaderPhotoTimestamp, parameter.Header,
					parameter.WithDescription("Session token; required for Store, Transfer and Delete")),
				parameter.IntParam(protocol.HeaderStyleID, parameter.Header,
					parameter.WithDescription("1-based style id; required for Transfer")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]ImageInfoEntry{}, "200", "Operation result; for Retrieve the Image-Info header carries this array"),
			}),
			endpoint.WithErrors(protocolErrors(
				response.New(EmptyResponse{}, "404", "SESSION_NOT_FOUND or STYLE_NOT_FOUND"),
				response.New(EmptyResponse{}, "500", "NO_FACE_DETECTED, DEGENERATE_GEOMETRY, EMPTY_CATEGORY, MODEL_FAILURE or GALLERY_UNAVAILABLE"),
			)),
		),

		// Delete
		endpoint.New(
			endpoint.DELETE,
			"/",
			endpoint.WithTags("Delete"),
			endpoint.WithSummary("Forget a stored photo"),
			endpoint.WithDescription("Also available as POST / with Operation: Delete. Always 200; Delete-Status is removed or absent."),
			endpoint.WithParams(authParam(), tokenParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "200", "Delete-Status header set"),
			}),
			endpoint.WithErrors(protocolErrors()),
		),

		// Events
		endpoint.New(
			endpoint.GET,
			"/v1/events",
			endpoint.WithTags("Events"),
			endpoint.WithSummary("Websocket feed of audit events"),
			endpoint.WithDescription("Upgrades to a websocket and sends one JSON text frame per Store, Retrieve, Transfer and Delete. Disabled when EVENTS_ENABLED=false."),
			endpoint.WithParams(authParam()),
			endpoint.WithErrors([]response.Response{
				response.New(EmptyResponse{}, "401", "UNAUTHORIZED"),
				response.New(EmptyResponse{}, "426", "Not a websocket upgrade"),
			}),
		),

		// Health
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Server is up"),
			}),
		),
		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "All checks pass"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(HealthResponse{}, "503", "A dependency check failed"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
