// Package protocol decodes the header-driven PEA wire protocol into typed
// requests and names the response headers clients read back.
package protocol

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
)

// Request headers
const (
	HeaderAuthentication = "Authentication"
	HeaderOperation      = "Operation"
	HeaderPhotoTimestamp = "Photo-Timestamp"
	HeaderStyleID        = "Style-Id"
)

// Response headers
const (
	HeaderErrorCode    = "Error-Code"
	HeaderImageInfo    = "Image-Info"
	HeaderEmotion      = "Emotion"
	HeaderStyleName    = "Style-Name"
	HeaderDeleteStatus = "Delete-Status"
)

const (
	DeleteStatusRemoved = "removed"
	DeleteStatusAbsent  = "absent"
)

// Operation is the value of the Operation header.
type Operation string

const (
	OpStore    Operation = "Store"
	OpRetrieve Operation = "Retrieve"
	OpTransfer Operation = "Transfer"
	OpDelete   Operation = "Delete"
)

var operations = map[Operation]struct{}{
	OpStore:    {},
	OpRetrieve: {},
	OpTransfer: {},
	OpDelete:   {},
}

// ParseOperation matches the header value exactly, ignoring surrounding spaces.
func ParseOperation(s string) (Operation, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", domain.ErrMissingOperation
	}
	op := Operation(s)
	if _, ok := operations[op]; !ok {
		return "", domain.ErrUnknownOperation.WithError(fmt.Errorf("operation %q", s))
	}
	return op, nil
}

// Request is one of StoreRequest, RetrieveRequest, TransferRequest or DeleteRequest.
type Request interface {
	Operation() Operation
}

type StoreRequest struct {
	Token string `header:"Photo-Timestamp" validate:"required,token"`
	Photo []byte `header:"body" validate:"required"`
}

type RetrieveRequest struct {
	Photo []byte `header:"body" validate:"required"`
}

type TransferRequest struct {
	Token   string `header:"Photo-Timestamp" validate:"required,token"`
	StyleID int    `header:"Style-Id"`
}

type DeleteRequest struct {
	Token string `header:"Photo-Timestamp" validate:"required,token"`
}

func (StoreRequest) Operation() Operation    { return OpStore }
func (RetrieveRequest) Operation() Operation { return OpRetrieve }
func (TransferRequest) Operation() Operation { return OpTransfer }
func (DeleteRequest) Operation() Operation   { return OpDelete }

const maxTokenLength = 128

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("header")
	})
	if err := v.RegisterValidation("token", validateToken); err != nil {
		panic(fmt.Sprintf("register token validation: %v", err))
	}
	return v
}

// validateToken accepts printable ASCII without path separators; clients
// historically send a timestamp here.
func validateToken(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) > maxTokenLength || s == "." || s == ".." {
		return false
	}
	for _, r := range s {
		if r < 0x21 || r > 0x7e || r == '/' || r == '\\' {
			return false
		}
	}
	return true
}

// Decode turns headers and body into a typed request. header returns "" for
// an absent header. Errors are AppErrors with status 400.
func Decode(header func(string) string, body []byte) (Request, error) {
	op, err := ParseOperation(header(HeaderOperation))
	if err != nil {
		return nil, err
	}
	return DecodeOperation(op, header, body)
}

// DecodeOperation decodes the request for an operation already known, such
// as a DELETE without an Operation header.
func DecodeOperation(op Operation, header func(string) string, body []byte) (Request, error) {
	// header may return a view of a reused request buffer.
	token := strings.Clone(strings.TrimSpace(header(HeaderPhotoTimestamp)))

	var req Request
	switch op {
	case OpStore:
		req = &StoreRequest{Token: token, Photo: body}
	case OpRetrieve:
		req = &RetrieveRequest{Photo: body}
	case OpTransfer:
		styleID, err := parseStyleID(header(HeaderStyleID))
		if err != nil {
			return nil, err
		}
		req = &TransferRequest{Token: token, StyleID: styleID}
	case OpDelete:
		req = &DeleteRequest{Token: token}
	default:
		return nil, domain.ErrUnknownOperation.WithError(fmt.Errorf("operation %q", op))
	}

	if err := validate.Struct(req); err != nil {
		return nil, translate(err)
	}
	return req, nil
}

// parseStyleID requires an integer; range is checked against the catalog later.
func parseStyleID(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, domain.ErrMissingHeader.WithMessage(HeaderStyleID + " header is required")
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ErrMissingHeader.
			WithMessage(HeaderStyleID + " header must be an integer").
			WithError(err)
	}
	return id, nil
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.ErrInternal.WithError(err)
	}

	fe := verrs[0]
	if fe.Field() == "body" {
		return domain.ErrMissingBody.WithError(err)
	}
	if fe.Tag() == "required" {
		return domain.ErrMissingHeader.WithMessage(fe.Field() + " header is required")
	}
	return domain.ErrMissingHeader.
		WithMessage(fe.Field() + " header is malformed").
		WithError(err)
}
