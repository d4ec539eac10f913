package quizgen

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies generation failures.
type ErrorKind int

const (
	// ValidationError is bad or missing client input.
	ValidationError ErrorKind = iota
	// InvalidModelOutput is a model answer that is not JSON or breaks the
	// question contract.
	InvalidModelOutput
	// UpstreamFailure is any call-level failure from the model provider.
	UpstreamFailure
)

func (k ErrorKind) String() string {
	switch k {
	case ValidationError:
		return "validation"
	case InvalidModelOutput:
		return "invalid_model_output"
	case UpstreamFailure:
		return "upstream_failure"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// User-facing messages. They never carry model output or provider detail.
const (
	MsgMissingTexts  = "텍스트 데이터가 누락되었습니다."
	MsgInvalidOutput = "AI가 유효하지 않은 JSON을 반환했습니다. 서버 콘솔을 확인해주세요."
	MsgUpstream      = "시험 문제 생성 중 서버 오류가 발생했습니다."
)

// GenerationError is the only error type Generate returns.
type GenerationError struct {
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// HTTPStatus maps the kind to the status the API answers with.
func (e *GenerationError) HTTPStatus() int {
	if e.Kind == ValidationError {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// UserMessage is the generic message shown to the end user.
func (e *GenerationError) UserMessage() string {
	switch e.Kind {
	case ValidationError:
		return MsgMissingTexts
	case InvalidModelOutput:
		return MsgInvalidOutput
	default:
		return MsgUpstream
	}
}
