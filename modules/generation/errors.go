package generation

import (
	"fmt"

	"emotion-video-server/modules/did"
)

// ConfigurationError - 프로바이더 키가 없거나 placeholder
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// TimeoutError - 폴링 횟수를 다 써도 종료 상태가 아님
type TimeoutError struct {
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("video generation timed out after %d status checks", e.Attempts)
}

// ProviderError - HTTP 실패 또는 작업 실패 (did 패키지와 같은 타입)
type ProviderError = did.ProviderError
