package taskapi

import (
	"encoding/json"
	"fmt"

	"github.com/shaiso/Nebula/internal/domain"
)

// Коды и маркеры протокола сервиса задач.
const (
	codeOK          = 0
	codeRateLimited = -429
	authExpiredErr  = "jwt auth err"
)

// Op — операция клиента.
type Op string

const (
	OpFetch  Op = "fetch"
	OpSubmit Op = "submit"
)

// Kind — тип исхода запроса. Набор закрытый.
type Kind string

const (
	// KindSuccess — fetch вернул задачу.
	KindSuccess Kind = "success"

	// KindAccepted — submit принят (calc_status == true).
	KindAccepted Kind = "accepted"

	// KindRejected — submit не принят.
	KindRejected Kind = "rejected"

	// KindRateLimited — code == -429, повторить после паузы.
	KindRateLimited Kind = "rate_limited"

	// KindAuthExpired — токен больше не валиден.
	KindAuthExpired Kind = "auth_expired"

	// KindGenericFailure — всё остальное, включая сетевые ошибки.
	KindGenericFailure Kind = "generic_failure"
)

// Outcome — классифицированный ответ сервиса.
type Outcome struct {
	// Kind — тип исхода.
	Kind Kind

	// Task — задача (только для KindSuccess).
	Task *domain.Task

	// Loops — счётчик сервиса из ответа на submit (для отчётов).
	Loops int

	// Code — code из ответа, если он был.
	Code *int

	// Err — сетевая или протокольная ошибка (только для KindGenericFailure).
	Err error
}

// Transport возвращает true, если исход вызван ошибкой сети или протокола,
// а не ответом сервиса.
func (o Outcome) Transport() bool {
	return o.Err != nil
}

// envelope — общий формат ответа сервиса.
type envelope struct {
	Code  *int            `json:"code"`
	Error json.RawMessage `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// submitData — data в ответе на submit.
type submitData struct {
	CalcStatus bool `json:"calc_status"`
	Loops      int  `json:"loops"`
}

// classify разбирает тело ответа и возвращает исход для операции op.
//
// Порядок проверок:
//  1. error == "jwt auth err" → AuthExpired
//  2. code == -429 → RateLimited
//  3. fetch: code == 0 и data с задачей → Success
//     submit: code == 0 и data.calc_status → Accepted
//  4. иначе fetch → GenericFailure, submit → Rejected
func classify(op Op, body []byte) Outcome {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return failure(fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}

	if isAuthExpired(env.Error) {
		return Outcome{Kind: KindAuthExpired, Code: env.Code}
	}

	if env.Code != nil && *env.Code == codeRateLimited {
		return Outcome{Kind: KindRateLimited, Code: env.Code}
	}

	switch op {
	case OpFetch:
		return classifyFetch(env)
	case OpSubmit:
		return classifySubmit(env)
	default:
		return failure(fmt.Errorf("%w: unknown operation %q", ErrMalformedResponse, op))
	}
}

func classifyFetch(env envelope) Outcome {
	if env.Code == nil || *env.Code != codeOK {
		return Outcome{Kind: KindGenericFailure, Code: env.Code}
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return Outcome{
			Kind: KindGenericFailure,
			Code: env.Code,
			Err:  fmt.Errorf("%w: success without task data", ErrMalformedResponse),
		}
	}

	var task domain.Task
	if err := json.Unmarshal(env.Data, &task); err != nil {
		return Outcome{
			Kind: KindGenericFailure,
			Code: env.Code,
			Err:  fmt.Errorf("%w: task data: %v", ErrMalformedResponse, err),
		}
	}

	return Outcome{Kind: KindSuccess, Code: env.Code, Task: &task}
}

func classifySubmit(env envelope) Outcome {
	var data submitData
	if len(env.Data) > 0 {
		// Нестандартный data не делает ответ ошибкой — просто нет calc_status.
		_ = json.Unmarshal(env.Data, &data)
	}

	if env.Code != nil && *env.Code == codeOK && data.CalcStatus {
		return Outcome{Kind: KindAccepted, Code: env.Code, Loops: data.Loops}
	}

	return Outcome{Kind: KindRejected, Code: env.Code, Loops: data.Loops}
}

// isAuthExpired проверяет поле error. Нестроковые значения игнорируются.
func isAuthExpired(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	return s == authExpiredErr
}

func failure(err error) Outcome {
	return Outcome{Kind: KindGenericFailure, Err: err}
}
