// Package taskapi — клиент сервиса задач.
//
// Сервис имеет один endpoint (POST, JSON). Пустое тело запрашивает
// задачу, тело с результатом отправляет его. Авторизация — заголовок
// token. Ответ разбирается одной функцией classify в закрытый набор
// исходов (Outcome); HTTP-статус не учитывается, решает тело ответа.
//
// Клиент никогда не возвращает error: сетевые и протокольные ошибки
// превращаются в KindGenericFailure с заполненным Outcome.Err.
package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Значения по умолчанию.
const (
	DefaultEndpoint = "https://nebulai.network/open_compute/finish/task"
	DefaultTimeout  = 8 * time.Second

	// maxResponseSize — ограничение на размер тела ответа.
	maxResponseSize = 1 << 20
)

// Submission — результат для отправки.
type Submission struct {
	TaskID  string
	Result1 float64
	Result2 float64
}

// submitRequest — тело запроса submit. Значения — строки с 10 знаками.
type submitRequest struct {
	Result1 string `json:"result_1"`
	Result2 string `json:"result_2"`
	TaskID  string `json:"task_id"`
}

// Client — HTTP-клиент сервиса задач. Безопасен для конкурентного использования.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
}

// Config — конфигурация Client.
type Config struct {
	// Endpoint — URL сервиса (default: DefaultEndpoint).
	Endpoint string

	// Timeout — таймаут одного запроса (default: 8s).
	Timeout time.Duration

	// HTTPClient — опционально, для тестов и общего транспорта.
	HTTPClient *http.Client
}

// NewClient создаёт клиент.
func NewClient(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		endpoint:   endpoint,
		timeout:    timeout,
		httpClient: httpClient,
	}
}

// FetchTask запрашивает новую задачу.
func (c *Client) FetchTask(ctx context.Context, token string) Outcome {
	return c.do(ctx, OpFetch, token, struct{}{})
}

// SubmitResult отправляет результат задачи.
func (c *Client) SubmitResult(ctx context.Context, token string, sub Submission) Outcome {
	body := submitRequest{
		Result1: FormatValue(sub.Result1),
		Result2: FormatValue(sub.Result2),
		TaskID:  sub.TaskID,
	}
	return c.do(ctx, OpSubmit, token, body)
}

// FormatValue форматирует значение с 10 знаками после точки.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 10, 64)
}

// do выполняет POST и классифицирует ответ.
func (c *Client) do(ctx context.Context, op Op, token string, body any) Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return failure(fmt.Errorf("%w: marshal %s body: %v", ErrNetwork, op, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return failure(fmt.Errorf("%w: create %s request: %v", ErrNetwork, op, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("token", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failure(fmt.Errorf("%w: %s: %v", ErrNetwork, op, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return failure(fmt.Errorf("%w: read %s response: %v", ErrNetwork, op, err))
	}

	return classify(op, respBody)
}
