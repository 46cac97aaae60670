package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrConfigInvalid    = errors.New("paystack config invalid")
	ErrRequestFailed    = errors.New("paystack request failed")
	ErrResponseInvalid  = errors.New("paystack response invalid")
	ErrSignatureInvalid = errors.New("paystack signature invalid")
)

const (
	defaultAPIBaseURL = "https://api.paystack.co"
	defaultTimeout    = 15 * time.Second
	// SignatureHeader webhook 签名请求头
	SignatureHeader = "x-paystack-signature"
)

// Config Paystack 网关配置。
type Config struct {
	SecretKey     string
	APIBaseURL    string
	CallbackURL   string
	Timeout       time.Duration
	VerifyRetries int
}

// InitializeInput 初始化交易输入，金额单位为 kobo。
type InitializeInput struct {
	Email       string
	AmountMinor int64
	Reference   string
	CallbackURL string
	Metadata    interface{}
}

// InitializeResult 初始化交易返回。
type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// Transaction 校验交易返回。
type Transaction struct {
	Reference       string
	Status          string
	AmountMinor     int64
	Currency        string
	GatewayResponse string
	CustomerEmail   string
	PaidAt          *time.Time
	Metadata        json.RawMessage
}

// WebhookEvent Paystack 事件
type WebhookEvent struct {
	Event     string
	Reference string
	Status    string
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ValidateConfig 校验配置。
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return fmt.Errorf("%w: secret_key is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(strings.TrimSpace(cfg.APIBaseURL)); err != nil {
		return fmt.Errorf("%w: api_base_url is invalid", ErrConfigInvalid)
	}
	return nil
}

func (c *Config) normalize() {
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	c.CallbackURL = strings.TrimSpace(c.CallbackURL)
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultAPIBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.VerifyRetries < 0 {
		c.VerifyRetries = 0
	}
}

// InitializeTransaction 调用 /transaction/initialize，不做重试。
func InitializeTransaction(ctx context.Context, cfg *Config, input InitializeInput) (*InitializeResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrConfigInvalid)
	}
	if input.AmountMinor <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrConfigInvalid)
	}

	payload := map[string]interface{}{
		"email":  strings.TrimSpace(input.Email),
		"amount": input.AmountMinor,
	}
	if ref := strings.TrimSpace(input.Reference); ref != "" {
		payload["reference"] = ref
	}
	callbackURL := strings.TrimSpace(input.CallbackURL)
	if callbackURL == "" {
		callbackURL = cfg.CallbackURL
	}
	if callbackURL != "" {
		payload["callback_url"] = callbackURL
	}
	if input.Metadata != nil {
		payload["metadata"] = input.Metadata
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request failed", ErrRequestFailed)
	}

	respBody, statusCode, err := doJSONRequest(ctx, cfg, http.MethodPost, "/transaction/initialize", body)
	if err != nil {
		return nil, err
	}
	env, err := decodeEnvelope(respBody)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 || !env.Status {
		return nil, fmt.Errorf("%w: initialize status %d: %s", ErrResponseInvalid, statusCode, env.Message)
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: decode initialize data failed", ErrResponseInvalid)
	}
	if strings.TrimSpace(data.AuthorizationURL) == "" {
		return nil, fmt.Errorf("%w: missing authorization_url", ErrResponseInvalid)
	}
	return &InitializeResult{
		AuthorizationURL: strings.TrimSpace(data.AuthorizationURL),
		AccessCode:       strings.TrimSpace(data.AccessCode),
		Reference:        strings.TrimSpace(data.Reference),
	}, nil
}

// VerifyTransaction 调用 /transaction/verify/:reference。
func VerifyTransaction(ctx context.Context, cfg *Config, reference string) (*Transaction, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrConfigInvalid)
	}

	path := "/transaction/verify/" + url.PathEscape(reference)
	respBody, statusCode, err := doJSONRequest(ctx, cfg, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if statusCode >= 500 {
		return nil, fmt.Errorf("%w: verify status %d", ErrRequestFailed, statusCode)
	}
	env, err := decodeEnvelope(respBody)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 || !env.Status {
		return nil, fmt.Errorf("%w: verify status %d: %s", ErrResponseInvalid, statusCode, env.Message)
	}
	return parseTransaction(env.Data)
}

func parseTransaction(data json.RawMessage) (*Transaction, error) {
	raw, err := decodeRawMap(data)
	if err != nil {
		return nil, err
	}
	tx := &Transaction{
		Reference:       readString(raw, "reference"),
		Status:          strings.ToLower(readString(raw, "status")),
		AmountMinor:     readInt64(raw, "amount"),
		Currency:        strings.ToUpper(readString(raw, "currency")),
		GatewayResponse: readString(raw, "gateway_response"),
		CustomerEmail:   readString(readMap(raw, "customer"), "email"),
		Metadata:        readMetadata(raw),
	}
	paidAt := readString(raw, "paid_at")
	if paidAt == "" {
		paidAt = readString(raw, "paidAt")
	}
	if paidAt != "" {
		if parsed, err := time.Parse(time.RFC3339, paidAt); err == nil {
			tx.PaidAt = &parsed
		}
	}
	if tx.Reference == "" || tx.Status == "" {
		return nil, fmt.Errorf("%w: missing reference or status", ErrResponseInvalid)
	}
	return tx, nil
}

// readMetadata 兼容对象与字符串两种 metadata 形式
func readMetadata(raw map[string]interface{}) json.RawMessage {
	value, ok := raw["metadata"]
	if !ok || value == nil {
		return nil
	}
	if text, ok := value.(string); ok {
		text = strings.TrimSpace(text)
		if text == "" || !json.Valid([]byte(text)) {
			return nil
		}
		return json.RawMessage(text)
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return encoded
}

// VerifyWebhookSignature 校验 x-paystack-signature（HMAC-SHA512，十六进制）。
func VerifyWebhookSignature(secretKey string, body []byte, signature string) error {
	if strings.TrimSpace(secretKey) == "" {
		return fmt.Errorf("%w: secret_key is required", ErrConfigInvalid)
	}
	signature = strings.ToLower(strings.TrimSpace(signature))
	if signature == "" {
		return fmt.Errorf("%w: signature is required", ErrSignatureInvalid)
	}
	expected := ComputeSignature(secretKey, body)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return fmt.Errorf("%w: verify failed", ErrSignatureInvalid)
	}
	return nil
}

// ComputeSignature 计算 webhook 签名
func ComputeSignature(secretKey string, body []byte) string {
	h := hmac.New(sha512.New, []byte(strings.TrimSpace(secretKey)))
	_, _ = h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// ParseWebhookEvent 解析 webhook 事件，调用前须先校验签名。
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: body is empty", ErrResponseInvalid)
	}
	raw, err := decodeRawMap(body)
	if err != nil {
		return nil, err
	}
	event := &WebhookEvent{
		Event: strings.TrimSpace(readString(raw, "event")),
	}
	if event.Event == "" {
		return nil, fmt.Errorf("%w: missing event", ErrResponseInvalid)
	}
	data := readMap(raw, "data")
	event.Reference = readString(data, "reference")
	event.Status = strings.ToLower(readString(data, "status"))
	return event, nil
}

func doJSONRequest(ctx context.Context, cfg *Config, method, path string, body []byte) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/") + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.SecretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	resp, err := (&http.Client{Timeout: timeout}).Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return respBody, resp.StatusCode, nil
}

func decodeEnvelope(body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	return &env, nil
}

func decodeRawMap(body []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	return raw, nil
}

func readString(raw map[string]interface{}, key string) string {
	if raw == nil || strings.TrimSpace(key) == "" {
		return ""
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatInt(int64(typed), 10)
	case json.Number:
		return typed.String()
	default:
		return ""
	}
}

func readMap(raw map[string]interface{}, key string) map[string]interface{} {
	if raw == nil {
		return nil
	}
	mapped, _ := raw[key].(map[string]interface{})
	return mapped
}

func readInt64(raw map[string]interface{}, key string) int64 {
	if raw == nil {
		return 0
	}
	switch typed := raw[key].(type) {
	case float64:
		return int64(typed)
	case json.Number:
		parsed, _ := typed.Int64()
		return parsed
	case string:
		parsed, _ := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		return parsed
	default:
		return 0
	}
}
