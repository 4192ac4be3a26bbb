// Package remote implementa o cliente HTTP do backend de sincronização.
// O protocolo é um envelope único: POST com {action, payload} e resposta
// {success, data, message, error}.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ojsouza/almoxarifado-api/internal/application/sync"
	"github.com/ojsouza/almoxarifado-api/internal/domain"
	"github.com/ojsouza/almoxarifado-api/pkg/config"
	"github.com/ojsouza/almoxarifado-api/pkg/logger"
)

const (
	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond
)

type envelope struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload,omitempty"`
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Client implementa sync.Backend sobre HTTP.
type Client struct {
	cfg  config.RemoteConfig
	http *http.Client
	log  *logger.Logger
}

// New cria o cliente. Devolve nil quando não há endpoint configurado, para que
// os consumidores operem em modo offline puro.
func New(cfg config.RemoteConfig, log *logger.Logger) *Client {
	if !cfg.Configured() {
		return nil
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

// Ping verifica a disponibilidade do backend.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, "ping", nil)
	return err
}

// ReadFullDB baixa o estado completo do backend.
func (c *Client) ReadFullDB(ctx context.Context) (*sync.FullPayload, error) {
	data, err := c.do(ctx, "read_full_db", nil)
	if err != nil {
		return nil, err
	}
	var payload sync.FullPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("resposta read_full_db inválida: %w", err)
	}
	return &payload, nil
}

// BatchRequest envia um lote de operações. Erro só quando o lote inteiro não
// chegou; resultados individuais vêm no corpo.
func (c *Client) BatchRequest(ctx context.Context, items []sync.BatchItem) ([]sync.BatchResult, error) {
	data, err := c.do(ctx, "batch_request", items)
	if err != nil {
		return nil, err
	}
	var results []sync.BatchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("resposta batch_request inválida: %w", err)
	}
	return results, nil
}

// do envia o envelope com retry de backoff exponencial limitado para falhas de
// transporte. Erros de aplicação (success=false) NÃO são retentados aqui; a
// política de tentativas por operação fica na fila.
func (c *Client) do(ctx context.Context, action string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(envelope{Action: action, Payload: payload})
	if err != nil {
		return nil, err
	}

	backoff := initialBackoff
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		data, retryable, err := c.once(ctx, body)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		c.log.Debug().Err(err).Str("acao", action).Int("tentativa", attempt).Msg("retry remoto")
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, lastErr)
}

func (c *Client) once(ctx context.Context, body []byte) (json.RawMessage, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 64<<20))
	if err != nil {
		return nil, true, err
	}
	if res.StatusCode >= 500 {
		return nil, true, fmt.Errorf("backend remoto respondeu %d", res.StatusCode)
	}
	if res.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("backend remoto respondeu %d", res.StatusCode)
	}

	var env response
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false, fmt.Errorf("resposta remota inválida: %w", err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return nil, false, fmt.Errorf("backend remoto recusou: %s", msg)
	}
	return env.Data, false, nil
}
