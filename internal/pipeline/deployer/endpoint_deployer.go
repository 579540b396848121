package deployer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/elskow/deployit/internal/pipeline/config"
	"github.com/elskow/deployit/internal/pipeline/types"
)

// EndpointDeployer posts the manifests to a remote deploy endpoint. Success
// is decided by the response body, not the status code.
type EndpointDeployer struct {
	config     *config.DeployConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewEndpointDeployer(config *config.DeployConfig, logger *zap.Logger) *EndpointDeployer {
	return &EndpointDeployer{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

func (d *EndpointDeployer) Deploy(ctx context.Context, req *Request) error {
	token, err := ResolveToken(d.config, req)
	if err != nil {
		return &types.SubmissionError{Err: err}
	}
	if token == "" {
		d.logger.Warn("no deploy token available", zap.String("env", d.config.TokenEnv))
	}

	payload, err := json.Marshal(req.Manifests)
	if err != nil {
		return &types.SubmissionError{Err: fmt.Errorf("failed to encode manifests: %w", err)}
	}

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return &types.SubmissionError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	httpReq.Header.Set("Content-Type", "application/json")

	d.logger.Info("submitting manifests",
		zap.String("endpoint", d.config.Endpoint),
		zap.String("name", req.Descriptor.Name))

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return &types.SubmissionError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &types.SubmissionError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if !strings.Contains(string(body), d.config.SuccessMarker) {
		d.logger.Error("deployment rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return &types.SubmissionError{Body: string(body)}
	}

	return nil
}
