package adapters

import (
	"fmt"
	"io"
	"net/http"

	"github.com/projectsmartedu/SmartEducation/application/ports/outbound"
)

const maxErrorBodyBytes = 4096

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP request returned non-OK status code: %d", e.StatusCode)
}

type ContentFetcher interface {
	// FetchContent returns the response body of a 200 response; the caller closes it.
	FetchContent(req *http.Request) (io.ReadCloser, error)
}

type contentFetcher struct {
	logger outbound.LoggerPort
	client *http.Client
}

func NewContentFetcher(logger outbound.LoggerPort, client *http.Client) ContentFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &contentFetcher{
		logger: logger,
		client: client,
	}
}

func (c *contentFetcher) FetchContent(req *http.Request) (io.ReadCloser, error) {
	res, err := c.client.Do(req)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to send the HTTP request", map[string]interface{}{
			"method": req.Method,
			"URL":    req.URL.String(),
		})
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		defer closeBody(c.logger, res.Body)
		bodyPayload, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
		message := string(bodyPayload)
		c.logger.ErrorWithFields(err, "HTTP request returned non-OK status code", map[string]interface{}{
			"method":  req.Method,
			"URL":     req.URL.String(),
			"status":  res.StatusCode,
			"message": message,
		})
		return nil, &StatusError{StatusCode: res.StatusCode, Body: message}
	}

	return res.Body, nil
}

func closeBody(logger outbound.LoggerPort, body io.ReadCloser) {
	if err := body.Close(); err != nil {
		logger.Error(err, "Failed to close the response body")
	}
}
