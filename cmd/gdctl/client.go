package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Vijaykv5/Intereractive-GD/internal/logger"
)

// apiError is the service's failure envelope.
type apiError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func newClient(base string) *resty.Client {
	c := resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetTimeout(3 * time.Minute)
	if verboseFlag {
		log := logger.NewConsole(true)
		c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			log.Debug().
				Str("method", resp.Request.Method).
				Str("url", resp.Request.URL).
				Int("status", resp.StatusCode()).
				Dur("duration", resp.Time()).
				Msg("request")
			return nil
		})
	}
	return c
}

func check(resp *resty.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		var e apiError
		if json.Unmarshal(resp.Body(), &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), e.Error)
		}
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}

func postJSON(base, path string, payload interface{}) ([]byte, error) {
	return check(newClient(base).R().SetBody(payload).Post(path))
}

func getJSON(base, path string, pathParams map[string]string) ([]byte, error) {
	return check(newClient(base).R().SetPathParams(pathParams).Get(path))
}

// printJSON re-indents a response body.
func printJSON(w io.Writer, data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		_, err = w.Write(data)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
